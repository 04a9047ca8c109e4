// config.go: Configuration system for Lazarus entity pooling library
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config is the process-wide pooling configuration: the default sizing
// triple applied to every pool without an override, and the allocator
// strategy selector.
type Config struct {
	// ChunkSize is the default number of entities pre-allocated at once
	// when a pool is found empty.
	ChunkSize int `json:"chunk_size"`
	// Capacity is the default initial capacity hint for pool collections.
	Capacity int `json:"capacity"`
	// MaxPoolSize is the default retention ceiling per pool.
	MaxPoolSize int `json:"max_pool_size"`
	// Strategy selects the allocator backing: "queue" (default) or "engine".
	Strategy string `json:"strategy"`
	// Logger for debug and monitoring (optional, can be nil)
	Logger Logger `json:"-"`
}

// withDefaults fills unset fields with the built-in defaults.
func (c Config) withDefaults() Config {
	defaults := getDefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaults.ChunkSize
	}
	if c.Capacity <= 0 {
		c.Capacity = defaults.Capacity
	}
	if c.MaxPoolSize <= 0 {
		c.MaxPoolSize = defaults.MaxPoolSize
	}
	return c
}

// SimpleConfig represents the complete configuration from lazarus.json
type SimpleConfig struct {
	ChunkSize   int    `json:"chunk_size"`
	Capacity    int    `json:"capacity"`
	MaxPoolSize int    `json:"max_pool_size"`
	Strategy    string `json:"strategy"`
}

// Global configuration state
var (
	globalConfig *Config
	configMutex  sync.RWMutex
)

// SetGlobalConfig sets the global configuration for power users.
// This should be called in an init() function of a lazarus_config.go file.
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = &config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// loadConfig loads configuration with priority: Go config > JSON config > defaults
func loadConfig() Config {
	// Check if power user has set global config via Go file
	if config := GetGlobalConfig(); config != nil {
		return *config
	}

	// Try to load from lazarus.json
	if config, err := loadJSONConfig(); err == nil {
		return config
	}

	// Return sensible defaults
	return getDefaultConfig()
}

// loadJSONConfig loads configuration from lazarus.json
func loadJSONConfig() (Config, error) {
	configPath := findConfigFile()
	if configPath == "" {
		return Config{}, fmt.Errorf("lazarus.json not found")
	}

	if filepath.Base(configPath) != "lazarus.json" || strings.Contains(configPath, "..") {
		return Config{}, fmt.Errorf("invalid config file path: %s", configPath)
	}
	// nosec G304 - configPath is validated above to prevent path traversal
	data, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %v", configPath, err)
	}

	var simpleConfig SimpleConfig
	if err := json.Unmarshal(data, &simpleConfig); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %v", configPath, err)
	}

	// Convert simple config to full config
	config := getDefaultConfig()

	if simpleConfig.ChunkSize > 0 {
		config.ChunkSize = simpleConfig.ChunkSize
	}

	if simpleConfig.Capacity > 0 {
		config.Capacity = simpleConfig.Capacity
	}

	if simpleConfig.MaxPoolSize > 0 {
		config.MaxPoolSize = simpleConfig.MaxPoolSize
	}

	if simpleConfig.Strategy != "" {
		if _, err := ParseStrategy(simpleConfig.Strategy); err != nil {
			return Config{}, fmt.Errorf("invalid strategy in %s: %v", configPath, err)
		}
		config.Strategy = simpleConfig.Strategy
	}

	return config, nil
}

// findConfigFile searches for lazarus.json in current and parent directories
func findConfigFile() string {
	// Start from current directory
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up to 5 parent directories
	for i := 0; i < 5; i++ {
		configPath := filepath.Join(dir, "lazarus.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached root
		}
		dir = parent
	}

	return ""
}

// getDefaultConfig returns the built-in defaults: modest chunking with a
// comfortable retention ceiling, manual queue strategy.
func getDefaultConfig() Config {
	return Config{
		ChunkSize:   4,
		Capacity:    16,
		MaxPoolSize: 128,
		Strategy:    "queue",
	}
}

// LoadConfig loads the current configuration (for debugging/inspection)
func LoadConfig() Config {
	return loadConfig()
}

// GetConfigSource returns information about the configuration source
func GetConfigSource() string {
	if GetGlobalConfig() != nil {
		return "Go configuration (lazarus_config.go)"
	}

	if findConfigFile() != "" {
		return "JSON configuration (lazarus.json)"
	}

	return "Default configuration"
}
