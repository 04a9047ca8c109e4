// config_validator.go: Smart configuration validation and optimization
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import "fmt"

// ConfigValidationResult contains validation results and suggestions
type ConfigValidationResult struct {
	IsValid         bool     `json:"is_valid"`
	Warnings        []string `json:"warnings"`
	Suggestions     []string `json:"suggestions"`
	OptimizedConfig *Config  `json:"optimized_config,omitempty"`
}

// ValidateConfig validates a configuration and provides optimization suggestions
func ValidateConfig(config Config) ConfigValidationResult {
	result := ConfigValidationResult{
		IsValid:     true,
		Warnings:    []string{},
		Suggestions: []string{},
	}

	// Validate chunk size
	if config.ChunkSize < 1 {
		result.IsValid = false
		result.Warnings = append(result.Warnings, "Chunk size must be at least 1")
	} else if config.MaxPoolSize > 0 && config.ChunkSize > config.MaxPoolSize {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Chunk size (%d) exceeds max pool size (%d); pre-allocation is clamped to the remaining capacity",
			config.ChunkSize, config.MaxPoolSize))
	}

	// Validate capacity hint
	if config.Capacity < 0 {
		result.IsValid = false
		result.Warnings = append(result.Warnings, "Capacity must not be negative")
	} else if config.MaxPoolSize > 0 && config.Capacity > config.MaxPoolSize {
		result.Suggestions = append(result.Suggestions, fmt.Sprintf("Capacity hint (%d) is larger than max pool size (%d); the extra capacity is never used",
			config.Capacity, config.MaxPoolSize))
	}

	// Validate max pool size
	if config.MaxPoolSize < 0 {
		result.IsValid = false
		result.Warnings = append(result.Warnings, "Max pool size must not be negative")
	} else if config.MaxPoolSize == 0 {
		result.Warnings = append(result.Warnings, "Max pool size 0 disables retention: every relenquished entity is destroyed immediately")
	} else if config.MaxPoolSize > 1000000 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Very large max pool size (%d) can retain significant host memory", config.MaxPoolSize))
	}

	// Chunking suggestions
	if config.MaxPoolSize >= 64 && config.ChunkSize == 1 {
		result.Suggestions = append(result.Suggestions, fmt.Sprintf("Consider a chunk size around %d to amortize creation for a pool of %d",
			config.MaxPoolSize/16, config.MaxPoolSize))
	}

	// Strategy validation
	if _, err := ParseStrategy(config.Strategy); err != nil {
		result.IsValid = false
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unknown allocator strategy %q", config.Strategy))
	}

	// Generate optimized config
	if len(result.Suggestions) > 0 {
		result.OptimizedConfig = generateOptimizedConfig(config)
	}

	return result
}

// generateOptimizedConfig creates an optimized version of the config
func generateOptimizedConfig(config Config) *Config {
	optimized := config

	if optimized.MaxPoolSize >= 64 && optimized.ChunkSize == 1 {
		optimized.ChunkSize = optimized.MaxPoolSize / 16
	}
	if optimized.MaxPoolSize > 0 && optimized.Capacity > optimized.MaxPoolSize {
		optimized.Capacity = optimized.MaxPoolSize
	}

	return &optimized
}

// GetConfigRecommendation provides configuration recommendations based on use case
func GetConfigRecommendation(useCase string) Config {
	switch useCase {
	case "development":
		return Config{
			ChunkSize:   1,
			Capacity:    8,
			MaxPoolSize: 16,
			Strategy:    "queue", // Deterministic ordering, simpler to debug
		}
	case "high-throughput":
		return Config{
			ChunkSize:   32,
			Capacity:    256,
			MaxPoolSize: 1024,
			Strategy:    "engine",
		}
	case "burst-heavy":
		return Config{
			ChunkSize:   64,
			Capacity:    128,
			MaxPoolSize: 512,
			Strategy:    "queue",
		}
	case "memory-efficient":
		return Config{
			ChunkSize:   2,
			Capacity:    8,
			MaxPoolSize: 32,
			Strategy:    "engine", // Parked entries may be shed under GC pressure
		}
	default:
		return getDefaultConfig()
	}
}
