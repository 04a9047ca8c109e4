// api.go: Simplified API layer for Lazarus entity pooling library
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import (
	"fmt"
	"time"
)

// Pools provides a simple interface to the full PoolRegistry
type Pools struct {
	registry *PoolRegistry
}

// Stats provides simplified pooling statistics
type Stats struct {
	Pools     int     `json:"pools"`
	Active    int     `json:"active"`
	Inactive  int     `json:"inactive"`
	Created   int64   `json:"created"`
	Destroyed int64   `json:"destroyed"`
	ReuseRate float64 `json:"reuse_rate"`
}

// New creates a pool registry with automatic configuration loading.
// Priority: Go config > JSON config > defaults.
func New(host Host) (*Pools, error) {
	return NewWithConfig(host, loadConfig())
}

// NewWithConfig creates a pool registry with custom configuration for
// advanced users.
func NewWithConfig(host Host, config Config) (*Pools, error) {
	registry, err := NewPoolRegistry(host, config)
	if err != nil {
		return nil, err
	}
	return &Pools{registry: registry}, nil
}

// NewForUseCase creates a pool registry optimized for a specific use case.
func NewForUseCase(host Host, useCase string) (*Pools, error) {
	return NewWithConfig(host, GetConfigRecommendation(useCase))
}

// Registry exposes the full registry for advanced operations.
func (p *Pools) Registry() *PoolRegistry {
	return p.registry
}

// Summon acquires an instance for the blueprint, placed at pos and activated
// when activate is true.
func (p *Pools) Summon(blueprint interface{}, pos Position, activate bool) (interface{}, error) {
	return p.registry.Summon(blueprint, pos, activate)
}

// RecycleSummon acquires an instance, stealing the oldest active lease once
// the pool is saturated.
func (p *Pools) RecycleSummon(blueprint interface{}, pos Position, activate bool) (interface{}, error) {
	return p.registry.RecycleSummon(blueprint, pos, activate)
}

// Relenquish returns an instance to its owning pool.
func (p *Pools) Relenquish(instance interface{}) error {
	return p.registry.Relenquish(instance)
}

// RelenquishAfter returns an instance to its owning pool after delay.
func (p *Pools) RelenquishAfter(instance interface{}, delay time.Duration) error {
	return p.registry.RelenquishAfter(instance, delay)
}

// SetPoolSize installs a per-blueprint sizing override, read when that
// blueprint's pool is first created.
func (p *Pools) SetPoolSize(blueprint interface{}, chunkSize, capacity, maxPoolSize int) error {
	return p.registry.SetPoolSize(blueprint, PoolSizePolicy{
		ChunkSize:   chunkSize,
		Capacity:    capacity,
		MaxPoolSize: maxPoolSize,
	})
}

// ForceRecreate replaces the blueprint's pool with a fresh one using the
// given sizing policy, destroying everything the old pool owned.
func (p *Pools) ForceRecreate(blueprint interface{}, chunkSize, capacity, maxPoolSize int) error {
	return p.registry.ForceRecreateAllocator(blueprint, chunkSize, capacity, maxPoolSize)
}

// InactiveCount returns the number of parked instances for the blueprint.
func (p *Pools) InactiveCount(blueprint interface{}) (int, error) {
	return p.registry.InactiveCount(blueprint)
}

// IsEmpty reports whether the blueprint's pool holds no instances at all.
func (p *Pools) IsEmpty(blueprint interface{}) (bool, error) {
	return p.registry.IsEmpty(blueprint)
}

// DrainAll force-empties every pool, destroying all instances.
func (p *Pools) DrainAll() {
	p.registry.DrainAll()
}

// Stats returns simplified pooling statistics
func (p *Pools) Stats() Stats {
	s := p.registry.Stats()

	handouts := s.Reused + s.Created
	reuseRate := 0.0
	if handouts > 0 {
		reuseRate = float64(s.Reused) / float64(handouts) * 100.0
	}

	return Stats{
		Pools:     p.registry.PoolCount(),
		Active:    s.Active,
		Inactive:  s.Inactive,
		Created:   s.Created,
		Destroyed: s.Destroyed,
		ReuseRate: reuseRate,
	}
}

// Close disposes every pool and frees resources.
func (p *Pools) Close() {
	p.registry.Close()
}

// String returns a human-readable representation of pooling stats
func (s Stats) String() string {
	return fmt.Sprintf("Pooling Stats: %d pools, %d active, %d inactive, %d created, %d destroyed, %.1f%% reuse rate",
		s.Pools, s.Active, s.Inactive, s.Created, s.Destroyed, s.ReuseRate)
}

// GetConfigInfo returns information about the current configuration
func GetConfigInfo() string {
	config := LoadConfig()
	source := GetConfigSource()

	return fmt.Sprintf("Configuration Source: %s\nChunk Size: %d\nCapacity: %d\nMax Pool Size: %d\nStrategy: %s",
		source, config.ChunkSize, config.Capacity, config.MaxPoolSize, config.Strategy)
}
