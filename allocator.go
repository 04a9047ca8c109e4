// allocator.go: Allocator contract and shared bookkeeping for Lazarus entity pooling library
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import (
	"container/list"
	"fmt"
)

// PoolSizePolicy is the sizing triple governing one allocator. It is read at
// allocator-creation time only; changing defaults later never retroactively
// affects already-created allocators.
type PoolSizePolicy struct {
	// ChunkSize is the number of entities pre-allocated at once when the
	// pool is found empty. Minimum 1.
	ChunkSize int `json:"chunk_size"`
	// Capacity is the initial capacity hint for the backing collections.
	Capacity int `json:"capacity"`
	// MaxPoolSize is the ceiling governing pre-allocation and inactive
	// retention. It is not a hard ceiling on concurrently active instances:
	// summon past it still manufactures exactly one entity per call.
	MaxPoolSize int `json:"max_pool_size"`
}

// normalized returns the policy with out-of-range fields clamped to their
// minimums.
func (p PoolSizePolicy) normalized() PoolSizePolicy {
	if p.ChunkSize < 1 {
		p.ChunkSize = 1
	}
	if p.Capacity < 0 {
		p.Capacity = 0
	}
	if p.MaxPoolSize < 0 {
		p.MaxPoolSize = 0
	}
	return p
}

// Strategy selects the backing implementation of an allocator. The strategy
// is chosen once at allocator-creation time and is immutable for that
// allocator's lifetime.
type Strategy int

const (
	// StrategyQueue backs the pool with a manual FIFO queue plus an
	// acquisition-ordered active set.
	StrategyQueue Strategy = iota
	// StrategyEngine delegates inactive storage to the platform pooling
	// primitive while layering the same active-order tracking on top.
	StrategyEngine
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyQueue:
		return "queue"
	case StrategyEngine:
		return "engine"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration string to a Strategy. The empty string
// selects the default queue strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "queue", "":
		return StrategyQueue, nil
	case "engine":
		return StrategyEngine, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// PoolStats contains counters for a single allocator.
type PoolStats struct {
	Active    int   `json:"active"`    // instances currently checked out
	Inactive  int   `json:"inactive"`  // instances parked for reuse
	Created   int64 `json:"created"`   // total factory creations
	Reused    int64 `json:"reused"`    // hand-outs served from the inactive set
	Stolen    int64 `json:"stolen"`    // recycle calls that stole the oldest lease
	Destroyed int64 `json:"destroyed"` // instances destroyed via the host
}

// Total returns the live population, active plus inactive.
func (s PoolStats) Total() int {
	return s.Active + s.Inactive
}

// String returns a human-readable representation of the pool counters.
func (s PoolStats) String() string {
	return fmt.Sprintf("Pool Stats: %d active, %d inactive, %d created, %d reused, %d stolen, %d destroyed",
		s.Active, s.Inactive, s.Created, s.Reused, s.Stolen, s.Destroyed)
}

// Allocator is the operation set every backing strategy implements. The two
// variants are interchangeable behind this contract.
//
// Allocators assume single-threaded cooperative access: every operation runs
// to completion on one logical thread and no synchronization is provided. A
// multithreaded migration must wrap the acquire/release path in an external
// mutual-exclusion boundary per allocator.
type Allocator interface {
	// Summon returns an entity ready for use, deactivated and not yet
	// positioned. An empty inactive set triggers chunked pre-allocation.
	Summon() interface{}

	// Recycle behaves like Summon while the pool can still grow; once the
	// pool is fully active and at or over capacity it steals the oldest
	// active lease instead of allocating.
	Recycle() interface{}

	// Relenquish returns an instance to the pool, or destroys it when the
	// inactive set is already at capacity. The caller guarantees the
	// instance originated from this allocator.
	Relenquish(instance interface{})

	// RelenquishAll relenquishes every active instance, oldest first.
	RelenquishAll()

	// Drain relenquishes everything, then destroys the whole inactive set.
	// Afterwards the allocator behaves as freshly created.
	Drain()

	// Dispose drains, releases backing resources and unsubscribes from
	// teardown notifications. The allocator must not be used afterwards.
	Dispose()

	// CountActive returns the number of checked-out instances.
	CountActive() int
	// CountInactive returns the number of parked instances.
	CountInactive() int
	// CountAll returns CountActive + CountInactive.
	CountAll() int

	// Stats returns the allocator's counters.
	Stats() PoolStats

	// Generation returns the stamp distinguishing this allocator from any
	// predecessor or successor owning the same blueprint identity.
	Generation() uint64
}

// newAllocator constructs the allocator variant matching strategy. The
// sizing policy is captured here and never re-read.
func newAllocator(strategy Strategy, id BlueprintID, gen uint64, blueprint interface{}, host Host, policy PoolSizePolicy) (Allocator, error) {
	policy = policy.normalized()
	switch strategy {
	case StrategyQueue:
		return newQueueAllocator(id, gen, blueprint, host, policy), nil
	case StrategyEngine:
		return newEngineAllocator(id, gen, blueprint, host, policy), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
}

// ensureTag attaches or updates the instance's pool tag through the host.
// Pool and generation are stamped once, at tag creation.
func ensureTag(host Host, instance interface{}, id BlueprintID, gen uint64, inactive bool) {
	if tag, ok := host.Tag(instance); ok {
		tag.Inactive = inactive
		return
	}
	host.SetTag(instance, &PoolTag{Pool: id, Gen: gen, Inactive: inactive})
}

// activeRoster tracks checked-out instances in acquisition order, oldest at
// the front. The element index gives O(1) membership removal, which the
// relenquish path needs.
type activeRoster struct {
	order *list.List
	index map[interface{}]*list.Element
}

func newActiveRoster(capacity int) *activeRoster {
	r := &activeRoster{
		order: list.New(),
		index: make(map[interface{}]*list.Element, capacity),
	}
	return r
}

// push appends the instance at the newest position.
func (r *activeRoster) push(instance interface{}) {
	r.index[instance] = r.order.PushBack(instance)
}

// remove deletes the instance from the roster. Returns false if it was not a
// member.
func (r *activeRoster) remove(instance interface{}) bool {
	elem, ok := r.index[instance]
	if !ok {
		return false
	}
	r.order.Remove(elem)
	delete(r.index, instance)
	return true
}

// oldest returns the instance at the oldest position, if any.
func (r *activeRoster) oldest() (interface{}, bool) {
	front := r.order.Front()
	if front == nil {
		return nil, false
	}
	return front.Value, true
}

// touch moves the instance to the newest position.
func (r *activeRoster) touch(instance interface{}) {
	if elem, ok := r.index[instance]; ok {
		r.order.MoveToBack(elem)
	}
}

func (r *activeRoster) len() int {
	return r.order.Len()
}
