// lazarus.go: Pool registry for Lazarus entity pooling library
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import (
	"sync"
	"time"
)

// PoolRegistry owns one allocator per distinct blueprint identity, routes
// summon/relenquish/recycle calls, holds the default sizing policy and
// per-blueprint overrides, and coordinates global drain.
//
// A registry is an explicitly constructed object passed by reference to its
// call sites; keep at most one per process by convention if a singleton is
// wanted. Apart from the deferred-relenquish bookkeeping, the registry
// assumes single-threaded cooperative access like its allocators.
type PoolRegistry struct {
	config   Config
	strategy Strategy
	host     Host
	logger   Logger

	identity   *identityTable
	allocators map[BlueprintID]Allocator
	overrides  map[BlueprintID]PoolSizePolicy
	nextGen    uint64

	// Deferred relenquishes may be cancelled from the host scheduler's
	// execution context, so this map is the one synchronized piece of state.
	pendingMu sync.Mutex
	pending   map[interface{}]*pendingRelenquish

	cancelTeardown func()
	closed         bool
}

type pendingRelenquish struct {
	pool   BlueprintID
	cancel func()
}

// NewPoolRegistry creates a registry bound to the given host collaborator.
// The configured allocator strategy is resolved once here; a strategy the
// registry does not know is a fatal misconfiguration.
func NewPoolRegistry(host Host, config Config) (*PoolRegistry, error) {
	config = config.withDefaults()
	strategy, err := ParseStrategy(config.Strategy)
	if err != nil {
		return nil, err
	}
	r := &PoolRegistry{
		config:     config,
		strategy:   strategy,
		host:       host,
		logger:     config.Logger,
		identity:   newIdentityTable(),
		allocators: make(map[BlueprintID]Allocator),
		overrides:  make(map[BlueprintID]PoolSizePolicy),
		pending:    make(map[interface{}]*pendingRelenquish),
	}
	// Allocators drain themselves on teardown; the pending deferred
	// relenquishes are registry state, so the registry subscribes its own
	// hook. A deferred release left ticking across a teardown would fire
	// against an instance the pool no longer owes.
	r.cancelTeardown = host.OnTeardown(r.DrainAll)
	return r, nil
}

// SetPoolSize installs a per-blueprint sizing override. The override is read
// when the blueprint's allocator is created; it has no effect on an
// allocator that already exists.
func (r *PoolRegistry) SetPoolSize(blueprint interface{}, policy PoolSizePolicy) error {
	if blueprint == nil {
		return ErrNilBlueprint
	}
	r.overrides[r.identity.idFor(blueprint)] = policy.normalized()
	return nil
}

// policyFor resolves the sizing policy for a blueprint identity: override if
// present, process defaults otherwise. Returns by value, so callers never
// share mutable policy state.
func (r *PoolRegistry) policyFor(id BlueprintID) PoolSizePolicy {
	if policy, ok := r.overrides[id]; ok {
		return policy
	}
	return PoolSizePolicy{
		ChunkSize:   r.config.ChunkSize,
		Capacity:    r.config.Capacity,
		MaxPoolSize: r.config.MaxPoolSize,
	}.normalized()
}

// getOrCreateAllocator returns the allocator owning the blueprint's pool,
// creating it on first use. Idempotent for the same blueprint.
func (r *PoolRegistry) getOrCreateAllocator(blueprint interface{}) (Allocator, error) {
	if blueprint == nil {
		return nil, ErrNilBlueprint
	}
	id := r.identity.idFor(blueprint)
	if alloc, ok := r.allocators[id]; ok {
		return alloc, nil
	}
	policy := r.policyFor(id)
	r.nextGen++
	alloc, err := newAllocator(r.strategy, id, r.nextGen, blueprint, r.host, policy)
	if err != nil {
		return nil, err
	}
	r.allocators[id] = alloc
	r.debugf("allocator created", "pool", id, "strategy", r.strategy.String(),
		"chunk", policy.ChunkSize, "max", policy.MaxPoolSize)
	return alloc, nil
}

// Summon acquires an instance for the blueprint, creating one if necessary.
// The instance is tagged with its owning pool, placed at pos, and activated
// when activate is true.
func (r *PoolRegistry) Summon(blueprint interface{}, pos Position, activate bool) (interface{}, error) {
	alloc, err := r.getOrCreateAllocator(blueprint)
	if err != nil {
		return nil, err
	}
	instance := alloc.Summon()
	r.place(instance, pos, activate)
	return instance, nil
}

// RecycleSummon acquires an instance like Summon, but prefers stealing the
// oldest active lease over allocating once the pool is saturated.
func (r *PoolRegistry) RecycleSummon(blueprint interface{}, pos Position, activate bool) (interface{}, error) {
	alloc, err := r.getOrCreateAllocator(blueprint)
	if err != nil {
		return nil, err
	}
	instance := alloc.Recycle()
	// A steal hands an already-active lease to a new caller; a deferred
	// relenquish scheduled by the previous holder must not revoke it.
	r.cancelPending(instance)
	r.place(instance, pos, activate)
	return instance, nil
}

func (r *PoolRegistry) place(instance interface{}, pos Position, activate bool) {
	r.host.Place(instance, pos)
	if activate {
		r.host.SetActive(instance, true)
	}
}

// Relenquish returns an instance to its owning pool, resolved through the
// instance's tag. An untagged instance never came from a pool and is a
// programming error. If the owning allocator was force-recreated away the
// orphaned instance is destroyed and a DanglingPoolError diagnostic is
// returned instead of silently succeeding.
func (r *PoolRegistry) Relenquish(instance interface{}) error {
	if instance == nil {
		return ErrNilInstance
	}
	tag, ok := r.host.Tag(instance)
	if !ok {
		// Rejected call: leave any pending deferred relenquish untouched.
		return ErrMissingTag
	}
	r.cancelPending(instance)
	alloc, ok := r.allocators[tag.Pool]
	if !ok || alloc.Generation() != tag.Gen {
		// The owning allocator was force-recreated away; the instance is an
		// orphan and must not be folded into its successor.
		r.host.Destroy(instance)
		r.warnf("relenquish into vanished pool", "pool", tag.Pool)
		return &DanglingPoolError{Pool: tag.Pool}
	}
	alloc.Relenquish(instance)
	return nil
}

// RelenquishAfter schedules a deferred relenquish through the host's
// scheduling collaborator. The pending release is cancelled automatically if
// the instance is relenquished or its pool is drained away before the delay
// elapses, and the tag is re-validated at fire time rather than assumed
// still valid.
func (r *PoolRegistry) RelenquishAfter(instance interface{}, delay time.Duration) error {
	if instance == nil {
		return ErrNilInstance
	}
	tag, ok := r.host.Tag(instance)
	if !ok {
		return ErrMissingTag
	}
	r.cancelPending(instance)
	cancel := r.host.Schedule(delay, func() {
		r.completeDeferred(instance)
	})
	r.pendingMu.Lock()
	r.pending[instance] = &pendingRelenquish{pool: tag.Pool, cancel: cancel}
	r.pendingMu.Unlock()
	return nil
}

// completeDeferred finishes a deferred relenquish once its delay elapses.
func (r *PoolRegistry) completeDeferred(instance interface{}) {
	r.pendingMu.Lock()
	_, live := r.pending[instance]
	delete(r.pending, instance)
	r.pendingMu.Unlock()
	if !live {
		return
	}
	tag, ok := r.host.Tag(instance)
	if !ok || tag.Inactive {
		// Destroyed or already returned by other means in the meantime.
		return
	}
	if err := r.Relenquish(instance); err != nil {
		r.warnf("deferred relenquish failed", "error", err)
	}
}

// cancelPending drops any deferred relenquish scheduled for the instance.
func (r *PoolRegistry) cancelPending(instance interface{}) {
	r.pendingMu.Lock()
	p, ok := r.pending[instance]
	if ok {
		delete(r.pending, instance)
	}
	r.pendingMu.Unlock()
	if ok {
		p.cancel()
	}
}

// cancelPendingForPool drops every deferred relenquish targeting the pool.
func (r *PoolRegistry) cancelPendingForPool(id BlueprintID) {
	r.pendingMu.Lock()
	var cancels []func()
	for instance, p := range r.pending {
		if p.pool == id {
			cancels = append(cancels, p.cancel)
			delete(r.pending, instance)
		}
	}
	r.pendingMu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (r *PoolRegistry) cancelAllPending() {
	r.pendingMu.Lock()
	var cancels []func()
	for instance, p := range r.pending {
		cancels = append(cancels, p.cancel)
		delete(r.pending, instance)
	}
	r.pendingMu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// ForceRecreateAllocator disposes the blueprint's existing allocator, if
// any, and installs a fresh one with the given sizing policy. Disposal
// drains and destroys everything the old allocator owned, so any outstanding
// references obtained from it are invalidated. Documented hazard, not
// checked.
func (r *PoolRegistry) ForceRecreateAllocator(blueprint interface{}, chunkSize, capacity, maxPoolSize int) error {
	if blueprint == nil {
		return ErrNilBlueprint
	}
	id := r.identity.idFor(blueprint)
	policy := PoolSizePolicy{ChunkSize: chunkSize, Capacity: capacity, MaxPoolSize: maxPoolSize}.normalized()
	r.overrides[id] = policy
	if old, ok := r.allocators[id]; ok {
		r.cancelPendingForPool(id)
		old.Dispose()
		delete(r.allocators, id)
		r.infof("allocator force-recreated", "pool", id)
	}
	r.nextGen++
	alloc, err := newAllocator(r.strategy, id, r.nextGen, blueprint, r.host, policy)
	if err != nil {
		return err
	}
	r.allocators[id] = alloc
	return nil
}

// DrainAll drains every registered allocator, destroying all instances they
// own, and cancels every pending deferred relenquish.
func (r *PoolRegistry) DrainAll() {
	r.cancelAllPending()
	for _, alloc := range r.allocators {
		alloc.Drain()
	}
	r.infof("all pools drained", "pools", len(r.allocators))
}

// InactiveCount returns the number of parked instances for the blueprint's
// pool. A blueprint without an allocator has zero.
func (r *PoolRegistry) InactiveCount(blueprint interface{}) (int, error) {
	if blueprint == nil {
		return 0, ErrNilBlueprint
	}
	id, ok := r.identity.known(blueprint)
	if !ok {
		return 0, nil
	}
	alloc, ok := r.allocators[id]
	if !ok {
		return 0, nil
	}
	return alloc.CountInactive(), nil
}

// IsEmpty reports whether the blueprint's pool holds no instances at all,
// active or inactive. A blueprint without an allocator is empty.
func (r *PoolRegistry) IsEmpty(blueprint interface{}) (bool, error) {
	if blueprint == nil {
		return false, ErrNilBlueprint
	}
	id, ok := r.identity.known(blueprint)
	if !ok {
		return true, nil
	}
	alloc, ok := r.allocators[id]
	if !ok {
		return true, nil
	}
	return alloc.CountAll() == 0, nil
}

// StatsFor returns the counters of the blueprint's pool. A blueprint without
// an allocator has zero counters.
func (r *PoolRegistry) StatsFor(blueprint interface{}) (PoolStats, error) {
	if blueprint == nil {
		return PoolStats{}, ErrNilBlueprint
	}
	id, ok := r.identity.known(blueprint)
	if !ok {
		return PoolStats{}, nil
	}
	alloc, ok := r.allocators[id]
	if !ok {
		return PoolStats{}, nil
	}
	return alloc.Stats(), nil
}

// Stats aggregates the counters of every registered allocator.
func (r *PoolRegistry) Stats() PoolStats {
	var total PoolStats
	for _, alloc := range r.allocators {
		s := alloc.Stats()
		total.Active += s.Active
		total.Inactive += s.Inactive
		total.Created += s.Created
		total.Reused += s.Reused
		total.Stolen += s.Stolen
		total.Destroyed += s.Destroyed
	}
	return total
}

// PoolCount returns the number of registered allocators.
func (r *PoolRegistry) PoolCount() int {
	return len(r.allocators)
}

// Close disposes every allocator and cancels all pending deferred
// relenquishes. The registry must not be used afterwards.
func (r *PoolRegistry) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.cancelTeardown != nil {
		r.cancelTeardown()
		r.cancelTeardown = nil
	}
	r.cancelAllPending()
	for id, alloc := range r.allocators {
		alloc.Dispose()
		delete(r.allocators, id)
	}
}

// Logging helpers; the logger is optional and may be nil.

func (r *PoolRegistry) debugf(msg string, fields ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, fields...)
	}
}

func (r *PoolRegistry) infof(msg string, fields ...interface{}) {
	if r.logger != nil {
		r.logger.Info(msg, fields...)
	}
}

func (r *PoolRegistry) warnf(msg string, fields ...interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, fields...)
	}
}
