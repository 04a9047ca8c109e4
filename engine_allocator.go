// engine_allocator.go: Platform-primitive-backed allocator for Lazarus entity pooling library
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import "sync"

// EngineAllocator delegates inactive storage to the platform pooling
// primitive (sync.Pool) while layering acquisition-order tracking of the
// active set on top, so recycle-oldest and relenquish-all keep the same
// semantics as the queue variant.
//
// The primitive is allowed to shed parked entries under GC pressure. The
// allocator therefore keeps its own inactive counter as the source of truth:
// a shed entry is replaced by a fresh factory creation at pop time, which is
// indistinguishable from destroy-then-create and keeps
// CountAll == CountActive + CountInactive exact.
type EngineAllocator struct {
	id        BlueprintID
	gen       uint64
	blueprint interface{}
	host      Host
	policy    PoolSizePolicy

	// cache.New stays nil so Get reports an empty primitive as nil.
	cache         sync.Pool
	inactiveCount int
	active        *activeRoster

	created   int64
	reused    int64
	stolen    int64
	destroyed int64

	cancelTeardown func()
}

func newEngineAllocator(id BlueprintID, gen uint64, blueprint interface{}, host Host, policy PoolSizePolicy) *EngineAllocator {
	ea := &EngineAllocator{
		id:        id,
		gen:       gen,
		blueprint: blueprint,
		host:      host,
		policy:    policy,
		active:    newActiveRoster(policy.Capacity),
	}
	ea.cancelTeardown = host.OnTeardown(ea.Drain)
	return ea
}

// popInactive removes one parked instance, re-manufacturing it if the
// primitive shed the stored entry.
func (ea *EngineAllocator) popInactive() interface{} {
	ea.inactiveCount--
	if instance := ea.cache.Get(); instance != nil {
		return instance
	}
	// The shed entry is gone for good; account it as destroyed and
	// manufacture its replacement.
	ea.destroyed++
	instance := ea.host.Create(ea.blueprint)
	ea.host.SetActive(instance, false)
	ea.created++
	return instance
}

// Summon returns an entity ready for use, deactivated and not yet
// positioned. See QueueAllocator.Summon for the pre-allocation and
// over-draw rules; they are identical across strategies.
func (ea *EngineAllocator) Summon() interface{} {
	if ea.inactiveCount == 0 {
		ea.preallocate()
	} else {
		ea.reused++
	}
	instance := ea.popInactive()
	ea.active.push(instance)
	ensureTag(ea.host, instance, ea.id, ea.gen, false)
	return instance
}

func (ea *EngineAllocator) preallocate() {
	n := ea.policy.MaxPoolSize - ea.CountAll()
	if n > ea.policy.ChunkSize {
		n = ea.policy.ChunkSize
	}
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		instance := ea.host.Create(ea.blueprint)
		ea.host.SetActive(instance, false)
		ensureTag(ea.host, instance, ea.id, ea.gen, true)
		ea.cache.Put(instance)
		ea.inactiveCount++
		ea.created++
	}
}

// Recycle behaves like Summon while the pool can still grow, and steals the
// oldest active lease once it cannot. See QueueAllocator.Recycle for the
// round-robin steal semantics.
func (ea *EngineAllocator) Recycle() interface{} {
	if ea.inactiveCount > 0 || ea.CountAll() < ea.policy.MaxPoolSize {
		return ea.Summon()
	}
	instance, ok := ea.active.oldest()
	if !ok {
		return ea.Summon()
	}
	ea.active.touch(instance)
	notifyReset(instance)
	ea.host.SetActive(instance, false)
	ensureTag(ea.host, instance, ea.id, ea.gen, false)
	ea.stolen++
	return instance
}

// Relenquish resets and deactivates the instance, removes it from the active
// set, and hands it to the primitive for retention, destroying it instead
// once the inactive set is at MaxPoolSize.
func (ea *EngineAllocator) Relenquish(instance interface{}) {
	notifyReset(instance)
	ea.host.SetActive(instance, false)
	ea.active.remove(instance)
	if ea.inactiveCount < ea.policy.MaxPoolSize {
		ensureTag(ea.host, instance, ea.id, ea.gen, true)
		ea.cache.Put(instance)
		ea.inactiveCount++
		return
	}
	ea.host.Destroy(instance)
	ea.destroyed++
}

// RelenquishAll relenquishes every active instance, oldest first, re-reading
// the head on each iteration.
func (ea *EngineAllocator) RelenquishAll() {
	for {
		instance, ok := ea.active.oldest()
		if !ok {
			return
		}
		ea.Relenquish(instance)
	}
}

// Drain relenquishes everything, then destroys the whole inactive set.
// Entries already shed by the primitive count as destroyed without a host
// call.
func (ea *EngineAllocator) Drain() {
	ea.RelenquishAll()
	for ea.inactiveCount > 0 {
		ea.inactiveCount--
		if instance := ea.cache.Get(); instance != nil {
			ea.host.Destroy(instance)
		}
		ea.destroyed++
	}
}

// Dispose drains, drops the backing primitive and unsubscribes from
// teardown notifications.
func (ea *EngineAllocator) Dispose() {
	ea.Drain()
	ea.cache = sync.Pool{}
	if ea.cancelTeardown != nil {
		ea.cancelTeardown()
		ea.cancelTeardown = nil
	}
}

// Generation returns the allocator's creation stamp.
func (ea *EngineAllocator) Generation() uint64 { return ea.gen }

// CountActive returns the number of checked-out instances.
func (ea *EngineAllocator) CountActive() int { return ea.active.len() }

// CountInactive returns the number of parked instances.
func (ea *EngineAllocator) CountInactive() int { return ea.inactiveCount }

// CountAll returns the live population, active plus inactive.
func (ea *EngineAllocator) CountAll() int { return ea.CountActive() + ea.CountInactive() }

// Stats returns the allocator's counters.
func (ea *EngineAllocator) Stats() PoolStats {
	return PoolStats{
		Active:    ea.CountActive(),
		Inactive:  ea.CountInactive(),
		Created:   ea.created,
		Reused:    ea.reused,
		Stolen:    ea.stolen,
		Destroyed: ea.destroyed,
	}
}
