// queue_allocator.go: Queue-backed allocator for Lazarus entity pooling library
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import "github.com/gammazero/deque"

// QueueAllocator is the manual backing strategy: a FIFO deque holds the
// inactive set and an activeRoster tracks checked-out instances in
// acquisition order.
type QueueAllocator struct {
	id        BlueprintID
	gen       uint64
	blueprint interface{}
	host      Host
	policy    PoolSizePolicy

	inactive *deque.Deque[interface{}]
	active   *activeRoster

	created   int64
	reused    int64
	stolen    int64
	destroyed int64

	cancelTeardown func()
}

func newQueueAllocator(id BlueprintID, gen uint64, blueprint interface{}, host Host, policy PoolSizePolicy) *QueueAllocator {
	qa := &QueueAllocator{
		id:        id,
		gen:       gen,
		blueprint: blueprint,
		host:      host,
		policy:    policy,
		inactive:  deque.New[interface{}](policy.Capacity),
		active:    newActiveRoster(policy.Capacity),
	}
	qa.cancelTeardown = host.OnTeardown(qa.Drain)
	return qa
}

// Summon returns an entity ready for use, deactivated and not yet
// positioned. When the inactive set is empty a whole chunk is pre-allocated
// first, amortizing future summons; pre-allocation alone never pushes the
// population past MaxPoolSize, but a summon that finds the pool already at
// capacity still manufactures exactly one extra entity.
func (qa *QueueAllocator) Summon() interface{} {
	if qa.inactive.Len() == 0 {
		qa.preallocate()
	} else {
		qa.reused++
	}
	instance := qa.inactive.PopFront()
	qa.active.push(instance)
	ensureTag(qa.host, instance, qa.id, qa.gen, false)
	return instance
}

// preallocate manufactures max(1, min(ChunkSize, MaxPoolSize-CountAll))
// fresh entities, deactivates each and parks them in the inactive set.
func (qa *QueueAllocator) preallocate() {
	n := qa.policy.MaxPoolSize - qa.CountAll()
	if n > qa.policy.ChunkSize {
		n = qa.policy.ChunkSize
	}
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		instance := qa.host.Create(qa.blueprint)
		qa.host.SetActive(instance, false)
		ensureTag(qa.host, instance, qa.id, qa.gen, true)
		qa.inactive.PushBack(instance)
		qa.created++
	}
}

// Recycle behaves like Summon while any inactive entity exists or the pool
// can still grow. Once the pool is fully active and at or over capacity it
// steals the oldest active lease instead: the stolen instance is reset,
// deactivated, moved to the newest active position and handed out again
// without ever leaving the active set. Repeated recycling of a saturated
// pool therefore cycles strictly in original acquisition order.
func (qa *QueueAllocator) Recycle() interface{} {
	if qa.inactive.Len() > 0 || qa.CountAll() < qa.policy.MaxPoolSize {
		return qa.Summon()
	}
	instance, ok := qa.active.oldest()
	if !ok {
		// MaxPoolSize 0 with nothing checked out: fall through to the
		// over-draw path.
		return qa.Summon()
	}
	qa.active.touch(instance)
	notifyReset(instance)
	qa.host.SetActive(instance, false)
	ensureTag(qa.host, instance, qa.id, qa.gen, false)
	qa.stolen++
	return instance
}

// Relenquish resets and deactivates the instance, removes it from the active
// set, and parks it for reuse. Once the inactive set holds MaxPoolSize
// instances the excess is destroyed instead of queued.
func (qa *QueueAllocator) Relenquish(instance interface{}) {
	notifyReset(instance)
	qa.host.SetActive(instance, false)
	qa.active.remove(instance)
	if qa.inactive.Len() < qa.policy.MaxPoolSize {
		ensureTag(qa.host, instance, qa.id, qa.gen, true)
		qa.inactive.PushBack(instance)
		return
	}
	qa.host.Destroy(instance)
	qa.destroyed++
}

// RelenquishAll relenquishes every active instance, oldest first. The head
// is re-read on every iteration, so it stays correct while Relenquish
// mutates the active set underneath.
func (qa *QueueAllocator) RelenquishAll() {
	for {
		instance, ok := qa.active.oldest()
		if !ok {
			return
		}
		qa.Relenquish(instance)
	}
}

// Drain relenquishes everything, then destroys the whole inactive set. The
// population drops to zero and the next Summon behaves as if the allocator
// were newly created.
func (qa *QueueAllocator) Drain() {
	qa.RelenquishAll()
	for qa.inactive.Len() > 0 {
		qa.host.Destroy(qa.inactive.PopFront())
		qa.destroyed++
	}
}

// Dispose drains and unsubscribes from teardown notifications.
func (qa *QueueAllocator) Dispose() {
	qa.Drain()
	if qa.cancelTeardown != nil {
		qa.cancelTeardown()
		qa.cancelTeardown = nil
	}
}

// Generation returns the allocator's creation stamp.
func (qa *QueueAllocator) Generation() uint64 { return qa.gen }

// CountActive returns the number of checked-out instances.
func (qa *QueueAllocator) CountActive() int { return qa.active.len() }

// CountInactive returns the number of parked instances.
func (qa *QueueAllocator) CountInactive() int { return qa.inactive.Len() }

// CountAll returns the live population, active plus inactive.
func (qa *QueueAllocator) CountAll() int { return qa.CountActive() + qa.CountInactive() }

// Stats returns the allocator's counters.
func (qa *QueueAllocator) Stats() PoolStats {
	return PoolStats{
		Active:    qa.CountActive(),
		Inactive:  qa.CountInactive(),
		Created:   qa.created,
		Reused:    qa.reused,
		Stolen:    qa.stolen,
		Destroyed: qa.destroyed,
	}
}
