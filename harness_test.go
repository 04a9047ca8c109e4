// harness_test.go: Shared fake host harness for Lazarus tests
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import (
	"testing"
	"time"
)

// sprite is the standard test entity. It implements Resetter so reset
// notifications can be counted.
type sprite struct {
	serial    int
	blueprint interface{}
	active    bool
	resets    int
	destroyed bool
	pos       Position
}

func (s *sprite) PoolReset() { s.resets++ }

// husk is a test entity that does NOT implement Resetter, for verifying that
// the reset notification is best-effort.
type husk struct {
	serial int
}

// scheduledJob records one Schedule call on the fake host. Jobs fire only
// when the test advances the scheduler explicitly.
type scheduledJob struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// fakeHost is an in-memory implementation of the Host collaborator contract.
type fakeHost struct {
	nextSerial int
	created    int
	destroyed  int
	tags       map[interface{}]*PoolTag
	teardowns  map[int]func()
	nextHook   int
	jobs       []*scheduledJob

	// newHusks switches Create to entities without a Resetter.
	newHusks bool
	// deferredFree mimics engines that free destroyed entities at frame
	// end: the instance is marked destroyed but its tag stays readable.
	deferredFree bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		tags:      make(map[interface{}]*PoolTag),
		teardowns: make(map[int]func()),
	}
}

func (h *fakeHost) Create(blueprint interface{}) interface{} {
	h.created++
	h.nextSerial++
	if h.newHusks {
		return &husk{serial: h.nextSerial}
	}
	return &sprite{serial: h.nextSerial, blueprint: blueprint}
}

func (h *fakeHost) Destroy(instance interface{}) {
	h.destroyed++
	if s, ok := instance.(*sprite); ok {
		s.destroyed = true
	}
	if !h.deferredFree {
		delete(h.tags, instance)
	}
}

func (h *fakeHost) SetActive(instance interface{}, active bool) {
	if s, ok := instance.(*sprite); ok {
		s.active = active
	}
}

func (h *fakeHost) Place(instance interface{}, pos Position) {
	if s, ok := instance.(*sprite); ok {
		s.pos = pos
	}
}

func (h *fakeHost) Tag(instance interface{}) (*PoolTag, bool) {
	tag, ok := h.tags[instance]
	return tag, ok
}

func (h *fakeHost) SetTag(instance interface{}, tag *PoolTag) {
	h.tags[instance] = tag
}

func (h *fakeHost) OnTeardown(fn func()) (cancel func()) {
	id := h.nextHook
	h.nextHook++
	h.teardowns[id] = fn
	return func() { delete(h.teardowns, id) }
}

func (h *fakeHost) Schedule(delay time.Duration, fn func()) (cancel func()) {
	job := &scheduledJob{delay: delay, fn: fn}
	h.jobs = append(h.jobs, job)
	return func() { job.cancelled = true }
}

// fireTeardown dispatches the scene/context unload notification to every
// registered hook.
func (h *fakeHost) fireTeardown() {
	for _, fn := range h.teardowns {
		fn()
	}
}

// advance fires every pending scheduled job that has not been cancelled.
func (h *fakeHost) advance() {
	for _, job := range h.jobs {
		if job.cancelled || job.fired {
			continue
		}
		job.fired = true
		job.fn()
	}
}

// pendingJobs counts scheduled jobs that have neither fired nor been
// cancelled.
func (h *fakeHost) pendingJobs() int {
	n := 0
	for _, job := range h.jobs {
		if !job.cancelled && !job.fired {
			n++
		}
	}
	return n
}

// newTestAllocator builds an allocator of the given strategy over a fresh
// fake host.
func newTestAllocator(t *testing.T, strategy Strategy, policy PoolSizePolicy) (Allocator, *fakeHost) {
	t.Helper()
	host := newFakeHost()
	alloc, err := newAllocator(strategy, 1, 1, "blueprint", host, policy)
	if err != nil {
		t.Fatalf("newAllocator(%s) failed: %v", strategy, err)
	}
	return alloc, host
}

// checkCounts verifies the active/inactive counts and the population
// invariant CountAll == CountActive + CountInactive.
func checkCounts(t *testing.T, alloc Allocator, active, inactive int) {
	t.Helper()
	if got := alloc.CountActive(); got != active {
		t.Errorf("CountActive = %d, want %d", got, active)
	}
	if got := alloc.CountInactive(); got != inactive {
		t.Errorf("CountInactive = %d, want %d", got, inactive)
	}
	if alloc.CountAll() != alloc.CountActive()+alloc.CountInactive() {
		t.Errorf("population invariant broken: all=%d active=%d inactive=%d",
			alloc.CountAll(), alloc.CountActive(), alloc.CountInactive())
	}
}

// allStrategies enumerates both backing strategies for contract tests.
var allStrategies = []Strategy{StrategyQueue, StrategyEngine}
