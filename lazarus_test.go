// lazarus_test.go: Pool registry tests for Lazarus entity pooling library
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import (
	"errors"
	"testing"
	"time"
)

// capturingLogger records log calls so tests can assert on diagnostics.
type capturingLogger struct {
	debugs, infos, warns, errors []string
}

func (l *capturingLogger) Debug(msg string, fields ...interface{}) { l.debugs = append(l.debugs, msg) }
func (l *capturingLogger) Info(msg string, fields ...interface{})  { l.infos = append(l.infos, msg) }
func (l *capturingLogger) Warn(msg string, fields ...interface{})  { l.warns = append(l.warns, msg) }
func (l *capturingLogger) Error(msg string, fields ...interface{}) { l.errors = append(l.errors, msg) }

func newTestRegistry(t *testing.T, config Config) (*PoolRegistry, *fakeHost) {
	t.Helper()
	host := newFakeHost()
	registry, err := NewPoolRegistry(host, config)
	if err != nil {
		t.Fatalf("NewPoolRegistry failed: %v", err)
	}
	return registry, host
}

func TestNewPoolRegistry_UnknownStrategy(t *testing.T) {
	_, err := NewPoolRegistry(newFakeHost(), Config{Strategy: "arena"})
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("err = %v, want ErrUnknownStrategy", err)
	}
}

func TestRegistry_SummonPlacesAndActivates(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 2, Capacity: 2, MaxPoolSize: 8})
	defer registry.Close()

	pos := Position{X: 1, Y: 2, Z: 3}
	instance, err := registry.Summon("goblin", pos, true)
	if err != nil {
		t.Fatalf("Summon failed: %v", err)
	}
	s := instance.(*sprite)
	if s.pos != pos {
		t.Errorf("pos = %+v, want %+v", s.pos, pos)
	}
	if !s.active {
		t.Error("instance should be activated when activate is true")
	}
	if _, ok := host.Tag(instance); !ok {
		t.Error("summoned instance should carry a pool tag")
	}
}

func TestRegistry_SummonWithoutActivation(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	instance, err := registry.Summon("goblin", Position{}, false)
	if err != nil {
		t.Fatalf("Summon failed: %v", err)
	}
	if instance.(*sprite).active {
		t.Error("instance should stay deactivated when activate is false")
	}
}

func TestRegistry_NilBlueprintErrors(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{})
	defer registry.Close()

	if _, err := registry.Summon(nil, Position{}, true); !errors.Is(err, ErrNilBlueprint) {
		t.Errorf("Summon err = %v, want ErrNilBlueprint", err)
	}
	if _, err := registry.RecycleSummon(nil, Position{}, true); !errors.Is(err, ErrNilBlueprint) {
		t.Errorf("RecycleSummon err = %v, want ErrNilBlueprint", err)
	}
	if err := registry.SetPoolSize(nil, PoolSizePolicy{}); !errors.Is(err, ErrNilBlueprint) {
		t.Errorf("SetPoolSize err = %v, want ErrNilBlueprint", err)
	}
	if err := registry.ForceRecreateAllocator(nil, 1, 1, 1); !errors.Is(err, ErrNilBlueprint) {
		t.Errorf("ForceRecreateAllocator err = %v, want ErrNilBlueprint", err)
	}
	if _, err := registry.InactiveCount(nil); !errors.Is(err, ErrNilBlueprint) {
		t.Errorf("InactiveCount err = %v, want ErrNilBlueprint", err)
	}
	if _, err := registry.IsEmpty(nil); !errors.Is(err, ErrNilBlueprint) {
		t.Errorf("IsEmpty err = %v, want ErrNilBlueprint", err)
	}
	if _, err := registry.StatsFor(nil); !errors.Is(err, ErrNilBlueprint) {
		t.Errorf("StatsFor err = %v, want ErrNilBlueprint", err)
	}
}

func TestRegistry_OneAllocatorPerBlueprint(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	registry.Summon("goblin", Position{}, true)
	registry.Summon("goblin", Position{}, true)
	if got := registry.PoolCount(); got != 1 {
		t.Errorf("PoolCount = %d, want 1", got)
	}

	registry.Summon("troll", Position{}, true)
	if got := registry.PoolCount(); got != 2 {
		t.Errorf("PoolCount = %d, want 2", got)
	}

	goblins, _ := registry.StatsFor("goblin")
	trolls, _ := registry.StatsFor("troll")
	if goblins.Active != 2 {
		t.Errorf("goblin active = %d, want 2", goblins.Active)
	}
	if trolls.Active != 1 {
		t.Errorf("troll active = %d, want 1", trolls.Active)
	}
}

func TestRegistry_RelenquishErrors(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{})
	defer registry.Close()

	if err := registry.Relenquish(nil); !errors.Is(err, ErrNilInstance) {
		t.Errorf("err = %v, want ErrNilInstance", err)
	}
	if err := registry.Relenquish(&sprite{}); !errors.Is(err, ErrMissingTag) {
		t.Errorf("err = %v, want ErrMissingTag", err)
	}
}

func TestRegistry_RelenquishRoundTrip(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	instance, err := registry.Summon("goblin", Position{}, true)
	if err != nil {
		t.Fatalf("Summon failed: %v", err)
	}
	if err := registry.Relenquish(instance); err != nil {
		t.Fatalf("Relenquish failed: %v", err)
	}
	inactive, _ := registry.InactiveCount("goblin")
	if inactive != 1 {
		t.Errorf("InactiveCount = %d, want 1", inactive)
	}
}

// TestRegistry_DanglingPoolReference verifies the orphan protocol: an
// instance whose allocator was force-recreated must not be folded into the
// successor pool.
func TestRegistry_DanglingPoolReference(t *testing.T) {
	logger := &capturingLogger{}
	registry, host := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8, Logger: logger})
	defer registry.Close()

	// Destruction is deferred in the hosting engine, so a stale reference
	// can still present its tag after its pool is gone.
	host.deferredFree = true

	instance, err := registry.Summon("goblin", Position{}, true)
	if err != nil {
		t.Fatalf("Summon failed: %v", err)
	}
	if err := registry.ForceRecreateAllocator("goblin", 2, 2, 8); err != nil {
		t.Fatalf("ForceRecreateAllocator failed: %v", err)
	}

	err = registry.Relenquish(instance)
	var dangling *DanglingPoolError
	if !errors.As(err, &dangling) {
		t.Fatalf("err = %v, want DanglingPoolError", err)
	}
	if !instance.(*sprite).destroyed {
		t.Error("orphaned instance should be destroyed")
	}
	if len(logger.warns) == 0 {
		t.Error("orphan destruction should be logged as a warning")
	}

	// The successor pool's counts are untouched by the orphan.
	stats, _ := registry.StatsFor("goblin")
	if stats.Inactive != 0 {
		t.Errorf("successor inactive = %d, want 0", stats.Inactive)
	}
}

func TestRegistry_ForceRecreateAppliesNewPolicy(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	registry.Summon("goblin", Position{}, true)
	if err := registry.ForceRecreateAllocator("goblin", 5, 5, 10); err != nil {
		t.Fatalf("ForceRecreateAllocator failed: %v", err)
	}

	registry.Summon("goblin", Position{}, true)
	inactive, _ := registry.InactiveCount("goblin")
	if inactive != 4 {
		t.Errorf("InactiveCount = %d, want 4 (chunk of 5 minus the hand-out)", inactive)
	}
}

func TestRegistry_SetPoolSizeOverride(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	if err := registry.SetPoolSize("goblin", PoolSizePolicy{ChunkSize: 5, Capacity: 5, MaxPoolSize: 10}); err != nil {
		t.Fatalf("SetPoolSize failed: %v", err)
	}
	registry.Summon("goblin", Position{}, true)
	inactive, _ := registry.InactiveCount("goblin")
	if inactive != 4 {
		t.Errorf("InactiveCount = %d, want 4", inactive)
	}
}

// TestRegistry_SetPoolSizeAfterCreationIsDeferred verifies that an override
// installed after the allocator exists only takes effect on recreation.
func TestRegistry_SetPoolSizeAfterCreationIsDeferred(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	registry.Summon("goblin", Position{}, true)
	registry.SetPoolSize("goblin", PoolSizePolicy{ChunkSize: 5, Capacity: 5, MaxPoolSize: 10})

	registry.Summon("goblin", Position{}, true)
	inactive, _ := registry.InactiveCount("goblin")
	if inactive != 0 {
		t.Errorf("InactiveCount = %d, want 0 (old chunk size still in force)", inactive)
	}
}

func TestRegistry_RelenquishAfter(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	instance, _ := registry.Summon("goblin", Position{}, true)
	if err := registry.RelenquishAfter(instance, 50*time.Millisecond); err != nil {
		t.Fatalf("RelenquishAfter failed: %v", err)
	}
	if got := host.pendingJobs(); got != 1 {
		t.Fatalf("pending jobs = %d, want 1", got)
	}

	host.advance()
	inactive, _ := registry.InactiveCount("goblin")
	if inactive != 1 {
		t.Errorf("InactiveCount = %d, want 1", inactive)
	}
}

func TestRegistry_RelenquishAfterUntagged(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{})
	defer registry.Close()

	if err := registry.RelenquishAfter(&sprite{}, time.Second); !errors.Is(err, ErrMissingTag) {
		t.Errorf("err = %v, want ErrMissingTag", err)
	}
	if err := registry.RelenquishAfter(nil, time.Second); !errors.Is(err, ErrNilInstance) {
		t.Errorf("err = %v, want ErrNilInstance", err)
	}
}

// TestRegistry_EarlyRelenquishCancelsDeferred verifies that a manual
// relenquish supersedes a scheduled one, so the instance is not returned
// twice.
func TestRegistry_EarlyRelenquishCancelsDeferred(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	instance, _ := registry.Summon("goblin", Position{}, true)
	registry.RelenquishAfter(instance, 50*time.Millisecond)
	if err := registry.Relenquish(instance); err != nil {
		t.Fatalf("Relenquish failed: %v", err)
	}
	if got := host.pendingJobs(); got != 0 {
		t.Errorf("pending jobs = %d, want 0 after manual relenquish", got)
	}

	host.advance()
	inactive, _ := registry.InactiveCount("goblin")
	if inactive != 1 {
		t.Errorf("InactiveCount = %d, want 1 (no double return)", inactive)
	}
	if got := instance.(*sprite).resets; got != 1 {
		t.Errorf("resets = %d, want 1", got)
	}
}

// TestRegistry_RescheduleReplacesPending verifies that scheduling twice for
// the same instance keeps only the newest deferred release.
func TestRegistry_RescheduleReplacesPending(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	instance, _ := registry.Summon("goblin", Position{}, true)
	registry.RelenquishAfter(instance, 50*time.Millisecond)
	registry.RelenquishAfter(instance, 200*time.Millisecond)
	if got := host.pendingJobs(); got != 1 {
		t.Errorf("pending jobs = %d, want 1", got)
	}

	host.advance()
	inactive, _ := registry.InactiveCount("goblin")
	if inactive != 1 {
		t.Errorf("InactiveCount = %d, want 1", inactive)
	}
}

// TestRegistry_DeferredSkipsVanishedInstance verifies the fire-time guard: a
// deferred release whose instance lost its tag in the meantime is dropped
// silently.
func TestRegistry_DeferredSkipsVanishedInstance(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	instance, _ := registry.Summon("goblin", Position{}, true)
	registry.RelenquishAfter(instance, 50*time.Millisecond)

	// The engine destroyed the entity outside the pool's control.
	host.Destroy(instance)

	host.advance()
	inactive, _ := registry.InactiveCount("goblin")
	if inactive != 0 {
		t.Errorf("InactiveCount = %d, want 0", inactive)
	}
}

func TestRegistry_ForceRecreateCancelsPoolPending(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	goblin, _ := registry.Summon("goblin", Position{}, true)
	troll, _ := registry.Summon("troll", Position{}, true)
	registry.RelenquishAfter(goblin, 50*time.Millisecond)
	registry.RelenquishAfter(troll, 50*time.Millisecond)

	registry.ForceRecreateAllocator("goblin", 1, 1, 8)
	if got := host.pendingJobs(); got != 1 {
		t.Errorf("pending jobs = %d, want 1 (only the troll's survives)", got)
	}
}

func TestRegistry_DrainAll(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 2, Capacity: 2, MaxPoolSize: 8})
	defer registry.Close()

	goblin, _ := registry.Summon("goblin", Position{}, true)
	registry.Summon("troll", Position{}, true)
	registry.RelenquishAfter(goblin, 50*time.Millisecond)

	registry.DrainAll()
	if got := host.pendingJobs(); got != 0 {
		t.Errorf("pending jobs = %d, want 0", got)
	}
	stats := registry.Stats()
	if stats.Active != 0 || stats.Inactive != 0 {
		t.Errorf("population after drain = %d active, %d inactive, want 0/0", stats.Active, stats.Inactive)
	}
	if host.destroyed != host.created {
		t.Errorf("destroyed %d of %d created", host.destroyed, host.created)
	}

	// Pools stay registered and usable after a drain.
	if got := registry.PoolCount(); got != 2 {
		t.Errorf("PoolCount = %d, want 2", got)
	}
	if _, err := registry.Summon("goblin", Position{}, true); err != nil {
		t.Errorf("Summon after drain failed: %v", err)
	}
}

func TestRegistry_StatsAggregate(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	for i := 0; i < 3; i++ {
		registry.Summon("goblin", Position{}, true)
	}
	registry.Summon("troll", Position{}, true)

	stats := registry.Stats()
	if stats.Active != 4 {
		t.Errorf("Active = %d, want 4", stats.Active)
	}
	if stats.Created != 4 {
		t.Errorf("Created = %d, want 4", stats.Created)
	}
}

func TestRegistry_QueriesForUnknownBlueprint(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{})
	defer registry.Close()

	empty, err := registry.IsEmpty("phantom")
	if err != nil || !empty {
		t.Errorf("IsEmpty = %v, %v, want true, nil", empty, err)
	}
	inactive, err := registry.InactiveCount("phantom")
	if err != nil || inactive != 0 {
		t.Errorf("InactiveCount = %d, %v, want 0, nil", inactive, err)
	}
	stats, err := registry.StatsFor("phantom")
	if err != nil || stats != (PoolStats{}) {
		t.Errorf("StatsFor = %+v, %v, want zero stats, nil", stats, err)
	}
	// Queries never materialize an allocator.
	if got := registry.PoolCount(); got != 0 {
		t.Errorf("PoolCount = %d, want 0", got)
	}
}

func TestRegistry_IsEmptyLifecycle(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{ChunkSize: 2, Capacity: 2, MaxPoolSize: 8})
	defer registry.Close()

	instance, _ := registry.Summon("goblin", Position{}, true)
	empty, _ := registry.IsEmpty("goblin")
	if empty {
		t.Error("pool with live instances should not be empty")
	}

	registry.Relenquish(instance)
	empty, _ = registry.IsEmpty("goblin")
	if empty {
		t.Error("pool with parked instances should not be empty")
	}

	registry.DrainAll()
	empty, _ = registry.IsEmpty("goblin")
	if !empty {
		t.Error("drained pool should be empty")
	}
}

func TestRegistry_Close(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 2, Capacity: 2, MaxPoolSize: 8})

	goblin, _ := registry.Summon("goblin", Position{}, true)
	registry.Summon("troll", Position{}, true)
	registry.RelenquishAfter(goblin, 50*time.Millisecond)

	registry.Close()
	registry.Close() // idempotent

	if got := registry.PoolCount(); got != 0 {
		t.Errorf("PoolCount = %d, want 0", got)
	}
	if got := host.pendingJobs(); got != 0 {
		t.Errorf("pending jobs = %d, want 0", got)
	}
	if len(host.teardowns) != 0 {
		t.Errorf("teardown hooks = %d, want 0", len(host.teardowns))
	}
	if host.destroyed != host.created {
		t.Errorf("destroyed %d of %d created", host.destroyed, host.created)
	}
}

func TestRegistry_HostTeardownDrainsEveryPool(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 2, Capacity: 2, MaxPoolSize: 8})
	defer registry.Close()

	registry.Summon("goblin", Position{}, true)
	registry.Summon("troll", Position{}, true)

	host.fireTeardown()
	stats := registry.Stats()
	if stats.Active != 0 || stats.Inactive != 0 {
		t.Errorf("population after teardown = %d active, %d inactive, want 0/0", stats.Active, stats.Inactive)
	}
}

// TestRegistry_TeardownCancelsDeferred verifies that a host teardown drops
// pending deferred relenquishes along with the pools themselves. A deferred
// release surviving the drain would fire against a destroyed instance and,
// under deferred engine freeing, park it back into the inactive set.
func TestRegistry_TeardownCancelsDeferred(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 1})
	defer registry.Close()

	host.deferredFree = true

	registry.Summon("goblin", Position{}, true)
	second, _ := registry.Summon("goblin", Position{}, true)
	registry.Summon("goblin", Position{}, true)
	registry.RelenquishAfter(second, 50*time.Millisecond)

	host.fireTeardown()
	if got := host.pendingJobs(); got != 0 {
		t.Errorf("pending jobs after teardown = %d, want 0", got)
	}

	host.advance()
	inactive, _ := registry.InactiveCount("goblin")
	if inactive != 0 {
		t.Errorf("InactiveCount = %d, want 0 (destroyed instance must not be re-parked)", inactive)
	}
	if !second.(*sprite).destroyed {
		t.Fatal("teardown should have destroyed the over-drawn instance")
	}
	fresh, err := registry.Summon("goblin", Position{}, true)
	if err != nil {
		t.Fatalf("Summon after teardown failed: %v", err)
	}
	if fresh == second {
		t.Error("summon after teardown handed out a destroyed instance")
	}
}

// TestRegistry_StolenLeaseCancelsDeferred verifies that a recycle steal
// revokes the previous holder's scheduled release: the new lease must stay
// active instead of being relenquished out from under its holder.
func TestRegistry_StolenLeaseCancelsDeferred(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 1})
	defer registry.Close()

	first, _ := registry.RecycleSummon("goblin", Position{}, true)
	registry.RelenquishAfter(first, 50*time.Millisecond)

	stolen, err := registry.RecycleSummon("goblin", Position{}, true)
	if err != nil {
		t.Fatalf("RecycleSummon failed: %v", err)
	}
	if stolen != first {
		t.Fatal("saturated recycle-summon should steal the only lease")
	}
	if got := host.pendingJobs(); got != 0 {
		t.Errorf("pending jobs after steal = %d, want 0", got)
	}

	host.advance()
	stats, _ := registry.StatsFor("goblin")
	if stats.Active != 1 || stats.Inactive != 0 {
		t.Errorf("population after steal = %d active, %d inactive, want 1/0", stats.Active, stats.Inactive)
	}
}

// TestRegistry_RejectedRelenquishLeavesPending verifies that a relenquish
// failing with ErrMissingTag has no side effect on deferred bookkeeping.
func TestRegistry_RejectedRelenquishLeavesPending(t *testing.T) {
	registry, host := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 8})
	defer registry.Close()

	instance, _ := registry.Summon("goblin", Position{}, true)
	registry.RelenquishAfter(instance, 50*time.Millisecond)

	delete(host.tags, instance)
	if err := registry.Relenquish(instance); !errors.Is(err, ErrMissingTag) {
		t.Fatalf("err = %v, want ErrMissingTag", err)
	}
	if got := host.pendingJobs(); got != 1 {
		t.Errorf("pending jobs = %d, want 1 (rejected call must not cancel)", got)
	}
}

func TestRegistry_RecycleSummonStealsWhenSaturated(t *testing.T) {
	registry, _ := newTestRegistry(t, Config{ChunkSize: 1, Capacity: 1, MaxPoolSize: 2})
	defer registry.Close()

	first, _ := registry.RecycleSummon("goblin", Position{}, true)
	registry.RecycleSummon("goblin", Position{}, true)

	third, err := registry.RecycleSummon("goblin", Position{X: 9}, true)
	if err != nil {
		t.Fatalf("RecycleSummon failed: %v", err)
	}
	if third != first {
		t.Error("saturated recycle-summon should steal the oldest lease")
	}
	s := third.(*sprite)
	if s.pos.X != 9 {
		t.Errorf("stolen instance pos.X = %v, want 9", s.pos.X)
	}
	if !s.active {
		t.Error("stolen instance should be re-activated by the hand-out")
	}
}
