// types.go: Core types and collaborator contract for Lazarus entity pooling library
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import "time"

// Logger interface for optional debug and monitoring logging
type Logger interface {
	// Debug logs debug-level messages (pool hits, pre-allocations, etc.)
	Debug(msg string, fields ...interface{})
	// Info logs informational messages (allocator creation, drains)
	Info(msg string, fields ...interface{})
	// Warn logs warning messages (dangling references, degraded behavior)
	Warn(msg string, fields ...interface{})
	// Error logs error messages (failed operations, critical issues)
	Error(msg string, fields ...interface{})
}

// Position is the placement handed to the host when a summoned entity is
// repositioned. The pooling core never interprets it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PoolTag records which pool a live instance belongs to and whether it is
// currently parked in the inactive set. A tag is attached lazily on first
// hand-out and never removed except at destruction. The allocator owns the
// instance's pooled lifecycle; the caller owns it only between summon and
// relenquish.
// Gen distinguishes successive allocators for the same blueprint: an
// instance whose tag carries a stale generation outlived a force-recreate
// and is treated as a dangling pool reference.
type PoolTag struct {
	Pool     BlueprintID `json:"pool"`
	Gen      uint64      `json:"gen"`
	Inactive bool        `json:"inactive"`
}

// Resetter is the optional interface an entity implements to be notified
// before reuse. The notification is best-effort: entities that do not
// implement it are silently skipped, never an error.
type Resetter interface {
	PoolReset()
}

// notifyReset calls PoolReset on the instance if it implements Resetter.
func notifyReset(instance interface{}) {
	if r, ok := instance.(Resetter); ok {
		r.PoolReset()
	}
}

// Host is the collaborator contract: everything the pooling core requires
// from its surrounding engine. Instantiation, destruction, activation,
// placement, tagging, teardown notification and deferred scheduling all
// belong to the host; the core only orchestrates them.
//
// All methods are invoked synchronously from the pooling core except the
// callback passed to Schedule, which fires on whatever execution context the
// host's scheduler uses.
type Host interface {
	// Create constructs a new entity from the given blueprint.
	Create(blueprint interface{}) interface{}

	// Destroy releases a concrete entity permanently.
	Destroy(instance interface{})

	// SetActive toggles the entity's visibility/processing.
	SetActive(instance interface{}, active bool)

	// Place moves the entity to the given position.
	Place(instance interface{}, pos Position)

	// Tag reads the pool tag attached to the instance, if any.
	Tag(instance interface{}) (*PoolTag, bool)

	// SetTag attaches a pool tag to the instance.
	SetTag(instance interface{}, tag *PoolTag)

	// OnTeardown registers a hook invoked when the current scene/context
	// unloads. The returned function unregisters the hook.
	OnTeardown(fn func()) (cancel func())

	// Schedule runs fn after delay. The returned function cancels the
	// pending invocation if it has not fired yet.
	Schedule(delay time.Duration, fn func()) (cancel func())
}
