// errors.go: Error taxonomy for Lazarus entity pooling library
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

import (
	"errors"
	"fmt"
)

// Sentinel errors for pooling operations.
// These are predefined errors that can be used for error checking with errors.Is.
var (
	// ErrNilBlueprint is returned when a nil blueprint is passed to a registry
	// operation. This signals a programming error at the call site and the call
	// is not retried.
	ErrNilBlueprint = errors.New("lazarus: nil blueprint")

	// ErrNilInstance is returned when a nil instance is passed to a relenquish
	// operation. This signals a programming error at the call site and the call
	// is not retried.
	ErrNilInstance = errors.New("lazarus: nil instance")

	// ErrMissingTag is returned when relenquishing an instance that carries no
	// pool tag. The instance never came from a pool and was never tagged, so
	// the registry has no way to resolve its owning allocator.
	ErrMissingTag = errors.New("lazarus: instance has no pool tag")

	// ErrUnknownStrategy is returned at allocator-creation time when the
	// configured allocator strategy does not name a known backing
	// implementation. This is a misconfiguration, fatal to the call.
	ErrUnknownStrategy = errors.New("lazarus: unknown allocator strategy")
)

// DanglingPoolError reports a relenquish that targeted an allocator which no
// longer exists, typically because it was force-recreated away. The registry
// recovers by destroying the orphaned instance; this error surfaces the
// diagnostic to the caller.
//
// Example:
//
//	var dangling *DanglingPoolError
//	if errors.As(err, &dangling) {
//	    log.Printf("instance from pool %d outlived its allocator", dangling.Pool)
//	}
type DanglingPoolError struct {
	Pool BlueprintID // Identity of the pool the instance was tagged with
}

// Error returns a formatted message identifying the vanished pool.
func (e *DanglingPoolError) Error() string {
	return fmt.Sprintf("lazarus: pool %d no longer exists; orphaned instance destroyed", e.Pool)
}
