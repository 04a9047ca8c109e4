// /cmd/lazarus-debug/host.go: In-memory host used for real pool measurements
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"time"

	"github.com/agilira/lazarus"
)

// benchEntity is the entity manufactured during measurements.
type benchEntity struct {
	serial int
	active bool
	pos    lazarus.Position
	buffer [64]byte
}

func (e *benchEntity) PoolReset() {
	e.pos = lazarus.Position{}
	e.buffer = [64]byte{}
}

// benchHost is a self-contained engine stand-in: entities live only in
// memory and scheduling uses the process timer.
type benchHost struct {
	nextSerial int
	tags       map[interface{}]*lazarus.PoolTag
	teardowns  map[int]func()
	nextHook   int
}

func newBenchHost() *benchHost {
	return &benchHost{
		tags:      make(map[interface{}]*lazarus.PoolTag),
		teardowns: make(map[int]func()),
	}
}

func (h *benchHost) Create(blueprint interface{}) interface{} {
	h.nextSerial++
	return &benchEntity{serial: h.nextSerial}
}

func (h *benchHost) Destroy(instance interface{}) {
	delete(h.tags, instance)
}

func (h *benchHost) SetActive(instance interface{}, active bool) {
	if e, ok := instance.(*benchEntity); ok {
		e.active = active
	}
}

func (h *benchHost) Place(instance interface{}, pos lazarus.Position) {
	if e, ok := instance.(*benchEntity); ok {
		e.pos = pos
	}
}

func (h *benchHost) Tag(instance interface{}) (*lazarus.PoolTag, bool) {
	tag, ok := h.tags[instance]
	return tag, ok
}

func (h *benchHost) SetTag(instance interface{}, tag *lazarus.PoolTag) {
	h.tags[instance] = tag
}

func (h *benchHost) OnTeardown(fn func()) (cancel func()) {
	id := h.nextHook
	h.nextHook++
	h.teardowns[id] = fn
	return func() { delete(h.teardowns, id) }
}

func (h *benchHost) Schedule(delay time.Duration, fn func()) (cancel func()) {
	timer := time.AfterFunc(delay, fn)
	return func() { timer.Stop() }
}
