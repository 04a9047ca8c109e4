// identity.go: Blueprint identity derivation for Lazarus entity pooling library
//
// Copyright (c) 2025 AGILira
// Series: an AGLIra fragment
// SPDX-License-Identifier: MPL-2.0

package lazarus

// BlueprintID is the stable, opaque handle derived from a blueprint
// reference. Identical blueprint references always yield the same identity;
// distinct references yield distinct identities. The zero value never
// identifies a pool.
type BlueprintID uint64

// identityTable interns blueprint references into BlueprintIDs. Identities
// are assigned on first sight and never recycled, so an ID remains valid for
// the table's whole lifetime even after its allocator is force-recreated.
//
// Blueprints are compared by interface equality: the blueprint type must be
// comparable (pointers, handles, names). A non-comparable blueprint is a
// caller contract violation and panics on first use.
type identityTable struct {
	next BlueprintID
	ids  map[interface{}]BlueprintID
}

func newIdentityTable() *identityTable {
	return &identityTable{
		next: 1,
		ids:  make(map[interface{}]BlueprintID),
	}
}

// idFor returns the identity for blueprint, assigning a fresh one on first
// sight.
func (t *identityTable) idFor(blueprint interface{}) BlueprintID {
	if id, ok := t.ids[blueprint]; ok {
		return id
	}
	id := t.next
	t.next++
	t.ids[blueprint] = id
	return id
}

// known reports whether blueprint has already been assigned an identity,
// without assigning one.
func (t *identityTable) known(blueprint interface{}) (BlueprintID, bool) {
	id, ok := t.ids[blueprint]
	return id, ok
}

// size returns the number of interned blueprints.
func (t *identityTable) size() int {
	return len(t.ids)
}
