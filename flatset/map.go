// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package flatset

import (
	"fmt"
	"strings"
)

// Map is a key-to-value wrapper around Table[K, V], giving the engine a
// map-shaped API. Table is a single engine supporting both set and map
// semantics; Map and Set are the two concrete Go surfaces over it.
type Map[K, V any] struct {
	t *Table[K, V]
}

// NewMap constructs an empty Map using hash and equal as the key
// hash/equality functions.
func NewMap[K, V any](hash func(K) uint64, equal func(K, K) bool, opts ...Option[K, V]) *Map[K, V] {
	return &Map[K, V]{t: NewTable[K, V](hash, equal, opts...)}
}

// Put associates k with v, replacing any existing association.
func (m *Map[K, V]) Put(k K, v V) error {
	_, err := m.t.Insert(k, v)
	return err
}

// GetOrPut returns k's existing value if present, else inserts (k, v)
// and returns v. inserted reports which path was taken.
func (m *Map[K, V]) GetOrPut(k K, v V) (val V, inserted bool, err error) {
	before := m.t.Size()
	it, err := m.t.GetOrInsert(k, v)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return it.Value(), m.t.Size() != before, nil
}

// Get returns k's value and whether it is present.
func (m *Map[K, V]) Get(k K) (V, bool) {
	it, ok := m.t.Get(k)
	if !ok {
		var zero V
		return zero, false
	}
	return it.Value(), true
}

// Delete removes k, reporting whether it was present.
func (m *Map[K, V]) Delete(k K) bool { return m.t.Erase(k) }

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.t.Size() }

// Size is a flatmetrics.Source-compatible alias for Len.
func (m *Map[K, V]) Size() int { return m.t.Size() }

// BucketCount returns the current bucket array length.
func (m *Map[K, V]) BucketCount() int { return m.t.BucketCount() }

// Clear removes all entries, keeping the allocated capacity.
func (m *Map[K, V]) Clear() { m.t.Clear() }

// Reserve ensures the map can hold n entries without a further rehash.
func (m *Map[K, V]) Reserve(n int) bool { return m.t.Reserve(n) }

// Shrink resizes the map down to fit its current length.
func (m *Map[K, V]) Shrink() bool { return m.t.Shrink() }

// Range calls f for every entry until f returns false or entries are
// exhausted. Mutating the map from within f is undefined behavior.
func (m *Map[K, V]) Range(f func(K, V) bool) {
	for it := m.t.First(); !it.IsEnd(); it = it.Next() {
		if !f(it.Key(), it.Value()) {
			return
		}
	}
}

// Equal reports whether m and o contain the same keys mapped to
// values compared equal by valEqual.
func (m *Map[K, V]) Equal(o *Map[K, V], valEqual func(V, V) bool) bool {
	if m.Len() != o.Len() {
		return false
	}
	equal := true
	m.Range(func(k K, v V) bool {
		ov, ok := o.Get(k)
		if !ok || !valEqual(v, ov) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// String renders m's contents via fmt's default verb for each key/value;
// intended for debugging, not a stable serialization format.
func (m *Map[K, V]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	m.Range(func(k K, v V) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%v:%v", k, v)
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}
