// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package flatset

import (
	"unsafe"

	"github.com/aristanetworks/flathash/tableerr"
)

const defaultMaxLoad = 0.9

// zeroMeta is the static all-ones 4-word buffer a zero-capacity table's
// metadata slice is backed by (invariant 9): no heap allocation exists
// while a table has no buckets.
var zeroMeta = [4]uint16{allOnes, allOnes, allOnes, allOnes}

func zeroMetaSlice() []uint16 { return zeroMeta[:] }

type bucket[K, V any] struct {
	key K
	val V
}

// Option configures a Table at construction time.
type Option[K, V any] func(*Table[K, V])

// WithMaxLoad overrides the default load factor ceiling of 0.9. f must be
// in (0, 1]; values near 1.0 make displacement exhaustion (and therefore
// internal rehashing) more frequent but never affect correctness.
func WithMaxLoad[K, V any](f float64) Option[K, V] {
	return func(t *Table[K, V]) { t.maxLoad = f }
}

// WithKeyDtor registers a destructor invoked exactly once per key on
// erase, replace, clear, and cleanup. Rehash relocations are not
// destruction events.
func WithKeyDtor[K, V any](dtor func(*K)) Option[K, V] {
	return func(t *Table[K, V]) { t.keyDtor = dtor }
}

// WithValDtor registers a destructor invoked exactly once per value on
// erase, replace, clear, and cleanup.
func WithValDtor[K, V any](dtor func(*V)) Option[K, V] {
	return func(t *Table[K, V]) { t.valDtor = dtor }
}

// WithAllocGate installs a fallible allocation gate, called with the
// approximate number of bytes a pending metadata+bucket allocation would
// need before the table makes it. Returning false fails the operation
// with a *tableerr.Error of kind KindOutOfMemory instead of allocating --
// a hook for callers that want to cap memory use or simulate allocation
// failure in tests. The default (nil) gate never refuses, matching Go's
// ordinary make-and-let-the-GC-reclaim allocation model.
func WithAllocGate[K, V any](gate func(wantBytes uintptr) bool) Option[K, V] {
	return func(t *Table[K, V]) { t.allocGate = gate }
}

// Table is a generic open-addressed set/map hash table. The zero value is
// not usable; construct one with NewTable, NewSet, or NewMap.
type Table[K, V any] struct {
	hash  func(K) uint64
	equal func(K, K) bool

	keyDtor func(*K)
	valDtor func(*V)

	maxLoad   float64
	allocGate func(wantBytes uintptr) bool

	keyCount int
	meta     []uint16
	buckets  []bucket[K, V]
}

// NewTable constructs an empty, zero-capacity table using hash and equal
// as the key hash/equality functions. hash must be deterministic and
// well-distributed across all 64 bits (the top 4 feed the metadata hash
// fragment).
func NewTable[K, V any](hash func(K) uint64, equal func(K, K) bool, opts ...Option[K, V]) *Table[K, V] {
	t := &Table[K, V]{
		hash:    hash,
		equal:   equal,
		maxLoad: defaultMaxLoad,
		meta:    zeroMetaSlice(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Size returns the number of keys currently stored.
func (t *Table[K, V]) Size() int { return t.keyCount }

// BucketCount returns the current bucket array length B (0 or a power of
// two >= 8).
func (t *Table[K, V]) BucketCount() int { return len(t.buckets) }

func allocBytes[K, V any](n int) uintptr {
	var b bucket[K, V]
	return uintptr(n+4)*2 + uintptr(n)*unsafe.Sizeof(b)
}

// InitClone makes t a shallow copy of src's keys/values and metadata.
// Mutating t afterwards never affects src.
func (t *Table[K, V]) InitClone(src *Table[K, V]) error {
	t.hash, t.equal = src.hash, src.equal
	t.keyDtor, t.valDtor = src.keyDtor, src.valDtor
	t.maxLoad, t.allocGate = src.maxLoad, src.allocGate

	if len(src.buckets) == 0 {
		t.meta = zeroMetaSlice()
		t.buckets = nil
		t.keyCount = 0
		return nil
	}
	if t.allocGate != nil && !t.allocGate(allocBytes[K, V](len(src.buckets))) {
		return tableerr.OutOfMemory("init_clone")
	}
	meta := make([]uint16, len(src.meta))
	copy(meta, src.meta)
	buckets := make([]bucket[K, V], len(src.buckets))
	copy(buckets, src.buckets)
	t.meta = meta
	t.buckets = buckets
	t.keyCount = src.keyCount
	return nil
}

// Clone returns a new table that is a shallow copy of t.
func (t *Table[K, V]) Clone() (*Table[K, V], error) {
	c := &Table[K, V]{}
	if err := c.InitClone(t); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear removes all keys, running destructors, but keeps the current
// bucket/metadata arrays allocated.
func (t *Table[K, V]) Clear() {
	for it := t.First(); !it.IsEnd(); it = it.Next() {
		if t.keyDtor != nil {
			t.keyDtor(&t.buckets[it.pos].key)
		}
		if t.valDtor != nil {
			t.valDtor(&t.buckets[it.pos].val)
		}
	}
	for i := range t.meta[:len(t.buckets)] {
		t.meta[i] = 0
	}
	var zb bucket[K, V]
	for i := range t.buckets {
		t.buckets[i] = zb
	}
	t.keyCount = 0
}

// Cleanup runs destructors for all live keys/values, frees both arrays,
// and resets the table to the zero-capacity state.
func (t *Table[K, V]) Cleanup() {
	t.Clear()
	t.meta = zeroMetaSlice()
	t.buckets = nil
}
