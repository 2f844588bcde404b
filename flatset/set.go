// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package flatset

import (
	"fmt"
	"strings"
)

// Set is a keys-only wrapper around Table[K, struct{}], giving the
// engine a set-shaped API.
type Set[K any] struct {
	t *Table[K, struct{}]
}

// NewSet constructs an empty Set using hash and equal as the key
// hash/equality functions.
func NewSet[K any](hash func(K) uint64, equal func(K, K) bool, opts ...Option[K, struct{}]) *Set[K] {
	return &Set[K]{t: NewTable[K, struct{}](hash, equal, opts...)}
}

// Add inserts k. If k is already present, Len is unchanged; the stored key
// is replaced by k and any registered key destructor runs on the old one.
func (s *Set[K]) Add(k K) error {
	_, err := s.t.Insert(k, struct{}{})
	return err
}

// Contains reports whether k is in the set.
func (s *Set[K]) Contains(k K) bool {
	_, ok := s.t.Get(k)
	return ok
}

// Remove removes k, reporting whether it was present.
func (s *Set[K]) Remove(k K) bool { return s.t.Erase(k) }

// Len returns the number of elements.
func (s *Set[K]) Len() int { return s.t.Size() }

// Size is a flatmetrics.Source-compatible alias for Len.
func (s *Set[K]) Size() int { return s.t.Size() }

// BucketCount returns the current bucket array length.
func (s *Set[K]) BucketCount() int { return s.t.BucketCount() }

// Clear removes all elements, keeping the allocated capacity.
func (s *Set[K]) Clear() { s.t.Clear() }

// Reserve ensures the set can hold n elements without a further rehash.
func (s *Set[K]) Reserve(n int) bool { return s.t.Reserve(n) }

// Shrink resizes the set down to fit its current length.
func (s *Set[K]) Shrink() bool { return s.t.Shrink() }

// Range calls f for every element until f returns false or elements are
// exhausted.
func (s *Set[K]) Range(f func(K) bool) {
	for it := s.t.First(); !it.IsEnd(); it = it.Next() {
		if !f(it.Key()) {
			return
		}
	}
}

// Equal reports whether s and o contain the same elements.
func (s *Set[K]) Equal(o *Set[K]) bool {
	if s.Len() != o.Len() {
		return false
	}
	equal := true
	s.Range(func(k K) bool {
		if !o.Contains(k) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// String renders s's contents via fmt's default verb for each element;
// intended for debugging, not a stable serialization format.
func (s *Set[K]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	s.Range(func(k K) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%v", k)
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}
