// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package flatset

// Insert associates key with val, replacing (and running destructors on)
// any existing association. It returns an iterator to the inserted or
// replaced entry, or a non-nil error (always *tableerr.Error, kind
// KindOutOfMemory) if growth was required and allocation was refused.
func (t *Table[K, V]) Insert(key K, val V) (Iterator[K, V], error) {
	return t.put(key, val, false, true)
}

// GetOrInsert returns an iterator to key's existing association if
// present (no destructor call, no overwrite), or inserts (key, val) and
// returns an iterator to it. Callers distinguish the two paths by
// comparing Size before and after.
func (t *Table[K, V]) GetOrInsert(key K, val V) (Iterator[K, V], error) {
	return t.put(key, val, false, false)
}

func (t *Table[K, V]) put(key K, val V, unique, replace bool) (Iterator[K, V], error) {
	for {
		if pos, home, _, ok := t.tryInsert(key, val, unique, replace); ok {
			return Iterator[K, V]{t: t, pos: pos, end: len(t.buckets), home: home, homeKnown: true}, nil
		}
		target := len(t.buckets) * 2
		if target == 0 {
			target = 8
		}
		if err := t.rehash(target); err != nil {
			return endIterator(t), err
		}
	}
}

// Get returns an iterator to key's association, and whether it was found.
func (t *Table[K, V]) Get(key K) (Iterator[K, V], bool) {
	pos, home, ok := t.findBucket(key)
	if !ok {
		return endIterator(t), false
	}
	return Iterator[K, V]{t: t, pos: pos, end: len(t.buckets), home: home, homeKnown: true}, true
}

// Erase removes key, if present, running its destructors. It reports
// whether a key was erased; a missing key is not an error.
func (t *Table[K, V]) Erase(key K) bool {
	pos, home, ok := t.findBucket(key)
	if !ok {
		return false
	}
	t.eraseAt(pos, home)
	return true
}

// EraseItr erases the key at it and returns an iterator to the next live
// key, so that erase-during-iteration visits every surviving key exactly
// once. It is the only supported way to erase while iterating.
func (t *Table[K, V]) EraseItr(it Iterator[K, V]) Iterator[K, V] {
	home := it.home
	if !it.homeKnown {
		mask := len(t.buckets) - 1
		home = homeBucket(t.hash(t.buckets[it.pos].key), mask)
	}
	advance := t.eraseAt(it.pos, home)
	next := it.pos
	if advance {
		next = it.pos + 1
	}
	return Iterator[K, V]{t: t, pos: fastForward(t.meta, next), end: len(t.buckets)}
}
