// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package flatset

import (
	"github.com/aristanetworks/glog"

	"github.com/aristanetworks/flathash/tableerr"
)

// rehash allocates a fresh pair of arrays sized to targetB buckets and
// reinserts every live key. If reinsertion hits displacement exhaustion
// at targetB, the attempt is discarded and retried at double the
// capacity until it succeeds or the allocation gate refuses, in which
// case the table is left unchanged and a tableerr.Error of kind
// KindOutOfMemory is returned.
func (t *Table[K, V]) rehash(targetB int) error {
	for {
		if t.allocGate != nil && !t.allocGate(allocBytes[K, V](targetB)) {
			return tableerr.OutOfMemory("rehash")
		}

		newMeta := make([]uint16, targetB+4)
		for i := targetB; i < targetB+4; i++ {
			newMeta[i] = allOnes
		}
		newBuckets := make([]bucket[K, V], targetB)

		scratch := &Table[K, V]{
			hash:    t.hash,
			equal:   t.equal,
			maxLoad: t.maxLoad,
			meta:    newMeta,
			buckets: newBuckets,
		}

		placedAll := true
		for it := t.First(); !it.IsEnd(); it = it.Next() {
			if _, _, _, ok := scratch.tryInsert(it.Key(), it.Value(), true, false); !ok {
				placedAll = false
				break
			}
		}

		if placedAll {
			glog.V(2).Infof("flatset: rehash %d -> %d buckets (%d keys)",
				len(t.buckets), targetB, t.keyCount)
			t.meta = newMeta
			t.buckets = newBuckets
			return nil
		}
		targetB *= 2
	}
}

func minBucketsForReserve(n int, maxLoad float64) int {
	b := 8
	for int(float64(b)*maxLoad) < n {
		b *= 2
	}
	return b
}

func minBucketsForShrink(n int, maxLoad float64) int {
	if n == 0 {
		return 0
	}
	return minBucketsForReserve(n, maxLoad)
}

// Reserve grows the table, if needed, so that n keys can be inserted
// without triggering a further rehash (absent intervening erases). It
// reports false only on allocation-gate refusal; the table is left
// unchanged in that case.
func (t *Table[K, V]) Reserve(n int) bool {
	target := minBucketsForReserve(n, t.maxLoad)
	if target <= len(t.buckets) {
		return true
	}
	if err := t.rehash(target); err != nil {
		glog.Errorf("flatset: reserve(%d) failed: %v", n, err)
		return false
	}
	return true
}

// Shrink resizes the table down to the smallest bucket count that fits
// the current key count, freeing both arrays and restoring the
// zero-capacity sentinel state if the table is empty.
func (t *Table[K, V]) Shrink() bool {
	target := minBucketsForShrink(t.keyCount, t.maxLoad)
	if target == 0 {
		t.meta = zeroMetaSlice()
		t.buckets = nil
		return true
	}
	if target == len(t.buckets) {
		return true
	}
	if err := t.rehash(target); err != nil {
		glog.Errorf("flatset: shrink failed: %v", err)
		return false
	}
	return true
}
