// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package flatset

import "testing"

// TestBasicSet is the "basic set" scenario: insert 0..9, erase {0,3,6,9},
// then get(i) for i=0..9 must be present iff i is not one of the erased
// keys, with size settling at 6.
func TestBasicSet(t *testing.T) {
	s := NewSet[int](DefaultIntHash[int], DefaultEqual[int], WithMaxLoad[int, struct{}](0.95))
	for i := 0; i < 10; i++ {
		if err := s.Add(i); err != nil {
			t.Fatalf("Add(%d) failed: %v", i, err)
		}
	}
	for _, k := range []int{0, 3, 6, 9} {
		if !s.Remove(k) {
			t.Errorf("Remove(%d) = false, want true", k)
		}
	}
	erased := map[int]bool{0: true, 3: true, 6: true, 9: true}
	for i := 0; i < 10; i++ {
		got := s.Contains(i)
		want := !erased[i]
		if got != want {
			t.Errorf("Contains(%d) = %v, want %v", i, got, want)
		}
	}
	if s.Len() != 6 {
		t.Errorf("Len() = %d, want 6", s.Len())
	}
}

// TestMapReplace is the "map replace" scenario: inserting the same key
// twice with different values overwrites rather than duplicates.
func TestMapReplace(t *testing.T) {
	m := NewMap[int, int](DefaultIntHash[int], DefaultEqual[int], WithMaxLoad[int, int](0.95))
	if err := m.Put(5, 10); err != nil {
		t.Fatalf("Put(5, 10) failed: %v", err)
	}
	if err := m.Put(5, 20); err != nil {
		t.Fatalf("Put(5, 20) failed: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	v, ok := m.Get(5)
	if !ok || v != 20 {
		t.Errorf("Get(5) = (%d, %v), want (20, true)", v, ok)
	}
}

// TestGetOrPutSemantics is the "get_or_insert" scenario: the first call
// inserts and reports the inserted value; a repeat with a different value
// leaves the table unchanged and still reports the original value.
func TestGetOrPutSemantics(t *testing.T) {
	m := NewMap[int, int](DefaultIntHash[int], DefaultEqual[int], WithMaxLoad[int, int](0.95))
	v, inserted, err := m.GetOrPut(7, 100)
	if err != nil {
		t.Fatalf("GetOrPut(7, 100) failed: %v", err)
	}
	if !inserted || v != 100 {
		t.Errorf("GetOrPut(7, 100) = (%d, %v), want (100, true)", v, inserted)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	v, inserted, err = m.GetOrPut(7, 999)
	if err != nil {
		t.Fatalf("GetOrPut(7, 999) failed: %v", err)
	}
	if inserted || v != 100 {
		t.Errorf("GetOrPut(7, 999) = (%d, %v), want (100, false)", v, inserted)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

// TestEraseIterationVisitsEverySurvivorOnce is the "erase-iteration"
// scenario: insert keys 119..0, then use EraseItr to remove every even
// key during a single forward traversal. Every key, erased or surviving,
// must be visited exactly once, leaving exactly the 60 odd keys behind.
func TestEraseIterationVisitsEverySurvivorOnce(t *testing.T) {
	tbl := NewTable[int, struct{}](DefaultIntHash[int], DefaultEqual[int], WithMaxLoad[int, struct{}](0.95))
	for k := 119; k >= 0; k-- {
		if _, err := tbl.Insert(k, struct{}{}); err != nil {
			t.Fatalf("Insert(%d) failed: %v", k, err)
		}
	}
	if tbl.Size() != 120 {
		t.Fatalf("Size() after load = %d, want 120", tbl.Size())
	}

	visited := map[int]int{}
	it := tbl.First()
	for !it.IsEnd() {
		k := it.Key()
		visited[k]++
		if k%2 == 0 {
			it = tbl.EraseItr(it)
		} else {
			it = it.Next()
		}
	}

	if tbl.Size() != 60 {
		t.Errorf("Size() after erase = %d, want 60", tbl.Size())
	}
	for k := 0; k < 120; k++ {
		if visited[k] != 1 {
			t.Errorf("key %d visited %d times, want exactly 1", k, visited[k])
		}
		_, present := tbl.Get(k)
		wantPresent := k%2 == 1
		if present != wantPresent {
			t.Errorf("Get(%d) present = %v, want %v", k, present, wantPresent)
		}
	}
}

// TestReserveThenFillDoesNotGrow is the "reserve then fill" scenario:
// reserve(60) at MAX_LOAD=0.95 settles on 64 buckets, and 60 subsequent
// inserts of distinct keys must not trigger any further growth.
func TestReserveThenFillDoesNotGrow(t *testing.T) {
	tbl := NewTable[int, int](DefaultIntHash[int], DefaultEqual[int], WithMaxLoad[int, int](0.95))
	if !tbl.Reserve(60) {
		t.Fatal("Reserve(60) = false, want true")
	}
	afterReserve := tbl.BucketCount()
	if afterReserve != 64 {
		t.Errorf("BucketCount() after Reserve(60) = %d, want 64", afterReserve)
	}
	for i := 0; i < 60; i++ {
		if _, err := tbl.Insert(i, i); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}
	if got := tbl.BucketCount(); got != afterReserve {
		t.Errorf("BucketCount() after 60 inserts = %d, want %d (no growth)", got, afterReserve)
	}
}

// TestShrinkToZero is the "shrink to zero" scenario: after Clear, Shrink
// must restore the zero-capacity sentinel state with no backing array.
func TestShrinkToZero(t *testing.T) {
	tbl := NewTable[int, struct{}](DefaultIntHash[int], DefaultEqual[int])
	for i := 0; i < 30; i++ {
		if _, err := tbl.Insert(i, struct{}{}); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}
	tbl.Clear()
	if !tbl.Shrink() {
		t.Fatal("Shrink() = false, want true")
	}
	if tbl.BucketCount() != 0 {
		t.Errorf("BucketCount() = %d, want 0", tbl.BucketCount())
	}
	if &tbl.meta[0] != &zeroMeta[0] {
		t.Errorf("meta does not point at the static zero-capacity sentinel after shrink")
	}
	if _, err := tbl.Insert(1, struct{}{}); err != nil {
		t.Errorf("Insert after shrink-to-zero failed: %v", err)
	}
}

func TestInitCloneIsIndependent(t *testing.T) {
	src := NewTable[int, int](DefaultIntHash[int], DefaultEqual[int])
	for i := 0; i < 20; i++ {
		if _, err := src.Insert(i, i*i); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}
	dst, err := src.Clone()
	if err != nil {
		t.Fatalf("Clone() failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		srcIt, srcOk := src.Get(i)
		dstIt, dstOk := dst.Get(i)
		if srcOk != dstOk || srcIt.Value() != dstIt.Value() {
			t.Errorf("key %d: src=(%v,%v) dst=(%v,%v)", i, srcIt.Value(), srcOk, dstIt.Value(), dstOk)
		}
	}
	if _, err := dst.Insert(1000, -1); err != nil {
		t.Fatalf("Insert into clone failed: %v", err)
	}
	if _, ok := src.Get(1000); ok {
		t.Errorf("mutating the clone leaked into the source table")
	}
	dst.Erase(0)
	if _, ok := src.Get(0); !ok {
		t.Errorf("erasing from the clone leaked into the source table")
	}
}

func TestGetAfterInsertRoundTrip(t *testing.T) {
	tbl := NewTable[string, int](DefaultStringHash, func(a, b string) bool { return a == b })
	before := tbl.Size()
	it, err := tbl.Insert("alpha", 1)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if it.Key() != "alpha" || it.Value() != 1 {
		t.Errorf("Insert returned iterator (%q, %d), want (alpha, 1)", it.Key(), it.Value())
	}
	if tbl.Size() != before+1 {
		t.Errorf("Size() = %d, want %d", tbl.Size(), before+1)
	}
	got, ok := tbl.Get("alpha")
	if !ok || got.Value() != 1 {
		t.Errorf("Get(alpha) = (%d, %v), want (1, true)", got.Value(), ok)
	}

	// re-inserting the same key must not grow size again.
	if _, err := tbl.Insert("alpha", 2); err != nil {
		t.Fatalf("Insert (replace) failed: %v", err)
	}
	if tbl.Size() != before+1 {
		t.Errorf("Size() after replace = %d, want %d", tbl.Size(), before+1)
	}
}

func TestEraseAfterInsertRoundTrip(t *testing.T) {
	tbl := NewTable[int, int](DefaultIntHash[int], DefaultEqual[int])
	before := tbl.Size()
	if _, err := tbl.Insert(42, 1); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if !tbl.Erase(42) {
		t.Errorf("Erase(42) = false, want true")
	}
	if _, ok := tbl.Get(42); ok {
		t.Errorf("Get(42) after erase = true, want false")
	}
	if tbl.Size() != before {
		t.Errorf("Size() after erase = %d, want %d", tbl.Size(), before)
	}
}

func TestMaxLoadOneStillResolvesInternally(t *testing.T) {
	// A MAX_LOAD of 1.0 makes displacement exhaustion more likely; the
	// table must still grow internally rather than fail the insert.
	tbl := NewTable[int, struct{}](DefaultIntHash[int], DefaultEqual[int], WithMaxLoad[int, struct{}](1.0))
	for i := 0; i < 2000; i++ {
		if _, err := tbl.Insert(i, struct{}{}); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}
	if tbl.Size() != 2000 {
		t.Errorf("Size() = %d, want 2000", tbl.Size())
	}
	for i := 0; i < 2000; i++ {
		if _, ok := tbl.Get(i); !ok {
			t.Errorf("Get(%d) = false, want true", i)
		}
	}
}

func TestFailingAllocGateFailsCleanly(t *testing.T) {
	refuse := false
	tbl := NewTable[int, int](DefaultIntHash[int], DefaultEqual[int],
		WithAllocGate[int, int](func(uintptr) bool { return !refuse }))

	for i := 0; i < 7; i++ {
		if _, err := tbl.Insert(i, i); err != nil {
			t.Fatalf("Insert(%d) failed before gate refusal: %v", i, err)
		}
	}
	sizeBefore := tbl.Size()
	bucketsBefore := tbl.BucketCount()

	refuse = true
	if _, err := tbl.Insert(1000, 1000); err == nil {
		t.Fatalf("Insert did not fail under a refusing allocation gate")
	}
	if tbl.Size() != sizeBefore || tbl.BucketCount() != bucketsBefore {
		t.Errorf("table state changed after a refused allocation: size %d->%d, buckets %d->%d",
			sizeBefore, tbl.Size(), bucketsBefore, tbl.BucketCount())
	}

	refuse = false
	if _, err := tbl.Insert(1000, 1000); err != nil {
		t.Fatalf("Insert failed once the gate stopped refusing: %v", err)
	}

	tbl.Cleanup()
	if tbl.BucketCount() != 0 || tbl.Size() != 0 {
		t.Errorf("Cleanup left size=%d buckets=%d, want 0, 0", tbl.Size(), tbl.BucketCount())
	}
}
