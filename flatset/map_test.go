// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package flatset

import "testing"

func TestMapRangeVisitsAllEntries(t *testing.T) {
	m := NewMap[int, string](DefaultIntHash[int], DefaultEqual[int])
	want := map[int]string{1: "one", 2: "two", 3: "three"}
	for k, v := range want {
		if err := m.Put(k, v); err != nil {
			t.Fatalf("Put(%d, %q) failed: %v", k, v, err)
		}
	}
	got := map[int]string{}
	m.Range(func(k int, v string) bool {
		got[k] = v
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Range visited %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Range: key %d = %q, want %q", k, got[k], v)
		}
	}
}

func TestMapRangeStopsEarly(t *testing.T) {
	m := NewMap[int, int](DefaultIntHash[int], DefaultEqual[int])
	for i := 0; i < 20; i++ {
		if err := m.Put(i, i); err != nil {
			t.Fatalf("Put(%d) failed: %v", i, err)
		}
	}
	count := 0
	m.Range(func(int, int) bool {
		count++
		return count < 5
	})
	if count != 5 {
		t.Errorf("Range stopped after %d calls, want 5", count)
	}
}

func TestMapEqual(t *testing.T) {
	a := NewMap[int, int](DefaultIntHash[int], DefaultEqual[int])
	b := NewMap[int, int](DefaultIntHash[int], DefaultEqual[int])
	for i := 0; i < 10; i++ {
		a.Put(i, i*2)
		b.Put(i, i*2)
	}
	if !a.Equal(b, DefaultEqual[int]) {
		t.Errorf("Equal() = false, want true for identical maps")
	}
	b.Put(0, 999)
	if a.Equal(b, DefaultEqual[int]) {
		t.Errorf("Equal() = true, want false after a value diverges")
	}
	b.Delete(0)
	b.Put(0, 1)
	if a.Equal(b, DefaultEqual[int]) {
		t.Errorf("Equal() = true, want false after a value diverges to a different value")
	}
}

func TestMapSizeAndBucketCountMatchTable(t *testing.T) {
	m := NewMap[int, int](DefaultIntHash[int], DefaultEqual[int])
	for i := 0; i < 50; i++ {
		m.Put(i, i)
	}
	if m.Size() != m.Len() {
		t.Errorf("Size() = %d, Len() = %d, want equal", m.Size(), m.Len())
	}
	if m.BucketCount() != m.t.BucketCount() {
		t.Errorf("BucketCount() = %d, want %d", m.BucketCount(), m.t.BucketCount())
	}
}

func TestMapString(t *testing.T) {
	m := NewMap[int, int](DefaultIntHash[int], DefaultEqual[int])
	if got := m.String(); got != "{}" {
		t.Errorf("String() of empty map = %q, want {}", got)
	}
	m.Put(1, 2)
	if got := m.String(); got != "{1:2}" {
		t.Errorf("String() = %q, want {1:2}", got)
	}
}
