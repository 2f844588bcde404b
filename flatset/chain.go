// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package flatset

// findFirstEmpty walks d = 1, 2, ... from home, stopping at the first
// empty bucket. It fails (ok=false) if d reaches endOfChain without
// finding one -- displacement exhaustion, handled by the caller via a
// rehash at doubled capacity.
func (t *Table[K, V]) findFirstEmpty(home int) (pos int, disp uint16, ok bool) {
	mask := len(t.buckets) - 1
	var sum uint64
	for d := uint16(1); d < endOfChain; d++ {
		sum += uint64(d)
		pos = (home + int(sum)) & mask
		if isEmptyWord(t.meta[pos]) {
			return pos, d, true
		}
	}
	return 0, 0, false
}

// findInsertLocationInChain walks the chain rooted at home, returning the
// last member whose own displacement from home is less than dNew (home
// itself counts as 0), i.e. the first member whose displacement field is
// endOfChain or at least dNew. Splicing the
// new node in immediately after this predecessor preserves chain
// monotonicity (invariant 6).
func (t *Table[K, V]) findInsertLocationInChain(home int, dNew uint16) int {
	mask := len(t.buckets) - 1
	pred := home
	for {
		d := dispOf(t.meta[pred])
		if d == endOfChain || d >= dNew {
			return pred
		}
		pred = successor(home, d, mask)
	}
}

// findPredecessor walks the chain rooted at home looking for the bucket
// whose successor is target. ok is false if target is not reachable from
// home (which should not happen for a bucket known to belong to this
// chain, per the home-anchor and chain-uniqueness invariants).
func (t *Table[K, V]) findPredecessor(home, target int) (pred int, ok bool) {
	mask := len(t.buckets) - 1
	pred = home
	for {
		d := dispOf(t.meta[pred])
		if d == endOfChain {
			return 0, false
		}
		next := successor(home, d, mask)
		if next == target {
			return pred, true
		}
		pred = next
	}
}

// evict relocates the chain-interior occupant of bucket b (F=0) elsewhere
// in its own chain, freeing b for use as a new home anchor. It fails if
// the occupant's chain cannot place the relocated key within the
// displacement limit; a failure here is resolved by the caller retrying
// the whole insert after a rehash at doubled capacity, not by unwinding
// the partial unlink -- rehash rebuilds from scratch and does not
// consult the disturbed chain.
func (t *Table[K, V]) evict(b int) bool {
	mask := len(t.buckets) - 1
	hPrime := homeBucket(t.hash(t.buckets[b].key), mask)

	pred, ok := t.findPredecessor(hPrime, b)
	if !ok {
		return false
	}
	bWord := t.meta[b]
	predWord := t.meta[pred]
	t.meta[pred] = makeMeta(fragmentOf(predWord), homeFlagOf(predWord), dispOf(bWord))

	bPrime, dPrime, ok := t.findFirstEmpty(hPrime)
	if !ok {
		return false
	}
	pPrime := t.findInsertLocationInChain(hPrime, dPrime)
	pPrimeWord := t.meta[pPrime]

	oldFrag := fragmentOf(bWord)
	t.buckets[bPrime] = t.buckets[b]
	var zb bucket[K, V]
	t.buckets[b] = zb

	t.meta[bPrime] = makeMeta(oldFrag, false, dispOf(pPrimeWord))
	t.meta[pPrime] = makeMeta(fragmentOf(pPrimeWord), homeFlagOf(pPrimeWord), dPrime)
	t.meta[b] = 0
	return true
}

// tryInsert implements the unified insert routine: Case A (home bucket
// free of its own chain) and Case B (home anchors a chain). ok is false
// whenever the caller must grow the table (via rehash at doubled
// capacity) and retry -- covers both the load-factor ceiling and
// displacement exhaustion, which both feed the same growth policy.
func (t *Table[K, V]) tryInsert(key K, val V, unique, replace bool) (pos, home int, existed, ok bool) {
	if len(t.buckets) == 0 {
		return 0, 0, false, false
	}
	mask := len(t.buckets) - 1
	h := t.hash(key)
	home = homeBucket(h, mask)
	frag := fragment(h)
	homeWord := t.meta[home]

	if isEmptyWord(homeWord) || !homeFlagOf(homeWord) {
		if !t.withinLoad(t.keyCount + 1) {
			return 0, home, false, false
		}
		if !isEmptyWord(homeWord) {
			if !t.evict(home) {
				return 0, home, false, false
			}
		}
		t.buckets[home] = bucket[K, V]{key: key, val: val}
		t.meta[home] = makeMeta(frag, true, endOfChain)
		t.keyCount++
		return home, home, false, true
	}

	if !unique {
		cur := home
		for {
			word := t.meta[cur]
			if fragmentOf(word) == frag && t.equal(t.buckets[cur].key, key) {
				if replace {
					if t.keyDtor != nil {
						t.keyDtor(&t.buckets[cur].key)
					}
					if t.valDtor != nil {
						t.valDtor(&t.buckets[cur].val)
					}
					t.buckets[cur] = bucket[K, V]{key: key, val: val}
				}
				return cur, home, true, true
			}
			d := dispOf(word)
			if d == endOfChain {
				break
			}
			cur = successor(home, d, mask)
		}
	}

	if !t.withinLoad(t.keyCount + 1) {
		return 0, home, false, false
	}
	bPrime, dPrime, found := t.findFirstEmpty(home)
	if !found {
		return 0, home, false, false
	}
	pPrime := t.findInsertLocationInChain(home, dPrime)
	pPrimeWord := t.meta[pPrime]
	t.buckets[bPrime] = bucket[K, V]{key: key, val: val}
	t.meta[bPrime] = makeMeta(frag, false, dispOf(pPrimeWord))
	t.meta[pPrime] = makeMeta(fragmentOf(pPrimeWord), homeFlagOf(pPrimeWord), dPrime)
	t.keyCount++
	return bPrime, home, false, true
}

func (t *Table[K, V]) withinLoad(n int) bool {
	return n <= int(float64(len(t.buckets))*t.maxLoad)
}

// findBucket looks up key, returning its bucket index and home bucket.
func (t *Table[K, V]) findBucket(key K) (pos, home int, ok bool) {
	if len(t.buckets) == 0 {
		return 0, 0, false
	}
	mask := len(t.buckets) - 1
	h := t.hash(key)
	home = homeBucket(h, mask)
	word := t.meta[home]
	if !homeFlagOf(word) {
		return 0, home, false
	}
	frag := fragment(h)
	cur := home
	for {
		w := t.meta[cur]
		if fragmentOf(w) == frag && t.equal(t.buckets[cur].key, key) {
			return cur, home, true
		}
		d := dispOf(w)
		if d == endOfChain {
			return 0, home, false
		}
		cur = successor(home, d, mask)
	}
}

// eraseAt removes the live key at bucket pos (home h) and reports whether
// the caller's scan should advance to pos+1 (true) or re-examine pos
// (false, because an unvisited key was just moved into it).
func (t *Table[K, V]) eraseAt(pos, home int) bool {
	if t.keyDtor != nil {
		t.keyDtor(&t.buckets[pos].key)
	}
	if t.valDtor != nil {
		t.valDtor(&t.buckets[pos].val)
	}

	mask := len(t.buckets) - 1
	word := t.meta[pos]

	if dispOf(word) == endOfChain {
		if !homeFlagOf(word) {
			// Tail: interior member, last in its chain.
			pred, _ := t.findPredecessor(home, pos)
			predWord := t.meta[pred]
			t.meta[pred] = makeMeta(fragmentOf(predWord), homeFlagOf(predWord), endOfChain)
		}
		// Solo (F=1, end-of-chain) or Tail both just vacate pos.
		t.meta[pos] = 0
		var zb bucket[K, V]
		t.buckets[pos] = zb
		t.keyCount--
		return true
	}

	// Interior: find the tail of the chain starting just past pos.
	predOfTail := pos
	tail := successor(home, dispOf(word), mask)
	for {
		d := dispOf(t.meta[tail])
		if d == endOfChain {
			break
		}
		predOfTail = tail
		tail = successor(home, d, mask)
	}

	tailWord := t.meta[tail]
	newPosDisp := dispOf(word)
	if predOfTail == pos {
		newPosDisp = endOfChain
	}
	t.buckets[pos] = t.buckets[tail]
	t.meta[pos] = makeMeta(fragmentOf(tailWord), homeFlagOf(word), newPosDisp)

	if predOfTail != pos {
		predWord := t.meta[predOfTail]
		t.meta[predOfTail] = makeMeta(fragmentOf(predWord), homeFlagOf(predWord), endOfChain)
	}
	t.meta[tail] = 0
	var zb bucket[K, V]
	t.buckets[tail] = zb
	t.keyCount--
	return tail < pos
}
