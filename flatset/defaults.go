// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package flatset

import (
	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"
)

// DefaultIntHash is the default hash for integer key types: a fixed
// splitmix64-style multiplicative mix, well-distributed across all 64
// output bits (the top 4 feed the metadata hash fragment, see meta.go),
// so that narrow integer values still spread across the full hash space.
func DefaultIntHash[T constraints.Integer](v T) uint64 {
	x := uint64(v)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// DefaultStringHash is the default hash for string keys.
func DefaultStringHash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// DefaultBytesHash is the default hash for byte-string keys. Go's
// []byte already carries an explicit length, so no NUL scan is needed.
func DefaultBytesHash(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// DefaultEqual is the default comparator for any comparable type.
func DefaultEqual[T comparable](a, b T) bool { return a == b }
