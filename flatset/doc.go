// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package flatset implements a generic, open-addressed hash table with
// quadratic probing and per-bucket displacement chains: every key maps to a
// deterministic home bucket, all keys sharing a home bucket are chained
// through per-bucket displacement links rather than re-probed, and
// per-bucket metadata (occupancy, home-bucket flag, hash fragment,
// displacement to the next chain link) lives in a parallel 16-bit word
// array separate from the key/value storage.
//
// Table[K, V] is not safe for concurrent use; callers needing concurrent
// access must synchronize externally.
package flatset
