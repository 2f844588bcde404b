// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The flatbench command drives a flatset.Map through a configurable
// insert/erase/iterate workload and exposes its size, bucket count, load
// factor, and rehash count as Prometheus metrics.
package main

import (
	"expvar"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristanetworks/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aristanetworks/flathash/flatmetrics"
	"github.com/aristanetworks/flathash/flatset"
	"github.com/aristanetworks/flathash/monitor"
)

// setVerboseHandler lets an operator retune this process's glog
// verbosity without a restart: POST /debug/loglevel?glog=N.
func setVerboseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "must POST", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := strconv.Atoi(r.FormValue("glog"))
	if err != nil {
		http.Error(w, "invalid glog verbosity: "+err.Error(), http.StatusBadRequest)
		return
	}
	glog.SetVGlobal(glog.Level(v))
	fmt.Fprintf(w, "glog verbosity now %d\n", v)
}

// snapshot renders this process's own flatbench_-prefixed expvars, in
// sorted key order, as a single log-friendly line -- unlike a
// generic expvar dump, it skips every var this binary didn't register
// itself (runtime memstats, cmdline, etc).
func snapshot() string {
	var sb strings.Builder
	first := true
	expvar.Do(func(kv expvar.KeyValue) {
		if !strings.HasPrefix(kv.Key, "flatbench_") {
			return
		}
		if !first {
			sb.WriteString(" ")
		}
		first = false
		fmt.Fprintf(&sb, "%s=%s", kv.Key, kv.Value)
	})
	return sb.String()
}

func main() {
	keys := flag.Int("keys", 1_000_000, "number of distinct int keys in the working set")
	rounds := flag.Int("rounds", 5, "number of insert/erase/iterate passes over the working set")
	eraseFrac := flag.Float64("erase-frac", 0.1, "fraction of keys erased and reinserted each round")
	maxLoad := flag.Float64("max-load", 0.9, "table max load factor")
	reserve := flag.Bool("reserve", false, "call Reserve(keys) up front instead of growing on demand")
	listenAddr := flag.String("listenaddr", ":8080", "address on which to expose metrics")
	url := flag.String("url", "/metrics", "URL at which to expose metrics")
	flag.Parse()

	m := flatset.NewMap[int, int](flatset.DefaultIntHash[int], flatset.DefaultEqual[int],
		flatset.WithMaxLoad[int, int](*maxLoad))

	coll := flatmetrics.New("flatbench", m)
	prometheus.MustRegister(coll)
	rehashVar := expvar.NewInt("flatbench_rehashes")
	sizeVar := expvar.NewInt("flatbench_size")
	bucketsVar := expvar.NewInt("flatbench_buckets")

	http.Handle(*url, promhttp.Handler())
	http.HandleFunc("/debug", monitor.DebugIndexHandler)
	http.HandleFunc("/debug/loglevel", setVerboseHandler)
	// monitor's blank expvar import registers "/debug/vars" on this same
	// mux; net/http/pprof registers "/debug/pprof/*" the same way.
	go func() {
		if err := http.ListenAndServe(*listenAddr, nil); err != nil {
			glog.Fatal(err)
		}
	}()

	if *reserve {
		if !m.Reserve(*keys) {
			glog.Fatalf("reserve(%d) failed", *keys)
		}
	}

	rng := rand.New(rand.NewSource(1))

	start := time.Now()
	for i := 0; i < *keys; i++ {
		if err := m.Put(i, i*i); err != nil {
			glog.Fatalf("put(%d) failed: %v", i, err)
		}
	}
	lastBuckets := m.BucketCount()
	glog.V(1).Infof("flatbench: loaded %d keys into %d buckets in %v",
		*keys, lastBuckets, time.Since(start))

	for r := 0; r < *rounds; r++ {
		roundStart := time.Now()
		erased := 0
		for i := 0; i < *keys; i++ {
			if rng.Float64() >= *eraseFrac {
				continue
			}
			if m.Delete(i) {
				erased++
			}
		}
		for i := 0; i < *keys; i++ {
			if _, _, err := m.GetOrPut(i, i*i); err != nil {
				glog.Fatalf("get_or_put(%d) failed: %v", i, err)
			}
		}
		seen := 0
		m.Range(func(int, int) bool { seen++; return true })

		if b := m.BucketCount(); b != lastBuckets {
			coll.IncRehashes()
			rehashVar.Add(1)
			lastBuckets = b
		}
		sizeVar.Set(int64(m.Len()))
		bucketsVar.Set(int64(m.BucketCount()))
		glog.V(1).Infof("flatbench: round %d erased=%d visited=%d buckets=%d in %v",
			r, erased, seen, m.BucketCount(), time.Since(roundStart))
		glog.V(3).Infof("flatbench: %s", snapshot())
	}

	fmt.Printf("final size=%d buckets=%d load=%.3f\n",
		m.Len(), m.BucketCount(), float64(m.Len())/float64(m.BucketCount()))

	m.Clear()
	m.Shrink()
	glog.V(1).Infof("flatbench: cleared, buckets now %d", m.BucketCount())

	select {}
}
