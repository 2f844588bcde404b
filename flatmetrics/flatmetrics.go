// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package flatmetrics exposes a flatset.Table (via its Set/Map wrappers)
// as a prometheus.Collector, the same way cmd/ocprometheus/collector.go
// adapts an arbitrary data source into Prometheus metrics.
package flatmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Source is the subset of flatset.Table/Set/Map a Collector needs.
type Source interface {
	Size() int
	BucketCount() int
}

// Collector reports Size, BucketCount, LoadFactor, and a RehashesTotal
// counter for a Source, labelled by name.
type Collector struct {
	name string
	src  Source

	size        *prometheus.Desc
	bucketCount *prometheus.Desc
	loadFactor  *prometheus.Desc

	rehashes prometheus.Counter
}

// New builds a Collector for src, labelled name in its metric output.
// Callers are responsible for incrementing the returned Collector's
// rehash counter via IncRehashes when they observe a growth event (e.g.
// from a glog hook, or simply after noticing BucketCount changed).
func New(name string, src Source) *Collector {
	c := &Collector{
		name: name,
		src:  src,
		size: prometheus.NewDesc(
			"flatset_size", "Number of keys stored.", []string{"table"}, nil),
		bucketCount: prometheus.NewDesc(
			"flatset_bucket_count", "Current bucket array length.", []string{"table"}, nil),
		loadFactor: prometheus.NewDesc(
			"flatset_load_factor", "Size divided by bucket count.", []string{"table"}, nil),
		rehashes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "flatset_rehashes_total",
			Help:        "Number of times this table has been rehashed.",
			ConstLabels: prometheus.Labels{"table": name},
		}),
	}
	return c
}

// IncRehashes records that src was rehashed once.
func (c *Collector) IncRehashes() { c.rehashes.Inc() }

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
	ch <- c.bucketCount
	ch <- c.loadFactor
	c.rehashes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	size := c.src.Size()
	buckets := c.src.BucketCount()
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(size), c.name)
	ch <- prometheus.MustNewConstMetric(c.bucketCount, prometheus.GaugeValue, float64(buckets), c.name)
	var load float64
	if buckets > 0 {
		load = float64(size) / float64(buckets)
	}
	ch <- prometheus.MustNewConstMetric(c.loadFactor, prometheus.GaugeValue, load, c.name)
	c.rehashes.Collect(ch)
}
