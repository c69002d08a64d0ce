// Package promhll exports the estimates of HyperLogLog sketches as
// Prometheus gauges.
package promhll

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wesdoyle/hyperloglog"
)

// Collector is a prometheus.Collector that reports the current estimate of
// every tracked sketch. Estimates are computed at scrape time.
type Collector struct {
	mu       sync.RWMutex
	sketches map[string]*hyperloglog.Sketch

	estimate  *prometheus.Desc
	registers *prometheus.Desc
}

// NewCollector returns an empty Collector whose metrics are prefixed with
// namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		sketches: make(map[string]*hyperloglog.Sketch),
		estimate: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "distinct_estimate"),
			"Estimated number of distinct items inserted into the sketch.",
			[]string{"sketch"}, nil,
		),
		registers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "registers"),
			"Number of registers in the sketch.",
			[]string{"sketch"}, nil,
		),
	}
}

// Track starts reporting sk under name, replacing any sketch already
// tracked under that name. A nil sketch untracks name.
func (c *Collector) Track(name string, sk *hyperloglog.Sketch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sk == nil {
		delete(c.sketches, name)
		return
	}
	c.sketches[name] = sk
}

// Untrack stops reporting the sketch tracked under name.
func (c *Collector) Untrack(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sketches, name)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.estimate
	ch <- c.registers
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	names := make([]string, 0, len(c.sketches))
	for name := range c.sketches {
		names = append(names, name)
	}
	sort.Strings(names)
	sketches := make([]*hyperloglog.Sketch, len(names))
	for i, name := range names {
		sketches[i] = c.sketches[name]
	}
	c.mu.RUnlock()

	for i, sk := range sketches {
		ch <- prometheus.MustNewConstMetric(c.estimate, prometheus.GaugeValue, sk.Estimate(), names[i])
		ch <- prometheus.MustNewConstMetric(c.registers, prometheus.GaugeValue, float64(uint32(1)<<sk.Precision()), names[i])
	}
}
