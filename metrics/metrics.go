// Package metrics instruments the host with Prometheus collectors: import
// call counts and latencies through a middleware, code cache usage through
// a collector.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tetratelabs/wazero/api"

	"github.com/kromsten/cosmwasm/host"
	hostwazero "github.com/kromsten/cosmwasm/infrastructure/wazero"
)

const namespace = "cosmwasm"

// Metrics holds the host import collectors.
type Metrics struct {
	importCalls    *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
	importTraps    *prometheus.CounterVec
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		importCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "import_calls_total",
			Help:      "Host import invocations by function.",
		}, []string{"function"}),
		importDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "import_duration_seconds",
			Help:      "Host import latency by function.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"function"}),
		importTraps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "import_traps_total",
			Help:      "Host import calls that aborted the invocation.",
		}, []string{"function"}),
	}
	reg.MustRegister(m.importCalls, m.importDuration, m.importTraps)
	return m
}

// Middleware counts and times every host import call. Traps are counted
// and re-raised.
func (m *Metrics) Middleware() hostwazero.Middleware {
	return func(name string, next api.GoModuleFunc) api.GoModuleFunc {
		return api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			start := time.Now()
			defer func() {
				m.importDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
				m.importCalls.WithLabelValues(name).Inc()
				if r := recover(); r != nil {
					m.importTraps.WithLabelValues(name).Inc()
					panic(r)
				}
			}()
			next(ctx, mod, stack)
		})
	}
}

var (
	cacheCodesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "cache", "codes"),
		"Contracts resident in the code cache.", nil, nil)
	cachePinnedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "cache", "pinned"),
		"Pinned contracts in the code cache.", nil, nil)
	cacheHitsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "cache", "hits_total"),
		"Code cache lookups that found their contract.", nil, nil)
)

// CacheCollector exports the VM's code cache stats.
type CacheCollector struct {
	vm *host.VM
}

// NewCacheCollector builds a collector over a VM. Register it on the same
// registry as the import metrics.
func NewCacheCollector(vm *host.VM) *CacheCollector {
	return &CacheCollector{vm: vm}
}

// Describe implements prometheus.Collector.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cacheCodesDesc
	ch <- cachePinnedDesc
	ch <- cacheHitsDesc
}

// Collect implements prometheus.Collector.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.vm.CacheStats()
	ch <- prometheus.MustNewConstMetric(cacheCodesDesc, prometheus.GaugeValue, float64(stats.Codes))
	ch <- prometheus.MustNewConstMetric(cachePinnedDesc, prometheus.GaugeValue, float64(stats.Pinned))
	ch <- prometheus.MustNewConstMetric(cacheHitsDesc, prometheus.CounterValue, float64(stats.Hits))
}
