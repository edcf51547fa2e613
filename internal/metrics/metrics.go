// Package metrics is the node's instrumentation facade: a small set of
// registered gauges and counters exposed over Prometheus, mirroring the
// registered-metric style the rest of the ecosystem uses.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var registry = prometheus.NewRegistry()

// Registry exposes the underlying prometheus.Registerer for an HTTP
// /metrics handler to read from.
func Registry() *prometheus.Registry { return registry }

var (
	ChainHeightGauge = mustRegisterGauge("tokid_chain_height", "Height of the local best chain.")
	DifficultyGauge  = mustRegisterGauge("tokid_chain_difficulty", "Current proof-of-work difficulty.")
	MempoolSizeGauge = mustRegisterGauge("tokid_mempool_size", "Number of transactions currently pending admission.")

	BlocksMinedTotal   = mustRegisterCounter("tokid_blocks_mined_total", "Blocks successfully mined by this node.")
	TxAdmittedTotal    = mustRegisterCounter("tokid_tx_admitted_total", "Transactions accepted into the mempool.")
	TxRejectedTotal    = mustRegisterCounter("tokid_tx_rejected_total", "Transactions rejected at admission.")
	ChainReplacedTotal = mustRegisterCounter("tokid_chain_replaced_total", "Times the local chain was replaced by a longer valid one.")

	MiningDuration = mustRegisterHistogram("tokid_mining_duration_seconds", "Wall time spent sealing a block.")
)

func mustRegisterGauge(name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	registry.MustRegister(g)
	return g
}

func mustRegisterCounter(name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	registry.MustRegister(c)
	return c
}

func mustRegisterHistogram(name, help string) prometheus.Histogram {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help})
	registry.MustRegister(h)
	return h
}

// ObserveMiningDuration records the elapsed time since start against the
// mining duration histogram. Call site: defer metrics.ObserveMiningDuration(time.Now()).
func ObserveMiningDuration(start time.Time) {
	MiningDuration.Observe(time.Since(start).Seconds())
}
