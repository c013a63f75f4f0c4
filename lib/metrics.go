package lib

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/* This file implements dev-ops telemetry for the node in the form of prometheus metrics */

const metricsPattern = "/metrics"

// Metrics represents a server that exposes Prometheus metrics
type Metrics struct {
	server *http.Server  // the http prometheus server
	config MetricsConfig // the configuration
	log    LoggerI       // the logger

	NodeMetrics    // general telemetry about the node
	MempoolMetrics // transaction pool telemetry
	NetworkMetrics // peer gossip telemetry
}

// NodeMetrics represents general telemetry for the node's health
type NodeMetrics struct {
	NodeStatus   prometheus.Gauge // is the node alive?
	SweepElapsed prometheus.Gauge // seconds since the last successful maintenance sweep
}

// MempoolMetrics represents the telemetry for the mempool module
type MempoolMetrics struct {
	PoolCount        prometheus.Gauge       // number of transactions in the pool
	PoolReady        prometheus.Gauge       // number of ready (proposable) transactions
	TimelinePosition prometheus.Gauge       // the latest assigned timeline position
	TxResult         *prometheus.CounterVec // admissions by status code
	Evictions        prometheus.Counter     // how many residents were displaced for capacity
	Expirations      prometheus.Counter     // how many transactions were swept by gc
	Commits          prometheus.Counter     // how many transactions were pruned by commit
	BlockBuildTime   prometheus.Histogram   // how long does a get-block walk take?
}

// NetworkMetrics represents the telemetry for the gossip module
type NetworkMetrics struct {
	BroadcastBatches prometheus.Counter     // number of timeline batches forwarded to peers
	PeerSubmissions  *prometheus.CounterVec // per-outcome count of peer submissions
}

// NewMetricsServer() creates a new telemetry server
func NewMetricsServer(config MetricsConfig, log LoggerI) *Metrics {
	mux := http.NewServeMux()
	mux.Handle(metricsPattern, promhttp.Handler())
	return &Metrics{
		server: &http.Server{Addr: config.PrometheusAddress, Handler: mux},
		config: config,
		log:    log,
		NodeMetrics: NodeMetrics{
			NodeStatus: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "meridian_node_status",
				Help: "The node is alive and serving admissions",
			}),
			SweepElapsed: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "meridian_sweep_elapsed_seconds",
				Help: "Seconds since the last successful maintenance sweep",
			}),
		},
		MempoolMetrics: MempoolMetrics{
			PoolCount: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "meridian_mempool_count",
				Help: "Total number of transactions in the mempool",
			}),
			PoolReady: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "meridian_mempool_ready",
				Help: "Number of ready transactions eligible for block proposal",
			}),
			TimelinePosition: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "meridian_mempool_timeline_position",
				Help: "The latest assigned broadcast timeline position",
			}),
			TxResult: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "meridian_mempool_tx_result",
				Help: "Count of transaction admissions by status code",
			}, []string{"status"}),
			Evictions: promauto.NewCounter(prometheus.CounterOpts{
				Name: "meridian_mempool_evictions",
				Help: "Count of residents displaced by higher priced transactions",
			}),
			Expirations: promauto.NewCounter(prometheus.CounterOpts{
				Name: "meridian_mempool_expirations",
				Help: "Count of transactions swept by expiration gc",
			}),
			Commits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "meridian_mempool_commits",
				Help: "Count of transactions pruned by commit notifications",
			}),
			BlockBuildTime: promauto.NewHistogram(prometheus.HistogramOpts{
				Name: "meridian_mempool_block_build_time",
				Help: "Time to assemble a block candidate in seconds",
			}),
		},
		NetworkMetrics: NetworkMetrics{
			BroadcastBatches: promauto.NewCounter(prometheus.CounterOpts{
				Name: "meridian_network_broadcast_batches",
				Help: "Count of timeline batches forwarded to peers",
			}),
			PeerSubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "meridian_network_peer_submissions",
				Help: "Count of peer submissions by outcome",
			}, []string{"outcome"}),
		},
	}
}

// Start() begins serving the prometheus metrics endpoint
func (m *Metrics) Start() {
	if !m.config.Enabled {
		return
	}
	m.log.Infof("Starting metrics server at %s", m.config.PrometheusAddress)
	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.log.Errorf("metrics server failed with err: %s", err.Error())
		}
	}()
	m.NodeStatus.Set(1)
}

// Stop() gracefully shuts down the metrics server
func (m *Metrics) Stop() {
	if !m.config.Enabled {
		return
	}
	m.NodeStatus.Set(0)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := m.server.Shutdown(ctx); err != nil {
		m.log.Errorf("metrics server shutdown failed with err: %s", err.Error())
	}
}
