package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamFetches counts fetches against the wallet backend per channel.
	UpstreamFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rampview_upstream_fetches_total",
		Help: "Number of upstream transaction fetches.",
	}, []string{"channel"})

	// UpstreamFetchErrors counts failed upstream fetches per channel.
	UpstreamFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rampview_upstream_fetch_errors_total",
		Help: "Number of failed upstream transaction fetches.",
	}, []string{"channel"})

	// SnapshotSize tracks the number of transactions in the latest snapshot.
	SnapshotSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rampview_snapshot_transactions",
		Help: "Transactions in the most recent snapshot per channel.",
	}, []string{"channel"})

	// RefreshDuration observes how long a full snapshot refresh takes.
	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rampview_refresh_duration_seconds",
		Help:    "Duration of snapshot refresh cycles.",
		Buckets: prometheus.DefBuckets,
	})

	// CacheHits counts analytics cache hits and misses.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rampview_cache_requests_total",
		Help: "Analytics cache lookups by outcome.",
	}, []string{"outcome"})
)
