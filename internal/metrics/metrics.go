package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScansTotal counts scan cycles by trigger (manual|poll) and outcome (ok|error).
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "walletscope_scans_total",
		Help: "Scan cycles by trigger and outcome.",
	}, []string{"trigger", "outcome"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "walletscope_scan_duration_seconds",
		Help:    "End-to-end scan duration: provider fetch plus analysis.",
		Buckets: prometheus.DefBuckets,
	})

	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "walletscope_provider_request_seconds",
		Help:    "Outbound provider request duration by provider and call.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "call"})

	AlertsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "walletscope_alerts_emitted_total",
		Help: "Alerts produced by the detector across all scans.",
	})

	BroadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "walletscope_broadcast_failures_total",
		Help: "Non-fatal scan-result publish failures.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
