package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SyncRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xsync_sync_runs_total",
		Help: "Total sync passes",
	})
	SyncErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xsync_sync_errors_total",
		Help: "Total failed sync passes by outcome",
	}, []string{"outcome"})
	SyncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "xsync_sync_duration_seconds",
		Help:    "Sync pass duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	PostsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xsync_posts_written_total",
		Help: "Total new post files written",
	})
	QuotaUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "xsync_quota_used_reads",
		Help: "Monthly read requests used so far",
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xsync_command_runs_total",
		Help: "Total CLI command runs",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xsync_command_errors_total",
		Help: "Total CLI command errors",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(SyncRuns, SyncErrors, SyncDuration, PostsWritten, QuotaUsed, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveSyncDuration records a pass duration.
func ObserveSyncDuration(start time.Time) {
	SyncDuration.Observe(time.Since(start).Seconds())
}

// IncSyncError increments the error counter for a pass outcome.
func IncSyncError(outcome string) { SyncErrors.WithLabelValues(outcome).Inc() }

// SetQuotaUsed publishes the current monthly usage.
func SetQuotaUsed(n int) { QuotaUsed.Set(float64(n)) }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
