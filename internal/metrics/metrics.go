package metrics

import (
	"net/http"
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "claude_meter"

var (
	// Refresh metrics
	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Fetch-and-apply runs by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	RefreshDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Fetch-and-apply duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"trigger"},
	)

	LastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last applied snapshot",
		},
	)

	// Usage metrics
	Utilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "utilization_percent",
			Help:      "Latest reported utilization per window (unclamped)",
		},
		[]string{"window"},
	)

	WindowPresent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_present",
			Help:      "1 when the latest snapshot contained the window",
		},
		[]string{"window"},
	)

	// Notification metrics
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Threshold notifications fired per window",
		},
		[]string{"window"},
	)
)

func init() {
	prometheus.MustRegister(RefreshTotal)
	prometheus.MustRegister(RefreshDuration)
	prometheus.MustRegister(LastSuccess)
	prometheus.MustRegister(Utilization)
	prometheus.MustRegister(WindowPresent)
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
}

// ObserveRefresh records one fetch-and-apply run. result is "success" or an
// error kind name.
func ObserveRefresh(trigger, result string, elapsed time.Duration) {
	RefreshTotal.WithLabelValues(trigger, result).Inc()
	RefreshDuration.WithLabelValues(trigger).Observe(elapsed.Seconds())
}

// ObserveSnapshot updates the usage gauges from an applied snapshot
func ObserveSnapshot(snapshot model.UsageSnapshot) {
	for _, kind := range []model.WindowKind{model.WindowSession, model.WindowWeekly} {
		w := snapshot.Window(kind)
		if w == nil {
			WindowPresent.WithLabelValues(kind.String()).Set(0)
			continue
		}
		WindowPresent.WithLabelValues(kind.String()).Set(1)
		Utilization.WithLabelValues(kind.String()).Set(w.Utilization)
	}
	if !snapshot.FetchedAt.IsZero() {
		LastSuccess.Set(float64(snapshot.FetchedAt.Unix()))
	}
}

// NotificationSent counts a fired threshold alert
func NotificationSent(kind model.WindowKind) {
	NotificationsTotal.WithLabelValues(kind.String()).Inc()
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
