package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the feed, the HTTP API and report events.
type Metrics struct {
	FeedRefreshes  prometheus.Counter
	FeedReconnects prometheus.Counter
	FeedConnected  prometheus.Gauge
	FeedAlerts     prometheus.Gauge
	AlertsAdded    *prometheus.CounterVec // labels: type

	HTTPRequests *prometheus.CounterVec // labels: route, method, status

	ReportEvents  *prometheus.CounterVec // labels: type, outcome={published,error}
	PWAInstalls   *prometheus.CounterVec // labels: outcome
	OfflineQueued prometheus.Counter
	StreamClients prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.FeedRefreshes,
		m.FeedReconnects,
		m.FeedConnected,
		m.FeedAlerts,
		m.AlertsAdded,
		m.HTTPRequests,
		m.ReportEvents,
		m.PWAInstalls,
		m.OfflineQueued,
		m.StreamClients,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they like.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FeedRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "feed_refreshes_total",
			Help:      "Total feed snapshots regenerated (connect, tick and reconnect).",
		}),
		FeedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "feed_reconnects_total",
			Help:      "Total reconnect requests.",
		}),
		FeedConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_alert",
			Name:      "feed_connected",
			Help:      "1 when the feed reports itself connected, 0 otherwise.",
		}),
		FeedAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_alert",
			Name:      "feed_alerts",
			Help:      "Number of alerts in the current snapshot.",
		}),
		AlertsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "alerts_added_total",
			Help:      "Alerts added through the API by type.",
		}, []string{"type"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		ReportEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "report_events_total",
			Help:      "Flood report events by type and delivery outcome.",
		}, []string{"type", "outcome"}),
		PWAInstalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "pwa_installs_total",
			Help:      "PWA install prompt outcomes.",
		}, []string{"outcome"}),
		OfflineQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "offline_actions_queued_total",
			Help:      "Offline actions appended to the queue.",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_alert",
			Name:      "stream_clients",
			Help:      "Connected WebSocket feed clients.",
		}),
	}
}
