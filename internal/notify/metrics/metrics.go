package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for notification fan-out.
type Metrics struct {
	// Deliveries per channel kind and result
	Deliveries *prometheus.CounterVec

	// Notifications dropped because the dispatch queue was full
	Dropped prometheus.Counter

	// Current dispatch queue depth
	QueueDepth prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wishlist_notify_deliveries_total",
			Help: "Channel deliveries by channel kind and result",
		}, []string{"channel_kind", "result"}), // channel_kind: "user", "share"; result: "ok", "error"

		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "wishlist_notify_dropped_total",
			Help: "Notifications dropped because the dispatch queue was full",
		}),

		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "wishlist_notify_queue_depth",
			Help: "Notifications waiting for dispatch",
		}),
	}
}

func (m *Metrics) IncDelivery(kind, result string) {
	if m != nil {
		m.Deliveries.WithLabelValues(kind, result).Inc()
	}
}

func (m *Metrics) IncDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}

func (m *Metrics) SetQueueDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}
