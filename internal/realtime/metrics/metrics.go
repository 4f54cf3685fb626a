package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for live connections.
type Metrics struct {
	// Open connections by transport
	Connections *prometheus.GaugeVec

	// Connections removed after a failed send
	Pruned prometheus.Counter

	// Messages written to connections by result
	Messages *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Connections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wishlist_realtime_connections",
			Help: "Open live connections by transport",
		}, []string{"transport"}), // transport: "sse", "websocket"

		Pruned: f.NewCounter(prometheus.CounterOpts{
			Name: "wishlist_realtime_pruned_total",
			Help: "Connections dropped after a failed send",
		}),

		Messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wishlist_realtime_messages_total",
			Help: "Messages handed to connections by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) ConnectionOpened(transport string) {
	if m != nil {
		m.Connections.WithLabelValues(transport).Inc()
	}
}

func (m *Metrics) ConnectionClosed(transport string) {
	if m != nil {
		m.Connections.WithLabelValues(transport).Dec()
	}
}

func (m *Metrics) IncPruned() {
	if m != nil {
		m.Pruned.Inc()
	}
}

func (m *Metrics) IncMessage(result string) {
	if m != nil {
		m.Messages.WithLabelValues(result).Inc()
	}
}
