package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reservation ledger.
type Metrics struct {
	// Ledger operation outcomes by operation and result code
	Operations *prometheus.CounterVec

	// Duration of the locked unit of work by operation
	OperationLatency *prometheus.HistogramVec

	// Amount contributed through partial reservations
	ContributedAmount prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wishlist_ledger_operations_total",
			Help: "Ledger operations by operation and outcome",
		}, []string{"operation", "outcome"}), // operation: "reserve_full", "contribute", "unreserve"

		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wishlist_ledger_operation_duration_seconds",
			Help:    "Duration of ledger operations including lock wait",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		ContributedAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "wishlist_ledger_contributed_amount_total",
			Help: "Sum of accepted partial contributions",
		}),
	}
}

// ObserveOperation records the outcome and duration of one ledger operation.
func (m *Metrics) ObserveOperation(operation, outcome string, d time.Duration) {
	if m != nil {
		m.Operations.WithLabelValues(operation, outcome).Inc()
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// AddContributed records an accepted contribution amount.
func (m *Metrics) AddContributed(amount float64) {
	if m != nil {
		m.ContributedAmount.Add(amount)
	}
}
