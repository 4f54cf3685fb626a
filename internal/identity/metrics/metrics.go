package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks guest session issuance.
type Metrics struct {
	GuestSessionsMinted prometheus.Counter
	GuestSessionsReused prometheus.Counter
	GuestMintThrottled  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GuestSessionsMinted: f.NewCounter(prometheus.CounterOpts{
			Name: "wishlist_guest_sessions_minted_total",
			Help: "Guest sessions created for anonymous reservations",
		}),
		GuestSessionsReused: f.NewCounter(prometheus.CounterOpts{
			Name: "wishlist_guest_sessions_reused_total",
			Help: "Anonymous requests that presented a valid guest token",
		}),
		GuestMintThrottled: f.NewCounter(prometheus.CounterOpts{
			Name: "wishlist_guest_mint_throttled_total",
			Help: "Guest session mints rejected by the per-IP limit",
		}),
	}
}

func (m *Metrics) IncrementMinted() {
	m.GuestSessionsMinted.Inc()
}

func (m *Metrics) IncrementReused() {
	m.GuestSessionsReused.Inc()
}

func (m *Metrics) IncrementThrottled() {
	m.GuestMintThrottled.Inc()
}
