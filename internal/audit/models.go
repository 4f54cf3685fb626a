package audit

import "time"

// Action names a committed ledger change.
type Action string

const (
	ActionItemReserved     Action = "item_reserved"
	ActionContributionMade Action = "contribution_made"
	ActionItemUnreserved   Action = "item_unreserved"
	ActionGuestSessionMade Action = "guest_session_created"
)

// Event is emitted after a ledger commit. Keep it transport-agnostic so stores
// and sinks can fan out.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	ItemID     int64     `json:"item_id"`
	WishlistID int64     `json:"wishlist_id"`
	ActorKind  string    `json:"actor_kind"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	// Amount is the contributed or withdrawn amount, empty for full reservations.
	Amount    string `json:"amount,omitempty"`
	Collected string `json:"collected"`
	RequestID string `json:"request_id,omitempty"`
}
