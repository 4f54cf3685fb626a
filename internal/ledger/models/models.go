// Package models holds the reservation ledger: items with their contributor
// entries, reservation rows, and the read views handed to clients.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	identity "wishlist/internal/identity/models"
)

// RefKind tags who a contributor entry belongs to.
type RefKind int

const (
	// RefLegacy entries predate actor references and carry only a name.
	RefLegacy RefKind = iota
	RefUser
	RefGuest
)

// ContributorRef identifies the owner of a contributor entry. Exactly one of
// UserID and SessionID is meaningful for RefUser and RefGuest; neither is for
// RefLegacy.
type ContributorRef struct {
	Kind      RefKind
	UserID    int64
	SessionID uuid.UUID
}

func UserRef(userID int64) ContributorRef {
	return ContributorRef{Kind: RefUser, UserID: userID}
}

func GuestRef(sessionID uuid.UUID) ContributorRef {
	return ContributorRef{Kind: RefGuest, SessionID: sessionID}
}

func LegacyRef() ContributorRef {
	return ContributorRef{Kind: RefLegacy}
}

// RefFor returns the reference recorded for actor's entries.
func RefFor(actor identity.Actor) ContributorRef {
	if actor.IsUser() {
		return UserRef(actor.UserID)
	}
	return GuestRef(actor.SessionID)
}

// Contributor is one named, amount-valued stake in an item.
type Contributor struct {
	Name   string
	Amount decimal.Decimal
	Ref    ContributorRef
}

type contributorJSON struct {
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	UserID         *int64          `json:"user_id,omitempty"`
	GuestSessionID *uuid.UUID      `json:"guest_session_id,omitempty"`
}

// MarshalJSON writes the persisted shape: amount as a JSON number and at most
// one of user_id and guest_session_id.
func (c Contributor) MarshalJSON() ([]byte, error) {
	out := struct {
		Name           string      `json:"name"`
		Amount         json.Number `json:"amount"`
		UserID         *int64      `json:"user_id,omitempty"`
		GuestSessionID *uuid.UUID  `json:"guest_session_id,omitempty"`
	}{
		Name:   c.Name,
		Amount: Number(c.Amount),
	}
	switch c.Ref.Kind {
	case RefUser:
		out.UserID = &c.Ref.UserID
	case RefGuest:
		out.GuestSessionID = &c.Ref.SessionID
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts amounts as numbers or strings. An entry carrying a
// user id is a user entry even if a session id is also present.
func (c *Contributor) UnmarshalJSON(data []byte) error {
	var in contributorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Name = in.Name
	c.Amount = in.Amount
	switch {
	case in.UserID != nil:
		c.Ref = UserRef(*in.UserID)
	case in.GuestSessionID != nil:
		c.Ref = GuestRef(*in.GuestSessionID)
	default:
		c.Ref = LegacyRef()
	}
	return nil
}

// Number renders an amount as a two-decimal JSON number.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// Item is a wishlist entry together with its ledger state. Ledger fields are
// mutated only through the methods in ledger.go.
type Item struct {
	ID              int64
	WishlistID      int64
	Title           string
	Price           *decimal.Decimal
	Currency        string
	TargetAmount    *decimal.Decimal
	CollectedAmount decimal.Decimal
	IsReserved      bool
	IsPurchased     bool
	ReservedBy      *int64
	ReservedByName  *string
	Contributors    []Contributor
	UpdatedAt       time.Time
}

// Clone returns a deep copy so staged mutations never alias stored state.
func (it *Item) Clone() *Item {
	cp := *it
	if it.Price != nil {
		p := *it.Price
		cp.Price = &p
	}
	if it.TargetAmount != nil {
		t := *it.TargetAmount
		cp.TargetAmount = &t
	}
	if it.ReservedBy != nil {
		r := *it.ReservedBy
		cp.ReservedBy = &r
	}
	if it.ReservedByName != nil {
		n := *it.ReservedByName
		cp.ReservedByName = &n
	}
	cp.Contributors = append([]Contributor(nil), it.Contributors...)
	return &cp
}

// ReservationStatus is the lifecycle state of a reservation row.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationPurchased ReservationStatus = "purchased"
)

// Reservation records an actor's claim on an item. Rows are cancelled, never
// deleted.
type Reservation struct {
	ID          uuid.UUID
	ItemID      int64
	Actor       ContributorRef
	Status      ReservationStatus
	ReservedAt  time.Time
	CancelledAt *time.Time
	PurchasedAt *time.Time
}

// NewReservation opens an active reservation for actor on itemID.
func NewReservation(itemID int64, actor identity.Actor, now time.Time) *Reservation {
	return &Reservation{
		ID:         uuid.New(),
		ItemID:     itemID,
		Actor:      RefFor(actor),
		Status:     ReservationActive,
		ReservedAt: now,
	}
}

// Cancel marks the reservation cancelled at now.
func (r *Reservation) Cancel(now time.Time) {
	r.Status = ReservationCancelled
	r.CancelledAt = &now
}

// IsActive reports whether the reservation still holds a claim.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive
}
