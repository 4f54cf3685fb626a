package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	identity "wishlist/internal/identity/models"
	dErrors "wishlist/pkg/domain-errors"
	"wishlist/pkg/platform/strings"
)

const (
	namesSeparator = ", "
	centsPlaces    = 2
)

// ApplyFullReservation claims the whole item for actor. The entry is valued at
// the price, or zero for priceless items.
func (it *Item) ApplyFullReservation(actor identity.Actor, now time.Time) error {
	if it.IsReserved {
		return dErrors.New(dErrors.CodeConflict, "item is already reserved")
	}
	if it.Price != nil && it.CollectedAmount.IsPositive() {
		return dErrors.New(dErrors.CodeConflict, "item is partially funded; only contributions are accepted")
	}

	amount := decimal.Zero
	if it.Price != nil {
		amount = *it.Price
	}
	it.Contributors = append(it.Contributors, Contributor{
		Name:   actor.DisplayName,
		Amount: amount,
		Ref:    RefFor(actor),
	})
	it.CollectedAmount = sumAmounts(it.Contributors)
	it.IsReserved = true
	if actor.IsUser() {
		userID := actor.UserID
		it.ReservedBy = &userID
	}
	name := actor.DisplayName
	it.ReservedByName = &name
	it.UpdatedAt = now
	return nil
}

// ApplyContribution adds a partial stake of amount for actor.
func (it *Item) ApplyContribution(actor identity.Actor, amount decimal.Decimal, now time.Time) error {
	if it.Price == nil {
		return dErrors.New(dErrors.CodePreconditionFailed, "item has no price; partial contributions are not possible")
	}
	if !amount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if !amount.Equal(amount.Round(centsPlaces)) {
		return dErrors.New(dErrors.CodeValidation, "amount must have at most two decimal places")
	}
	amount = amount.Round(centsPlaces)
	price := *it.Price
	if it.CollectedAmount.Add(amount).GreaterThan(price) {
		remaining := price.Sub(it.CollectedAmount)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		return dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("amount exceeds the remaining %s", remaining.StringFixed(2))).
			WithDetail("remaining", Number(remaining))
	}

	it.Contributors = append(it.Contributors, Contributor{
		Name:   actor.DisplayName,
		Amount: amount,
		Ref:    RefFor(actor),
	})
	it.CollectedAmount = sumAmounts(it.Contributors)
	it.ReservedByName = joinedNames(it.Contributors)
	if it.ReservedBy == nil && actor.IsUser() {
		userID := actor.UserID
		it.ReservedBy = &userID
	}
	if !it.CollectedAmount.LessThan(price) {
		it.IsReserved = true
	}
	it.UpdatedAt = now
	return nil
}

// RemoveContributions drops every entry belonging to actor and recomputes the
// ledger fields. Users also match legacy name-only entries by display name,
// username or explicitName; guests match by session only.
func (it *Item) RemoveContributions(actor identity.Actor, explicitName string, now time.Time) error {
	kept := make([]Contributor, 0, len(it.Contributors))
	removed := 0
	for _, c := range it.Contributors {
		if ownsEntry(actor, c, explicitName) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	if removed == 0 {
		return dErrors.New(dErrors.CodeNotFound, "no contribution found for this actor")
	}

	it.UpdatedAt = now
	if len(kept) == 0 {
		it.clearReservation()
		return nil
	}

	it.Contributors = kept
	it.CollectedAmount = sumAmounts(kept)
	it.ReservedByName = joinedNames(kept)
	it.IsReserved = it.Price != nil && !it.CollectedAmount.LessThan(*it.Price)
	if it.ReservedBy != nil && !hasUserEntry(kept, *it.ReservedBy) {
		it.ReservedBy = nil
	}
	return nil
}

func (it *Item) clearReservation() {
	it.Contributors = []Contributor{}
	it.CollectedAmount = decimal.Zero
	it.IsReserved = false
	it.ReservedBy = nil
	it.ReservedByName = nil
}

func ownsEntry(actor identity.Actor, c Contributor, explicitName string) bool {
	switch c.Ref.Kind {
	case RefUser:
		return actor.IsUser() && c.Ref.UserID == actor.UserID
	case RefGuest:
		return actor.IsGuest() && c.Ref.SessionID == actor.SessionID
	default:
		return actor.IsUser() && strings.EqualFoldAny(c.Name, actor.DisplayName, actor.Username, explicitName)
	}
}

func hasUserEntry(entries []Contributor, userID int64) bool {
	for _, c := range entries {
		if c.Ref.Kind == RefUser && c.Ref.UserID == userID {
			return true
		}
	}
	return false
}

func sumAmounts(entries []Contributor) decimal.Decimal {
	total := decimal.Zero
	for _, c := range entries {
		total = total.Add(c.Amount)
	}
	return total
}

func joinedNames(entries []Contributor) *string {
	names := make([]string, 0, len(entries))
	for _, c := range entries {
		names = append(names, c.Name)
	}
	joined := strings.JoinDistinct(names, namesSeparator)
	if joined == "" {
		return nil
	}
	return &joined
}
