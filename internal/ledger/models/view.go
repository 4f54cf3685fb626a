package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ItemView is the client-facing shape of an item. Visibility rules are
// applied to views, never to stored items.
type ItemView struct {
	ID              int64
	WishlistID      int64
	Title           string
	Price           *decimal.Decimal
	Currency        string
	TargetAmount    *decimal.Decimal
	CollectedAmount decimal.Decimal
	IsReserved      bool
	IsPurchased     bool
	ReservedByName  *string
	Contributors    []ContributorView
	UpdatedAt       time.Time
}

type ContributorView struct {
	Name   string
	Amount decimal.Decimal
}

// MarshalJSON renders the amount as a JSON number.
func (c ContributorView) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string      `json:"name"`
		Amount json.Number `json:"amount"`
	}{c.Name, Number(c.Amount)})
}

// NewItemView copies item into a view with nothing hidden.
func NewItemView(item *Item) ItemView {
	contributors := make([]ContributorView, 0, len(item.Contributors))
	for _, c := range item.Contributors {
		contributors = append(contributors, ContributorView{Name: c.Name, Amount: c.Amount})
	}
	v := ItemView{
		ID:              item.ID,
		WishlistID:      item.WishlistID,
		Title:           item.Title,
		Price:           item.Price,
		Currency:        item.Currency,
		TargetAmount:    item.TargetAmount,
		CollectedAmount: item.CollectedAmount,
		IsReserved:      item.IsReserved,
		IsPurchased:     item.IsPurchased,
		Contributors:    contributors,
		UpdatedAt:       item.UpdatedAt,
	}
	if item.ReservedByName != nil {
		name := *item.ReservedByName
		v.ReservedByName = &name
	}
	return v
}

// ForViewer hides reservation state when the viewer owns the wishlist so
// owners cannot see who is buying what.
func (v ItemView) ForViewer(viewerID, ownerID int64) ItemView {
	if viewerID == 0 || viewerID != ownerID {
		return v
	}
	v.IsReserved = false
	v.ReservedByName = nil
	v.CollectedAmount = decimal.Zero
	v.Contributors = []ContributorView{}
	return v
}

// ViewFor builds the view of item as seen by viewerID.
func ViewFor(item *Item, viewerID, ownerID int64) ItemView {
	return NewItemView(item).ForViewer(viewerID, ownerID)
}

type itemViewJSON struct {
	ID              int64             `json:"id"`
	WishlistID      int64             `json:"wishlist_id"`
	Title           string            `json:"title"`
	Price           *json.Number      `json:"price"`
	Currency        string            `json:"currency"`
	TargetAmount    *json.Number      `json:"target_amount"`
	CollectedAmount json.Number       `json:"collected_amount"`
	IsReserved      bool              `json:"is_reserved"`
	IsPurchased     bool              `json:"is_purchased"`
	ReservedByName  *string           `json:"reserved_by_name"`
	Contributors    []ContributorView `json:"contributors"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (v ItemView) MarshalJSON() ([]byte, error) {
	contributors := v.Contributors
	if contributors == nil {
		contributors = []ContributorView{}
	}
	return json.Marshal(itemViewJSON{
		ID:              v.ID,
		WishlistID:      v.WishlistID,
		Title:           v.Title,
		Price:           optionalNumber(v.Price),
		Currency:        v.Currency,
		TargetAmount:    optionalNumber(v.TargetAmount),
		CollectedAmount: Number(v.CollectedAmount),
		IsReserved:      v.IsReserved,
		IsPurchased:     v.IsPurchased,
		ReservedByName:  v.ReservedByName,
		Contributors:    contributors,
		UpdatedAt:       v.UpdatedAt,
	})
}

func optionalNumber(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := Number(*d)
	return &n
}
