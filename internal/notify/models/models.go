// Package models defines wishlist item notifications and the event payload
// delivered to live connections.
package models

import (
	"strconv"

	catalog "wishlist/internal/catalog/models"
	identity "wishlist/internal/identity/models"
)

// EventType is the payload discriminator clients switch on.
const EventType = "wishlist_item"

// SharePrefix prefixes share-token channel keys.
const SharePrefix = "share_"

type Action string

const (
	ActionItemCreated    Action = "item_created"
	ActionItemUpdated    Action = "item_updated"
	ActionItemDeleted    Action = "item_deleted"
	ActionItemReserved   Action = "item_reserved"
	ActionItemUnreserved Action = "item_unreserved"
)

// HiddenFromOwner reports whether the owner must not learn of the action.
func (a Action) HiddenFromOwner() bool {
	return a == ActionItemReserved || a == ActionItemUnreserved
}

// Notification is what the ledger hands to fan-out after a commit.
type Notification struct {
	Wishlist catalog.Wishlist
	Actor    identity.Actor
	Action   Action
	ItemID   int64
	Title    string
}

// Event is the serialized message. Share-channel events omit the owner and
// actor fields.
type Event struct {
	Type         string `json:"type"`
	Action       Action `json:"action"`
	WishlistID   int64  `json:"wishlist_id"`
	ItemID       int64  `json:"item_id"`
	Title        string `json:"title"`
	OwnerID      *int64 `json:"owner_id,omitempty"`
	FromUserID   *int64 `json:"from_user_id,omitempty"`
	FromUsername string `json:"from_username,omitempty"`
}

// FriendEvent is the event sent to user channels.
func (n Notification) FriendEvent() Event {
	e := n.ShareEvent()
	ownerID := n.Wishlist.OwnerID()
	e.OwnerID = &ownerID
	if n.Actor.IsUser() {
		userID := n.Actor.UserID
		e.FromUserID = &userID
		e.FromUsername = n.Actor.Username
	}
	return e
}

// ShareEvent is the anonymous event sent to the share-token channel.
func (n Notification) ShareEvent() Event {
	return Event{
		Type:       EventType,
		Action:     n.Action,
		WishlistID: n.Wishlist.ID,
		ItemID:     n.ItemID,
		Title:      n.Title,
	}
}

// UserChannel is the channel key for a user's connections.
func UserChannel(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// ShareChannel is the channel key for anonymous viewers of a share link.
func ShareChannel(shareToken string) string {
	return SharePrefix + shareToken
}
