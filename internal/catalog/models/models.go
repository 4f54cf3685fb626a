// Package models holds the read-only collaborator views the ledger depends on:
// users, wishlists and friendships are owned by the account and wishlist
// services; this module only reads them.
package models

// Visibility controls who may open a wishlist.
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityByLink      Visibility = "by_link"
	VisibilityFriendsOnly Visibility = "friends_only"
)

// FriendshipStatus is the lifecycle state of a friend edge.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// User is the public profile of an account.
type User struct {
	ID       int64
	Username string
	FullName string
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Wishlist is a registry with its owner's profile attached.
type Wishlist struct {
	ID         int64
	Owner      User
	Title      string
	ShareToken string
	Visibility Visibility
	IsArchived bool
}

// OwnerID is the id of the wishlist owner.
func (w *Wishlist) OwnerID() int64 {
	return w.Owner.ID
}

// IsOwner reports whether userID owns the wishlist.
func (w *Wishlist) IsOwner(userID int64) bool {
	return userID != 0 && w.Owner.ID == userID
}

// Friendship is an undirected edge stored as an ordered pair.
type Friendship struct {
	UserID   int64
	FriendID int64
	Status   FriendshipStatus
}
