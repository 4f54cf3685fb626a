package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"wishlist/internal/notify/metrics"
	"wishlist/internal/notify/models"
	"wishlist/pkg/requestcontext"
)

const defaultConcurrency = 8

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// FriendReader lists the owner's accepted friends.
type FriendReader interface {
	AcceptedFriendIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Sender delivers a serialized event to every connection on a channel.
type Sender interface {
	Send(ctx context.Context, channel string, msg []byte) error
}

// Service resolves the recipients of a wishlist item change and delivers the
// event to their channels.
type Service struct {
	friends     FriendReader
	sender      Sender
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithConcurrency bounds parallel channel deliveries per notification.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func New(friends FriendReader, sender Sender, opts ...Option) *Service {
	s := &Service{
		friends:     friends,
		sender:      sender,
		concurrency: defaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recipients returns the user ids that receive n: the owner's accepted
// friends, the owner unless the action is hidden from them, and the acting
// user when distinct from the owner.
func (s *Service) Recipients(ctx context.Context, n models.Notification) ([]int64, error) {
	ownerID := n.Wishlist.OwnerID()
	friends, err := s.friends.AcceptedFriendIDs(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load friends of user %d: %w", ownerID, err)
	}

	recipients := slices.Clone(friends)
	if !n.Action.HiddenFromOwner() {
		recipients = append(recipients, ownerID)
	}
	if n.Actor.IsUser() && n.Actor.UserID != ownerID {
		recipients = append(recipients, n.Actor.UserID)
	}
	slices.Sort(recipients)
	recipients = slices.Compact(recipients)
	if n.Action.HiddenFromOwner() {
		recipients = slices.DeleteFunc(recipients, func(id int64) bool { return id == ownerID })
	}
	return recipients, nil
}

// Notify delivers n to every recipient channel and to the share channel.
// Individual delivery failures are logged and counted; the joined error is
// returned for the caller to log.
func (s *Service) Notify(ctx context.Context, n models.Notification) error {
	recipients, err := s.Recipients(ctx, n)
	if err != nil {
		return err
	}

	friendMsg, err := json.Marshal(n.FriendEvent())
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	shareMsg, err := json.Marshal(n.ShareEvent())
	if err != nil {
		return fmt.Errorf("encode share event: %w", err)
	}

	errs := make([]error, len(recipients)+1)
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, userID := range recipients {
		g.Go(func() error {
			errs[i] = s.deliver(ctx, "user", models.UserChannel(userID), friendMsg)
			return nil
		})
	}
	if n.Wishlist.ShareToken != "" {
		g.Go(func() error {
			errs[len(recipients)] = s.deliver(ctx, "share", models.ShareChannel(n.Wishlist.ShareToken), shareMsg)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (s *Service) deliver(ctx context.Context, kind, channel string, msg []byte) error {
	if err := s.sender.Send(ctx, channel, msg); err != nil {
		s.metrics.IncDelivery(kind, "error")
		s.logger.WarnContext(ctx, "notification delivery failed",
			"channel", channel,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return fmt.Errorf("deliver to %s: %w", channel, err)
	}
	s.metrics.IncDelivery(kind, "ok")
	return nil
}
