// Package realtime tracks live client connections by channel and delivers
// serialized events to them.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"wishlist/internal/realtime/metrics"
)

// Conn is one live client connection. Close ends the transport's loop so the
// client sees the disconnect and can reconnect.
type Conn interface {
	Send(msg []byte) error
	Close()
}

// Registry maps channel keys to their open connections. Delivery is
// at-most-once: a connection that fails a send is removed and closed.
type Registry struct {
	mu       sync.RWMutex
	channels map[string][]Conn
	metrics  *metrics.Metrics
}

type Option func(*Registry)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{channels: make(map[string][]Conn)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Register(channel string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[channel] = append(r.channels[channel], conn)
}

// Unregister removes conn and drops the channel once it is empty. Removing an
// unknown connection is a no-op.
func (r *Registry) Unregister(channel string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(channel, conn)
}

func (r *Registry) removeLocked(channel string, conn Conn) bool {
	conns, ok := r.channels[channel]
	if !ok {
		return false
	}
	i := slices.Index(conns, conn)
	if i < 0 {
		return false
	}
	conns = slices.Delete(conns, i, i+1)
	if len(conns) == 0 {
		delete(r.channels, channel)
	} else {
		r.channels[channel] = conns
	}
	return true
}

// Send writes msg to every connection on channel. Failing connections are
// pruned and the rest still receive the message; the returned error joins
// the individual failures.
func (r *Registry) Send(ctx context.Context, channel string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	conns := slices.Clone(r.channels[channel])
	r.mu.RUnlock()

	var (
		errs []error
		dead []Conn
	)
	for _, conn := range conns {
		if err := conn.Send(msg); err != nil {
			r.metrics.IncMessage("error")
			errs = append(errs, err)
			dead = append(dead, conn)
			continue
		}
		r.metrics.IncMessage("ok")
	}
	if len(dead) == 0 {
		return nil
	}

	r.mu.Lock()
	for _, conn := range dead {
		if r.removeLocked(channel, conn) {
			r.metrics.IncPruned()
		}
	}
	r.mu.Unlock()
	for _, conn := range dead {
		conn.Close()
	}
	return fmt.Errorf("%d of %d connections failed: %w", len(dead), len(conns), errors.Join(errs...))
}

// CloseAll closes and forgets every connection. Used on server shutdown so
// streaming handlers return.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	channels := r.channels
	r.channels = make(map[string][]Conn)
	r.mu.Unlock()

	for _, conns := range channels {
		for _, conn := range conns {
			conn.Close()
		}
	}
}

// Count returns the number of open connections on channel.
func (r *Registry) Count(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}

// Channels returns the number of channels with at least one connection.
func (r *Registry) Channels() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
