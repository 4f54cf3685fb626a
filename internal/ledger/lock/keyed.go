// Package lock provides an in-process mutex per item id.
package lock

import (
	"context"
	"sync"
)

// Keyed hands out one exclusive lock per key. Entries are reference counted
// and dropped once nobody holds or waits on them.
type Keyed struct {
	mu    sync.Mutex
	locks map[int64]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[int64]*entry)}
}

// Acquire blocks until the lock for key is held or ctx is done. The returned
// release func must be called exactly once.
func (k *Keyed) Acquire(ctx context.Context, key int64) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.unref(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.unref(key, e)
		})
	}, nil
}

// Len is the number of keys currently held or awaited.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func (k *Keyed) unref(key int64, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}
