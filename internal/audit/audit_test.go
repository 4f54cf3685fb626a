package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"wishlist/pkg/platform/sentinel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherDirect(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, WithLogger(discardLogger()))

	p.Emit(context.Background(), Event{Action: ActionItemReserved, ItemID: 1})
	p.Emit(context.Background(), Event{Action: ActionItemUnreserved, ItemID: 2})

	events, err := store.ListByItem(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionItemReserved, events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisherInboxDropsWhenFull(t *testing.T) {
	inbox := make(chan Event, 1)
	p := NewPublisher(NewInMemoryStore(), WithInbox(inbox), WithLogger(discardLogger()))

	p.Emit(context.Background(), Event{ItemID: 1})
	p.Emit(context.Background(), Event{ItemID: 2})

	assert.Len(t, inbox, 1)
	assert.Equal(t, int64(1), (<-inbox).ItemID)
}

func TestWorkerDrainsInbox(t *testing.T) {
	store := &flakyStore{InMemoryStore: NewInMemoryStore(), failItem: 2}
	inbox := make(chan Event, 4)
	inbox <- Event{ItemID: 1}
	inbox <- Event{ItemID: 2}
	inbox <- Event{ItemID: 3}
	close(inbox)

	err := NewWorker(store, inbox, discardLogger()).Run(context.Background())
	require.NoError(t, err)

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2, "a failed append does not stop the worker")
	assert.Equal(t, int64(3), all[1].ItemID)
}

// flakyStore fails appends for one item and records the rest.
type flakyStore struct {
	*InMemoryStore
	failItem int64
}

func (f *flakyStore) Append(ctx context.Context, event Event) error {
	if event.ItemID == f.failItem {
		return errors.New("sink down")
	}
	return f.InMemoryStore.Append(ctx, event)
}

func TestInMemoryStoreKeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(WithCapacity(3))

	for i := range 5 {
		require.NoError(t, store.Append(ctx, Event{ItemID: int64(i % 2), Action: ActionContributionMade}))
	}

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{0, 1, 0}, []int64{all[0].ItemID, all[1].ItemID, all[2].ItemID})

	odd, err := store.ListByItem(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, odd, 1, "older events were overwritten")

	empty, err := NewInMemoryStore().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

type fakeProducer struct {
	err     error
	records []*kgo.Record
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if f.err == nil {
			f.records = append(f.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeProducer) Close() {}

func TestKafkaStore(t *testing.T) {
	t.Run("records are keyed by item id", func(t *testing.T) {
		fp := &fakeProducer{}
		s := newKafkaStore(fp, discardLogger())

		require.NoError(t, s.Append(context.Background(), Event{ItemID: 42, Action: ActionContributionMade, Timestamp: time.Now()}))
		require.Len(t, fp.records, 1)
		assert.Equal(t, "42", string(fp.records[0].Key))
		assert.Contains(t, string(fp.records[0].Value), `"action":"contribution_made"`)
	})

	t.Run("repeated failures open the circuit", func(t *testing.T) {
		fp := &fakeProducer{err: errors.New("broker unreachable")}
		s := newKafkaStore(fp, discardLogger())

		for range 5 {
			err := s.Append(context.Background(), Event{ItemID: 1})
			require.Error(t, err)
			assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
		}
		err := s.Append(context.Background(), Event{ItemID: 1})
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})
}
