package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replay records each outcome in steps: 'f' for a failure, 's' for a success.
func replay(b *Breaker, steps string) (opened, closed int) {
	for _, c := range steps {
		var change StateChange
		switch c {
		case 'f':
			_, change = b.RecordFailure()
		case 's':
			_, change = b.RecordSuccess()
		}
		if change.Opened {
			opened++
		}
		if change.Closed {
			closed++
		}
	}
	return opened, closed
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name       string
		opts       []Option
		steps      string
		wantState  State
		wantOpened int
		wantClosed int
	}{
		{name: "new breaker is closed", wantState: StateClosed},
		{name: "failures below threshold stay closed", opts: []Option{WithFailureThreshold(3)}, steps: "ff", wantState: StateClosed},
		{name: "threshold opens once", opts: []Option{WithFailureThreshold(3)}, steps: "fffff", wantState: StateOpen, wantOpened: 1},
		{name: "success resets failure run", opts: []Option{WithFailureThreshold(3)}, steps: "ffsff", wantState: StateClosed},
		{name: "single success closes by default", opts: []Option{WithFailureThreshold(1)}, steps: "fs", wantState: StateClosed, wantOpened: 1, wantClosed: 1},
		{name: "success run needed to close", opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)}, steps: "fs", wantState: StateOpen, wantOpened: 1},
		{name: "failure while open resets success run", opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)}, steps: "fsfs", wantState: StateOpen, wantOpened: 1},
		{name: "reopens after closing", opts: []Option{WithFailureThreshold(1)}, steps: "fsf", wantState: StateOpen, wantOpened: 2, wantClosed: 1},
		{name: "non-positive options keep defaults", opts: []Option{WithFailureThreshold(0), WithSuccessThreshold(-1)}, steps: "ffff", wantState: StateClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("audit_kafka", tt.opts...)
			opened, closed := replay(b, tt.steps)
			assert.Equal(t, tt.wantState, b.State())
			assert.Equal(t, tt.wantOpened, opened)
			assert.Equal(t, tt.wantClosed, closed)
		})
	}
}

func TestBreakerFallbackSignals(t *testing.T) {
	b := New("audit_kafka", WithFailureThreshold(2))

	useFallback, _ := b.RecordFailure()
	assert.False(t, useFallback, "below threshold the primary is still used")

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened, "already open")

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.Equal(t, "audit_kafka", b.Name())
}

func TestBreakerProbesOncePerCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("audit_kafka", WithFailureThreshold(1), WithCooldown(time.Second))
	b.now = func() time.Time { return now }

	require.True(t, b.Allow())
	b.RecordFailure()
	assert.False(t, b.Allow(), "opened this instant")

	now = now.Add(500 * time.Millisecond)
	assert.False(t, b.Allow())

	now = now.Add(500 * time.Millisecond)
	assert.True(t, b.Allow(), "cooldown elapsed")
	assert.False(t, b.Allow(), "one probe per cooldown")

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.True(t, b.Allow())
}

func TestBreakerConcurrentFailures(t *testing.T) {
	b := New("audit_kafka", WithFailureThreshold(10))

	var (
		mu     sync.Mutex
		opened int
		wg     sync.WaitGroup
	)
	for range 50 {
		wg.Go(func() {
			if _, change := b.RecordFailure(); change.Opened {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.True(t, b.IsOpen())
	assert.Equal(t, 1, opened)
}
