package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewProcessor(t *testing.T) {
	_, err := NewProcessor[int](0, 1)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	_, err = NewProcessor[int](10, 0)
	assert.ErrorIs(t, err, ErrInvalidConcurrency)

	p, err := NewProcessor[int](10, 4)
	require.NoError(t, err)
	assert.Equal(t, 10, p.BatchSize())
	assert.Equal(t, 4, p.Concurrency())

	d := NewProcessorWithDefaults[string]()
	assert.Equal(t, DefaultBatchSize, d.BatchSize())
	assert.Equal(t, DefaultConcurrency, d.Concurrency())
}

func TestProcessor_Run(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	t.Run("AllItems", func(t *testing.T) {
		p, err := NewProcessor[int](10, 3)
		require.NoError(t, err)

		seen := make([]bool, len(items))
		var mu sync.Mutex
		err = p.Run(context.Background(), items, func(_ context.Context, index, item int) error {
			assert.Equal(t, index, item)
			mu.Lock()
			seen[index] = true
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
		for i, ok := range seen {
			assert.True(t, ok, "item %d not processed", i)
		}
	})

	t.Run("ConcurrencyLimit", func(t *testing.T) {
		p, err := NewProcessor[int](25, 2)
		require.NoError(t, err)

		var inFlight, peak atomic.Int32
		err = p.Run(context.Background(), items, func(context.Context, int, int) error {
			n := inFlight.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			return nil
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("Progress", func(t *testing.T) {
		p, err := NewProcessor[int](10, 4)
		require.NoError(t, err)

		var calls atomic.Int32
		var last atomic.Int32
		p.WithProgressCallback(func(s ProgressSnapshot) {
			calls.Add(1)
			assert.Equal(t, 25, s.TotalItems)
			assert.Equal(t, 3, s.TotalBatches)
			if int32(s.ProcessedItems) > last.Load() {
				last.Store(int32(s.ProcessedItems))
			}
		})
		require.NoError(t, p.Run(context.Background(), items, func(context.Context, int, int) error { return nil }))
		assert.Equal(t, int32(25), calls.Load())
		assert.Equal(t, int32(25), last.Load())
	})

	t.Run("ErrorStopsLaterBatches", func(t *testing.T) {
		p, err := NewProcessor[int](10, 1)
		require.NoError(t, err)

		boom := errors.New("boom")
		var maxIndex atomic.Int32
		err = p.Run(context.Background(), items, func(_ context.Context, index, _ int) error {
			if int32(index) > maxIndex.Load() {
				maxIndex.Store(int32(index))
			}
			if index == 12 {
				return boom
			}
			return nil
		})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "item 12")
		assert.Less(t, maxIndex.Load(), int32(20))
	})

	t.Run("Empty", func(t *testing.T) {
		p := NewProcessorWithDefaults[int]()
		assert.NoError(t, p.Run(context.Background(), nil, func(context.Context, int, int) error { return nil }))
		assert.ErrorIs(t, p.Run(context.Background(), items, nil), ErrNilCallback)
	})

	t.Run("Canceled", func(t *testing.T) {
		p := NewProcessorWithDefaults[int]()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := p.Run(ctx, items, func(context.Context, int, int) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestProgress(t *testing.T) {
	p := NewProgress(4, 2, 2)
	assert.False(t, p.IsComplete())

	assert.Equal(t, 2, p.AddItems(2))
	p.CompleteBatch()

	snap := p.Snapshot()
	assert.InDelta(t, 50.0, snap.PercentComplete, 0.001)
	assert.Equal(t, 1, snap.ProcessedBatches)
	assert.GreaterOrEqual(t, snap.Remaining(), time.Duration(0))

	p.AddItems(2)
	assert.True(t, p.IsComplete())
	assert.Equal(t, time.Duration(0), ProgressSnapshot{TotalItems: 3}.Remaining())
}
