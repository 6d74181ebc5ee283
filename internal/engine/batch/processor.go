package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Batch and concurrency limits.
const (
	DefaultBatchSize = 100
	MinBatchSize     = 1
	MaxBatchSize     = 1000

	DefaultConcurrency = 8
	MaxConcurrency     = 64
)

var (
	ErrInvalidBatchSize   = errors.New("batch size must be between 1 and 1000")
	ErrInvalidConcurrency = errors.New("concurrency must be between 1 and 64")
	ErrNilCallback        = errors.New("batch callback cannot be nil")
)

// ItemFunc handles one item. index is the item's position in the input slice.
type ItemFunc[T any] func(ctx context.Context, index int, item T) error

// ProgressCallback receives a snapshot after every finished item. It may be called
// from several goroutines at once.
type ProgressCallback func(snapshot ProgressSnapshot)

// Processor runs an ItemFunc over a slice in sequential batches, with up to
// concurrency items of the current batch in flight.
type Processor[T any] struct {
	batchSize   int
	concurrency int
	onProgress  ProgressCallback
}

// NewProcessor validates the limits and returns a Processor.
func NewProcessor[T any](batchSize, concurrency int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	if concurrency < 1 || concurrency > MaxConcurrency {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, concurrency)
	}
	return &Processor[T]{batchSize: batchSize, concurrency: concurrency}, nil
}

// NewProcessorWithDefaults uses DefaultBatchSize and DefaultConcurrency.
func NewProcessorWithDefaults[T any]() *Processor[T] {
	return &Processor[T]{batchSize: DefaultBatchSize, concurrency: DefaultConcurrency}
}

// WithProgressCallback sets the progress callback.
func (p *Processor[T]) WithProgressCallback(callback ProgressCallback) *Processor[T] {
	p.onProgress = callback
	return p
}

// Run calls fn for every item. The first error returned by fn cancels the
// remaining items of its batch, skips later batches and is returned wrapped with
// the failing item index. An empty slice is a no-op.
func (p *Processor[T]) Run(ctx context.Context, items []T, fn ItemFunc[T]) error {
	if fn == nil {
		return ErrNilCallback
	}
	if len(items) == 0 {
		return nil
	}

	totalBatches := p.calculateTotalBatches(len(items))
	progress := NewProgress(len(items), totalBatches, p.batchSize)

	for batchIndex := range totalBatches {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := batchIndex * p.batchSize
		end := min(start+p.batchSize, len(items))

		if err := p.runBatch(ctx, items, start, end, fn, progress); err != nil {
			return err
		}
		progress.CompleteBatch()
	}
	return nil
}

func (p *Processor[T]) runBatch(
	ctx context.Context,
	items []T,
	start, end int,
	fn ItemFunc[T],
	progress *Progress,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := start; i < end; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(gctx, i, items[i]); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			progress.AddItems(1)
			if p.onProgress != nil {
				p.onProgress(progress.Snapshot())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// calculateTotalBatches calculates the total number of batches needed.
func (p *Processor[T]) calculateTotalBatches(itemCount int) int {
	if itemCount == 0 {
		return 0
	}
	return (itemCount + p.batchSize - 1) / p.batchSize
}

// BatchSize returns the configured batch size.
func (p *Processor[T]) BatchSize() int {
	return p.batchSize
}

// Concurrency returns the per-batch concurrency limit.
func (p *Processor[T]) Concurrency() int {
	return p.concurrency
}
