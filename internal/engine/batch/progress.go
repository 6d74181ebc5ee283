package batch

import (
	"sync"
	"time"
)

const percentMultiplier = 100

// Progress tracks how many items and batches have finished.
// Safe for concurrent use by the worker goroutines of one run.
type Progress struct {
	mu sync.RWMutex

	totalItems       int
	processedItems   int
	totalBatches     int
	processedBatches int
	batchSize        int
	startTime        time.Time
	lastUpdate       time.Time
}

// NewProgress creates a progress tracker starting now.
func NewProgress(totalItems, totalBatches, batchSize int) *Progress {
	now := time.Now()
	return &Progress{
		totalItems:   totalItems,
		totalBatches: totalBatches,
		batchSize:    batchSize,
		startTime:    now,
		lastUpdate:   now,
	}
}

// AddItems records n finished items and returns the new processed count.
func (p *Progress) AddItems(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processedItems += n
	p.lastUpdate = time.Now()
	return p.processedItems
}

// CompleteBatch records a finished batch.
func (p *Progress) CompleteBatch() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processedBatches++
	p.lastUpdate = time.Now()
}

// IsComplete reports whether every item has been recorded.
func (p *Progress) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.processedItems >= p.totalItems
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	elapsed := time.Since(p.startTime)
	snap := ProgressSnapshot{
		TotalItems:       p.totalItems,
		ProcessedItems:   p.processedItems,
		TotalBatches:     p.totalBatches,
		ProcessedBatches: p.processedBatches,
		BatchSize:        p.batchSize,
		StartTime:        p.startTime,
		LastUpdateTime:   p.lastUpdate,
		ElapsedTime:      elapsed,
	}
	if p.totalItems > 0 {
		snap.PercentComplete = float64(p.processedItems) / float64(p.totalItems) * percentMultiplier
	}
	if secs := elapsed.Seconds(); secs > 0 {
		snap.ItemsPerSecond = float64(p.processedItems) / secs
	}
	return snap
}

// ProgressSnapshot is an immutable view of a Progress.
type ProgressSnapshot struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
	BatchSize        int
	StartTime        time.Time
	LastUpdateTime   time.Time
	PercentComplete  float64
	ElapsedTime      time.Duration
	ItemsPerSecond   float64
}

// Remaining estimates time left from the average rate so far.
// It is zero until the first item finishes.
func (s ProgressSnapshot) Remaining() time.Duration {
	if s.ProcessedItems == 0 {
		return 0
	}
	perItem := s.ElapsedTime / time.Duration(s.ProcessedItems)
	return perItem * time.Duration(s.TotalItems-s.ProcessedItems)
}
