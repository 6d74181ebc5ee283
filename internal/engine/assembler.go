package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/shelfwatch/wantlist/internal/engine/batch"
	"github.com/shelfwatch/wantlist/internal/logging"
	"github.com/shelfwatch/wantlist/internal/openlibrary"
)

// DefaultUser is the account whose shelf is shown when none is given.
const DefaultUser = "mekBot"

// Source is the subset of the Open Library client the assembler needs.
type Source interface {
	AllReadingLog(ctx context.Context, user string, shelf openlibrary.Shelf, maxPages int) ([]openlibrary.ReadingLogEntry, error)
	Subjects(ctx context.Context, workKey string) ([]string, error)
	SearchAuthor(ctx context.Context, name string) (*openlibrary.AuthorDoc, error)
}

// LoadOptions selects the shelf to load and bounds the fan-out.
type LoadOptions struct {
	User        string
	Shelf       openlibrary.Shelf
	MaxPages    int
	Concurrency int
}

// ProgressFunc is called after every row is assembled.
type ProgressFunc func(loaded, total int)

// Assembler builds BookRows from a Source.
type Assembler struct {
	source     Source
	onProgress ProgressFunc
	authors    singleflight.Group
}

// NewAssembler returns an Assembler reading from source.
func NewAssembler(source Source) *Assembler {
	return &Assembler{source: source}
}

// WithProgress sets a callback invoked as rows complete.
func (a *Assembler) WithProgress(fn ProgressFunc) *Assembler {
	a.onProgress = fn
	return a
}

// errorSink collects FetchErrors from concurrent workers.
type errorSink struct {
	mu   sync.Mutex
	errs []FetchError
}

func (s *errorSink) add(kind FetchKind, target string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, FetchError{Kind: kind, Target: target, Err: err})
}

// Load fetches the reading log and enriches every entry.
//
// A reading log failure returns an empty, non-nil row slice together with the
// error. Subject and author failures never fail the load; they are logged,
// recorded in LoadResult.Errors and rendered as empty values.
func (a *Assembler) Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	if opts.User == "" {
		opts.User = DefaultUser
	}
	if opts.Shelf == "" {
		opts.Shelf = openlibrary.DefaultShelf
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = batch.DefaultConcurrency
	}
	processor, err := batch.NewProcessor[openlibrary.ReadingLogEntry](batch.DefaultBatchSize, concurrency)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "engine").
		Str("user", opts.User).
		Str("shelf", string(opts.Shelf)).
		Int("concurrency", concurrency).
		Msg("loading reading log")

	entries, err := a.source.AllReadingLog(ctx, opts.User, opts.Shelf, opts.MaxPages)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn().
			Ctx(ctx).
			Str("component", "engine").
			Str("user", opts.User).
			Err(err).
			Msg("failed to fetch reading log")
		return &LoadResult{
			Rows:     []BookRow{},
			Errors:   []FetchError{{Kind: FetchReadingLog, Target: opts.User, Err: err}},
			Duration: time.Since(start),
		}, fmt.Errorf("fetching reading log for %s: %w", opts.User, err)
	}

	rows := make([]BookRow, len(entries))
	sink := &errorSink{}
	total := len(entries)

	if a.onProgress != nil {
		a.onProgress(0, total)
		processor.WithProgressCallback(func(s batch.ProgressSnapshot) {
			a.onProgress(s.ProcessedItems, total)
		})
	}

	err = processor.Run(ctx, entries, func(ctx context.Context, i int, entry openlibrary.ReadingLogEntry) error {
		rows[i] = a.buildRow(ctx, entry, sink)
		return ctx.Err()
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	result := &LoadResult{Rows: rows, Errors: sink.errs, Duration: time.Since(start)}
	log.Info().
		Ctx(ctx).
		Str("component", "engine").
		Int("rows", len(rows)).
		Int("failed_lookups", len(result.Errors)).
		Dur("duration", result.Duration).
		Msg("reading log loaded")
	return result, nil
}

// buildRow fetches subjects and author details for one entry in parallel.
func (a *Assembler) buildRow(ctx context.Context, entry openlibrary.ReadingLogEntry, sink *errorSink) BookRow {
	work := entry.Work
	names := work.AuthorNames
	if names == nil {
		names = []string{}
	}
	row := BookRow{
		Title:            work.Title,
		FirstPublishYear: work.FirstPublishYear,
		Subjects:         []string{},
		AuthorNames:      names,
		AuthorBirthDates: make([]*string, len(names)),
		AuthorTopWorks:   make([]*string, len(names)),
		WorkKey:          work.Key,
	}

	var g errgroup.Group
	g.Go(func() error {
		row.Subjects = a.subjects(ctx, work.Key, sink)
		return nil
	})
	for i, name := range names {
		g.Go(func() error {
			details := a.author(ctx, name, sink)
			row.AuthorBirthDates[i] = details.BirthYear
			row.AuthorTopWorks[i] = details.TopWork
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return row
}

func (a *Assembler) subjects(ctx context.Context, workKey string, sink *errorSink) []string {
	subjects, err := a.source.Subjects(ctx, workKey)
	if err != nil {
		if ctx.Err() == nil {
			logging.FromContext(ctx).Warn().
				Ctx(ctx).
				Str("component", "engine").
				Str("work", workKey).
				Err(err).
				Msg("failed to fetch subjects")
			sink.add(FetchSubjects, workKey, err)
		}
		return []string{}
	}
	if subjects == nil {
		return []string{}
	}
	return subjects
}

func (a *Assembler) author(ctx context.Context, name string, sink *errorSink) openlibrary.AuthorDetails {
	v, err, _ := a.authors.Do(name, func() (any, error) {
		doc, err := a.source.SearchAuthor(ctx, name)
		if err != nil {
			if ctx.Err() == nil {
				logging.FromContext(ctx).Warn().
					Ctx(ctx).
					Str("component", "engine").
					Str("author", name).
					Err(err).
					Msg("failed to fetch author details")
				sink.add(FetchAuthor, name, err)
			}
			return openlibrary.AuthorDetails{}, err
		}
		return openlibrary.AuthorDetailsFromDoc(doc), nil
	})
	if err != nil {
		return openlibrary.AuthorDetails{}
	}
	details, _ := v.(openlibrary.AuthorDetails)
	return details
}

// IsReadingLogError reports whether the reading log itself could not be fetched.
func IsReadingLogError(result *LoadResult) bool {
	if result == nil {
		return false
	}
	for _, e := range result.Errors {
		if e.Kind == FetchReadingLog {
			return true
		}
	}
	return false
}

// HTTPStatus extracts the status of an Open Library HTTP failure, or 0.
func HTTPStatus(err error) int {
	var httpErr *openlibrary.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
