package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shelfwatch/wantlist/internal/config"
	"github.com/shelfwatch/wantlist/internal/engine/cache"
	"github.com/shelfwatch/wantlist/internal/logging"
	"github.com/shelfwatch/wantlist/internal/openlibrary"
)

// Output formats accepted by --output.
const (
	outputTable  = "table"
	outputJSON   = "json"
	outputNDJSON = "ndjson"
	outputCSV    = "csv"
)

// Exit codes returned through ExitError.
const (
	ExitCodeError        = 1
	ExitCodeLookupErrors = 2
)

// ExitError asks main to exit with a specific code.
type ExitError struct {
	ExitCode int
	Reason   string
}

func (e *ExitError) Error() string {
	return e.Reason
}

// openCache builds the response cache selected by cfg. noCache forces a
// disabled store. The returned close function is never nil.
func openCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Store, func() error, error) {
	backend := cfg.CacheBackend()
	if noCache {
		backend = cache.BackendNone
	}

	if backend == cache.BackendFile {
		if err := config.EnsureCacheDir(cfg); err != nil {
			return nil, func() error { return nil }, err
		}
	}

	store, closeFn, err := cache.New(ctx, cache.Options{
		Backend:    backend,
		Directory:  cfg.Cache.Directory,
		TTLSeconds: cfg.Cache.TTLSeconds,
		Redis: cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		},
	})
	if err != nil {
		return nil, closeFn, fmt.Errorf("opening %s cache: %w", backend, err)
	}
	return store, closeFn, nil
}

// newClient returns an Open Library client backed by the configured cache.
// A cache that cannot be opened is logged and skipped.
func newClient(ctx context.Context, cfg *config.Config, noCache bool) (*openlibrary.Client, func() error) {
	log := logging.FromContext(ctx)

	opts := []openlibrary.Option{
		openlibrary.WithBaseURL(cfg.OpenLibrary.BaseURL),
		openlibrary.WithUserAgent(cfg.OpenLibrary.UserAgent),
		openlibrary.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.OpenLibrary.TimeoutSeconds) * time.Second,
		}),
	}

	store, closeFn, err := openCache(ctx, cfg, noCache)
	if err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "cli").
			Str("backend", cfg.Cache.Backend).
			Err(err).
			Msg("cache unavailable, continuing without it")
	} else {
		opts = append(opts, openlibrary.WithCache(store))
		log.Debug().
			Ctx(ctx).
			Str("component", "cli").
			Bool("cache_enabled", store.IsEnabled()).
			Msg("cache configured")
	}

	return openlibrary.NewClient(opts...), closeFn
}
