// Package openlibrary is a small client for the Open Library endpoints wantlist
// consumes: a user's reading log, work records (for subjects) and the author
// search (for birth year and top work).
package openlibrary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/shelfwatch/wantlist/internal/engine/cache"
	"github.com/shelfwatch/wantlist/internal/logging"
	"github.com/shelfwatch/wantlist/pkg/version"
)

// DefaultBaseURL is the public Open Library host.
const DefaultBaseURL = "https://openlibrary.org"

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 30 * time.Second

// maxResponseBodyBytes caps how much of a response body is read.
const maxResponseBodyBytes = 10 << 20

//nolint:gochecknoglobals // Shared codec configuration.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client errors.
var (
	ErrEmptyUser       = errors.New("user name cannot be empty")
	ErrEmptyWorkKey    = errors.New("work key cannot be empty")
	ErrEmptyAuthorName = errors.New("author name cannot be empty")
	ErrUnknownShelf    = errors.New("unknown shelf")
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
}

// Client talks to Open Library. The zero value is not usable; use NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	cache      cache.Store
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host (tests, mirrors).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithCache enables response caching through store.
func WithCache(store cache.Store) Option {
	return func(c *Client) {
		c.cache = store
	}
}

// NewClient returns a client for DefaultBaseURL unless overridden by opts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured host.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ReadingLog fetches one page of a user's shelf.
func (c *Client) ReadingLog(ctx context.Context, user string, shelf Shelf, page int) (*ReadingLogPage, error) {
	if strings.TrimSpace(user) == "" {
		return nil, ErrEmptyUser
	}
	if shelf == "" {
		shelf = DefaultShelf
	}

	path := "/people/" + url.PathEscape(user) + "/books/" + string(shelf) + ".json"
	query := url.Values{}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}

	var result ReadingLogPage
	if err := c.getJSON(ctx, path, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AllReadingLog follows reading log pages until NumFound entries are collected,
// a page comes back empty, or maxPages pages were read (maxPages <= 0 means no limit).
// Only the first page must succeed; a failure on a later page ends the walk and the
// entries collected so far are returned.
func (c *Client) AllReadingLog(
	ctx context.Context,
	user string,
	shelf Shelf,
	maxPages int,
) ([]ReadingLogEntry, error) {
	log := logging.FromContext(ctx)

	first, err := c.ReadingLog(ctx, user, shelf, 1)
	if err != nil {
		return nil, err
	}

	entries := append([]ReadingLogEntry{}, first.Entries...)
	for page := 2; ; page++ {
		if len(entries) >= first.NumFound || (maxPages > 0 && page > maxPages) {
			break
		}

		next, nextErr := c.ReadingLog(ctx, user, shelf, page)
		if nextErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn().
				Ctx(ctx).
				Str("component", "openlibrary").
				Str("user", user).
				Int("page", page).
				Err(nextErr).
				Msg("failed to fetch reading log page, using entries collected so far")
			break
		}
		if len(next.Entries) == 0 {
			break
		}
		entries = append(entries, next.Entries...)
	}

	return entries, nil
}

// Subjects returns the subject tags of a work. workKey is the "/works/OL..W" key
// from the reading log.
func (c *Client) Subjects(ctx context.Context, workKey string) ([]string, error) {
	if strings.TrimSpace(workKey) == "" {
		return nil, ErrEmptyWorkKey
	}
	if !strings.HasPrefix(workKey, "/") {
		workKey = "/" + workKey
	}

	var work Work
	if err := c.getJSON(ctx, workKey+".json", nil, &work); err != nil {
		return nil, err
	}
	if work.Subjects == nil {
		return []string{}, nil
	}
	return work.Subjects, nil
}

// SearchAuthor returns the best author match for name, or nil when nothing matches.
func (c *Client) SearchAuthor(ctx context.Context, name string) (*AuthorDoc, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyAuthorName
	}

	var result AuthorSearchResult
	if err := c.getJSON(ctx, "/search/authors.json", url.Values{"q": {name}}, &result); err != nil {
		return nil, err
	}
	if len(result.Docs) == 0 {
		return nil, nil //nolint:nilnil // No match is not an error.
	}
	return &result.Docs[0], nil
}

// AuthorDetails looks up name and reduces the first hit to AuthorDetails.
func (c *Client) AuthorDetails(ctx context.Context, name string) (AuthorDetails, error) {
	doc, err := c.SearchAuthor(ctx, name)
	if err != nil {
		return AuthorDetails{}, err
	}
	return AuthorDetailsFromDoc(doc), nil
}

// getJSON performs a GET, consulting the cache first, and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	log := logging.FromContext(ctx)

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	key := cache.KeyForURL(target)

	if body, ok := c.cached(ctx, key, target); ok {
		if err := json.Unmarshal(body, out); err == nil {
			return nil
		}
		log.Debug().Ctx(ctx).Str("component", "openlibrary").Str("url", target).
			Msg("cached body failed to decode, refetching")
	}

	body, err := c.fetch(ctx, target)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", target, err)
	}

	if c.cache != nil && c.cache.IsEnabled() {
		if setErr := c.cache.Set(ctx, key, target, body); setErr != nil {
			log.Warn().Ctx(ctx).Str("component", "openlibrary").Str("url", target).
				Err(setErr).Msg("failed to store response in cache")
		}
	}
	return nil
}

func (c *Client) cached(ctx context.Context, key, target string) ([]byte, bool) {
	if c.cache == nil || !c.cache.IsEnabled() {
		return nil, false
	}

	entry, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		logging.FromContext(ctx).Debug().Ctx(ctx).
			Str("component", "openlibrary").
			Str("url", target).
			Dur("age", entry.Age()).
			Msg("cache hit")
		return entry.Data, true
	case errors.Is(err, cache.ErrCacheNotFound), errors.Is(err, cache.ErrCacheExpired):
		return nil, false
	default:
		logging.FromContext(ctx).Warn().Ctx(ctx).
			Str("component", "openlibrary").
			Str("url", target).
			Err(err).
			Msg("cache read failed, fetching from network")
		return nil, false
	}
}

func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Ctx(ctx).
		Str("component", "openlibrary").
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("open library request")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyBytes))
		return nil, &HTTPError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	return body, nil
}
