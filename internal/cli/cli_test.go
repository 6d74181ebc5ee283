package cli_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/wantlist/internal/cli"
	"github.com/shelfwatch/wantlist/internal/config"
)

const readingLogJSON = `{
  "page": 1,
  "numFound": 3,
  "reading_log_entries": [
    {"work": {"title": "The Hobbit", "key": "/works/OL1W", "author_names": ["J. R. R. Tolkien"], "first_publish_year": 1937}},
    {"work": {"title": "A Wizard of Earthsea", "key": "/works/OL2W", "author_names": ["Ursula K. Le Guin"], "first_publish_year": 1968}},
    {"work": {"title": "Beowulf", "key": "/works/OL3W", "author_names": []}}
  ]
}`

// fakeOpenLibrary serves a three-book shelf. Work OL2W has no subjects
// endpoint and every author except Tolkien fails.
type fakeOpenLibrary struct {
	server   *httptest.Server
	requests atomic.Int32
}

func newFakeOpenLibrary(t *testing.T) *fakeOpenLibrary {
	t.Helper()
	f := &fakeOpenLibrary{}
	mux := http.NewServeMux()
	mux.HandleFunc("/people/mekBot/books/want-to-read.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(readingLogJSON))
	})
	mux.HandleFunc("/works/OL1W.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"key": "/works/OL1W", "subjects": ["Fantasy", "Dragons"]}`))
	})
	mux.HandleFunc("/works/OL3W.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"key": "/works/OL3W", "subjects": ["Epic poetry"]}`))
	})
	mux.HandleFunc("/search/authors.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "J. R. R. Tolkien" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"numFound": 1, "docs": [{"key": "OL26320A", "name": "J. R. R. Tolkien",
			"birth_date": "3 January 1892", "death_date": "2 September 1973", "top_work": "The Hobbit",
			"work_count": 600, "top_subjects": ["Fiction", "Fantasy"]}]}`))
	})
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

// setupEnv isolates configuration and points the client at baseURL.
func setupEnv(t *testing.T, baseURL string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnvVar, home)
	t.Setenv(config.ProjectDirEnvVar, "")
	t.Setenv("NO_COLOR", "1")
	t.Setenv("WANTLIST_OPENLIBRARY_BASE_URL", baseURL)
	t.Chdir(t.TempDir())
	config.ResetGlobalConfigForTest()
	config.SetResolvedProjectDir("")
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := cli.NewRootCmd("test")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestBooks_JSON(t *testing.T) {
	fake := newFakeOpenLibrary(t)
	setupEnv(t, fake.server.URL)

	stdout, stderr, err := execute(t, "books", "--output", "json", "--no-cache")
	require.NoError(t, err)

	var doc struct {
		Books []struct {
			Title            string    `json:"title"`
			FirstPublishYear *int      `json:"firstPublishYear"`
			Subjects         []string  `json:"subjects"`
			AuthorNames      []string  `json:"authorNames"`
			AuthorBirthDates []*string `json:"authorBirthDates"`
			AuthorTopWorks   []*string `json:"authorTopWorks"`
		} `json:"books"`
		Pagination struct {
			TotalItems int `json:"total_items"`
			PageSize   int `json:"page_size"`
		} `json:"pagination"`
		Sort struct {
			Field string `json:"field"`
			Order string `json:"order"`
		} `json:"sort"`
		Errors []struct {
			Kind   string `json:"kind"`
			Target string `json:"target"`
			Status int    `json:"status"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))

	require.Len(t, doc.Books, 3)
	assert.Equal(t, []string{"A Wizard of Earthsea", "Beowulf", "The Hobbit"},
		[]string{doc.Books[0].Title, doc.Books[1].Title, doc.Books[2].Title})

	hobbit := doc.Books[2]
	assert.Equal(t, []string{"Fantasy", "Dragons"}, hobbit.Subjects)
	require.Len(t, hobbit.AuthorBirthDates, 1)
	assert.Equal(t, "1892", *hobbit.AuthorBirthDates[0])
	assert.Equal(t, "The Hobbit", *hobbit.AuthorTopWorks[0])

	earthsea := doc.Books[0]
	assert.Empty(t, earthsea.Subjects)
	assert.Equal(t, []*string{nil}, earthsea.AuthorBirthDates)

	beowulf := doc.Books[1]
	assert.Nil(t, beowulf.FirstPublishYear)

	assert.Equal(t, 3, doc.Pagination.TotalItems)
	assert.Equal(t, 10, doc.Pagination.PageSize)
	assert.Equal(t, "title", doc.Sort.Field)
	assert.Equal(t, "asc", doc.Sort.Order)
	assert.Len(t, doc.Errors, 2)

	assert.Contains(t, stderr, "2 lookup(s) failed")
}

func TestBooks_PlainSortedDescending(t *testing.T) {
	fake := newFakeOpenLibrary(t)
	setupEnv(t, fake.server.URL)

	stdout, _, err := execute(t, "books", "--plain", "--no-cache", "--sort", "firstPublishYear:desc")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Title")
	assert.Contains(t, lines[0], "Author Top Work")
	assert.True(t, strings.HasPrefix(lines[1], "A Wizard of Earthsea"))
	assert.True(t, strings.HasPrefix(lines[2], "The Hobbit"))
	assert.True(t, strings.HasPrefix(lines[3], "Beowulf"), "missing years sort last when descending")
	assert.Contains(t, lines[2], "Fantasy, Dragons")
	assert.Equal(t, "Rows per page: 10 | rows 1-3 of 3 | Page 1/1", lines[4])
}

func TestBooks_OffsetAndCSV(t *testing.T) {
	fake := newFakeOpenLibrary(t)
	setupEnv(t, fake.server.URL)

	stdout, _, err := execute(t, "books", "--output", "csv", "--no-cache", "--offset", "1", "--limit", "1")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Title", records[0][0])
	assert.Equal(t, []string{"Beowulf", "", "Epic poetry", "", "", ""}, records[1])
}

func TestBooks_NDJSONPastLastPage(t *testing.T) {
	fake := newFakeOpenLibrary(t)
	setupEnv(t, fake.server.URL)

	stdout, _, err := execute(t, "books", "--output", "ndjson", "--no-cache", "--page", "3")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestBooks_Strict(t *testing.T) {
	fake := newFakeOpenLibrary(t)
	setupEnv(t, fake.server.URL)

	_, _, err := execute(t, "books", "--plain", "--no-cache", "--strict")
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitCodeLookupErrors, exitErr.ExitCode)
}

func TestBooks_ReadingLogFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	setupEnv(t, server.URL)

	stdout, stderr, err := execute(t, "books", "--plain", "--no-cache")
	require.NoError(t, err, "an unavailable reading log renders an empty table")
	assert.Contains(t, stdout, "No books to show.")
	assert.Contains(t, stdout, "rows 0-0 of 0")
	assert.Contains(t, stderr, "could not load the reading log for mekBot")
	assert.Contains(t, stderr, "503")
}

func TestBooks_InvalidFlags(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	tests := []struct {
		name string
		args []string
	}{
		{name: "page size", args: []string{"--page-size", "25"}},
		{name: "sort field", args: []string{"--sort", "isbn"}},
		{name: "sort order", args: []string{"--sort", "title:up"}},
		{name: "shelf", args: []string{"--shelf", "to-burn"}},
		{name: "output", args: []string{"--output", "xml"}},
		{name: "mixed pagination", args: []string{"--page", "2", "--offset", "5"}},
		{name: "page zero", args: []string{"--page", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append([]string{"books", "--plain"}, tt.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestBooks_FileCache(t *testing.T) {
	fake := newFakeOpenLibrary(t)
	home := setupEnv(t, fake.server.URL)

	_, _, err := execute(t, "books", "--plain")
	require.NoError(t, err)
	first := fake.requests.Load()
	require.Positive(t, first)

	_, _, err = execute(t, "books", "--plain")
	require.NoError(t, err)
	assert.Equal(t, first+2, fake.requests.Load(), "only the failed author lookups are repeated")

	entries, err := os.ReadDir(filepath.Join(home, "cache"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	stdout, _, err := execute(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Backend: file")

	stdout, _, err = execute(t, "cache", "prune")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed 0 expired entries")

	stdout, _, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cache cleared")

	_, _, err = execute(t, "books", "--plain")
	require.NoError(t, err)
	assert.Greater(t, fake.requests.Load(), first+2)
}

func TestCache_Disabled(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")
	t.Setenv("WANTLIST_CACHE_ENABLED", "false")

	stdout, _, err := execute(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cache is disabled")

	stdout, _, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, stdout, "nothing to clear")
}

func TestRoot_InvalidCacheTTL(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")
	_, _, err := execute(t, "--cache-ttl", "5s", "version")
	assert.Error(t, err)

	_, _, err = execute(t, "--cache-ttl", "2h", "version")
	require.NoError(t, err)
	assert.Equal(t, 7200, config.GetGlobalConfig().Cache.TTLSeconds)
}

func TestAuthor(t *testing.T) {
	fake := newFakeOpenLibrary(t)
	setupEnv(t, fake.server.URL)

	stdout, _, err := execute(t, "author", "J.", "R.", "R.", "Tolkien", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, stdout, "J. R. R. Tolkien")
	assert.Contains(t, stdout, "1892")
	assert.Contains(t, stdout, "The Hobbit")
	assert.Contains(t, stdout, "Fiction, Fantasy")

	stdout, _, err = execute(t, "author", "J. R. R. Tolkien", "--output", "json", "--no-cache")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "1892", doc["birth_year"])
	assert.Equal(t, "OL26320A", doc["key"])

	_, _, err = execute(t, "author", "Nobody", "--no-cache")
	assert.Error(t, err)
}

func TestAuthor_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"numFound": 0, "docs": []}`))
	}))
	t.Cleanup(server.Close)
	setupEnv(t, server.URL)

	_, _, err := execute(t, "author", "Nobody", "--no-cache")
	assert.ErrorIs(t, err, cli.ErrAuthorNotFound)
}

func TestVersion(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "commit:")

	stdout, _, err = execute(t, "version", "--short")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "commit:")
}
