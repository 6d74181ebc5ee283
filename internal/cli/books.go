package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shelfwatch/wantlist/internal/cli/pagination"
	"github.com/shelfwatch/wantlist/internal/config"
	"github.com/shelfwatch/wantlist/internal/engine"
	"github.com/shelfwatch/wantlist/internal/logging"
	"github.com/shelfwatch/wantlist/internal/openlibrary"
	"github.com/shelfwatch/wantlist/internal/tui"
)

// progressLogInterval is how often (in rows) interactive loading progress is logged.
const progressLogInterval = 10

// booksParams holds the books command flags.
type booksParams struct {
	user        string
	shelf       string
	sort        string
	output      string
	page        int
	pageSize    int
	offset      int
	limit       int
	maxPages    int
	concurrency int
	plain       bool
	styled      bool
	noCache     bool
	strict      bool
}

// NewBooksCmd creates the books command that renders a user's shelf.
func NewBooksCmd() *cobra.Command {
	var params booksParams

	cmd := &cobra.Command{
		Use:   "books",
		Short: "Show a reading log shelf as a sortable, paginated table",
		Long: `Fetches a user's Open Library reading log and enriches every book with its
subjects and, for each author, the birth year and top work.

On an interactive terminal the table opens in a TUI: press 1-6 to sort by a
column (again to reverse), n/p to change page, + to change rows per page,
/ to filter and enter for details. Otherwise one page is printed.

Lookups that fail are shown as empty cells and summarized on stderr.`,
		Example: `  # Interactive table for the default user
  wantlist books

  # Second page of 50, sorted by first publish year, newest first
  wantlist books --plain --page 2 --page-size 50 --sort firstPublishYear:desc

  # Rows 20-29 as JSON
  wantlist books --output json --offset 20 --limit 10

  # Fail with exit code 2 when any lookup failed
  wantlist books --plain --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBooks(cmd, params)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&params.user, "user", config.DefaultUser, "Open Library user name")
	flags.StringVar(&params.shelf, "shelf", config.DefaultShelf,
		"shelf to show: want-to-read, currently-reading or already-read")
	flags.StringVar(&params.sort, "sort", config.DefaultSort,
		"sort as field[:asc|desc]; fields: "+strings.Join(pagination.Fields(), ", "))
	flags.StringVar(&params.output, "output", config.DefaultFormat, "output format: table, json, ndjson or csv")
	flags.IntVar(&params.page, "page", pagination.DefaultPage, "page number (1-based)")
	flags.IntVar(&params.pageSize, "page-size", pagination.DefaultPageSize, "rows per page: 10, 50 or 100")
	flags.IntVar(&params.offset, "offset", 0, "rows to skip (offset mode, excludes --page)")
	flags.IntVar(&params.limit, "limit", 0, "maximum rows to return (offset mode)")
	flags.IntVar(&params.maxPages, "max-pages", 0, "maximum reading log pages to fetch (0 = all)")
	flags.IntVar(&params.concurrency, "concurrency", config.DefaultConcurrency, "concurrent book lookups")
	flags.BoolVar(&params.plain, "plain", false, "force plain text output")
	flags.BoolVar(&params.styled, "styled", false, "print a styled table instead of the interactive view")
	flags.BoolVar(&params.noCache, "no-cache", false, "bypass the response cache")
	flags.BoolVar(&params.strict, "strict", false, "exit with code 2 when any lookup failed")

	return cmd
}

// applyConfig fills flags the user did not set from the configuration.
func (p *booksParams) applyConfig(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("user") {
		p.user = cfg.OpenLibrary.User
	}
	if !flags.Changed("shelf") {
		p.shelf = cfg.OpenLibrary.Shelf
	}
	if !flags.Changed("sort") && cfg.Output.Sort != "" {
		p.sort = cfg.Output.Sort
	}
	if !flags.Changed("output") {
		p.output = cfg.Output.DefaultFormat
	}
	if !flags.Changed("page-size") {
		p.pageSize = cfg.Output.PageSize
	}
	if !flags.Changed("max-pages") {
		p.maxPages = cfg.OpenLibrary.MaxPages
	}
	if !flags.Changed("concurrency") {
		p.concurrency = cfg.OpenLibrary.Concurrency
	}
}

// runBooks loads, sorts, pages and renders the shelf.
func runBooks(cmd *cobra.Command, params booksParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	cfg := config.GetGlobalConfig()
	params.applyConfig(cmd, cfg)

	shelf, err := openlibrary.ParseShelf(params.shelf)
	if err != nil {
		return err
	}
	sortField, sortOrder, err := pagination.ParseSort(params.sort)
	if err != nil {
		return err
	}
	pageParams := pagination.Params{
		Page:      params.page,
		PageSize:  params.pageSize,
		Offset:    params.offset,
		Limit:     params.limit,
		SortField: sortField,
		SortOrder: sortOrder,
	}
	if err = pageParams.Validate(); err != nil {
		return err
	}
	format := strings.ToLower(params.output)
	if !slices.Contains([]string{outputTable, outputJSON, outputNDJSON, outputCSV}, format) {
		return fmt.Errorf("unsupported output format %q (want table, json, ndjson or csv)", params.output)
	}

	client, closeCache := newClient(ctx, cfg, params.noCache)
	defer func() {
		if closeErr := closeCache(); closeErr != nil {
			log.Debug().Ctx(ctx).Str("component", "cli").Err(closeErr).Msg("closing cache")
		}
	}()

	opts := engine.LoadOptions{
		User:        params.user,
		Shelf:       shelf,
		MaxPages:    params.maxPages,
		Concurrency: params.concurrency,
	}
	assembler := engine.NewAssembler(client)

	mode := tui.DetectOutputMode(params.plain, params.styled, false)
	log.Debug().
		Ctx(ctx).
		Str("component", "cli").
		Str("user", opts.User).
		Str("shelf", string(shelf)).
		Str("format", format).
		Str("mode", mode.String()).
		Msg("books command")

	if format == outputTable && mode == tui.OutputModeInteractive {
		return runInteractiveBooks(ctx, cfg, client, assembler, opts, pageParams)
	}

	result, err := assembler.Load(ctx, opts)
	if err != nil && !engine.IsReadingLogError(result) {
		return fmt.Errorf("loading books: %w", err)
	}
	if err != nil {
		cmd.PrintErrf("Warning: could not load the reading log for %s: %v\n", opts.User, err)
	}

	rows := pagination.NewBookSorter().Sort(result.Rows, sortField, sortOrder)
	page := booksPage{
		Rows:      pagination.Slice(pageParams, rows),
		Meta:      pagination.NewMeta(pageParams, len(rows)),
		SortField: sortField,
		SortOrder: sortOrder,
		Errors:    result.Errors,
	}

	if renderErr := renderBooks(cmd.OutOrStdout(), format, mode, page); renderErr != nil {
		return renderErr
	}

	if result.HasErrors() && !engine.IsReadingLogError(result) {
		cmd.PrintErr(result.ErrorSummary())
		if params.strict {
			return &ExitError{
				ExitCode: ExitCodeLookupErrors,
				Reason:   fmt.Sprintf("%d lookup(s) failed", len(result.Errors)),
			}
		}
	}
	return nil
}

// runInteractiveBooks launches the TUI and loads the shelf in the background.
func runInteractiveBooks(
	ctx context.Context,
	cfg *config.Config,
	client *openlibrary.Client,
	assembler *engine.Assembler,
	opts engine.LoadOptions,
	params pagination.Params,
) error {
	ctx = quietStderrLogging(ctx, cfg)
	log := logging.FromContext(ctx)

	model, _ := tui.NewBooksModel(ctx, tui.BooksOptions{
		User:         opts.User,
		Shelf:        string(opts.Shelf),
		SortField:    params.SortField,
		SortOrder:    params.SortOrder,
		PageSize:     params.PageSize,
		AuthorLookup: client.SearchAuthor,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		assembler.WithProgress(func(loaded, total int) {
			p.Send(tui.BooksLoadingProgressMsg{Loaded: loaded, Total: total})
			if loaded%progressLogInterval == 0 || loaded == total {
				log.Debug().
					Ctx(ctx).
					Str("component", "cli").
					Str("operation", "books_tui").
					Int("loaded", loaded).
					Int("total", total).
					Msg("loading progress")
			}
		})

		result, err := assembler.Load(loadCtx, opts)
		p.Send(tui.BooksLoadedMsg{Result: result, Err: err})

		log.Info().
			Ctx(ctx).
			Str("component", "cli").
			Str("operation", "books_tui").
			Bool("failed", err != nil).
			Msg("loading complete")
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// quietStderrLogging raises the context logger to error level unless logs go
// to a file, so warnings do not draw over the alternate screen.
func quietStderrLogging(ctx context.Context, cfg *config.Config) context.Context {
	if cfg.Logging.File != "" {
		return ctx
	}
	log := logging.FromContext(ctx)
	if log.GetLevel() >= zerolog.ErrorLevel {
		return ctx
	}
	quiet := log.Level(zerolog.ErrorLevel)
	return quiet.WithContext(ctx)
}
