package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shelfwatch/wantlist/internal/config"
	"github.com/shelfwatch/wantlist/internal/logging"
	"github.com/shelfwatch/wantlist/internal/openlibrary"
)

// ErrAuthorNotFound is returned when the author search has no hits.
var ErrAuthorNotFound = errors.New("no matching author")

// authorJSON is the --output json document of the author command.
type authorJSON struct {
	openlibrary.AuthorDoc

	BirthYear *string `json:"birth_year"`
}

// NewAuthorCmd creates the author command that looks up one author.
func NewAuthorCmd() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "author <name>",
		Short: "Look up an author's birth date and top work",
		Long: `Searches Open Library for an author and prints the best match, including the
birth year and top work shown in the books table.`,
		Example: `  wantlist author "J. R. R. Tolkien"
  wantlist author "Octavia E. Butler" --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthor(cmd, strings.Join(args, " "), output, noCache)
		},
	}

	cmd.Flags().StringVar(&output, "output", outputTable, "output format: table or json")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")

	return cmd
}

func runAuthor(cmd *cobra.Command, name, output string, noCache bool) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	cfg := config.GetGlobalConfig()

	if output != outputTable && output != outputJSON {
		return fmt.Errorf("unsupported output format %q (want table or json)", output)
	}

	client, closeCache := newClient(ctx, cfg, noCache)
	defer func() { _ = closeCache() }()

	doc, err := client.SearchAuthor(ctx, name)
	if err != nil {
		log.Error().Ctx(ctx).Str("component", "cli").Str("author", name).Err(err).Msg("author lookup failed")
		return fmt.Errorf("looking up %q: %w", name, err)
	}
	if doc == nil {
		return fmt.Errorf("%w: %q", ErrAuthorNotFound, name)
	}

	details := openlibrary.AuthorDetailsFromDoc(doc)
	if output == outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(authorJSON{AuthorDoc: *doc, BirthYear: details.BirthYear})
	}
	return renderAuthorPlain(cmd.OutOrStdout(), doc, details)
}

func renderAuthorPlain(w io.Writer, doc *openlibrary.AuthorDoc, details openlibrary.AuthorDetails) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fields := [][2]string{
		{"Name", doc.Name},
		{"Key", doc.Key},
		{"Born", doc.BirthDate},
		{"Birth year", deref(details.BirthYear)},
		{"Died", doc.DeathDate},
		{"Top work", deref(details.TopWork)},
		{"Works", strconv.Itoa(doc.WorkCount)},
		{"Top subjects", strings.Join(doc.TopSubjects, ", ")},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", f[0], f[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
