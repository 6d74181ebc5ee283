package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"

	"github.com/shelfwatch/wantlist/internal/cli/pagination"
	"github.com/shelfwatch/wantlist/internal/engine"
	"github.com/shelfwatch/wantlist/internal/tui"
)

// tabPadding is the minimum padding between plain table columns.
const tabPadding = 2

//nolint:gochecknoglobals // Shared codec configuration.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// booksPage is one rendered page of the shelf.
type booksPage struct {
	Rows      []engine.BookRow
	Meta      pagination.Meta
	SortField string
	SortOrder string
	Errors    []engine.FetchError
}

// booksJSON is the --output json document.
type booksJSON struct {
	Books      []engine.BookRow `json:"books"`
	Pagination pagination.Meta  `json:"pagination"`
	Sort       sortJSON         `json:"sort"`
	Errors     []fetchErrorJSON `json:"errors"`
}

type sortJSON struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

type fetchErrorJSON struct {
	Kind    engine.FetchKind `json:"kind"`
	Target  string           `json:"target"`
	Message string           `json:"message"`
	Status  int              `json:"status,omitempty"`
}

// renderBooks writes page in the requested format.
func renderBooks(w io.Writer, format string, mode tui.OutputMode, page booksPage) error {
	switch format {
	case outputJSON:
		return renderBooksJSON(w, page)
	case outputNDJSON:
		return renderBooksNDJSON(w, page.Rows)
	case outputCSV:
		return renderBooksCSV(w, page.Rows)
	default:
		if mode == tui.OutputModeStyled {
			_, err := io.WriteString(w, tui.RenderBooksStyled(
				page.Rows, page.Meta, page.SortField, page.SortOrder, tui.TerminalWidth()))
			return err
		}
		return renderBooksPlain(w, page)
	}
}

func renderBooksJSON(w io.Writer, page booksPage) error {
	doc := booksJSON{
		Books:      page.Rows,
		Pagination: page.Meta,
		Sort:       sortJSON{Field: page.SortField, Order: page.SortOrder},
		Errors:     make([]fetchErrorJSON, 0, len(page.Errors)),
	}
	for _, e := range page.Errors {
		doc.Errors = append(doc.Errors, fetchErrorJSON{
			Kind:    e.Kind,
			Target:  e.Target,
			Message: e.Err.Error(),
			Status:  engine.HTTPStatus(e.Err),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func renderBooksNDJSON(w io.Writer, rows []engine.BookRow) error {
	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("encoding NDJSON: %w", err)
		}
	}
	return nil
}

func renderBooksCSV(w io.Writer, rows []engine.BookRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tui.ColumnTitles()); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(tui.RowCells(row)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderBooksPlain(w io.Writer, page booksPage) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(tui.ColumnTitles(), "\t")); err != nil {
		return err
	}
	for _, row := range page.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(tui.RowCells(row), "\t")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(page.Rows) == 0 {
		if _, err := fmt.Fprintln(w, "No books to show."); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, tui.FooterText(page.Meta))
	return err
}
