package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/shelfwatch/wantlist/internal/cli/pagination"
	"github.com/shelfwatch/wantlist/internal/engine"
)

// ColumnTitles returns the table headers in display order.
func ColumnTitles() []string {
	titles := make([]string, len(bookColumns))
	for i, c := range bookColumns {
		titles[i] = c.title
	}
	return titles
}

// RowCells renders a row as display strings in column order.
func RowCells(r engine.BookRow) []string {
	return []string{
		r.Title,
		engine.FormatYear(r.FirstPublishYear),
		engine.FormatList(r.Subjects),
		engine.FormatList(r.AuthorNames),
		engine.FormatNullable(r.AuthorBirthDates),
		engine.FormatNullable(r.AuthorTopWorks),
	}
}

// RenderBooksStyled renders one page of rows as a bordered table followed by
// the pagination footer, for non-interactive terminals.
func RenderBooksStyled(rows []engine.BookRow, meta pagination.Meta, sortField, sortOrder string, width int) string {
	headers := ColumnTitles()
	for i, c := range bookColumns {
		if c.field == sortField {
			headers[i] += sortIndicator(sortOrder)
		}
	}

	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(LabelStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return HeaderStyle.Padding(0, 1)
			}
			return ValueStyle.Padding(0, 1)
		})
	if width > 0 {
		t = t.Width(width)
	}
	for _, r := range rows {
		t = t.Row(RowCells(r)...)
	}

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(FooterText(meta)))
	b.WriteString("\n")
	return b.String()
}
