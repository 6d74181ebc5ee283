package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shelfwatch/wantlist/internal/cli/pagination"
	"github.com/shelfwatch/wantlist/internal/engine"
)

// View implements tea.Model.
func (m BooksModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" + SubtleStyle.Render("Press 'q' to quit") + "\n"
	case ViewStateLoading:
		return m.renderLoadingView()
	case ViewStateDetail:
		return m.renderDetailView()
	case ViewStateList:
		return m.renderListView()
	default:
		return ""
	}
}

func (m BooksModel) renderLoadingView() string {
	sections := []string{m.renderTitle()}
	if m.progressMsg != "" {
		sections = append(sections, InfoStyle.Width(m.width-borderPadding).Padding(0, 1).Render(m.progressMsg))
	}
	sections = append(sections, RenderLoading(m.loadingState))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m BooksModel) renderTitle() string {
	if m.user == "" {
		return HeaderStyle.Render("Want to Read")
	}
	shelf := m.shelf
	if shelf == "" {
		shelf = "want-to-read"
	}
	return HeaderStyle.Render(fmt.Sprintf("%s / %s", m.user, shelf))
}

func (m BooksModel) renderListView() string {
	sections := []string{m.renderTitle()}
	if m.warning != "" {
		sections = append(sections, WarningStyle.Render(m.warning))
	}
	sections = append(sections, m.table.View(), m.renderFooter(), m.renderStatusBar())
	if m.showFilter {
		sections = append(sections, LabelStyle.Render("Filter: ")+m.textInput.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderFooter shows rows per page, the visible range and the page position.
func (m BooksModel) renderFooter() string {
	return SubtleStyle.Render(FooterText(pagination.NewMeta(m.params(), len(m.rows))))
}

// FooterText is the pagination summary shown under every table.
func FooterText(meta pagination.Meta) string {
	pages := max(meta.TotalPages, 1)
	return fmt.Sprintf("Rows per page: %d | rows %d-%d of %d | Page %d/%d",
		meta.PageSize, meta.First, meta.Last, meta.TotalItems, meta.CurrentPage, pages)
}

func (m BooksModel) renderStatusBar() string {
	label := m.sortField
	for _, c := range bookColumns {
		if c.field == m.sortField {
			label = c.title
		}
	}
	filterStatus := ""
	if m.textInput.Value() != "" {
		filterStatus = fmt.Sprintf(" | Filtered: %d/%d", len(m.rows), len(m.allRows))
	}
	return SubtleStyle.Render(fmt.Sprintf(
		"Sort: %s %s%s | 1-6 sort column, s cycle, r reverse, n/p page, + rows, / filter, q quit",
		label, m.sortOrder, filterStatus))
}

func (m BooksModel) renderDetailView() string {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return msgSelectedOutOfBounds
	}
	row := m.rows[m.selected]

	var content strings.Builder
	content.WriteString(HeaderStyle.Render(row.Title))
	content.WriteString("\n\n")
	writeDetailField(&content, "First published: ", engine.FormatYear(row.FirstPublishYear))
	writeDetailField(&content, "Work:            ", row.WorkKey)
	writeDetailField(&content, "Authors:         ", engine.FormatList(row.AuthorNames))
	content.WriteString("\n")

	content.WriteString(HeaderStyle.Render("SUBJECTS"))
	if m.subjects != nil && m.subjects.ItemCount() > 0 {
		from, to, total := m.subjects.ScrollInfo()
		content.WriteString(SubtleStyle.Render(fmt.Sprintf("  %d-%d of %d", from, to, total)))
		content.WriteString("\n")
		content.WriteString(m.subjects.View())
	} else {
		content.WriteString("\n")
		content.WriteString(SubtleStyle.Render("  none"))
	}
	content.WriteString("\n\n")

	if authors := m.authors.View(); authors != "" {
		content.WriteString(authors)
	} else {
		renderAuthorSummary(&content, row)
	}

	content.WriteString(SubtleStyle.Render("\nPress ESC to return, up/down to scroll subjects"))
	return BoxStyle.Width(m.width - borderPadding).Render(content.String())
}

func writeDetailField(content *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	content.WriteString(LabelStyle.Render(label))
	content.WriteString(ValueStyle.Render(value))
	content.WriteString("\n")
}

// renderAuthorSummary lists the table's author columns when no lookup is available.
func renderAuthorSummary(content *strings.Builder, row engine.BookRow) {
	if len(row.AuthorNames) == 0 {
		return
	}
	content.WriteString(HeaderStyle.Render("AUTHORS"))
	content.WriteString("\n")
	for i, name := range row.AuthorNames {
		birth, top := "-", "-"
		if i < len(row.AuthorBirthDates) && row.AuthorBirthDates[i] != nil {
			birth = *row.AuthorBirthDates[i]
		}
		if i < len(row.AuthorTopWorks) && row.AuthorTopWorks[i] != nil {
			top = *row.AuthorTopWorks[i]
		}
		content.WriteString(ValueStyle.Render(fmt.Sprintf("  %s (born %s) top work: %s", name, birth, top)))
		content.WriteString("\n")
	}
}
