package pagination

import (
	"cmp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/shelfwatch/wantlist/internal/engine"
)

// Sortable columns, named as in the JSON output.
const (
	FieldTitle            = "title"
	FieldFirstPublishYear = "firstPublishYear"
	FieldSubjects         = "subjects"
	FieldAuthorNames      = "authorNames"
	FieldAuthorBirthDates = "authorBirthDates"
	FieldAuthorTopWorks   = "authorTopWorks"
)

// columnOrder is the on-screen column order.
//
//nolint:gochecknoglobals // Fixed column list.
var columnOrder = []string{
	FieldTitle,
	FieldFirstPublishYear,
	FieldSubjects,
	FieldAuthorNames,
	FieldAuthorBirthDates,
	FieldAuthorTopWorks,
}

// Fields returns the sortable columns in display order.
func Fields() []string {
	out := make([]string, len(columnOrder))
	copy(out, columnOrder)
	return out
}

// canonicalField matches a field name case-insensitively.
func canonicalField(field string) (string, bool) {
	for _, f := range columnOrder {
		if strings.EqualFold(f, field) {
			return f, true
		}
	}
	return "", false
}

// IsValidField reports whether field names a sortable column.
func IsValidField(field string) bool {
	_, ok := canonicalField(field)
	return ok
}

// Sorter sorts book rows.
type Sorter interface {
	Sort(rows []engine.BookRow, field, order string) []engine.BookRow
}

// BookSorter compares text with English collation, so "apple" sorts next to
// "Apple" and accented titles land with their base letters.
type BookSorter struct {
	tag language.Tag
}

// NewBookSorter returns a sorter using English collation.
func NewBookSorter() *BookSorter {
	return &BookSorter{tag: language.English}
}

// Sort returns a stably sorted copy of rows. The input is not modified.
// An unknown field returns an unsorted copy.
func (s *BookSorter) Sort(rows []engine.BookRow, field, order string) []engine.BookRow {
	sorted := make([]engine.BookRow, len(rows))
	copy(sorted, rows)

	field, ok := canonicalField(field)
	if !ok {
		return sorted
	}

	// Collators keep scratch buffers, one per call.
	collator := collate.New(s.tag)
	keys := make([]string, len(sorted))
	if field != FieldFirstPublishYear {
		for i := range sorted {
			keys[i] = textKey(sorted[i], field)
		}
	}

	idx := make([]int, len(sorted))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		// For descending order, swap operands to keep the sort stable.
		if order == SortOrderDesc {
			i, j = j, i
		}
		if field == FieldFirstPublishYear {
			return compareYear(sorted[i].FirstPublishYear, sorted[j].FirstPublishYear) < 0
		}
		return collator.CompareString(keys[i], keys[j]) < 0
	})

	out := make([]engine.BookRow, len(sorted))
	for k, i := range idx {
		out[k] = sorted[i]
	}
	return out
}

// textKey is the rendered cell a row is compared by.
func textKey(row engine.BookRow, field string) string {
	switch field {
	case FieldTitle:
		return row.Title
	case FieldSubjects:
		return engine.FormatList(row.Subjects)
	case FieldAuthorNames:
		return engine.FormatList(row.AuthorNames)
	case FieldAuthorBirthDates:
		return engine.FormatNullable(row.AuthorBirthDates)
	case FieldAuthorTopWorks:
		return engine.FormatNullable(row.AuthorTopWorks)
	default:
		return ""
	}
}

// compareYear orders missing years before any known year.
func compareYear(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmp.Compare(*a, *b)
	}
}

// NextSortState applies a header click. Clicking the active column while it
// sorts ascending flips it to descending; any other click sorts the clicked
// column ascending.
//
//nolint:nonamedreturns // Named returns document the pair.
func NextSortState(currentField, currentOrder, clicked string) (field, order string) {
	if currentField == clicked && currentOrder == SortOrderAsc {
		return clicked, SortOrderDesc
	}
	return clicked, SortOrderAsc
}
