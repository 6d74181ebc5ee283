// Package engine assembles table rows from a user's Open Library reading log.
//
// Each reading log entry is enriched with the work's subjects and, for every
// listed author, a birth year and top work. Lookups for different entries run
// concurrently; a failed lookup degrades to an empty value instead of failing
// the whole load.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// listSeparator joins multi-valued cells.
const listSeparator = ", "

// maxErrorsToDisplay caps ErrorSummary.
const maxErrorsToDisplay = 5

// BookRow is one table row.
// AuthorBirthDates and AuthorTopWorks are parallel to AuthorNames.
type BookRow struct {
	Title            string    `json:"title"`
	FirstPublishYear *int      `json:"firstPublishYear"`
	Subjects         []string  `json:"subjects"`
	AuthorNames      []string  `json:"authorNames"`
	AuthorBirthDates []*string `json:"authorBirthDates"`
	AuthorTopWorks   []*string `json:"authorTopWorks"`
	WorkKey          string    `json:"workKey,omitempty"`
}

// FetchKind names the request that failed.
type FetchKind string

// Fetch kinds.
const (
	FetchReadingLog FetchKind = "reading_log"
	FetchSubjects   FetchKind = "subjects"
	FetchAuthor     FetchKind = "author"
)

// FetchError records a lookup that failed and was replaced by an empty value.
type FetchError struct {
	Kind   FetchKind `json:"kind"`
	Target string    `json:"target"`
	Err    error     `json:"-"`
}

func (e FetchError) Error() string {
	return string(e.Kind) + " " + e.Target + ": " + e.Err.Error()
}

func (e FetchError) Unwrap() error {
	return e.Err
}

// LoadResult is the outcome of Assembler.Load.
type LoadResult struct {
	Rows     []BookRow
	Errors   []FetchError
	Duration time.Duration
}

// HasErrors reports whether any lookup failed.
func (r *LoadResult) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// ErrorSummary returns a human-readable summary of failed lookups.
// Truncates the output after five errors to keep it readable.
func (r *LoadResult) ErrorSummary() string {
	if !r.HasErrors() {
		return ""
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "%d lookup(s) failed:\n", len(r.Errors))
	for i, e := range r.Errors {
		if i >= maxErrorsToDisplay {
			fmt.Fprintf(&summary, "  ... and %d more errors\n", len(r.Errors)-maxErrorsToDisplay)
			break
		}
		fmt.Fprintf(&summary, "  - %s (%s): %v\n", e.Kind, e.Target, e.Err)
	}
	return summary.String()
}

// FormatList joins values with ", ".
func FormatList(values []string) string {
	return strings.Join(values, listSeparator)
}

// FormatNullable joins the non-nil values with ", ".
func FormatNullable(values []*string) string {
	present := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil {
			present = append(present, *v)
		}
	}
	return strings.Join(present, listSeparator)
}

// FormatYear renders a nullable year, empty when unknown.
func FormatYear(year *int) string {
	if year == nil {
		return ""
	}
	return strconv.Itoa(*year)
}
