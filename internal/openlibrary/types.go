package openlibrary

import (
	"fmt"
	"strings"
)

// Shelf is one of the reading-log shelves Open Library exposes per user.
type Shelf string

// Known shelves.
const (
	ShelfWantToRead       Shelf = "want-to-read"
	ShelfCurrentlyReading Shelf = "currently-reading"
	ShelfAlreadyRead      Shelf = "already-read"

	DefaultShelf = ShelfWantToRead
)

// birthYearSuffixLen is how many trailing characters of birth_date hold the year.
const birthYearSuffixLen = 4

// ParseShelf validates a shelf name.
func ParseShelf(s string) (Shelf, error) {
	switch shelf := Shelf(strings.ToLower(strings.TrimSpace(s))); shelf {
	case ShelfWantToRead, ShelfCurrentlyReading, ShelfAlreadyRead:
		return shelf, nil
	case "":
		return DefaultShelf, nil
	default:
		return "", fmt.Errorf("%w: %q (want %s, %s or %s)",
			ErrUnknownShelf, s, ShelfWantToRead, ShelfCurrentlyReading, ShelfAlreadyRead)
	}
}

// ReadingLogPage is one page of /people/{user}/books/{shelf}.json.
type ReadingLogPage struct {
	Page     int               `json:"page"`
	NumFound int               `json:"numFound"`
	Entries  []ReadingLogEntry `json:"reading_log_entries"`
}

// ReadingLogEntry is one book on a user's shelf.
type ReadingLogEntry struct {
	Work          LoggedWork `json:"work"`
	LoggedEdition string     `json:"logged_edition"`
	LoggedDate    string     `json:"logged_date"`
}

// LoggedWork is the work summary embedded in a reading log entry.
type LoggedWork struct {
	Title            string   `json:"title"`
	Key              string   `json:"key"`
	AuthorKeys       []string `json:"author_keys"`
	AuthorNames      []string `json:"author_names"`
	FirstPublishYear *int     `json:"first_publish_year"`
	EditionKey       []string `json:"edition_key"`
	CoverID          *int     `json:"cover_id"`
	CoverEditionKey  string   `json:"cover_edition_key"`
}

// Work is the subset of /works/{id}.json that wantlist reads.
type Work struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Subjects []string `json:"subjects"`
}

// AuthorSearchResult is the response of /search/authors.json.
type AuthorSearchResult struct {
	NumFound int         `json:"numFound"`
	Docs     []AuthorDoc `json:"docs"`
}

// AuthorDoc is one author search hit.
type AuthorDoc struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	BirthDate   string   `json:"birth_date"`
	DeathDate   string   `json:"death_date"`
	TopWork     string   `json:"top_work"`
	WorkCount   int      `json:"work_count"`
	TopSubjects []string `json:"top_subjects"`
}

// AuthorDetails is the per-author enrichment shown in the table.
// A nil field means the value is unknown and renders as an empty cell.
type AuthorDetails struct {
	BirthYear *string `json:"birthYear"`
	TopWork   *string `json:"topWork"`
}

// AuthorDetailsFromDoc derives table values from the first search hit.
// The birth year is the last four characters of birth_date ("12 May 1920" -> "1920").
func AuthorDetailsFromDoc(doc *AuthorDoc) AuthorDetails {
	if doc == nil {
		return AuthorDetails{}
	}

	var details AuthorDetails
	if birth := doc.BirthDate; birth != "" {
		r := []rune(birth)
		year := string(r[max(len(r)-birthYearSuffixLen, 0):])
		details.BirthYear = &year
	}
	if doc.TopWork != "" {
		topWork := doc.TopWork
		details.TopWork = &topWork
	}
	return details
}
