// Package detail loads the full author records for the book detail view.
//
// The table only carries an author's birth year and top work. When a book is
// opened, the remaining search fields (death date, work count, top subjects)
// are fetched on demand so moving through the table never waits on them. A
// failed lookup is shown inline and can be retried with 'r'.
package detail
