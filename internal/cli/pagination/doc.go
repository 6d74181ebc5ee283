// Package pagination holds the sorting and paging rules shared by the books
// command and the interactive table.
//
//   - Params: page/page-size or offset/limit flags, validation and slicing
//   - Meta: pagination metadata for JSON output and the table footer
//   - BookSorter: column sorting with header-click state transitions
package pagination
