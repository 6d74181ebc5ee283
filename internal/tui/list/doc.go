// Package listview renders long scrollable lists inside a fixed-height pane.
//
// Only the rows around the selection are rendered, so a work with hundreds of
// subject tags scrolls as quickly as one with three.
package listview
