// Package batch runs a callback over many items with bounded concurrency.
//
// Items are split into fixed-size batches that run one after another; inside a
// batch up to maxConcurrency callbacks run at once. This keeps the number of
// in-flight Open Library requests bounded for shelves with thousands of entries
// while still overlapping the slow per-book lookups. Progress is tracked per item
// so the TUI loading banner can show "loaded/total".
package batch
