// Package diff turns raw unified-diff text into line-level change
// records and recovers post-change code context for review findings.
//
// Parse walks the diff once and produces one ChangeEntry per added or
// removed line, plus a colorized per-file summary of the grouped
// changes. ExtractSnippet re-scans the same text to rebuild the
// new-file lines around a reported line or range; it needs exact
// post-image numbering and untrimmed content, which the entry model
// deliberately discards for display.
//
// Both scans tolerate malformed input: stray change lines outside any
// hunk are dropped and unknown prefixes count as context. Neither scan
// returns an error.
package diff
