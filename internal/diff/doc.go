// Package diff parses multi-file unified diffs into structured per-file
// records and maps new-side line numbers to GitHub diff positions.
package diff
