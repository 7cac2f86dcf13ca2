// Package pathfilter excludes changed files from review by glob pattern.
package pathfilter

import (
	"context"
	"path"
	"strings"

	"github.com/njohnstone/prreview/internal/domain"
)

// Logger is the subset of the pipeline logger pattern warnings go through.
type Logger interface {
	LogWarning(ctx context.Context, message string, fields map[string]any)
}

// Filter returns the files whose path matches none of the exclusion
// patterns, preserving order. It is pure: the input slice is not modified.
// Patterns are assumed valid; ParsePatterns screens out malformed ones.
func Filter(files []domain.FileDiff, patterns []string) []domain.FileDiff {
	if len(files) == 0 || len(patterns) == 0 {
		return files
	}

	kept := make([]domain.FileDiff, 0, len(files))
	for _, file := range files {
		if matchesAny(file.Path, patterns) {
			continue
		}
		kept = append(kept, file)
	}
	return kept
}

// ParsePatterns splits a comma-separated exclusion list into clean patterns.
// Malformed patterns are dropped with a warning so one typo cannot silently
// disable the rest of the list.
func ParsePatterns(raw string, logger Logger) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var patterns []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if err := validatePattern(p); err != nil {
			if logger != nil {
				logger.LogWarning(context.Background(), "skipping invalid exclude pattern", map[string]any{
					"pattern": p,
					"error":   err.Error(),
				})
			}
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// validatePattern checks the glob syntax of a pattern with its "**/"
// prefix or "/**" suffix stripped, the same core Match hands to path.Match.
func validatePattern(pattern string) error {
	core := strings.TrimPrefix(pattern, "**/")
	core = strings.TrimSuffix(core, "/**")
	_, err := path.Match(core, "")
	return err
}

func matchesAny(filePath string, patterns []string) bool {
	for _, pattern := range patterns {
		if Match(pattern, filePath) {
			return true
		}
	}
	return false
}

// Match reports whether the slash-separated path matches the glob pattern.
// On top of path.Match syntax, a leading "**/" also matches files at the
// repository root, so "**/*.md" covers both "readme.md" and "docs/guide.md",
// and a trailing "/**" matches at any depth, so "vendor/**" covers
// "vendor/a/b.go".
func Match(pattern, filePath string) bool {
	if suffix, ok := strings.CutSuffix(pattern, "/**"); ok {
		if matchOne(suffix, filePath) {
			return true
		}
		// Any file under a directory matching the prefix.
		dir := path.Dir(filePath)
		for dir != "." && dir != "/" {
			if matchOne(suffix, dir) {
				return true
			}
			dir = path.Dir(dir)
		}
		return false
	}
	if strings.HasPrefix(pattern, "**/") {
		suffix := strings.TrimPrefix(pattern, "**/")
		// Root-level match without any directory prefix.
		if ok := matchOne(suffix, filePath); ok {
			return true
		}
		// Match against every trailing segment combination.
		segments := strings.Split(filePath, "/")
		for i := 1; i < len(segments); i++ {
			if matchOne(suffix, strings.Join(segments[i:], "/")) {
				return true
			}
		}
		return false
	}
	return matchOne(pattern, filePath)
}

func matchOne(pattern, filePath string) bool {
	ok, err := path.Match(pattern, filePath)
	return err == nil && ok
}
