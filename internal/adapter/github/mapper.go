package github

import (
	gh "github.com/google/go-github/v82/github"

	"github.com/njohnstone/prreview/internal/diff"
	"github.com/njohnstone/prreview/internal/domain"
)

// MapSuggestions converts model suggestions into draft review comments.
// The review API addresses comments by diff position, not file line, so
// each suggestion's line is resolved against the parsed diff. Suggestions
// without a path, or whose line is not part of the diff, are counted as
// skipped.
func MapSuggestions(suggestions []domain.Suggestion, files []domain.FileDiff) ([]*gh.DraftReviewComment, int) {
	byPath := make(map[string]domain.FileDiff, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	var comments []*gh.DraftReviewComment
	skipped := 0
	for _, s := range suggestions {
		if s.Path == "" || s.Body == "" {
			skipped++
			continue
		}
		file, ok := byPath[s.Path]
		if !ok {
			skipped++
			continue
		}
		position := diff.FindPosition(file, s.Line)
		if position == nil {
			skipped++
			continue
		}
		comments = append(comments, &gh.DraftReviewComment{
			Path:     gh.Ptr(s.Path),
			Position: gh.Ptr(*position),
			Body:     gh.Ptr(s.Body),
		})
	}
	return comments, skipped
}
