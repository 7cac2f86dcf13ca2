// Package markdown renders local-mode results as a Markdown report.
package markdown

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/njohnstone/prreview/internal/domain"
	"github.com/njohnstone/prreview/internal/usecase/review"
)

// Renderer writes a review report to the given writer.
type Renderer struct {
	out io.Writer
}

// NewRenderer constructs a Renderer.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Render writes the report. Local mode prints instead of posting, so the
// output mirrors what the hosted pipeline would have published.
func (r *Renderer) Render(rev domain.Review, result review.Result, baseRef, targetRef string) error {
	_, err := io.WriteString(r.out, buildContent(rev, result, baseRef, targetRef))
	return err
}

func buildContent(rev domain.Review, result review.Result, baseRef, targetRef string) string {
	var builder strings.Builder
	caser := cases.Title(language.English)

	builder.WriteString(fmt.Sprintf("# %s Report\n\n", caser.String(string(result.Action))))
	if rev.ProviderName != "" {
		builder.WriteString(fmt.Sprintf("- Provider: %s (%s)\n", rev.ProviderName, rev.ModelName))
	}
	builder.WriteString(fmt.Sprintf("- Base: %s\n", baseRef))
	builder.WriteString(fmt.Sprintf("- Target: %s\n", targetRef))
	builder.WriteString(fmt.Sprintf("- Files reviewed: %d (excluded: %d)\n\n",
		result.FilesReviewed, result.FilesExcluded))

	if result.Action == domain.ActionSummary {
		builder.WriteString("## Summary\n\n")
		if rev.Summary == "" {
			builder.WriteString("No summary produced.\n")
		} else {
			builder.WriteString(rev.Summary)
			builder.WriteString("\n")
		}
		return builder.String()
	}

	if len(rev.Suggestions) == 0 {
		builder.WriteString("No suggestions reported.\n")
		return builder.String()
	}

	builder.WriteString("## Suggestions\n\n")
	for _, s := range rev.Suggestions {
		builder.WriteString(fmt.Sprintf("### %s:%d\n\n", s.Path, s.Line))
		builder.WriteString(s.Body)
		builder.WriteString("\n\n")
	}
	return builder.String()
}
