package review

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/njohnstone/prreview/internal/domain"
)

// Per-action system instructions. These are fixed: the user-controlled
// parts of the prompt (title, description, diff) travel in the user
// message only.
const (
	systemReview = `You are a senior software engineer reviewing a pull request.
Identify bugs, logic errors, security problems and risky patterns in the changed lines.
Do not comment on style or formatting. Never suggest adding code comments.
Only comment when there is something to improve; otherwise return an empty reviews array.
Respond with a single JSON object of the form
{"reviews": [{"path": "<file path>", "lineNumber": <line number in the new file>, "reviewComment": "<comment in GitHub Markdown>"}]}
and nothing else.`

	systemNaming = `You are a senior software engineer reviewing identifier naming in a pull request.
Flag added names (variables, functions, types, packages, files) that are unclear, misleading,
inconsistent with the surrounding code, or violate the language's conventions, and propose a better name.
Only comment on names introduced or changed by this diff; otherwise return an empty reviews array.
Respond with a single JSON object of the form
{"reviews": [{"path": "<file path>", "lineNumber": <line number in the new file>, "reviewComment": "<comment in GitHub Markdown>"}]}
and nothing else.`

	systemSummary = `You are a senior software engineer summarizing a pull request for reviewers.
Describe what the change does, the areas it touches, and anything a reviewer should look at first.
Be concrete and concise; use GitHub Markdown.
Respond with a single JSON object of the form {"summary": "<markdown summary>"} and nothing else.`
)

const userPromptTemplate = `Pull request title: {{.Title}}

Pull request description:
---
{{.Description}}
---

{{.TaskLine}}

{{range .Files}}## File: {{.Path}} ({{.Status}})
{{.Content}}
{{end}}`

// BuiltPrompt is the rendered prompt pair for one model call.
type BuiltPrompt struct {
	System       string
	User         string
	SkippedPaths []string // files dropped to stay inside the token budget
}

// PromptBuilder renders the per-action prompt from PR metadata and the
// filtered diff. Output is deterministic for identical input.
type PromptBuilder struct {
	tmpl     *template.Template
	budget   int
	estimate TokenEstimator
}

// NewPromptBuilder constructs a builder with the given prompt token budget.
// A nil estimator falls back to a character-based approximation.
func NewPromptBuilder(tokenBudget int, estimate TokenEstimator) *PromptBuilder {
	if tokenBudget <= 0 {
		tokenBudget = defaultPromptTokenBudget
	}
	if estimate == nil {
		estimate = func(text string) int { return len(text) / 4 }
	}
	return &PromptBuilder{
		tmpl:     template.Must(template.New("prompt").Parse(userPromptTemplate)),
		budget:   tokenBudget,
		estimate: estimate,
	}
}

// PromptInput carries everything the builder needs.
type PromptInput struct {
	Action domain.Action
	PR     domain.PRDetails
	Files  []domain.FileDiff
}

type promptFile struct {
	Path    string
	Status  string
	Content string
}

type promptData struct {
	Title       string
	Description string
	TaskLine    string
	Files       []promptFile
}

// Build renders the prompt, appending files in order until the token
// budget would be exceeded. Dropped files are reported, not silently lost.
func (b *PromptBuilder) Build(in PromptInput) (BuiltPrompt, error) {
	data := promptData{
		Title:       in.PR.Title,
		Description: in.PR.Description,
		TaskLine:    taskLine(in.Action),
	}

	var skipped []string
	used := b.estimate(in.PR.Title) + b.estimate(in.PR.Description)
	for _, file := range in.Files {
		content := FormatFileDiff(file)
		cost := b.estimate(content)
		if used+cost > b.budget {
			skipped = append(skipped, file.Path)
			continue
		}
		used += cost
		data.Files = append(data.Files, promptFile{
			Path:    file.Path,
			Status:  file.Status,
			Content: content,
		})
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return BuiltPrompt{}, fmt.Errorf("render prompt: %w", err)
	}

	return BuiltPrompt{
		System:       SystemInstruction(in.Action),
		User:         buf.String(),
		SkippedPaths: skipped,
	}, nil
}

// SystemInstruction returns the fixed system instruction for an action.
func SystemInstruction(action domain.Action) string {
	switch action {
	case domain.ActionNaming:
		return systemNaming
	case domain.ActionSummary:
		return systemSummary
	default:
		return systemReview
	}
}

func taskLine(action domain.Action) string {
	switch action {
	case domain.ActionNaming:
		return "Review the naming in the following diff:"
	case domain.ActionSummary:
		return "Summarize the following diff:"
	default:
		return "Review the following diff:"
	}
}

// FormatFileDiff renders a file's hunks back into unified-diff text for
// the prompt: hunk header, then each line with its +/-/space prefix.
func FormatFileDiff(file domain.FileDiff) string {
	var sb strings.Builder
	for _, hunk := range file.Hunks {
		sb.WriteString(hunk.Header)
		sb.WriteString("\n")
		for _, line := range hunk.Lines {
			switch line.Type {
			case domain.LineAddition:
				sb.WriteString("+")
			case domain.LineDeletion:
				sb.WriteString("-")
			default:
				sb.WriteString(" ")
			}
			sb.WriteString(line.Content)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
