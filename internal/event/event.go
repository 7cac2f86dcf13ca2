// Package event reads the GitHub Actions workflow event payload and decides
// which review action, if any, the run should perform.
package event

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/njohnstone/prreview/internal/domain"
)

// Labels that select a pipeline action. When several are applied the first
// match in priority order wins: review, then naming, then summary.
const (
	LabelReview  = "ai-review"
	LabelNaming  = "ai-naming"
	LabelSummary = "ai-summary"
)

// Trigger actions that start a run. Anything else aborts before any
// network call.
var supportedActions = map[string]bool{
	"opened":      true,
	"labeled":     true,
	"synchronize": true,
}

// Payload is the subset of the webhook event JSON the pipeline needs.
type Payload struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Body   string `json:"body"`
		Head   struct {
			SHA string `json:"sha"`
		} `json:"head"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	} `json:"pull_request"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

// Load reads and parses the event payload file, normally the file named by
// GITHUB_EVENT_PATH.
func Load(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("read event payload: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("parse event payload: %w", err)
	}
	return p, nil
}

// PRNumber returns the pull request number from whichever field carries it.
func (p Payload) PRNumber() int {
	if p.PullRequest.Number != 0 {
		return p.PullRequest.Number
	}
	return p.Number
}

// LabelNames returns the names of all labels applied to the PR.
func (p Payload) LabelNames() []string {
	names := make([]string, 0, len(p.PullRequest.Labels))
	for _, l := range p.PullRequest.Labels {
		names = append(names, l.Name)
	}
	return names
}

// Supported reports whether the trigger action starts a run.
func Supported(action string) bool {
	return supportedActions[strings.ToLower(action)]
}

// SelectAction picks the pipeline action from the applied labels.
// Returns ok=false when no recognized label is present.
func SelectAction(labels []string) (domain.Action, bool) {
	applied := make(map[string]bool, len(labels))
	for _, l := range labels {
		applied[strings.ToLower(l)] = true
	}

	switch {
	case applied[LabelReview]:
		return domain.ActionReview, true
	case applied[LabelNaming]:
		return domain.ActionNaming, true
	case applied[LabelSummary]:
		return domain.ActionSummary, true
	}
	return "", false
}
