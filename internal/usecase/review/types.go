package review

import (
	"context"

	"github.com/njohnstone/prreview/internal/domain"
)

// maxResponseTokens caps the model's output. Review replies are structured
// JSON and never approach the context window, but reasoning models burn
// output tokens before emitting anything visible, so leave headroom.
const maxResponseTokens = 16384

// defaultPromptTokenBudget bounds the prompt size. Files beyond the budget
// are dropped from the prompt and reported in the run result.
const defaultPromptTokenBudget = 80000

// Fetcher is the outbound port for reading pull request data.
type Fetcher interface {
	// PRDetails fetches title, description and head SHA for the PR.
	PRDetails(ctx context.Context, owner, repo string, number int) (domain.PRDetails, error)

	// Diff fetches the PR's unified diff text.
	Diff(ctx context.Context, pr domain.PRDetails) (string, error)
}

// Provider is the outbound port for the single model call of a run.
type Provider interface {
	Review(ctx context.Context, req ProviderRequest) (domain.Review, error)
}

// Poster is the outbound port for publishing results back to the PR.
type Poster interface {
	// PostReview publishes inline comments as one PR review.
	PostReview(ctx context.Context, req PostRequest) (*PostResult, error)

	// PostSummary publishes a single summary comment on the PR.
	PostSummary(ctx context.Context, pr domain.PRDetails, body string) error
}

// GitEngine is the outbound port for computing a diff without the hosting
// service, used by local mode.
type GitEngine interface {
	Diff(ctx context.Context, baseRef, targetRef string) (domain.Diff, error)

	// CurrentBranch names the checked-out branch; detached HEAD is an error.
	CurrentBranch() (string, error)
}

// Redactor scrubs secrets from prompt text before it leaves the process.
type Redactor interface {
	Redact(input string) (string, error)
}

// Logger records pipeline milestones and recoverable problems.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]any)
	LogWarning(ctx context.Context, message string, fields map[string]any)
}

// SeedFunc derives a deterministic sampling seed for a review scope.
type SeedFunc func(owner, repo string, prNumber int, headSHA string) uint64

// LocalSeedFunc derives a deterministic sampling seed from a ref pair.
type LocalSeedFunc func(baseRef, targetRef string) uint64

// TokenEstimator approximates the token count of a text block.
type TokenEstimator func(text string) int

// ProviderRequest is the payload for one model call.
type ProviderRequest struct {
	Action    domain.Action
	System    string // fixed per-action system instruction
	Prompt    string // user content: PR metadata plus diff
	Seed      *uint64
	MaxTokens int
}

// PostRequest carries everything needed to publish a review.
type PostRequest struct {
	PR     domain.PRDetails
	Review domain.Review
	Diff   domain.Diff
}

// PostResult reports what was published.
type PostResult struct {
	ReviewID        int64
	CommentsPosted  int
	CommentsSkipped int
	HTMLURL         string
}

// RunRequest identifies one pipeline invocation.
type RunRequest struct {
	Action   domain.Action
	Owner    string
	Repo     string
	PRNumber int
}

// Result summarizes a pipeline invocation. Degraded runs (model or posting
// failure) return a Result with Degraded set instead of an error.
type Result struct {
	Action          domain.Action
	FilesReviewed   int
	FilesExcluded   int
	FilesOverBudget []string
	CommentsPosted  int
	CommentsSkipped int
	SummaryPosted   bool
	Degraded        bool
}
