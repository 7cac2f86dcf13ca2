package review

import (
	"context"
	"fmt"

	"github.com/njohnstone/prreview/internal/diff"
	"github.com/njohnstone/prreview/internal/domain"
	"github.com/njohnstone/prreview/internal/pathfilter"
)

// Orchestrator runs the single-pass pipeline: fetch, parse, filter,
// prompt, one model call, post. Model and posting failures degrade the
// run to "nothing posted" instead of failing it.
type Orchestrator struct {
	deps OrchestratorDeps
}

// OrchestratorDeps captures the collaborators for a pipeline run.
type OrchestratorDeps struct {
	Fetcher            Fetcher
	Provider           Provider
	Poster             Poster
	Git                GitEngine // optional, local mode only
	Redactor           Redactor  // optional
	PromptBuilder      *PromptBuilder
	SeedGenerator      SeedFunc      // optional
	LocalSeedGenerator LocalSeedFunc // optional
	Logger             Logger        // optional
	ExcludePatterns    []string
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.PromptBuilder == nil {
		deps.PromptBuilder = NewPromptBuilder(0, nil)
	}
	return &Orchestrator{deps: deps}
}

// Run executes one pipeline invocation against a pull request.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (Result, error) {
	result := Result{Action: req.Action}

	pr, err := o.deps.Fetcher.PRDetails(ctx, req.Owner, req.Repo, req.PRNumber)
	if err != nil {
		return result, fmt.Errorf("fetch PR details: %w", err)
	}

	raw, err := o.deps.Fetcher.Diff(ctx, pr)
	if err != nil {
		return result, fmt.Errorf("fetch diff: %w", err)
	}

	files := diff.ParseFiles(raw)
	if len(files) == 0 {
		o.logInfo(ctx, "nothing to review", map[string]any{
			"pr": pr.PullNumber,
		})
		return result, nil
	}

	kept := pathfilter.Filter(files, o.deps.ExcludePatterns)
	result.FilesExcluded = len(files) - len(kept)
	result.FilesReviewed = len(kept)
	if len(kept) == 0 {
		o.logInfo(ctx, "all changed files excluded", map[string]any{
			"pr":       pr.PullNumber,
			"excluded": result.FilesExcluded,
		})
		return result, nil
	}

	var seed *uint64
	if o.deps.SeedGenerator != nil {
		s := o.deps.SeedGenerator(pr.Owner, pr.Repo, pr.PullNumber, pr.HeadSHA)
		seed = &s
	}

	modelReview, ok := o.callModel(ctx, req.Action, pr, kept, seed, &result)
	if !ok {
		result.Degraded = true
		return result, nil
	}

	switch req.Action {
	case domain.ActionSummary:
		o.postSummary(ctx, pr, modelReview, &result)
	default:
		o.postReview(ctx, pr, modelReview, domain.Diff{HeadSHA: pr.HeadSHA, Files: kept}, &result)
	}
	return result, nil
}

// RunLocal executes the same filter/prompt/model pipeline over a locally
// computed diff and returns the model output without posting anything.
func (o *Orchestrator) RunLocal(ctx context.Context, action domain.Action, baseRef, targetRef string) (domain.Review, Result, error) {
	result := Result{Action: action}
	if o.deps.Git == nil {
		return domain.Review{}, result, fmt.Errorf("local mode requires a git engine")
	}

	d, err := o.deps.Git.Diff(ctx, baseRef, targetRef)
	if err != nil {
		return domain.Review{}, result, fmt.Errorf("compute local diff: %w", err)
	}

	kept := pathfilter.Filter(d.Files, o.deps.ExcludePatterns)
	result.FilesExcluded = len(d.Files) - len(kept)
	result.FilesReviewed = len(kept)
	if len(kept) == 0 {
		o.logInfo(ctx, "nothing to review", map[string]any{"base": baseRef, "target": targetRef})
		return domain.Review{}, result, nil
	}

	target := targetRef
	if target == "" || target == "HEAD" {
		if branch, err := o.deps.Git.CurrentBranch(); err == nil && branch != "" {
			target = branch
		}
	}

	var seed *uint64
	if o.deps.LocalSeedGenerator != nil {
		s := o.deps.LocalSeedGenerator(baseRef, target)
		seed = &s
	}

	pr := domain.PRDetails{
		Title:       fmt.Sprintf("%s..%s", baseRef, target),
		Description: "(local review)",
		HeadSHA:     d.HeadSHA,
	}
	modelReview, ok := o.callModel(ctx, action, pr, kept, seed, &result)
	if !ok {
		result.Degraded = true
		return domain.Review{}, result, nil
	}
	return modelReview, result, nil
}

// callModel builds the prompt and performs the run's single model call.
// Failure is reported through ok=false after logging; the caller degrades.
func (o *Orchestrator) callModel(ctx context.Context, action domain.Action, pr domain.PRDetails, files []domain.FileDiff, seed *uint64, result *Result) (domain.Review, bool) {
	prompt, err := o.deps.PromptBuilder.Build(PromptInput{Action: action, PR: pr, Files: files})
	if err != nil {
		o.logWarning(ctx, "prompt build failed", map[string]any{"error": err.Error()})
		return domain.Review{}, false
	}
	result.FilesOverBudget = prompt.SkippedPaths
	if len(prompt.SkippedPaths) > 0 {
		o.logWarning(ctx, "files dropped to fit token budget", map[string]any{
			"count": len(prompt.SkippedPaths),
		})
	}

	user := prompt.User
	if o.deps.Redactor != nil {
		redacted, err := o.deps.Redactor.Redact(user)
		if err != nil {
			o.logWarning(ctx, "redaction failed, sending without redaction", map[string]any{
				"error": err.Error(),
			})
		} else {
			user = redacted
		}
	}

	provReq := ProviderRequest{
		Action:    action,
		System:    prompt.System,
		Prompt:    user,
		Seed:      seed,
		MaxTokens: maxResponseTokens,
	}

	modelReview, err := o.deps.Provider.Review(ctx, provReq)
	if err != nil {
		o.logWarning(ctx, "model call failed, no comments will be posted", map[string]any{
			"error": err.Error(),
		})
		return domain.Review{}, false
	}
	return modelReview, true
}

func (o *Orchestrator) postSummary(ctx context.Context, pr domain.PRDetails, modelReview domain.Review, result *Result) {
	if modelReview.Summary == "" {
		o.logInfo(ctx, "model returned an empty summary", nil)
		return
	}
	if err := o.deps.Poster.PostSummary(ctx, pr, modelReview.Summary); err != nil {
		o.logWarning(ctx, "posting summary failed", map[string]any{"error": err.Error()})
		result.Degraded = true
		return
	}
	result.SummaryPosted = true
}

func (o *Orchestrator) postReview(ctx context.Context, pr domain.PRDetails, modelReview domain.Review, d domain.Diff, result *Result) {
	if len(modelReview.Suggestions) == 0 {
		o.logInfo(ctx, "model returned no suggestions", map[string]any{"pr": pr.PullNumber})
		return
	}
	post, err := o.deps.Poster.PostReview(ctx, PostRequest{PR: pr, Review: modelReview, Diff: d})
	if err != nil {
		o.logWarning(ctx, "posting review failed", map[string]any{"error": err.Error()})
		result.Degraded = true
		return
	}
	result.CommentsPosted = post.CommentsPosted
	result.CommentsSkipped = post.CommentsSkipped
	o.logInfo(ctx, "review posted", map[string]any{
		"pr":       pr.PullNumber,
		"posted":   post.CommentsPosted,
		"skipped":  post.CommentsSkipped,
		"html_url": post.HTMLURL,
	})
}

func (o *Orchestrator) logInfo(ctx context.Context, message string, fields map[string]any) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogInfo(ctx, message, fields)
	}
}

func (o *Orchestrator) logWarning(ctx context.Context, message string, fields map[string]any) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogWarning(ctx, message, fields)
	}
}
