package cli_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnstone/prreview/internal/adapter/cli"
	"github.com/njohnstone/prreview/internal/domain"
	"github.com/njohnstone/prreview/internal/usecase/review"
)

type fakeRunner struct {
	runReq    *review.RunRequest
	runResult review.Result
	runErr    error

	localAction domain.Action
	localBase   string
	localTarget string
	localReview domain.Review
	localResult review.Result
	localErr    error
}

func (f *fakeRunner) Run(_ context.Context, req review.RunRequest) (review.Result, error) {
	f.runReq = &req
	return f.runResult, f.runErr
}

func (f *fakeRunner) RunLocal(_ context.Context, action domain.Action, baseRef, targetRef string) (domain.Review, review.Result, error) {
	f.localAction = action
	f.localBase = baseRef
	f.localTarget = targetRef
	return f.localReview, f.localResult, f.localErr
}

type fakeRenderer struct {
	rendered bool
	review   domain.Review
}

func (f *fakeRenderer) Render(rev domain.Review, _ review.Result, _, _ string) error {
	f.rendered = true
	f.review = rev
	return nil
}

func writeEvent(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	return path
}

func execute(t *testing.T, deps cli.Dependencies, args ...string) (string, error) {
	t.Helper()
	var out strings.Builder
	deps.Args = cli.Arguments{OutWriter: &out, ErrWriter: &out}
	root := cli.NewRootCommand(deps)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

const labeledEvent = `{
	"action": "labeled",
	"pull_request": {
		"number": 12,
		"title": "t",
		"labels": [{"name": "ai-review"}]
	},
	"repository": {"name": "widgets", "owner": {"login": "acme"}}
}`

func TestRun_ExecutesPipeline(t *testing.T) {
	runner := &fakeRunner{runResult: review.Result{CommentsPosted: 2}}
	eventPath := writeEvent(t, labeledEvent)

	out, err := execute(t, cli.Dependencies{Runner: runner},
		"run", "--event", eventPath, "--repository", "acme/widgets")
	require.NoError(t, err)

	require.NotNil(t, runner.runReq)
	assert.Equal(t, domain.ActionReview, runner.runReq.Action)
	assert.Equal(t, "acme", runner.runReq.Owner)
	assert.Equal(t, "widgets", runner.runReq.Repo)
	assert.Equal(t, 12, runner.runReq.PRNumber)
	assert.Contains(t, out, "review posted: 2 comment(s)")
}

func TestRun_UnsupportedEventActionSkips(t *testing.T) {
	runner := &fakeRunner{}
	eventPath := writeEvent(t, `{"action": "closed", "pull_request": {"number": 12}}`)

	out, err := execute(t, cli.Dependencies{Runner: runner},
		"run", "--event", eventPath, "--repository", "acme/widgets")
	require.NoError(t, err)

	assert.Nil(t, runner.runReq)
	assert.Contains(t, out, "not handled")
}

func TestRun_NoReviewLabelSkips(t *testing.T) {
	runner := &fakeRunner{}
	eventPath := writeEvent(t, `{
		"action": "opened",
		"pull_request": {"number": 12, "labels": [{"name": "bug"}]}
	}`)

	out, err := execute(t, cli.Dependencies{Runner: runner},
		"run", "--event", eventPath, "--repository", "acme/widgets")
	require.NoError(t, err)

	assert.Nil(t, runner.runReq)
	assert.Contains(t, out, "no review label")
}

func TestRun_BadRepository(t *testing.T) {
	eventPath := writeEvent(t, labeledEvent)

	_, err := execute(t, cli.Dependencies{Runner: &fakeRunner{}},
		"run", "--event", eventPath, "--repository", "not-a-repo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner/name")
}

func TestRun_MissingEventPath(t *testing.T) {
	t.Setenv("GITHUB_EVENT_PATH", "")

	_, err := execute(t, cli.Dependencies{Runner: &fakeRunner{}},
		"run", "--repository", "acme/widgets")
	require.Error(t, err)
}

func TestRun_PipelineErrorPropagates(t *testing.T) {
	runner := &fakeRunner{runErr: errors.New("fetch PR details: 401")}
	eventPath := writeEvent(t, labeledEvent)

	_, err := execute(t, cli.Dependencies{Runner: runner},
		"run", "--event", eventPath, "--repository", "acme/widgets")
	require.Error(t, err)
}

func TestLocal_RendersReview(t *testing.T) {
	runner := &fakeRunner{
		localReview: domain.Review{Summary: "s"},
		localResult: review.Result{Action: domain.ActionNaming, FilesReviewed: 1},
	}
	renderer := &fakeRenderer{}

	_, err := execute(t, cli.Dependencies{Runner: runner, Renderer: renderer},
		"local", "--base", "develop", "--target", "feature", "--action", "naming")
	require.NoError(t, err)

	assert.Equal(t, domain.ActionNaming, runner.localAction)
	assert.Equal(t, "develop", runner.localBase)
	assert.Equal(t, "feature", runner.localTarget)
	assert.True(t, renderer.rendered)
}

func TestLocal_UnknownAction(t *testing.T) {
	_, err := execute(t, cli.Dependencies{Runner: &fakeRunner{}},
		"local", "--action", "lint")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestLocal_DegradedRunFails(t *testing.T) {
	runner := &fakeRunner{localResult: review.Result{Degraded: true}}

	_, err := execute(t, cli.Dependencies{Runner: runner, Renderer: &fakeRenderer{}},
		"local")
	require.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, cli.Dependencies{Runner: &fakeRunner{}, Version: "v1.2.3"},
		"--version")
	require.ErrorIs(t, err, cli.ErrVersionRequested)
	assert.Contains(t, out, "v1.2.3")
}
