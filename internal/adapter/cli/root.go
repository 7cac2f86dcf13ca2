// Package cli wires the pipeline into cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njohnstone/prreview/internal/domain"
	"github.com/njohnstone/prreview/internal/event"
	"github.com/njohnstone/prreview/internal/usecase/review"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// PipelineRunner defines the dependency required to run the commands.
type PipelineRunner interface {
	Run(ctx context.Context, req review.RunRequest) (review.Result, error)
	RunLocal(ctx context.Context, action domain.Action, baseRef, targetRef string) (domain.Review, review.Result, error)
}

// Renderer prints a local-mode review.
type Renderer interface {
	Render(rev domain.Review, result review.Result, baseRef, targetRef string) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Runner   PipelineRunner
	Renderer Renderer
	Args     Arguments
	Version  string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "prr",
		Short: "LLM pull request reviewer",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(runCommand(deps.Runner))
	root.AddCommand(localCommand(deps.Runner, deps.Renderer))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func runCommand(runner PipelineRunner) *cobra.Command {
	var eventPath string
	var repository string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Review the pull request from a workflow event",
		Long: `Reads the workflow event payload, selects the action from the PR's
labels and runs the review pipeline. Events without a recognized action
or label are skipped without error, so the workflow stays green.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventPath == "" {
				eventPath = os.Getenv("GITHUB_EVENT_PATH")
			}
			if eventPath == "" {
				return fmt.Errorf("no event payload; pass --event or set GITHUB_EVENT_PATH")
			}
			if repository == "" {
				repository = os.Getenv("GITHUB_REPOSITORY")
			}
			owner, repo, err := splitRepository(repository)
			if err != nil {
				return err
			}

			payload, err := event.Load(eventPath)
			if err != nil {
				return fmt.Errorf("load event payload: %w", err)
			}

			if !event.Supported(payload.Action) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "event action %q is not handled, skipping\n", payload.Action)
				return nil
			}

			action, ok := event.SelectAction(payload.LabelNames())
			if !ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no review label on the pull request, skipping")
				return nil
			}

			prNumber := payload.PRNumber()
			if prNumber <= 0 {
				return fmt.Errorf("event payload has no pull request number")
			}

			result, err := runner.Run(cmd.Context(), review.RunRequest{
				Action:   action,
				Owner:    owner,
				Repo:     repo,
				PRNumber: prNumber,
			})
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventPath, "event", "", "Path to the workflow event payload (defaults to $GITHUB_EVENT_PATH)")
	cmd.Flags().StringVar(&repository, "repository", "", "Repository as owner/name (defaults to $GITHUB_REPOSITORY)")

	return cmd
}

func localCommand(runner PipelineRunner, renderer Renderer) *cobra.Command {
	var baseRef string
	var targetRef string
	var actionName string

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Review a local diff without posting anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := parseAction(actionName)
			if err != nil {
				return err
			}

			rev, result, err := runner.RunLocal(cmd.Context(), action, baseRef, targetRef)
			if err != nil {
				return err
			}
			if result.Degraded {
				return fmt.Errorf("model call failed, no review produced")
			}
			if renderer == nil {
				printResult(cmd.OutOrStdout(), result)
				return nil
			}
			return renderer.Render(rev, result, baseRef, targetRef)
		},
	}

	cmd.Flags().StringVar(&baseRef, "base", "main", "Base reference to diff against")
	cmd.Flags().StringVar(&targetRef, "target", "HEAD", "Target reference to review")
	cmd.Flags().StringVar(&actionName, "action", "review", "Action to run: review, naming, or summary")

	return cmd
}

func parseAction(name string) (domain.Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "review":
		return domain.ActionReview, nil
	case "naming":
		return domain.ActionNaming, nil
	case "summary":
		return domain.ActionSummary, nil
	default:
		return "", fmt.Errorf("unknown action %q (expected review, naming, or summary)", name)
	}
}

func splitRepository(full string) (owner, repo string, err error) {
	parts := strings.Split(full, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be owner/name, got %q", full)
	}
	return parts[0], parts[1], nil
}

func printResult(out io.Writer, result review.Result) {
	switch {
	case result.SummaryPosted:
		_, _ = fmt.Fprintln(out, "summary posted")
	case result.CommentsPosted > 0:
		_, _ = fmt.Fprintf(out, "review posted: %d comment(s), %d skipped\n",
			result.CommentsPosted, result.CommentsSkipped)
	case result.Degraded:
		_, _ = fmt.Fprintln(out, "run degraded: nothing was posted")
	default:
		_, _ = fmt.Fprintln(out, "nothing to post")
	}
}
