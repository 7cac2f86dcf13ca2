package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/njohnstone/prreview/internal/adapter/cli"
	"github.com/njohnstone/prreview/internal/adapter/git"
	githubadapter "github.com/njohnstone/prreview/internal/adapter/github"
	"github.com/njohnstone/prreview/internal/adapter/llm"
	"github.com/njohnstone/prreview/internal/adapter/llm/openai"
	"github.com/njohnstone/prreview/internal/adapter/llm/static"
	"github.com/njohnstone/prreview/internal/adapter/llmhttp"
	"github.com/njohnstone/prreview/internal/adapter/observability"
	"github.com/njohnstone/prreview/internal/adapter/output/markdown"
	"github.com/njohnstone/prreview/internal/config"
	"github.com/njohnstone/prreview/internal/determinism"
	"github.com/njohnstone/prreview/internal/pathfilter"
	"github.com/njohnstone/prreview/internal/redaction"
	"github.com/njohnstone/prreview/internal/usecase/review"
	"github.com/njohnstone/prreview/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "prr",
		EnvPrefix:   "PRR",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}

	logger := buildLogger(cfg.Observability.Logging)
	reviewLogger := observability.NewReviewLogger(logger)

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}

	githubToken := cfg.GitHub.Token
	if githubToken == "" {
		githubToken = os.Getenv("GITHUB_TOKEN")
	}
	githubClient := githubadapter.NewClient(githubToken, reviewLogger)

	var redactor review.Redactor
	if cfg.Redaction.Enabled {
		redactor = redaction.NewEngine()
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	orchestrator := review.NewOrchestrator(review.OrchestratorDeps{
		Fetcher:            githubClient,
		Provider:           provider,
		Poster:             githubClient,
		Git:                git.NewEngine(repoDir),
		Redactor:           redactor,
		PromptBuilder:      review.NewPromptBuilder(cfg.Review.MaxPromptTokens, llm.EstimateTokens),
		SeedGenerator:      determinism.GenerateSeed,
		LocalSeedGenerator: determinism.GenerateLocalSeed,
		Logger:             reviewLogger,
		ExcludePatterns:    pathfilter.ParsePatterns(cfg.Review.ExcludeGlobs, reviewLogger),
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Runner:   orchestrator,
		Renderer: markdown.NewRenderer(os.Stdout),
		Version:  version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// buildProvider constructs the configured model provider. Validation has
// already rejected unknown names and missing keys.
func buildProvider(cfg config.Config, logger llmhttp.Logger) (review.Provider, error) {
	switch cfg.Provider.Name {
	case "static":
		return static.NewProvider(cfg.Provider.Model), nil
	case "openai":
		timeout, err := cfg.HTTP.ParseTimeout()
		if err != nil {
			return nil, err
		}
		initialBackoff, err := cfg.HTTP.ParseInitialBackoff()
		if err != nil {
			return nil, err
		}
		maxBackoff, err := cfg.HTTP.ParseMaxBackoff()
		if err != nil {
			return nil, err
		}

		opts := []openai.Option{
			openai.WithTimeout(timeout),
			openai.WithRetryConfig(llmhttp.RetryConfig{
				MaxRetries:     cfg.HTTP.MaxRetries,
				InitialBackoff: initialBackoff,
				MaxBackoff:     maxBackoff,
				Multiplier:     cfg.HTTP.BackoffMultiplier,
			}),
			openai.WithLogger(logger),
		}
		if cfg.Provider.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Provider.BaseURL))
		}

		client := openai.NewHTTPClient(cfg.Provider.APIKey, cfg.Provider.Model, opts...)
		return openai.NewProvider(cfg.Provider.Model, client, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

func buildLogger(cfg config.LoggingConfig) llmhttp.Logger {
	logLevel := llmhttp.LogLevelInfo
	switch cfg.Level {
	case "debug":
		logLevel = llmhttp.LogLevelDebug
	case "error":
		logLevel = llmhttp.LogLevelError
	}

	logFormat := resolveLogFormat(cfg.Format, review.IsOutputTerminal())

	return llmhttp.NewDefaultLogger(logLevel, logFormat, cfg.RedactAPIKeys)
}

// resolveLogFormat maps the configured format to a logger format. "auto"
// picks human output on a terminal and JSON when piped, so CI runs log
// machine-readable lines without extra configuration.
func resolveLogFormat(format string, isTerminal bool) llmhttp.LogFormat {
	switch format {
	case "json":
		return llmhttp.LogFormatJSON
	case "human":
		return llmhttp.LogFormatHuman
	default:
		if isTerminal {
			return llmhttp.LogFormatHuman
		}
		return llmhttp.LogFormatJSON
	}
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "prr"))
	}
	return paths
}
