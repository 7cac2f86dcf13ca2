// Package github implements the Fetcher and Poster ports using go-github.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/njohnstone/prreview/internal/domain"
	"github.com/njohnstone/prreview/internal/usecase/review"
)

// Compile-time interface satisfaction checks.
var (
	_ review.Fetcher = (*Client)(nil)
	_ review.Poster  = (*Client)(nil)
)

// Client talks to the GitHub REST API for one repository at a time.
type Client struct {
	gh     *gh.Client
	logger review.Logger
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with token auth)
func NewClient(token string, logger review.Logger) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client, logger: logger}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and
// base URL. This constructor is intended for testing, allowing injection
// of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger review.Logger) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client, logger: logger}, nil
}

// PRDetails fetches title, description and head SHA for the PR.
func (c *Client) PRDetails(ctx context.Context, owner, repo string, number int) (domain.PRDetails, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return domain.PRDetails{}, fmt.Errorf("getting %s/%s#%d: %w", owner, repo, number, err)
	}

	details := domain.PRDetails{
		Owner:       owner,
		Repo:        repo,
		PullNumber:  number,
		Title:       pr.GetTitle(),
		Description: pr.GetBody(),
		HeadSHA:     pr.GetHead().GetSHA(),
	}
	return details, nil
}

// Diff fetches the PR's unified diff text via the diff media type.
func (c *Client) Diff(ctx context.Context, pr domain.PRDetails) (string, error) {
	raw, _, err := c.gh.PullRequests.GetRaw(ctx, pr.Owner, pr.Repo, pr.PullNumber,
		gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("getting diff for %s/%s#%d: %w", pr.Owner, pr.Repo, pr.PullNumber, err)
	}
	return raw, nil
}

// PostReview publishes the suggestions as one COMMENT review. Suggestions
// that do not map onto the diff are skipped, not fatal.
func (c *Client) PostReview(ctx context.Context, req review.PostRequest) (*review.PostResult, error) {
	comments, skipped := MapSuggestions(req.Review.Suggestions, req.Diff.Files)
	result := &review.PostResult{CommentsSkipped: skipped}
	if len(comments) == 0 {
		c.logInfo(ctx, "no suggestions mapped onto the diff", map[string]any{
			"pr":      req.PR.PullNumber,
			"skipped": skipped,
		})
		return result, nil
	}

	reviewReq := &gh.PullRequestReviewRequest{
		CommitID: gh.Ptr(req.PR.HeadSHA),
		Event:    gh.Ptr("COMMENT"),
		Comments: comments,
	}

	posted, _, err := c.gh.PullRequests.CreateReview(ctx, req.PR.Owner, req.PR.Repo, req.PR.PullNumber, reviewReq)
	if err != nil {
		return nil, fmt.Errorf("creating review on %s/%s#%d: %w", req.PR.Owner, req.PR.Repo, req.PR.PullNumber, err)
	}

	result.ReviewID = posted.GetID()
	result.CommentsPosted = len(comments)
	result.HTMLURL = posted.GetHTMLURL()
	return result, nil
}

// PostSummary publishes a single issue comment on the PR.
func (c *Client) PostSummary(ctx context.Context, pr domain.PRDetails, body string) error {
	comment := &gh.IssueComment{Body: gh.Ptr(body)}
	_, _, err := c.gh.Issues.CreateComment(ctx, pr.Owner, pr.Repo, pr.PullNumber, comment)
	if err != nil {
		return fmt.Errorf("creating summary comment on %s/%s#%d: %w", pr.Owner, pr.Repo, pr.PullNumber, err)
	}
	return nil
}

func (c *Client) logInfo(ctx context.Context, message string, fields map[string]any) {
	if c.logger != nil {
		c.logger.LogInfo(ctx, message, fields)
	}
}
