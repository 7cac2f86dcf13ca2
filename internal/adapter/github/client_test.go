package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/njohnstone/prreview/internal/adapter/github"
	"github.com/njohnstone/prreview/internal/diff"
	"github.com/njohnstone/prreview/internal/domain"
	"github.com/njohnstone/prreview/internal/usecase/review"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *ghAdapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/", nil)
	require.NoError(t, err)

	return client
}

const clientDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,2 +1,3 @@
 package main
+func added() {}
 func main() {}
`

func TestPRDetails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/7", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)

		_, _ = w.Write([]byte(`{
			"number": 7,
			"title": "Add widget polling",
			"body": "Polls the widget service.",
			"head": {"sha": "abc123"}
		}`))
	}))

	pr, err := client.PRDetails(context.Background(), "acme", "widgets", 7)
	require.NoError(t, err)

	assert.Equal(t, domain.PRDetails{
		Owner:       "acme",
		Repo:        "widgets",
		PullNumber:  7,
		Title:       "Add widget polling",
		Description: "Polls the widget service.",
		HeadSHA:     "abc123",
	}, pr)
}

func TestPRDetails_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	}))

	_, err := client.PRDetails(context.Background(), "acme", "widgets", 404)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme/widgets#404")
}

func TestDiff(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/7", r.URL.Path)
		assert.Contains(t, r.Header.Get("Accept"), "diff")

		_, _ = w.Write([]byte(clientDiff))
	}))

	raw, err := client.Diff(context.Background(), domain.PRDetails{
		Owner: "acme", Repo: "widgets", PullNumber: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, clientDiff, raw)
}

func TestPostReview(t *testing.T) {
	var received struct {
		CommitID string `json:"commit_id"`
		Event    string `json:"event"`
		Comments []struct {
			Path     string `json:"path"`
			Position int    `json:"position"`
			Body     string `json:"body"`
		} `json:"comments"`
	}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/7/reviews", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_, _ = w.Write([]byte(`{"id": 99, "html_url": "https://github.test/acme/widgets/pull/7#pullrequestreview-99"}`))
	}))

	files := diff.ParseFiles(clientDiff)
	result, err := client.PostReview(context.Background(), review.PostRequest{
		PR: domain.PRDetails{Owner: "acme", Repo: "widgets", PullNumber: 7, HeadSHA: "abc123"},
		Review: domain.Review{Suggestions: []domain.Suggestion{
			{Path: "main.go", Line: 2, Body: "name this something clearer"},
			{Path: "main.go", Line: 500, Body: "outside the diff"},
		}},
		Diff: domain.Diff{Files: files},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(99), result.ReviewID)
	assert.Equal(t, 1, result.CommentsPosted)
	assert.Equal(t, 1, result.CommentsSkipped)
	assert.NotEmpty(t, result.HTMLURL)

	assert.Equal(t, "abc123", received.CommitID)
	assert.Equal(t, "COMMENT", received.Event)
	require.Len(t, received.Comments, 1)
	assert.Equal(t, "main.go", received.Comments[0].Path)
	assert.Equal(t, 2, received.Comments[0].Position)
}

func TestPostReview_NothingMappableSkipsAPICall(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected API call: %s %s", r.Method, r.URL.Path)
	}))

	result, err := client.PostReview(context.Background(), review.PostRequest{
		PR: domain.PRDetails{Owner: "acme", Repo: "widgets", PullNumber: 7},
		Review: domain.Review{Suggestions: []domain.Suggestion{
			{Path: "missing.go", Line: 1, Body: "x"},
		}},
		Diff: domain.Diff{Files: diff.ParseFiles(clientDiff)},
	})
	require.NoError(t, err)

	assert.Zero(t, result.CommentsPosted)
	assert.Equal(t, 1, result.CommentsSkipped)
}

func TestPostSummary(t *testing.T) {
	var received struct {
		Body string `json:"body"`
	}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/issues/7/comments", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1}`))
	}))

	err := client.PostSummary(context.Background(),
		domain.PRDetails{Owner: "acme", Repo: "widgets", PullNumber: 7},
		"This PR polls the widget service.")
	require.NoError(t, err)

	assert.Equal(t, "This PR polls the widget service.", received.Body)
}

func TestPostSummary_Failure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "Resource not accessible by integration"}`))
	}))

	err := client.PostSummary(context.Background(),
		domain.PRDetails{Owner: "acme", Repo: "widgets", PullNumber: 7}, "body")
	require.Error(t, err)
}
