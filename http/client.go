package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// PublicGitHubAPI is the REST endpoint for github.com.
const PublicGitHubAPI = "https://api.github.com"

// NewTokenClient returns an *http.Client that authenticates every request
// with token as a bearer credential.
func NewTokenClient(ctx context.Context, token string) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout
	return tc
}

// NewGitHubClient creates a go-github client authenticated with token.
// apiURL selects a GitHub Enterprise Server instance (the value of
// GITHUB_API_URL); empty or the public API URL targets github.com.
func NewGitHubClient(ctx context.Context, token, apiURL string) (*github.Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	return withAPIURL(github.NewClient(NewTokenClient(ctx, token)), apiURL)
}

// NewAnonymousGitHubClient creates a go-github client without credentials,
// pointed at apiURL. Callers that authenticate per request, such as the
// app installation exchange, use it for its base URL.
func NewAnonymousGitHubClient(apiURL string) (*github.Client, error) {
	return withAPIURL(github.NewClient(&http.Client{Timeout: DefaultTimeout}), apiURL)
}

func withAPIURL(client *github.Client, apiURL string) (*github.Client, error) {
	if apiURL == "" || strings.TrimSuffix(apiURL, "/") == PublicGitHubAPI {
		return client, nil
	}

	client, err := client.WithEnterpriseURLs(apiURL, apiURL)
	if err != nil {
		return nil, fmt.Errorf("configure GitHub API URL %q: %w", apiURL, err)
	}
	return client, nil
}
