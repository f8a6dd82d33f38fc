package comment

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"

	cihttp "github.com/randalmurphal/nativeci/http"
)

// GitHubProvider manages issue comments on a GitHub repository.
// Pull requests share the issue comment API.
type GitHubProvider struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubProvider creates a provider for owner/repo.
func NewGitHubProvider(client *github.Client, owner, repo string) (*GitHubProvider, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}
	return &GitHubProvider{client: client, owner: owner, repo: repo}, nil
}

// Name implements Provider.
func (p *GitHubProvider) Name() string { return "github" }

// List implements Provider.
func (p *GitHubProvider) List(ctx context.Context, issue, page, perPage int) ([]Comment, bool, error) {
	comments, _, err := p.client.Issues.ListComments(ctx, p.owner, p.repo, issue,
		&github.IssueListCommentsOptions{
			ListOptions: github.ListOptions{Page: page, PerPage: perPage},
		})
	if err != nil {
		return nil, false, cihttp.Classify(err)
	}

	result := make([]Comment, len(comments))
	for i, c := range comments {
		result[i] = fromGitHub(c)
	}
	return result, cihttp.FullPage(len(comments), perPage), nil
}

// Create implements Provider.
func (p *GitHubProvider) Create(ctx context.Context, issue int, body string) (*Comment, error) {
	c, _, err := p.client.Issues.CreateComment(ctx, p.owner, p.repo, issue,
		&github.IssueComment{Body: github.String(body)})
	if err != nil {
		return nil, cihttp.Classify(err)
	}
	result := fromGitHub(c)
	return &result, nil
}

// Update implements Provider.
func (p *GitHubProvider) Update(ctx context.Context, _ int, id int64, body string) (*Comment, error) {
	c, _, err := p.client.Issues.EditComment(ctx, p.owner, p.repo, id,
		&github.IssueComment{Body: github.String(body)})
	if err != nil {
		return nil, cihttp.Classify(err)
	}
	result := fromGitHub(c)
	return &result, nil
}

func fromGitHub(c *github.IssueComment) Comment {
	return Comment{
		ID:     c.GetID(),
		Author: c.GetUser().GetLogin(),
		Body:   c.GetBody(),
		URL:    c.GetHTMLURL(),
	}
}
