package comment

import (
	"context"
	"fmt"

	"github.com/xanzy/go-gitlab"

	cihttp "github.com/randalmurphal/nativeci/http"
)

// GitLabProvider manages notes on GitLab merge requests.
type GitLabProvider struct {
	client    *gitlab.Client
	projectID string // numeric ID or "namespace/project"
}

// NewGitLabProvider creates a provider for a project.
// baseURL is the instance URL, e.g. CI_SERVER_URL; empty means gitlab.com.
func NewGitLabProvider(token, baseURL, projectID string) (*GitLabProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("GitLab token is required")
	}
	if projectID == "" {
		return nil, fmt.Errorf("project ID is required")
	}

	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}

	return &GitLabProvider{client: client, projectID: projectID}, nil
}

// Name implements Provider.
func (p *GitLabProvider) Name() string { return "gitlab" }

// List implements Provider. Notes are requested oldest first so the first
// managed note wins, as on GitHub.
func (p *GitLabProvider) List(ctx context.Context, mr, page, perPage int) ([]Comment, bool, error) {
	notes, resp, err := p.client.Notes.ListMergeRequestNotes(p.projectID, mr,
		&gitlab.ListMergeRequestNotesOptions{
			ListOptions: gitlab.ListOptions{Page: page, PerPage: perPage},
			OrderBy:     gitlab.Ptr("created_at"),
			Sort:        gitlab.Ptr("asc"),
		}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, false, cihttp.Classify(err)
	}

	result := make([]Comment, len(notes))
	for i, n := range notes {
		result[i] = fromGitLab(n)
	}

	hasMore := cihttp.FullPage(len(notes), perPage)
	if resp != nil && resp.TotalPages > 0 {
		hasMore = resp.NextPage > 0
	}
	return result, hasMore, nil
}

// Create implements Provider.
func (p *GitLabProvider) Create(ctx context.Context, mr int, body string) (*Comment, error) {
	note, _, err := p.client.Notes.CreateMergeRequestNote(p.projectID, mr,
		&gitlab.CreateMergeRequestNoteOptions{Body: gitlab.Ptr(body)}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, cihttp.Classify(err)
	}
	result := fromGitLab(note)
	return &result, nil
}

// Update implements Provider.
func (p *GitLabProvider) Update(ctx context.Context, mr int, id int64, body string) (*Comment, error) {
	note, _, err := p.client.Notes.UpdateMergeRequestNote(p.projectID, mr, int(id),
		&gitlab.UpdateMergeRequestNoteOptions{Body: gitlab.Ptr(body)}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, cihttp.Classify(err)
	}
	result := fromGitLab(note)
	return &result, nil
}

// CurrentLogin returns the username the token authenticates as. GitLab
// project and group access tokens post under generated bot usernames, so
// this is the login managed notes are matched against.
func (p *GitLabProvider) CurrentLogin(ctx context.Context) (string, error) {
	user, _, err := p.client.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		return "", cihttp.Classify(err)
	}
	return user.Username, nil
}

func fromGitLab(n *gitlab.Note) Comment {
	return Comment{
		ID:     int64(n.ID),
		Author: n.Author.Username,
		Body:   n.Body,
	}
}
