package nativeci

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/randalmurphal/nativeci/artifact"
	"github.com/randalmurphal/nativeci/comment"
	"github.com/randalmurphal/nativeci/config"
	cierrors "github.com/randalmurphal/nativeci/errors"
)

// Comment providers accepted by the provider input.
const (
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"
)

// PostBuildOptions are the inputs of the post-build step.
type PostBuildOptions struct {
	Credentials Credentials
	Repository  string
	Title       string
	ArtifactURL string

	// BotLogin identifies managed comments. Empty means github-actions[bot]
	// with a token, the app's "<slug>[bot]" with app credentials and the
	// token's own user on GitLab.
	BotLogin string

	// IssueNumber overrides the issue taken from the event payload.
	IssueNumber int

	// Provider is "github", "gitlab" or empty to detect from the environment.
	Provider    string
	GitLabToken string
}

// PostBuildOptionsFrom reads the post-build inputs.
func PostBuildOptionsFrom(cfg *config.Resolved) (PostBuildOptions, error) {
	creds, err := CredentialsFrom(cfg)
	if err != nil {
		return PostBuildOptions{}, err
	}
	issue, _, err := cfg.Int(InputIssueNumber)
	if err != nil {
		return PostBuildOptions{}, err
	}
	return PostBuildOptions{
		Credentials: creds,
		Repository:  cfg.Get(InputRepository),
		Title:       strings.TrimSpace(cfg.Get(InputTitle)),
		ArtifactURL: strings.TrimSpace(cfg.Get(InputArtifactURL)),
		BotLogin:    strings.TrimSpace(cfg.Get(InputBotLogin)),
		IssueNumber: int(issue),
		Provider:    strings.ToLower(strings.TrimSpace(cfg.Get(InputProvider))),
		GitLabToken: cfg.Get(InputGitLabToken),
	}, nil
}

// provider returns the effective provider for inv.
func (o PostBuildOptions) provider(inv *Invocation) string {
	if o.Provider != "" {
		return o.Provider
	}
	if inv.GitLab != nil {
		return ProviderGitLab
	}
	return ProviderGitHub
}

// issue returns the issue or merge request to comment on, 0 when unknown.
func (o PostBuildOptions) issue(inv *Invocation) int {
	if o.IssueNumber > 0 {
		return o.IssueNumber
	}
	if o.provider(inv) == ProviderGitLab {
		if inv.GitLab == nil {
			return 0
		}
		return inv.GitLab.MergeRequestIID
	}
	return inv.IssueNumber
}

// Validate reports every missing input at once, before any network call.
func (o PostBuildOptions) Validate(inv *Invocation) error {
	var missing []string
	switch o.provider(inv) {
	case ProviderGitHub:
		missing = append(missing, o.Credentials.Missing()...)
		if o.Repository == "" {
			missing = append(missing, InputRepository)
		}
	case ProviderGitLab:
		if o.GitLabToken == "" {
			missing = append(missing, InputGitLabToken)
		}
	default:
		return cierrors.Invalid(InputProvider, "%q is not a provider (want github or gitlab)", o.Provider)
	}
	if o.Title == "" {
		missing = append(missing, InputTitle)
	}
	if o.ArtifactURL == "" {
		missing = append(missing, InputArtifactURL)
	}
	if o.IssueNumber < 0 {
		return cierrors.Invalid(InputIssueNumber, "must not be negative, got %d", o.IssueNumber)
	}
	return cierrors.Missing(missing...)
}

// PostBuild posts the build comment for title on the pull request of this
// run, or updates the one posted by an earlier run, and sets comment-id.
func PostBuild(ctx context.Context, rt *Runtime, opts PostBuildOptions) (*comment.Result, error) {
	inv := rt.invocation()
	if opts.Repository == "" {
		opts.Repository = inv.Repository
	}
	if err := opts.Validate(inv); err != nil {
		return nil, err
	}
	logger := rt.logger()

	if loc, err := artifact.ParseURL(opts.ArtifactURL); err != nil {
		logger.Warn("artifact-url is not a workflow artifact link", "url", opts.ArtifactURL)
	} else {
		logger.Debug("linking artifact",
			"repository", loc.Repository.String(),
			"run_id", loc.RunID,
			"artifact_id", loc.ArtifactID)
	}

	issue := opts.issue(inv)
	if issue <= 0 {
		return nil, fmt.Errorf("%w: event %q has no pull request; set %s",
			comment.ErrNoIssue, inv.EventName, InputIssueNumber)
	}

	upserter, err := rt.commentUpserter(ctx, opts)
	if err != nil {
		return nil, err
	}

	body := comment.Render(opts.Title, opts.ArtifactURL, rt.now())
	result, err := upserter.Upsert(ctx, issue, opts.Title, body)
	if err != nil {
		if opts.provider(inv) == ProviderGitLab {
			return nil, cierrors.WrapClientError(err, inv.GitLab.ServerURL)
		}
		return nil, rt.apiError(err)
	}

	if rt.Outputs != nil {
		rt.Outputs.SetOutput(OutputCommentID, strconv.FormatInt(result.Comment.ID, 10))
	}
	return result, nil
}

// commentUpserter builds the upserter for the selected provider.
func (rt *Runtime) commentUpserter(ctx context.Context, opts PostBuildOptions) (*comment.Upserter, error) {
	inv := rt.invocation()
	logger := rt.logger()

	switch opts.provider(inv) {
	case ProviderGitLab:
		gl := inv.GitLab
		if gl == nil || gl.ProjectID == "" {
			return nil, fmt.Errorf("%w: CI_PROJECT_ID", cierrors.ErrMissingInput)
		}
		provider, err := comment.NewGitLabProvider(opts.GitLabToken, gl.ServerURL, gl.ProjectID)
		if err != nil {
			return nil, err
		}
		login := opts.BotLogin
		if login == "" {
			if login, err = provider.CurrentLogin(ctx); err != nil {
				return nil, fmt.Errorf("look up GitLab user: %w", cierrors.WrapClientError(err, gl.ServerURL))
			}
		}
		return comment.NewUpserter(provider, comment.WithBotLogin(login), comment.WithLogger(logger)), nil

	default:
		repo, err := artifact.ParseRepository(opts.Repository)
		if err != nil {
			return nil, err
		}
		client, err := rt.GitHubClient(ctx, opts.Credentials, repo)
		if err != nil {
			return nil, rt.apiError(err)
		}
		provider, err := comment.NewGitHubProvider(client, repo.Owner, repo.Name)
		if err != nil {
			return nil, err
		}
		login := opts.BotLogin
		if login == "" && opts.Credentials.UsesApp() {
			if login, err = rt.AppBotLogin(ctx, opts.Credentials); err != nil {
				return nil, fmt.Errorf("look up GitHub App login (or set %s): %w", InputBotLogin, rt.apiError(err))
			}
		}
		return comment.NewUpserter(provider, comment.WithBotLogin(login), comment.WithLogger(logger)), nil
	}
}
