package nativeci

import (
	"context"
	"strconv"

	"github.com/randalmurphal/nativeci/artifact"
	"github.com/randalmurphal/nativeci/config"
	cierrors "github.com/randalmurphal/nativeci/errors"
)

// FindArtifactOptions are the inputs of the find-artifact step.
type FindArtifactOptions struct {
	Credentials Credentials
	Repository  string
	Name        string
	ReSign      bool
}

// FindArtifactOptionsFrom reads the find-artifact inputs.
func FindArtifactOptionsFrom(cfg *config.Resolved) (FindArtifactOptions, error) {
	creds, err := CredentialsFrom(cfg)
	if err != nil {
		return FindArtifactOptions{}, err
	}
	reSign, err := cfg.Bool(InputReSign)
	if err != nil {
		return FindArtifactOptions{}, err
	}
	return FindArtifactOptions{
		Credentials: creds,
		Repository:  cfg.Get(InputRepository),
		Name:        cfg.Get(InputName),
		ReSign:      reSign,
	}, nil
}

// Validate reports every missing input at once.
func (o FindArtifactOptions) Validate() error {
	missing := o.Credentials.Missing()
	if o.Repository == "" {
		missing = append(missing, InputRepository)
	}
	if o.Name == "" {
		missing = append(missing, InputName)
	}
	return cierrors.Missing(missing...)
}

// FindArtifact resolves the artifact to hand out for this run and writes the
// artifact-name, artifact-id, artifact-url and artifact-ids outputs. When no
// unexpired artifact exists it logs that, sets nothing and returns nil.
func FindArtifact(ctx context.Context, rt *Runtime, opts FindArtifactOptions) (*artifact.Result, error) {
	inv := rt.invocation()
	if opts.Repository == "" {
		opts.Repository = inv.Repository
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	repo, err := artifact.ParseRepository(opts.Repository)
	if err != nil {
		return nil, err
	}
	logger := rt.logger()
	logger.Debug("looking up artifact",
		"repository", repo.String(), "name", opts.Name,
		"pr", inv.PullRequestNumber, "head_ref", inv.HeadRef, "run_id", inv.RunID)

	client, err := rt.GitHubClient(ctx, opts.Credentials, repo)
	if err != nil {
		return nil, rt.apiError(err)
	}

	resolver := artifact.NewResolver(
		artifact.NewLister(client, artifact.WithListerLogger(logger)),
		artifact.WithServerURL(inv.ServerURL),
		artifact.WithLogger(logger),
	)
	result, err := resolver.Resolve(ctx, artifact.Query{
		Repository: repo,
		Name:       opts.Name,
		PRNumber:   inv.PullRequestNumber,
		ReSign:     opts.ReSign,
	})
	if err != nil {
		return nil, rt.apiError(err)
	}
	if result == nil {
		return nil, nil
	}

	if rt.Outputs != nil {
		rt.Outputs.SetOutput(OutputArtifactName, result.Name)
		rt.Outputs.SetOutput(OutputArtifactID, strconv.FormatInt(result.ID(), 10))
		rt.Outputs.SetOutput(OutputArtifactURL, result.URL)
		rt.Outputs.SetOutput(OutputArtifactIDs, result.JoinedPRArtifactIDs())
	}
	return result, nil
}
