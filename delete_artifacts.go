package nativeci

import (
	"context"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/randalmurphal/nativeci/artifact"
	"github.com/randalmurphal/nativeci/config"
	cierrors "github.com/randalmurphal/nativeci/errors"
)

// DeleteArtifactsOptions are the inputs of the delete-artifacts step.
type DeleteArtifactsOptions struct {
	Credentials Credentials
	Repository  string

	// IDs are the artifacts to delete, usually find-artifact's artifact-ids.
	IDs    []int64
	DryRun bool
}

// DeleteArtifactsOptionsFrom reads the delete-artifacts inputs.
func DeleteArtifactsOptionsFrom(cfg *config.Resolved) (DeleteArtifactsOptions, error) {
	creds, err := CredentialsFrom(cfg)
	if err != nil {
		return DeleteArtifactsOptions{}, err
	}
	ids, err := artifact.ParseIDs(cfg.Get(InputArtifactIDs))
	if err != nil {
		return DeleteArtifactsOptions{}, err
	}
	dryRun, err := cfg.Bool(InputDryRun)
	if err != nil {
		return DeleteArtifactsOptions{}, err
	}
	return DeleteArtifactsOptions{
		Credentials: creds,
		Repository:  cfg.Get(InputRepository),
		IDs:         ids,
		DryRun:      dryRun,
	}, nil
}

// DeleteArtifacts deletes the given artifacts and sets deleted-ids to the
// ids that are gone afterwards, including those already deleted. An empty
// id list is a no-op.
func DeleteArtifacts(ctx context.Context, rt *Runtime, opts DeleteArtifactsOptions) (*artifact.CleanupResult, error) {
	inv := rt.invocation()
	if opts.Repository == "" {
		opts.Repository = inv.Repository
	}
	logger := rt.logger()

	if len(opts.IDs) == 0 {
		logger.Info("no artifacts to delete")
		if rt.Outputs != nil {
			rt.Outputs.SetOutput(OutputDeletedIDs, "")
		}
		return &artifact.CleanupResult{DryRun: opts.DryRun}, nil
	}

	missing := opts.Credentials.Missing()
	if opts.Repository == "" {
		missing = append(missing, InputRepository)
	}
	if err := cierrors.Missing(missing...); err != nil {
		return nil, err
	}
	repo, err := artifact.ParseRepository(opts.Repository)
	if err != nil {
		return nil, err
	}

	client, err := rt.GitHubClient(ctx, opts.Credentials, repo)
	if err != nil {
		return nil, rt.apiError(err)
	}

	result, err := artifact.NewDeleter(client, logger).Delete(ctx, repo, opts.IDs, opts.DryRun)
	if rt.Outputs != nil && result != nil {
		gone := append(append([]int64(nil), result.Deleted...), result.Missing...)
		rt.Outputs.SetOutput(OutputDeletedIDs, strings.Join(lo.Map(gone, func(id int64, _ int) string {
			return strconv.FormatInt(id, 10)
		}), " "))
	}
	if err != nil {
		return result, rt.apiError(err)
	}

	logger.Info("deleted artifacts",
		"deleted", len(result.Deleted),
		"missing", len(result.Missing),
		"dry_run", result.DryRun)
	return result, nil
}
