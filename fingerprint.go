package nativeci

import (
	"context"
	"fmt"

	"github.com/randalmurphal/nativeci/config"
	cierrors "github.com/randalmurphal/nativeci/errors"
	"github.com/randalmurphal/nativeci/fingerprint"
)

// FingerprintOptions are the inputs of the fingerprint step.
type FingerprintOptions struct {
	Platform fingerprint.Platform

	// WorkingDirectory is the project root, relative to the process
	// working directory unless absolute.
	WorkingDirectory string
}

// FingerprintOptionsFrom reads the fingerprint inputs.
func FingerprintOptionsFrom(cfg *config.Resolved) (FingerprintOptions, error) {
	if err := cfg.Require(InputPlatform); err != nil {
		return FingerprintOptions{}, err
	}
	platform, err := fingerprint.ParsePlatform(cfg.Get(InputPlatform))
	if err != nil {
		return FingerprintOptions{}, err
	}
	return FingerprintOptions{
		Platform:         platform,
		WorkingDirectory: cfg.Get(InputWorkingDirectory),
	}, nil
}

// Fingerprint hashes the native project in the working directory and sets
// the hash output.
func Fingerprint(ctx context.Context, rt *Runtime, opts FingerprintOptions) (*fingerprint.Fingerprint, error) {
	if _, err := fingerprint.ParsePlatform(string(opts.Platform)); err != nil {
		return nil, err
	}
	cwd, err := rt.getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	root := fingerprint.ResolveDir(cwd, opts.WorkingDirectory)
	logger := rt.logger().With("platform", string(opts.Platform), "root", root)

	projectOpts, err := fingerprint.LoadOptions(root)
	if err != nil {
		return nil, cierrors.Invalid(InputWorkingDirectory, "%v", err)
	}

	fp, err := fingerprint.Compute(ctx, root, opts.Platform, projectOpts, logger)
	if err != nil {
		return nil, err
	}

	for _, src := range fp.Sources {
		logger.Debug("fingerprint source", "kind", src.Kind, "id", src.ID, "hash", src.Hash)
	}
	logger.Info("computed fingerprint", "hash", fp.Hash, "sources", len(fp.Sources))

	if rt.Outputs != nil {
		rt.Outputs.SetOutput(OutputHash, fp.Hash)
	}
	return fp, nil
}
