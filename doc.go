// Package nativeci implements the CI steps of a native mobile build pipeline.
//
// The package is organized into subpackages by domain:
//
//   - artifact: workflow artifact listing, selection, stable URLs and cleanup
//   - comment: the managed "build ready" comment on GitHub and GitLab
//   - fingerprint: content hashing of the ios/ or android/ project
//   - auth: GitHub App JWTs and installation tokens
//   - config: layered step input resolution
//   - errors: input validation and user-facing API errors
//   - http: GitHub clients, page iteration and API error types
//   - logging: slog logger construction
//   - testutil: fake GitHub server and fixtures
//
// The root package ties them together with one runner per step. Each runner
// takes the CI context as an explicit Invocation and writes its results to
// an Outputs sink:
//
//	inv, _ := nativeci.InvocationFromEnv(os.Getenv)
//	rt := &nativeci.Runtime{Invocation: inv, Outputs: githubactions.New(), Logger: logger}
//
//	resolved := config.NewResolver(nativeci.InputConfig(nil, nil, logger)).Resolve()
//	opts, err := nativeci.FindArtifactOptionsFrom(resolved)
//	if err != nil {
//	    return err
//	}
//	result, err := nativeci.FindArtifact(ctx, rt, opts)
//
// See cmd/nativeci for the command line entry point.
package nativeci
