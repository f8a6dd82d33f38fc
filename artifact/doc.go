// Package artifact resolves GitHub Actions workflow artifacts for a build.
//
// Core types:
//   - Artifact: an uploaded workflow artifact, mapped from the REST API
//   - Lister: lists every artifact with an exact name across all pages
//   - Resolver: picks the artifact to hand to testers, preferring the
//     re-signed copy built for the pull request over the base branch build
//   - Deleter: removes superseded pull request artifacts
//
// Example usage:
//
//	lister := artifact.NewLister(client)
//	resolver := artifact.NewResolver(lister, artifact.WithServerURL(inv.ServerURL))
//	result, err := resolver.Resolve(ctx, artifact.Query{
//	    Repository: repo,
//	    Name:       "ios-build",
//	    PRNumber:   42,
//	    ReSign:     true,
//	})
//	if result == nil {
//	    // nothing usable; every candidate expired or none exist
//	}
//
// Stable links have the form
// <server>/<owner>/<repo>/actions/runs/<run id>/artifacts/<artifact id>.
package artifact
