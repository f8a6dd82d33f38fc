// Package comment keeps a single managed "build ready" comment on a pull
// request or merge request up to date.
//
// A comment is managed when its author is the automation identity and its
// body contains the "## <title>" heading. The first managed comment found is
// edited in place; when none exists a new one is created, so repeated runs
// never stack comments.
//
// Example usage:
//
//	provider, err := comment.NewGitHubProvider(client, "acme", "app")
//	if err != nil {
//	    return err
//	}
//	upserter := comment.NewUpserter(provider)
//	body := comment.Render(title, artifactURL, time.Now())
//	result, err := upserter.Upsert(ctx, prNumber, title, body)
package comment
