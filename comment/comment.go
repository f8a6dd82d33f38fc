package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultBotLogin is the author of comments posted with the workflow token.
const DefaultBotLogin = "github-actions[bot]"

// PerPage is the page size used when scanning existing comments.
const PerPage = 100

// Sentinel errors for comment operations.
var (
	// ErrNoIssue indicates the run has no pull request or issue to comment on.
	ErrNoIssue = errors.New("no pull request or issue number available")

	// ErrCommentNotFound indicates the comment to update does not exist.
	ErrCommentNotFound = errors.New("comment not found")
)

// Comment is a provider-neutral issue comment or merge request note.
type Comment struct {
	ID     int64
	Author string
	Body   string
	URL    string
}

// Provider reads and writes comments on one repository or project.
type Provider interface {
	// Name identifies the platform in logs and errors, e.g. "github".
	Name() string

	// List returns one page of comments on issue, oldest first.
	// Pages are numbered from 1; hasMore reports whether another page may follow.
	List(ctx context.Context, issue, page, perPage int) (comments []Comment, hasMore bool, err error)

	// Create adds a comment to issue.
	Create(ctx context.Context, issue int, body string) (*Comment, error)

	// Update replaces the body of an existing comment.
	Update(ctx context.Context, issue int, id int64, body string) (*Comment, error)
}

// Heading returns the markdown heading that marks a managed comment.
func Heading(title string) string {
	return "## " + title
}

// Render builds the full comment body for a download link.
func Render(title, artifactURL string, at time.Time) string {
	var sb strings.Builder
	sb.WriteString(Heading(title))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "🔗 [Download link](%s).\n\n\n", artifactURL)
	sb.WriteString("Note: if the download link expires, please re-run the workflow to generate a new build.\n\n\n")
	fmt.Fprintf(&sb, "*Generated at %s UTC*\n", FormatTimestamp(at))
	return sb.String()
}

// FormatTimestamp renders t as ISO-8601 UTC with milliseconds,
// e.g. 2026-05-01T09:30:00.000Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
