package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/google/go-github/v57/github"
	"github.com/google/go-querystring/query"

	cihttp "github.com/randalmurphal/nativeci/http"
	"github.com/randalmurphal/nativeci/logging"
)

// DefaultPerPage is the largest page size the Actions API accepts.
const DefaultPerPage = 100

// listOptions adds the name filter that go-github's ListArtifacts lacks.
type listOptions struct {
	Name string `url:"name,omitempty"`
	github.ListOptions
}

// Lister lists artifacts by exact name.
type Lister struct {
	client  *github.Client
	perPage int
	logger  *slog.Logger
}

// ListerOption configures a Lister.
type ListerOption func(*Lister)

// WithPerPage overrides the page size. Values outside 1..100 are ignored.
func WithPerPage(n int) ListerOption {
	return func(l *Lister) {
		if n > 0 && n <= DefaultPerPage {
			l.perPage = n
		}
	}
}

// WithListerLogger sets the logger for page-level debug output.
func WithListerLogger(logger *slog.Logger) ListerOption {
	return func(l *Lister) { l.logger = logger }
}

// NewLister creates a lister backed by client.
func NewLister(client *github.Client, opts ...ListerOption) *Lister {
	l := &Lister{client: client, perPage: DefaultPerPage}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.Ensure(l.logger)
	return l
}

// List returns every artifact in repo named exactly name, newest expiry first.
// Artifacts sharing an expiry keep the order the API listed them in.
func (l *Lister) List(ctx context.Context, repo Repository, name string) ([]Artifact, error) {
	iter := cihttp.NewPageIterator(func(ctx context.Context, page int) ([]Artifact, bool, error) {
		return l.fetchPage(ctx, repo, name, page)
	})

	artifacts, err := iter.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list artifacts %q in %s: %w", name, repo, err)
	}
	l.logger.Debug("listed artifacts", "repository", repo.String(), "name", name,
		"count", len(artifacts), "pages", iter.Pages())

	sort.SliceStable(artifacts, func(i, j int) bool {
		return artifacts[i].ExpiresAt.After(artifacts[j].ExpiresAt)
	})
	return artifacts, nil
}

func (l *Lister) fetchPage(ctx context.Context, repo Repository, name string, page int) ([]Artifact, bool, error) {
	values, err := query.Values(listOptions{
		Name:        name,
		ListOptions: github.ListOptions{Page: page, PerPage: l.perPage},
	})
	if err != nil {
		return nil, false, fmt.Errorf("encode query: %w", err)
	}

	u := fmt.Sprintf("repos/%s/%s/actions/artifacts?%s", repo.Owner, repo.Name, values.Encode())
	req, err := l.client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}

	var list github.ArtifactList
	if _, err := l.client.Do(ctx, req, &list); err != nil {
		return nil, false, cihttp.Classify(err)
	}

	items := make([]Artifact, 0, len(list.Artifacts))
	for _, a := range list.Artifacts {
		items = append(items, FromGitHub(a))
	}
	return items, cihttp.FullPage(len(items), l.perPage), nil
}
