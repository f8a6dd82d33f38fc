package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	cierrors "github.com/randalmurphal/nativeci/errors"
	"github.com/randalmurphal/nativeci/logging"
)

// ArtifactLister lists artifacts by exact name, newest expiry first.
type ArtifactLister interface {
	List(ctx context.Context, repo Repository, name string) ([]Artifact, error)
}

// Query describes which artifact a step is looking for.
type Query struct {
	Repository Repository

	// Name is the base artifact name uploaded by branch builds.
	Name string

	// PRNumber is the pull request that triggered the run, 0 when none.
	PRNumber int

	// ReSign requests the re-signed copy uploaded as "<Name>-<PRNumber>".
	ReSign bool
}

// PRScoped reports whether PR-scoped artifacts are considered.
func (q Query) PRScoped() bool {
	return q.PRNumber > 0 && q.ReSign
}

// PRScopedName returns "<Name>-<PRNumber>".
func (q Query) PRScopedName() string {
	return fmt.Sprintf("%s-%d", q.Name, q.PRNumber)
}

// Validate checks the fields needed for a lookup.
func (q Query) Validate() error {
	var missing []string
	if q.Repository.Owner == "" || q.Repository.Name == "" {
		missing = append(missing, "repository")
	}
	if strings.TrimSpace(q.Name) == "" {
		missing = append(missing, "name")
	}
	if err := cierrors.Missing(missing...); err != nil {
		return err
	}
	if q.PRNumber < 0 {
		return cierrors.Invalid("pr-number", "must not be negative, got %d", q.PRNumber)
	}
	return nil
}

// Result is the artifact chosen for a query.
type Result struct {
	// Name is the reported artifact name (see Select).
	Name string

	// Artifact is the selected candidate.
	Artifact Artifact

	// URL is the stable download link for Artifact.
	URL string

	// PRArtifactIDs lists every PR-scoped candidate, newest expiry first.
	PRArtifactIDs []int64
}

// ID returns the selected artifact id.
func (r *Result) ID() int64 {
	return r.Artifact.ID
}

// JoinedPRArtifactIDs returns PRArtifactIDs separated by single spaces.
func (r *Result) JoinedPRArtifactIDs() string {
	return strings.Join(lo.Map(r.PRArtifactIDs, func(id int64, _ int) string {
		return strconv.FormatInt(id, 10)
	}), " ")
}

// Resolver finds the artifact to hand out for a query.
type Resolver struct {
	lister    ArtifactLister
	serverURL string
	logger    *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithServerURL sets the host used in download links, e.g. GITHUB_SERVER_URL.
func WithServerURL(serverURL string) ResolverOption {
	return func(r *Resolver) { r.serverURL = serverURL }
}

// WithLogger sets the logger candidates are reported to.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a resolver that lists candidates with lister.
func NewResolver(lister ArtifactLister, opts ...ResolverOption) *Resolver {
	r := &Resolver{lister: lister, serverURL: DefaultServerURL}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.Ensure(r.logger)
	return r
}

// Resolve lists the candidates for q and selects one.
// A nil result with a nil error means no unexpired artifact exists.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var prList []Artifact
	if q.PRScoped() {
		var err error
		prList, err = r.lister.List(ctx, q.Repository, q.PRScopedName())
		if err != nil {
			return nil, err
		}
	}

	baseList, err := r.lister.List(ctx, q.Repository, q.Name)
	if err != nil {
		return nil, err
	}

	r.logCandidates(prList, baseList)

	result := Select(q, prList, baseList, r.serverURL)
	if result == nil {
		r.logger.Info("no unexpired artifact found",
			"repository", q.Repository.String(), "name", q.Name,
			"pr_candidates", len(prList), "base_candidates", len(baseList))
		return nil, nil
	}

	r.logger.Info("selected artifact",
		"name", result.Name, "id", result.ID(), "run_id", result.Artifact.RunID, "url", result.URL)
	return result, nil
}

// Select picks the first unexpired artifact from the PR-scoped list followed
// by the base list. Both lists must already be ordered newest expiry first.
//
// The reported name is the base name when the base list is empty, the
// PR-scoped name when the query is PR-scoped, and the base name otherwise.
// Returns nil when every candidate is expired or there are none.
func Select(q Query, prList, baseList []Artifact, serverURL string) *Result {
	combined := append(append([]Artifact(nil), prList...), baseList...)

	chosen, ok := lo.Find(combined, func(a Artifact) bool { return !a.Expired })
	if !ok {
		return nil
	}

	name := q.Name
	if len(baseList) > 0 && q.PRScoped() {
		name = q.PRScopedName()
	}

	return &Result{
		Name:          name,
		Artifact:      chosen,
		URL:           FormatURL(serverURL, q.Repository, chosen.RunID, chosen.ID),
		PRArtifactIDs: lo.Map(prList, func(a Artifact, _ int) int64 { return a.ID }),
	}
}

func (r *Resolver) logCandidates(prList, baseList []Artifact) {
	for _, group := range []struct {
		kind  string
		items []Artifact
	}{{"pr", prList}, {"base", baseList}} {
		for _, a := range group.items {
			r.logger.Info("artifact candidate",
				"kind", group.kind,
				"id", a.ID,
				"name", a.Name,
				"size", a.HumanSize(),
				"expired", a.Expired,
				"expires_at", a.ExpiresAt.Format(time.RFC3339),
				"branch", a.HeadBranch,
			)
		}
	}
}
