package artifact

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/go-github/v57/github"

	cierrors "github.com/randalmurphal/nativeci/errors"
)

// Artifact is a workflow artifact as listed by the Actions API.
type Artifact struct {
	ID          int64
	Name        string
	SizeInBytes int64
	Expired     bool
	CreatedAt   time.Time
	ExpiresAt   time.Time

	// RunID is the workflow run that uploaded the artifact, 0 when unknown.
	RunID      int64
	HeadBranch string
}

// FromGitHub maps an API artifact. Missing fields take their zero value,
// so an artifact without an expired flag counts as unexpired.
func FromGitHub(a *github.Artifact) Artifact {
	result := Artifact{
		ID:          a.GetID(),
		Name:        a.GetName(),
		SizeInBytes: a.GetSizeInBytes(),
		Expired:     a.GetExpired(),
	}
	if a.CreatedAt != nil {
		result.CreatedAt = a.CreatedAt.Time
	}
	if a.ExpiresAt != nil {
		result.ExpiresAt = a.ExpiresAt.Time
	}
	if a.WorkflowRun != nil {
		result.RunID = a.WorkflowRun.GetID()
		result.HeadBranch = a.WorkflowRun.GetHeadBranch()
	}
	return result
}

// HumanSize returns the size in IEC units, e.g. "12 MiB".
func (a Artifact) HumanSize() string {
	if a.SizeInBytes <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(a.SizeInBytes))
}

// Repository identifies a repository as owner and name.
type Repository struct {
	Owner string
	Name  string
}

// ParseRepository splits "owner/name". Both segments must be non-empty
// and there must be exactly two of them.
func ParseRepository(s string) (Repository, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, cierrors.Invalid("repository", "%q is not in owner/name form", s)
	}
	return Repository{Owner: parts[0], Name: parts[1]}, nil
}

func (r Repository) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}
