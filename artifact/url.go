package artifact

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultServerURL is used when no server URL is configured.
const DefaultServerURL = "https://github.com"

// Location identifies an artifact by its stable download link.
type Location struct {
	ServerURL  string
	Repository Repository
	RunID      int64
	ArtifactID int64
}

// FormatURL builds the stable link
// <serverURL>/<owner>/<repo>/actions/runs/<runID>/artifacts/<artifactID>.
// An empty serverURL means github.com.
func FormatURL(serverURL string, repo Repository, runID, artifactID int64) string {
	serverURL = strings.TrimSuffix(serverURL, "/")
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return fmt.Sprintf("%s/%s/%s/actions/runs/%d/artifacts/%d",
		serverURL, repo.Owner, repo.Name, runID, artifactID)
}

// String formats the location with FormatURL.
func (l Location) String() string {
	return FormatURL(l.ServerURL, l.Repository, l.RunID, l.ArtifactID)
}

// ParseURL recovers the parts of a link produced by FormatURL.
// Path segments before the owner stay part of ServerURL.
func ParseURL(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Location{}, fmt.Errorf("%w: %q has no scheme or host", ErrInvalidURL, raw)
	}

	// owner/repo/actions/runs/<run>/artifacts/<id>
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 7 {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	prefix, tail := segments[:len(segments)-7], segments[len(segments)-7:]
	if tail[0] == "" || tail[1] == "" || tail[2] != "actions" || tail[3] != "runs" || tail[5] != "artifacts" {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	runID, err := strconv.ParseInt(tail[4], 10, 64)
	if err != nil || runID < 0 {
		return Location{}, fmt.Errorf("%w: bad run id in %q", ErrInvalidURL, raw)
	}
	artifactID, err := strconv.ParseInt(tail[6], 10, 64)
	if err != nil || artifactID < 0 {
		return Location{}, fmt.Errorf("%w: bad artifact id in %q", ErrInvalidURL, raw)
	}

	server := u.Scheme + "://" + u.Host
	if len(prefix) > 0 {
		server += "/" + strings.Join(prefix, "/")
	}

	return Location{
		ServerURL:  server,
		Repository: Repository{Owner: tail[0], Name: tail[1]},
		RunID:      runID,
		ArtifactID: artifactID,
	}, nil
}
