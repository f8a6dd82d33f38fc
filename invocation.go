package nativeci

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"

	"github.com/randalmurphal/nativeci/artifact"
)

// Event names that carry a pull request in their payload.
const (
	EventPullRequest       = "pull_request"
	EventPullRequestTarget = "pull_request_target"
	EventIssueComment      = "issue_comment"
	EventIssues            = "issues"
)

// Invocation is the CI context of one step run. It is read once at startup
// and passed to the runners; library packages never consult the environment.
type Invocation struct {
	EventName  string
	Repository string

	// ServerURL is the web host used in download links (GITHUB_SERVER_URL).
	ServerURL string

	// APIURL is the REST endpoint (GITHUB_API_URL).
	APIURL string

	RunID   int64
	HeadRef string

	// PullRequestNumber is set only for pull request events.
	PullRequestNumber int

	// IssueNumber is the issue or pull request the event refers to, if any.
	IssueNumber int

	// GitLab is set when running inside GitLab CI.
	GitLab *GitLabContext
}

// GitLabContext holds the merge request coordinates of a GitLab pipeline.
type GitLabContext struct {
	ProjectID       string
	MergeRequestIID int
	ServerURL       string
}

// InvocationFromEnv reads the invocation from GITHUB_* and CI_* variables.
// The event payload at GITHUB_EVENT_PATH is parsed when present.
func InvocationFromEnv(getenv func(string) string) (*Invocation, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	inv := &Invocation{
		EventName:  getenv("GITHUB_EVENT_NAME"),
		Repository: getenv("GITHUB_REPOSITORY"),
		ServerURL:  strings.TrimSuffix(getenv("GITHUB_SERVER_URL"), "/"),
		APIURL:     strings.TrimSuffix(getenv("GITHUB_API_URL"), "/"),
		HeadRef:    getenv("GITHUB_HEAD_REF"),
	}
	if inv.ServerURL == "" {
		inv.ServerURL = artifact.DefaultServerURL
	}

	if raw := getenv("GITHUB_RUN_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse GITHUB_RUN_ID %q: %w", raw, err)
		}
		inv.RunID = id
	}

	if path := getenv("GITHUB_EVENT_PATH"); path != "" && inv.EventName != "" {
		payload, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read event payload: %w", err)
		}
		if len(payload) > 0 {
			if err := inv.ParseEvent(payload); err != nil {
				return nil, err
			}
		}
	}

	if strings.EqualFold(getenv("GITLAB_CI"), "true") {
		gl := &GitLabContext{
			ProjectID: getenv("CI_PROJECT_ID"),
			ServerURL: getenv("CI_SERVER_URL"),
		}
		if raw := getenv("CI_MERGE_REQUEST_IID"); raw != "" {
			iid, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("parse CI_MERGE_REQUEST_IID %q: %w", raw, err)
			}
			gl.MergeRequestIID = iid
		}
		inv.GitLab = gl
	}

	return inv, nil
}

// ParseEvent fills the pull request and issue numbers from an event payload
// of type EventName. Events without a typed payload fall back to a top level
// "number" field.
func (inv *Invocation) ParseEvent(payload []byte) error {
	event, err := github.ParseWebHook(inv.EventName, payload)
	if err != nil {
		// Unknown event types are fine; only their number matters.
		var generic struct {
			Number int `json:"number"`
		}
		if jsonErr := json.Unmarshal(payload, &generic); jsonErr != nil {
			return fmt.Errorf("parse %s event payload: %w", inv.EventName, jsonErr)
		}
		inv.IssueNumber = generic.Number
		return nil
	}

	switch e := event.(type) {
	case *github.PullRequestEvent:
		inv.PullRequestNumber = prNumber(e.GetNumber(), e.GetPullRequest())
		inv.IssueNumber = inv.PullRequestNumber
	case *github.PullRequestTargetEvent:
		inv.PullRequestNumber = prNumber(e.GetNumber(), e.GetPullRequest())
		inv.IssueNumber = inv.PullRequestNumber
	case *github.IssueCommentEvent:
		inv.IssueNumber = e.GetIssue().GetNumber()
	case *github.IssuesEvent:
		inv.IssueNumber = e.GetIssue().GetNumber()
	}
	return nil
}

func prNumber(number int, pr *github.PullRequest) int {
	if number != 0 {
		return number
	}
	return pr.GetNumber()
}
