package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
)

// DefaultBotLogin is the author login the fake server assigns to new comments.
const DefaultBotLogin = "github-actions[bot]"

// Route names accepted by GitHubServer.Fail.
const (
	RouteListArtifacts  = "list-artifacts"
	RouteDeleteArtifact = "delete-artifact"
	RouteListComments   = "list-comments"
	RouteCreateComment  = "create-comment"
	RouteEditComment    = "edit-comment"
	RouteInstallation   = "repo-installation"
	RouteAccessToken    = "access-token"
	RouteApp            = "app"
)

// GitHubServer is an in-memory stand-in for the subset of the GitHub REST API
// the steps use: workflow artifacts, issue comments and app installations.
type GitHubServer struct {
	*httptest.Server

	// BotLogin is the author of comments created through the API.
	BotLogin string

	// InstallationID is returned for any repository installation lookup.
	InstallationID int64

	// InstallationToken is returned by the access token exchange.
	InstallationToken string

	// AppSlug is the slug of the app authenticated by a JWT.
	AppSlug string

	mu        sync.Mutex
	artifacts map[string][]*github.Artifact
	comments  map[string][]*github.IssueComment
	nextID    int64
	failures  map[string]int
	requests  []Request
}

// Request records a call received by the fake server.
type Request struct {
	Route         string
	Method        string
	Path          string
	Query         string
	Authorization string
}

// NewGitHubServer starts a fake GitHub API and closes it when the test ends.
func NewGitHubServer(t testing.TB) *GitHubServer {
	t.Helper()

	s := &GitHubServer{
		BotLogin:          DefaultBotLogin,
		InstallationID:    4242,
		InstallationToken: "ghs_installation_token",
		AppSlug:           "nativeci-app",
		artifacts:         make(map[string][]*github.Artifact),
		comments:          make(map[string][]*github.IssueComment),
		nextID:            1000,
		failures:          make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/artifacts", s.handle(RouteListArtifacts, s.listArtifacts))
	mux.HandleFunc("DELETE /repos/{owner}/{repo}/actions/artifacts/{id}", s.handle(RouteDeleteArtifact, s.deleteArtifact))
	mux.HandleFunc("GET /repos/{owner}/{repo}/issues/{number}/comments", s.handle(RouteListComments, s.listComments))
	mux.HandleFunc("POST /repos/{owner}/{repo}/issues/{number}/comments", s.handle(RouteCreateComment, s.createComment))
	mux.HandleFunc("PATCH /repos/{owner}/{repo}/issues/comments/{id}", s.handle(RouteEditComment, s.editComment))
	mux.HandleFunc("GET /repos/{owner}/{repo}/installation", s.handle(RouteInstallation, s.repoInstallation))
	mux.HandleFunc("GET /app", s.handle(RouteApp, s.app))
	mux.HandleFunc("POST /app/installations/{id}/access_tokens", s.handle(RouteAccessToken, s.accessToken))

	// Clients built with WithEnterpriseURLs prefix every path with /api/v3.
	root := http.NewServeMux()
	root.Handle("/api/v3/", http.StripPrefix("/api/v3", mux))
	root.Handle("/", mux)

	s.Server = httptest.NewServer(root)
	t.Cleanup(s.Close)
	return s
}

// Client returns a go-github client pointed at the fake server.
func (s *GitHubServer) Client() *github.Client {
	client := github.NewClient(nil)
	client.BaseURL, _ = client.BaseURL.Parse(s.URL + "/")
	return client
}

// AddArtifact stores an artifact for repo ("owner/name") in listing order.
func (s *GitHubServer) AddArtifact(repo string, a *github.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[repo] = append(s.artifacts[repo], a)
}

// Artifacts returns the artifacts currently stored for repo.
func (s *GitHubServer) Artifacts(repo string) []*github.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*github.Artifact(nil), s.artifacts[repo]...)
}

// AddComment stores an existing comment on an issue and returns its id.
func (s *GitHubServer) AddComment(repo string, issue int, author, body string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeComment(repo, issue, author, body).GetID()
}

// Comments returns the comments on an issue in creation order.
func (s *GitHubServer) Comments(repo string, issue int) []*github.IssueComment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*github.IssueComment(nil), s.comments[issueKey(repo, issue)]...)
}

// Fail makes every later request to route answer with status.
func (s *GitHubServer) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

// Requests returns the calls received so far, optionally limited to one route.
func (s *GitHubServer) Requests(route string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if route == "" {
		return append([]Request(nil), s.requests...)
	}
	var out []Request
	for _, r := range s.requests {
		if r.Route == route {
			out = append(out, r)
		}
	}
	return out
}

func (s *GitHubServer) handle(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Route:         route,
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
		})
		status := s.failures[route]
		s.mu.Unlock()

		if status != 0 {
			writeError(w, status, http.StatusText(status))
			return
		}
		next(w, r)
	}
}

func (s *GitHubServer) listArtifacts(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("owner") + "/" + r.PathValue("repo")
	name := r.URL.Query().Get("name")

	s.mu.Lock()
	var matched []*github.Artifact
	for _, a := range s.artifacts[repo] {
		if name == "" || a.GetName() == name {
			matched = append(matched, a)
		}
	}
	s.mu.Unlock()

	page, perPage := paging(r)
	writeJSON(w, http.StatusOK, &github.ArtifactList{
		TotalCount: github.Int64(int64(len(matched))),
		Artifacts:  pageOf(matched, page, perPage),
	})
}

func (s *GitHubServer) deleteArtifact(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("owner") + "/" + r.PathValue("repo")
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.artifacts[repo] {
		if a.GetID() == id {
			s.artifacts[repo] = append(s.artifacts[repo][:i], s.artifacts[repo][i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Not Found")
}

func (s *GitHubServer) listComments(w http.ResponseWriter, r *http.Request) {
	key, ok := pathIssueKey(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	s.mu.Lock()
	all := append([]*github.IssueComment(nil), s.comments[key]...)
	s.mu.Unlock()

	page, perPage := paging(r)
	writeJSON(w, http.StatusOK, pageOf(all, page, perPage))
}

func (s *GitHubServer) createComment(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	var in github.IssueComment
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	s.mu.Lock()
	c := s.storeComment(r.PathValue("owner")+"/"+r.PathValue("repo"), number, s.BotLogin, in.GetBody())
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, c)
}

func (s *GitHubServer) editComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	var in github.IssueComment
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, list := range s.comments {
		for _, c := range list {
			if c.GetID() == id {
				c.Body = github.String(in.GetBody())
				c.UpdatedAt = &github.Timestamp{Time: time.Now().UTC()}
				writeJSON(w, http.StatusOK, c)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "Not Found")
}

func (s *GitHubServer) repoInstallation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, &github.Installation{ID: github.Int64(s.InstallationID)})
}

func (s *GitHubServer) app(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, &github.App{ID: github.Int64(1), Slug: github.String(s.AppSlug)})
}

func (s *GitHubServer) accessToken(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != strconv.FormatInt(s.InstallationID, 10) {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusCreated, &github.InstallationToken{
		Token:     github.String(s.InstallationToken),
		ExpiresAt: &github.Timestamp{Time: time.Now().Add(time.Hour).UTC()},
	})
}

// storeComment must be called with s.mu held.
func (s *GitHubServer) storeComment(repo string, issue int, author, body string) *github.IssueComment {
	s.nextID++
	now := github.Timestamp{Time: time.Now().UTC()}
	c := &github.IssueComment{
		ID:        github.Int64(s.nextID),
		Body:      github.String(body),
		User:      &github.User{Login: github.String(author)},
		CreatedAt: &now,
		UpdatedAt: &now,
		HTMLURL:   github.String(fmt.Sprintf("https://github.com/%s/pull/%d#issuecomment-%d", repo, issue, s.nextID)),
	}
	key := issueKey(repo, issue)
	s.comments[key] = append(s.comments[key], c)
	return c
}

func issueKey(repo string, issue int) string {
	return repo + "#" + strconv.Itoa(issue)
}

func pathIssueKey(r *http.Request) (string, bool) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		return "", false
	}
	return issueKey(r.PathValue("owner")+"/"+r.PathValue("repo"), number), true
}

// paging reads page and per_page with the GitHub defaults of 1 and 30.
func paging(r *http.Request) (page, perPage int) {
	page, perPage = 1, 30
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = v
	}
	return page, perPage
}

func pageOf[T any](items []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("X-GitHub-Request-Id", "FAKE:"+strconv.Itoa(status))
	writeJSON(w, status, map[string]string{
		"message":           message,
		"documentation_url": "https://docs.github.com/rest",
	})
}

// ArtifactFixture builds a github.Artifact with the fields the resolver reads.
func ArtifactFixture(id int64, name string, expiresAt time.Time, expired bool, runID int64) *github.Artifact {
	return &github.Artifact{
		ID:          github.Int64(id),
		Name:        github.String(name),
		SizeInBytes: github.Int64(1 << 20),
		Expired:     github.Bool(expired),
		CreatedAt:   &github.Timestamp{Time: expiresAt.Add(-90 * 24 * time.Hour)},
		ExpiresAt:   &github.Timestamp{Time: expiresAt},
		WorkflowRun: &github.ArtifactWorkflowRun{
			ID:         github.Int64(runID),
			HeadBranch: github.String("main"),
		},
	}
}

// SortedIDs returns the ids of artifacts in ascending order.
func SortedIDs(artifacts []*github.Artifact) []int64 {
	ids := make([]int64, 0, len(artifacts))
	for _, a := range artifacts {
		ids = append(ids, a.GetID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
