package comment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xanzy/go-gitlab"
)

// newTestGitLabProvider creates a GitLabProvider pointing to a test server.
func newTestGitLabProvider(t *testing.T, handler http.Handler) *GitLabProvider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := gitlab.NewClient("test-token", gitlab.WithBaseURL(server.URL+"/api/v4"))
	if err != nil {
		t.Fatalf("create gitlab client: %v", err)
	}

	return &GitLabProvider{client: client, projectID: "123"}
}

func noteJSON(id int, author, body string) map[string]any {
	return map[string]any{
		"id":     id,
		"body":   body,
		"author": map[string]any{"username": author},
	}
}

func TestNewGitLabProvider(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		baseURL   string
		projectID string
		wantErr   bool
	}{
		{"gitlab.com", "token", "", "group/app", false},
		{"self-hosted", "token", "https://gitlab.example.com", "123", false},
		{"missing token", "", "", "123", true},
		{"missing project", "token", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGitLabProvider(tt.token, tt.baseURL, tt.projectID)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGitLabProvider error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGitLabProvider_UpdatesManagedNote(t *testing.T) {
	var updatedBody string
	var listQuery string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/merge_requests/7/notes"):
			listQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode([]map[string]any{
				noteJSON(1, "alice", "## Build\n\nnot mine"),
				noteJSON(2, "project_123_bot", "## Build\n\nold"),
			})
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/merge_requests/7/notes/2"):
			var in struct {
				Body string `json:"body"`
			}
			json.NewDecoder(r.Body).Decode(&in)
			updatedBody = in.Body
			json.NewEncoder(w).Encode(noteJSON(2, "project_123_bot", in.Body))
		default:
			http.Error(w, fmt.Sprintf("unexpected %s %s", r.Method, r.URL.Path), http.StatusNotFound)
		}
	})

	provider := newTestGitLabProvider(t, handler)
	result, err := NewUpserter(provider, WithBotLogin("project_123_bot")).
		Upsert(context.Background(), 7, "Build", "## Build\n\nnew")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if result.Created || result.Comment.ID != 2 {
		t.Errorf("result = %+v, want update of note 2", result)
	}
	if updatedBody != "## Build\n\nnew" {
		t.Errorf("updated body = %q", updatedBody)
	}
	if !strings.Contains(listQuery, "sort=asc") || !strings.Contains(listQuery, "per_page=100") {
		t.Errorf("list query = %q", listQuery)
	}
}

func TestGitLabProvider_CreatesNote(t *testing.T) {
	var created bool

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/notes"):
			json.NewEncoder(w).Encode([]map[string]any{})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/merge_requests/7/notes"):
			created = true
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(noteJSON(10, "project_123_bot", "## Build"))
		default:
			http.Error(w, "unexpected", http.StatusNotFound)
		}
	})

	provider := newTestGitLabProvider(t, handler)
	result, err := NewUpserter(provider).Upsert(context.Background(), 7, "Build", "## Build")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !created || !result.Created || result.Comment.ID != 10 {
		t.Errorf("created = %v, result = %+v", created, result)
	}
}

func TestGitLabProvider_ListError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"401 Unauthorized"}`))
	})

	provider := newTestGitLabProvider(t, handler)
	_, _, err := provider.List(context.Background(), 7, 1, PerPage)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGitLabProvider_CurrentLogin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v4/user" {
			http.Error(w, "unexpected", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": 99, "username": "project_123_bot_abc"})
	})

	provider := newTestGitLabProvider(t, handler)
	login, err := provider.CurrentLogin(context.Background())
	if err != nil {
		t.Fatalf("CurrentLogin: %v", err)
	}
	if login != "project_123_bot_abc" {
		t.Errorf("login = %q", login)
	}
}
