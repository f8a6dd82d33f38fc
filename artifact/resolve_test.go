package artifact

import (
	"context"
	"errors"
	"testing"
	"time"

	cierrors "github.com/randalmurphal/nativeci/errors"
	"github.com/randalmurphal/nativeci/testutil"
)

// fakeLister serves pre-sorted lists by name and records the names asked for.
type fakeLister struct {
	lists map[string][]Artifact
	err   error
	calls []string
}

func (f *fakeLister) List(_ context.Context, _ Repository, name string) ([]Artifact, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	return f.lists[name], nil
}

func art(id int64, expired bool, expiresIn time.Duration) Artifact {
	return Artifact{ID: id, RunID: id * 10, Expired: expired, ExpiresAt: baseTime.Add(expiresIn)}
}

func TestSelect(t *testing.T) {
	prQuery := Query{Repository: testRepo, Name: "ios-build", PRNumber: 42, ReSign: true}

	tests := []struct {
		name     string
		query    Query
		prList   []Artifact
		baseList []Artifact
		wantNil  bool
		wantID   int64
		wantName string
		wantIDs  string
	}{
		{
			name:     "PR artifact with empty base list reports base name",
			query:    prQuery,
			prList:   []Artifact{art(9, false, 48*time.Hour)},
			wantID:   9,
			wantName: "ios-build",
			wantIDs:  "9",
		},
		{
			name:     "PR artifact preferred over base",
			query:    prQuery,
			prList:   []Artifact{art(9, false, 48*time.Hour)},
			baseList: []Artifact{art(5, false, 24*time.Hour)},
			wantID:   9,
			wantName: "ios-build-42",
			wantIDs:  "9",
		},
		{
			name:     "expired PR artifacts fall back to base",
			query:    prQuery,
			prList:   []Artifact{art(11, true, 72*time.Hour), art(9, true, 48*time.Hour)},
			baseList: []Artifact{art(5, false, 24*time.Hour)},
			wantID:   5,
			wantName: "ios-build-42",
			wantIDs:  "11 9",
		},
		{
			name:     "all expired",
			query:    prQuery,
			prList:   []Artifact{art(9, true, 48*time.Hour)},
			baseList: []Artifact{art(5, true, 24*time.Hour)},
			wantNil:  true,
		},
		{
			name:    "no candidates",
			query:   prQuery,
			wantNil: true,
		},
		{
			name:     "branch build",
			query:    Query{Repository: testRepo, Name: "ios-build"},
			baseList: []Artifact{art(6, true, 72*time.Hour), art(5, false, 24*time.Hour)},
			wantID:   5,
			wantName: "ios-build",
			wantIDs:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.query, tt.prList, tt.baseList, "")
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Select = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Select = nil")
			}
			if got.ID() != tt.wantID {
				t.Errorf("ID = %d, want %d", got.ID(), tt.wantID)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.JoinedPRArtifactIDs() != tt.wantIDs {
				t.Errorf("PR ids = %q, want %q", got.JoinedPRArtifactIDs(), tt.wantIDs)
			}
			wantURL := FormatURL("", testRepo, tt.wantID*10, tt.wantID)
			if got.URL != wantURL {
				t.Errorf("URL = %q, want %q", got.URL, wantURL)
			}
		})
	}
}

func TestSelect_NeverPicksExpiredOverUnexpired(t *testing.T) {
	q := Query{Repository: testRepo, Name: "ios-build", PRNumber: 3, ReSign: true}
	prList := []Artifact{art(1, true, 9*time.Hour), art(2, true, 8*time.Hour)}
	baseList := []Artifact{art(3, true, 7*time.Hour), art(4, false, 6*time.Hour), art(5, false, 5*time.Hour)}

	got := Select(q, prList, baseList, "")
	if got == nil || got.ID() != 4 {
		t.Fatalf("Select = %+v, want artifact 4", got)
	}
}

func TestResolver_ListsPRScopedFirst(t *testing.T) {
	lister := &fakeLister{lists: map[string][]Artifact{
		"ios-build-42": {art(9, false, time.Hour)},
	}}

	_, err := NewResolver(lister).Resolve(context.Background(),
		Query{Repository: testRepo, Name: "ios-build", PRNumber: 42, ReSign: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(lister.calls) != 2 || lister.calls[0] != "ios-build-42" || lister.calls[1] != "ios-build" {
		t.Errorf("calls = %v, want [ios-build-42 ios-build]", lister.calls)
	}
}

func TestResolver_SkipsPRScopedWithoutReSign(t *testing.T) {
	tests := []struct {
		name  string
		query Query
	}{
		{"re-sign off", Query{Repository: testRepo, Name: "ios-build", PRNumber: 42}},
		{"no pull request", Query{Repository: testRepo, Name: "ios-build", ReSign: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{}
			if _, err := NewResolver(lister).Resolve(context.Background(), tt.query); err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if len(lister.calls) != 1 || lister.calls[0] != "ios-build" {
				t.Errorf("calls = %v, want [ios-build]", lister.calls)
			}
		})
	}
}

func TestResolver_Validation(t *testing.T) {
	lister := &fakeLister{}
	_, err := NewResolver(lister).Resolve(context.Background(), Query{})

	if !errors.Is(err, cierrors.ErrMissingInput) {
		t.Fatalf("error = %v, want ErrMissingInput", err)
	}
	fields := cierrors.Fields(err)
	if len(fields) != 2 || fields[0] != "repository" || fields[1] != "name" {
		t.Errorf("fields = %v", fields)
	}
	if len(lister.calls) != 0 {
		t.Error("no listing should happen for an invalid query")
	}
}

func TestResolver_PropagatesListError(t *testing.T) {
	listErr := errors.New("boom")
	_, err := NewResolver(&fakeLister{err: listErr}).Resolve(context.Background(),
		Query{Repository: testRepo, Name: "ios-build"})
	if !errors.Is(err, listErr) {
		t.Errorf("error = %v, want %v", err, listErr)
	}
}

func TestResolver_AgainstServer(t *testing.T) {
	server := testutil.NewGitHubServer(t)
	server.AddArtifact("acme/app", testutil.ArtifactFixture(5, "ios-build", baseTime, false, 500))
	server.AddArtifact("acme/app", testutil.ArtifactFixture(9, "ios-build-42", baseTime.Add(time.Hour), false, 900))
	server.AddArtifact("acme/app", testutil.ArtifactFixture(8, "ios-build-42", baseTime.Add(-time.Hour), true, 800))

	resolver := NewResolver(NewLister(server.Client()), WithServerURL("https://ghe.example.com"))
	got, err := resolver.Resolve(context.Background(),
		Query{Repository: testRepo, Name: "ios-build", PRNumber: 42, ReSign: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil {
		t.Fatal("Resolve returned no result")
	}

	if got.Name != "ios-build-42" || got.ID() != 9 {
		t.Errorf("result = %q/%d, want ios-build-42/9", got.Name, got.ID())
	}
	if want := "https://ghe.example.com/acme/app/actions/runs/900/artifacts/9"; got.URL != want {
		t.Errorf("URL = %q, want %q", got.URL, want)
	}
	if got.JoinedPRArtifactIDs() != "9 8" {
		t.Errorf("PR ids = %q, want %q", got.JoinedPRArtifactIDs(), "9 8")
	}
}
