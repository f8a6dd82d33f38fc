package nativeci

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/randalmurphal/nativeci/artifact"
	cierrors "github.com/randalmurphal/nativeci/errors"
	"github.com/randalmurphal/nativeci/testutil"
)

func TestDeleteArtifacts(t *testing.T) {
	server := testutil.NewGitHubServer(t)
	server.AddArtifact("acme/app", testutil.ArtifactFixture(9, "ios-build-42", artifactTime, false, 900))
	server.AddArtifact("acme/app", testutil.ArtifactFixture(8, "ios-build-42", artifactTime, false, 800))

	rt, outputs := newTestRuntime(t, server)
	result, err := DeleteArtifacts(context.Background(), rt, DeleteArtifactsOptions{
		Credentials: tokenCreds(),
		IDs:         []int64{9, 8, 7},
	})
	if err != nil {
		t.Fatalf("DeleteArtifacts: %v", err)
	}

	if !reflect.DeepEqual(result.Deleted, []int64{9, 8}) || !reflect.DeepEqual(result.Missing, []int64{7}) {
		t.Errorf("result = %+v", result)
	}
	if left := server.Artifacts("acme/app"); len(left) != 0 {
		t.Errorf("artifacts left = %d", len(left))
	}
	if got, _ := outputs.Get(OutputDeletedIDs); got != "9 8 7" {
		t.Errorf("deleted-ids = %q", got)
	}
}

func TestDeleteArtifacts_DryRun(t *testing.T) {
	server := testutil.NewGitHubServer(t)
	server.AddArtifact("acme/app", testutil.ArtifactFixture(9, "ios-build-42", artifactTime, false, 900))

	rt, outputs := newTestRuntime(t, server)
	result, err := DeleteArtifacts(context.Background(), rt, DeleteArtifactsOptions{
		Credentials: tokenCreds(),
		IDs:         []int64{9},
		DryRun:      true,
	})
	if err != nil {
		t.Fatalf("DeleteArtifacts: %v", err)
	}
	if !result.DryRun {
		t.Error("DryRun not reported")
	}
	if n := len(server.Requests(testutil.RouteDeleteArtifact)); n != 0 {
		t.Errorf("delete requests = %d, want 0", n)
	}
	if got, _ := outputs.Get(OutputDeletedIDs); got != "9" {
		t.Errorf("deleted-ids = %q", got)
	}
}

func TestDeleteArtifacts_NothingToDo(t *testing.T) {
	rt, outputs := newTestRuntime(t, nil)

	// No credentials are needed when there is nothing to delete.
	result, err := DeleteArtifacts(context.Background(), rt, DeleteArtifactsOptions{})
	if err != nil {
		t.Fatalf("DeleteArtifacts: %v", err)
	}
	if len(result.Deleted) != 0 {
		t.Errorf("result = %+v", result)
	}
	if got, ok := outputs.Get(OutputDeletedIDs); !ok || got != "" {
		t.Errorf("deleted-ids = %q (set %v)", got, ok)
	}
}

func TestDeleteArtifacts_Failure(t *testing.T) {
	server := testutil.NewGitHubServer(t)
	server.Fail(testutil.RouteDeleteArtifact, http.StatusInternalServerError)

	rt, _ := newTestRuntime(t, server)
	result, err := DeleteArtifacts(context.Background(), rt, DeleteArtifactsOptions{
		Credentials: tokenCreds(),
		IDs:         []int64{1, 2},
	})
	if !errors.Is(err, artifact.ErrDeleteFailed) {
		t.Fatalf("error = %v, want ErrDeleteFailed", err)
	}
	if !reflect.DeepEqual(result.Failed, []int64{1, 2}) {
		t.Errorf("failed = %v, want both ids attempted", result.Failed)
	}
}

func TestDeleteArtifacts_Validation(t *testing.T) {
	rt, _ := newTestRuntime(t, nil)
	rt.Invocation.Repository = ""

	_, err := DeleteArtifacts(context.Background(), rt, DeleteArtifactsOptions{IDs: []int64{1}})
	want := []string{InputGitHubToken, InputRepository}
	if got := cierrors.Fields(err); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestDeleteArtifactsOptionsFrom(t *testing.T) {
	cfg := resolveInputs(t,
		map[string]string{InputGitHubToken: "tok", InputArtifactIDs: "9 8,7\n", InputDryRun: "yes"},
		map[string]string{"GITHUB_REPOSITORY": "acme/app"},
	)
	opts, err := DeleteArtifactsOptionsFrom(cfg)
	if err != nil {
		t.Fatalf("DeleteArtifactsOptionsFrom: %v", err)
	}
	if !reflect.DeepEqual(opts.IDs, []int64{9, 8, 7}) || !opts.DryRun || opts.Repository != "acme/app" {
		t.Errorf("opts = %+v", opts)
	}

	bad := resolveInputs(t, map[string]string{InputArtifactIDs: "9 abc"}, nil)
	if _, err := DeleteArtifactsOptionsFrom(bad); !errors.Is(err, cierrors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}
