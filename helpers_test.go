package nativeci

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/randalmurphal/nativeci/config"
	"github.com/randalmurphal/nativeci/logging"
	"github.com/randalmurphal/nativeci/testutil"
)

var fixedNow = time.Date(2024, 3, 1, 12, 30, 45, 123_000_000, time.UTC)

// newTestRuntime returns a runtime whose GitHub clients talk to server, for
// a pull_request run on acme/app PR 42.
func newTestRuntime(t *testing.T, server *testutil.GitHubServer) (*Runtime, *MemoryOutputs) {
	t.Helper()

	outputs := NewMemoryOutputs()
	inv := &Invocation{
		EventName:         EventPullRequest,
		Repository:        "acme/app",
		ServerURL:         "https://github.com",
		RunID:             777,
		PullRequestNumber: 42,
		IssueNumber:       42,
	}
	if server != nil {
		inv.APIURL = server.URL
	}
	return &Runtime{
		Invocation: inv,
		Outputs:    outputs,
		Logger:     logging.New(logging.ModeText, io.Discard, slog.LevelDebug),
		Now:        func() time.Time { return fixedNow },
	}, outputs
}

// resolveInputs resolves step inputs from memory, ignoring project files.
func resolveInputs(t *testing.T, inputs, env map[string]string) *config.Resolved {
	t.Helper()

	cfg := InputConfig(
		func(name string) string { return inputs[name] },
		func(name string) string { return env[name] },
		logging.New(logging.ModeText, io.Discard, slog.LevelWarn),
	)
	return config.NewResolverWithPaths(cfg, "", "").Resolve()
}

func testAppKey(t *testing.T) string {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}
