// Package testutil provides fakes and fixtures shared by the package tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// LoadFixture loads a file from the calling package's testdata directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", path))
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}
	return data
}

// LoadJSONFixture loads a fixture file and unmarshals it as JSON.
func LoadJSONFixture[T any](t testing.TB, path string) T {
	t.Helper()

	var result T
	if err := json.Unmarshal(LoadFixture(t, path), &result); err != nil {
		t.Fatalf("failed to parse JSON fixture %s: %v", path, err)
	}
	return result
}

// CopyFixture copies a testdata file into a fresh temporary directory
// and returns the new path.
func CopyFixture(t testing.TB, path string) string {
	t.Helper()

	dest := filepath.Join(t.TempDir(), filepath.Base(path))
	if err := os.WriteFile(dest, LoadFixture(t, path), 0o644); err != nil {
		t.Fatalf("failed to copy fixture %s: %v", path, err)
	}
	return dest
}

// WriteTree creates files under root, one per map entry, creating parent
// directories as needed. Keys use forward slashes.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// NewProject writes files into a fresh temporary directory and returns it.
func NewProject(t testing.TB, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	WriteTree(t, root, files)
	return root
}
