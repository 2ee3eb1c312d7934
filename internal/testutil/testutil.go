// Package testutil provides fixtures shared by the package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to name inside a fresh temporary directory and
// returns the full path. The directory is removed when the test completes.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	return filepath.Join(SetupWorkspace(t, map[string]string{name: content}), name)
}

// SetupWorkspace creates a temporary directory holding files, keyed by
// relative path, and returns the directory.
func SetupWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file %s: %v", path, err)
		}
	}
	return dir
}

// Rewrite replaces the content of an existing fixture file.
func Rewrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to rewrite %s: %v", path, err)
	}
}

// Points returns a pointer to an estimate value.
func Points(v float64) *float64 {
	return &v
}
