package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetupWorkspace(t *testing.T) {
	dir := SetupWorkspace(t, map[string]string{
		"snapshot.yaml":      "items: []\n",
		"nested/config.yaml": "policy: block\n",
	})

	got, err := os.ReadFile(filepath.Join(dir, "nested", "config.yaml"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "policy: block\n" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteFileAndRewrite(t *testing.T) {
	path := WriteFile(t, "q3.yaml", "a")
	Rewrite(t, path, "b")

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "b" {
		t.Errorf("content = %q, want %q", got, "b")
	}
	if filepath.Base(path) != "q3.yaml" {
		t.Errorf("path = %s", path)
	}
}

func TestPoints(t *testing.T) {
	if p := Points(2.5); p == nil || *p != 2.5 {
		t.Errorf("Points(2.5) = %v", p)
	}
}
