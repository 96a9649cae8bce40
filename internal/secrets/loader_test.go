package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("JOB_MATCHER_TEST_TOKEN", "from-env")

	got, err := Load(Source{Name: "api token", Value: "inline", File: path, Env: "JOB_MATCHER_TEST_TOKEN"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadValueThenEnv(t *testing.T) {
	t.Setenv("JOB_MATCHER_TEST_TOKEN", " from-env ")

	got, err := Load(Source{Value: "inline", Env: "JOB_MATCHER_TEST_TOKEN"})
	if err != nil || got != "inline" {
		t.Fatalf("expected inline secret, got %q (%v)", got, err)
	}

	got, err = Load(Source{Env: "JOB_MATCHER_TEST_TOKEN"})
	if err != nil || got != "from-env" {
		t.Fatalf("expected env secret, got %q (%v)", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(Source{Name: "corpus token"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(Source{File: empty}); err == nil {
		t.Fatalf("expected error for empty file")
	}

	if _, err := Load(Source{File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
