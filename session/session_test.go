package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/minios-linux/lokey/picker"
)

func newSession(t *testing.T) (*Session, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := OpenAt(filepath.Join(dir, "state", "session.json"), filepath.Join(dir, "project"))
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	resource := filepath.Join(dir, "en.json")
	if err := os.WriteFile(resource, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return s, resource
}

func TestFilePathRespectsXDG(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	got, err := FilePath()
	if err != nil {
		t.Fatalf("FilePath: %v", err)
	}
	if want := filepath.Join("/tmp/xdg-state", "lokey", "session.json"); got != want {
		t.Fatalf("FilePath() = %q, want %q", got, want)
	}
}

func TestResolvePicksOnceThenCaches(t *testing.T) {
	s, resource := newSession(t)

	calls := 0
	p := picker.Func(func(context.Context) (string, error) {
		calls++
		return resource, nil
	})

	for i := 0; i < 3; i++ {
		got, err := s.Resolve(context.Background(), p)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != resource {
			t.Fatalf("Resolve() = %q, want %q", got, resource)
		}
	}
	if calls != 1 {
		t.Fatalf("picker called %d times, want 1", calls)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		t.Fatalf("session file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("session file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestForgetInvalidates(t *testing.T) {
	s, resource := newSession(t)
	if err := s.Remember(resource); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if err := s.Forget(); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if got := s.Resource(); got != "" {
		t.Fatalf("Resource() after Forget = %q", got)
	}

	_, err := s.Resolve(context.Background(), picker.Static{})
	if !errors.Is(err, picker.ErrCanceled) {
		t.Fatalf("Resolve with canceling picker = %v", err)
	}
}

func TestResourceDropsMissingFile(t *testing.T) {
	s, resource := newSession(t)
	if err := s.Remember(resource); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if err := os.Remove(resource); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := s.Resource(); got != "" {
		t.Fatalf("Resource() = %q, want empty for missing file", got)
	}
}

func TestSessionsArePerProject(t *testing.T) {
	s, resource := newSession(t)
	other, err := OpenAt(s.path, filepath.Join(t.TempDir(), "other"))
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}

	if err := s.Remember(resource); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if got := other.Resource(); got != "" {
		t.Fatalf("other project sees %q", got)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if store := Load(path); len(store) != 0 {
		t.Fatalf("Load(invalid) = %v, want empty", store)
	}
}
