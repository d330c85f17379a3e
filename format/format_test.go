package format

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestCommandFormatsFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	path := filepath.Join(t.TempDir(), "en.json")
	if err := os.WriteFile(path, []byte(`{"A":"a"}`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	hook := New([]string{"sh", "-c", `printf formatted > "$0"`})
	if err := hook.Format(context.Background(), path); err != nil {
		t.Fatalf("Format: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "formatted" {
		t.Fatalf("file = %q, want formatted", data)
	}
}

func TestCommandFailureIncludesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	hook := Command{"sh", "-c", `echo "bad indent in $0" >&2; exit 3`}
	err := hook.Format(context.Background(), "en.json")
	if err == nil {
		t.Fatal("expected error from failing formatter")
	}
	if !strings.Contains(err.Error(), "bad indent in en.json") {
		t.Fatalf("error %q does not include formatter output", err)
	}
}

func TestNewEmptyIsNop(t *testing.T) {
	if _, ok := New(nil).(Nop); !ok {
		t.Fatal("New(nil) should return Nop")
	}
	if err := (Nop{}).Format(context.Background(), "x"); err != nil {
		t.Fatalf("Nop.Format: %v", err)
	}
}
