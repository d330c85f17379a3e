package localize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minios-linux/lokey/merge"
	"github.com/minios-linux/lokey/notify"
	"github.com/minios-linux/lokey/picker"
	"github.com/minios-linux/lokey/resource"
	"github.com/minios-linux/lokey/session"
)

func newAction(t *testing.T, store *memStore, p picker.Picker) (*Action, *notify.Recorder) {
	t.Helper()
	dir := t.TempDir()
	sess, err := session.OpenAt(filepath.Join(dir, "session.json"), dir)
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	rec := &notify.Recorder{}
	return &Action{
		Localizer: newLocalizer(store),
		Session:   sess,
		Picker:    p,
		Notify:    rec,
	}, rec
}

func TestActionRunPicksOnceAndCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	store := newMemStore(path, `{}`)

	picks := 0
	p := picker.Func(func(context.Context) (string, error) {
		picks++
		return path, nil
	})
	a, rec := newAction(t, store, p)

	for _, text := range []string{"Open", "Close", "Open"} {
		if _, ok := a.Run(context.Background(), &fakeSelection{text: text}); !ok {
			t.Fatalf("Run(%q) failed: %v", text, rec.Errors)
		}
	}
	if picks != 1 {
		t.Fatalf("picker asked %d times, want 1", picks)
	}
	if len(rec.Infos) != 3 || !strings.Contains(rec.Infos[2], "OPEN") {
		t.Fatalf("infos = %v", rec.Infos)
	}
	if store.writes != 2 {
		t.Fatalf("writes = %d, want 2 (third run reuses OPEN)", store.writes)
	}
}

func TestActionRunCanceledIsSilent(t *testing.T) {
	a, rec := newAction(t, newMemStore(doc, `{}`), picker.Static{})
	sel := &fakeSelection{text: "Hello"}

	if _, ok := a.Run(context.Background(), sel); ok {
		t.Fatal("Run should report failure when canceled")
	}
	if len(rec.Errors) != 0 {
		t.Fatalf("cancel should not notify, got %v", rec.Errors)
	}
	if len(sel.replaced) != 0 {
		t.Fatal("selection replaced after cancel")
	}
}

func TestActionRunReportsErrors(t *testing.T) {
	store := newMemStore(doc, `{"HELLO": "Hello", "HELLO_2": "Hello?"}`)
	a, rec := newAction(t, store, picker.Static{Path: doc})
	a.Session = nil

	if _, ok := a.Run(context.Background(), &fakeSelection{text: "hello!"}); ok {
		t.Fatal("Run should fail on conflict")
	}
	if len(rec.Errors) != 1 || !strings.Contains(rec.Errors[0], "HELLO_2") {
		t.Fatalf("errors = %v", rec.Errors)
	}
}

func TestActionRunEmptySelection(t *testing.T) {
	a, rec := newAction(t, newMemStore(doc, `{}`), picker.Static{Path: doc})
	if _, ok := a.Run(context.Background(), &fakeSelection{}); ok {
		t.Fatal("Run should fail for an empty selection")
	}
	if len(rec.Errors) != 1 || rec.Errors[0] != "Nothing is selected." {
		t.Fatalf("errors = %v", rec.Errors)
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&resource.ReadOnlyError{Path: "en.json", Err: os.ErrPermission}, "en.json is read only."},
		{&resource.ParseError{Path: "en.json", Err: errors.New("bad")}, "en.json is not a valid translation file: bad"},
		{&merge.ConflictError{Key: "A", Tried: []string{"A_2"}}, "Translation key conflict: A holds a different text and A_2 is taken."},
		{&merge.ConflictError{Key: "A", Tried: []string{"A_2", "A_3"}}, "Translation key conflict: A holds a different text and A_2, A_3 are taken."},
		{fmt.Errorf("localizing: %w", ErrInvalidText), "The selected text is not valid UTF-8."},
		{&resource.WriteError{Path: "en.json", Err: errors.New("disk full")}, "Could not write en.json: disk full"},
		{errors.New("other"), "other"},
	}
	for _, tc := range tests {
		if got := Message(tc.err); got != tc.want {
			t.Errorf("Message(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
