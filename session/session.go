// Package session remembers which resource document a project localizes
// into, so the user is asked only once.
//
// Sessions are stored in the XDG state directory:
//
//	$XDG_STATE_HOME/lokey/session.json  (default: ~/.local/state/lokey/)
//
// The file is a JSON object keyed by absolute project root:
//
//	{
//	  "/home/me/app": { "resource": "/home/me/app/src/assets/i18n/en.json" }
//	}
//
// File permissions are 0600 (owner read/write only).
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/lokey/picker"
)

const (
	stateDirName = "lokey"
	fileName     = "session.json"
)

// Entry is the cached choice for one project.
type Entry struct {
	Resource string    `json:"resource"`
	ChosenAt time.Time `json:"chosenAt"`
}

// Store holds all sessions, keyed by absolute project root.
type Store map[string]*Entry

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// stateDir returns the XDG state directory for lokey.
func stateDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, stateDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", stateDirName), nil
}

// FilePath returns the session file path.
func FilePath() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the session store. A missing or invalid file is an empty
// store.
func Load(path string) Store {
	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		log.Debug().Err(err).Str("path", path).Msg("ignoring unreadable session file")
		return make(Store)
	}
	return store
}

// Save writes the session store with 0600 permissions.
func Save(path string, store Store) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

// Session is the cached resource choice for one project root. It is
// passed explicitly to whoever needs the target document.
type Session struct {
	Root string
	path string
}

// Open returns the session for the project at root, stored in the default
// session file.
func Open(root string) (*Session, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path, root)
}

// OpenAt returns the session for root stored in the file at path.
func OpenAt(path, root string) (*Session, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Session{Root: abs, path: path}, nil
}

// Resource returns the cached document, or "" when there is none or it no
// longer exists.
func (s *Session) Resource() string {
	e := Load(s.path)[s.Root]
	if e == nil || e.Resource == "" {
		return ""
	}
	if info, err := os.Stat(e.Resource); err != nil || info.IsDir() {
		log.Debug().Str("resource", e.Resource).Msg("cached resource file is gone")
		return ""
	}
	return e.Resource
}

// Remember caches path as the project's document.
func (s *Session) Remember(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	store := Load(s.path)
	store[s.Root] = &Entry{Resource: abs, ChosenAt: time.Now().UTC()}
	return Save(s.path, store)
}

// Forget drops the cached choice so the next Resolve asks again.
func (s *Session) Forget() error {
	store := Load(s.path)
	if _, ok := store[s.Root]; !ok {
		return nil
	}
	delete(store, s.Root)
	return Save(s.path, store)
}

// Resolve returns the cached document or asks p and remembers the answer.
func (s *Session) Resolve(ctx context.Context, p picker.Picker) (string, error) {
	if cached := s.Resource(); cached != "" {
		log.Debug().Str("resource", cached).Msg("using cached resource file")
		return cached, nil
	}

	path, err := p.Pick(ctx)
	if err != nil {
		return "", err
	}
	if err := s.Remember(path); err != nil {
		log.Warn().Err(err).Msg("could not remember resource file")
	}
	return path, nil
}
