// Package guard serializes load-merge-write cycles on resource documents.
//
// Within one process, Lock gives each document path its own mutex. Across
// processes a Snapshot records the MD5 checksum of the bytes a cycle read;
// Verify re-reads the document right before writing and reports ErrStale
// when someone else changed it in between, so the cycle aborts instead of
// losing their update.
package guard

import (
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrStale reports a document that changed after it was read.
var ErrStale = errors.New("document changed on disk since it was read")

var (
	mu    sync.Mutex
	locks = make(map[string]*sync.Mutex)
)

// Hash computes the MD5 hex digest of data.
func Hash(data []byte) string {
	return fmt.Sprintf("%x", md5.Sum(data))
}

// Lock acquires the in-process lock for path and returns its release
// function.
func Lock(path string) (unlock func()) {
	m := pathLock(path)
	m.Lock()
	return m.Unlock
}

func pathLock(path string) *sync.Mutex {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	mu.Lock()
	defer mu.Unlock()

	m, ok := locks[key]
	if !ok {
		m = &sync.Mutex{}
		locks[key] = m
	}
	return m
}

// Snapshot is the checksum of a document as it was read.
type Snapshot struct {
	Path string
	Sum  string
}

// Take records the checksum of data read from path.
func Take(path string, data []byte) Snapshot {
	return Snapshot{Path: path, Sum: Hash(data)}
}

// Verify re-reads the document and fails with ErrStale when its checksum
// no longer matches.
func (s Snapshot) Verify() error {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return fmt.Errorf("re-reading %s: %w", s.Path, err)
	}
	return s.Check(data)
}

// Check compares data, freshly read by the caller, with the snapshot.
func (s Snapshot) Check(data []byte) error {
	if Hash(data) != s.Sum {
		return fmt.Errorf("%s: %w", s.Path, ErrStale)
	}
	return nil
}
