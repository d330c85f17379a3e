// Package resource provides access to translation resource documents:
// checking that a document is writable, reading and writing its bytes,
// and choosing the codec that turns those bytes into a catalog.
package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store reads and writes resource documents.
type Store interface {
	// CheckWritable fails with *ReadOnlyError when path cannot be written.
	CheckWritable(path string) error
	// Read returns the document bytes or a *ReadError.
	Read(path string) ([]byte, error)
	// Write replaces the document or fails with a *WriteError.
	Write(path string, data []byte) error
}

// FS is a Store on the local filesystem.
type FS struct{}

// CheckWritable implements Store. The file is opened for writing without
// truncation and closed again.
func (FS) CheckWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ReadError{Path: path, Err: err}
		}
		return &ReadOnlyError{Path: path, Err: err}
	}
	if info.IsDir() {
		return &ReadOnlyError{Path: path, Err: fmt.Errorf("is a directory")}
	}
	if info.Mode().Perm()&0o222 == 0 {
		return &ReadOnlyError{Path: path, Err: fs.ErrPermission}
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return &ReadOnlyError{Path: path, Err: err}
	}
	return f.Close()
}

// Read implements Store.
func (FS) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return data, nil
}

// Write implements Store. The document is written to a temporary file in
// the same directory and renamed over the original, keeping its mode.
func (FS) Write(path string, data []byte) error {
	if err := WriteFileAtomic(path, data); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// WriteFileAtomic replaces path with data via a temporary file and rename.
// An existing file's permissions are kept; new files get 0644.
func WriteFileAtomic(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
