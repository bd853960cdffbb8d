package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend kinds accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// FileBackend stores the progress blob as a JSON file. Writes go to a
// temporary file that is renamed over the target, so a crash never leaves a
// half-written store behind.
type FileBackend struct {
	path string
}

var _ Backend = (*FileBackend)(nil)

// NewFileBackend returns a backend writing to path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the file the backend writes to.
func (f *FileBackend) Path() string {
	return f.path
}

// Read returns the file contents, or nil if the file doesn't exist.
func (f *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress file: %w", err)
	}
	return data, nil
}

// Write atomically replaces the file contents.
func (f *FileBackend) Write(_ context.Context, blob []byte) error {
	if err := EnsureDir(f.path); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".progress-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (f *FileBackend) Close() error {
	return nil
}

// OpenBackend opens a backend of the given kind at path.
func OpenBackend(kind, path string) (Backend, error) {
	switch kind {
	case BackendSQLite, "":
		b, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return b, nil
	case BackendFile:
		return NewFileBackend(path), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", kind, BackendSQLite, BackendFile)
	}
}
