package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local stores files in a directory on disk.
type Local struct {
	dir string
}

// NewLocal creates dir if needed and returns a store rooted there.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("NewLocal: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("NewLocal: creating %q: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the root directory.
func (l *Local) Dir() string {
	return l.dir
}

// Save writes to a temporary file in the same directory and renames it
// into place, so readers never observe a partially written statement.
func (l *Local) Save(ctx context.Context, name string, r io.Reader) error {
	if !ValidName(name) {
		return fmt.Errorf("Save: %q: %w", name, ErrInvalidName)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("Save: %w: %w", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(l.dir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("Save: creating temp file: %w: %w", ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("Save: writing %q: %w: %w", name, ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("Save: closing %q: %w: %w", name, ErrStorage, err)
	}
	if err := os.Rename(tmpName, filepath.Join(l.dir, name)); err != nil {
		return fmt.Errorf("Save: renaming %q: %w: %w", name, ErrStorage, err)
	}
	return nil
}

// Open opens the named file for reading.
func (l *Local) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("Open: %q: %w", name, ErrNotFound)
	}

	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("Open: %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("Open: %q: %w: %w", name, ErrStorage, err)
	}
	return f, nil
}

var _ Store = (*Local)(nil)
