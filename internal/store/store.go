// Package store keeps generated statement files.
package store

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned by Open when no file exists under the name.
	ErrNotFound = errors.New("file not found")
	// ErrStorage wraps every backend failure.
	ErrStorage = errors.New("storage failure")
	// ErrInvalidName is returned for names that could escape the store root.
	ErrInvalidName = errors.New("invalid file name")
)

// StatementSuffix is appended to every persisted statement.
const StatementSuffix = "_transactions.pdf"

// Store persists named files.
type Store interface {
	// Save writes r under name, replacing any existing file.
	Save(ctx context.Context, name string, r io.Reader) error

	// Open returns a reader for the named file or ErrNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

var whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

// StatementFileName derives the persisted file name for a person.
// Whitespace runs, Unicode spaces included, become a single underscore. Path separators are
// replaced as well so the result is always a single path element.
func StatementFileName(personName string) string {
	name := whitespaceRun.ReplaceAllString(personName, "_")
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	return name + StatementSuffix
}

// ValidName reports whether name is a single path element.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
