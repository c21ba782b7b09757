// Package source exposes race-results files as named datasets.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrUnavailable marks a source that cannot be read at all.
var ErrUnavailable = errors.New("source unavailable")

// Stamp is the cheap change indicator of a source.
type Stamp struct {
	ModTime time.Time
	Size    int64
}

// Equal reports whether two stamps describe the same file state.
func (s Stamp) Equal(o Stamp) bool {
	return s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

// Source is a named, re-readable byte stream.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
	Stat(ctx context.Context) (Stamp, error)
}

// FileSource reads a results file from disk.
type FileSource struct {
	name string
	path string
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a file-backed source.
func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: filepath.Clean(path)}
}

// Name returns the dataset name.
func (f *FileSource) Name() string { return f.name }

// Path returns the cleaned file path.
func (f *FileSource) Path() string { return f.path }

// Open opens the file for reading.
func (f *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, f.name, err)
	}
	return fh, nil
}

// Stat returns the file's modification time and size.
func (f *FileSource) Stat(ctx context.Context) (Stamp, error) {
	if err := ctx.Err(); err != nil {
		return Stamp{}, err
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return Stamp{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, f.name, err)
	}
	if info.IsDir() {
		return Stamp{}, fmt.Errorf("%w: %s: %s is a directory", ErrUnavailable, f.name, f.path)
	}
	return Stamp{ModTime: info.ModTime(), Size: info.Size()}, nil
}

// Fingerprint returns the xxhash64 of content as a hex string.
func Fingerprint(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// ReadAll opens src and returns its full content.
func ReadAll(ctx context.Context, src Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck // read-only handle

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, src.Name(), err)
	}
	return b, nil
}
