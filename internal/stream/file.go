package stream

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/geo"
)

// Open opens a source document for reading.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, geo.Wrap(geo.ErrResourceIO, "open", err)
	}
	return f, nil
}

// AtomicFile collects output in a temporary file next to its destination
// and moves it into place on Commit. A destination is never left truncated.
type AtomicFile struct {
	*os.File
	path string
	done bool
}

// CreateAtomic creates the temporary file for path, creating parent
// directories as needed.
func CreateAtomic(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, geo.Wrap(geo.ErrResourceIO, "create output directory", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, geo.Wrap(geo.ErrResourceIO, "create output", err)
	}
	return &AtomicFile{File: f, path: path}, nil
}

// Path returns the final destination.
func (a *AtomicFile) Path() string {
	return a.path
}

// Commit flushes and renames the temporary file to its destination.
func (a *AtomicFile) Commit() error {
	if a.done {
		return nil
	}
	a.done = true

	if err := a.Sync(); err != nil {
		a.discard()
		return geo.Wrap(geo.ErrResourceIO, "sync output", err)
	}
	if err := a.File.Close(); err != nil {
		_ = os.Remove(a.Name())
		return geo.Wrap(geo.ErrResourceIO, "close output", err)
	}
	if err := os.Chmod(a.Name(), 0644); err != nil {
		log.Warn().Err(err).Str("path", a.Name()).Msg("Failed to set output permissions")
	}
	if err := os.Rename(a.Name(), a.path); err != nil {
		_ = os.Remove(a.Name())
		return geo.Wrap(geo.ErrResourceIO, "rename output", err)
	}
	return nil
}

// Abort removes the temporary file. It is a no-op after Commit.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	a.done = true
	a.discard()
}

func (a *AtomicFile) discard() {
	if err := a.File.Close(); err != nil {
		log.Debug().Err(err).Str("path", a.Name()).Msg("Failed to close temporary file")
	}
	if err := os.Remove(a.Name()); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("path", a.Name()).Msg("Failed to remove temporary file")
	}
}
