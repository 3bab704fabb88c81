// Package store persists the local project index (projects.json).
// Files are written atomically via temp file + rename.
package store

import (
	"path/filepath"
	"time"

	"github.com/djboot/djboot/internal/fs"
)

// Store handles persistence of the project index.
type Store struct {
	FS      fs.FS            // filesystem interface for stubbing
	DataDir string           // resolved DJBOOT_DATA_DIR
	Now     func() time.Time // injectable clock for deterministic tests
}

// NewStore creates a new Store with the given dependencies.
func NewStore(filesystem fs.FS, dataDir string, now func() time.Time) *Store {
	return &Store{
		FS:      filesystem,
		DataDir: dataDir,
		Now:     now,
	}
}

// IndexPath returns the path to projects.json.
func (s *Store) IndexPath() string {
	return filepath.Join(s.DataDir, "projects.json")
}

// LocksDir returns the directory holding per-target lock files.
func (s *Store) LocksDir() string {
	return filepath.Join(s.DataDir, "locks")
}
