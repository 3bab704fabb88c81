package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/fs"
)

// SchemaVersion is the current schema version for all store files.
const SchemaVersion = "1.0"

// ProjectIndex represents projects.json. Keyed by the absolute project path,
// so the same name in different parent directories yields distinct entries.
type ProjectIndex struct {
	SchemaVersion string                  `json:"schema_version"`
	Projects      map[string]ProjectEntry `json:"projects"`
}

// ProjectEntry is one provisioned project in the index.
type ProjectEntry struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	CreatedAt     string `json:"created_at"`
	PythonVersion string `json:"python_version,omitempty"`
	Docker        bool   `json:"docker"`
}

// LoadIndex reads projects.json from the data directory.
// A missing file yields an empty index with the current schema version.
// Returns E_STORE_CORRUPT if the JSON is invalid or schema_version is
// missing or unsupported.
func (s *Store) LoadIndex() (ProjectIndex, error) {
	path := s.IndexPath()

	data, err := s.FS.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ProjectIndex{
				SchemaVersion: SchemaVersion,
				Projects:      make(map[string]ProjectEntry),
			}, nil
		}
		return ProjectIndex{}, errors.Wrap(errors.EStoreCorrupt, "failed to read projects.json", err)
	}

	var idx ProjectIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return ProjectIndex{}, errors.Wrap(errors.EStoreCorrupt, "invalid json in projects.json", err)
	}

	if idx.SchemaVersion == "" {
		return ProjectIndex{}, errors.New(errors.EStoreCorrupt, "projects.json: missing schema_version")
	}
	if idx.SchemaVersion != SchemaVersion {
		return ProjectIndex{}, errors.New(errors.EStoreCorrupt, "projects.json: unsupported schema_version: "+idx.SchemaVersion)
	}

	if idx.Projects == nil {
		idx.Projects = make(map[string]ProjectEntry)
	}

	return idx, nil
}

// UpsertProject records a provisioned project. Re-provisioning the same path
// replaces the entry. absPath is normalized via filepath.Clean.
func (s *Store) UpsertProject(idx ProjectIndex, name, absPath, pythonVersion string, docker bool, createdAt time.Time) ProjectIndex {
	absPath = filepath.Clean(absPath)
	idx.Projects[absPath] = ProjectEntry{
		Name:          name,
		Path:          absPath,
		CreatedAt:     createdAt.UTC().Format(time.RFC3339),
		PythonVersion: pythonVersion,
		Docker:        docker,
	}
	return idx
}

// RemoveProject drops the entry for absPath, if present.
func (s *Store) RemoveProject(idx ProjectIndex, absPath string) ProjectIndex {
	delete(idx.Projects, filepath.Clean(absPath))
	return idx
}

// SaveIndex writes projects.json atomically.
// Creates the data directory if it doesn't exist.
func (s *Store) SaveIndex(idx ProjectIndex) error {
	if err := s.FS.MkdirAll(s.DataDir, 0755); err != nil {
		return errors.Wrap(errors.EStoreCorrupt, "failed to create data directory", err)
	}

	// Indented for human readability
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return errors.Wrap(errors.EStoreCorrupt, "failed to marshal projects.json", err)
	}
	data = append(data, '\n')

	if err := fs.WriteFileAtomic(s.FS, s.IndexPath(), data, 0644); err != nil {
		return errors.Wrap(errors.EStoreCorrupt, "failed to write projects.json", err)
	}

	return nil
}

// SortedEntries returns the index entries ordered newest first, name as
// tiebreaker. Listing output depends on this being stable.
func (idx ProjectIndex) SortedEntries() []ProjectEntry {
	entries := make([]ProjectEntry, 0, len(idx.Projects))
	for _, e := range idx.Projects {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt != entries[j].CreatedAt {
			return entries[i].CreatedAt > entries[j].CreatedAt
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
