package scaffold

import (
	"path/filepath"

	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/fs"
)

// AuxDirs are the fixed auxiliary directories of a generated project.
// apps/ and common/ are importable packages; logs/ only needs to survive an
// empty checkout.
var AuxDirs = []string{"apps", "common", "envs", "logs"}

// ProvisionDirs creates the auxiliary directories with their marker files.
func ProvisionDirs(fsys fs.FS, projectDir string) error {
	for _, dir := range AuxDirs {
		if err := fsys.MkdirAll(filepath.Join(projectDir, dir), 0755); err != nil {
			return errors.Wrap(errors.ELayoutFailed, "failed to create "+dir, err)
		}
	}

	markers := []string{
		filepath.Join("apps", "__init__.py"),
		filepath.Join("common", "__init__.py"),
		filepath.Join("logs", ".gitkeep"),
	}
	for _, rel := range markers {
		path := filepath.Join(projectDir, rel)
		if err := fsys.WriteFile(path, nil, 0644); err != nil {
			return errors.Wrap(errors.ELayoutFailed, "failed to create "+rel, err)
		}
	}
	return nil
}
