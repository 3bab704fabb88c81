package scaffold

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/fs"
)

// Settings module references written into the generated entry points.
// Local invocation (manage.py) defaults to development settings; server entry
// points (wsgi/asgi) default to production settings. The asymmetry is
// intentional.
const (
	DevSettingsModule  = "config.settings.dev"
	ProdSettingsModule = "config.settings.prod"
)

// RewriteEntryPoints patches the settings-module reference in the three
// generated entry points. The generator emits "<project>.settings"; the inner
// package has since been renamed to config and the settings split into a
// package, so the references must be retargeted.
//
// Every substitution must match at least once; a zero-match substitution means
// the generator's output format drifted, and the whole operation fails with
// E_ENTRY_POINT_DRIFT rather than leaving a silently broken project.
func RewriteEntryPoints(fsys fs.FS, projectDir, projectName string) error {
	oldRef := projectName + ".settings"

	rewrites := []struct {
		relPath string
		newRef  string
		perm    os.FileMode
	}{
		{"manage.py", DevSettingsModule, 0755},
		{filepath.Join("config", "wsgi.py"), ProdSettingsModule, 0644},
		{filepath.Join("config", "asgi.py"), ProdSettingsModule, 0644},
	}

	for _, rw := range rewrites {
		path := filepath.Join(projectDir, rw.relPath)
		if err := substituteFile(fsys, path, rw.relPath, oldRef, rw.newRef, rw.perm); err != nil {
			return err
		}
	}
	return nil
}

// substituteFile replaces old with new in the file at path, failing if the
// pattern does not occur.
func substituteFile(fsys fs.FS, path, relPath, old, new string, perm os.FileMode) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return errors.WrapWithDetails(errors.EEntryPointDrift,
			"failed to read "+relPath, err,
			map[string]string{"file": relPath})
	}

	content := string(data)
	if !strings.Contains(content, old) {
		return errors.NewWithDetails(errors.EEntryPointDrift,
			relPath+" does not reference "+old+"; generator output format has changed",
			map[string]string{"file": relPath, "pattern": old})
	}

	updated := strings.ReplaceAll(content, old, new)
	if err := fs.WriteFileAtomic(fsys, path, []byte(updated), perm); err != nil {
		return errors.WrapWithDetails(errors.EEntryPointDrift,
			"failed to write "+relPath, err,
			map[string]string{"file": relPath})
	}
	return nil
}
