// Package core holds pure domain logic: project naming rules and secret generation.
package core

import (
	"fmt"

	"github.com/gosimple/slug"

	"github.com/djboot/djboot/internal/errors"
)

// Names that can never be used as a project name. "config" is the fixed inner
// package the generated skeleton is renamed to; the rest shadow Python modules
// Django imports at startup.
var reservedNames = map[string]bool{
	"config": true,
	"django": true,
	"test":   true,
	"site":   true,
}

// ValidateProjectName checks that name is usable as a Python package name,
// a settings module path component, and a Docker resource name component.
//
// Rules:
//   - non-empty
//   - first rune: letter or underscore
//   - remaining runes: letters, digits, underscore (ASCII only)
//   - not a reserved name
//
// Hyphens, spaces, and leading digits all produce projects that fail at
// import time, so they are rejected up front.
func ValidateProjectName(name string) error {
	if name == "" {
		return errors.New(errors.EEmptyName, "project name must not be empty")
	}
	for i, r := range name {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return errors.New(errors.EInvalidName,
					fmt.Sprintf("project name %q must not start with a digit", name))
			}
		default:
			return errors.New(errors.EInvalidName,
				fmt.Sprintf("project name %q must be a valid Python identifier (letters, digits, underscore)", name))
		}
	}
	if reservedNames[name] {
		return errors.New(errors.EInvalidName,
			fmt.Sprintf("project name %q is reserved", name))
	}
	return nil
}

// DockerName derives a Docker/compose-safe resource name from the project name.
// Underscores survive slugging, so the result stays aligned with the Python
// package name for simple names.
func DockerName(name string) string {
	return slug.Make(name)
}

// DatabaseName derives the default PostgreSQL database name for a project.
func DatabaseName(name string) string {
	return DockerName(name) + "_db"
}
