// Package paths provides directory resolution for djboot following XDG conventions.
package paths

import (
	"path/filepath"
	"runtime"
)

// Dirs holds the resolved directory paths for djboot data, config, and cache.
type Dirs struct {
	DataDir   string
	ConfigDir string
	CacheDir  string
}

// Env is the interface for environment variable lookups.
// Implementations must return "" for unset variables.
type Env interface {
	Get(key string) string
}

// ResolveDirs computes the data, config, and cache directories based on
// environment variables and platform defaults.
//
// Resolution order for the data directory:
//  1. DJBOOT_DATA_DIR env var (if set)
//  2. macOS: ~/Library/Application Support/djboot
//  3. XDG_DATA_HOME/djboot (if set)
//  4. ~/.local/share/djboot
//
// Config and cache follow the same scheme with DJBOOT_CONFIG_DIR /
// XDG_CONFIG_HOME / ~/.config and DJBOOT_CACHE_DIR / XDG_CACHE_HOME / ~/.cache.
//
// The homeDir parameter must be an absolute path to the user's home directory.
// This function does not touch the filesystem (no mkdir).
// ~ inside env vars is treated as literal (not expanded).
func ResolveDirs(env Env, homeDir string) Dirs {
	return ResolveDirsWithOS(env, homeDir, IsDarwin())
}

// IsDarwin returns true if the current OS is macOS.
// Exported for testing purposes.
func IsDarwin() bool {
	return runtime.GOOS == "darwin"
}

// ResolveDirsWithOS is like ResolveDirs but accepts an explicit OS flag for testing.
func ResolveDirsWithOS(env Env, homeDir string, isDarwin bool) Dirs {
	return Dirs{
		DataDir:   resolveDir(env, homeDir, isDarwin, "DJBOOT_DATA_DIR", "XDG_DATA_HOME", filepath.Join("Library", "Application Support"), filepath.Join(".local", "share")),
		ConfigDir: resolveDir(env, homeDir, isDarwin, "DJBOOT_CONFIG_DIR", "XDG_CONFIG_HOME", filepath.Join("Library", "Preferences"), ".config"),
		CacheDir:  resolveDir(env, homeDir, isDarwin, "DJBOOT_CACHE_DIR", "XDG_CACHE_HOME", filepath.Join("Library", "Caches"), ".cache"),
	}
}

func resolveDir(env Env, homeDir string, isDarwin bool, override, xdgVar, darwinBase, posixBase string) string {
	if v := env.Get(override); v != "" {
		return v
	}
	if isDarwin {
		return filepath.Join(homeDir, darwinBase, "djboot")
	}
	if v := env.Get(xdgVar); v != "" {
		return filepath.Join(v, "djboot")
	}
	return filepath.Join(homeDir, posixBase, "djboot")
}
