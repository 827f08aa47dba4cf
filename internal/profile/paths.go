// Package profile resolves the on-disk layout for a selah profile. Each
// profile owns its own database, logs and lock under ~/.selah/profiles/<name>.
package profile

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.selah.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".selah")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// LockPath returns the lock file path for a profile.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// DBPath returns the profile-owned selah.db path.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "selah.db")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "selahd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with owner-only permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
