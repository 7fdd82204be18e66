package config

import (
	"os"
	"path/filepath"
)

const appDirName = "snapsched"

// DefaultConfigPath returns the default location of the configuration
// file: $XDG_CONFIG_HOME/snapsched/config.
func DefaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName, "config")
}

// DataDir returns the per-user data directory:
// $XDG_DATA_HOME/snapsched.
func DataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, appDirName)
}

// SpoolDir returns the directory holding the per-profile last-run
// timestamp files.
func SpoolDir() string {
	return filepath.Join(DataDir(), "spool")
}

// SpoolFile returns the timestamp file of one profile, keyed by its
// stable job identity.
func (s *Store) SpoolFile(profileID string) string {
	return filepath.Join(SpoolDir(), s.JobIdentity(profileID))
}
