package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// CurrentVersion is the latest configuration schema version.
const CurrentVersion = 6

// minSupportedVersion is the oldest schema version that can still be
// migrated. Anything below was written by a release too old to upgrade
// from directly.
const minSupportedVersion = 4

// ErrConfigVersionTooOld marks a configuration below the supported
// migration floor. The process must terminate with exit code 2 when it
// sees this error; no partial migration is attempted.
var ErrConfigVersionTooOld = errors.New("config schema version is too old to migrate")

// defaultExcludePatterns is the legacy default of the version-4 exclude
// key, needed to migrate configurations that never overrode it.
const defaultExcludePatternsV4 = ".gvfs:.cache*:[Cc]ache*:.thumbnails*:[Tt]rash*:*.backup*:*~"

// migration is one step of the upgrade chain. Steps apply strictly in
// order of their target version and are each idempotent.
type migration struct {
	to    int
	apply func(s *Store) error
}

var migrations = []migration{
	{to: 5, apply: migrateToV5},
	{to: 6, apply: migrateToV6},
}

// Migrate upgrades the store to CurrentVersion. It returns true when the
// configuration was changed and must be persisted. A missing version key
// is treated as already current; a version below the supported floor
// returns ErrConfigVersionTooOld without touching the store.
func Migrate(s *Store, logger zerolog.Logger) (bool, error) {
	found := s.IntValue("config.version", CurrentVersion)

	if found >= CurrentVersion {
		return false, nil
	}

	if found < minSupportedVersion {
		return false, fmt.Errorf("config version %d is below the supported minimum %d: %w",
			found, minSupportedVersion, ErrConfigVersionTooOld)
	}

	for _, m := range migrations {
		if found >= m.to {
			continue
		}
		logger.Info().Int("version", m.to).Msg("migrating config schema")
		if err := m.apply(s); err != nil {
			return false, fmt.Errorf("migrating config to version %d: %w", m.to, err)
		}
	}

	s.SetIntValue("config.version", CurrentVersion)
	return true, nil
}

// migrateToV5 converts the colon-separated include/exclude strings into
// the numbered list form, with an explicit type flag on include entries.
func migrateToV5(s *Store) error {
	for _, profileID := range s.Profiles() {
		include := splitLegacyPaths(s.ProfileStrValue("snapshots.include_folders", "", profileID))
		entries := make([]PathEntry, 0, len(include))
		for _, path := range include {
			entries = append(entries, PathEntry{Value: path, Type: 0})
		}
		s.SetProfilePathList("snapshots.include", entries, profileID)

		excludeValue := s.ProfileStrValue(
			"snapshots.exclude_patterns", defaultExcludePatternsV4, profileID)
		var exclude []string
		if excludeValue != "" {
			exclude = strings.Split(excludeValue, ":")
		}
		s.SetProfileStringList("snapshots.exclude", exclude, profileID)

		s.RemoveProfileKey("snapshots.include_folders", profileID)
		s.RemoveProfileKey("snapshots.exclude_patterns", profileID)
	}
	return nil
}

// splitLegacyPaths parses the version-4 include format: colon-separated
// entries, each optionally carrying |-separated extra fields of which only
// the leading path survives.
func splitLegacyPaths(value string) []string {
	if value == "" {
		return nil
	}
	var paths []string
	for _, item := range strings.Split(value, ":") {
		fields := strings.SplitN(item, "|", 2)
		paths = append(paths, fields[0])
	}
	return paths
}

// migrateToV6 moves all schedule settings into a dedicated "schedule"
// namespace, drops the removed full-rsync feature namespace, renames the
// qt4 UI keys and removes the abandoned gnome/kde ones.
func migrateToV6(s *Store) error {
	remap := [][2]string{
		{"snapshots.automatic_backup_anacron_period", "schedule.repeatedly.period"},
		{"snapshots.automatic_backup_anacron_unit", "schedule.repeatedly.unit"},
		{"snapshots.automatic_backup_day", "schedule.day"},
		{"snapshots.automatic_backup_mode", "schedule.mode"},
		{"snapshots.automatic_backup_time", "schedule.time"},
		{"snapshots.automatic_backup_weekday", "schedule.weekday"},
		{"snapshots.custom_backup_time", "schedule.custom_time"},
		{"snapshots.full_rsync.take_snapshot_regardless_of_changes",
			"snapshots.take_snapshot_regardless_of_changes"},
	}

	for _, profileID := range s.Profiles() {
		for _, pair := range remap {
			s.RemapProfileKey(pair[0], pair[1], profileID)
		}
	}

	if err := s.RemapKeyRegex("qt4", "qt"); err != nil {
		return err
	}
	s.RemoveKeysStartsWith("gnome")
	s.RemoveKeysStartsWith("kde")
	return nil
}
