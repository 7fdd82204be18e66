package config

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func v4Store(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	store.SetIntValue("config.version", 4)
	return store
}

func TestMigrate_AlreadyCurrent(t *testing.T) {
	store := NewStore()
	store.SetIntValue("config.version", CurrentVersion)

	changed, err := Migrate(store, testLogger())

	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMigrate_MissingVersionAssumesCurrent(t *testing.T) {
	store := NewStore()
	store.SetProfileStrValue("snapshots.include_folders", "/a:/b", "1")

	changed, err := Migrate(store, testLogger())

	require.NoError(t, err)
	assert.False(t, changed)
	// Nothing to do, the legacy key is untouched.
	assert.Equal(t, "/a:/b", store.ProfileStrValue("snapshots.include_folders", "", "1"))
}

func TestMigrate_BelowFloor(t *testing.T) {
	store := NewStore()
	store.SetIntValue("config.version", 3)
	store.SetProfileStrValue("snapshots.include_folders", "/a", "1")

	changed, err := Migrate(store, testLogger())

	require.ErrorIs(t, err, ErrConfigVersionTooOld)
	assert.False(t, changed)
	// The store must not be partially migrated.
	assert.Equal(t, 3, store.IntValue("config.version", 0))
	assert.Equal(t, "/a", store.ProfileStrValue("snapshots.include_folders", "", "1"))
}

func TestMigrate_V4IncludeFolders(t *testing.T) {
	store := v4Store(t)
	store.SetProfileStrValue("snapshots.include_folders", "/a:/b", "1")
	store.SetProfileStrValue("snapshots.exclude_patterns", ".cache*:*~", "1")

	changed, err := Migrate(store, testLogger())

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, CurrentVersion, store.IntValue("config.version", 0))

	assert.Equal(t, []PathEntry{
		{Value: "/a", Type: 0},
		{Value: "/b", Type: 0},
	}, store.ProfilePathList("snapshots.include", "1"))
	assert.Equal(t, []string{".cache*", "*~"}, store.ProfileStringList("snapshots.exclude", "1"))

	assert.False(t, store.HasProfileKey("snapshots.include_folders", "1"))
	assert.False(t, store.HasProfileKey("snapshots.exclude_patterns", "1"))
}

func TestMigrate_V4IncludeFoldersWithExtraFields(t *testing.T) {
	store := v4Store(t)
	store.SetProfileStrValue("snapshots.include_folders", "/home/user|1:/etc", "1")

	_, err := Migrate(store, testLogger())

	require.NoError(t, err)
	assert.Equal(t, []PathEntry{
		{Value: "/home/user", Type: 0},
		{Value: "/etc", Type: 0},
	}, store.ProfilePathList("snapshots.include", "1"))
}

func TestMigrate_V4DefaultExcludes(t *testing.T) {
	store := v4Store(t)

	_, err := Migrate(store, testLogger())

	require.NoError(t, err)
	assert.Equal(t, []string{
		".gvfs", ".cache*", "[Cc]ache*", ".thumbnails*",
		"[Tt]rash*", "*.backup*", "*~",
	}, store.ProfileStringList("snapshots.exclude", "1"))
}

func TestMigrate_V5ScheduleRemap(t *testing.T) {
	store := NewStore()
	store.SetIntValue("config.version", 5)
	store.SetProfileIntValue("snapshots.automatic_backup_mode", 20, "1")
	store.SetProfileIntValue("snapshots.automatic_backup_time", 1345, "1")
	store.SetProfileIntValue("snapshots.automatic_backup_anacron_period", 3, "1")
	store.SetProfileBoolValue("snapshots.full_rsync.take_snapshot_regardless_of_changes", true, "1")
	store.SetStrValue("qt4.diff.params", "-u")
	store.SetStrValue("gnome.ssh.agent", "1")
	store.SetStrValue("kde.wallet", "1")

	changed, err := Migrate(store, testLogger())

	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, 20, store.ProfileIntValue("schedule.mode", 0, "1"))
	assert.Equal(t, 1345, store.ProfileIntValue("schedule.time", 0, "1"))
	assert.Equal(t, 3, store.ProfileIntValue("schedule.repeatedly.period", 0, "1"))
	assert.True(t, store.ProfileBoolValue("snapshots.take_snapshot_regardless_of_changes", false, "1"))
	assert.False(t, store.HasProfileKey("snapshots.automatic_backup_mode", "1"))

	assert.Equal(t, "-u", store.StrValue("qt.diff.params", ""))
	assert.False(t, store.HasKey("gnome.ssh.agent"))
	assert.False(t, store.HasKey("kde.wallet"))
}

func TestMigrate_AllProfiles(t *testing.T) {
	store := v4Store(t)
	store.SetStrValue("profiles", "1:2")
	store.SetProfileStrValue("snapshots.include_folders", "/a", "1")
	store.SetProfileStrValue("snapshots.include_folders", "/b", "2")

	_, err := Migrate(store, testLogger())

	require.NoError(t, err)
	assert.Equal(t, []PathEntry{{Value: "/a"}}, store.ProfilePathList("snapshots.include", "1"))
	assert.Equal(t, []PathEntry{{Value: "/b"}}, store.ProfilePathList("snapshots.include", "2"))
}

func TestMigrate_Idempotent(t *testing.T) {
	store := v4Store(t)
	store.SetProfileStrValue("snapshots.include_folders", "/a", "1")

	changed, err := Migrate(store, testLogger())
	require.NoError(t, err)
	require.True(t, changed)
	after := store.Keys()

	changed, err = Migrate(store, testLogger())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, after, store.Keys())
}
