package config

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/kmattheis/snapsched/internal/models"
)

// ScheduleSpec returns the complete schedule settings of a profile.
func (s *Store) ScheduleSpec(profileID string) models.ScheduleSpec {
	return models.ScheduleSpec{
		Mode:         models.ScheduleMode(s.ProfileIntValue("schedule.mode", int(models.ModeDisabled), profileID)),
		Time:         s.ProfileIntValue("schedule.time", 0, profileID),
		Day:          s.ProfileIntValue("schedule.day", 1, profileID),
		Weekday:      s.ProfileIntValue("schedule.weekday", 7, profileID),
		CustomHours:  s.ProfileStrValue("schedule.custom_time", "8,12,18,23", profileID),
		RepeatPeriod: s.ProfileIntValue("schedule.repeatedly.period", 1, profileID),
		RepeatUnit:   models.TimeUnit(s.ProfileIntValue("schedule.repeatedly.unit", int(models.UnitDay), profileID)),
		Debug:        s.ProfileBoolValue("schedule.debug", false, profileID),
	}
}

// SetScheduleSpec stores the schedule settings of a profile.
func (s *Store) SetScheduleSpec(spec models.ScheduleSpec, profileID string) {
	s.SetProfileIntValue("schedule.mode", int(spec.Mode), profileID)
	s.SetProfileIntValue("schedule.time", spec.Time, profileID)
	s.SetProfileIntValue("schedule.day", spec.Day, profileID)
	s.SetProfileIntValue("schedule.weekday", spec.Weekday, profileID)
	s.SetProfileStrValue("schedule.custom_time", spec.CustomHours, profileID)
	s.SetProfileIntValue("schedule.repeatedly.period", spec.RepeatPeriod, profileID)
	s.SetProfileIntValue("schedule.repeatedly.unit", int(spec.RepeatUnit), profileID)
	s.SetProfileBoolValue("schedule.debug", spec.Debug, profileID)
}

// RetentionSpec returns the retention settings of a profile.
func (s *Store) RetentionSpec(profileID string) models.RetentionSpec {
	return models.RetentionSpec{
		Age: models.AgePolicy{
			Enabled: s.ProfileBoolValue("snapshots.remove_old_snapshots.enabled", true, profileID),
			Value:   s.ProfileIntValue("snapshots.remove_old_snapshots.value", 10, profileID),
			Unit:    models.TimeUnit(s.ProfileIntValue("snapshots.remove_old_snapshots.unit", int(models.UnitYear), profileID)),
		},
		Space: models.SpacePolicy{
			Enabled: s.ProfileBoolValue("snapshots.min_free_space.enabled", true, profileID),
			Value:   s.ProfileIntValue("snapshots.min_free_space.value", 1, profileID),
			Unit:    models.DiskUnit(s.ProfileIntValue("snapshots.min_free_space.unit", int(models.DiskUnitGB), profileID)),
		},
		Inode: models.InodePolicy{
			Enabled: s.ProfileBoolValue("snapshots.min_free_inodes.enabled", true, profileID),
			Percent: s.ProfileIntValue("snapshots.min_free_inodes.value", 2, profileID),
		},
		Smart: models.SmartPolicy{
			Enabled:         s.ProfileBoolValue("snapshots.smart_remove", false, profileID),
			KeepAllDays:     s.ProfileIntValue("snapshots.smart_remove.keep_all", 2, profileID),
			KeepOnePerDay:   s.ProfileIntValue("snapshots.smart_remove.keep_one_per_day", 7, profileID),
			KeepOnePerWeek:  s.ProfileIntValue("snapshots.smart_remove.keep_one_per_week", 4, profileID),
			KeepOnePerMonth: s.ProfileIntValue("snapshots.smart_remove.keep_one_per_month", 24, profileID),
			KeepNamed:       s.ProfileBoolValue("snapshots.dont_remove_named_snapshots", true, profileID),
		},
	}
}

// WakeConfig returns the optional Wake-on-LAN settings of a profile.
func (s *Store) WakeConfig(profileID string) models.WakeConfig {
	return models.WakeConfig{
		Enabled:     s.ProfileBoolValue("schedule.wake.enabled", false, profileID),
		MACAddress:  s.ProfileStrValue("schedule.wake.mac", "", profileID),
		BroadcastIP: s.ProfileStrValue("schedule.wake.broadcast", "255.255.255.255", profileID),
	}
}

// RemoteConfig returns the SSH settings used for remote pruning. A
// configured max-arg-length below 700 is rejected immediately rather than
// clamped, so misconfiguration is never masked.
func (s *Store) RemoteConfig(profileID string) (models.RemoteConfig, error) {
	maxArg := s.ProfileIntValue("snapshots.ssh.max_arg_length", 0, profileID)
	if maxArg != 0 && maxArg < 700 {
		return models.RemoteConfig{}, fmt.Errorf(
			"ssh max arg length %d is too low to run commands", maxArg)
	}

	return models.RemoteConfig{
		Host:         s.ProfileStrValue("snapshots.ssh.host", "", profileID),
		Port:         s.ProfileIntValue("snapshots.ssh.port", 22, profileID),
		User:         s.ProfileStrValue("snapshots.ssh.user", CurrentUserName(), profileID),
		KeyPath:      s.ProfileStrValue("snapshots.ssh.private_key_file", "", profileID),
		MaxArgLength: maxArg,
		PruneInBackground: s.ProfileBoolValue(
			"snapshots.smart_remove.run_remote_in_background", false, profileID),
	}, nil
}

// SnapshotsPath returns the backup destination of a profile.
func (s *Store) SnapshotsPath(profileID string) string {
	return s.ProfileStrValue("snapshots.path", "", profileID)
}

// EngineCommand returns the external snapshot engine command line of a
// profile. Empty when no engine is configured.
func (s *Store) EngineCommand(profileID string) string {
	return s.ProfileStrValue("snapshots.engine.command", "", profileID)
}

// EnginePruneCommand returns the command line that prunes old snapshots,
// used for the remote background prune. Empty when not configured.
func (s *Store) EnginePruneCommand(profileID string) string {
	return s.ProfileStrValue("snapshots.engine.prune_command", "", profileID)
}

// DeviceUUID returns the cached device identifier of the backup
// destination, used as fallback when live resolution fails.
func (s *Store) DeviceUUID(profileID string) string {
	return s.ProfileStrValue("snapshots.path.uuid", "", profileID)
}

// SetDeviceUUID caches the resolved device identifier.
func (s *Store) SetDeviceUUID(uuid, profileID string) {
	s.SetProfileStrValue("snapshots.path.uuid", uuid, profileID)
}

// IsConfigured reports whether the profile has both a destination and at
// least one include entry.
func (s *Store) IsConfigured(profileID string) bool {
	return s.SnapshotsPath(profileID) != "" &&
		len(s.ProfilePathList("snapshots.include", profileID)) > 0
}

// NiceOnCron reports whether scheduled runs are wrapped with nice.
func (s *Store) NiceOnCron(profileID string) bool {
	return s.ProfileBoolValue("snapshots.cron.nice", true, profileID)
}

// IoniceOnCron reports whether scheduled runs are wrapped with ionice.
func (s *Store) IoniceOnCron(profileID string) bool {
	return s.ProfileBoolValue("snapshots.cron.ionice", true, profileID)
}

// RedirectStdoutInCron reports whether scheduled runs discard stdout.
func (s *Store) RedirectStdoutInCron(profileID string) bool {
	return s.ProfileBoolValue("snapshots.cron.redirect_stdout", true, profileID)
}

// RedirectStderrInCron reports whether scheduled runs discard stderr. The
// default is true only for configured profiles so that a half-set-up
// profile still surfaces its errors.
func (s *Store) RedirectStderrInCron(profileID string) bool {
	return s.ProfileBoolValue("snapshots.cron.redirect_stderr", s.IsConfigured(profileID), profileID)
}

// JobIdentity returns the stable per-profile key used to name the
// timestamp artifact: profile id plus the sanitized profile name.
func (s *Store) JobIdentity(profileID string) string {
	name := strings.ReplaceAll(s.ProfileName(profileID), " ", "_")
	return profileID + "_" + name
}

// CurrentUserName returns the login name used for per-user artifacts
// (udev rules file, default SSH user).
func CurrentUserName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
