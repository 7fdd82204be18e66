package cron

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/kmattheis/snapsched/internal/config"
	"github.com/kmattheis/snapsched/internal/models"
	"github.com/kmattheis/snapsched/internal/services/notify"
	"github.com/rs/zerolog"
)

// generatedMarker tags crontab lines owned by snapsched. The marker line
// precedes each generated entry so user-written entries are never touched.
const generatedMarker = "# snapsched generated entry, do not edit"

// DeviceInstaller is the collaborator registering device-attach triggers.
type DeviceInstaller interface {
	ResolveUUID(path string) (string, error)
	AddRule(uuid, command string) error
}

// Service defines the interface for assembling the trigger set.
type Service interface {
	Entries(store *config.Store, executable string) []string
}

// Impl implements the cron Service interface.
type Impl struct {
	devices  DeviceInstaller
	notifier notify.Service
	logger   zerolog.Logger
}

// New creates a cron service.
func New(logger zerolog.Logger, devices DeviceInstaller, notifier notify.Service) *Impl {
	return &Impl{devices: devices, notifier: notifier, logger: logger}
}

// Entries compiles one crontab line per scheduled profile. Device-attach
// profiles are registered with the device installer instead. A profile
// that fails to compile is reported and skipped; the remaining profiles
// are unaffected. Profiles without a trigger are dropped entirely.
func (s *Impl) Entries(store *config.Store, executable string) []string {
	var lines []string

	for _, profileID := range store.Profiles() {
		spec := store.ScheduleSpec(profileID)
		trigger := Compile(spec)

		s.logger.Debug().
			Str("profile", store.ProfileName(profileID)).
			Stringer("mode", spec.Mode).
			Msg("compiling schedule")

		cmd := JobCommand(store, profileID, executable)

		switch trigger.Kind {
		case TriggerNone:
			continue

		case TriggerDevice:
			if err := s.installDeviceTrigger(store, profileID, cmd); err != nil {
				s.notifier.Error(store.ProfileName(profileID), err.Error())
			}

		case TriggerCron:
			if spec.Mode == models.ModeCustomHours {
				if err := ValidateCustomHours(spec.CustomHours); err != nil {
					s.notifier.Error(store.ProfileName(profileID), err.Error())
					continue
				}
			}
			lines = append(lines, trigger.Expr.Render()+" "+cmd.ShellString())
		}
	}

	return lines
}

// installDeviceTrigger resolves a stable identifier for the destination
// device and queues the attach rule. A previously cached identifier is the
// fallback when the drive is not currently connected.
func (s *Impl) installDeviceTrigger(store *config.Store, profileID string, cmd models.JobCommand) error {
	path := store.SnapshotsPath(profileID)
	if path == "" {
		return fmt.Errorf("profile has no snapshot path to resolve a device for")
	}

	uuid, err := s.devices.ResolveUUID(path)
	if err != nil {
		uuid = store.DeviceUUID(profileID)
		if uuid == "" {
			return fmt.Errorf("resolving device for %q: %w", path, err)
		}
		s.logger.Debug().Str("uuid", uuid).Msg("using cached device UUID")
	} else {
		store.SetDeviceUUID(uuid, profileID)
	}

	return s.devices.AddRule(uuid, strings.Join(cmd.Tokens(), " "))
}

// JobCommand composes the command line a trigger runs for the profile.
func JobCommand(store *config.Store, profileID, executable string) models.JobCommand {
	spec := store.ScheduleSpec(profileID)

	cmd := models.JobCommand{
		Executable:        executable,
		ProfileID:         profileID,
		ConfigPath:        store.Path(),
		DefaultConfigPath: config.DefaultConfigPath(),
		Debug:             spec.Debug,
		RedirectStdout:    store.RedirectStdoutInCron(profileID),
		RedirectStderr:    store.RedirectStderrInCron(profileID),
	}

	if store.IoniceOnCron(profileID) {
		if path, err := exec.LookPath("ionice"); err == nil {
			cmd.IonicePath = path
		}
	}
	if store.NiceOnCron(profileID) {
		if path, err := exec.LookPath("nice"); err == nil {
			cmd.NicePath = path
		}
	}

	return cmd
}

// StripGenerated removes all previously generated entries (marker line
// plus the entry following it) from crontab lines.
func StripGenerated(lines []string) []string {
	out := make([]string, 0, len(lines))
	skipNext := false
	for _, line := range lines {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.TrimSpace(line) == generatedMarker {
			skipNext = true
			continue
		}
		out = append(out, line)
	}
	return out
}

// AppendGenerated appends the fresh entries, each preceded by the marker
// line.
func AppendGenerated(lines, entries []string) []string {
	out := append([]string{}, lines...)
	for _, entry := range entries {
		out = append(out, generatedMarker, entry)
	}
	return out
}
