package main

import (
	"os"

	"github.com/kmattheis/snapsched/internal/config"
	"github.com/kmattheis/snapsched/internal/services/cron"
	"github.com/kmattheis/snapsched/internal/services/notify"
	"github.com/kmattheis/snapsched/internal/services/udev"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Rebuild the crontab entries and device rules from all profiles",
	Long: `Compile every profile's schedule settings and install the resulting
triggers: previously generated crontab entries are replaced and
device-attach rules are rewritten. Profiles without a schedule install
nothing.`,
	RunE: checkConfig,
}

func checkConfig(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}

	executable, err := os.Executable()
	if err != nil {
		log.Error().Err(err).Msg("cannot determine own executable path")
		return err
	}

	notifier := notify.New(log.Logger)
	devices := udev.New(log.Logger, config.CurrentUserName())
	cronSvc := cron.New(log.Logger, devices, notifier)

	entries := cronSvc.Entries(store, executable)

	if _, err := devices.Save(); err != nil {
		// Rules need root; report but keep the time triggers working.
		notifier.Error("udev", err.Error())
	}

	current, err := cron.ReadCrontab()
	if err != nil {
		log.Error().Err(err).Msg("failed to read crontab")
		return err
	}

	updated := cron.AppendGenerated(cron.StripGenerated(current), entries)
	if err := cron.WriteCrontab(updated); err != nil {
		log.Error().Err(err).Msg("failed to write crontab")
		return err
	}

	// Device UUIDs may have been freshly cached during compilation.
	if err := store.Save(); err != nil {
		log.Warn().Err(err).Msg("failed to persist config")
	}

	log.Info().Int("entries", len(entries)).Msg("schedule installed")
	return nil
}
