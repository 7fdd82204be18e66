package main

import (
	"github.com/kmattheis/snapsched/internal/services/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var backupJobCmd = &cobra.Command{
	Use:   "backup-job",
	Short: "Run the snapshot engine for a profile if it is due",
	Long: `Check the profile's repetition gate against the last-run timestamp
and, when due, wake the destination, invoke the configured snapshot
engine and evaluate the retention policy. Intended to be called from
the generated crontab entries.`,
	RunE: backupJob,
}

func backupJob(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}

	svc := runner.New(log.Logger)
	if err := svc.Run(cmd.Context(), store, profileID); err != nil {
		log.Error().Err(err).Str("profile", profileID).Msg("backup job failed")
		return err
	}
	return nil
}
