package main

import (
	"fmt"
	"time"

	"github.com/kmattheis/snapsched/internal/services/cron"
	"github.com/kmattheis/snapsched/internal/services/due"
	"github.com/kmattheis/snapsched/internal/services/retention"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the schedule and retention state of all profiles",
	Long: `Show each profile's compiled trigger, whether an elapsed-time
schedule is currently due, and the retention cutoffs that the next
backup job would prune against.`,
	RunE: showStatus,
}

func showStatus(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}

	dueSvc := due.New(log.Logger)
	retSvc := retention.New(log.Logger)
	now := time.Now()

	for _, id := range store.Profiles() {
		spec := store.ScheduleSpec(id)
		ret := store.RetentionSpec(id)
		trigger := cron.Compile(spec)

		fmt.Printf("Profile %s: %s\n", id, store.ProfileName(id))
		fmt.Printf("  Configured: %v\n", store.IsConfigured(id))
		fmt.Printf("  Schedule: %s\n", spec.Mode)

		switch trigger.Kind {
		case cron.TriggerNone:
			fmt.Println("  Trigger: none")
		case cron.TriggerCron:
			fmt.Printf("  Trigger: %s\n", trigger.Expr.Render())
		case cron.TriggerDevice:
			fmt.Printf("  Trigger: device attach (uuid %s)\n", store.DeviceUUID(id))
		}

		fmt.Printf("  Due now: %v\n", dueSvc.IsDue(spec, store.SpoolFile(id), now))
		if last, ok := dueSvc.LastRun(store.SpoolFile(id)); ok {
			fmt.Printf("  Last run: %s\n", last.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Println("  Last run: never")
		}

		fmt.Println()
		fmt.Println("  Retention:")
		if cutoff := retSvc.CutoffDate(ret.Age, now); ret.Age.Enabled {
			fmt.Printf("    Remove older than: %s\n", cutoff.Format("2006-01-02"))
		} else {
			fmt.Println("    Remove older than: disabled")
		}
		if min := retSvc.MinFreeSpaceMiB(ret.Space); min > 0 {
			fmt.Printf("    Min free space: %d MiB\n", min)
		} else {
			fmt.Println("    Min free space: disabled")
		}
		if ret.Inode.Enabled {
			fmt.Printf("    Min free inodes: %d%%\n", ret.Inode.Percent)
		} else {
			fmt.Println("    Min free inodes: disabled")
		}
		if buckets := retSvc.TieredBuckets(ret.Smart, now); buckets != nil {
			fmt.Println("    Tiered removal:")
			for _, b := range buckets {
				fmt.Printf("      %s from %s\n", b.Kind, b.Start.Format("2006-01-02"))
			}
		} else {
			fmt.Println("    Tiered removal: disabled")
		}
		fmt.Println()
	}

	return nil
}
