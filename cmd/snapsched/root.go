package main

import (
	"os"
	"strings"

	"github.com/kmattheis/snapsched/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Configuration flags.
	configFile string
	profileID  string
	debug      bool
	quiet      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "snapsched",
	Short: "Scheduling and retention-policy core of a personal backup tool",
	Long: `snapsched decides when backup profiles are due, compiles their
schedule settings into crontab entries or device-attach rules, and
computes the retention cutoffs the snapshot engine prunes against.

The snapshot engine itself is external: configure it per profile and
snapsched will invoke it from scheduled backup-job runs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&profileID, "profile-id", "1", "profile to operate on")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output logs in JSON format")

	rootCmd.AddCommand(checkConfigCmd)
	rootCmd.AddCommand(backupJobCmd)
	rootCmd.AddCommand(statusCmd)
}

func setupLogging() {
	// Set output format
	if jsonOutput {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		output.FormatLevel = func(i interface{}) string {
			if s, ok := i.(string); ok {
				return strings.ToUpper(s)
			}
			return ""
		}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set log level
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// loadStore loads the configuration, runs pending schema migrations and
// persists the result.
func loadStore() (*config.Store, error) {
	path := configFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	store, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	changed, err := config.Migrate(store, log.Logger)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := store.Save(); err != nil {
			return nil, err
		}
		log.Info().Int("version", config.CurrentVersion).Msg("config schema migrated")
	}

	return store, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
