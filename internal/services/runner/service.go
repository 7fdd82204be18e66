// Package runner orchestrates one scheduled backup run for a profile:
// due-ness gate, optional destination wake-up, the external snapshot
// engine, timestamp recording and the retention follow-up.
package runner

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/kmattheis/snapsched/internal/config"
	"github.com/kmattheis/snapsched/internal/services/due"
	"github.com/kmattheis/snapsched/internal/services/notify"
	"github.com/kmattheis/snapsched/internal/services/remote"
	"github.com/kmattheis/snapsched/internal/services/retention"
	"github.com/kmattheis/snapsched/internal/services/wake"
	"github.com/rs/zerolog"
)

// Engine runs the external snapshot engine. Snapshot creation and deletion
// live outside this program; the runner only invokes the configured
// command.
type Engine interface {
	Run(ctx context.Context, command string) error
}

// ExecEngine runs the engine command through the shell.
type ExecEngine struct {
	logger zerolog.Logger
}

// Run executes the command and waits for it to finish.
func (e *ExecEngine) Run(ctx context.Context, command string) error {
	e.logger.Info().Str("command", command).Msg("running snapshot engine")
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("snapshot engine failed: %w (output: %s)", err, string(out))
	}
	return nil
}

// Service defines the interface for the backup runner.
type Service interface {
	Run(ctx context.Context, store *config.Store, profileID string) error
}

// Impl implements the runner Service interface.
type Impl struct {
	dueSvc       due.Service
	wakeSvc      wake.Service
	retentionSvc retention.Service
	remoteSvc    remote.Service
	notifier     notify.Service
	engine       Engine
	now          func() time.Time
	logger       zerolog.Logger
}

// New creates a runner service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		dueSvc:       due.New(logger),
		wakeSvc:      wake.New(logger),
		retentionSvc: retention.New(logger),
		remoteSvc:    remote.New(logger),
		notifier:     notify.New(logger),
		engine:       &ExecEngine{logger: logger},
		now:          time.Now,
		logger:       logger,
	}
}

// NewWithServices creates a runner service with custom collaborators (for
// testing).
func NewWithServices(
	logger zerolog.Logger,
	dueSvc due.Service,
	wakeSvc wake.Service,
	retentionSvc retention.Service,
	remoteSvc remote.Service,
	notifier notify.Service,
	engine Engine,
	now func() time.Time,
) *Impl {
	return &Impl{
		dueSvc:       dueSvc,
		wakeSvc:      wakeSvc,
		retentionSvc: retentionSvc,
		remoteSvc:    remoteSvc,
		notifier:     notifier,
		engine:       engine,
		now:          now,
		logger:       logger,
	}
}

// Run executes one due-gated backup run for the profile. The run is a
// no-op when the elapsed-time gate says the profile is not due yet. The
// fresh last-run timestamp is recorded only after the engine succeeded.
func (s *Impl) Run(ctx context.Context, store *config.Store, profileID string) error {
	profileName := store.ProfileName(profileID)
	spec := store.ScheduleSpec(profileID)
	spoolPath := store.SpoolFile(profileID)

	if !s.dueSvc.IsDue(spec, spoolPath, s.now()) {
		s.logger.Info().
			Str("profile", profileName).
			Int("period", spec.RepeatPeriod).
			Stringer("unit", spec.RepeatUnit).
			Msg("not due yet, skipping")
		return nil
	}

	if wakeCfg := store.WakeConfig(profileID); wakeCfg.Enabled {
		if err := s.wakeSvc.Wake(ctx, wakeCfg); err != nil {
			s.notifier.Error(profileName, err.Error())
			return fmt.Errorf("waking destination: %w", err)
		}
	}

	engineCmd := store.EngineCommand(profileID)
	if engineCmd == "" {
		err := fmt.Errorf("no snapshot engine configured for profile %s", profileID)
		s.notifier.Error(profileName, err.Error())
		return err
	}

	if err := s.engine.Run(ctx, engineCmd); err != nil {
		s.notifier.Error(profileName, err.Error())
		return err
	}

	if err := s.dueSvc.RecordRun(spoolPath, s.now()); err != nil {
		// Never fail a completed backup over the timestamp; the gate
		// degrades to "always due" which is the safe direction.
		s.logger.Warn().Err(err).Msg("recording last-run timestamp failed")
	}

	s.evaluateRetention(ctx, store, profileID)
	return nil
}

// evaluateRetention logs the advisory retention state after a successful
// run and kicks off the optional remote background prune. Failures here
// are reported but never fail the run.
func (s *Impl) evaluateRetention(ctx context.Context, store *config.Store, profileID string) {
	profileName := store.ProfileName(profileID)
	spec := store.RetentionSpec(profileID)
	path := store.SnapshotsPath(profileID)
	today := s.now()

	cutoff := s.retentionSvc.CutoffDate(spec.Age, today)
	s.logger.Info().
		Str("profile", profileName).
		Str("cutoff", cutoff.Format("2006-01-02")).
		Msg("age-based retention cutoff")

	for _, bucket := range s.retentionSvc.TieredBuckets(spec.Smart, today) {
		s.logger.Debug().
			Stringer("tier", bucket.Kind).
			Str("start", bucket.Start.Format("2006-01-02")).
			Str("end", bucket.End.Format("2006-01-02")).
			Msg("smart retention tier")
	}

	if path != "" {
		if below, err := s.retentionSvc.SpaceBelowThreshold(spec.Space, path); err != nil {
			s.logger.Warn().Err(err).Msg("free-space check failed")
		} else if below {
			s.logger.Warn().
				Int("min_mib", s.retentionSvc.MinFreeSpaceMiB(spec.Space)).
				Msg("destination below free-space threshold, pruning advised")
		}

		if below, err := s.retentionSvc.InodesBelowThreshold(spec.Inode, path); err != nil {
			s.logger.Warn().Err(err).Msg("free-inode check failed")
		} else if below {
			s.logger.Warn().
				Int("min_percent", spec.Inode.Percent).
				Msg("destination below free-inode threshold, pruning advised")
		}
	}

	remoteCfg, err := store.RemoteConfig(profileID)
	if err != nil {
		s.notifier.Error(profileName, err.Error())
		return
	}
	pruneCmd := store.EnginePruneCommand(profileID)
	if !remoteCfg.PruneInBackground || pruneCmd == "" {
		return
	}
	if err := s.remoteSvc.RunPrune(ctx, remoteCfg, pruneCmd); err != nil {
		s.notifier.Error(profileName, err.Error())
	}
}
