// Package due decides whether an elapsed-time schedule is due to run,
// comparing "now" against the persisted last-run timestamp with
// unit-specific calendar arithmetic.
package due

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kmattheis/snapsched/internal/models"
	"github.com/rs/zerolog"
)

// stampFormat is the single timestamp stored in the per-profile spool
// file.
const stampFormat = "20060102150405"

// Service defines the interface for the due-ness gate.
type Service interface {
	IsDue(spec models.ScheduleSpec, spoolPath string, now time.Time) bool
	RecordRun(spoolPath string, now time.Time) error
}

// Impl implements the due Service interface.
type Impl struct {
	logger zerolog.Logger
}

// New creates a due service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{logger: logger}
}

// IsDue reports whether the profile should run now. Only the elapsed-time
// and device-triggered modes consult the last-run timestamp; every other
// mode runs whenever its trigger fires. A missing or unreadable timestamp
// means "never run": a lost record must never block backups, so the gate
// favors a false due over a false not-due.
func (s *Impl) IsDue(spec models.ScheduleSpec, spoolPath string, now time.Time) bool {
	if spec.Mode != models.ModeRepeated && spec.Mode != models.ModeOnDevice {
		return true
	}

	lastRun, ok := s.LastRun(spoolPath)
	if !ok {
		return true
	}

	return OlderThan(lastRun, now, spec.RepeatPeriod, spec.RepeatUnit)
}

// LastRun reads the persisted last-run timestamp. ok is false when the
// file is missing, unreadable or unparseable.
func (s *Impl) LastRun(spoolPath string) (time.Time, bool) {
	content, err := os.ReadFile(spoolPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", spoolPath).
				Msg("cannot read last-run timestamp, assuming never run")
		}
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(stampFormat, strings.TrimSpace(string(content)), time.Local)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", spoolPath).
			Msg("malformed last-run timestamp, assuming never run")
		return time.Time{}, false
	}
	return t, true
}

// RecordRun persists now as the last successful run. Callers must only
// record after the backup actually completed.
func (s *Impl) RecordRun(spoolPath string, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(spoolPath), 0o755); err != nil {
		return fmt.Errorf("creating spool directory: %w", err)
	}

	tmp := spoolPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(now.Format(stampFormat)+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing last-run timestamp: %w", err)
	}
	if err := os.Rename(tmp, spoolPath); err != nil {
		return fmt.Errorf("replacing last-run timestamp: %w", err)
	}
	return nil
}

// OlderThan reports whether t lies further in the past than value units,
// using the calendar arithmetic of the unit's granularity bucket.
func OlderThan(t, now time.Time, value int, unit models.TimeUnit) bool {
	switch {
	case unit <= models.UnitHour:
		// Strict wall-clock subtraction, no calendar rounding.
		return t.Before(now.Add(-time.Duration(value) * time.Hour))

	case unit <= models.UnitDay:
		// Date-only comparison, time of day ignored.
		return !dateOf(t).After(dateOf(now).AddDate(0, 0, -value))

	case unit <= models.UnitWeek:
		// Weeks snap to Monday boundaries rather than sliding 7-day
		// windows.
		boundary := dateOf(now).AddDate(0, 0, -mondayIndex(now)-7*(value-1))
		return dateOf(t).Before(boundary)

	default:
		// Walk back month boundaries starting just before the current
		// day. Granularities coarser than a month use the same walk.
		start := dateOf(now).AddDate(0, 0, -(now.Day() + 1))
		year, month, day := start.Date()
		for i := 0; i < value-1; i++ {
			if month == time.January {
				month = time.December
				year--
			} else {
				month--
			}
		}
		boundary := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		return dateOf(t).Before(boundary)
	}
}

// dateOf truncates to midnight, keeping the location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayIndex returns the day-of-week with Monday as 0.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
