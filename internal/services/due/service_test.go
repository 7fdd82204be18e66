package due

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kmattheis/snapsched/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestOlderThan_Hours(t *testing.T) {
	now := date(2026, time.August, 26, 12, 0)

	assert.True(t, OlderThan(date(2026, time.August, 26, 9, 59), now, 2, models.UnitHour))
	assert.False(t, OlderThan(date(2026, time.August, 26, 10, 0), now, 2, models.UnitHour))
	assert.False(t, OlderThan(date(2026, time.August, 26, 11, 30), now, 2, models.UnitHour))
}

func TestOlderThan_DaysIgnoreTimeOfDay(t *testing.T) {
	now := date(2026, time.August, 26, 0, 5)

	// A run late yesterday already counts as one day old.
	assert.True(t, OlderThan(date(2026, time.August, 25, 23, 55), now, 1, models.UnitDay))
	assert.False(t, OlderThan(date(2026, time.August, 26, 0, 1), now, 1, models.UnitDay))

	assert.True(t, OlderThan(date(2026, time.August, 24, 12, 0), now, 2, models.UnitDay))
	assert.False(t, OlderThan(date(2026, time.August, 25, 12, 0), now, 2, models.UnitDay))
}

func TestOlderThan_WeeksSnapToMonday(t *testing.T) {
	// Wednesday. The current week began Monday the 24th.
	now := date(2026, time.August, 26, 15, 0)

	// One week: anything since Monday is current.
	assert.False(t, OlderThan(date(2026, time.August, 24, 0, 30), now, 1, models.UnitWeek))
	assert.True(t, OlderThan(date(2026, time.August, 23, 23, 30), now, 1, models.UnitWeek))

	// Two weeks: last week still counts, the week before is due.
	assert.False(t, OlderThan(date(2026, time.August, 17, 8, 0), now, 2, models.UnitWeek))
	assert.True(t, OlderThan(date(2026, time.August, 16, 8, 0), now, 2, models.UnitWeek))
}

func TestOlderThan_MonthWalk(t *testing.T) {
	now := date(2026, time.August, 26, 15, 0)

	// One month: the boundary sits just before one day-count back.
	assert.True(t, OlderThan(date(2026, time.July, 29, 0, 0), now, 1, models.UnitMonth))
	assert.False(t, OlderThan(date(2026, time.July, 30, 0, 0), now, 1, models.UnitMonth))

	// Two months walks one additional month boundary back.
	assert.True(t, OlderThan(date(2026, time.June, 29, 0, 0), now, 2, models.UnitMonth))
	assert.False(t, OlderThan(date(2026, time.June, 30, 0, 0), now, 2, models.UnitMonth))
}

func TestOlderThan_MonthWalkCrossesYear(t *testing.T) {
	now := date(2026, time.February, 10, 9, 0)

	// Three months back from February crosses into the previous year.
	assert.True(t, OlderThan(date(2025, time.October, 29, 0, 0), now, 4, models.UnitMonth))
	assert.False(t, OlderThan(date(2025, time.October, 30, 0, 0), now, 4, models.UnitMonth))
}

func TestOlderThan_YearUsesMonthWalk(t *testing.T) {
	now := date(2026, time.August, 26, 15, 0)

	assert.True(t, OlderThan(date(2026, time.July, 29, 0, 0), now, 1, models.UnitYear))
	assert.False(t, OlderThan(date(2026, time.July, 30, 0, 0), now, 1, models.UnitYear))
}

func TestIsDue_NonElapsedModesAlwaysRun(t *testing.T) {
	svc := New(testLogger())
	now := time.Now()

	for _, mode := range []models.ScheduleMode{
		models.ModeDisabled, models.ModeHourly, models.ModeDaily, models.ModeWeekly,
	} {
		spec := models.ScheduleSpec{Mode: mode}
		assert.True(t, svc.IsDue(spec, "/nonexistent/spool", now), "mode %v", mode)
	}
}

func TestIsDue_NeverRunIsDue(t *testing.T) {
	svc := New(testLogger())
	spec := models.ScheduleSpec{
		Mode: models.ModeRepeated, RepeatPeriod: 1, RepeatUnit: models.UnitDay,
	}

	assert.True(t, svc.IsDue(spec, filepath.Join(t.TempDir(), "missing"), time.Now()))
}

func TestIsDue_MalformedTimestampIsDue(t *testing.T) {
	spool := filepath.Join(t.TempDir(), "stamp")
	require.NoError(t, os.WriteFile(spool, []byte("garbage\n"), 0o644))

	svc := New(testLogger())
	spec := models.ScheduleSpec{
		Mode: models.ModeRepeated, RepeatPeriod: 1, RepeatUnit: models.UnitDay,
	}

	assert.True(t, svc.IsDue(spec, spool, time.Now()))
}

func TestRecordRun_ThenNotDueWithinPeriod(t *testing.T) {
	spool := filepath.Join(t.TempDir(), "spool", "1_Main_profile")
	svc := New(testLogger())
	spec := models.ScheduleSpec{
		Mode: models.ModeRepeated, RepeatPeriod: 1, RepeatUnit: models.UnitDay,
	}
	now := date(2026, time.August, 26, 14, 0)

	require.NoError(t, svc.RecordRun(spool, now))

	assert.False(t, svc.IsDue(spec, spool, now))
	assert.False(t, svc.IsDue(spec, spool, now.Add(3*time.Hour)))
	assert.True(t, svc.IsDue(spec, spool, date(2026, time.August, 27, 0, 30)))
}

func TestRecordRun_OverwritesPreviousStamp(t *testing.T) {
	spool := filepath.Join(t.TempDir(), "stamp")
	svc := New(testLogger())

	require.NoError(t, svc.RecordRun(spool, date(2026, time.August, 20, 10, 0)))
	require.NoError(t, svc.RecordRun(spool, date(2026, time.August, 26, 10, 0)))

	last, ok := svc.LastRun(spool)
	require.True(t, ok)
	assert.Equal(t, date(2026, time.August, 26, 10, 0), last)
}
