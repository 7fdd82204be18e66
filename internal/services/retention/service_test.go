package retention

import (
	"io"
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

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestCutoffDate_Disabled(t *testing.T) {
	svc := New(testLogger())

	cutoff := svc.CutoffDate(models.AgePolicy{Enabled: false, Value: 10, Unit: models.UnitDay}, time.Now())

	assert.Equal(t, neverDelete, cutoff)
}

func TestCutoffDate_Days(t *testing.T) {
	svc := New(testLogger())
	today := time.Date(2026, time.August, 26, 15, 30, 0, 0, time.Local)

	cutoff := svc.CutoffDate(models.AgePolicy{Enabled: true, Value: 10, Unit: models.UnitDay}, today)

	assert.Equal(t, day(2026, time.August, 16), cutoff)
}

func TestCutoffDate_WeeksSnapToMonday(t *testing.T) {
	svc := New(testLogger())
	// Wednesday the 26th; the current week began Monday the 24th.
	today := day(2026, time.August, 26)

	cutoff := svc.CutoffDate(models.AgePolicy{Enabled: true, Value: 1, Unit: models.UnitWeek}, today)
	assert.Equal(t, day(2026, time.August, 24), cutoff)

	cutoff = svc.CutoffDate(models.AgePolicy{Enabled: true, Value: 3, Unit: models.UnitWeek}, today)
	assert.Equal(t, day(2026, time.August, 10), cutoff)
}

func TestCutoffDate_YearsClampToFirstOfMonth(t *testing.T) {
	svc := New(testLogger())
	today := day(2026, time.August, 26)

	cutoff := svc.CutoffDate(models.AgePolicy{Enabled: true, Value: 10, Unit: models.UnitYear}, today)

	assert.Equal(t, day(2016, time.August, 1), cutoff)
}

func TestCutoffDate_UnsupportedUnit(t *testing.T) {
	svc := New(testLogger())

	cutoff := svc.CutoffDate(models.AgePolicy{Enabled: true, Value: 2, Unit: models.UnitMonth}, time.Now())

	assert.Equal(t, neverDelete, cutoff)
}

func TestMinFreeSpaceMiB(t *testing.T) {
	svc := New(testLogger())

	assert.Equal(t, 0, svc.MinFreeSpaceMiB(models.SpacePolicy{Enabled: false, Value: 5, Unit: models.DiskUnitGB}))
	assert.Equal(t, 512, svc.MinFreeSpaceMiB(models.SpacePolicy{Enabled: true, Value: 512, Unit: models.DiskUnitMB}))
	assert.Equal(t, 2048, svc.MinFreeSpaceMiB(models.SpacePolicy{Enabled: true, Value: 2, Unit: models.DiskUnitGB}))
	assert.Equal(t, 0, svc.MinFreeSpaceMiB(models.SpacePolicy{Enabled: true, Value: 2, Unit: models.DiskUnit(99)}))
}

func TestTieredBuckets_Disabled(t *testing.T) {
	svc := New(testLogger())

	assert.Nil(t, svc.TieredBuckets(models.SmartPolicy{Enabled: false}, time.Now()))
}

func TestTieredBuckets_AllTiers(t *testing.T) {
	svc := New(testLogger())
	// Wednesday the 26th.
	today := day(2026, time.August, 26)
	smart := models.SmartPolicy{
		Enabled:         true,
		KeepAllDays:     2,
		KeepOnePerDay:   7,
		KeepOnePerWeek:  4,
		KeepOnePerMonth: 24,
	}

	buckets := svc.TieredBuckets(smart, today)

	require.Len(t, buckets, 4)

	assert.Equal(t, models.BucketKeepAll, buckets[0].Kind)
	assert.Equal(t, day(2026, time.August, 24), buckets[0].Start)
	assert.Equal(t, today, buckets[0].End)

	assert.Equal(t, models.BucketOnePerDay, buckets[1].Kind)
	assert.Equal(t, day(2026, time.August, 19), buckets[1].Start)

	// Four week-tiers back from this week's Monday.
	assert.Equal(t, models.BucketOnePerWeek, buckets[2].Kind)
	assert.Equal(t, day(2026, time.July, 27), buckets[2].Start)

	// 24 months back from the first of the current month.
	assert.Equal(t, models.BucketOnePerMonth, buckets[3].Kind)
	assert.Equal(t, day(2024, time.August, 1), buckets[3].Start)
}

func TestTieredBuckets_ZeroTiersAreOmitted(t *testing.T) {
	svc := New(testLogger())
	smart := models.SmartPolicy{Enabled: true, KeepAllDays: 2}

	buckets := svc.TieredBuckets(smart, day(2026, time.August, 26))

	require.Len(t, buckets, 1)
	assert.Equal(t, models.BucketKeepAll, buckets[0].Kind)
}

func TestSpaceBelowThreshold_DisabledPolicy(t *testing.T) {
	svc := New(testLogger())

	below, err := svc.SpaceBelowThreshold(models.SpacePolicy{Enabled: false}, t.TempDir())

	require.NoError(t, err)
	assert.False(t, below)
}

func TestInodesBelowThreshold_DisabledPolicy(t *testing.T) {
	svc := New(testLogger())

	below, err := svc.InodesBelowThreshold(models.InodePolicy{Enabled: false}, t.TempDir())

	require.NoError(t, err)
	assert.False(t, below)
}

func TestFreeSpaceMiB_LiveFilesystem(t *testing.T) {
	svc := New(testLogger())

	free, err := svc.FreeSpaceMiB(t.TempDir())

	require.NoError(t, err)
	assert.Greater(t, free, uint64(0))
}

func TestFreeInodesPercent_LiveFilesystem(t *testing.T) {
	svc := New(testLogger())

	pct, err := svc.FreeInodesPercent(t.TempDir())

	require.NoError(t, err)
	assert.GreaterOrEqual(t, pct, float64(0))
	assert.LessOrEqual(t, pct, float64(100))
}

func TestFreeSpaceMiB_MissingPath(t *testing.T) {
	svc := New(testLogger())

	_, err := svc.FreeSpaceMiB("/nonexistent/path/for/statfs")

	assert.Error(t, err)
}
