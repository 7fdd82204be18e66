// Package retention computes the advisory deletion predicates of the
// retention policies: the age cutoff date, free-space and free-inode
// thresholds, and the tiered ("smart") retention buckets. Deciding and
// performing actual deletions is the snapshot engine's job.
package retention

import (
	"fmt"
	"time"

	"github.com/kmattheis/snapsched/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// Service defines the interface for retention evaluation.
type Service interface {
	CutoffDate(age models.AgePolicy, today time.Time) time.Time
	MinFreeSpaceMiB(space models.SpacePolicy) int
	TieredBuckets(smart models.SmartPolicy, today time.Time) []models.Bucket
	FreeSpaceMiB(path string) (uint64, error)
	FreeInodesPercent(path string) (float64, error)
	SpaceBelowThreshold(space models.SpacePolicy, path string) (bool, error)
	InodesBelowThreshold(inode models.InodePolicy, path string) (bool, error)
}

// Impl implements the retention Service interface.
type Impl struct {
	logger zerolog.Logger
}

// New creates a retention service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{logger: logger}
}

// neverDelete is the sentinel cutoff of a disabled age policy: no snapshot
// can be older than it.
var neverDelete = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// CutoffDate returns the date before which snapshots are eligible for
// age-based deletion. The age policy is restricted to day, week and year
// units; anything else returns the never-delete sentinel.
func (s *Impl) CutoffDate(age models.AgePolicy, today time.Time) time.Time {
	if !age.Enabled {
		return neverDelete
	}

	date := dateOf(today)

	switch age.Unit {
	case models.UnitDay:
		return date.AddDate(0, 0, -age.Value)

	case models.UnitWeek:
		// Snap back to a Monday boundary, not a sliding 7*N-day window:
		// value 1 keeps the whole current week.
		return date.AddDate(0, 0, -mondayIndex(date)-7*(age.Value-1))

	case models.UnitYear:
		// Same month N years back, clamped to day 1 so the result is
		// always a valid date.
		return time.Date(date.Year()-age.Value, date.Month(), 1, 0, 0, 0, 0, date.Location())

	default:
		return neverDelete
	}
}

// MinFreeSpaceMiB normalizes the free-space policy to mebibytes: GB values
// scale by 1024, MB values pass through, disabled or unknown units yield
// 0.
func (s *Impl) MinFreeSpaceMiB(space models.SpacePolicy) int {
	if !space.Enabled {
		return 0
	}

	switch space.Unit {
	case models.DiskUnitMB:
		return space.Value
	case models.DiskUnitGB:
		return space.Value * 1024
	default:
		return 0
	}
}

// TieredBuckets returns the smart retention tiers as age windows anchored
// at today, newest tier first. The windows overlap deliberately: a
// snapshot survives if any tier it falls into still keeps it.
func (s *Impl) TieredBuckets(smart models.SmartPolicy, today time.Time) []models.Bucket {
	if !smart.Enabled {
		return nil
	}

	date := dateOf(today)
	var buckets []models.Bucket

	if smart.KeepAllDays > 0 {
		buckets = append(buckets, models.Bucket{
			Kind:  models.BucketKeepAll,
			Start: date.AddDate(0, 0, -smart.KeepAllDays),
			End:   date,
		})
	}

	if smart.KeepOnePerDay > 0 {
		buckets = append(buckets, models.Bucket{
			Kind:  models.BucketOnePerDay,
			Start: date.AddDate(0, 0, -smart.KeepOnePerDay),
			End:   date,
		})
	}

	if smart.KeepOnePerWeek > 0 {
		// Weeks start on Monday.
		monday := date.AddDate(0, 0, -mondayIndex(date))
		buckets = append(buckets, models.Bucket{
			Kind:  models.BucketOnePerWeek,
			Start: monday.AddDate(0, 0, -7*smart.KeepOnePerWeek),
			End:   date,
		})
	}

	if smart.KeepOnePerMonth > 0 {
		first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
		buckets = append(buckets, models.Bucket{
			Kind:  models.BucketOnePerMonth,
			Start: first.AddDate(0, -smart.KeepOnePerMonth, 0),
			End:   date,
		})
	}

	return buckets
}

// FreeSpaceMiB returns the free disk space of the filesystem holding path,
// in mebibytes.
func (s *Impl) FreeSpaceMiB(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return st.Bavail * uint64(st.Bsize) / (1024 * 1024), nil
}

// FreeInodesPercent returns the percentage of free inodes of the
// filesystem holding path.
func (s *Impl) FreeInodesPercent(path string) (float64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	if st.Files == 0 {
		return 100, nil
	}
	return float64(st.Ffree) / float64(st.Files) * 100, nil
}

// SpaceBelowThreshold reports whether the destination filesystem has less
// free space than the policy demands.
func (s *Impl) SpaceBelowThreshold(space models.SpacePolicy, path string) (bool, error) {
	minMiB := s.MinFreeSpaceMiB(space)
	if minMiB == 0 {
		return false, nil
	}
	free, err := s.FreeSpaceMiB(path)
	if err != nil {
		return false, err
	}
	return free < uint64(minMiB), nil
}

// InodesBelowThreshold reports whether the destination filesystem has
// fewer free inodes than the policy demands.
func (s *Impl) InodesBelowThreshold(inode models.InodePolicy, path string) (bool, error) {
	if !inode.Enabled {
		return false, nil
	}
	free, err := s.FreeInodesPercent(path)
	if err != nil {
		return false, err
	}
	return free < float64(inode.Percent), nil
}

// dateOf truncates to midnight, keeping the location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayIndex returns the day-of-week with Monday as 0.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
