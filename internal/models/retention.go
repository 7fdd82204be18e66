package models

import "time"

// DiskUnit is the unit of the free-space retention threshold. The values
// are persisted, do not renumber.
type DiskUnit int

const (
	DiskUnitMB DiskUnit = 10
	DiskUnitGB DiskUnit = 20
)

// AgePolicy removes snapshots older than Value Units.
type AgePolicy struct {
	Enabled bool
	Value   int
	Unit    TimeUnit
}

// SpacePolicy removes snapshots until Value Units of free disk space are
// available on the destination.
type SpacePolicy struct {
	Enabled bool
	Value   int
	Unit    DiskUnit
}

// InodePolicy removes snapshots until Percent free inodes are available on
// the destination. Percent is restricted to 1-15.
type InodePolicy struct {
	Enabled bool
	Percent int
}

// SmartPolicy is the tiered retention scheme: keep everything for a few
// days, then thin out to one snapshot per day, per week and per month.
type SmartPolicy struct {
	Enabled         bool
	KeepAllDays     int
	KeepOnePerDay   int
	KeepOnePerWeek  int
	KeepOnePerMonth int

	// KeepNamed exempts snapshots carrying a user-given name from removal.
	KeepNamed bool
}

// RetentionSpec aggregates the independent retention policies of a profile.
type RetentionSpec struct {
	Age   AgePolicy
	Space SpacePolicy
	Inode InodePolicy
	Smart SmartPolicy
}

// BucketKind identifies one tier of the smart retention scheme.
type BucketKind int

const (
	BucketKeepAll BucketKind = iota
	BucketOnePerDay
	BucketOnePerWeek
	BucketOnePerMonth
)

// String returns a short human-readable name for logging.
func (k BucketKind) String() string {
	switch k {
	case BucketKeepAll:
		return "keep-all"
	case BucketOnePerDay:
		return "one-per-day"
	case BucketOnePerWeek:
		return "one-per-week"
	case BucketOnePerMonth:
		return "one-per-month"
	default:
		return "unknown"
	}
}

// Bucket describes one tier of the smart retention scheme as an age window
// anchored at the evaluation date. A snapshot survives if it matches any
// bucket it falls into; the tiers overlap and are additive.
type Bucket struct {
	Kind BucketKind

	// Start is the oldest date (inclusive) still covered by this tier.
	Start time.Time

	// End is the newest date (inclusive) covered by this tier.
	End time.Time
}
