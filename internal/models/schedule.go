// Package models contains the data structures used throughout snapsched.
package models

// ScheduleMode selects how a profile is scheduled. The numeric values are
// persisted in the configuration file and compared with relational
// operators to bucket modes into granularities, so the relative order of
// the constants is part of the on-disk contract. Do not renumber.
type ScheduleMode int

const (
	ModeDisabled     ScheduleMode = 0
	ModeAtBoot       ScheduleMode = 1
	ModeEvery5Min    ScheduleMode = 2
	ModeEvery10Min   ScheduleMode = 4
	ModeEvery30Min   ScheduleMode = 7
	ModeHourly       ScheduleMode = 10
	ModeEvery2Hours  ScheduleMode = 12
	ModeEvery4Hours  ScheduleMode = 14
	ModeEvery6Hours  ScheduleMode = 16
	ModeEvery12Hours ScheduleMode = 18
	ModeCustomHours  ScheduleMode = 19
	ModeDaily        ScheduleMode = 20
	ModeRepeated     ScheduleMode = 25
	ModeOnDevice     ScheduleMode = 27
	ModeWeekly       ScheduleMode = 30
	ModeMonthly      ScheduleMode = 40
	ModeYearly       ScheduleMode = 80
)

// String returns a short human-readable name for logging.
func (m ScheduleMode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeAtBoot:
		return "at-boot"
	case ModeEvery5Min:
		return "every-5-minutes"
	case ModeEvery10Min:
		return "every-10-minutes"
	case ModeEvery30Min:
		return "every-30-minutes"
	case ModeHourly:
		return "hourly"
	case ModeEvery2Hours:
		return "every-2-hours"
	case ModeEvery4Hours:
		return "every-4-hours"
	case ModeEvery6Hours:
		return "every-6-hours"
	case ModeEvery12Hours:
		return "every-12-hours"
	case ModeCustomHours:
		return "custom-hours"
	case ModeDaily:
		return "daily"
	case ModeRepeated:
		return "repeated"
	case ModeOnDevice:
		return "on-device-connect"
	case ModeWeekly:
		return "weekly"
	case ModeMonthly:
		return "monthly"
	case ModeYearly:
		return "yearly"
	default:
		return "unknown"
	}
}

// TimeUnit is the unit of an elapsed-time period or an age-based retention
// value. It shares the granularity ordinals of ScheduleMode: comparisons
// like "unit <= UnitDay" decide which calendar algorithm applies.
type TimeUnit int

const (
	UnitHour  TimeUnit = 10
	UnitDay   TimeUnit = 20
	UnitWeek  TimeUnit = 30
	UnitMonth TimeUnit = 40
	UnitYear  TimeUnit = 80
)

// String returns a short human-readable name for logging.
func (u TimeUnit) String() string {
	switch u {
	case UnitHour:
		return "hour"
	case UnitDay:
		return "day"
	case UnitWeek:
		return "week"
	case UnitMonth:
		return "month"
	case UnitYear:
		return "year"
	default:
		return "unknown"
	}
}

// ScheduleSpec holds the complete schedule settings of one profile.
type ScheduleSpec struct {
	Mode ScheduleMode

	// Time is the time of day encoded as HHMM (0-2400). Only used for
	// daily, weekly, monthly and yearly modes.
	Time int

	// Day is the day of month (1-28) for the monthly mode.
	Day int

	// Weekday is the day of week (1 = Monday ... 7 = Sunday) for the
	// weekly mode.
	Weekday int

	// CustomHours is the literal hour field for ModeCustomHours, either a
	// comma-separated list of hours or a */N step.
	CustomHours string

	// RepeatPeriod and RepeatUnit describe the elapsed-time schedule for
	// ModeRepeated and ModeOnDevice.
	RepeatPeriod int
	RepeatUnit   TimeUnit

	// Debug enables debug output on the scheduled command line.
	Debug bool
}

// Minute returns the minute-of-hour component of Time.
func (s ScheduleSpec) Minute() int {
	return s.Time % 100
}

// Hour returns the hour-of-day component of Time.
func (s ScheduleSpec) Hour() int {
	return s.Time / 100
}
