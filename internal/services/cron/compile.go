// Package cron compiles profile schedule settings into periodic-trigger
// expressions and assembles the generated crontab entries.
package cron

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kmattheis/snapsched/internal/models"
)

// TriggerKind classifies the result of compiling a schedule.
type TriggerKind int

const (
	// TriggerNone means the profile installs no trigger at all.
	TriggerNone TriggerKind = iota

	// TriggerCron is a five-field time trigger (or the @reboot special
	// form).
	TriggerCron

	// TriggerDevice is a device-attach trigger handled by the udev
	// installer instead of the time-based job runner.
	TriggerDevice
)

// Expression is a five-field periodic-trigger expression. Reboot replaces
// all five fields with the @reboot special form.
type Expression struct {
	Minute     string
	Hour       string
	DayOfMonth string
	Month      string
	DayOfWeek  string
	Reboot     bool
}

// Render returns the trigger fields as a single whitespace-separated
// string.
func (e Expression) Render() string {
	if e.Reboot {
		return "@reboot"
	}
	return strings.Join([]string{e.Minute, e.Hour, e.DayOfMonth, e.Month, e.DayOfWeek}, " ")
}

// Trigger is the compiled schedule of one profile.
type Trigger struct {
	Kind TriggerKind
	Expr Expression
}

// every returns an expression with the given minute and hour fields and
// wildcards everywhere else.
func every(minute, hour string) Expression {
	return Expression{Minute: minute, Hour: hour, DayOfMonth: "*", Month: "*", DayOfWeek: "*"}
}

// Compile maps a schedule spec to its trigger. It is a pure function of
// the spec: fixed-interval modes produce canonical step fields, the
// calendar modes split the HHMM time value, and the elapsed-time mode
// produces a frequent poll whose command re-checks due-ness itself.
func Compile(spec models.ScheduleSpec) Trigger {
	minute := strconv.Itoa(spec.Minute())
	hour := strconv.Itoa(spec.Hour())

	switch spec.Mode {
	case models.ModeDisabled:
		return Trigger{Kind: TriggerNone}
	case models.ModeAtBoot:
		return Trigger{Kind: TriggerCron, Expr: Expression{Reboot: true}}
	case models.ModeEvery5Min:
		return Trigger{Kind: TriggerCron, Expr: every("*/5", "*")}
	case models.ModeEvery10Min:
		return Trigger{Kind: TriggerCron, Expr: every("*/10", "*")}
	case models.ModeEvery30Min:
		return Trigger{Kind: TriggerCron, Expr: every("*/30", "*")}
	case models.ModeHourly:
		return Trigger{Kind: TriggerCron, Expr: every("0", "*")}
	case models.ModeEvery2Hours:
		return Trigger{Kind: TriggerCron, Expr: every("0", "*/2")}
	case models.ModeEvery4Hours:
		return Trigger{Kind: TriggerCron, Expr: every("0", "*/4")}
	case models.ModeEvery6Hours:
		return Trigger{Kind: TriggerCron, Expr: every("0", "*/6")}
	case models.ModeEvery12Hours:
		return Trigger{Kind: TriggerCron, Expr: every("0", "*/12")}
	case models.ModeCustomHours:
		return Trigger{Kind: TriggerCron, Expr: every("0", spec.CustomHours)}
	case models.ModeDaily:
		return Trigger{Kind: TriggerCron, Expr: every(minute, hour)}
	case models.ModeRepeated:
		// The period itself is not encoded here; the command runs the
		// due-ness gate on every poll.
		if spec.RepeatUnit <= models.UnitDay {
			return Trigger{Kind: TriggerCron, Expr: every("*/15", "*")}
		}
		return Trigger{Kind: TriggerCron, Expr: every("0", "*")}
	case models.ModeOnDevice:
		return Trigger{Kind: TriggerDevice}
	case models.ModeWeekly:
		expr := every(minute, hour)
		expr.DayOfWeek = strconv.Itoa(spec.Weekday)
		return Trigger{Kind: TriggerCron, Expr: expr}
	case models.ModeMonthly:
		expr := every(minute, hour)
		expr.DayOfMonth = strconv.Itoa(spec.Day)
		return Trigger{Kind: TriggerCron, Expr: expr}
	case models.ModeYearly:
		expr := every(minute, hour)
		expr.DayOfMonth = "1"
		expr.Month = "1"
		return Trigger{Kind: TriggerCron, Expr: expr}
	default:
		return Trigger{Kind: TriggerNone}
	}
}

// ValidateCustomHours checks a custom-hours field: either a comma list of
// hours (0-23) or a */N step form.
func ValidateCustomHours(value string) error {
	if strings.HasPrefix(value, "*/") {
		n, err := strconv.Atoi(value[2:])
		if err != nil || n < 1 || n > 23 {
			return fmt.Errorf("invalid custom hours step %q", value)
		}
		return nil
	}

	for _, part := range strings.Split(value, ",") {
		h, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || h < 0 || h > 23 {
			return fmt.Errorf("invalid custom hour %q", part)
		}
	}
	return nil
}
