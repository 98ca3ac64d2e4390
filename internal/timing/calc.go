package timing

import (
	"errors"
	"fmt"
	"time"
)

// Structurally impossible calendar values. Day-of-month over-range within
// 1-31 is not an error: it clamps to the month's last valid day instead.
var (
	ErrInvalidDay   = errors.New("invalid day")
	ErrInvalidMonth = errors.New("invalid month")
)

// NotificationDate resolves the rule's next occurrence relative to ref.
// The result is always strictly after ref.
func (r Recurrence) NotificationDate(ref time.Time) (time.Time, error) {
	switch r.Kind {
	case KindOnce:
		if r.Once == nil {
			return time.Time{}, fmt.Errorf("once recurrence without timing")
		}
		return r.Once.NotificationDate(ref)
	case KindRepeat:
		if r.Repeat == nil {
			return time.Time{}, fmt.Errorf("repeat recurrence without timing")
		}
		return r.Repeat.NotificationDate(ref)
	}
	return time.Time{}, fmt.Errorf("unknown recurrence kind %q", r.Kind)
}

func (t OnceTiming) NotificationDate(ref time.Time) (time.Time, error) {
	if t.Instant != nil {
		return t.Instant.NotificationDate(ref)
	}
	if t.Delay != nil {
		return ref.Add(t.Delay.Duration()), nil
	}
	return time.Time{}, fmt.Errorf("once timing without instant or delay")
}

func (t RepeatTiming) NotificationDate(ref time.Time) (time.Time, error) {
	if t.Exact != nil {
		return t.Exact.NotificationDate(ref)
	}
	if t.Delay != nil {
		return ref.Add(t.Delay.Duration()), nil
	}
	return time.Time{}, fmt.Errorf("repeat timing without anchor or delay")
}

// NotificationDate computes the next date for a one-shot instant. All
// calendar arithmetic happens in ref's location, so the caller's fixed
// offset is preserved.
func (r RoughInstant) NotificationDate(ref time.Time) (time.Time, error) {
	switch r.Kind {
	case InstantDayOfMonth:
		return nextDayOfMonth(r.Day, r.Time, ref)
	case InstantDayOfWeek:
		return nextDayOfWeek(r.Day, r.Time, ref)
	case InstantDate:
		if r.Date == nil {
			return time.Time{}, fmt.Errorf("date instant without date")
		}
		return *r.Date, nil
	case InstantMonth:
		return nextMonth(r.Month, ref)
	}
	return time.Time{}, fmt.Errorf("unknown instant kind %q", r.Kind)
}

// NotificationDate computes the next occurrence of a repeating anchor.
func (r RepeatExact) NotificationDate(ref time.Time) (time.Time, error) {
	switch r.Kind {
	case ExactDayOfMonth:
		return nextDayOfMonth(r.Day, r.Time, ref)
	case ExactDayOfWeek:
		return nextDayOfWeek(r.Day, r.Time, ref)
	case ExactDaily:
		return nextDaily(r.Time, ref), nil
	}
	return time.Time{}, fmt.Errorf("unknown repeat anchor kind %q", r.Kind)
}

// nextDayOfMonth builds a candidate in ref's month, clamping the day
// downward to the month's last valid day (day 31 in a 30-day month
// resolves to day 30). A candidate at or before ref advances one month,
// re-clamped against the new month.
func nextDayOfMonth(day int, tod *TimeOfDay, ref time.Time) (time.Time, error) {
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}

	year, month := ref.Year(), ref.Month()
	candidate := dayOfMonthCandidate(year, month, day, tod, ref.Location())
	if !candidate.After(ref) {
		year, month = nextCalendarMonth(year, month)
		candidate = dayOfMonthCandidate(year, month, day, tod, ref.Location())
	}
	return candidate, nil
}

func dayOfMonthCandidate(year int, month time.Month, day int, tod *TimeOfDay, loc *time.Location) time.Time {
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	t := clockOrMidnight(tod)
	return time.Date(year, month, day, t.Hour, t.Minute, t.Second, 0, loc)
}

func nextCalendarMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// nextDayOfWeek anchors on the monday of ref's calendar week, offsets by
// the 0-indexed weekday, and rolls a full week when the candidate is not
// after ref.
func nextDayOfWeek(day int, tod *TimeOfDay, ref time.Time) (time.Time, error) {
	if day < 0 || day > 6 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}

	sinceMonday := (int(ref.Weekday()) + 6) % 7
	monday := ref.AddDate(0, 0, -sinceMonday)
	candidate := atTime(monday.AddDate(0, 0, day), clockOrMidnight(tod))
	if !candidate.After(ref) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate, nil
}

func nextDaily(tod *TimeOfDay, ref time.Time) time.Time {
	candidate := atTime(ref, clockOrMidnight(tod))
	if !candidate.After(ref) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// nextMonth resolves to the first of the given month in ref's year,
// advancing twelve months when that is not after ref.
func nextMonth(month int, ref time.Time) (time.Time, error) {
	if month < 0 || month > 11 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}

	candidate := time.Date(ref.Year(), time.Month(month+1), 1, 0, 0, 0, 0, ref.Location())
	if !candidate.After(ref) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate, nil
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the following month normalizes to this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func atTime(day time.Time, tod TimeOfDay) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour, tod.Minute, tod.Second, 0, day.Location())
}

func clockOrMidnight(tod *TimeOfDay) TimeOfDay {
	if tod == nil {
		return TimeOfDay{}
	}
	return *tod
}
