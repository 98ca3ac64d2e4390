package timing

import (
	"fmt"
	"strings"
	"time"
)

const (
	secondsInHour  = 60 * 60
	secondsInDay   = secondsInHour * 24
	secondsInWeek  = secondsInDay * 7
	secondsInMonth = secondsInDay * 30
	secondsInYear  = secondsInDay * 365
)

var weekdayNames = [7]string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

var monthNames = [12]string{
	"january",
	"february",
	"march",
	"april",
	"may",
	"june",
	"july",
	"august",
	"september",
	"october",
	"november",
	"december",
}

// WeekdayName returns the lowercase name for a grammar weekday index
// (0 = monday .. 6 = sunday).
func WeekdayName(day int) string {
	if day < 0 || day > 6 {
		return "unknown"
	}
	return weekdayNames[day]
}

// MonthName returns the lowercase name for a grammar month index
// (0 = january .. 11 = december).
func MonthName(month int) string {
	if month < 0 || month > 11 {
		return "unknown"
	}
	return monthNames[month]
}

// TimeOfDay is a clock time attached to a calendar anchor. It serializes
// as the same "h:mm[:ss]" text the grammar accepts.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func (t TimeOfDay) String() string {
	if t.Second != 0 {
		return fmt.Sprintf("%d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DelayUnit records which denomination the user actually wrote: a delay
// containing any hour/minute/second component is seconds-denominated,
// anything else counts whole days.
type DelayUnit string

const (
	DelaySeconds DelayUnit = "seconds"
	DelayDays    DelayUnit = "days"
)

// Delay is a relative offset from a reference timestamp.
type Delay struct {
	Count int64     `json:"count"`
	Unit  DelayUnit `json:"unit"`
}

func (d Delay) Duration() time.Duration {
	if d.Unit == DelayDays {
		return time.Duration(d.Count) * 24 * time.Hour
	}
	return time.Duration(d.Count) * time.Second
}

func (d Delay) String() string {
	if d.Unit == DelayDays {
		return fmt.Sprintf("%dd", d.Count)
	}
	return fmt.Sprintf("%ds", d.Count)
}

// InstantKind discriminates RoughInstant variants.
type InstantKind string

const (
	InstantDayOfMonth InstantKind = "day_of_month"
	InstantDayOfWeek  InstantKind = "day_of_week"
	InstantDate       InstantKind = "date"
	InstantMonth      InstantKind = "month"
)

// RoughInstant is an absolute point resolved relative to a reference
// timestamp: a day of the current or next month, a day of the current or
// next week, a fully specified date, or a month of the current or next
// year.
type RoughInstant struct {
	Kind InstantKind `json:"kind"`

	// Day is 1-31 for day-of-month, 0 (monday) to 6 (sunday) for
	// day-of-week.
	Day  int        `json:"day,omitempty"`
	Time *TimeOfDay `json:"time,omitempty"`

	// Date is set for the date variant only and is already absolute.
	Date *time.Time `json:"date,omitempty"`

	// Month is 0 (january) to 11 (december) for the month variant.
	Month int `json:"month,omitempty"`
}

func (r RoughInstant) String() string {
	switch r.Kind {
	case InstantDayOfMonth:
		return "dom " + dayAndTime(r.Day, r.Time)
	case InstantDayOfWeek:
		return nameAndTime(WeekdayName(r.Day), r.Time)
	case InstantDate:
		if r.Date == nil {
			return "date"
		}
		d := *r.Date
		text := fmt.Sprintf("%d-%d-%d", d.Year(), int(d.Month()), d.Day())
		if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 {
			tod := TimeOfDay{Hour: d.Hour(), Minute: d.Minute(), Second: d.Second()}
			text += " " + tod.String()
		}
		return text
	case InstantMonth:
		return MonthName(r.Month)
	}
	return string(r.Kind)
}

// ExactKind discriminates RepeatExact variants.
type ExactKind string

const (
	ExactDayOfMonth ExactKind = "day_of_month"
	ExactDayOfWeek  ExactKind = "day_of_week"
	ExactDaily      ExactKind = "daily"
)

// RepeatExact is a recurring calendar anchor. Each variant computes the
// next occurrence strictly after a reference timestamp, rolling forward
// one period when the same-period candidate has already passed.
type RepeatExact struct {
	Kind ExactKind `json:"kind"`

	// Day is 1-31 for day-of-month, 0 (monday) to 6 (sunday) for
	// day-of-week.
	Day  int        `json:"day,omitempty"`
	Time *TimeOfDay `json:"time,omitempty"`
}

func (r RepeatExact) String() string {
	switch r.Kind {
	case ExactDayOfMonth:
		return "monthly " + dayAndTime(r.Day, r.Time)
	case ExactDayOfWeek:
		return nameAndTime(WeekdayName(r.Day), r.Time)
	case ExactDaily:
		return nameAndTime("daily", r.Time)
	}
	return string(r.Kind)
}

// OnceTiming fires a single time: either at an instant or after a delay.
// Exactly one of the two fields is set.
type OnceTiming struct {
	Instant *RoughInstant `json:"instant,omitempty"`
	Delay   *Delay        `json:"delay,omitempty"`
}

func (t OnceTiming) String() string {
	if t.Instant != nil {
		return t.Instant.String()
	}
	if t.Delay != nil {
		return t.Delay.String()
	}
	return "unset"
}

// RepeatTiming fires again and again: either on a calendar anchor or a
// fixed interval from the last firing. Exactly one field is set.
type RepeatTiming struct {
	Exact *RepeatExact `json:"exact,omitempty"`
	Delay *Delay       `json:"delay,omitempty"`
}

func (t RepeatTiming) String() string {
	if t.Exact != nil {
		return t.Exact.String()
	}
	if t.Delay != nil {
		return t.Delay.String()
	}
	return "unset"
}

// RecurrenceKind discriminates once-vs-repeating rules.
type RecurrenceKind string

const (
	KindOnce   RecurrenceKind = "once"
	KindRepeat RecurrenceKind = "repeat"
)

// Recurrence is the top-level timing rule attached to an entry. A once
// rule retires its entry permanently after firing; a repeat rule advances
// the entry's reference timestamp and stays active.
type Recurrence struct {
	Kind   RecurrenceKind `json:"kind"`
	Once   *OnceTiming    `json:"once,omitempty"`
	Repeat *RepeatTiming  `json:"repeat,omitempty"`
}

// Once wraps a one-shot timing into a recurrence rule.
func Once(t OnceTiming) Recurrence {
	return Recurrence{Kind: KindOnce, Once: &t}
}

// Repeating wraps a repeating timing into a recurrence rule.
func Repeating(t RepeatTiming) Recurrence {
	return Recurrence{Kind: KindRepeat, Repeat: &t}
}

func (r Recurrence) IsOnce() bool {
	return r.Kind == KindOnce
}

func (r Recurrence) String() string {
	switch r.Kind {
	case KindOnce:
		if r.Once != nil {
			return r.Once.String()
		}
	case KindRepeat:
		if r.Repeat != nil {
			return r.Repeat.String()
		}
	}
	return "unset"
}

func dayAndTime(day int, t *TimeOfDay) string {
	if t != nil {
		return fmt.Sprintf("%d %s", day, t)
	}
	return fmt.Sprintf("%d", day)
}

func nameAndTime(name string, t *TimeOfDay) string {
	if t != nil {
		return name + " " + t.String()
	}
	return name
}
