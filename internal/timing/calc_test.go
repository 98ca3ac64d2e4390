package timing

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNextDaily(t *testing.T) {
	nine := &TimeOfDay{Hour: 9}

	// Before today's slot: fires today.
	got := nextDaily(nine, date(2026, time.March, 10, 8, 0))
	if want := date(2026, time.March, 10, 9, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Exactly on the slot: never the reference itself, rolls a day.
	got = nextDaily(nine, date(2026, time.March, 10, 9, 0))
	if want := date(2026, time.March, 11, 9, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// No time means midnight, which is always in the past for today.
	got = nextDaily(nil, date(2026, time.March, 10, 8, 0))
	if want := date(2026, time.March, 11, 0, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextDayOfMonthClamps(t *testing.T) {
	// Day 31 in february 2026 clamps to the 28th.
	got, err := nextDayOfMonth(31, nil, date(2026, time.February, 10, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2026, time.February, 28, 0, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// The advanced month re-clamps against its own length: from late
	// january, day 31 lands on february 28, not a carried-over day 31.
	got, err = nextDayOfMonth(31, nil, date(2026, time.January, 31, 23, 0))
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2026, time.February, 28, 0, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// December rolls into january of the next year.
	got, err = nextDayOfMonth(5, nil, date(2026, time.December, 20, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2027, time.January, 5, 0, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextDayOfMonthInvalid(t *testing.T) {
	for _, day := range []int{0, -1, 32} {
		if _, err := nextDayOfMonth(day, nil, parseNow); !errors.Is(err, ErrInvalidDay) {
			t.Errorf("day %d: expected ErrInvalidDay, got %v", day, err)
		}
	}
}

func TestNextDayOfWeek(t *testing.T) {
	// 2026-03-10 is a tuesday; wednesday (2) lands the next day.
	ref := date(2026, time.March, 10, 12, 0)
	got, err := nextDayOfWeek(2, nil, ref)
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2026, time.March, 11, 0, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Tuesday (1) at midnight has already passed by tuesday noon, so it
	// rolls a full week.
	got, err = nextDayOfWeek(1, nil, ref)
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2026, time.March, 17, 0, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Sunday (6) stays within the current monday-anchored week.
	got, err = nextDayOfWeek(6, &TimeOfDay{Hour: 10}, ref)
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2026, time.March, 15, 10, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := nextDayOfWeek(7, nil, ref); !errors.Is(err, ErrInvalidDay) {
		t.Errorf("expected ErrInvalidDay, got %v", err)
	}
}

func TestNextMonth(t *testing.T) {
	ref := date(2026, time.March, 10, 12, 0)

	// December (11) is still ahead this year.
	got, err := nextMonth(11, ref)
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2026, time.December, 1, 0, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// March (2) has already begun, so it resolves to next year.
	got, err = nextMonth(2, ref)
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2027, time.March, 1, 0, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := nextMonth(12, ref); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestDelayNotificationDate(t *testing.T) {
	ref := date(2026, time.March, 10, 12, 0)

	once := OnceTiming{Delay: &Delay{Count: 7200, Unit: DelaySeconds}}
	got, err := once.NotificationDate(ref)
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2026, time.March, 10, 14, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	repeat := RepeatTiming{Delay: &Delay{Count: 3, Unit: DelayDays}}
	got, err = repeat.NotificationDate(ref)
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2026, time.March, 13, 12, 0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// A date instant is already absolute and is returned as-is, even when it
// lies in the past. The decision layer handles staleness.
func TestDateInstantIsAbsolute(t *testing.T) {
	past := date(2020, time.January, 1, 0, 0)
	r := RoughInstant{Kind: InstantDate, Date: &past}
	got, err := r.NotificationDate(parseNow)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(past) {
		t.Errorf("got %v, want %v", got, past)
	}
}

// Every anchored rule must resolve strictly after its reference.
func TestAnchoredRulesMakeForwardProgress(t *testing.T) {
	refs := []time.Time{
		date(2026, time.January, 1, 0, 0),
		date(2026, time.February, 28, 23, 59),
		date(2026, time.March, 10, 12, 0),
		date(2026, time.December, 31, 23, 59),
	}
	anchors := []RepeatExact{
		{Kind: ExactDaily},
		{Kind: ExactDaily, Time: &TimeOfDay{Hour: 9}},
		{Kind: ExactDayOfWeek, Day: 0},
		{Kind: ExactDayOfWeek, Day: 6, Time: &TimeOfDay{Hour: 23, Minute: 59}},
		{Kind: ExactDayOfMonth, Day: 1},
		{Kind: ExactDayOfMonth, Day: 31, Time: &TimeOfDay{Hour: 12}},
	}
	for _, ref := range refs {
		for _, anchor := range anchors {
			got, err := anchor.NotificationDate(ref)
			if err != nil {
				t.Fatalf("%s at %v: %v", anchor, ref, err)
			}
			if !got.After(ref) {
				t.Errorf("%s at %v: resolved to %v, not after the reference", anchor, ref, got)
			}
		}
	}
}

func TestRecurrenceDispatch(t *testing.T) {
	ref := date(2026, time.March, 10, 12, 0)

	r := Once(OnceTiming{Delay: &Delay{Count: 60, Unit: DelaySeconds}})
	got, err := r.NotificationDate(ref)
	if err != nil {
		t.Fatal(err)
	}
	if want := ref.Add(time.Minute); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := (Recurrence{Kind: KindOnce}).NotificationDate(ref); err == nil {
		t.Error("expected error for once recurrence without timing")
	}
	if _, err := (Recurrence{Kind: "sometimes"}).NotificationDate(ref); err == nil {
		t.Error("expected error for unknown kind")
	}
}
