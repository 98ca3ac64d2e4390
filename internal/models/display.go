package models

import (
	"fmt"
	"strings"
	"time"
)

// Describe renders the entry for `procrastinate list`: title, message,
// reference timestamp, the next notification compressed to "now",
// "today", "tomorrow at h:mm" or a short date, and a flags line.
func (p *Procrastination) Describe(now time.Time, usDates bool) string {
	var b strings.Builder

	b.WriteString(p.Title)
	if p.Message != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Message)
		b.WriteString("\n")
	}

	label := "last notified"
	if p.Timing.IsOnce() {
		label = "created at"
	}
	fmt.Fprintf(&b, "\n%s: %s\n", label, formatTimestamp(p.Timestamp, now, usDates))

	if kind, next, err := p.NextNotification(); err == nil && kind != KindNone {
		fmt.Fprintf(&b, "next notification: %s\n", formatUpcoming(next, now, usDates))
	}

	b.WriteString("flags: ")
	if p.Timing.IsOnce() {
		b.WriteString("once")
	} else {
		b.WriteString("repeating")
	}
	if p.Sticky {
		b.WriteString(", sticky")
	}
	if p.Sleep != nil {
		b.WriteString(", sleeping")
	}

	return b.String()
}

func formatUpcoming(ts, now time.Time, usDates bool) string {
	if !ts.After(now) {
		return "now"
	}

	hasTime := ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0
	today := now.Format("2006-01-02")
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")

	switch ts.Format("2006-01-02") {
	case today:
		if hasTime {
			return formatClock(ts)
		}
		return "today"
	case tomorrow:
		if hasTime {
			return "tomorrow at " + formatClock(ts)
		}
		return "tomorrow"
	}
	return formatTimestamp(ts, now, usDates)
}

func formatClock(ts time.Time) string {
	if ts.Second() != 0 {
		return fmt.Sprintf("%d:%02d:%02d", ts.Hour(), ts.Minute(), ts.Second())
	}
	return fmt.Sprintf("%d:%02d", ts.Hour(), ts.Minute())
}

// formatTimestamp prints day.month order by default, month.day when
// usDates is set, appending the year only when it differs from now's and
// the clock only when it is not midnight.
func formatTimestamp(ts, now time.Time, usDates bool) string {
	date := fmt.Sprintf("%02d.%02d", ts.Day(), int(ts.Month()))
	if usDates {
		date = fmt.Sprintf("%02d.%02d", int(ts.Month()), ts.Day())
	}
	if ts.Year() != now.Year() {
		date += fmt.Sprintf(".%d", ts.Year())
	}

	hasTime := ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0
	if !hasTime {
		return date
	}
	return date + " " + formatClock(ts)
}
