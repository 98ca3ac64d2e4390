package timing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a timing expression that could not be recognized or
// was not consumed completely.
type ParseError struct {
	Input     string
	Remainder string
}

func (e *ParseError) Error() string {
	if e.Remainder == "" || e.Remainder == e.Input {
		return fmt.Sprintf("cannot parse timing expression %q", e.Input)
	}
	return fmt.Sprintf("cannot parse timing expression %q: unexpected input at %q", e.Input, e.Remainder)
}

// scanner is a minimal cursor over the input. Every alternative saves the
// position before attempting a match and restores it on failure, so
// alternatives compose the way the grammar declares them.
type scanner struct {
	input string
	pos   int
}

func (s *scanner) rest() string {
	return s.input[s.pos:]
}

func (s *scanner) done() bool {
	return s.pos == len(s.input)
}

func (s *scanner) save() int {
	return s.pos
}

func (s *scanner) restore(mark int) {
	s.pos = mark
}

func (s *scanner) char(c byte) bool {
	if s.pos < len(s.input) && s.input[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

// literal matches exactly, case-sensitively. Unit tags depend on case
// ("M" months vs "m" minutes).
func (s *scanner) literal(lit string) bool {
	if strings.HasPrefix(s.input[s.pos:], lit) {
		s.pos += len(lit)
		return true
	}
	return false
}

// literalFold matches ASCII case-insensitively, for weekday and month
// names.
func (s *scanner) literalFold(lit string) bool {
	rest := s.input[s.pos:]
	if len(rest) < len(lit) {
		return false
	}
	if strings.EqualFold(rest[:len(lit)], lit) {
		s.pos += len(lit)
		return true
	}
	return false
}

func (s *scanner) digits() (string, bool) {
	start := s.pos
	for s.pos < len(s.input) && s.input[s.pos] >= '0' && s.input[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.input[start:s.pos], true
}

// digitsMax consumes one to max digits.
func (s *scanner) digitsMax(max int) (string, bool) {
	start := s.pos
	for s.pos < len(s.input) && s.pos-start < max && s.input[s.pos] >= '0' && s.input[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.input[start:s.pos], true
}

func (s *scanner) int(max int) (int, bool) {
	text, ok := s.digitsMax(max)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *scanner) fail(input string) *ParseError {
	return &ParseError{Input: input, Remainder: s.rest()}
}

// ParseTimeOfDay parses a clock time in "h:mm[:ss]" form with one or two
// digit components, validated to a real time.
func ParseTimeOfDay(input string) (TimeOfDay, error) {
	s := &scanner{input: input}
	t, ok := parseClock(s)
	if !ok || !s.done() {
		return TimeOfDay{}, s.fail(input)
	}
	return t, nil
}

func parseClock(s *scanner) (TimeOfDay, bool) {
	mark := s.save()

	hour, ok := s.int(2)
	if !ok || !s.char(':') {
		s.restore(mark)
		return TimeOfDay{}, false
	}
	minute, ok := s.int(2)
	if !ok {
		s.restore(mark)
		return TimeOfDay{}, false
	}

	second := 0
	secMark := s.save()
	if s.char(':') {
		if sec, ok := s.int(2); ok {
			second = sec
		} else {
			s.restore(secMark)
		}
	}

	if hour > 23 || minute > 59 || second > 59 {
		s.restore(mark)
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: hour, Minute: minute, Second: second}, true
}

// parseOptTime consumes " h:mm[:ss]" when present. The space and the
// clock stand or fall together.
func parseOptTime(s *scanner) *TimeOfDay {
	mark := s.save()
	if s.char(' ') {
		if t, ok := parseClock(s); ok {
			return &t
		}
	}
	s.restore(mark)
	return nil
}

type durationUnit struct {
	long    string
	short   string
	seconds int64
	subDay  bool
}

// Declared largest-first; each unit may appear at most once and the order
// is fixed, so "5d 3w" does not parse.
var durationUnits = []durationUnit{
	{"year", "y", secondsInYear, false},
	{"months", "M", secondsInMonth, false},
	{"weeks", "w", secondsInWeek, false},
	{"days", "d", secondsInDay, false},
	{"hour", "h", secondsInHour, true},
	{"min", "m", 60, true},
	{"sec", "s", 1, true},
}

// ParseDelay parses a space-separated combination of duration atoms. The
// result is seconds-denominated when any sub-day unit appeared, otherwise
// whole-days-denominated.
func ParseDelay(input string) (Delay, error) {
	s := &scanner{input: input}
	d, ok := parseDuration(s)
	if !ok || !s.done() {
		return Delay{}, s.fail(input)
	}
	return d, nil
}

func parseDuration(s *scanner) (Delay, bool) {
	var total int64
	matched := false
	subDay := false

	for _, unit := range durationUnits {
		mark := s.save()
		if text, ok := s.digits(); ok {
			if s.literal(unit.long) || s.literal(unit.short) {
				count, err := strconv.ParseInt(text, 10, 64)
				if err == nil {
					total += count * unit.seconds
					matched = true
					subDay = subDay || unit.subDay
					s.char(' ')
					continue
				}
			}
		}
		s.restore(mark)
		s.char(' ')
	}

	if !matched {
		return Delay{}, false
	}
	if subDay {
		return Delay{Count: total, Unit: DelaySeconds}, true
	}
	return Delay{Count: total / secondsInDay, Unit: DelayDays}, true
}

// ParseRoughInstant parses a one-shot instant expression. Instants like
// "today", "tomorrow" and year-less dates resolve against the supplied
// now; the parser never reads the wall clock itself.
func ParseRoughInstant(input string, now time.Time) (RoughInstant, error) {
	s := &scanner{input: input}
	r, ok := parseRoughInstant(s, now)
	if !ok || !s.done() {
		return RoughInstant{}, s.fail(input)
	}
	return r, nil
}

// Alternatives in declared order: day-of-month, day-of-week, today,
// tomorrow, date, bare month. First match wins.
func parseRoughInstant(s *scanner, now time.Time) (RoughInstant, bool) {
	if r, ok := parseInstantDayOfMonth(s); ok {
		return r, true
	}
	if day, ok := parseWeekdayName(s); ok {
		return RoughInstant{Kind: InstantDayOfWeek, Day: day, Time: parseOptTime(s)}, true
	}
	if r, ok := parseToday(s, now); ok {
		return r, true
	}
	if r, ok := parseTomorrow(s, now); ok {
		return r, true
	}
	if r, ok := parseDateInstant(s, now); ok {
		return r, true
	}
	if month, ok := parseMonthName(s); ok {
		return RoughInstant{Kind: InstantMonth, Month: month}, true
	}
	return RoughInstant{}, false
}

func parseInstantDayOfMonth(s *scanner) (RoughInstant, bool) {
	mark := s.save()
	if !s.literal("dom") || !s.char(' ') {
		s.restore(mark)
		return RoughInstant{}, false
	}
	day, ok := parseMonthDay(s)
	if !ok {
		s.restore(mark)
		return RoughInstant{}, false
	}
	return RoughInstant{Kind: InstantDayOfMonth, Day: day, Time: parseOptTime(s)}, true
}

// parseMonthDay reads a day number and rejects 0 and >31 at parse time.
func parseMonthDay(s *scanner) (int, bool) {
	text, ok := s.digits()
	if !ok {
		return 0, false
	}
	day, err := strconv.Atoi(text)
	if err != nil || day == 0 || day > 31 {
		return 0, false
	}
	return day, true
}

func parseWeekdayName(s *scanner) (int, bool) {
	for i, name := range weekdayNames {
		if s.literalFold(name) {
			return i, true
		}
	}
	return 0, false
}

func parseMonthName(s *scanner) (int, bool) {
	for i, name := range monthNames {
		if s.literalFold(name) {
			return i, true
		}
	}
	return 0, false
}

// "today" requires an explicit time; a bare "today" would mean "now" and
// is rejected.
func parseToday(s *scanner, now time.Time) (RoughInstant, bool) {
	mark := s.save()
	if !s.literal("today") {
		return RoughInstant{}, false
	}
	t := parseOptTime(s)
	if t == nil {
		s.restore(mark)
		return RoughInstant{}, false
	}
	date := atTime(now, *t)
	return RoughInstant{Kind: InstantDate, Date: &date}, true
}

func parseTomorrow(s *scanner, now time.Time) (RoughInstant, bool) {
	if !s.literal("tomorrow") {
		return RoughInstant{}, false
	}
	t := parseOptTime(s)
	if t == nil {
		t = &TimeOfDay{}
	}
	date := atTime(now.AddDate(0, 0, 1), *t)
	return RoughInstant{Kind: InstantDate, Date: &date}, true
}

// parseDateInstant parses "y-M-d" or "d-M" (year implied from now), each
// optionally followed by a time.
func parseDateInstant(s *scanner, now time.Time) (RoughInstant, bool) {
	year, month, day, ok := parseYMD(s)
	if !ok {
		year = now.Year()
		day, month, ok = parseDayMonth(s)
		if !ok {
			return RoughInstant{}, false
		}
	}
	if !validDate(year, month, day) {
		return RoughInstant{}, false
	}

	tod := TimeOfDay{}
	if t := parseOptTime(s); t != nil {
		tod = *t
	}
	date := time.Date(year, time.Month(month), day, tod.Hour, tod.Minute, tod.Second, 0, now.Location())
	return RoughInstant{Kind: InstantDate, Date: &date}, true
}

func parseYMD(s *scanner) (year, month, day int, ok bool) {
	mark := s.save()
	yearText, ok := s.digits()
	if !ok || !s.char('-') {
		s.restore(mark)
		return 0, 0, 0, false
	}
	monthText, ok := s.digits()
	if !ok || !s.char('-') {
		s.restore(mark)
		return 0, 0, 0, false
	}
	dayText, ok := s.digits()
	if !ok {
		s.restore(mark)
		return 0, 0, 0, false
	}

	year, _ = strconv.Atoi(yearText)
	month, _ = strconv.Atoi(monthText)
	day, _ = strconv.Atoi(dayText)
	return year, month, day, true
}

func parseDayMonth(s *scanner) (day, month int, ok bool) {
	mark := s.save()
	dayText, ok := s.digits()
	if !ok || !s.char('-') {
		s.restore(mark)
		return 0, 0, false
	}
	monthText, ok := s.digits()
	if !ok {
		s.restore(mark)
		return 0, 0, false
	}

	day, _ = strconv.Atoi(dayText)
	month, _ = strconv.Atoi(monthText)
	return day, month, true
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysInMonth(year, time.Month(month))
}

// ParseRepeatExact parses a recurring calendar anchor: "daily[ time]", a
// weekday name, or "monthly <1-31>[ time]".
func ParseRepeatExact(input string) (RepeatExact, error) {
	s := &scanner{input: input}
	r, ok := parseRepeatExact(s)
	if !ok || !s.done() {
		return RepeatExact{}, s.fail(input)
	}
	return r, nil
}

func parseRepeatExact(s *scanner) (RepeatExact, bool) {
	if r, ok := parseRepeatDayOfMonth(s); ok {
		return r, true
	}
	if day, ok := parseWeekdayName(s); ok {
		return RepeatExact{Kind: ExactDayOfWeek, Day: day, Time: parseOptTime(s)}, true
	}
	if s.literal("daily") {
		return RepeatExact{Kind: ExactDaily, Time: parseOptTime(s)}, true
	}
	return RepeatExact{}, false
}

func parseRepeatDayOfMonth(s *scanner) (RepeatExact, bool) {
	mark := s.save()
	if !s.literal("monthly") || !s.char(' ') {
		s.restore(mark)
		return RepeatExact{}, false
	}
	day, ok := parseMonthDay(s)
	if !ok {
		s.restore(mark)
		return RepeatExact{}, false
	}
	return RepeatExact{Kind: ExactDayOfMonth, Day: day, Time: parseOptTime(s)}, true
}

// ParseOnceTiming parses a one-shot timing: an instant, or failing that a
// delay. The two top-level alternatives are composed by ordered choice.
func ParseOnceTiming(input string, now time.Time) (OnceTiming, error) {
	if instant, err := ParseRoughInstant(input, now); err == nil {
		return OnceTiming{Instant: &instant}, nil
	}
	if delay, err := ParseDelay(input); err == nil {
		return OnceTiming{Delay: &delay}, nil
	}
	return OnceTiming{}, &ParseError{Input: input, Remainder: input}
}

// ParseRepeatTiming parses a repeating timing: a calendar anchor, or
// failing that a delay.
func ParseRepeatTiming(input string) (RepeatTiming, error) {
	if exact, err := ParseRepeatExact(input); err == nil {
		return RepeatTiming{Exact: &exact}, nil
	}
	if delay, err := ParseDelay(input); err == nil {
		return RepeatTiming{Delay: &delay}, nil
	}
	return RepeatTiming{}, &ParseError{Input: input, Remainder: input}
}
