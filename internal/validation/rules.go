package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxDays  = 31
	MaxTimes = 336 // two weeks of half-hour slots
)

// Result is the outcome of a Rule: valid, or invalid with a reason.
type Result struct {
	Valid  bool
	Reason string
}

func Valid() Result {
	return Result{Valid: true}
}

func Invalid(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Rule is a named predicate over a single value.
type Rule[T any] interface {
	Name() string
	Check(value T) Result
}

type ruleFunc[T any] struct {
	name  string
	check func(T) Result
}

func (r ruleFunc[T]) Name() string {
	return r.name
}

func (r ruleFunc[T]) Check(value T) Result {
	return r.check(value)
}

// NewRule adapts a plain function into a Rule.
func NewRule[T any](name string, check func(T) Result) Rule[T] {
	return ruleFunc[T]{name: name, check: check}
}

// TimeWindow is the start/end pair of an event as sent by the client.
type TimeWindow struct {
	Start string
	End   string
}

var (
	// DaysRule accepts a non-empty list of unique weekday labels
	// ("Mon", "monday") or calendar dates ("2024-01-01").
	DaysRule = NewRule("days", checkDays)

	// TimesRule accepts a possibly empty list of unique ISO-8601 date-times.
	TimesRule = NewRule("times", checkTimes)

	// TimeWindowRule rejects windows whose end sorts before their start.
	//
	// The comparison is on the raw strings. It matches instant order only when
	// both values share a timezone designator and precision; clients of this
	// API rely on that behaviour, so it is not parsed.
	TimeWindowRule = NewRule("start_before_end", checkTimeWindow)
)

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func checkDays(days []string) Result {
	if len(days) == 0 {
		return Invalid("must contain at least one day")
	}
	if len(days) > MaxDays {
		return Invalid("must not contain more than %d days", MaxDays)
	}

	seen := make(map[string]bool, len(days))
	for i, day := range days {
		key := strings.ToLower(strings.TrimSpace(day))
		if key == "" {
			return Invalid("day %d is empty", i)
		}

		if wd, ok := weekdays[key]; ok {
			key = wd.String()
		} else if _, err := time.Parse(time.DateOnly, key); err != nil {
			return Invalid("day %q is neither a weekday nor a YYYY-MM-DD date", day)
		}

		if seen[key] {
			return Invalid("day %q is listed more than once", day)
		}
		seen[key] = true
	}

	return Valid()
}

func checkTimes(times []string) Result {
	if len(times) > MaxTimes {
		return Invalid("must not contain more than %d times", MaxTimes)
	}

	seen := make(map[string]bool, len(times))
	for i, t := range times {
		if !IsISO8601DateTime(t) {
			return Invalid("time %d (%q) is not an ISO-8601 date-time", i, t)
		}
		if seen[t] {
			return Invalid("time %q is listed more than once", t)
		}
		seen[t] = true
	}

	return Valid()
}

func checkTimeWindow(w TimeWindow) Result {
	if w.End < w.Start {
		return Invalid("end time must be after start time")
	}
	return Valid()
}

// The ISO-8601 grammar below is validator.js's non-strict isISO8601. RE2 has
// no backreferences, so the extended and basic separator forms are spelled
// out as separate alternatives.
const (
	isoYear    = `[+-]?\d{4}`
	isoMonth   = `(0[1-9]|1[0-2])`
	isoDay     = `([12]\d|0[1-9]|3[01])`
	isoWeek    = `W([0-4]\d|5[0-3])`
	isoOrdinal = `(00[1-9]|0[1-9]\d|[12]\d{2}|3([0-5]\d|6[1-6]))`
	isoHour    = `([01]\d|2[0-3])`
	isoFrac    = `([.,]\d+)?`
	isoSecond  = `[0-5]\d` + isoFrac
	isoOffset  = `([zZ]|[+-]([01]\d|2[0-3]):?([0-5]\d)?)?`

	isoDate = `(` +
		`-` + isoMonth + `(-` + isoDay + `)?` +
		`|` + isoMonth + isoDay + `?` +
		`|-?` + isoWeek + `(-?[1-7])?` +
		`|-?` + isoOrdinal +
		`)`

	// A fraction after extended minutes ends the time; seconds need ':'.
	isoClock = isoHour + `:[0-5]\d([.,]\d+|(:` + isoSecond + `)?)` +
		`|` + isoHour + `[0-5]\d` + isoFrac + `(` + isoSecond + `)?` +
		`|` + isoHour + isoFrac + `(` + isoSecond + `)?` +
		`|24:?00` + isoFrac + `(` + isoSecond + `)?`
)

var (
	iso8601Regex = regexp.MustCompile(
		`^` + isoYear + `(` + isoDate + `([T\s](` + isoClock + `|(` + isoSecond + `)?)` + isoOffset + `)?)?$`)

	iso8601DateTimeRegex = regexp.MustCompile(
		`^` + isoYear + isoDate + `[T\s](` + isoClock + `)` + isoOffset + `$`)
)

// IsISO8601 reports whether s is an ISO-8601 date, optionally followed by a
// time of day and offset. Calendar, week and ordinal dates are accepted in
// extended or basic format.
func IsISO8601(s string) bool {
	return iso8601Regex.MatchString(s) && !bareBasicYearMonth(s)
}

// IsISO8601DateTime is IsISO8601 with an hour required.
func IsISO8601DateTime(s string) bool {
	return iso8601DateTimeRegex.MatchString(s) && !bareBasicYearMonth(s)
}

// bareBasicYearMonth rejects YYYYMM not followed by a word character, which
// ISO-8601 forbids as ambiguous with YYMMDD.
func bareBasicYearMonth(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if len(s) < 6 || !isDigit(s[4]) || !isDigit(s[5]) {
		return false
	}
	return len(s) == 6 || !isWordChar(s[6])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordChar(c byte) bool {
	return isDigit(c) || c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

// IsValidObjectID reports whether s is a 24 character hex MongoDB ObjectID.
func IsValidObjectID(s string) bool {
	return primitive.IsValidObjectID(s)
}
