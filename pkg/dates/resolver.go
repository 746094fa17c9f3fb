// Package dates resolves relative deadline phrases ("next Friday",
// "in 2 weeks") to absolute calendar dates against a reference date.
//
// The grammar is deliberately small and deterministic. Anything it does not
// recognize is left for oracle resolution downstream; this package never
// guesses. Dates are naive calendar days normalized to UTC midnight, no
// timezone handling.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// weekdayIndex maps lowercase weekday names to Monday-based indices,
// matching the offset math used throughout this package.
var weekdayIndex = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// weekdayOrder keeps iteration deterministic across runs.
var weekdayOrder = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var (
	inDaysPattern  = regexp.MustCompile(`in (\d+) days?`)
	inWeeksPattern = regexp.MustCompile(`in (\d+) weeks?`)
)

// todayPhrases resolve to the reference date itself.
var todayPhrases = map[string]bool{
	"today":      true,
	"by today":   true,
	"eod":        true,
	"end of day": true,
	"today eod":  true,
}

// tomorrowPhrases resolve to the day after the reference date.
var tomorrowPhrases = map[string]bool{
	"tomorrow":        true,
	"by tomorrow":     true,
	"tomorrow eod":    true,
	"by tomorrow eod": true,
}

// Midnight normalizes t to a naive calendar date at UTC midnight.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MondayIndex returns the weekday of t with Monday as 0 and Sunday as 6.
func MondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Resolve applies the relative-date grammar to text against the reference
// date. It is a pure function: the same (text, ref) pair always yields the
// same result. The second return value is false when no rule matches; the
// caller falls through to oracle resolution.
//
// Rules are tried in priority order; the first match wins:
//  1. today / eod synonyms
//  2. tomorrow synonyms
//  3. "in N days"
//  4. "in N weeks"
//  5. "next <weekday>" or "by <weekday>" - next strict occurrence
//  6. "this <weekday>" - current week's occurrence, may be the same day
//  7. bare "<weekday>" - next strict occurrence
//  8. "end of week" / "eow" - upcoming Friday, never the same day
//  9. "next week" - the Monday beginning the next calendar week
func Resolve(text string, ref time.Time) (time.Time, bool) {
	txt := strings.ToLower(strings.TrimSpace(text))
	if txt == "" {
		return time.Time{}, false
	}
	ref = Midnight(ref)

	if todayPhrases[txt] {
		return ref, true
	}
	if tomorrowPhrases[txt] {
		return ref.AddDate(0, 0, 1), true
	}

	if m := inDaysPattern.FindStringSubmatch(txt); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return ref.AddDate(0, 0, n), true
		}
	}
	if m := inWeeksPattern.FindStringSubmatch(txt); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return ref.AddDate(0, 0, 7*n), true
		}
	}

	refIdx := MondayIndex(ref)

	// "next Friday" / "by Friday" - the next occurrence strictly after the
	// reference date. An offset of zero or less rolls forward a week, so
	// these phrases never resolve to today or the past.
	for _, day := range weekdayOrder {
		if strings.Contains(txt, "next "+day) || strings.Contains(txt, "by "+day) {
			ahead := weekdayIndex[day] - refIdx
			if ahead <= 0 {
				ahead += 7
			}
			return ref.AddDate(0, 0, ahead), true
		}
	}

	// "this Friday" - the occurrence in the current week. Same-day stays
	// (offset zero), a weekday already passed rolls to next week, matching
	// "this" meaning "the next one, even if it's technically next week".
	for _, day := range weekdayOrder {
		if strings.Contains(txt, "this "+day) {
			ahead := weekdayIndex[day] - refIdx
			if ahead < 0 {
				ahead += 7
			}
			return ref.AddDate(0, 0, ahead), true
		}
	}

	// Bare weekday - same strict-next rule as "next <weekday>".
	for _, day := range weekdayOrder {
		if txt == day || txt == "by "+day {
			ahead := weekdayIndex[day] - refIdx
			if ahead <= 0 {
				ahead += 7
			}
			return ref.AddDate(0, 0, ahead), true
		}
	}

	// "end of week" - the upcoming Friday. On a Friday this resolves to the
	// Friday one week later, never the same day.
	if strings.Contains(txt, "end of week") || strings.Contains(txt, "eow") {
		ahead := (4 - refIdx + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return ref.AddDate(0, 0, ahead), true
	}

	// "next week" - the Monday that begins the next calendar week, even when
	// the reference date is itself a Monday.
	if strings.Contains(txt, "next week") {
		ahead := (7 - refIdx) % 7
		if ahead == 0 {
			ahead = 7
		}
		return ref.AddDate(0, 0, ahead), true
	}

	return time.Time{}, false
}
