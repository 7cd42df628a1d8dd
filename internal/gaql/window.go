// Package gaql builds Google Ads Query Language strings from immutable
// expression values, so handlers never concatenate filter fragments by hand.
package gaql

import (
	"strings"
	"time"
)

// WindowKind discriminates the three resolved time-filter outcomes.
type WindowKind int

const (
	// WindowNone means no date filtering at all (the "all time" sentinel).
	WindowNone WindowKind = iota
	// WindowPreset is a named range GAQL understands natively (DURING).
	WindowPreset
	// WindowRange is an explicit closed start/end date pair.
	WindowRange
)

// Window is a resolved time-filtering instruction.
type Window struct {
	Kind   WindowKind
	Preset string
	Start  time.Time
	End    time.Time
}

// DefaultWindowDays is the trailing window applied when the caller's time
// range is absent or unrecognized.
const DefaultWindowDays = 180

// presets GAQL accepts in a DURING clause.
var nativePresets = map[string]string{
	"TODAY":               "TODAY",
	"YESTERDAY":           "YESTERDAY",
	"LAST_7_DAYS":         "LAST_7_DAYS",
	"LAST_14_DAYS":        "LAST_14_DAYS",
	"LAST_30_DAYS":        "LAST_30_DAYS",
	"THIS_MONTH":          "THIS_MONTH",
	"LAST_MONTH":          "LAST_MONTH",
	"LAST_BUSINESS_WEEK":  "LAST_BUSINESS_WEEK",
	"THIS_WEEK_SUN_TODAY": "THIS_WEEK_SUN_TODAY",
	"THIS_WEEK_MON_TODAY": "THIS_WEEK_MON_TODAY",
	"LAST_WEEK_SUN_SAT":   "LAST_WEEK_SUN_SAT",
	"LAST_WEEK_MON_SUN":   "LAST_WEEK_MON_SUN",
}

// legacy aliases still sent by older dashboard builds.
var legacyAliases = map[string]string{
	"7DAYS":     "LAST_7_DAYS",
	"14DAYS":    "LAST_14_DAYS",
	"30DAYS":    "LAST_30_DAYS",
	"WEEK":      "LAST_7_DAYS",
	"MONTH":     "THIS_MONTH",
	"LASTMONTH": "LAST_MONTH",
}

var allTimeSentinels = map[string]bool{
	"ALL_TIME": true,
	"ALLTIME":  true,
	"ALL":      true,
}

// ResolveTimeWindow resolves a logical time-range token into a Window.
// Recognized named presets stay presets; quarter/year tokens and explicit
// "start,end" pairs become concrete date ranges; the "all time" sentinel
// resolves to no window at all. Anything else, including empty input, falls
// back to the default trailing window. Never fails.
func ResolveTimeWindow(input string) Window {
	return ResolveTimeWindowAt(input, time.Now())
}

// ResolveTimeWindowAt is ResolveTimeWindow anchored on an explicit instant.
func ResolveTimeWindowAt(input string, now time.Time) Window {
	token := strings.ToUpper(strings.TrimSpace(input))
	token = strings.ReplaceAll(token, "-", "_")
	token = strings.ReplaceAll(token, " ", "_")

	if allTimeSentinels[token] {
		return Window{Kind: WindowNone}
	}

	if alias, ok := legacyAliases[token]; ok {
		token = alias
	}

	if preset, ok := nativePresets[token]; ok {
		return Window{Kind: WindowPreset, Preset: preset}
	}

	// Quarters and years have no native GAQL preset, so they resolve to
	// explicit ranges.
	switch token {
	case "THIS_QUARTER", "QUARTER":
		start := quarterStart(now)
		return rangeWindow(start, now)
	case "LAST_QUARTER", "LASTQUARTER":
		thisQ := quarterStart(now)
		start := quarterStart(thisQ.AddDate(0, 0, -1))
		return rangeWindow(start, thisQ.AddDate(0, 0, -1))
	case "THIS_YEAR", "YEAR":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return rangeWindow(start, now)
	case "LAST_YEAR", "LASTYEAR":
		start := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year()-1, 12, 31, 0, 0, 0, 0, now.Location())
		return rangeWindow(start, end)
	}

	// Explicit "start,end" date pair.
	if start, end, ok := parseDatePair(input); ok {
		return rangeWindow(start, end)
	}

	return defaultWindow(now)
}

// FixedTrailingWindow returns a trailing range of the given number of days
// ending today, regardless of what the caller requested. Event-style
// resources (change history) reject long or absent windows and are clamped
// through this.
func FixedTrailingWindow(days int, now time.Time) Window {
	return rangeWindow(now.AddDate(0, 0, -days), now)
}

func defaultWindow(now time.Time) Window {
	return rangeWindow(now.AddDate(0, 0, -DefaultWindowDays), now)
}

func rangeWindow(start, end time.Time) Window {
	if end.Before(start) {
		start, end = end, start
	}
	return Window{Kind: WindowRange, Start: start, End: end}
}

func quarterStart(t time.Time) time.Time {
	month := ((int(t.Month())-1)/3)*3 + 1
	return time.Date(t.Year(), time.Month(month), 1, 0, 0, 0, 0, t.Location())
}

func parseDatePair(input string) (time.Time, time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(input), ",")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, false
	}

	start, err := time.Parse(time.DateOnly, strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	end, err := time.Parse(time.DateOnly, strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}
