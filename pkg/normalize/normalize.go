// Package normalize canonicalizes scalar values so that records from
// different sources become comparable: timestamps to UTC, finish statuses to
// a closed vocabulary, names to a consistent casing, and lap numbers,
// positions, time strings, driver codes, and tyre compounds to canonical
// forms.
//
// Every function is pure and fails closed: bad input yields a "not ok" result
// (logged for diagnosis), never an error. Callers must treat a missing result
// as "unknown" rather than a failure to propagate.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/agentstation/utc"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pitwall/gridsync/pkg/logging"
	"github.com/pitwall/gridsync/pkg/sources"
)

// naiveLayouts are the fallback layouts tried for timestamps without zone
// information, in order.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp normalizes a timestamp to a timezone-aware UTC instant.
// It accepts a time value or a string; string parsing attempts ISO-8601
// first, then the fallback layouts. A naive result is localized using loc if
// given, otherwise treated as already UTC. Returns nil if unparseable.
func Timestamp(value any, loc *time.Location) *utc.Time {
	if value == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	switch v := value.(type) {
	case utc.Time:
		return &v
	case *utc.Time:
		return v
	case time.Time:
		t := utc.New(localize(v, loc).UTC())
		return &t
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			t := utc.New(parsed.UTC())
			return &t
		}
		for _, layout := range naiveLayouts {
			if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
				t := utc.New(parsed.UTC())
				return &t
			}
		}
		logging.Warn().Str("timestamp", s).Msg("Could not parse timestamp")
		return nil
	default:
		logging.Warn().Interface("timestamp", value).Msg("Unknown timestamp type")
		return nil
	}
}

// localize attaches loc to a naive time. Go time values always carry a
// location, so "naive" here means the zero UTC offset produced by decoding
// date-only values; values with an explicit offset are kept as-is.
func localize(t time.Time, loc *time.Location) time.Time {
	if t.Location() == time.UTC && loc != time.UTC {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	}
	return t
}

// statusMappings maps upper-cased raw status text onto the closed vocabulary.
var statusMappings = map[string]string{
	"FINISHED":       "Finished",
	"F":              "Finished",
	"DNF":            "DNF",
	"DID NOT FINISH": "DNF",
	"NOT CLASSIFIED": "DNF",
	"NC":             "DNF",
	"RETIRED":        "DNF",
	"R":              "DNF",
	"DNS":            "DNS",
	"DID NOT START":  "DNS",
	"DSQ":            "DSQ",
	"DISQUALIFIED":   "DSQ",
	"EX":             "DSQ",
	"WD":             "Withdrew",
	"WITHDREW":       "Withdrew",
}

// Status normalizes raw finish-status text onto the closed vocabulary
// {Finished, DNF, DNS, DSQ, Withdrew}: exact lookup first, then substring
// heuristics. Unrecognized non-empty text passes through trimmed; empty input
// yields "Unknown".
func Status(status string) string {
	trimmed := strings.TrimSpace(status)
	if trimmed == "" {
		return "Unknown"
	}

	upper := strings.ToUpper(trimmed)
	if mapped, ok := statusMappings[upper]; ok {
		return mapped
	}

	switch {
	case strings.Contains(upper, "DNF"), strings.Contains(upper, "NOT FINISH"):
		return "DNF"
	case strings.Contains(upper, "DNS"), strings.Contains(upper, "NOT START"):
		return "DNS"
	case strings.Contains(upper, "DSQ"), strings.Contains(upper, "DISQUAL"):
		return "DSQ"
	case strings.Contains(upper, "FINISH"), strings.Contains(upper, "COMPLETED"):
		return "Finished"
	}

	return trimmed
}

// Name collapses whitespace and title-cases each word, preserving all-caps
// tokens of up to three letters as abbreviations ("GP", "F1").
func Name(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}

	title := cases.Title(language.Und)
	for i, word := range words {
		if isAbbreviation(word) {
			continue
		}
		words[i] = title.String(strings.ToLower(word))
	}
	return strings.Join(words, " ")
}

// isAbbreviation reports whether a token is all-caps with at most three runes
// and at least one letter.
func isAbbreviation(word string) bool {
	runes := []rune(word)
	if len(runes) > 3 {
		return false
	}
	hasLetter := false
	for _, r := range runes {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// circuitSubstitutions are applied after Name, in order.
var circuitSubstitutions = [][2]string{
	{"Grand Prix", "GP"},
	{"International Circuit", "Circuit"},
	{"Racing Circuit", "Circuit"},
}

// CircuitName normalizes a circuit name: Name plus canonical substitutions.
func CircuitName(name string) string {
	normalized := Name(name)
	for _, sub := range circuitSubstitutions {
		normalized = strings.ReplaceAll(normalized, sub[0], sub[1])
	}
	return strings.TrimSpace(normalized)
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// LapNumber aligns a lap number across sources: strings are stripped of
// non-digit characters, numeric input is truncated to an integer.
func LapNumber(value any, source sources.ID) (int, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	case string:
		digits := nonDigits.ReplaceAllString(v, "")
		if digits == "" {
			return 0, false
		}
		lap, err := strconv.Atoi(digits)
		if err != nil {
			logging.Warn().Str("lap", v).Str("source", source.String()).Msg("Could not normalize lap number")
			return 0, false
		}
		return lap, true
	default:
		logging.Warn().Interface("lap", value).Str("source", source.String()).Msg("Unknown lap number type")
		return 0, false
	}
}

var (
	nonTimeChars = regexp.MustCompile(`[^\d:.]`)
	timePattern  = regexp.MustCompile(`^\d+:\d{2}(:\d{2})?(\.\d+)?$`)
)

// TimeString normalizes a lap/sector/gap time string: a leading "+" is
// stripped, characters outside digits, ":" and "." are removed, and the
// result is accepted only if it matches M:SS[.mmm] or H:MM:SS[.mmm].
func TimeString(value string) (string, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return "", false
	}

	s = strings.TrimPrefix(s, "+")
	s = nonTimeChars.ReplaceAllString(s, "")

	if !timePattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// DriverCode normalizes a 3-letter driver abbreviation: upper-cased, exactly
// three alphabetic characters. Longer input is truncated to its first three
// characters; shorter input is rejected.
func DriverCode(value string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(value))

	switch {
	case len(code) == 3 && isAlpha(code):
		return code, true
	case len(code) > 3:
		return code[:3], true
	default:
		return "", false
	}
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// compoundMappings maps historical marketing names onto the current compound
// vocabulary. Current names map to themselves.
var compoundMappings = map[string]string{
	"SOFT":         "SOFT",
	"MEDIUM":       "MEDIUM",
	"HARD":         "HARD",
	"INTERMEDIATE": "INTERMEDIATE",
	"WET":          "WET",
	"C1":           "C1",
	"C2":           "C2",
	"C3":           "C3",
	"C4":           "C4",
	"C5":           "C5",
	"SUPERSOFT":    "C5",
	"ULTRASOFT":    "C5",
	"HYPERSOFT":    "C5",
}

// TyreCompound normalizes a tyre compound name. Unrecognized values pass
// through upper-cased.
func TyreCompound(value string) (string, bool) {
	compound := strings.ToUpper(strings.TrimSpace(value))
	if compound == "" {
		return "", false
	}
	if mapped, ok := compoundMappings[compound]; ok {
		return mapped, true
	}
	return compound, true
}

// Position coerces a classification position to a positive integer. Strings
// are stripped of non-digit characters first; non-positive or unparseable
// input is rejected.
func Position(value any) (int, bool) {
	var pos int
	switch v := value.(type) {
	case nil:
		return 0, false
	case int:
		pos = v
	case int64:
		pos = int(v)
	case float64:
		pos = int(v)
	case float32:
		pos = int(v)
	case string:
		digits := nonDigits.ReplaceAllString(v, "")
		if digits == "" {
			return 0, false
		}
		parsed, err := strconv.Atoi(digits)
		if err != nil {
			return 0, false
		}
		pos = parsed
	default:
		return 0, false
	}

	if pos <= 0 {
		return 0, false
	}
	return pos, true
}
