package datetime

import "fmt"

// zoneOffsets maps common timezone abbreviations to their UTC offset in
// minutes. Abbreviations that name more than one real-world zone (e.g.
// "CST" is used in North America, China, and Cuba with different
// offsets) are listed in ambiguousZones, which is checked first, so they
// are never resolved from this table even when present here (IST) — the
// caller-supplied fallback offset is used
// for those when parsing a line, matching spec.md's rule that ambiguous
// abbreviations are rejected only when given explicitly (on the CLI),
// never when merely observed in a file.
var zoneOffsets = map[string]int{
	"UTC": 0, "GMT": 0, "UT": 0, "Z": 0,
	"EST": -5 * 60, "EDT": -4 * 60,
	"MST": -7 * 60, "MDT": -6 * 60,
	"PST": -8 * 60, "PDT": -7 * 60,
	"AKST": -9 * 60, "AKDT": -8 * 60,
	"HST": -10 * 60,
	"WET": 0, "WEST": 1 * 60,
	"CET": 1 * 60, "CEST": 2 * 60,
	"EET": 2 * 60, "EEST": 3 * 60,
	"MSK": 3 * 60,
	"IST": 5*60 + 30,
	"JST": 9 * 60,
	"KST": 9 * 60,
	"AEST": 10 * 60, "AEDT": 11 * 60,
	"ACST": 9*60 + 30, "ACDT": 10*60 + 30,
	"AWST": 8 * 60,
	"NZST": 12 * 60, "NZDT": 13 * 60,
	"BRT": -3 * 60,
	"ART": -3 * 60,
}

// ambiguousZones names abbreviations with more than one real offset in
// common use, which must be rejected when given as an explicit CLI
// value rather than silently guessed.
var ambiguousZones = map[string]bool{
	"CST": true, // US Central (-6) vs China (+8) vs Cuba (-5)
	"IST": true, // India (+5:30) vs Ireland (+1) vs Israel (+2)
	"BST": true, // British Summer (+1) vs Bangladesh (+6)
}

// LookupZoneAbbrev resolves a timezone abbreviation to a UTC offset in
// minutes. The second return is false for unknown or ambiguous names.
func LookupZoneAbbrev(name string) (offsetMinutes int, ok bool) {
	if ambiguousZones[name] {
		return 0, false
	}
	off, ok := zoneOffsets[name]
	return off, ok
}

// ParseCLIZoneOffset resolves a user-supplied --tz-offset value (either
// a numeric offset like "+0530"/"-05:00" or a known abbreviation) for
// use as the fallback zone. Unlike resolution of names found in log
// content, an ambiguous abbreviation given explicitly here is an error:
// the user must disambiguate by offset instead.
func ParseCLIZoneOffset(s string) (offsetMinutes int, err error) {
	if ambiguousZones[s] {
		return 0, fmt.Errorf("datetime: %q is an ambiguous timezone abbreviation; specify a numeric offset instead", s)
	}
	if off, ok := zoneOffsets[s]; ok {
		return off, nil
	}
	return parseNumericOffset(s)
}
