package datetime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// canonicalLayout is the single Go reference-time layout every match is
// normalized into before time.Parse, regardless of which Pattern matched.
const canonicalLayout = "2006-01-02 15:04:05.000000 -0700"

// Fallback carries the values used to fill in fields a pattern doesn't
// capture: a sysline missing its year (most syslog timestamps), or one
// missing a timezone entirely.
type Fallback struct {
	Year         int // used when the pattern has no year group
	OffsetMinutes int // used when the pattern has no timezone group
}

var monthAbbrev = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// namedGroups extracts the named capture groups from a regex match into
// a map, skipping groups that didn't participate in the match.
func namedGroups(re *regexp.Regexp, m []int, raw []byte) map[string]string {
	out := make(map[string]string, len(re.SubexpNames()))
	for i, name := range re.SubexpNames() {
		if name == "" || m[2*i] < 0 {
			continue
		}
		out[name] = string(raw[m[2*i]:m[2*i+1]])
	}
	return out
}

// normalize builds the canonical time string for a match's captured
// groups, applying the transforms spec.md §4.3 calls for: month-name to
// numeric, space-padded day to zero-padded, missing year/timezone
// substitution, and named-timezone lookup.
func normalize(groups map[string]string, fb Fallback) (string, error) {
	year, err := normalizeYear(groups, fb)
	if err != nil {
		return "", err
	}
	month, err := normalizeMonth(groups)
	if err != nil {
		return "", err
	}
	day, err := normalizeDay(groups)
	if err != nil {
		return "", err
	}
	hour := groups["hour"]
	minute := groups["minute"]
	second := groups["second"]
	if hour == "" || minute == "" || second == "" {
		return "", fmt.Errorf("datetime: pattern missing required time-of-day field")
	}
	frac := normalizeFrac(groups["frac"])
	offset, err := normalizeOffset(groups, fb)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%04d-%02d-%02d %s:%s:%s.%s %s",
		year, month, day, hour, minute, second, frac, offset), nil
}

func normalizeYear(groups map[string]string, fb Fallback) (int, error) {
	if y, ok := groups["year"]; ok && y != "" {
		return strconv.Atoi(y)
	}
	if y2, ok := groups["year2"]; ok && y2 != "" {
		n, err := strconv.Atoi(y2)
		if err != nil {
			return 0, err
		}
		if n < 69 {
			return 2000 + n, nil
		}
		return 1900 + n, nil
	}
	if fb.Year == 0 {
		return 0, fmt.Errorf("datetime: no year captured and no fallback year supplied")
	}
	return fb.Year, nil
}

func normalizeMonth(groups map[string]string) (int, error) {
	if m, ok := groups["month"]; ok && m != "" {
		return strconv.Atoi(m)
	}
	if name, ok := groups["monthname"]; ok && name != "" {
		key := strings.ToLower(name)[:3]
		if n, ok := monthAbbrev[key]; ok {
			return n, nil
		}
		return 0, fmt.Errorf("datetime: unrecognized month name %q", name)
	}
	return 0, fmt.Errorf("datetime: pattern missing month field")
}

func normalizeDay(groups map[string]string) (int, error) {
	d, ok := groups["day"]
	if !ok || d == "" {
		return 0, fmt.Errorf("datetime: pattern missing day field")
	}
	// %e space-padded day ("_e_to_d" in the original): trim and re-pad.
	d = strings.TrimSpace(d)
	return strconv.Atoi(d)
}

func normalizeFrac(raw string) string {
	if raw == "" {
		return "000000"
	}
	if len(raw) >= 6 {
		return raw[:6]
	}
	return raw + strings.Repeat("0", 6-len(raw))
}

func normalizeOffset(groups map[string]string, fb Fallback) (string, error) {
	if off, ok := groups["tzoffset"]; ok && off != "" {
		minutes, err := parseNumericOffset(off)
		if err != nil {
			return "", err
		}
		return formatOffset(minutes), nil
	}
	if name, ok := groups["tzname"]; ok && name != "" {
		if name == "Z" {
			return "+0000", nil
		}
		if minutes, ok := LookupZoneAbbrev(strings.ToUpper(name)); ok {
			return formatOffset(minutes), nil
		}
		// Ambiguous or unknown name observed in content: fall back to
		// the caller-supplied offset rather than rejecting the line.
		return formatOffset(fb.OffsetMinutes), nil
	}
	return formatOffset(fb.OffsetMinutes), nil
}

func parseNumericOffset(s string) (int, error) {
	if s == "Z" || s == "" {
		return 0, nil
	}
	sign := 1
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	}
	s = strings.ReplaceAll(s, ":", "")
	if len(s) != 4 {
		return 0, fmt.Errorf("datetime: malformed timezone offset")
	}
	hh, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, err
	}
	mm, err := strconv.Atoi(s[2:])
	if err != nil {
		return 0, err
	}
	return sign * (hh*60 + mm), nil
}

func formatOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d%02d", sign, minutes/60, minutes%60)
}

// parseCanonical parses the canonical normalized string into a Time
// whose Location is a fixed zone reflecting the parsed offset.
func parseCanonical(s string) (time.Time, error) {
	return time.Parse(canonicalLayout, s)
}
