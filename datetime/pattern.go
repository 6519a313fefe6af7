// Package datetime locates and parses timestamps embedded in log lines
// using a prioritized table of (regex, field layout) patterns, mirroring
// spec.md's DateTimeParseInstr / PatternTable.
package datetime

import "regexp"

// Pattern is one entry of the PatternTable: a regex that locates a
// timestamp substring within a line, plus the capture-group layout used
// to normalize it into the canonical form built by normalize and parsed
// by parseCanonical.
//
// Unlike the original Rust implementation (which declares a distinct
// chrono strftime format string per pattern), every Pattern here is
// normalized into one canonical Go time-layout string before parsing
// (see normalize.go); this is a deliberate Go-idiomatic simplification —
// the field-layout information spec.md's DateTimeParseInstr calls for is
// still present (HasYear, HasTZ, and the named capture groups), it just
// drives one shared parser instead of N bespoke ones.
type Pattern struct {
	// Name identifies the pattern in logs/tests; not used for matching.
	Name string
	// Regex locates the timestamp. Must declare named capture groups
	// from: year, year2, month, monthname, day, hour, minute, second,
	// frac, tzoffset, tzname. normalize reads no other group names, so a
	// 12-hour clock with an AM/PM marker is not supported.
	Regex *regexp.Regexp
	// SearchRangeEnd caps how many leading bytes of the line are searched;
	// 0 means the whole line (bounded separately by the caller).
	SearchRangeEnd int
	// HasYear/HasTZ record whether this pattern's regex captures those
	// fields, used by the fallback-year and pinning logic.
	HasYear bool
	HasTZ   bool
}

// g wraps a capture group name for brevity when building regex literals.
func g(name, pattern string) string {
	return "(?P<" + name + ">" + pattern + ")"
}

const (
	reYear4   = `\d{4}`
	reYear2   = `\d{2}`
	reMonthNo = `\d{2}`
	reMonName = `(?i:jan[a-z]*|feb[a-z]*|mar[a-z]*|apr[a-z]*|may[a-z]*|jun[a-z]*|jul[a-z]*|aug[a-z]*|sep[a-z]*|oct[a-z]*|nov[a-z]*|dec[a-z]*)`
	reDay2    = `\d{2}`
	reDaySp   = `[ \d]\d`
	reHour    = `\d{2}`
	reMin     = `\d{2}`
	reSec     = `\d{2}`
	reFrac    = `\d+`
	reTzOff   = `[+-]\d{2}:?\d{2}`
	reTzName  = `[A-Za-z]{2,5}`
)

// Table is the ordered catalog of patterns used for all files. Order
// encodes priority: more specific patterns precede more general ones;
// bracketed forms precede unbracketed; patterns with a timezone precede
// otherwise-identical ones without, per spec §4.3.
var Table = buildTable()

func buildTable() []Pattern {
	mk := func(name, expr string, hasYear, hasTZ bool) Pattern {
		return Pattern{
			Name:    name,
			Regex:   regexp.MustCompile(expr),
			HasYear: hasYear,
			HasTZ:   hasTZ,
		}
	}

	year := g("year", reYear4)
	mon := g("month", reMonthNo)
	monName := g("monthname", reMonName)
	day := g("day", reDay2)
	daySp := g("day", reDaySp)
	hh := g("hour", reHour)
	mm := g("minute", reMin)
	ss := g("second", reSec)
	frac := g("frac", reFrac)
	tzoff := g("tzoffset", reTzOff)
	tzname := g("tzname", reTzName)

	return []Pattern{
		// Bracketed ISO, with timezone offset: [2000-01-01 00:00:01 +0000]
		mk("bracketed_iso_tz", `^\[`+year+`-`+mon+`-`+day+` `+hh+`:`+mm+`:`+ss+` `+tzoff+`\]`, true, true),
		// Bracketed ISO, no timezone: [2000-01-01 00:00:01]
		mk("bracketed_iso", `^\[`+year+`-`+mon+`-`+day+` `+hh+`:`+mm+`:`+ss+`\]`, true, false),
		// ISO with fractional seconds and timezone name or offset.
		mk("iso_frac_tz", `^`+year+`-`+mon+`-`+day+`[ T]`+hh+`:`+mm+`:`+ss+`\.`+frac+` ?(?:`+tzoff+`|`+tzname+`)`, true, true),
		// ISO with fractional seconds, no timezone.
		mk("iso_frac", `^`+year+`-`+mon+`-`+day+`[ T]`+hh+`:`+mm+`:`+ss+`\.`+frac+`\b`, true, false),
		// ISO with T separator and timezone offset (e.g. RFC3339-ish).
		mk("iso_t_tz", `^`+year+`-`+mon+`-`+day+`T`+hh+`:`+mm+`:`+ss+`(?:`+tzoff+`|Z)`, true, true),
		// ISO with T separator, no timezone.
		mk("iso_t", `^`+year+`-`+mon+`-`+day+`T`+hh+`:`+mm+`:`+ss+`\b`, true, false),
		// Standard syslog/PostgreSQL stderr form with timezone name or offset.
		mk("iso_space_tz", `^`+year+`-`+mon+`-`+day+` `+hh+`:`+mm+`:`+ss+` (?:`+tzoff+`|`+tzname+`)\b`, true, true),
		// Standard form, no timezone.
		mk("iso_space", `^`+year+`-`+mon+`-`+day+` `+hh+`:`+mm+`:`+ss+`\b`, true, false),
		// Apache/nginx common-log style: [02/Jan/2000:00:00:01 +0000]
		mk("apache_bracket", `^\[`+day+`/`+monName+`/`+year+`:`+hh+`:`+mm+`:`+ss+` `+tzoff+`\]`, true, true),
		// US date with slashes: 01/02/2000 00:00:01
		mk("us_slash", `^`+mon+`/`+day+`/`+year+` `+hh+`:`+mm+`:`+ss+`\b`, true, false),
		// Syslog form with year prefix: 2000 Jan  1 00:00:01
		mk("syslog_year", `^`+year+` `+monName+` `+daySp+` `+hh+`:`+mm+`:`+ss+`\b`, true, false),
		// Classic syslog, no year: Jan  1 00:00:01 / Dec 31 23:59:00
		mk("syslog", `^`+monName+` `+daySp+` `+hh+`:`+mm+`:`+ss+`\b`, false, false),
	}
}
