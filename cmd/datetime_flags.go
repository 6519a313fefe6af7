package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/logmerge/logmerge/datetime"
)

// absoluteLayouts lists the strftime-like absolute datetime forms
// --dt-after/--dt-before accept, tried in order until one parses
// cleanly — spec.md §6 calls for "any of 28 strftime-like patterns".
var absoluteLayouts = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02T15:04:05.000000",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05 MST",
	"2006-01-02T15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"20060102T150405",
	"20060102",
	"Jan 2 2006 15:04:05",
	"Jan 2 15:04:05",
	"2 Jan 2006 15:04:05",
	"Mon Jan 2 15:04:05 2006",
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
}

var relDurationRe = regexp.MustCompile(`^(@)?([+-])(?:(\d+)w)?(?:(\d+)d)?(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)

// dtFilter is a resolved --dt-after/--dt-before value: either absolute,
// or relative to "now" or to the other filter (set once both are known).
type dtFilter struct {
	raw          string
	absolute     time.Time // zero if relative
	isRelative   bool
	relToOther   bool
	relSign      int
	relDur       time.Duration
}

// parseDtFilter parses one --dt-after/--dt-before argument. tzMinutes is
// used as the fallback offset when an absolute value lacks one.
func parseDtFilter(s string, tzMinutes int) (dtFilter, error) {
	if m := relDurationRe.FindStringSubmatch(s); m != nil {
		sign := 1
		if m[2] == "-" {
			sign = -1
		}
		var dur time.Duration
		addUnit := func(group string, unit time.Duration) {
			if group == "" {
				return
			}
			n, _ := strconv.Atoi(group)
			dur += time.Duration(n) * unit
		}
		addUnit(m[3], 7*24*time.Hour)
		addUnit(m[4], 24*time.Hour)
		addUnit(m[5], time.Hour)
		addUnit(m[6], time.Minute)
		addUnit(m[7], time.Second)
		return dtFilter{raw: s, isRelative: true, relToOther: m[1] == "@", relSign: sign, relDur: dur}, nil
	}

	loc := time.FixedZone("", tzMinutes*60)
	for _, layout := range absoluteLayouts {
		if hasZoneToken(layout) {
			if t, err := time.Parse(layout, s); err == nil {
				return dtFilter{raw: s, absolute: t}, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return dtFilter{raw: s, absolute: t}, nil
		}
	}
	return dtFilter{}, fmt.Errorf("cmd: %q does not match any recognized absolute datetime pattern or relative duration syntax", s)
}

func hasZoneToken(layout string) bool {
	for _, tok := range []string{"Z07:00", "MST", "-0700", "-07:00"} {
		if containsStr(layout, tok) {
			return true
		}
	}
	return false
}

func containsStr(s, sub string) bool {
	return len(s) >= len(sub) && indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// resolveFilters turns the raw --dt-after/--dt-before flag strings into
// concrete [after, before] times. Exactly one of the two may be relative
// to the other ("@..."); both being mutually relative is an error, per
// spec.md §6.
func resolveFilters(afterRaw, beforeRaw string, tzMinutes int, now time.Time) (after, before time.Time, err error) {
	var af, bf dtFilter
	haveAfter := afterRaw != ""
	haveBefore := beforeRaw != ""

	if haveAfter {
		if af, err = parseDtFilter(afterRaw, tzMinutes); err != nil {
			return
		}
	}
	if haveBefore {
		if bf, err = parseDtFilter(beforeRaw, tzMinutes); err != nil {
			return
		}
	}
	if haveAfter && haveBefore && af.isRelative && af.relToOther && bf.isRelative && bf.relToOther {
		return time.Time{}, time.Time{}, fmt.Errorf("cmd: --dt-after and --dt-before cannot both be relative to each other")
	}

	resolve := func(f dtFilter, other time.Time, haveOther bool) (time.Time, error) {
		if !f.isRelative {
			return f.absolute, nil
		}
		base := now
		if f.relToOther {
			if !haveOther {
				return time.Time{}, fmt.Errorf("cmd: %q is relative to the other filter, but it was not given", f.raw)
			}
			base = other
		}
		return base.Add(time.Duration(f.relSign) * f.relDur), nil
	}

	if haveAfter {
		// Resolve whichever filter is NOT "@"-relative first, so the
		// other can reference it.
		if !af.relToOther {
			if after, err = resolve(af, time.Time{}, false); err != nil {
				return
			}
		}
	}
	if haveBefore {
		if before, err = resolve(bf, after, haveAfter); err != nil {
			return
		}
	}
	if haveAfter && af.relToOther {
		if after, err = resolve(af, before, haveBefore); err != nil {
			return
		}
	}
	return after, before, nil
}

// resolveTZOffset parses --tz-offset into minutes, defaulting to 0 (UTC)
// when unset.
func resolveTZOffset(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return datetime.ParseCLIZoneOffset(s)
}
