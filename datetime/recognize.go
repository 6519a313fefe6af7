package datetime

import (
	"errors"
	"regexp"
	"time"
	"unicode/utf8"
)

// ErrNotFound indicates no pattern matched within the line.
var ErrNotFound = errors.New("datetime: no timestamp pattern matched")

// Match is the result of successfully locating and parsing a timestamp
// within a line's bytes.
type Match struct {
	Time        time.Time
	Begin, End  int // byte range within the searched slice, End exclusive
	PatternName string
}

// Recognizer locates timestamps in log lines using Table, optionally
// pinned to a single previously-successful pattern per spec.md §4.3 (once
// a file's dominant format is found, every subsequent line is tried
// against that one pattern first, falling back to the full table only if
// it fails — avoiding an O(patterns) scan per line for the common case of
// one format per file).
type Recognizer struct {
	patterns []Pattern
	pinned   int // index into patterns, -1 if unpinned
	fallback Fallback
}

// New constructs a Recognizer against the default Table. fb supplies the
// year/offset used when a matched pattern doesn't capture one.
func New(fb Fallback) *Recognizer {
	return &Recognizer{patterns: Table, pinned: -1, fallback: fb}
}

// Pinned reports the name of the currently pinned pattern, or "" if none.
func (r *Recognizer) Pinned() string {
	if r.pinned < 0 {
		return ""
	}
	return r.patterns[r.pinned].Name
}

// Find searches raw (typically one Line's bytes, ASCII fast-pathed) for a
// timestamp. On success it pins the winning pattern for future calls.
func (r *Recognizer) Find(raw []byte) (Match, error) {
	if !isASCII(raw) && !utf8.Valid(raw) {
		return Match{}, errors.New("datetime: line is not valid UTF-8")
	}

	if r.pinned >= 0 {
		if m, ok := r.tryPattern(r.patterns[r.pinned], raw); ok {
			return m, nil
		}
	}

	for i, p := range r.patterns {
		if i == r.pinned {
			continue
		}
		if m, ok := r.tryPattern(p, raw); ok {
			r.pinned = i
			return m, nil
		}
	}
	return Match{}, ErrNotFound
}

func (r *Recognizer) tryPattern(p Pattern, raw []byte) (Match, bool) {
	search := raw
	if p.SearchRangeEnd > 0 && p.SearchRangeEnd < len(raw) {
		search = raw[:p.SearchRangeEnd]
	}
	loc := p.Regex.FindSubmatchIndex(search)
	if loc == nil {
		return Match{}, false
	}
	dayBegin, dayEnd := groupRange(p.Regex, loc, "day")
	if hasInteriorWhitespaceRun(search[loc[0]:loc[1]], loc[0], dayBegin, dayEnd) {
		return Match{}, false
	}
	groups := namedGroups(p.Regex, loc, search)
	normStr, err := normalize(groups, r.fallback)
	if err != nil {
		return Match{}, false
	}
	t, err := parseCanonical(normStr)
	if err != nil {
		return Match{}, false
	}
	return Match{Time: t, Begin: loc[0], End: loc[1], PatternName: p.Name}, true
}

// groupRange returns the absolute [begin, end) byte range the named group
// captured in m, or (-1, -1) if the group didn't participate in the match.
func groupRange(re *regexp.Regexp, m []int, name string) (int, int) {
	for i, n := range re.SubexpNames() {
		if n == name && m[2*i] >= 0 {
			return m[2*i], m[2*i+1]
		}
	}
	return -1, -1
}

// hasInteriorWhitespaceRun rejects a match containing a run of two or
// more consecutive whitespace bytes anywhere in its interior, except
// within [exemptBegin, exemptEnd) — the "whitespace workaround" spec.md
// §4.3 calls for, compensating for parsers (Go's time.Parse included,
// see format.go's skip()) that silently collapse a run of whitespace
// around a single-space layout literal instead of requiring it to match
// exactly. Every pattern in Table separates fields with exactly one
// literal whitespace character, so a genuine match can never contain a
// longer run outside the exempted span; this rejects any that does
// rather than letting it through an otherwise-plausible
// normalize/parseCanonical round trip.
//
// The exemption exists for the classic syslog day field (reDaySp: " 1"
// vs "01"), whose own space-padding byte sits immediately after the
// single literal separator space, e.g. "Jan  1" — a legitimate two-space
// run that isn't a malformed separator.
func hasInteriorWhitespaceRun(matched []byte, matchBegin, exemptBegin, exemptEnd int) bool {
	isSpace := func(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
	run := 0
	for i, b := range matched {
		abs := matchBegin + i
		if exemptBegin >= 0 && abs >= exemptBegin && abs < exemptEnd {
			run = 0
			continue
		}
		if isSpace(b) {
			run++
			if run >= 2 {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
