package datetime

import (
	"testing"
	"time"
)

func TestRecognizeISOWithOffset(t *testing.T) {
	r := New(Fallback{Year: 2000, OffsetMinutes: 0})
	line := []byte("2023-05-04 10:20:30 +0200 some message")
	m, err := r.Find(line)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2023, 5, 4, 10, 20, 30, 0, time.FixedZone("", 2*60*60))
	if !m.Time.Equal(want) {
		t.Fatalf("got %v, want %v", m.Time, want)
	}
}

func TestRecognizeBracketedISO(t *testing.T) {
	r := New(Fallback{Year: 2000})
	line := []byte("[2000-01-01 00:00:01] startup complete")
	m, err := r.Find(line)
	if err != nil {
		t.Fatal(err)
	}
	if m.PatternName != "bracketed_iso" {
		t.Fatalf("pattern = %q, want bracketed_iso", m.PatternName)
	}
	if m.Begin != 0 || line[m.End-1] != ']' {
		t.Fatalf("match range wrong: %d..%d", m.Begin, m.End)
	}
}

func TestRecognizeClassicSyslogUsesFallbackYear(t *testing.T) {
	r := New(Fallback{Year: 2024, OffsetMinutes: -5 * 60})
	line := []byte("Dec 31 23:59:00 host sshd[123]: session closed")
	m, err := r.Find(line)
	if err != nil {
		t.Fatal(err)
	}
	if m.Time.Year() != 2024 || m.Time.Month() != time.December || m.Time.Day() != 31 {
		t.Fatalf("got %v", m.Time)
	}
}

func TestRecognizeMonthNameCaseInsensitive(t *testing.T) {
	r := New(Fallback{Year: 2024})
	for _, s := range []string{"JAN", "Jan", "jan", "January", "JANUARY"} {
		line := []byte(s + "  1 00:00:01 host proc: msg")
		m, err := r.Find(line)
		if err != nil {
			t.Fatalf("case %q: %v", s, err)
		}
		if m.Time.Month() != time.January {
			t.Fatalf("case %q: got month %v", s, m.Time.Month())
		}
	}
}

func TestRecognizeAmbiguousZoneUsesFallback(t *testing.T) {
	r := New(Fallback{Year: 2024, OffsetMinutes: -6 * 60})
	line := []byte("2024-01-01 00:00:01 CST boot")
	m, err := r.Find(line)
	if err != nil {
		t.Fatal(err)
	}
	_, off := m.Time.Zone()
	if off != -6*60*60 {
		t.Fatalf("offset = %d, want -6h from fallback", off)
	}
}

func TestRecognizePatternPinning(t *testing.T) {
	r := New(Fallback{Year: 2024})
	first := []byte("2024-01-01 00:00:01 message one")
	if _, err := r.Find(first); err != nil {
		t.Fatal(err)
	}
	if r.Pinned() != "iso_space" {
		t.Fatalf("pinned = %q, want iso_space", r.Pinned())
	}
	second := []byte("2024-01-02 00:00:02 message two")
	m, err := r.Find(second)
	if err != nil {
		t.Fatal(err)
	}
	if m.PatternName != "iso_space" {
		t.Fatalf("second match pattern = %q, want iso_space (pinned)", m.PatternName)
	}
}

func TestRecognizeNoMatch(t *testing.T) {
	r := New(Fallback{Year: 2024})
	if _, err := r.Find([]byte("no timestamp here at all")); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// TestRecognizeRejectsDoubledSeparator exercises property 6: a timestamp
// that differs from a valid one only by an extra whitespace character in
// a field separator must fail to parse, rather than have Go's time.Parse
// silently collapse the extra space.
func TestRecognizeRejectsDoubledSeparator(t *testing.T) {
	r := New(Fallback{Year: 2024})
	if _, err := r.Find([]byte("2024-01-01  00:00:01 host proc: msg")); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound for doubled date/time separator", err)
	}
}

// TestRecognizeAllowsClassicSyslogDayPadding guards against the doubled-
// separator rejection above being too broad: the classic syslog day field
// legitimately produces a two-space run ("Jan  1"), and must still parse.
func TestRecognizeAllowsClassicSyslogDayPadding(t *testing.T) {
	r := New(Fallback{Year: 2024})
	m, err := r.Find([]byte("Jan  1 00:00:01 host proc: msg"))
	if err != nil {
		t.Fatal(err)
	}
	if m.Time.Day() != 1 {
		t.Fatalf("day = %d, want 1", m.Time.Day())
	}
}

func TestHasInteriorWhitespaceRun(t *testing.T) {
	if !hasInteriorWhitespaceRun([]byte("2024-01-01  00:00:01"), 0, -1, -1) {
		t.Fatal("expected doubled separator (no exemption) to be rejected")
	}
	// "Jan  1": the second space (index 4) is the day group's own
	// padding byte, exempted from the run check.
	if hasInteriorWhitespaceRun([]byte("Jan  1"), 0, 4, 6) {
		t.Fatal("expected exempted day-padding span not to be rejected")
	}
}

func TestFractionalSecondsTruncatedToMicros(t *testing.T) {
	r := New(Fallback{Year: 2024})
	line := []byte("2024-06-01 12:00:00.123456789 +0000 msg")
	m, err := r.Find(line)
	if err != nil {
		t.Fatal(err)
	}
	if m.Time.Nanosecond() != 123456000 {
		t.Fatalf("nanosecond = %d, want 123456000", m.Time.Nanosecond())
	}
}
