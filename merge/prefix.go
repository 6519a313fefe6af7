package merge

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FilenameMode selects how (or whether) a file identifier is prepended
// to each emitted record.
type FilenameMode int

const (
	FilenameNone FilenameMode = iota
	FilenameBase
	FilenameFull
)

// PrefixConfig controls per-record prefix rendering on stdout, per
// spec.md §4.6's "Prefix rendering" list.
type PrefixConfig struct {
	Filename     FilenameMode
	AlignWidth   int // 0 disables width alignment
	UseUTC       bool
	UseLocal     bool
	DtFormat     string // strftime-like; empty disables timestamp prefix
	Separator    string // already escape-decoded
}

// Render builds the prefix string for one record from path and ts.
func (c PrefixConfig) Render(path string, ts time.Time) string {
	if c.Filename == FilenameNone && c.DtFormat == "" {
		return ""
	}
	var b strings.Builder
	switch c.Filename {
	case FilenameBase:
		b.WriteString(padRight(filepath.Base(path), c.AlignWidth))
	case FilenameFull:
		b.WriteString(padRight(path, c.AlignWidth))
	}
	if c.DtFormat != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		t := ts
		if c.UseUTC {
			t = t.UTC()
		} else if c.UseLocal {
			t = t.Local()
		}
		b.WriteString(strftime(c.DtFormat, t))
	}
	b.WriteString(c.Separator)
	return b.String()
}

func padRight(s string, width int) string {
	if width <= len(s) {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// strftime renders t using a minimal strftime-like token set, the
// Go-idiomatic alternative to the original chrono-strftime formatter:
// spec.md's CLI accepts a "caller-supplied strftime-like format" string,
// which we interpret directly token-by-token rather than translating it
// into a Go reference-time layout (translating %-tokens into Go's
// reference-time positions round-trips worse than just switching on each
// token while scanning the format string once).
func strftime(format string, t time.Time) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			b.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			fmt.Fprintf(&b, "%04d", t.Year())
		case 'y':
			fmt.Fprintf(&b, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'M':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'f':
			fmt.Fprintf(&b, "%06d", t.Nanosecond()/1000)
		case 'z':
			_, off := t.Zone()
			sign := "+"
			if off < 0 {
				sign, off = "-", -off
			}
			fmt.Fprintf(&b, "%s%02d%02d", sign, off/3600, (off%3600)/60)
		case 'Z':
			name, _ := t.Zone()
			b.WriteString(name)
		case 'b':
			b.WriteString(t.Month().String()[:3])
		case 'a':
			b.WriteString(t.Weekday().String()[:3])
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}
