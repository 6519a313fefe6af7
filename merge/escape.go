// Package merge implements the MergeDriver main thread: one goroutine
// per input file feeds a bounded channel, and the driver performs a
// k-way merge by timestamp, per spec.md §4.6.
package merge

import "strings"

// DecodeEscapes expands the backslash escapes spec.md §4.6 lists
// (\0 \a \b \e \f \n \r \\ \t \v) in a user-supplied separator string,
// e.g. from --sysline-separator or --prepend-separator.
func DecodeEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case '0':
			b.WriteByte(0)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'e':
			b.WriteByte(0x1b)
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
