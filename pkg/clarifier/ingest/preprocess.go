package ingest

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Preprocess cleans one raw line of web text: HTML entity and encoding
// artifacts are repaired, the text is NFKC-normalized, every character
// outside [A-Za-z0-9 .,?!'] is removed and whitespace runs collapse to a
// single space.
func Preprocess(line string) string {
	line = strings.ReplaceAll(line, "&amp;", "and")
	line = strings.ReplaceAll(line, "\u00c2\u00a0", " ")
	line = strings.ReplaceAll(line, "\u00c2 ", " ")
	line = norm.NFKC.String(line)

	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		switch {
		case r < 0x80 && isAlnum(byte(r)):
			b.WriteRune(r)
		case r == ' ' || r == '.' || r == ',' || r == '?' || r == '!' || r == '\'':
			b.WriteRune(r)
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
