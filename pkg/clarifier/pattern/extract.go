package pattern

import (
	"strings"

	"github.com/cognicore/clarifier/pkg/clarifier/query"
)

// Window sizes used by the extractor.
const (
	DefaultWordSpan   = 10 // spaces crossed on each side for query text
	DefaultItemWindow = 40 // characters on each side for item text
)

// Tuple is one extracted (head, tail) span pair. Head is the describing
// phrase, tail the described instance.
type Tuple struct {
	Head string
	Tail string
}

// Extractor finds template matches in singularized text lines.
type Extractor struct {
	templates  []Template
	wordSpan   int
	itemWindow int
}

// NewExtractor creates an extractor with the default window sizes.
func NewExtractor(templates []Template) *Extractor {
	return &Extractor{
		templates:  templates,
		wordSpan:   DefaultWordSpan,
		itemWindow: DefaultItemWindow,
	}
}

// WithWindows overrides the window sizes. Non-positive values keep the
// current setting.
func (e *Extractor) WithWindows(wordSpan, itemWindow int) *Extractor {
	if wordSpan > 0 {
		e.wordSpan = wordSpan
	}
	if itemWindow > 0 {
		e.itemWindow = itemWindow
	}
	return e
}

// ExtractQuery scans query text lines. Around every connector occurrence
// the spans grow outwards until wordSpan spaces are crossed or the line
// ends. A match is kept when the instance side (the tail) contains the
// bare query.
func (e *Extractor) ExtractQuery(qc *query.Context, lines []string) []Tuple {
	var out []Tuple
	for _, line := range lines {
		if strings.Contains(line, "[") {
			continue
		}
		for _, tpl := range e.templates {
			for _, pos := range Occurrences(line, tpl.Connector) {
				left, right := e.wordSpans(line, pos, len(tpl.Connector))
				if tup, ok := orient(tpl, left, right, qc.Bare()); ok {
					out = append(out, tup)
				}
			}
		}
	}
	return out
}

// ExtractItems scans item text lines with fixed character windows and
// emits one tuple per item found on the instance side of a match.
func (e *Extractor) ExtractItems(qc *query.Context, lines []string) []Tuple {
	items := qc.Items()
	var out []Tuple
	for _, line := range lines {
		if strings.Contains(line, "[") {
			continue
		}
		for _, tpl := range e.templates {
			for _, pos := range Occurrences(line, tpl.Connector) {
				left, right := e.charSpans(line, pos, len(tpl.Connector))
				for _, item := range items {
					if tup, ok := orient(tpl, left, right, item); ok {
						out = append(out, tup)
					}
				}
			}
		}
	}
	return out
}

func orient(tpl Template, left, right, anchor string) (Tuple, bool) {
	if tpl.HeadBeforeTail {
		if strings.Contains(right, anchor) {
			return Tuple{Head: left, Tail: right}, true
		}
		return Tuple{}, false
	}
	if strings.Contains(left, anchor) {
		return Tuple{Head: right, Tail: left}, true
	}
	return Tuple{}, false
}

// wordSpans returns the text before and after the connector at pos,
// each bounded by wordSpan spaces.
func (e *Extractor) wordSpans(line string, pos, connLen int) (string, string) {
	n := len(line)

	start := pos - 1
	for spaces := 0; spaces < e.wordSpan && start > 0; {
		start--
		if line[start] == ' ' {
			spaces++
		}
	}

	end := pos + connLen + 1
	for spaces := 0; spaces < e.wordSpan && end < n-1; {
		end++
		if line[end] == ' ' {
			spaces++
		}
	}

	if start < 0 {
		start = 0
	}
	return line[start:pos], line[pos+connLen : min(end+1, n)]
}

func (e *Extractor) charSpans(line string, pos, connLen int) (string, string) {
	n := len(line)
	start := max(pos-e.itemWindow, 0)
	end := min(pos+connLen+e.itemWindow, n)
	return line[start:pos], line[pos+connLen : min(end+1, n)]
}

// Occurrences returns the start offsets of the non-overlapping occurrences
// of sub in s, left to right.
func Occurrences(s, sub string) []int {
	if sub == "" {
		return nil
	}
	var out []int
	for off := 0; off <= len(s)-len(sub); {
		i := strings.Index(s[off:], sub)
		if i < 0 {
			break
		}
		out = append(out, off+i)
		off += i + len(sub)
	}
	return out
}

// Heads returns the head spans of tuples.
func Heads(tuples []Tuple) []string {
	out := make([]string, len(tuples))
	for i, t := range tuples {
		out[i] = t.Head
	}
	return out
}

// Window is a slice of a line cut around one anchor mention. Anchor is the
// mention's offset inside Text.
type Window struct {
	Text   string
	Anchor int
}

// Windows cuts width characters on each side of every mention of every
// anchor in lines. Empty anchors are ignored.
func Windows(lines, anchors []string, width int) []Window {
	var out []Window
	for _, line := range lines {
		for _, a := range anchors {
			for _, pos := range Occurrences(line, a) {
				start := max(pos-width, 0)
				end := min(pos+len(a)+width, len(line))
				out = append(out, Window{Text: line[start:end], Anchor: pos - start})
			}
		}
	}
	return out
}
