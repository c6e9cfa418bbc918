// Package pattern extracts head/tail phrase pairs from text using isA
// templates such as "NPt is a NPh" or "NPh such as NPt".
package pattern

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/clarifier/pkg/clarifier/internalerr"
)

// Template markers.
const (
	HeadMarker = "NPh"
	TailMarker = "NPt"
)

// Template is a parsed isA pattern. Connector is the literal text between
// the two markers, surrounding spaces included (" is a ").
type Template struct {
	Source         string
	Connector      string
	HeadBeforeTail bool
}

// DefaultTemplates are used when no template file is configured.
var DefaultTemplates = []string{
	"NPt is a NPh",
	"NPt is an NPh",
	"NPt is the NPh",
	"NPh such as NPt",
	"NPh including NPt",
	"NPh especially NPt",
	"NPt and other NPh",
	"NPt or other NPh",
}

// Parse parses one template line.
func Parse(line string) (Template, error) {
	h := strings.Index(line, HeadMarker)
	t := strings.Index(line, TailMarker)
	if h < 0 || t < 0 {
		return Template{}, fmt.Errorf("%w: %q needs both %s and %s", internalerr.ErrBadTemplate, line, HeadMarker, TailMarker)
	}

	conn := strings.Replace(line, HeadMarker, "", 1)
	conn = strings.Replace(conn, TailMarker, "", 1)
	if strings.TrimSpace(conn) == "" {
		return Template{}, fmt.Errorf("%w: %q has no connector", internalerr.ErrBadTemplate, line)
	}

	return Template{
		Source:         line,
		Connector:      conn,
		HeadBeforeTail: h < t,
	}, nil
}

// MustParseAll parses templates and panics on error. For static lists.
func MustParseAll(lines []string) []Template {
	out, err := ParseAll(lines)
	if err != nil {
		panic(err)
	}
	return out
}

// ParseAll parses every line.
func ParseAll(lines []string) ([]Template, error) {
	out := make([]Template, 0, len(lines))
	for _, l := range lines {
		tpl, err := Parse(l)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, nil
}

// Load reads one template per line. Blank lines and lines starting with
// '#' are skipped; a trailing carriage return is ignored.
func Load(r io.Reader) ([]Template, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ParseAll(lines)
}

// LoadFile reads templates from path.
func LoadFile(path string) ([]Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open templates: %w", err)
	}
	defer f.Close()
	return Load(f)
}
