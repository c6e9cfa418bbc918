package knowledge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Layout names the column order of a corpus file.
type Layout int

const (
	// TermFirst rows are "term\tdescription\tfreq" (WebIsA).
	TermFirst Layout = iota
	// DescFirst rows are "description\tterm\tfreq" (ConceptGraph).
	DescFirst
)

// Row is one parsed corpus row.
type Row struct {
	Term string
	Text string
	Freq float64
}

// ScanRows parses corpus rows from r and calls fn for each. Rows with the
// wrong field count or an unparsable frequency are skipped.
func ScanRows(r io.Reader, layout Layout, fn func(Row) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		fields := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")
		if len(fields) != 3 {
			continue
		}
		freq, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			continue
		}

		row := Row{Term: fields[0], Text: fields[1], Freq: freq}
		if layout == DescFirst {
			row.Term, row.Text = fields[1], fields[0]
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func lookupFile(ctx context.Context, path string, layout Layout, term string) ([]Description, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var descs []Description
	err = ScanRows(f, layout, func(row Row) error {
		if row.Term == term {
			descs = append(descs, Description{Text: row.Text, Freq: row.Freq})
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return Top(descs, TopK), nil
}

// WebIsA reads the first-character partitioned WebIsA corpus under Dir.
type WebIsA struct {
	Dir string
}

// NewWebIsA creates a WebIsA source rooted at dir.
func NewWebIsA(dir string) *WebIsA {
	return &WebIsA{Dir: dir}
}

// Name implements Source.
func (w *WebIsA) Name() string { return WebIsAName }

// PartitionPath returns the file holding rows for term.
func (w *WebIsA) PartitionPath(term string) string {
	r, _ := utf8.DecodeRuneInString(term)
	return filepath.Join(w.Dir, string(r)+"_ten.txt")
}

// Lookup implements Source. A missing partition file is a miss.
func (w *WebIsA) Lookup(ctx context.Context, term string) ([]Description, error) {
	if term == "" {
		return nil, nil
	}
	return lookupFile(ctx, w.PartitionPath(term), TermFirst, term)
}

// ConceptGraph reads the single-file Concept Graph corpus.
type ConceptGraph struct {
	Path string
}

// NewConceptGraph creates a ConceptGraph source reading path.
func NewConceptGraph(path string) *ConceptGraph {
	return &ConceptGraph{Path: path}
}

// Name implements Source.
func (c *ConceptGraph) Name() string { return ConceptGraphName }

// Lookup implements Source. A missing file is a miss.
func (c *ConceptGraph) Lookup(ctx context.Context, term string) ([]Description, error) {
	if term == "" {
		return nil, nil
	}
	return lookupFile(ctx, c.Path, DescFirst, term)
}
