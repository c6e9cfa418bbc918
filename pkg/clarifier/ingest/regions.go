package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/cognicore/clarifier/pkg/clarifier/internalerr"
)

// Divider separates the sections of a candidate-region file.
const Divider = "-----------------------------------------------------------"

// Corpus holds the preprocessed candidate regions for one query/items pair.
type Corpus struct {
	ItemLists  []string // list titles, split on commas
	ItemTexts  []string // free text mentioning the items
	QueryTexts []string // free text mentioning the query
}

// Limits are the length gates applied while reading region files.
type Limits struct {
	ListMinLen      int // list lines must be longer than this
	ListMaxLen      int // and at most this long
	ItemTextMinLen  int // item texts must be longer than this
	QueryTextMinLen int // query texts must be longer than this
}

// DefaultLimits returns the gates used by the ranking pipeline.
func DefaultLimits() Limits {
	return Limits{
		ListMinLen:      2,
		ListMaxLen:      30,
		ItemTextMinLen:  30,
		QueryTextMinLen: 40,
	}
}

// ReadCorpus loads the items region file and the query region file.
// A missing file is reported as internalerr.ErrMissingInput.
func ReadCorpus(itemsPath, queryPath string, lim Limits) (Corpus, error) {
	var c Corpus

	itemsFile, err := openRegion(itemsPath)
	if err != nil {
		return c, err
	}
	defer itemsFile.Close()

	c.ItemLists, c.ItemTexts, err = ParseItems(itemsFile, lim)
	if err != nil {
		return c, fmt.Errorf("parse %s: %w", itemsPath, err)
	}

	queryFile, err := openRegion(queryPath)
	if err != nil {
		return c, err
	}
	defer queryFile.Close()

	c.QueryTexts, err = ParseQuery(queryFile, lim)
	if err != nil {
		return c, fmt.Errorf("parse %s: %w", queryPath, err)
	}

	return c, nil
}

func openRegion(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", internalerr.ErrMissingInput, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// ParseItems reads an items region file: a header, a divider, list title
// lines, a divider, then text lines.
func ParseItems(r io.Reader, lim Limits) (lists, texts []string, err error) {
	section := 0
	err = scanLines(r, func(raw string) {
		if raw == Divider {
			section++
			return
		}
		line := Preprocess(raw)
		switch {
		case section == 1 && len(line) > lim.ListMinLen && len(line) <= lim.ListMaxLen:
			lists = append(lists, splitListLine(line)...)
		case section == 2 && len(line) > lim.ItemTextMinLen:
			texts = append(texts, line)
		}
	})
	return lists, texts, err
}

// ParseQuery reads a query region file. When the file carries a header
// and divider, only lines after the first divider are used.
func ParseQuery(r io.Reader, lim Limits) ([]string, error) {
	var all []string
	headerEnd := -1
	err := scanLines(r, func(raw string) {
		if raw == Divider {
			if headerEnd < 0 {
				headerEnd = len(all)
			}
			return
		}
		all = append(all, raw)
	})
	if err != nil {
		return nil, err
	}
	if headerEnd > 0 {
		all = all[headerEnd:]
	}

	var texts []string
	for _, raw := range all {
		line := Preprocess(raw)
		if len(line) > lim.QueryTextMinLen {
			texts = append(texts, line)
		}
	}
	return texts, nil
}

func splitListLine(line string) []string {
	parts := strings.Split(line, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.NewReplacer(".", "", "!", "", "?", "").Replace(p)
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func scanLines(r io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		fn(strings.TrimRight(scanner.Text(), "\r"))
	}
	return scanner.Err()
}

// WriteItems writes an items region file in the format ParseItems reads.
func WriteItems(w io.Writer, header string, lists, texts []string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, header)
	fmt.Fprintln(bw, Divider)
	for _, l := range lists {
		if l != "" {
			fmt.Fprintln(bw, l)
		}
	}
	fmt.Fprintln(bw, Divider)
	for _, t := range texts {
		if t != "" {
			fmt.Fprintln(bw, t)
		}
	}
	return bw.Flush()
}

// WriteQuery writes a query region file in the format ParseQuery reads.
func WriteQuery(w io.Writer, header string, texts []string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, header)
	fmt.Fprintln(bw, Divider)
	for _, t := range texts {
		if t != "" {
			fmt.Fprintln(bw, t)
		}
	}
	return bw.Flush()
}
