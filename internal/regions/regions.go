// Package regions turns saved search-result pages into the candidate
// region files read by the ranking engine.
//
// Pages live under <top>/<query>_q (query-only search), <top>/<query>_qi
// (query and items) and <top>/<query>_i (items only). Query texts come
// from the query-only pages; list titles and item texts come from the
// other two.
package regions

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cognicore/clarifier/internal/logging"
	"github.com/cognicore/clarifier/pkg/clarifier"
	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
	"github.com/cognicore/clarifier/pkg/clarifier/query"
)

const (
	// TextMinLen is the shortest block kept as a text region.
	TextMinLen = 60
	// TitleMaxLen is the longest block usable as a list title.
	TitleMaxLen = 60
	// PartlyContainRatio is the share of items a list or text must hold.
	PartlyContainRatio = 0.3
)

// List is a ul/ol block and the short text that introduces it.
type List struct {
	Title string
	Items []string
}

// Page holds the lists and long text blocks of one HTML document.
type Page struct {
	Lists []List
	Texts []string
}

// Parse reads an HTML document. Script, style and noscript subtrees are
// dropped; comments never contribute text.
func Parse(r io.Reader) (Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}
	w := &walker{}
	w.walk(doc)
	w.flush()
	return w.page, nil
}

type walker struct {
	page  Page
	buf   strings.Builder
	title string
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		w.buf.WriteString(n.Data)
		w.buf.WriteByte(' ')
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Ul, atom.Ol:
			w.flush()
			w.list(n)
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			w.flush()
			if t := collapse(textOf(n)); t != "" && len(t) <= TitleMaxLen {
				w.title = t
			}
			return
		}
		if isBlock(n.DataAtom) {
			w.flush()
			defer w.flush()
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// flush closes the pending inline text as one block.
func (w *walker) flush() {
	t := collapse(w.buf.String())
	w.buf.Reset()
	switch {
	case t == "":
	case len(t) >= TextMinLen:
		w.page.Texts = append(w.page.Texts, t)
		w.title = ""
	default:
		w.title = t
	}
}

func (w *walker) list(n *html.Node) {
	var items []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		t := collapse(textOf(c))
		switch {
		case t == "":
		case len(t) >= TextMinLen:
			w.page.Texts = append(w.page.Texts, t)
		default:
			items = append(items, t)
		}
	}
	if len(items) >= 2 {
		w.page.Lists = append(w.page.Lists, List{Title: w.title, Items: items})
	}
	w.title = ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		switch n.Type {
		case html.CommentNode:
			return
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Aside, atom.Header,
		atom.Footer, atom.Nav, atom.Main, atom.Blockquote, atom.Pre, atom.Table,
		atom.Tr, atom.Td, atom.Th, atom.Dl, atom.Dt, atom.Dd, atom.Br, atom.Li,
		atom.Figure, atom.Figcaption, atom.Form, atom.Body, atom.Caption:
		return true
	}
	return false
}

func squash(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

func threshold(items []string) float64 {
	return PartlyContainRatio * float64(len(items))
}

// ListContains reports whether at least 30% of items occur inside some
// list element, ignoring spaces and case.
func ListContains(items, list []string) bool {
	elems := make([]string, len(list))
	for i, l := range list {
		elems[i] = squash(l)
	}
	hits := 0
	for _, it := range items {
		s := squash(it)
		for _, e := range elems {
			if strings.Contains(e, s) {
				hits++
				break
			}
		}
	}
	return float64(hits) >= threshold(items)
}

// TextContains reports whether at least 30% of items occur in text,
// ignoring spaces and case.
func TextContains(items []string, text string) bool {
	t := squash(text)
	hits := 0
	for _, it := range items {
		if strings.Contains(t, squash(it)) {
			hits++
		}
	}
	return float64(hits) >= threshold(items)
}

// Regions are the lowercased lines written to the two region files.
type Regions struct {
	QueryTexts []string
	ItemLists  []string
	ItemTexts  []string
}

// Add folds one page in. Query texts are taken only when forQuery is set;
// item lists and texts only when forItems is set. Lists without a title
// contribute nothing.
func (r *Regions) Add(qc *query.Context, p Page, forQuery, forItems bool) {
	bare := strings.ToLower(qc.Bare())
	items := qc.Items()
	if forQuery {
		for _, t := range p.Texts {
			if lt := strings.ToLower(t); strings.Contains(lt, bare) {
				r.QueryTexts = append(r.QueryTexts, lt)
			}
		}
	}
	if !forItems {
		return
	}
	for _, l := range p.Lists {
		if l.Title != "" && ListContains(items, l.Items) {
			r.ItemLists = append(r.ItemLists, strings.ToLower(l.Title))
		}
	}
	for _, t := range p.Texts {
		if TextContains(items, t) {
			r.ItemTexts = append(r.ItemTexts, strings.ToLower(t))
		}
	}
}

// Source names the page directory of each search.
type Source struct {
	Dir      string
	ForQuery bool
	ForItems bool
}

// Sources returns the three page directories for query under top.
func Sources(top, rawQuery string) []Source {
	return []Source{
		{Dir: filepath.Join(top, rawQuery+"_q"), ForQuery: true},
		{Dir: filepath.Join(top, rawQuery+"_qi"), ForItems: true},
		{Dir: filepath.Join(top, rawQuery+"_i"), ForItems: true},
	}
}

// Builder collects regions from saved pages and writes the region files.
type Builder struct {
	top string
}

// NewBuilder returns a Builder rooted at the top-results directory.
func NewBuilder(top string) *Builder {
	return &Builder{top: top}
}

// Collect reads every .html/.htm file of the query's page directories.
// A missing directory counts as empty; unparsable pages are logged and
// skipped.
func (b *Builder) Collect(qc *query.Context) (Regions, error) {
	var r Regions
	for _, src := range Sources(b.top, qc.Raw()) {
		files, err := pages(src.Dir)
		if err != nil {
			return r, err
		}
		for _, f := range files {
			p, err := parseFile(f)
			if err != nil {
				logging.Warn().Err(err).Str("file", f).Msg("skipping page")
				continue
			}
			r.Add(qc, p, src.ForQuery, src.ForItems)
		}
		logging.Debug().Str("dir", src.Dir).Int("pages", len(files)).Msg("pages read")
	}
	return r, nil
}

// Build collects regions for one query and writes both region files.
// When both files already exist nothing is done and written is false.
func (b *Builder) Build(qc *query.Context) (written bool, err error) {
	itemsPath, queryPath := clarifier.RegionPaths(b.top, qc.Raw())
	if exists(itemsPath) && exists(queryPath) {
		logging.Info().Str("query", qc.Raw()).Msg("regions already extracted")
		return false, nil
	}
	r, err := b.Collect(qc)
	if err != nil {
		return false, err
	}
	header := Header(qc)
	if err := writeFile(queryPath, func(w io.Writer) error {
		return ingest.WriteQuery(w, header, r.QueryTexts)
	}); err != nil {
		return false, err
	}
	if err := writeFile(itemsPath, func(w io.Writer) error {
		return ingest.WriteItems(w, header, r.ItemLists, r.ItemTexts)
	}); err != nil {
		return false, err
	}
	logging.Info().
		Str("query", qc.Raw()).
		Int("query_texts", len(r.QueryTexts)).
		Int("item_lists", len(r.ItemLists)).
		Int("item_texts", len(r.ItemTexts)).
		Msg("regions written")
	return true, nil
}

// Header renders the first line of a region file: the query, a tab and
// the quoted items.
func Header(qc *query.Context) string {
	quoted := make([]string, 0, qc.NumItems())
	for _, it := range qc.Items() {
		quoted = append(quoted, "'"+it+"'")
	}
	return qc.Raw() + "\t[" + strings.Join(quoted, ", ") + "]"
}

func pages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pages %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".html", ".htm":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func parseFile(path string) (Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return Page{}, err
	}
	defer f.Close()
	return Parse(f)
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
