// Package ngram mines contiguous word windows from text lines into
// frequency tables.
package ngram

import (
	"sort"
	"strings"

	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
)

// MaxN is the longest window the miner emits.
const MaxN = 5

// Entry is one candidate text with its accumulated count.
type Entry struct {
	Text  string
	Count float64
}

// Table is a list of entries sorted descending by count. Equal counts keep
// the order in which their texts were first seen.
type Table []Entry

// Tables holds one table per window length; index 0 is unigrams.
type Tables [MaxN]Table

// Miner builds n-gram tables from lines.
type Miner struct {
	tokenizer *ingest.Tokenizer
}

// NewMiner creates a miner that tokenizes with tokenizer.
func NewMiner(tokenizer *ingest.Tokenizer) *Miner {
	return &Miner{tokenizer: tokenizer}
}

// Mine counts unigrams through 5-grams over lines. Lines containing '['
// are skipped. Stopwords are removed from unigrams only; longer windows
// run over the unfiltered token sequence.
func (m *Miner) Mine(lines []string) Tables {
	var counters [MaxN]*Counter
	for i := range counters {
		counters[i] = NewCounter()
	}

	for _, line := range lines {
		if strings.Contains(line, "[") {
			continue
		}
		words := m.tokenizer.Words(line)

		for _, w := range m.tokenizer.Unigrams(words) {
			counters[0].Add(w, 1)
		}
		for n := 2; n <= MaxN; n++ {
			for i := 0; i+n <= len(words); i++ {
				counters[n-1].Add(strings.Join(words[i:i+n], " "), 1)
			}
		}
	}

	var tables Tables
	for i, c := range counters {
		tables[i] = c.Table()
	}
	return tables
}

// Counter accumulates counts per text and remembers first-seen order.
type Counter struct {
	index   map[string]int
	entries []Entry
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{index: make(map[string]int)}
}

// Add adds count to text.
func (c *Counter) Add(text string, count float64) {
	if i, ok := c.index[text]; ok {
		c.entries[i].Count += count
		return
	}
	c.index[text] = len(c.entries)
	c.entries = append(c.entries, Entry{Text: text, Count: count})
}

// Len returns the number of distinct texts.
func (c *Counter) Len() int {
	return len(c.entries)
}

// Table returns the counted entries sorted descending by count.
func (c *Counter) Table() Table {
	out := make(Table, len(c.entries))
	copy(out, c.entries)
	out.Sort()
	return out
}

// Sort orders the table descending by count, keeping ties in place.
func (t Table) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].Count > t[j].Count
	})
}

// Merge sums the counts of entries with equal text and returns the result
// sorted descending. The first occurrence of a text fixes its tie order.
func (t Table) Merge() Table {
	c := NewCounter()
	for _, e := range t {
		c.Add(e.Text, e.Count)
	}
	return c.Table()
}

// Total returns the sum of all counts.
func (t Table) Total() float64 {
	var sum float64
	for _, e := range t {
		sum += e.Count
	}
	return sum
}

// Lookup returns the count of text, or 0 when absent.
func (t Table) Lookup(text string) float64 {
	for _, e := range t {
		if e.Text == text {
			return e.Count
		}
	}
	return 0
}

// Texts returns the entry texts in table order.
func (t Table) Texts() []string {
	out := make([]string, len(t))
	for i, e := range t {
		out[i] = e.Text
	}
	return out
}
