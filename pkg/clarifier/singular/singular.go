// Package singular maps plural noun forms to their singular form.
//
// Every text line is passed through a Normalizer before pattern matching,
// distance scoring or context extraction, so downstream string matching
// always compares singular forms.
package singular

import (
	"strings"

	"github.com/gertd/go-pluralize"
)

// DefaultExceptions are words that end like plurals but must never be
// singularized (pronouns, verbs, product and domain names).
var DefaultExceptions = []string{
	"this", "as", "is", "news", "windows", "virus", "supernoobs", "does", "os", "ios",
	"macos", "pus", "bus", "vs", "ps", "js", "ls", "us", "cs", "kiss", "miss", "ms",
	"nds", "nes", "class", "mass", "his", "its", "guess", "success", "business",
	"happiness", "abscess", "across", "has", "diagnosis", "dress",
}

// Normalizer converts whitespace-tokenized lines to singular form.
type Normalizer struct {
	client     *pluralize.Client
	exceptions map[string]struct{}
}

// New creates a Normalizer with DefaultExceptions plus any extra words.
func New(extra ...string) *Normalizer {
	exc := make(map[string]struct{}, len(DefaultExceptions)+len(extra))
	for _, w := range DefaultExceptions {
		exc[w] = struct{}{}
	}
	for _, w := range extra {
		exc[w] = struct{}{}
	}
	return &Normalizer{
		client:     pluralize.NewClient(),
		exceptions: exc,
	}
}

// Word returns the singular form of a single token. Tokens in the exception
// set, empty tokens and tokens with no distinct singular form are returned
// unchanged.
func (n *Normalizer) Word(word string) string {
	if word == "" {
		return word
	}
	if n.IsException(word) {
		return word
	}
	s := n.client.Singular(word)
	if s == "" || s == word {
		return word
	}
	return s
}

// Line singularizes each space-separated token of line. Spacing is
// preserved exactly: the line is split on single spaces and re-joined
// with single spaces.
func (n *Normalizer) Line(line string) string {
	if line == "" {
		return line
	}
	words := strings.Split(line, " ")
	for i, w := range words {
		words[i] = n.Word(w)
	}
	return strings.Join(words, " ")
}

// Lines singularizes every line, returning a new slice.
func (n *Normalizer) Lines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = n.Line(l)
	}
	return out
}

// IsException reports whether word is protected from singularization.
func (n *Normalizer) IsException(word string) bool {
	_, ok := n.exceptions[word]
	return ok
}
