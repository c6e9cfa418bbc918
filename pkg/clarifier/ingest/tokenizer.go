package ingest

import (
	"strings"
)

// StopChecker reports whether a token is a stopword.
type StopChecker interface {
	IsStop(token string) bool
}

// Tokenizer splits preprocessed lines into alphanumeric tokens.
type Tokenizer struct {
	stops StopChecker
}

// NewTokenizer creates a tokenizer that filters unigrams through stops.
// A nil stops disables stopword filtering.
func NewTokenizer(stops StopChecker) *Tokenizer {
	return &Tokenizer{stops: stops}
}

// Words splits line on single spaces and strips every token down to
// [A-Za-z0-9]. Empty tokens are kept so that window positions match the
// original spacing; callers decide what to do with them.
func (t *Tokenizer) Words(line string) []string {
	words := strings.Split(line, " ")
	for i, w := range words {
		words[i] = AlnumOnly(w)
	}
	return words
}

// Unigrams filters words down to the unigram vocabulary: stopwords and
// tokens starting with a hyphen are dropped.
func (t *Tokenizer) Unigrams(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if strings.HasPrefix(w, "-") || t.isStopword(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (t *Tokenizer) isStopword(word string) bool {
	if t.stops == nil {
		return false
	}
	return t.stops.IsStop(word)
}

// AlnumOnly removes every byte outside [A-Za-z0-9].
func AlnumOnly(s string) string {
	return keepBytes(s, false)
}

// StripCandidate removes every byte outside [A-Za-z0-9 ]. Candidate texts
// are compared in this form.
func StripCandidate(s string) string {
	return keepBytes(s, true)
}

func keepBytes(s string, spaces bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) || (spaces && c == ' ') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
