// Package tagger assigns universal part-of-speech tags to candidate text.
//
// Three backends share the Tagger interface: Heuristic (lexicon and suffix
// rules, no model), Prose (averaged perceptron model from
// github.com/jdkato/prose) and Stub (one fixed tag for every token).
package tagger

import (
	"context"
	"fmt"
	"strings"
)

// Universal POS tags.
const (
	Noun        = "NOUN"
	ProperNoun  = "PROPN"
	Adjective   = "ADJ"
	Verb        = "VERB"
	Adverb      = "ADV"
	Determiner  = "DET"
	Adposition  = "ADP"
	Auxiliary   = "AUX"
	Pronoun     = "PRON"
	CConj       = "CCONJ"
	SConj       = "SCONJ"
	Numeral     = "NUM"
	Particle    = "PART"
	Interject   = "INTJ"
	Punctuation = "PUNCT"
	Symbol      = "SYM"
	Other       = "X"
)

// Token is one tagged word.
type Token struct {
	Text string
	Tag  string
}

// Tagger tags a short text. Implementations must be safe for concurrent use.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Token, error)
}

// Tags returns the tag sequence of tokens.
func Tags(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Tag
	}
	return out
}

// Backend names accepted by New.
const (
	BackendHeuristic = "heuristic"
	BackendProse     = "prose"
	BackendStub      = "stub"
)

// New returns the tagger for backend.
func New(backend string) (Tagger, error) {
	switch strings.ToLower(backend) {
	case "", BackendHeuristic:
		return NewHeuristic(), nil
	case BackendProse:
		p, err := NewProse()
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendStub:
		return Stub{}, nil
	default:
		return nil, fmt.Errorf("unknown tagger backend %q", backend)
	}
}

// Stub tags every whitespace-separated token with the same tag (Noun when
// Fixed is empty).
type Stub struct {
	Fixed string
}

// Tag implements Tagger.
func (s Stub) Tag(ctx context.Context, text string) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tag := s.Fixed
	if tag == "" {
		tag = Noun
	}
	words := strings.Fields(text)
	out := make([]Token, len(words))
	for i, w := range words {
		out[i] = Token{Text: w, Tag: tag}
	}
	return out, nil
}
