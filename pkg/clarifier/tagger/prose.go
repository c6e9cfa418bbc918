package tagger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Prose tags with the averaged perceptron model bundled in prose and maps
// its Penn Treebank tags to universal tags. The model is decoded once and
// shared by every Tag call; tagging only reads it.
type Prose struct {
	model *prose.Model
}

// NewProse loads the bundled tagging model.
func NewProse() (*Prose, error) {
	doc, err := prose.NewDocument("load",
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("load prose model: %w", err)
	}
	return &Prose{model: doc.Model}, nil
}

// Tag implements Tagger.
func (p *Prose) Tag(ctx context.Context, text string) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text,
		prose.UsingModel(p.model),
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("prose tag %q: %w", text, err)
	}

	toks := doc.Tokens()
	out := make([]Token, len(toks))
	for i, tok := range toks {
		out[i] = Token{Text: tok.Text, Tag: FromPenn(tok.Tag)}
	}
	return out, nil
}

// FromPenn maps a Penn Treebank tag to a universal tag.
func FromPenn(tag string) string {
	switch tag {
	case "NN", "NNS":
		return Noun
	case "NNP", "NNPS":
		return ProperNoun
	case "JJ", "JJR", "JJS":
		return Adjective
	case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ":
		return Verb
	case "MD":
		return Auxiliary
	case "RB", "RBR", "RBS", "WRB":
		return Adverb
	case "DT", "PDT", "WDT":
		return Determiner
	case "IN":
		return Adposition
	case "PRP", "PRP$", "WP", "WP$", "EX":
		return Pronoun
	case "CC":
		return CConj
	case "CD":
		return Numeral
	case "TO", "RP", "POS":
		return Particle
	case "UH":
		return Interject
	case "SYM", "$", "#":
		return Symbol
	case ".", ",", ":", "(", ")", "``", "''", "-LRB-", "-RRB-":
		return Punctuation
	}
	return Other
}
