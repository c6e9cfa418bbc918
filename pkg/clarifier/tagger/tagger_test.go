package tagger

import (
	"context"
	"reflect"
	"testing"
)

func TestHeuristicTags(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		text string
		want []string
	}{
		{"fruit", []string{Noun}},
		{"red fruit", []string{Adjective, Noun}},
		{"crisp fruit", []string{Noun, Noun}},
		{"such as a", []string{Determiner, SConj, Determiner}},
		{"tropical fruit", []string{Adjective, Noun}},
		{"the running", []string{Determiner, Noun}},
		{"Apple device", []string{ProperNoun, Noun}},
		{"quickly eaten", []string{Adverb, Noun}},
		{"2024 model", []string{Numeral, Noun}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			toks, err := h.Tag(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Tag: %v", err)
			}
			if got := Tags(toks); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tag(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestHeuristicEmpty(t *testing.T) {
	toks, err := NewHeuristic().Tag(context.Background(), "   ")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 0 {
		t.Errorf("expected no tokens, got %v", toks)
	}
}

func TestStubFixedTag(t *testing.T) {
	toks, err := Stub{}.Tag(context.Background(), "quickly ran away")
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range toks {
		if tok.Tag != Noun {
			t.Errorf("stub tag = %s, want NOUN", tok.Tag)
		}
	}

	toks, _ = Stub{Fixed: Verb}.Tag(context.Background(), "fruit")
	if toks[0].Tag != Verb {
		t.Errorf("stub fixed tag = %s, want VERB", toks[0].Tag)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewHeuristic().Tag(ctx, "fruit"); err == nil {
		t.Error("expected context error")
	}
}

func TestFromPenn(t *testing.T) {
	cases := map[string]string{
		"NNS": Noun,
		"NNP": ProperNoun,
		"JJR": Adjective,
		"VBZ": Verb,
		"DT":  Determiner,
		"IN":  Adposition,
		",":   Punctuation,
		"FW":  Other,
	}
	for penn, want := range cases {
		if got := FromPenn(penn); got != want {
			t.Errorf("FromPenn(%s) = %s, want %s", penn, got, want)
		}
	}
}

func TestNewBackends(t *testing.T) {
	for _, name := range []string{"", "heuristic", "prose", "stub"} {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if _, err := New("bogus"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestProseReusesModel(t *testing.T) {
	p, err := NewProse()
	if err != nil {
		t.Fatalf("NewProse: %v", err)
	}
	if p.model == nil {
		t.Fatal("model not loaded")
	}
	loaded := p.model

	for i := 0; i < 3; i++ {
		toks, err := p.Tag(context.Background(), "fruit")
		if err != nil {
			t.Fatalf("Tag: %v", err)
		}
		if len(toks) != 1 || toks[0].Text != "fruit" || toks[0].Tag != Noun {
			t.Errorf("Tag(fruit) = %+v", toks)
		}
	}
	if p.model != loaded {
		t.Error("model replaced between calls")
	}
}
