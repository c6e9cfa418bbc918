package tagger

import (
	"context"
	"strings"
	"unicode"
)

// Heuristic tags with a closed-class lexicon plus suffix rules, then fixes
// obvious verb/noun confusions from the left neighbour. Unknown words
// default to Noun.
type Heuristic struct {
	lexicon map[string]string
}

// NewHeuristic creates a Heuristic tagger with the default lexicon.
func NewHeuristic() *Heuristic {
	h := &Heuristic{lexicon: make(map[string]string)}
	h.loadDefaultLexicon()
	return h
}

// Tag implements Tagger.
func (h *Heuristic) Tag(ctx context.Context, text string) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{Text: w, Tag: h.baseline(w)}
	}

	for i := 1; i < len(tokens); i++ {
		prev := tokens[i-1]
		cur := tokens[i].Tag

		// "the [run]", "a fast [attack]"
		if (prev.Tag == Determiner || prev.Tag == Adjective) && cur == Verb {
			tokens[i].Tag = Noun
			continue
		}
		// "can [run]"
		if prev.Tag == Auxiliary && isModal(prev.Text) && cur == Noun {
			tokens[i].Tag = Verb
			continue
		}
		// "word of [honor]"
		if strings.EqualFold(prev.Text, "of") && cur == Verb {
			tokens[i].Tag = Noun
		}
	}
	return tokens, nil
}

func (h *Heuristic) baseline(word string) string {
	lower := strings.ToLower(word)
	if tag, ok := h.lexicon[lower]; ok {
		return tag
	}
	return inferTag(word, lower)
}

func inferTag(word, lower string) string {
	if isNumber(word) {
		return Numeral
	}
	if len(word) == 1 && unicode.IsPunct(rune(word[0])) {
		return Punctuation
	}
	if unicode.IsUpper(rune(word[0])) {
		return ProperNoun
	}

	switch {
	case strings.HasSuffix(lower, "ly"):
		return Adverb
	case strings.HasSuffix(lower, "ness"), strings.HasSuffix(lower, "tion"),
		strings.HasSuffix(lower, "ment"), strings.HasSuffix(lower, "ity"),
		strings.HasSuffix(lower, "ism"), strings.HasSuffix(lower, "ist"):
		return Noun
	case strings.HasSuffix(lower, "ing"), strings.HasSuffix(lower, "ed"):
		return Verb
	case strings.HasSuffix(lower, "ful"), strings.HasSuffix(lower, "less"),
		strings.HasSuffix(lower, "ous"), strings.HasSuffix(lower, "ive"),
		strings.HasSuffix(lower, "able"), strings.HasSuffix(lower, "ible"),
		strings.HasSuffix(lower, "ical"), strings.HasSuffix(lower, "ish"):
		return Adjective
	}
	return Noun
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func isModal(s string) bool {
	switch strings.ToLower(s) {
	case "can", "could", "will", "would", "shall", "should", "may", "might", "must":
		return true
	}
	return false
}

func (h *Heuristic) add(tag string, words ...string) {
	for _, w := range words {
		h.lexicon[w] = tag
	}
}

func (h *Heuristic) loadDefaultLexicon() {
	h.add(Determiner, "the", "a", "an", "this", "that", "these", "those", "some", "any",
		"no", "every", "each", "all", "both", "either", "neither", "another", "such")

	h.add(Pronoun, "i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us",
		"them", "my", "your", "his", "its", "our", "their", "who", "whom", "whose", "which",
		"what", "myself", "yourself", "itself", "themselves")

	h.add(Adposition, "in", "on", "at", "for", "with", "by", "from", "of", "about", "into",
		"through", "during", "before", "after", "above", "below", "between", "under", "over",
		"against", "among", "around", "behind", "beyond", "near", "toward", "towards", "upon",
		"within", "without", "across", "along", "like", "via", "per", "than")

	h.add(Auxiliary, "is", "are", "was", "were", "be", "been", "being", "am", "have", "has",
		"had", "do", "does", "did", "can", "could", "will", "would", "shall", "should", "may",
		"might", "must")

	h.add(CConj, "and", "or", "but", "nor", "yet", "so")
	h.add(SConj, "because", "although", "while", "if", "unless", "until", "since", "when",
		"where", "whether", "as")
	h.add(Particle, "to", "not", "up", "out", "off")

	h.add(Adverb, "very", "quite", "rather", "really", "too", "just", "only", "now", "then",
		"here", "there", "always", "never", "often", "sometimes", "already", "still", "even",
		"also", "more", "most", "less", "least", "how", "why")

	h.add(Adjective, "old", "new", "good", "bad", "great", "small", "large", "big", "little",
		"young", "long", "short", "high", "low", "early", "late", "first", "last", "best",
		"other", "many", "much", "few", "several", "same", "different", "popular", "famous",
		"common", "major", "main", "top", "free", "red", "blue", "green", "black", "white",
		"yellow", "dark", "bright", "sweet", "fresh", "hot", "cold", "real", "full", "open",
		"public", "local", "national", "international", "american", "english", "british")

	h.add(Verb, "go", "get", "make", "take", "see", "know", "say", "come", "give", "find",
		"use", "include", "includes", "become", "called", "known", "made", "based", "found",
		"contain", "contains", "grow", "grows", "eat", "buy", "play", "run", "read", "watch")
}
