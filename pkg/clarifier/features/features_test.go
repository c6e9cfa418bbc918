package features

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cognicore/clarifier/pkg/clarifier/candidates"
	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
	"github.com/cognicore/clarifier/pkg/clarifier/knowledge"
	"github.com/cognicore/clarifier/pkg/clarifier/ngram"
	"github.com/cognicore/clarifier/pkg/clarifier/pattern"
	"github.com/cognicore/clarifier/pkg/clarifier/query"
)

type mapEmbedder struct {
	vecs map[string][]float32
	err  error
}

func (m mapEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vecs[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (m mapEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (mapEmbedder) Close() error    { return nil }
func (mapEmbedder) ModelID() string { return "map" }

func TestRawFeatureLengths(t *testing.T) {
	qc, _ := query.NewContext("apple", []string{"banana"})
	tuples := []pattern.Tuple{{Head: "fruit", Tail: "apple"}}
	windows := pattern.Windows([]string{"apple fruit"}, []string{"apple"}, 50)

	for _, n := range []int{0, 1, 4} {
		cands := make([]string, n)
		for i := range cands {
			cands[i] = "fruit"
		}
		results := map[string][]float64{
			"list":       ListTitle(ngram.Table{{Text: "fruit", Count: 1}}, cands),
			"qpattern":   QueryPattern(tuples, "apple", cands),
			"ipattern":   ItemPattern(qc, tuples, cands),
			"distance":   Distance(windows, cands),
			"occurrence": Occurrence(cands),
			"frequency":  Frequency([]string{"fruit"}, cands),
			"inclusion":  Inclusion(cands),
			"entity":     Entity([]knowledge.Description{{Text: "fruit", Freq: 1}}, cands),
		}
		for name, got := range results {
			if len(got) != n {
				t.Errorf("%s: len = %d, want %d", name, len(got), n)
			}
		}
	}
}

func TestQueryPattern(t *testing.T) {
	tuples := []pattern.Tuple{
		{Head: "red fruit", Tail: "an apple"},
		{Head: "fruit", Tail: "a pear"},
		{Head: "sweet fruit", Tail: "apple pie"},
	}
	got := QueryPattern(tuples, "apple", []string{"fruit", "red fruit", "tree"})
	want := []float64{2, 1, 0}
	assertFloats(t, got, want)
}

func TestItemPattern(t *testing.T) {
	qc, _ := query.NewContext("fruit", []string{"banana", "grape"})
	tuples := []pattern.Tuple{
		{Head: "tropical fruit", Tail: "banana and grape"},
		{Head: "fruit", Tail: "banana"},
	}
	got := ItemPattern(qc, tuples, []string{"fruit", "tropical"})
	assertFloats(t, got, []float64{1.5, 1})

	empty, _ := query.NewContext("fruit", nil)
	assertFloats(t, ItemPattern(empty, tuples, []string{"fruit"}), []float64{0})
}

func TestDistancePrefersCloser(t *testing.T) {
	windows := pattern.Windows([]string{"apple near fruit and far away from a cake"}, []string{"apple"}, 50)
	got := Distance(windows, []string{"near", "cake", "plum"})
	if !(got[0] > got[1] && got[1] > 0) {
		t.Errorf("closer candidate should score higher: %v", got)
	}
	if got[2] != 0 {
		t.Errorf("absent candidate scored %v", got[2])
	}
	if DistanceScore(5, 5) != 1 || DistanceScore(3, 5) != DistanceScore(7, 5) {
		t.Error("DistanceScore should peak at 1 and be symmetric")
	}
}

func TestFrequencyAndInclusion(t *testing.T) {
	texts := []string{"fruit and more fruit", "fruit salad"}
	assertFloats(t, Frequency(texts, []string{"fruit", "fruit salad", "kiwi"}), []float64{3, 1, 0})

	cands := []string{"fruit", "red fruit", "sweet red fruit"}
	assertFloats(t, Inclusion(cands), []float64{0, 1, 2})
}

func TestEntityMatchesStrippedDescriptions(t *testing.T) {
	descs := []knowledge.Description{
		{Text: "fruit", Freq: 10},
		{Text: "fruit!", Freq: 2},
		{Text: "red fruit", Freq: 1},
	}
	assertFloats(t, Entity(descs, []string{"fruit", "red", "red fruit"}), []float64{12, 0, 1})
}

func TestSquash(t *testing.T) {
	if got := Squash(1, 0); got != 0 {
		t.Errorf("Squash(1, 0) = %v", got)
	}
	if got := Squash(0.1, math.NaN()); got != 1.0 {
		t.Errorf("NaN should clamp to 1, got %v", got)
	}
	if got := Squash(2, 1); got >= 1 || got <= 0.96 {
		t.Errorf("Squash should stay below 1: %v", got)
	}
}

func TestSquashStaysOpen(t *testing.T) {
	tests := []struct {
		name      string
		weight, x float64
	}{
		{"frequency 250", 0.1, 250},
		{"large", 2, 1e9},
		{"negative", 1, -40},
		{"infinite", 1, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Squash(tt.weight, tt.x)
			if got >= 1 || got <= -1 {
				t.Errorf("Squash(%v, %v) = %v, want inside (-1, 1)", tt.weight, tt.x, got)
			}
		})
	}
}

func TestInhibition(t *testing.T) {
	if got := Inhibition(0.97, 10, 0.95); got != 0 {
		t.Errorf("similar items should not inhibit: %v", got)
	}
	if got := Inhibition(0.45, 10, 0.95); math.Abs(got-5) > 1e-9 {
		t.Errorf("Inhibition = %v, want 5", got)
	}
}

func fruitPool(t *testing.T) *candidates.Pool {
	t.Helper()
	qc, err := query.NewContext("apple_1", []string{"banana", "grape"})
	if err != nil {
		t.Fatal(err)
	}
	return &candidates.Pool{
		Query: qc,
		Corpus: ingest.Corpus{
			ItemLists:  []string{"tropical fruit"},
			ItemTexts:  []string{"banana is a tropical fruit and grape is a small fruit"},
			QueryTexts: []string{"an apple is a fruit"},
		},
		QueryLines:      []string{"an apple is a fruit"},
		ItemLines:       []string{"banana is a tropical fruit and grape is a small fruit"},
		Titles:          ngram.Table{{Text: "tropical fruit", Count: 3}},
		QueryTuples:     []pattern.Tuple{{Head: "fruit", Tail: "an apple"}},
		ItemTuples:      []pattern.Tuple{{Head: "tropical fruit", Tail: "banana"}},
		QueryKnowledge:  []knowledge.Description{{Text: "fruit", Freq: 7}},
		ItemKnowledge:   [][]knowledge.Description{{{Text: "tropical fruit", Freq: 2}}, nil},
		QueryCandidates: []string{"fruit", "tree"},
		ItemCandidates:  []string{"tropical fruit", "fruit", "berry"},
	}
}

func TestSuiteQuery(t *testing.T) {
	p := fruitPool(t)
	vecs, err := NewSuite(DefaultWeights(), nil).Query(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 {
		t.Fatalf("len = %d", len(vecs))
	}
	fruit, tree := vecs[0], vecs[1]
	if fruit.Pattern != math.Tanh(1) {
		t.Errorf("pattern = %v", fruit.Pattern)
	}
	if math.Abs(fruit.Entity-math.Tanh(0.7)) > 1e-9 {
		t.Errorf("entity = %v", fruit.Entity)
	}
	if fruit.Semantic != 0 || fruit.List != 0 || fruit.Inhibition != 0 {
		t.Errorf("disabled features should be zero: %+v", fruit)
	}
	if tree != (Vector{}) {
		t.Errorf("absent candidate scored %+v", tree)
	}
}

func TestSuiteItemsRawAndBounded(t *testing.T) {
	p := fruitPool(t)

	raw, err := NewSuite(DefaultWeights(), nil).WithFullFeatures(true).Items(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if raw[0].List != 3 || raw[0].Entity != 2 || raw[0].Pattern != 0.5 {
		t.Errorf("raw tropical fruit = %+v", raw[0])
	}
	if raw[0].Frequency != 2 {
		t.Errorf("frequency over texts and lists = %v", raw[0].Frequency)
	}
	if raw[1].Inclusion != 0 || raw[0].Inclusion != 1 {
		t.Errorf("inclusion = %v / %v", raw[0].Inclusion, raw[1].Inclusion)
	}

	squashed, err := NewSuite(DefaultWeights(), nil).Items(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range squashed {
		for _, f := range []float64{v.List, v.Pattern, v.Distance, v.Occurrence, v.Frequency, v.Inclusion, v.Semantic, v.Entity} {
			if f <= -1 || f >= 1 {
				t.Errorf("feature out of (-1, 1): %+v", v)
			}
		}
	}
}

func TestSuiteSemanticAndInhibition(t *testing.T) {
	p := fruitPool(t)
	e := mapEmbedder{vecs: map[string][]float32{
		"apple":  {1, 0, 0},
		"fruit":  {1, 0, 0},
		"banana": {1, 0, 0},
		"grape":  {0, 1, 0},
	}}
	s := NewSuite(DefaultWeights(), e)

	q, err := s.Query(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if q[0].Semantic != math.Tanh(1) || q[1].Semantic != 0 {
		t.Errorf("semantic = %v / %v", q[0].Semantic, q[1].Semantic)
	}

	items, err := s.Items(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	// banana and grape are orthogonal: mean similarity 0.
	want := 10 * 0.95
	for _, v := range items {
		if math.Abs(v.Inhibition-want) > 1e-9 {
			t.Errorf("inhibition = %v, want %v", v.Inhibition, want)
		}
	}
	if items[1].Semantic != math.Tanh(0.5) {
		t.Errorf("item semantic = %v", items[1].Semantic)
	}
}

func TestSuiteEmbedderError(t *testing.T) {
	boom := errors.New("model missing")
	_, err := NewSuite(DefaultWeights(), mapEmbedder{err: boom}).Query(context.Background(), fruitPool(t))
	if !errors.Is(err, boom) {
		t.Fatalf("expected embedder error, got %v", err)
	}
}

func assertFloats(t *testing.T, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
