package ngram

import (
	"testing"

	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
	"github.com/cognicore/clarifier/pkg/clarifier/stoplist"
)

func newMiner(stops ...string) *Miner {
	return NewMiner(ingest.NewTokenizer(stoplist.NewManager(stops)))
}

func TestMineWindows(t *testing.T) {
	m := newMiner("a")
	tables := m.Mine([]string{"a crisp red fruit"})

	if got := len(tables[0]); got != 3 {
		t.Errorf("unigrams = %d, want 3 (stopword dropped)", got)
	}
	if tables[0].Lookup("a") != 0 {
		t.Error("stopword leaked into unigrams")
	}
	if tables[1].Lookup("a crisp") != 1 {
		t.Error("bigrams must use unfiltered tokens")
	}
	if got := len(tables[3]); got != 1 {
		t.Errorf("4-grams = %d, want 1", got)
	}
	if got := len(tables[4]); got != 0 {
		t.Errorf("5-grams = %d, want 0", got)
	}
}

func TestMineSkipsBracketLines(t *testing.T) {
	m := newMiner()
	tables := m.Mine([]string{"see [1] for details", "fruit"})

	if tables[0].Lookup("see") != 0 {
		t.Error("line with '[' should be skipped")
	}
	if tables[0].Lookup("fruit") != 1 {
		t.Error("expected fruit to be counted")
	}
}

func TestMineStripsPunctuation(t *testing.T) {
	m := newMiner()
	tables := m.Mine([]string{"fruit, fruit! fruit."})

	if got := tables[0].Lookup("fruit"); got != 3 {
		t.Errorf("fruit count = %v, want 3", got)
	}
}

func TestTablesSortedAndStable(t *testing.T) {
	m := newMiner()
	tables := m.Mine([]string{"pear plum fig plum", "fig kiwi"})

	uni := tables[0]
	want := []string{"plum", "fig", "pear", "kiwi"}
	for i, text := range want {
		if uni[i].Text != text {
			t.Fatalf("unigram order = %v, want %v", uni.Texts(), want)
		}
	}

	for _, table := range tables {
		for i := 1; i < len(table); i++ {
			if table[i-1].Count < table[i].Count {
				t.Fatalf("table not sorted descending: %v", table)
			}
		}
	}
}

func TestMergeConservesMass(t *testing.T) {
	table := Table{
		{Text: "fruit", Count: 2},
		{Text: "tree", Count: 1},
		{Text: "fruit", Count: 3},
		{Text: "seed", Count: 1},
	}

	merged := table.Merge()
	if merged.Total() != table.Total() {
		t.Errorf("mass changed: %v -> %v", table.Total(), merged.Total())
	}
	if merged[0].Text != "fruit" || merged[0].Count != 5 {
		t.Errorf("merged head = %+v", merged[0])
	}
	if merged[1].Text != "tree" || merged[2].Text != "seed" {
		t.Errorf("tie order lost: %v", merged.Texts())
	}
}

func TestMineEmpty(t *testing.T) {
	tables := newMiner().Mine(nil)
	for i, table := range tables {
		if len(table) != 0 {
			t.Errorf("table %d not empty", i)
		}
	}
}
