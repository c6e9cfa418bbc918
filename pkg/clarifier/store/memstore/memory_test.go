package memstore

import (
	"context"
	"testing"

	"github.com/cognicore/clarifier/pkg/clarifier/store"
)

func TestDescriptionsSortedStable(t *testing.T) {
	ctx := context.Background()
	s := New()

	n, err := s.ImportDescriptions(ctx, []store.Description{
		{Source: "webisa", Term: "apple", Text: "company", Freq: 2},
		{Source: "webisa", Term: "apple", Text: "fruit", Freq: 5},
		{Source: "webisa", Term: "apple", Text: "brand", Freq: 2},
		{Source: "webisa", Term: "", Text: "dropped", Freq: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("imported %d, want 3", n)
	}

	got, _ := s.Descriptions(ctx, "webisa", "apple", 5)
	want := []string{"fruit", "company", "brand"}
	for i, w := range want {
		if got[i].Text != w {
			t.Errorf("Descriptions[%d] = %q, want %q", i, got[i].Text, w)
		}
	}

	counts, _ := s.CountDescriptions(ctx)
	if counts["webisa"] != 3 {
		t.Errorf("count = %d, want 3", counts["webisa"])
	}
}

func TestRunLedger(t *testing.T) {
	ctx := context.Background()
	s := New()
	ids := store.NewIDs()

	first := store.Run{ID: ids.New(), Query: "apple_1", Items: []string{"banana"}}
	second := store.Run{ID: ids.New(), Query: "pear"}
	if err := s.BeginRun(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginRun(ctx, second); err != nil {
		t.Fatal(err)
	}

	first.Status = store.RunFailed
	first.Error = "missing input file"
	if err := s.FinishRun(ctx, first); err != nil {
		t.Fatal(err)
	}

	got, ok, _ := s.GetRun(ctx, first.ID)
	if !ok || got.Status != store.RunFailed || got.Error == "" {
		t.Errorf("GetRun = %+v", got)
	}

	runs, _ := s.ListRuns(ctx, store.RunFilter{})
	if len(runs) != 2 || runs[0].ID != second.ID {
		t.Errorf("ListRuns order wrong: %+v", runs)
	}

	failed, _ := s.ListRuns(ctx, store.RunFilter{Status: store.RunFailed})
	if len(failed) != 1 {
		t.Errorf("expected 1 failed run, got %d", len(failed))
	}

	if err := s.FinishRun(ctx, store.Run{ID: "nope"}); err == nil {
		t.Error("expected error finishing unknown run")
	}
}
