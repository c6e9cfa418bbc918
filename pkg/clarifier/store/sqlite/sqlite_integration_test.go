package sqlite

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/clarifier/pkg/clarifier/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestDescriptionsTopOrder(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	n, err := st.ImportDescriptions(ctx, []store.Description{
		{Source: "webisa", Term: "apple", Text: "company", Freq: 3},
		{Source: "webisa", Term: "apple", Text: "fruit", Freq: 9},
		{Source: "webisa", Term: "apple", Text: "brand", Freq: 3},
		{Source: "webisa", Term: "pear", Text: "fruit", Freq: 4},
		{Source: "conceptgraph", Term: "apple", Text: "tree", Freq: 100},
		{Source: "", Term: "apple", Text: "dropped", Freq: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	got, err := st.Descriptions(ctx, "webisa", "apple", 5)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "fruit", got[0].Text)
	assert.Equal(t, "company", got[1].Text, "ties keep import order")
	assert.Equal(t, "brand", got[2].Text)

	limited, err := st.Descriptions(ctx, "webisa", "apple", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	miss, err := st.Descriptions(ctx, "webisa", "kiwi", 5)
	require.NoError(t, err)
	assert.Empty(t, miss)

	counts, err := st.CountDescriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), counts["webisa"])
	assert.Equal(t, int64(1), counts["conceptgraph"])
}

func TestImportDescriptionsRollsBack(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	// sqlite binds NaN as NULL, which the freq column rejects.
	n, err := st.ImportDescriptions(ctx, []store.Description{
		{Source: "webisa", Term: "apple", Text: "fruit", Freq: 9},
		{Source: "webisa", Term: "apple", Text: "company", Freq: 3},
		{Source: "webisa", Term: "apple", Text: "broken", Freq: math.NaN()},
	})
	require.Error(t, err)
	assert.Equal(t, 0, n)

	got, err := st.Descriptions(ctx, "webisa", "apple", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRunLedger(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	ids := store.NewIDs()

	started := time.Now().Add(-time.Second)
	run := store.Run{
		ID:        ids.New(),
		Query:     "apple_1",
		Items:     []string{"banana", "grape"},
		StartedAt: started,
	}
	require.NoError(t, st.BeginRun(ctx, run))

	got, found, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, store.RunRunning, got.Status)
	assert.Equal(t, []string{"banana", "grape"}, got.Items)
	assert.WithinDuration(t, started, got.StartedAt, time.Millisecond)

	run.Status = store.RunDone
	run.QueryCandidates = 4
	run.ItemCandidates = 7
	run.FinishedAt = time.Now()
	require.NoError(t, st.FinishRun(ctx, run))

	got, _, err = st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, store.RunDone, got.Status)
	assert.Equal(t, 4, got.QueryCandidates)
	assert.Equal(t, 7, got.ItemCandidates)

	_, found, err = st.GetRun(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	err = st.FinishRun(ctx, store.Run{ID: "missing", Status: store.RunFailed})
	assert.Error(t, err)
}

func TestListRunsFilters(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	ids := store.NewIDs()

	var last string
	for i, status := range []store.RunStatus{store.RunDone, store.RunFailed, store.RunDone} {
		r := store.Run{ID: ids.New(), Query: fmt.Sprintf("q%d", i), StartedAt: time.Now()}
		require.NoError(t, st.BeginRun(ctx, r))
		r.Status = status
		r.FinishedAt = time.Now()
		require.NoError(t, st.FinishRun(ctx, r))
		last = r.ID
	}

	all, err := st.ListRuns(ctx, store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, last, all[0].ID, "newest first")

	done, err := st.ListRuns(ctx, store.RunFilter{Status: store.RunDone})
	require.NoError(t, err)
	assert.Len(t, done, 2)

	byQuery, err := st.ListRuns(ctx, store.RunFilter{Query: "q1"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, store.RunFailed, byQuery[0].Status)
}

func TestConcurrentLedgerWrites(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	ids := store.NewIDs()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := store.Run{ID: ids.New(), Query: fmt.Sprintf("q%d", i), StartedAt: time.Now()}
			if err := st.BeginRun(ctx, r); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("BeginRun: %v", err)
	}

	runs, err := st.ListRuns(ctx, store.RunFilter{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, runs, 8)
}
