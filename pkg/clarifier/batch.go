package clarifier

import (
	"context"
	"sync"

	"github.com/cognicore/clarifier/internal/logging"
)

// BatchReport summarizes a batch.
type BatchReport struct {
	Done       int
	Skipped    int
	Duplicates int // pairs dropped because their query appeared earlier
	Failed     map[string]error
}

// Total is the number of pairs that were attempted.
func (r BatchReport) Total() int {
	return r.Done + r.Skipped + len(r.Failed)
}

// RunBatch ranks pairs with at most workers concurrent runs. A failing
// pair is logged and recorded in the report; the batch continues. Pairs
// repeating an earlier query are run only once. Cancelling ctx stops
// scheduling new pairs.
func (e *Engine) RunBatch(ctx context.Context, pairs []Pair, workers int) BatchReport {
	if workers < 1 {
		workers = 1
	}
	report := BatchReport{Failed: make(map[string]error)}

	seen := make(map[string]struct{}, len(pairs))
	var jobs []Pair
	for _, p := range pairs {
		if _, dup := seen[p.Query]; dup {
			report.Duplicates++
			continue
		}
		seen[p.Query] = struct{}{}
		jobs = append(jobs, p)
	}

	logging.Info().Int("pairs", len(jobs)).Int("workers", workers).Msg("batch started")

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)

	for _, p := range jobs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}

		go func(p Pair) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := e.Run(ctx, p)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				logging.Error().Err(err).Str("query", p.Query).Msg("run failed")
				report.Failed[p.Query] = err
			case res.Skipped:
				report.Skipped++
			default:
				report.Done++
			}
		}(p)
	}
	wg.Wait()

	logging.Info().
		Int("done", report.Done).
		Int("skipped", report.Skipped).
		Int("failed", len(report.Failed)).
		Int("duplicates", report.Duplicates).
		Msg("batch finished")
	return report
}
