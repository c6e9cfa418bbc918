package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cognicore/clarifier/internal/batch"
)

var batchWorkers int

var batchCmd = &cobra.Command{
	Use:   "batch <pairs.jsonl>",
	Short: "Rank every query/items pair of a JSON Lines file",
	Long: "Each line is {\"query\": \"...\", \"items\": [\"...\"]}. Failing pairs are\n" +
		"reported and the batch continues; already ranked queries are skipped.",
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent runs (default from settings)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	pairs, err := batch.LoadFromJSONL(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	workers := settings.Batch.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}
	report := eng.RunBatch(ctx, pairs, workers)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "done %d, skipped %d, duplicates %d, failed %d\n",
		report.Done, report.Skipped, report.Duplicates, len(report.Failed))

	failed := make([]string, 0, len(report.Failed))
	for q := range report.Failed {
		failed = append(failed, q)
	}
	sort.Strings(failed)
	for _, q := range failed {
		fmt.Fprintf(out, "  %s: %v\n", q, report.Failed[q])
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d pairs failed", len(failed), report.Total())
	}
	return nil
}
