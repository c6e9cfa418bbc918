package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cognicore/clarifier/pkg/clarifier"
	"github.com/cognicore/clarifier/pkg/clarifier/rank"
)

var rankShow int

var rankCmd = &cobra.Command{
	Use:   "rank <query> <item> [item...]",
	Short: "Rank candidates for one query and its items",
	Long: "Reads <top-results>/<query>_candidates-{items,query}.txt and writes\n" +
		"<output>/<query>_query.txt and <output>/<query>_items.txt. A query whose\n" +
		"tables already exist is skipped.",
	Args: cobra.MinimumNArgs(2),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().IntVarP(&rankShow, "show", "n", 5, "Print the top N candidates of each table (0 = none)")
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	res, err := eng.Run(ctx, clarifier.Pair{Query: args[0], Items: args[1:]})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Skipped {
		fmt.Fprintf(out, "%s: already ranked, skipped\n", res.Query)
		return nil
	}
	fmt.Fprintf(out, "%s: %d query candidates, %d item candidates\n",
		res.Query, len(res.QueryRows), len(res.ItemRows))
	fmt.Fprintf(out, "  %s\n  %s\n", res.QueryPath, res.ItemsPath)
	if rankShow > 0 {
		printTop(out, "query", res.QueryRows, rankShow)
		printTop(out, "items", res.ItemRows, rankShow)
	}
	return nil
}

func printTop(w io.Writer, title string, rows []rank.Row, n int) {
	if len(rows) < n {
		n = len(rows)
	}
	fmt.Fprintf(w, "%s:\n", title)
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "  %2d. %-40s %.4f\n", i+1, rows[i].Text, rows[i].Score)
	}
}
