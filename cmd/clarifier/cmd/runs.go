package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/clarifier/pkg/clarifier"
	"github.com/cognicore/clarifier/pkg/clarifier/internalerr"
	"github.com/cognicore/clarifier/pkg/clarifier/store"
)

var (
	runsQuery  string
	runsStatus string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List ranking runs from the ledger",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	f := runsCmd.Flags()
	f.StringVarP(&runsQuery, "query", "q", "", "Only runs of this query")
	f.StringVar(&runsStatus, "status", "", "running, done, skipped or failed")
	f.IntVarP(&runsLimit, "limit", "n", 20, "Maximum runs to list")
}

func runRuns(cmd *cobra.Command, args []string) error {
	if settings.Store.Path == "" {
		return fmt.Errorf("%w: runs needs --store or store.path", internalerr.ErrStoreUnavailable)
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()

	st, err := clarifier.OpenStore(ctx, settings.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, store.RunFilter{
		Query:  runsQuery,
		Status: store.RunStatus(runsStatus),
		Limit:  runsLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs")
		return nil
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-8s %-20s q=%d i=%d  [%s]",
			r.ID, r.Status, r.Query, r.QueryCandidates, r.ItemCandidates, strings.Join(r.Items, ", "))
		if r.Error != "" {
			line += "  " + r.Error
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
