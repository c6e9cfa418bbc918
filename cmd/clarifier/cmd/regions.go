package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/clarifier/internal/regions"
	"github.com/cognicore/clarifier/pkg/clarifier/query"
)

var regionsCmd = &cobra.Command{
	Use:   "regions <query> <item> [item...]",
	Short: "Build region files from saved search-result pages",
	Long: "Reads the .html pages under <top-results>/<query>_q, _qi and _i and writes\n" +
		"<query>_candidates-items.txt and <query>_candidates-query.txt.",
	Args: cobra.MinimumNArgs(2),
	RunE: runRegions,
}

func runRegions(cmd *cobra.Command, args []string) error {
	qc, err := query.NewContext(args[0], args[1:])
	if err != nil {
		return err
	}
	written, err := regions.NewBuilder(settings.Paths.TopResults).Build(qc)
	if err != nil {
		return err
	}
	if !written {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: regions already extracted\n", qc.Raw())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: regions written to %s\n", qc.Raw(), settings.Paths.TopResults)
	return nil
}
