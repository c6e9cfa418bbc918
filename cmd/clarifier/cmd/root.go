package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cognicore/clarifier/internal/logging"
	"github.com/cognicore/clarifier/pkg/clarifier"
	"github.com/cognicore/clarifier/pkg/clarifier/config"
)

var (
	configPath string
	overrides  struct {
		topResults string
		output     string
		store      string
		logLevel   string
	}

	// settings is loaded before every subcommand runs.
	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:           "clarifier",
	Short:         "Rank clarifying descriptions for a query and its items",
	Long:          "Extracts candidate descriptions from saved search-result regions and ranks them for the query and for its items.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSettings(configPath)
		if err != nil {
			return err
		}
		applyOverrides(cmd, s)
		if err := s.Validate(); err != nil {
			return err
		}
		logging.Init(logging.Config{
			Level:  s.Logging.Level,
			Format: s.Logging.Format,
			Caller: s.Logging.Caller,
			Output: cmd.ErrOrStderr(),
		})
		settings = s
		return nil
	},
}

func applyOverrides(cmd *cobra.Command, s *config.Settings) {
	f := cmd.Flags()
	if f.Changed("top-results") {
		s.Paths.TopResults = overrides.topResults
	}
	if f.Changed("output") {
		s.Paths.Output = overrides.output
	}
	if f.Changed("store") {
		s.Store.Path = overrides.store
	}
	if f.Changed("log-level") {
		s.Logging.Level = overrides.logLevel
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// openEngine wires an engine from the loaded settings.
func openEngine(ctx context.Context) (*clarifier.Engine, error) {
	eng, err := clarifier.FromSettings(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}
	return eng, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML settings file (default $"+config.ConfigPathEnvVar+")")
	pf.StringVar(&overrides.topResults, "top-results", "", "Directory holding region files and saved pages")
	pf.StringVar(&overrides.output, "output", "", "Directory for ranked tables")
	pf.StringVar(&overrides.store, "store", "", "SQLite database for the knowledge index and run ledger")
	pf.StringVar(&overrides.logLevel, "log-level", "", "trace, debug, info, warn, error")

	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(kbCmd)
	rootCmd.AddCommand(runsCmd)
}
