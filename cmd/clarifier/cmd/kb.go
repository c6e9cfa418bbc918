package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cognicore/clarifier/internal/logging"
	"github.com/cognicore/clarifier/pkg/clarifier"
	"github.com/cognicore/clarifier/pkg/clarifier/internalerr"
	"github.com/cognicore/clarifier/pkg/clarifier/knowledge"
	"github.com/cognicore/clarifier/pkg/clarifier/store"
)

var (
	kbWebIsADir     string
	kbConceptGraph  string
	kbLookupBackend string
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the WebIsA and Concept Graph knowledge index",
}

var kbImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the flat-file corpora into the sqlite knowledge index",
	Long: "Reads every <c>_ten.txt partition of the WebIsA directory and the Concept\n" +
		"Graph file into --store. Defaults come from the knowledge settings.",
	Args: cobra.NoArgs,
	RunE: runKBImport,
}

var kbLookupCmd = &cobra.Command{
	Use:   "lookup <term>",
	Short: "Print the top descriptions of a term",
	Args:  cobra.ExactArgs(1),
	RunE:  runKBLookup,
}

func init() {
	kbImportCmd.Flags().StringVar(&kbWebIsADir, "webisa", "", "WebIsA partition directory")
	kbImportCmd.Flags().StringVar(&kbConceptGraph, "conceptgraph", "", "Concept Graph file")
	kbLookupCmd.Flags().StringVar(&kbLookupBackend, "backend", "", "files or store (default from settings)")

	kbCmd.AddCommand(kbImportCmd)
	kbCmd.AddCommand(kbLookupCmd)
}

func runKBImport(cmd *cobra.Command, args []string) error {
	if settings.Store.Path == "" {
		return fmt.Errorf("%w: kb import needs --store or store.path", internalerr.ErrStoreUnavailable)
	}
	webisa := settings.Knowledge.WebIsADir
	if kbWebIsADir != "" {
		webisa = kbWebIsADir
	}
	cg := settings.Knowledge.ConceptGraphPath
	if kbConceptGraph != "" {
		cg = kbConceptGraph
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	st, err := clarifier.OpenStore(ctx, settings.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	partitions, err := filepath.Glob(filepath.Join(webisa, "*_ten.txt"))
	if err != nil {
		return err
	}
	sort.Strings(partitions)
	for _, p := range partitions {
		if err := importFile(ctx, st, knowledge.WebIsAName, p, knowledge.TermFirst); err != nil {
			return err
		}
	}
	if cg != "" {
		if _, err := os.Stat(cg); err == nil {
			if err := importFile(ctx, st, knowledge.ConceptGraphName, cg, knowledge.DescFirst); err != nil {
				return err
			}
		} else {
			logging.Warn().Str("file", cg).Msg("concept graph file not found")
		}
	}

	counts, err := st.CountDescriptions(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, src := range []string{knowledge.WebIsAName, knowledge.ConceptGraphName} {
		fmt.Fprintf(out, "%-14s %d\n", src, counts[src])
	}
	return nil
}

func importFile(ctx context.Context, st store.Store, source, path string, layout knowledge.Layout) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n, err := knowledge.Import(ctx, st, source, func(fn func(knowledge.Row) error) error {
		return knowledge.ScanRows(f, layout, fn)
	})
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	logging.Info().Str("source", source).Str("file", path).Int("rows", n).Msg("imported")
	return nil
}

func runKBLookup(cmd *cobra.Command, args []string) error {
	k := settings.Knowledge
	if kbLookupBackend != "" {
		k.Backend = kbLookupBackend
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	var st store.Store
	if k.Backend == "store" {
		var err error
		if st, err = clarifier.OpenStore(ctx, settings.Store.Path); err != nil {
			return err
		}
		defer st.Close()
	}

	src, err := clarifier.KnowledgeSource(k, st)
	if err != nil {
		return err
	}
	if src == nil {
		return errors.New("knowledge backend is none")
	}

	sources := []knowledge.Source{src}
	if m, ok := src.(knowledge.Multi); ok {
		sources = m
	}
	out := cmd.OutOrStdout()
	for _, s := range sources {
		descs, err := s.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		for _, d := range descs {
			fmt.Fprintf(out, "%s\t%s\t%g\n", s.Name(), d.Text, d.Freq)
		}
	}
	return nil
}
