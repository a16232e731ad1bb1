package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iguales-labs/policykb-cli/internal/sources"
)

var sourcesMax int

var sourcesCmd = &cobra.Command{
	Use:   "sources [question]",
	Short: "Show the citation view for a question",
	Long: `Retrieves chunks for the question and prints the compact citation
line plus the full per-source detail, including rows hidden by
deduplication or the display budget.`,
	Args: cobra.ExactArgs(1),
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().IntVarP(&sourcesMax, "max", "m", 0, "citation budget (0 = configured default)")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return errors.New("kb service not configured")
	}
	if err := ensureKB(cmd.Context()); err != nil {
		return err
	}

	results, err := kbService.Retrieve(cmd.Context(), args[0], 0)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	view, err := kbService.CompactSources(results, sourcesMax)
	if err != nil {
		return fmt.Errorf("building sources view: %w", err)
	}
	if view.Line == "" {
		cmd.Println("No sources.")
		return nil
	}

	cmd.Println(view.Line)
	cmd.Println()
	for i, row := range view.CompactRows {
		cmd.Println(sources.FormatSourceDetail(row.Source, i+1))
	}
	if len(view.HiddenRows) > 0 {
		cmd.Printf("\nHidden (%d):\n", len(view.HiddenRows))
		for _, row := range view.HiddenRows {
			cmd.Println(sources.FormatSourceDetail(row.Source, row.Index))
		}
	}
	return nil
}
