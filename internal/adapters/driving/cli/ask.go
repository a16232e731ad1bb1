package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
)

var (
	askTopK  int
	askJSON  bool
	askDebug bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Retrieve KB chunks relevant to a question",
	Long: `Ranks the knowledge-base chunks against the question using BM25
and prints the best matches with their citation line. Falls back to
token-overlap, substring and similarity matching when BM25 finds no
evidence.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top", "k", 0, "number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output results as JSON")
	askCmd.Flags().BoolVar(&askDebug, "debug", false, "print retrieval diagnostics")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return errors.New("kb service not configured")
	}
	if err := ensureKB(cmd.Context()); err != nil {
		return err
	}

	k := askTopK
	if k == 0 {
		k = kbService.TopK()
	}

	results, err := kbService.Retrieve(cmd.Context(), args[0], k)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, results)
	}

	outputAskTable(cmd, results)

	if askDebug {
		printDebug(cmd, kbService.LastDebug())
	}
	return nil
}

func outputAskJSON(cmd *cobra.Command, results []domain.Result) error {
	view, err := kbService.CompactSources(results, 0)
	if err != nil {
		return fmt.Errorf("building sources view: %w", err)
	}
	payload := map[string]any{
		"results": results,
		"sources": view.Line,
	}
	if askDebug {
		payload["debug"] = kbService.LastDebug()
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskTable(cmd *cobra.Command, results []domain.Result) {
	if len(results) == 0 {
		cmd.Println("No matching chunks found.")
		return
	}

	width := snippetWidth()

	cmd.Println("Results:")
	cmd.Println()
	for i, res := range results {
		cmd.Printf("  [%d] %s (%.4f, %s)\n", i+1, res.Chunk.Label, res.Score, res.MatchType)
		cmd.Printf("      %s\n", clip(res.Chunk.Text, width))
		cmd.Println()
	}

	if view, err := kbService.CompactSources(results, 0); err == nil && view.Line != "" {
		cmd.Println(view.Line)
	}
}

func printDebug(cmd *cobra.Command, debug domain.KBDebug) {
	cmd.Println()
	cmd.Printf("reason=%s expanded=%q intent=%q retrieved=%d/%d\n",
		debug.Reason, debug.QueryExpanded, debug.Intent,
		debug.RetrievedCount, debug.ChunksTotal)
	for _, cand := range debug.TopCandidates {
		cmd.Printf("  chunk=%d score=%.4f overlap=%d type=%s label=%q\n",
			cand.ChunkID, cand.Score, cand.Overlap, cand.MatchType, cand.Label)
	}
}

// snippetWidth derives the snippet budget from the terminal width,
// falling back to 120 characters when stdout is not a terminal.
func snippetWidth() int {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			return w - 8
		}
	}
	return 120
}

func clip(text string, maxLen int) string {
	clean := strings.Join(strings.Fields(text), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	return strings.TrimRight(string(runes[:maxLen-1]), " ") + "…"
}
