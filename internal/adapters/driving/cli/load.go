package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iguales-labs/policykb-cli/internal/adapters/driven/config/file"
	"github.com/iguales-labs/policykb-cli/internal/core/domain"
)

var loadJSON bool

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load a policy document as the knowledge base",
	Long: `Reads a policy document, segments it into chunks and builds the
lexical index. The file path is remembered so later commands can reload
it automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadJSON, "json", false, "output bundle summary as JSON")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return errors.New("kb service not configured")
	}

	bundle, err := loadKBFile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	if configStore != nil {
		if err := configStore.Set(file.KeyKBPath, args[0]); err != nil {
			return fmt.Errorf("remembering kb path: %w", err)
		}
	}

	if loadJSON {
		return outputLoadJSON(cmd, bundle)
	}

	cmd.Printf("Loaded %s: %d chunks", bundle.KBName, bundle.ChunksTotal)
	if bundle.KBHash != "" {
		cmd.Printf(" (hash %s)", bundle.KBHash[:12])
	}
	cmd.Println()
	return nil
}

func outputLoadJSON(cmd *cobra.Command, bundle *domain.Bundle) error {
	summary := map[string]any{
		"kb_name":      bundle.KBName,
		"kb_hash":      bundle.KBHash,
		"kb_updated":   bundle.KBUpdatedAt,
		"chunks_total": bundle.ChunksTotal,
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
