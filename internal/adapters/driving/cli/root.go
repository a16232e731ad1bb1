// Package cli implements the cobra command tree for the policykb CLI.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/iguales-labs/policykb-cli/internal/adapters/driven/config/file"
	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/core/ports/driven"
	"github.com/iguales-labs/policykb-cli/internal/core/services"
	"github.com/iguales-labs/policykb-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	kbService   *services.KBService
	configStore driven.ConfigStore
	verbose     bool
)

// Services bundles the dependencies the CLI commands use.
type Services struct {
	KB     *services.KBService
	Config driven.ConfigStore
}

// SetServices wires core services into the CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	kbService = s.KB
	configStore = s.Config
}

var rootCmd = &cobra.Command{
	Use:   "policykb",
	Short: "Policy knowledge-base retrieval from the command line",
	Long: `policykb loads a policy document, segments it into article and
section chunks, and retrieves the most relevant chunks for a question
using BM25 lexical ranking with graceful fallbacks.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose || (configStore != nil && configStore.GetBool(file.KeyVerbose)))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadKBFile reads a policy file and loads it into the KB service,
// using the file's modification time as the freshness marker.
func loadKBFile(ctx context.Context, path string) (*domain.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading kb file: %w", err)
	}

	updatedAt := ""
	if info, err := os.Stat(path); err == nil {
		updatedAt = info.ModTime().UTC().Format(time.RFC3339)
	}

	return kbService.LoadKB(ctx, string(data), filepath.Base(path), updatedAt)
}

// ensureKB loads the configured KB file when no bundle is active yet.
func ensureKB(ctx context.Context) error {
	if kbService.Bundle() != nil {
		return nil
	}
	if configStore != nil {
		if path := configStore.GetString(file.KeyKBPath); path != "" {
			_, err := loadKBFile(ctx, path)
			return err
		}
	}
	return fmt.Errorf("%w: run 'policykb load <file>' first", domain.ErrNoKB)
}
