package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
)

var modeCmd = &cobra.Command{
	Use:   "mode [general|strict]",
	Short: "Show or set the answering mode",
	Long: `Controls how retrieval output is meant to be used downstream.

Available modes:
  general - retrieval grounds answers when evidence exists, free
            answers are allowed otherwise
  strict  - answers must be grounded in retrieved evidence only

Aliases from the legacy admin dashboard ("solo kb (estricto)",
"modo general") are accepted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMode,
}

func init() {
	rootCmd.AddCommand(modeCmd)
}

func runMode(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return errors.New("kb service not configured")
	}

	if len(args) == 0 {
		cmd.Printf("KB mode: %s\n", kbService.Mode())
		return nil
	}

	mode := domain.NormalizeKBMode(args[0])
	if err := kbService.SetMode(mode); err != nil {
		return err
	}
	cmd.Printf("KB mode set to %s\n", mode)
	return nil
}
