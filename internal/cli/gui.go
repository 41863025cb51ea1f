package cli

import (
	"github.com/spf13/cobra"

	"mediascribe/internal/gui"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Launch the interactive terminal interface",
	Long: `The terminal interface manages a queue of files, mirrors the CLI
options, runs the pipeline in the background with live progress, and edits
quick-access directories.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		return gui.Run(cmd.Context(), cfg, newLogger(cfg))
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}
