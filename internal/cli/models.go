package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mediascribe/internal/transcriber"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List and manage whisper models",
	Long: `List supported whisper models and their download state.

Models are fetched on first use automatically; download prefetches one, rm
frees its disk space.

Examples:
  mediascribe models list
  mediascribe models download small
  mediascribe models rm medium`,
	RunE: runModelsList,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show supported models and download state",
	RunE:  runModelsList,
}

var modelsDownloadCmd = &cobra.Command{
	Use:   "download <model>",
	Short: "Download a whisper model",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsDownload,
}

var modelsRmCmd = &cobra.Command{
	Use:   "rm <model>",
	Short: "Remove a downloaded model",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsRm,
}

func init() {
	modelsCmd.AddCommand(modelsListCmd, modelsDownloadCmd, modelsRmCmd)
	rootCmd.AddCommand(modelsCmd)
}

func newManager() *transcriber.Manager {
	cfg := loadConfig()
	return transcriber.NewManager(cfg.ModelsDir, newLogger(cfg))
}

func runModelsList(cmd *cobra.Command, args []string) error {
	manager := newManager()

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Model", "Size", "Description", "Downloaded"})
	for _, status := range manager.List() {
		downloaded := ""
		if status.Downloaded {
			downloaded = okColor.Sprint("yes")
		}
		tw.AppendRow(table.Row{status.Name, status.Size, status.Description, downloaded})
	}
	fmt.Println(tw.Render())
	fmt.Printf("Models directory: %s\n", manager.Dir())
	return nil
}

func runModelsDownload(cmd *cobra.Command, args []string) error {
	manager := newManager()
	name := args[0]

	if manager.Downloaded(name) {
		statusColor.Printf("Model %s is already downloaded\n", name)
		return nil
	}

	lastPercent := -1
	path, err := manager.Ensure(cmd.Context(), name, func(done, total int64) {
		if total <= 0 {
			return
		}
		percent := int(done * 100 / total)
		if percent/5 != lastPercent/5 {
			lastPercent = percent
			fmt.Printf("\r  downloading %s... %d%%", name, percent)
		}
	})
	if err != nil {
		fmt.Println()
		return err
	}
	fmt.Println()
	okColor.Printf("Downloaded %s to %s\n", name, path)
	return nil
}

func runModelsRm(cmd *cobra.Command, args []string) error {
	manager := newManager()
	if err := manager.Remove(args[0]); err != nil {
		return err
	}
	okColor.Printf("Removed model %s\n", args[0])
	return nil
}
