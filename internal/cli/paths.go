package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mediascribe/internal/config"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Manage quick-access directories",
	Long: `Quick paths are named shortcut directories offered when picking files
in the GUI.

Examples:
  mediascribe paths list
  mediascribe paths add lectures ~/Movies/lectures
  mediascribe paths rm lectures`,
	RunE: runPathsList,
}

var pathsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show configured quick paths",
	RunE:  runPathsList,
}

var pathsAddCmd = &cobra.Command{
	Use:   "add <name> <directory>",
	Short: "Add a quick path",
	Args:  cobra.ExactArgs(2),
	RunE:  runPathsAdd,
}

var pathsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a quick path",
	Args:  cobra.ExactArgs(1),
	RunE:  runPathsRm,
}

func init() {
	pathsCmd.AddCommand(pathsListCmd, pathsAddCmd, pathsRmCmd)
	rootCmd.AddCommand(pathsCmd)
}

// loadQuickPaths surfaces the malformed-store notice without failing.
func loadQuickPaths() (*config.QuickPaths, error) {
	qp, err := config.LoadQuickPaths()
	if errors.Is(err, config.ErrQuickPathsUnreadable) {
		warnColor.Fprintf(os.Stderr, "Quick paths file ignored: %v\n", err)
		return qp, nil
	}
	return qp, err
}

func runPathsList(cmd *cobra.Command, args []string) error {
	qp, err := loadQuickPaths()
	if err != nil {
		return err
	}
	if qp.Len() == 0 {
		fmt.Println("No quick paths configured")
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Name", "Directory"})
	for _, name := range qp.Names() {
		dir, _ := qp.Get(name)
		tw.AppendRow(table.Row{name, dir})
	}
	fmt.Println(tw.Render())
	return nil
}

func runPathsAdd(cmd *cobra.Command, args []string) error {
	qp, err := loadQuickPaths()
	if err != nil {
		return err
	}
	if err := qp.Add(args[0], args[1]); err != nil {
		return err
	}
	if err := qp.Save(); err != nil {
		return err
	}
	okColor.Printf("Added quick path %s\n", args[0])
	return nil
}

func runPathsRm(cmd *cobra.Command, args []string) error {
	qp, err := loadQuickPaths()
	if err != nil {
		return err
	}
	if err := qp.Remove(args[0]); err != nil {
		return err
	}
	if err := qp.Save(); err != nil {
		return err
	}
	okColor.Printf("Removed quick path %s\n", args[0])
	return nil
}
