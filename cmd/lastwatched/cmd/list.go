package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List watched videos in a directory",
	Long:  "Prints the names recorded in dir's .watched ledger (default: current directory).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	names, err := newProvider().Watched(dir)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatList(dir, names))
	return nil
}
