package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var watchedCmd = &cobra.Command{
	Use:   "watched <file>...",
	Short: "Mark videos as watched",
	Long:  "Records each file's name in its directory's .watched ledger, creating the ledger if needed.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatched,
}

var unwatchedCmd = &cobra.Command{
	Use:   "unwatched <file>...",
	Short: "Mark videos as not watched",
	Long:  "Removes each file's name from its directory's .watched ledger.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUnwatched,
}

func runWatched(cmd *cobra.Command, args []string) error {
	p := newProvider()
	for _, path := range args {
		if err := p.MarkWatched(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s✓ watched%s    %s\n", colorGreen, colorReset, path)
	}
	return nil
}

func runUnwatched(cmd *cobra.Command, args []string) error {
	p := newProvider()
	for _, path := range args {
		if err := p.MarkUnwatched(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s○ unwatched%s  %s\n", colorGray, colorReset, path)
	}
	return nil
}
