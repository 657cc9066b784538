package cmd

import (
	"fmt"

	"github.com/corey/lastwatched/internal/ports"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <file>...",
	Short: "Show whether videos are watched",
	Long: `Reports watched, not watched, or error for each file. A file that is not a
video, or sits in a directory without a ledger, is not watched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	p := newProvider()
	for _, path := range args {
		m, err := p.IsWatched(path)
		if err != nil {
			m = ports.MembershipError
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatMembership(path, m, err))
	}
	return nil
}
