package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	fsw "github.com/corey/lastwatched/internal/adapters/fsnotify"
	"github.com/corey/lastwatched/internal/adapters/sidecar"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <dir>...",
	Short: "Print ledger changes as they happen",
	Long: `Watches each directory's .watched ledger and prints its entries whenever it
changes, until interrupted. Subdirectories are not watched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p := newProvider()

	w, err := fsw.NewWatcher(sidecar.FileName, logger.Named("watcher"))
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	changes := make(chan string, 16)
	if err := w.Watch(args, func(dir string) {
		select {
		case changes <- dir:
		default: // already queued behind a reprint
		}
	}); err != nil {
		return err
	}

	for _, dir := range args {
		names, err := p.Watched(dir)
		if err != nil {
			return err
		}
		fmt.Fprint(out, formatList(dir, names))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case dir := <-changes:
			names, err := p.Watched(dir)
			if err != nil {
				fmt.Fprintf(out, "%s✗ %s%s  %s\n", colorRed, dir, colorReset, Describe(err))
				continue
			}
			fmt.Fprint(out, formatList(dir, names))
		case <-sigCh:
			return nil
		}
	}
}
