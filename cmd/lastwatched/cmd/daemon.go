package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/corey/lastwatched/internal/adapters/socket"
	"github.com/corey/lastwatched/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var daemonWatchDirs []string

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the provider host",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the provider host in the foreground",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the provider host",
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show provider host health",
	RunE:  runDaemonStatus,
}

func init() {
	daemonStartCmd.Flags().StringSliceVar(&daemonWatchDirs, "watch", nil, "directories whose ledgers are monitored")
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	sockPath := socketPath()

	// Check if already running
	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Fprintln(out, "provider host already running")
		return nil
	}

	p := paths()
	if err := p.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", p.Root, err)
	}

	log := logger
	if cfg.Logging.File != "" {
		fileLog, err := newLogger(cfg.Logging.Level, verbose, cfg.Logging.File)
		if err != nil {
			return fmt.Errorf("open daemon log: %w", err)
		}
		defer fileLog.Sync()
		log = fileLog
	}

	modulePath, err := os.Executable()
	if err != nil {
		log.Debug("executable path unavailable", zap.Error(err))
	}

	a, err := app.New(app.Config{
		Socket:       sockPath,
		ModulePath:   modulePath,
		Icon:         cfg.Icon,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		WatchDirs:    daemonWatchDirs,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	if err := a.Start(); err != nil {
		return err
	}
	if err := os.WriteFile(p.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		log.Warn("write pid file", zap.Error(err))
	}
	defer p.CleanEphemeral()

	fmt.Fprintf(out, "provider host started at %s\n", sockPath)

	// Wait for a signal or a remote stop
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-sigCh:
	case <-a.ShutdownCh():
	}

	fmt.Fprintln(out, "shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socketPath())

	if !client.Ping() {
		fmt.Fprintln(cmd.OutOrStdout(), "provider host is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "provider host stopped")
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	health, err := socket.NewClient(socketPath()).Health()
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s✗ not running%s\n", colorYellow, colorReset)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), formatHealth(health))
	return nil
}
