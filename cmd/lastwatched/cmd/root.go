package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/corey/lastwatched/internal/adapters/sidecar"
	"github.com/corey/lastwatched/internal/adapters/socket"
	"github.com/corey/lastwatched/internal/app"
	"github.com/corey/lastwatched/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgPath string
	verbose bool

	// Set by PersistentPreRunE for every command.
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lastwatched",
	Short: "lastwatched: remember which videos you have seen",
	Long: `Marks video files as watched in a hidden .watched file next to them.
The provider host daemon answers overlay, context menu and property queries
from file managers over a local socket.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			cfgPath = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.Logging.Level, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: user config dir/lastwatched/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(watchedCmd)
	rootCmd.AddCommand(unwatchedCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger builds a production zap logger at level (debug when verbose).
// Extra output paths replace stderr.
func newLogger(level string, verbose bool, outputs ...string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		zc.Level = lvl
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if len(outputs) > 0 {
		zc.OutputPaths = outputs
		zc.ErrorOutputPaths = outputs
	}
	return zc.Build()
}

// paths returns the per-user lastwatched directory layout.
func paths() *app.Paths {
	return app.NewPaths(filepath.Dir(cfgPath))
}

// socketPath returns the configured socket, or one derived from the config dir.
func socketPath() string {
	if cfg.Socket != "" {
		return cfg.Socket
	}
	return socket.SocketPath(paths().Root)
}

// newProvider builds a provider over the sidecar store for one-shot commands.
func newProvider() *app.Provider {
	store := sidecar.NewStore(sidecar.Options{
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		Logger:       logger.Named("store"),
	})
	return app.NewProvider(store, logger.Named("provider"))
}
