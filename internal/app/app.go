// Package app wires together all adapters and domain logic.
// It provides the provider operations used by the CLI and lifecycle
// management for the provider host daemon: create, start, stop.
package app

import (
	"fmt"
	"sync"
	"time"

	fsw "github.com/corey/lastwatched/internal/adapters/fsnotify"
	"github.com/corey/lastwatched/internal/adapters/sidecar"
	"github.com/corey/lastwatched/internal/adapters/socket"
	"go.uber.org/zap"
)

// App is the top-level container wiring all components together.
type App struct {
	Store    *sidecar.Store
	Provider *Provider
	Host     *Host
	Server   *socket.Server
	Watcher  *fsw.Watcher // nil when no directories are monitored

	watchDirs []string
	log       *zap.Logger
	started   time.Time

	mu      sync.Mutex
	changes int // ledger change notifications since start
}

// Config holds initialization parameters for the App.
type Config struct {
	Socket       string        // provider host socket path (required)
	ModulePath   string        // executable path; the overlay icon sits beside it
	Icon         string        // explicit overlay icon, overrides ModulePath
	ReadTimeout  time.Duration // shared lock wait (default: sidecar.DefaultReadTimeout)
	WriteTimeout time.Duration // exclusive lock wait (default: sidecar.DefaultWriteTimeout)
	WatchDirs    []string      // directories whose ledgers are monitored
	Logger       *zap.Logger   // nil = discard
}

// New creates an App with all dependencies wired. Does not start services.
func New(cfg Config) (*App, error) {
	if cfg.Socket == "" {
		return nil, fmt.Errorf("socket path required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	store := sidecar.NewStore(sidecar.Options{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Logger:       log.Named("store"),
	})
	provider := NewProvider(store, log.Named("provider"))
	host := NewHost(provider, HostOptions{
		ModulePath: cfg.ModulePath,
		Icon:       cfg.Icon,
		Logger:     log.Named("host"),
	})

	a := &App{
		Store:     store,
		Provider:  provider,
		Host:      host,
		Server:    socket.NewServer(host, cfg.Socket, log.Named("socket")),
		watchDirs: cfg.WatchDirs,
		log:       log,
	}

	if len(cfg.WatchDirs) > 0 {
		w, err := fsw.NewWatcher(sidecar.FileName, log.Named("watcher"))
		if err != nil {
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		a.Watcher = w
	}

	return a, nil
}

// Start begins serving the socket and, if configured, monitoring ledgers.
func (a *App) Start() error {
	a.started = time.Now()
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	// Ledger monitoring is non-fatal if setup fails
	if a.Watcher != nil {
		if err := a.Watcher.Watch(a.watchDirs, a.onLedgerChanged); err != nil {
			a.log.Warn("ledger monitor unavailable", zap.Error(err))
		}
	}
	a.log.Info("provider host started",
		zap.String("socket", a.Server.Addr()),
		zap.String("icon", a.Host.IconPath()),
		zap.Int("watch_dirs", len(a.watchDirs)))
	return nil
}

// Stop shuts down all services. Idempotent.
func (a *App) Stop() error {
	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	a.Server.Stop()
	a.log.Info("provider host stopped", zap.Duration("uptime", time.Since(a.started).Round(time.Second)))
	return nil
}

// ShutdownCh is closed when a client asks the daemon to stop.
func (a *App) ShutdownCh() <-chan struct{} {
	return a.Server.ShutdownCh()
}

// Changes returns how many ledger change notifications have been seen.
func (a *App) Changes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.changes
}

// onLedgerChanged logs the refreshed membership of a monitored directory.
// A file manager shim would repaint overlays for dir here.
func (a *App) onLedgerChanged(dir string) {
	a.mu.Lock()
	a.changes++
	a.mu.Unlock()

	names, err := a.Provider.Watched(dir)
	if err != nil {
		a.log.Debug("ledger changed, unreadable", zap.String("dir", dir), zap.Error(err))
		return
	}
	a.log.Info("ledger changed", zap.String("dir", dir), zap.Int("watched", len(names)))
}
