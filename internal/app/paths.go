package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the per-user lastwatched
// directory. All fields are pre-computed at construction.
type Paths struct {
	Root   string // <config>/lastwatched/
	Config string // <config>/lastwatched/config.yaml

	LogDir    string // <config>/lastwatched/log/
	DaemonLog string // <config>/lastwatched/log/daemon.log

	RunDir  string // <config>/lastwatched/run/
	PIDFile string // <config>/lastwatched/run/daemon.pid
}

// NewPaths constructs all resolved paths from the lastwatched directory,
// normally the directory holding config.yaml.
func NewPaths(root string) *Paths {
	return &Paths{
		Root:   root,
		Config: filepath.Join(root, "config.yaml"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:  filepath.Join(root, "run"),
		PIDFile: filepath.Join(root, "run", "daemon.pid"),
	}
}

// EnsureDirs creates all subdirectories. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes the PID file. Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
}
