// Package fsnotify implements the ports.LedgerWatcher interface using github.com/fsnotify/fsnotify.
// It watches media directories (non-recursive), ignores every file except the
// ledger, and debounces bursts per directory (a rewrite is a truncate followed
// by a write, so one change usually arrives as several events).
package fsnotify

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.LedgerWatcher using fsnotify.
type Watcher struct {
	fw         *fsnotify.Watcher
	ledgerName string
	log        *zap.Logger

	done    chan struct{}
	loop    sync.WaitGroup
	pending sync.WaitGroup // in-flight onChange calls

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewWatcher creates a watcher that reports changes to files named ledgerName.
// A nil logger discards logs.
func NewWatcher(ledgerName string, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		fw:         fw,
		ledgerName: ledgerName,
		log:        log,
		done:       make(chan struct{}),
		timers:     make(map[string]*time.Timer),
	}, nil
}

// Watch starts monitoring each of dirs. onChange receives the absolute
// directory whose ledger changed, at most once per debounce window.
func (w *Watcher) Watch(dirs []string, onChange func(dir string)) error {
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return err
		}
		if err := w.fw.Add(abs); err != nil {
			return err
		}
		w.log.Debug("watching directory", zap.String("dir", abs))
	}

	w.loop.Add(1)
	go func() {
		defer w.loop.Done()
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != w.ledgerName {
					continue
				}
				// Hiding the ledger only flips attributes.
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				w.schedule(filepath.Dir(event.Name), onChange)

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				w.log.Debug("watch error", zap.Error(err))

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// schedule (re)arms the debounce timer for dir.
func (w *Watcher) schedule(dir string, onChange func(dir string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if t, ok := w.timers[dir]; ok {
		t.Reset(debounceInterval)
		return
	}
	w.timers[dir] = time.AfterFunc(debounceInterval, func() {
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return
		}
		delete(w.timers, dir)
		w.pending.Add(1)
		w.mu.Unlock()

		defer w.pending.Done()
		onChange(dir)
	})
}

// Stop ends monitoring and releases all resources. After Stop returns no
// further onChange calls fire, so onChange must not call Stop itself.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for dir, t := range w.timers {
		t.Stop()
		delete(w.timers, dir)
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fw.Close()
	w.loop.Wait()
	w.pending.Wait()
	return err
}
