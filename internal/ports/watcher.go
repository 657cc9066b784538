package ports

// LedgerWatcher monitors directories for ledger changes so overlays can be
// repainted. The adapter (fsnotify) must ignore every file except the ledger
// itself before invoking onChange. Only one Watch call should be active at a time.
type LedgerWatcher interface {
	// Watch starts monitoring each of dirs (non-recursive). onChange is called
	// with the directory whose ledger changed. The callback may be invoked from
	// any goroutine. Returns an error if a directory doesn't exist or
	// permissions are insufficient.
	Watch(dirs []string, onChange func(dir string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
