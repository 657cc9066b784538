// Package sidecar implements the ports.Store interface with a plain-text
// ledger file kept inside the directory it governs. Each directory's ledger is
// the hidden file ".watched": one base name per LF-terminated line.
//
// Every handle holds an advisory lock from Open to Close (shared for
// read-only, exclusive for read-write), and the record is loaded only after
// the lock is held, so a rewrite can never drop a line appended by another
// process. Adds append a single line; removes rewrite the whole file.
package sidecar

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/corey/lastwatched/internal/domain/record"
	"github.com/corey/lastwatched/internal/ports"
	"go.uber.org/zap"
)

// FileName is the reserved ledger name inside each directory.
const FileName = ".watched"

// Default lock waits. Reads are on the overlay paint path and give up sooner.
const (
	DefaultReadTimeout  = 500 * time.Millisecond
	DefaultWriteTimeout = 2 * time.Second
)

// Options tunes a Store. Zero values select the defaults.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *zap.Logger
}

// Store implements ports.Store backed by per-directory ledger files.
type Store struct {
	readTimeout  time.Duration
	writeTimeout time.Duration
	log          *zap.Logger
}

var _ ports.Store = (*Store)(nil)

// NewStore creates a ledger store.
func NewStore(opts Options) *Store {
	s := &Store{
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
		log:          opts.Logger,
	}
	if s.readTimeout <= 0 {
		s.readTimeout = DefaultReadTimeout
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = DefaultWriteTimeout
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Path returns the ledger path for dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Open returns a locked handle on dir's ledger.
func (s *Store) Open(dir string, mode ports.Mode) (ports.Ledger, error) {
	path := Path(dir)

	var (
		f   *os.File
		err error
	)
	switch mode {
	case ports.ReadIfExists:
		f, err = os.Open(path)
	case ports.ReadWriteIfExists:
		f, err = os.OpenFile(path, os.O_RDWR, 0)
	case ports.ReadWriteCreate:
		if _, statErr := os.Stat(dir); statErr != nil {
			return nil, ports.Classify("open ledger", dir, statErr)
		}
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	default:
		return nil, &ports.OpError{Op: "open ledger", Path: path, Kind: ports.ErrIO, Err: errors.New("unknown mode " + mode.String())}
	}
	if err != nil {
		if mode != ports.ReadWriteCreate && errors.Is(err, os.ErrNotExist) {
			return nil, &ports.OpError{Op: "open ledger", Path: path, Kind: ports.ErrStoreNotFound, Err: err}
		}
		return nil, ports.Classify("open ledger", path, err)
	}

	timeout := s.readTimeout
	if mode.Writable() {
		timeout = s.writeTimeout
	}
	if err := acquire(f, mode.Writable(), timeout); err != nil {
		f.Close()
		if errors.Is(err, ports.ErrLockTimeout) {
			return nil, &ports.OpError{Op: "lock ledger", Path: path, Kind: ports.ErrLockTimeout}
		}
		return nil, ports.Classify("lock ledger", path, err)
	}

	// Hiding is cosmetic; a ledger that stays visible still works.
	if err := hide(path); err != nil {
		s.log.Debug("could not hide ledger", zap.String("path", path), zap.Error(err))
	}

	return &Ledger{f: f, path: path, writable: mode.Writable(), log: s.log}, nil
}

// Ledger is one open, locked ledger file.
type Ledger struct {
	f        *os.File
	path     string
	writable bool
	log      *zap.Logger

	rec  *record.Record
	size int64
	// tail is true when the file ends in a line without its terminator.
	tail   bool
	closed bool
}

var _ ports.Ledger = (*Ledger)(nil)

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Load reads the whole ledger and materializes its record.
func (l *Ledger) Load() error {
	if l.closed {
		return l.closedErr("load")
	}
	if _, err := l.f.Seek(0, io.SeekStart); err != nil {
		return ports.Classify("load ledger", l.path, err)
	}
	data, err := io.ReadAll(l.f)
	if err != nil {
		return ports.Classify("load ledger", l.path, err)
	}
	rec, err := record.Parse(data)
	if err != nil {
		return &ports.OpError{Op: "load ledger", Path: l.path, Kind: ports.ErrEncoding}
	}
	l.rec = rec
	l.size = int64(len(data))
	l.tail = len(data) > 0 && data[len(data)-1] != '\n'
	return nil
}

// Contains reports whether name is recorded. False before Load.
func (l *Ledger) Contains(name string) bool {
	if l.rec == nil {
		return false
	}
	return l.rec.Contains(name)
}

// Entries returns the recorded names in insertion order.
func (l *Ledger) Entries() []string {
	if l.rec == nil {
		return []string{}
	}
	return l.rec.Entries()
}

// Add appends name as one line and syncs it to disk. A failed write is
// truncated away so no partial line survives.
func (l *Ledger) Add(name string) error {
	if err := l.prepareWrite("add", name); err != nil {
		return err
	}
	if l.rec.Contains(name) {
		return nil
	}

	line := record.Line(name)
	if l.tail {
		line = append([]byte{'\n'}, line...)
	}

	if _, err := l.f.Seek(l.size, io.SeekStart); err != nil {
		return ports.Classify("add to ledger", l.path, err)
	}
	if _, err := l.f.Write(line); err != nil {
		l.rollback()
		return ports.Classify("add to ledger", l.path, err)
	}
	if err := l.f.Sync(); err != nil {
		l.rollback()
		return ports.Classify("add to ledger", l.path, err)
	}

	l.rec.Add(name)
	l.size += int64(len(line))
	l.tail = false
	return nil
}

// Remove drops name and rewrites the ledger from scratch: truncate, seek to
// start, write every remaining line, flush, sync.
func (l *Ledger) Remove(name string) error {
	if err := l.prepareWrite("remove", name); err != nil {
		return err
	}
	next, changed := l.rec.Without(name)
	if !changed {
		return nil
	}

	if err := l.f.Truncate(0); err != nil {
		return ports.Classify("rewrite ledger", l.path, err)
	}
	if _, err := l.f.Seek(0, io.SeekStart); err != nil {
		return ports.Classify("rewrite ledger", l.path, err)
	}
	w := bufio.NewWriter(l.f)
	n, err := next.WriteTo(w)
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = l.f.Sync()
	}
	if err != nil {
		return ports.Classify("rewrite ledger", l.path, err)
	}

	l.rec = next
	l.size = n
	l.tail = false
	return nil
}

// Close releases the lock and the file handle.
func (l *Ledger) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if err := unlock(l.f); err != nil {
		l.log.Debug("unlock ledger", zap.String("path", l.path), zap.Error(err))
	}
	return ports.Classify("close ledger", l.path, l.f.Close())
}

func (l *Ledger) prepareWrite(op, name string) error {
	if l.closed {
		return l.closedErr(op)
	}
	if !l.writable {
		return &ports.OpError{Op: op, Path: l.path, Kind: ports.ErrPermission, Err: errors.New("ledger opened read-only")}
	}
	if !record.ValidName(name) {
		return &ports.OpError{Op: op, Path: name, Kind: ports.ErrInvalidPath, Err: errors.New("name must be a single non-empty line")}
	}
	if l.rec == nil {
		return l.Load()
	}
	return nil
}

func (l *Ledger) rollback() {
	if err := l.f.Truncate(l.size); err != nil {
		l.log.Warn("could not roll back partial ledger write", zap.String("path", l.path), zap.Error(err))
	}
}

func (l *Ledger) closedErr(op string) error {
	return &ports.OpError{Op: op, Path: l.path, Kind: ports.ErrIO, Err: os.ErrClosed}
}
