package app

import (
	"errors"
	"path/filepath"

	"github.com/corey/lastwatched/internal/domain/record"
	"github.com/corey/lastwatched/internal/domain/video"
	"github.com/corey/lastwatched/internal/ports"
	"go.uber.org/zap"
)

// Provider implements ports.Provider on top of a ports.Store. It holds no
// watched state: every call opens the owning ledger, works, and closes it.
type Provider struct {
	store ports.Store
	log   *zap.Logger
}

var _ ports.Provider = (*Provider)(nil)

// NewProvider creates a provider over store. A nil logger discards logs.
func NewProvider(store ports.Store, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{store: store, log: log}
}

// ResolveOwner returns the directory whose ledger governs path. A bare file
// name resolves to the current directory.
func (p *Provider) ResolveOwner(path string) (string, error) {
	if path == "" {
		return "", invalidPath("resolve owner", path, "empty path")
	}
	dir, name := filepath.Split(filepath.Clean(path))
	if name == "" || name == "." || name == ".." {
		return "", invalidPath("resolve owner", path, "no file name (root directory?)")
	}
	if dir == "" {
		return ".", nil
	}
	return filepath.Clean(dir), nil
}

// IsWatched reports whether path is marked watched in its directory's ledger.
func (p *Provider) IsWatched(path string) (ports.Membership, error) {
	if !video.IsVideo(path) {
		return ports.NotMember, nil
	}
	dir, err := p.ResolveOwner(path)
	if err != nil {
		// No sidecar is possible; nothing can be watched here.
		return ports.NotMember, nil
	}

	l, err := p.store.Open(dir, ports.ReadIfExists)
	if errors.Is(err, ports.ErrStoreNotFound) {
		return ports.NotMember, nil
	}
	if err != nil {
		return ports.NotMember, err
	}
	defer l.Close()

	if err := l.Load(); err != nil {
		return ports.NotMember, err
	}
	if l.Contains(baseName(path)) {
		return ports.Member, nil
	}
	return ports.NotMember, nil
}

// MarkWatched validates path and appends its base name to the ledger,
// creating the ledger on first use.
func (p *Provider) MarkWatched(path string) (err error) {
	dir, name, err := p.validate("mark watched", path)
	if err != nil {
		return err
	}

	l, err := p.store.Open(dir, ports.ReadWriteCreate)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := l.Close(); err == nil {
			err = cerr
		}
	}()

	if err := l.Load(); err != nil {
		return err
	}
	if err := l.Add(name); err != nil {
		return err
	}
	p.log.Debug("marked watched", zap.String("dir", dir), zap.String("file", name))
	return nil
}

// MarkUnwatched validates path and removes its base name from the ledger.
// A directory without a ledger has nothing to unmark.
func (p *Provider) MarkUnwatched(path string) (err error) {
	dir, name, err := p.validate("mark unwatched", path)
	if err != nil {
		return err
	}

	l, err := p.store.Open(dir, ports.ReadWriteIfExists)
	if errors.Is(err, ports.ErrStoreNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if cerr := l.Close(); err == nil {
			err = cerr
		}
	}()

	if err := l.Load(); err != nil {
		return err
	}
	if err := l.Remove(name); err != nil {
		return err
	}
	p.log.Debug("marked unwatched", zap.String("dir", dir), zap.String("file", name))
	return nil
}

// Watched lists the names recorded in dir's ledger. A directory without a
// ledger has none.
func (p *Provider) Watched(dir string) ([]string, error) {
	l, err := p.store.Open(dir, ports.ReadIfExists)
	if errors.Is(err, ports.ErrStoreNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer l.Close()

	if err := l.Load(); err != nil {
		return nil, err
	}
	return l.Entries(), nil
}

// validate rejects paths that can never be recorded, before any I/O.
func (p *Provider) validate(op, path string) (dir, name string, err error) {
	dir, err = p.ResolveOwner(path)
	if err != nil {
		return "", "", invalidPath(op, path, "no parent directory or file name")
	}
	name = baseName(path)
	if !record.ValidName(name) {
		return "", "", invalidPath(op, path, "file name spans multiple lines")
	}
	ext := video.Ext(name)
	if ext == "" {
		return "", "", invalidPath(op, path, "file has no extension")
	}
	if !video.IsVideoExt(ext) {
		return "", "", &ports.OpError{Op: op, Path: path, Kind: ports.ErrUnsupportedExtension,
			Err: errors.New("." + ext + " is not a recognized video extension")}
	}
	return dir, name, nil
}

func baseName(path string) string {
	return filepath.Base(filepath.Clean(path))
}

func invalidPath(op, path, reason string) error {
	return &ports.OpError{Op: op, Path: path, Kind: ports.ErrInvalidPath, Err: errors.New(reason)}
}
