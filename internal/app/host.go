package app

import (
	"fmt"
	"path/filepath"
	"unicode/utf16"

	"github.com/corey/lastwatched/internal/domain/video"
	"github.com/corey/lastwatched/internal/ports"
	"go.uber.org/zap"
)

// Context-menu verbs.
const (
	VerbMarkWatched   = "mark-watched"
	VerbMarkUnwatched = "mark-unwatched"
)

// PropertyWatched is the property-store key exposing the watched flag.
const PropertyWatched = "watched"

// IconFileName is the overlay icon shipped next to the host executable.
const IconFileName = "icon.ico"

var menuVerbs = []ports.Verb{
	{Name: VerbMarkWatched, HelpText: "Mark video as watched"},
	{Name: VerbMarkUnwatched, HelpText: "Mark video as not watched"},
}

// HostOptions describes the hosting process.
type HostOptions struct {
	// ModulePath is the host executable; the default icon lives beside it.
	ModulePath string
	// Icon overrides the overlay icon path.
	Icon   string
	Logger *zap.Logger
}

// Host is the process-wide context for file-manager integrations. It is
// built once when the hosting process starts and passed to whatever needs
// it; its lifetime is the process's.
type Host struct {
	provider ports.Provider
	iconPath string
	log      *zap.Logger
}

var _ ports.ShellHost = (*Host)(nil)

// NewHost creates the integration context over provider.
func NewHost(provider ports.Provider, opts HostOptions) *Host {
	icon := opts.Icon
	if icon == "" {
		icon = filepath.Join(filepath.Dir(opts.ModulePath), IconFileName)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{provider: provider, iconPath: icon, log: log}
}

// IconPath returns the overlay icon location.
func (h *Host) IconPath() string {
	return h.iconPath
}

// IsMember answers the overlay query. This runs on every directory repaint,
// so failures are logged and reported as MembershipError, never raised.
func (h *Host) IsMember(path string) ports.Membership {
	m, err := h.provider.IsWatched(path)
	if err != nil {
		h.log.Debug("overlay lookup failed", zap.String("path", path), zap.Error(err))
		return ports.MembershipError
	}
	return m
}

// OverlayInfo returns the icon the file manager paints on watched files.
func (h *Host) OverlayInfo(bufLen int) (ports.OverlayInfo, error) {
	need := len(utf16.Encode([]rune(h.iconPath))) + 1
	if bufLen > 0 && bufLen < need {
		return ports.OverlayInfo{}, fmt.Errorf("%w: need %d, have %d", ports.ErrBufferTooSmall, need, bufLen)
	}
	return ports.OverlayInfo{
		IconPath: h.iconPath,
		Index:    0,
		Flags:    ports.OverlayIconFile,
	}, nil
}

// Verbs lists the context-menu commands for path. Only video files get a menu.
func (h *Host) Verbs(path string) []ports.Verb {
	if !video.IsVideo(path) {
		return nil
	}
	out := make([]ports.Verb, len(menuVerbs))
	copy(out, menuVerbs)
	return out
}

// InvokeCommand runs a context-menu verb against path.
func (h *Host) InvokeCommand(verb, path string) error {
	var err error
	switch verb {
	case VerbMarkWatched:
		err = h.provider.MarkWatched(path)
	case VerbMarkUnwatched:
		err = h.provider.MarkUnwatched(path)
	default:
		return fmt.Errorf("%w: %q", ports.ErrUnknownVerb, verb)
	}
	if err != nil {
		h.log.Warn("context menu command failed",
			zap.String("verb", verb), zap.String("path", path),
			zap.NamedError("kind", ports.KindOf(err)), zap.Error(err))
		return err
	}
	h.log.Info("context menu command", zap.String("verb", verb), zap.String("path", path))
	return nil
}

// Property reads a property-store key for path.
func (h *Host) Property(path, key string) (bool, error) {
	if key != PropertyWatched {
		return false, fmt.Errorf("%w: %q", ports.ErrUnknownProperty, key)
	}
	m, err := h.provider.IsWatched(path)
	if err != nil {
		return false, err
	}
	return m.Watched(), nil
}
