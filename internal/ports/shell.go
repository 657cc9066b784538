package ports

import "errors"

var (
	ErrUnknownVerb     = errors.New("unknown command verb")
	ErrUnknownProperty = errors.New("unknown property")
	ErrBufferTooSmall  = errors.New("icon path does not fit caller buffer")
)

// Overlay flags reported with OverlayInfo.
const (
	OverlayIconFile  = 0x1 // IconPath is valid
	OverlayIconIndex = 0x2 // Index is valid
)

// OverlayInfo tells the file manager which icon to paint over watched files.
type OverlayInfo struct {
	IconPath string `json:"icon_path"`
	Index    int    `json:"index"`
	Flags    uint32 `json:"flags"`
}

// Verb is one context-menu command.
type Verb struct {
	Name     string `json:"name"`
	HelpText string `json:"help_text"`
}

// ShellHost is what the file-manager integrations (icon overlay, context
// menu, property store) call. Each host-specific binding is a thin translator
// onto these methods.
type ShellHost interface {
	// IsMember answers the overlay query. Never fails: I/O errors come back
	// as MembershipError and are otherwise swallowed.
	IsMember(path string) Membership

	// OverlayInfo returns the overlay icon. bufLen is the caller's buffer
	// capacity in UTF-16 code units including the terminator; zero skips the
	// check. Fails with ErrBufferTooSmall if the icon path does not fit.
	OverlayInfo(bufLen int) (OverlayInfo, error)

	// Verbs lists the context-menu commands offered for path. Non-video
	// files get none.
	Verbs(path string) []Verb

	// InvokeCommand runs a context-menu verb against path.
	InvokeCommand(verb, path string) error

	// Property reads a property-store key for path.
	Property(path, key string) (bool, error)
}
