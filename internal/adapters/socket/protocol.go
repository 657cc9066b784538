// Package socket implements a JSON-over-Unix-socket protocol for the
// lastwatched provider host. File-manager shims (icon overlay, context menu,
// property store) forward their host's calls here instead of linking the store.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corey/lastwatched/internal/ports"
)

// SocketPath returns the default socket path for a lastwatched directory.
// Format: <tmp>/lastwatched-{first12hex}.sock
func SocketPath(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	h := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), fmt.Sprintf("lastwatched-%x.sock", h[:6]))
}

// Method names for the protocol.
const (
	MethodIsMember    = "is_member"
	MethodOverlayInfo = "overlay_info"
	MethodVerbs       = "verbs"
	MethodInvoke      = "invoke"
	MethodProperty    = "property"
	MethodHealth      = "health"
	MethodShutdown    = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages. Code carries the
// error kind so clients can match it with errors.Is.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Code   string      `json:"code,omitempty"`
}

// PathParams addresses one file.
type PathParams struct {
	Path string `json:"path"`
}

// IsMemberResult is the overlay answer: "member", "not_member" or "error".
type IsMemberResult struct {
	Membership string `json:"membership"`
}

// OverlayInfoParams carries the caller's icon buffer capacity (UTF-16 units).
type OverlayInfoParams struct {
	BufLen int `json:"buf_len"`
}

// VerbsResult lists context-menu commands.
type VerbsResult struct {
	Verbs []ports.Verb `json:"verbs"`
}

// InvokeParams runs one context-menu verb.
type InvokeParams struct {
	Verb string `json:"verb"`
	Path string `json:"path"`
}

// PropertyParams reads one property-store key.
type PropertyParams struct {
	Path string `json:"path"`
	Key  string `json:"key"`
}

// PropertyResult is a boolean property value.
type PropertyResult struct {
	Value bool `json:"value"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Icon   string `json:"icon"`
}

// Error codes on the wire, one per error kind.
var codes = []struct {
	code string
	err  error
}{
	{"invalid_path", ports.ErrInvalidPath},
	{"unsupported_extension", ports.ErrUnsupportedExtension},
	{"store_not_found", ports.ErrStoreNotFound},
	{"not_found", ports.ErrNotFound},
	{"permission_denied", ports.ErrPermission},
	{"encoding", ports.ErrEncoding},
	{"lock_timeout", ports.ErrLockTimeout},
	{"io", ports.ErrIO},
	{"unknown_verb", ports.ErrUnknownVerb},
	{"unknown_property", ports.ErrUnknownProperty},
	{"buffer_too_small", ports.ErrBufferTooSmall},
}

// codeOf returns the wire code for err, or "" if it has no known kind.
func codeOf(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// kindOf returns the sentinel for a wire code, or nil.
func kindOf(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}

// RemoteError is an error reported by the server.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return "server error: " + e.Message
}

// Is matches the sentinel kind the server reported.
func (e *RemoteError) Is(target error) bool {
	k := kindOf(e.Code)
	return k != nil && k == target
}
