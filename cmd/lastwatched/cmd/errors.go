package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/corey/lastwatched/internal/adapters/socket"
	"github.com/corey/lastwatched/internal/domain/video"
	"github.com/corey/lastwatched/internal/ports"
)

// Describe turns an error into the message shown to the user, adding
// guidance for the kinds a user can act on.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case errors.Is(err, ports.ErrUnsupportedExtension):
		return msg + "\n  → supported: " + strings.Join(video.Extensions(), ", ")
	case errors.Is(err, ports.ErrInvalidPath):
		return msg + "\n  → pass a path to a video file, e.g. ./show.mkv"
	case errors.Is(err, ports.ErrEncoding):
		return msg + "\n  → the .watched file is corrupt; fix or delete it"
	case errors.Is(err, ports.ErrPermission):
		return msg + "\n  → check write access to the video's directory"
	case errors.Is(err, ports.ErrLockTimeout):
		return msg + "\n" + diagnoseLock()
	}
	return msg
}

// diagnoseLock explains who may be holding a ledger lock. It distinguishes
// three scenarios: provider host running, stale socket, and unknown holder.
func diagnoseLock() string {
	if cfg == nil {
		return "  → another lastwatched process holds the ledger; retry shortly"
	}
	sockPath := socketPath()
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return "  → the provider host is busy with this directory; retry shortly\n" +
			"  → if it persists, restart it:  lastwatched daemon stop"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("  → provider host socket exists but is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'lastwatched daemon'\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "  → another process holds the ledger\n" +
		"  → find it:  ps aux | grep 'lastwatched'"
}
