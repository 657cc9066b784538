package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/lastwatched/internal/adapters/socket"
	"github.com/corey/lastwatched/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// formatMembership renders one status line.
//
//	✓ watched      show.mkv
//	○ not watched  ep2.mkv
//	✗ error        ep3.mkv  (ledger is not valid UTF-8)
func formatMembership(path string, m ports.Membership, err error) string {
	switch m {
	case ports.Member:
		return fmt.Sprintf("%s✓ watched%s      %s", colorGreen, colorReset, path)
	case ports.NotMember:
		return fmt.Sprintf("%s○ not watched%s  %s", colorGray, colorReset, path)
	default:
		line := fmt.Sprintf("%s✗ error%s        %s", colorRed, colorReset, path)
		if err != nil {
			line += fmt.Sprintf("  %s(%v)%s", colorGray, err, colorReset)
		}
		return line
	}
}

// formatList renders a directory's ledger entries.
func formatList(dir string, names []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s%d watched%s │ %s%s%s\n",
		colorBold, len(names), colorReset, colorCyan, dir, colorReset))
	for _, n := range names {
		sb.WriteString("  " + n + "\n")
	}
	return sb.String()
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%slastwatched provider host%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:  %s%s%s\n", colorGreen, h.Status, colorReset))
	sb.WriteString(fmt.Sprintf("  Icon:    %s\n", h.Icon))
	sb.WriteString(fmt.Sprintf("  Uptime:  %s\n", h.Uptime))
	return sb.String()
}
