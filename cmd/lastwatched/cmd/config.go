package cmd

import (
	"fmt"

	"github.com/corey/lastwatched/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var configWrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the config file, socket path, lock timeouts, and provider host status. No daemon required.",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configWrite, "write", false, "write the effective configuration to the config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	sockPath := socketPath()

	if configWrite {
		if err := cfg.Save(cfgPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", cfgPath)
	}

	client := socket.NewClient(sockPath)
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if client.Ping() {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}

	icon := cfg.Icon
	if icon == "" {
		icon = "(beside the executable)"
	}

	fmt.Fprintf(out, "%slastwatched config%s\n", colorBold, colorReset)
	fmt.Fprintf(out, "  Config:     %s\n", cfgPath)
	fmt.Fprintf(out, "  Socket:     %s\n", sockPath)
	fmt.Fprintf(out, "  Icon:       %s\n", icon)
	fmt.Fprintf(out, "  Lock:       read %s, write %s\n", cfg.Lock.ReadTimeout, cfg.Lock.WriteTimeout)
	fmt.Fprintf(out, "  Log level:  %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  Daemon:     %s\n", daemonStatus)
	return nil
}
