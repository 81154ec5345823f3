package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the host",
	Args:  cobra.NoArgs,
	RunE:  powerAction("reboot", "/v1/power/reboot", "reboot requested"),
}

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Power off the host",
	Args:  cobra.NoArgs,
	RunE:  powerAction("shutdown", "/v1/power/shutdown", "shutdown requested"),
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the hostctl service",
	Long:  "Ask the daemon to restart the systemd unit it runs in.",
	Args:  cobra.NoArgs,
	RunE:  powerAction("restart", "/v1/service/restart", "restart requested"),
}

func init() {
	rootCmd.AddCommand(rebootCmd)
	rootCmd.AddCommand(shutdownCmd)
	rootCmd.AddCommand(restartCmd)
}

func powerAction(name, path, done string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := socketDo(cmd.Context(), socketPath, http.MethodPost, path, nil, nil); err != nil {
			return fmt.Errorf("hostctl %s: %w", name, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), done)
		return nil
	}
}
