package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hostctl/internal/nodeapi"
)

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Manage the system clock",
}

var timeSetCmd = &cobra.Command{
	Use:   "set <RFC3339 time>",
	Short: "Set the system clock",
	Long:  "Set the system clock to an absolute time, e.g. 2024-01-01T00:00:00Z.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimeSet,
}

var timezoneCmd = &cobra.Command{
	Use:   "timezone",
	Short: "Manage the system time zone",
}

var timezoneSetCmd = &cobra.Command{
	Use:   "set <zone>",
	Short: "Set the system time zone",
	Long:  "Set the system time zone to an IANA zone name, e.g. Europe/Berlin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimezoneSet,
}

var ntpCmd = &cobra.Command{
	Use:   "ntp",
	Short: "Manage automatic time synchronization",
}

var ntpEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable NTP synchronization",
	Args:  cobra.NoArgs,
	RunE:  ntpSetter(true),
}

var ntpDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable NTP synchronization",
	Args:  cobra.NoArgs,
	RunE:  ntpSetter(false),
}

var ntpStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show NTP availability and state",
	Args:  cobra.NoArgs,
	RunE:  runNTPStatus,
}

func init() {
	timeCmd.AddCommand(timeSetCmd)
	timezoneCmd.AddCommand(timezoneSetCmd)
	ntpCmd.AddCommand(ntpEnableCmd, ntpDisableCmd, ntpStatusCmd)
	rootCmd.AddCommand(timeCmd, timezoneCmd, ntpCmd)
}

func runTimeSet(cmd *cobra.Command, args []string) error {
	t, err := time.Parse(time.RFC3339Nano, args[0])
	if err != nil {
		return fmt.Errorf("hostctl time set: invalid time %q: %w", args[0], err)
	}
	req := nodeapi.SetTimeRequest{Time: &t}
	if err := socketDo(cmd.Context(), socketPath, http.MethodPut, "/v1/time", req, nil); err != nil {
		return fmt.Errorf("hostctl time set: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "system time set to %s\n", t.Format(time.RFC3339))
	return nil
}

func runTimezoneSet(cmd *cobra.Command, args []string) error {
	req := nodeapi.SetTimeZoneRequest{Zone: args[0]}
	if err := socketDo(cmd.Context(), socketPath, http.MethodPut, "/v1/time/zone", req, nil); err != nil {
		return fmt.Errorf("hostctl timezone set: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "time zone set to %s\n", args[0])
	return nil
}

func ntpSetter(enabled bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		req := nodeapi.SetNTPRequest{Enabled: &enabled}
		if err := socketDo(cmd.Context(), socketPath, http.MethodPut, "/v1/time/ntp", req, nil); err != nil {
			return fmt.Errorf("hostctl ntp: %w", err)
		}
		if enabled {
			fmt.Fprintln(cmd.OutOrStdout(), "NTP synchronization enabled")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "NTP synchronization disabled")
		}
		return nil
	}
}

func runNTPStatus(cmd *cobra.Command, _ []string) error {
	var status nodeapi.NTPStatus
	if err := socketDo(cmd.Context(), socketPath, http.MethodGet, "/v1/time/ntp", nil, &status); err != nil {
		return fmt.Errorf("hostctl ntp status: %w", err)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Available: %s\n", yesNo(status.Available))
	fmt.Fprintf(w, "Enabled:   %s\n", yesNo(status.Enabled))
	return nil
}
