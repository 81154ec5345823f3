package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hostctl/internal/nodeapi"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show host control capabilities",
	Long:  "Connect to the local daemon via Unix socket and display the backend, probed capabilities and NTP state.",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var caps nodeapi.CapabilitiesResponse
	if err := socketDo(ctx, socketPath, http.MethodGet, "/v1/capabilities", nil, &caps); err != nil {
		return fmt.Errorf("hostctl status: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Backend:           %s\n", caps.Backend)
	fmt.Fprintf(w, "Power control:     %s\n", yesNo(caps.PowerControl))
	fmt.Fprintf(w, "Time control:      %s\n", yesNo(caps.TimeControl))
	fmt.Fprintf(w, "Time zone control: %s\n", yesNo(caps.TimeZoneControl))

	var ntp nodeapi.NTPStatus
	if err := socketDo(ctx, socketPath, http.MethodGet, "/v1/time/ntp", nil, &ntp); err != nil {
		fmt.Fprintf(w, "NTP:               unknown (%v)\n", err)
		return nil
	}
	fmt.Fprintf(w, "NTP available:     %s\n", yesNo(ntp.Available))
	fmt.Fprintf(w, "NTP enabled:       %s\n", yesNo(ntp.Enabled))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
