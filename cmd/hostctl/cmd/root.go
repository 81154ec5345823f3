// Package cmd implements the hostctl CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hostctl/internal/agent"
	"github.com/plexsphere/hostctl/internal/nodeapi"
)

var (
	cfgFile    string
	logLevel   string
	socketPath string
)

// Build info set from main.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo sets the version info from build-time ldflags.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("hostctl version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "hostctl",
	Short: "hostctl controls host power and time configuration",
	Long: "hostctl reboots, shuts down and restarts the host service, and manages the\n" +
		"system clock, time zone and NTP synchronization through systemd-logind and\n" +
		"systemd-timedated. Run \"hostctl serve\" as the daemon; the other commands\n" +
		"talk to it over its Unix socket.",
	SilenceUsage: true,
	// No Run function; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", agent.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides config")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", nodeapi.DefaultSocketPath, "API socket path")

	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("hostctl version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
