package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hostctl/internal/packaging"
)

var (
	installGroup  string
	installEnable bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install hostctl as a systemd service",
	Args:  cobra.NoArgs,
	RunE:  runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installGroup, "group", packaging.DefaultAccessGroup, "operator group allowed to use mutating API operations")
	installCmd.Flags().BoolVar(&installEnable, "enable", false, "enable the service at boot")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := packaging.InstallConfig{
		AccessGroup: installGroup,
		Enable:      installEnable,
	}

	installer := packaging.NewInstaller(cfg, packaging.NewSystemdController(), packaging.NewRootChecker(), packaging.NewGroupManager(), logger)

	if err := installer.Install(); err != nil {
		return fmt.Errorf("hostctl install: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "hostctl installed successfully")
	return nil
}
