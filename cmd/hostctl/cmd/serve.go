package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"github.com/plexsphere/hostctl/internal/agent"
	"github.com/plexsphere/hostctl/internal/hostbus"
	"github.com/plexsphere/hostctl/internal/nodeapi"
	"github.com/plexsphere/hostctl/internal/sysctl"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hostctl daemon",
	Long: "Connect to the system bus, probe host capabilities and serve the\n" +
		"host control API on a Unix socket until SIGTERM or SIGINT.",
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, fromFile, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("hostctl serve: %w", err)
	}

	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting hostctl",
		"version", buildVersion,
		"config", cfgFile,
		"config_found", fromFile,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	client, err := hostbus.Dial(cfg.HostBus, logger)
	if err != nil {
		return fmt.Errorf("hostctl serve: %w", err)
	}
	defer client.Close()

	ctrl, err := sysctl.New(ctx, client, cfg.Controller, logger)
	if err != nil {
		return fmt.Errorf("hostctl serve: %w", err)
	}
	defer ctrl.Close()

	caps := ctrl.Capabilities()
	logger.Info("host capabilities",
		"backend", ctrl.Backend(),
		"power_control", caps.PowerControl,
		"time_control", caps.TimeControl,
	)

	srv := nodeapi.NewServer(cfg.NodeAPI, ctrl, logger)
	srv.SetOnReady(func() {
		notifySystemd(logger, daemon.SdNotifyReady)
	})

	err = srv.Start(ctx)
	notifySystemd(logger, daemon.SdNotifyStopping)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("hostctl serve: %w", err)
	}

	logger.Info("hostctl stopped")
	return nil
}

// loadConfig reads the config file. A missing file yields the defaults.
// Flag overrides are applied after parsing.
func loadConfig(cmd *cobra.Command) (*agent.Config, bool, error) {
	cfg, err := agent.ParseConfig(cfgFile)
	fromFile := true
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = agent.DefaultConfig(), nil
		fromFile = false
	}
	if err != nil {
		return nil, false, err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("socket") {
		cfg.NodeAPI.SocketPath = socketPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, fromFile, nil
}

// notifySystemd sends state to the service manager. It is a no-op when
// not running under systemd.
func notifySystemd(logger *slog.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logger.Warn("sd_notify failed", "state", state, "error", err)
		return
	}
	if sent {
		logger.Debug("sd_notify sent", "state", state)
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
