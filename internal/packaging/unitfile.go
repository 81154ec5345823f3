package packaging

import (
	"fmt"
	"path/filepath"
)

// GenerateUnitFile produces a complete systemd unit file for the hostctl service.
// It calls cfg.ApplyDefaults() to fill in zero-valued fields before generating the output.
// The daemon runs as root; logind and timedated authorize it through polkit.
func GenerateUnitFile(cfg InstallConfig) string {
	cfg.ApplyDefaults()

	configPath := filepath.Join(cfg.ConfigDir, "config.yaml")
	envPath := filepath.Join(cfg.ConfigDir, "environment")

	return fmt.Sprintf(`[Unit]
Description=hostctl host power and time control
After=dbus.service systemd-logind.service
Wants=dbus.service
StartLimitBurst=5
StartLimitIntervalSec=60

[Service]
Type=notify
NotifyAccess=main
ExecStart=%s serve --config %s
Restart=always
RestartSec=5s
EnvironmentFile=-%s
ProtectSystem=full
ProtectHome=true
PrivateTmp=true
ReadWritePaths=%s

[Install]
WantedBy=multi-user.target
`, cfg.BinaryPath, configPath, envPath, cfg.RunDir)
}
