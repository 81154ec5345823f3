package packaging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/plexsphere/hostctl/internal/fsutil"
)

// Installer handles installing and uninstalling hostctl as a systemd service.
type Installer struct {
	cfg     InstallConfig
	systemd SystemdController
	root    RootChecker
	groups  GroupManager
	logger  *slog.Logger
}

// NewInstaller creates a new Installer with defaults applied.
func NewInstaller(cfg InstallConfig, systemd SystemdController, root RootChecker, groups GroupManager, logger *slog.Logger) *Installer {
	cfg.ApplyDefaults()
	return &Installer{
		cfg:     cfg,
		systemd: systemd,
		root:    root,
		groups:  groups,
		logger:  logger.With("component", "packaging"),
	}
}

// Install installs hostctl as a systemd service.
func (ins *Installer) Install() error {
	// 1. Check root
	if !ins.root.IsRoot() {
		return errors.New("packaging: install requires root privileges")
	}

	// 2. Check systemd
	if !ins.systemd.IsAvailable() {
		return errors.New("packaging: systemd is not available")
	}

	// 3. Ensure access group
	if ins.groups.Exists(ins.cfg.AccessGroup) {
		ins.logger.Info("access group exists", "group", ins.cfg.AccessGroup)
	} else {
		if err := ins.groups.Create(ins.cfg.AccessGroup); err != nil {
			return fmt.Errorf("packaging: create group %s: %w", ins.cfg.AccessGroup, err)
		}
		ins.logger.Info("access group created", "group", ins.cfg.AccessGroup)
	}

	// 4. Create directories
	dirs := []struct {
		path string
		perm os.FileMode
	}{
		{ins.cfg.ConfigDir, 0o755},
		{ins.cfg.RunDir, 0o755},
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d.path, d.perm); err != nil {
			return fmt.Errorf("packaging: create directory %s: %w", d.path, err)
		}
		ins.logger.Info("directory created", "path", d.path, "perm", fmt.Sprintf("%04o", d.perm))
	}

	// 5. Copy binary
	if err := ins.copyBinary(); err != nil {
		return err
	}

	// 6. Write default config if absent
	configPath := filepath.Join(ins.cfg.ConfigDir, "config.yaml")
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		content, err := GenerateDefaultConfig(ins.cfg)
		if err != nil {
			return err
		}
		if err := fsutil.WriteFileAtomic(ins.cfg.ConfigDir, "config.yaml", []byte(content), 0o644); err != nil {
			return fmt.Errorf("packaging: write config: %w", err)
		}
		ins.logger.Info("default config written", "path", configPath)
	} else if err == nil {
		ins.logger.Info("existing config preserved", "path", configPath)
	} else {
		return fmt.Errorf("packaging: stat config: %w", err)
	}

	// 7. Write unit file
	unitDir := filepath.Dir(ins.cfg.UnitFilePath)
	if err := os.MkdirAll(unitDir, 0o755); err != nil {
		return fmt.Errorf("packaging: create unit file directory: %w", err)
	}
	unitContent := GenerateUnitFile(ins.cfg)
	if err := fsutil.WriteFileAtomic(unitDir, filepath.Base(ins.cfg.UnitFilePath), []byte(unitContent), 0o644); err != nil {
		return fmt.Errorf("packaging: write unit file: %w", err)
	}
	ins.logger.Info("unit file written", "path", ins.cfg.UnitFilePath)

	// 8. Daemon reload
	if err := ins.systemd.DaemonReload(); err != nil {
		return fmt.Errorf("packaging: daemon-reload: %w", err)
	}
	ins.logger.Info("systemd daemon reloaded")

	// 9. Enable if requested
	if ins.cfg.Enable {
		if err := ins.systemd.Enable(ins.cfg.ServiceName); err != nil {
			return fmt.Errorf("packaging: enable: %w", err)
		}
		ins.logger.Info("service enabled", "service", ins.cfg.ServiceName)
	}

	return nil
}

// Uninstall removes the hostctl systemd service. If purge is true, the
// config directory is also removed. The access group is left in place.
func (ins *Installer) Uninstall(purge bool) error {
	// 1. Check root
	if !ins.root.IsRoot() {
		return errors.New("packaging: uninstall requires root privileges")
	}

	// 2. Check if installed (unit file exists)
	if _, err := os.Stat(ins.cfg.UnitFilePath); errors.Is(err, os.ErrNotExist) {
		ins.logger.Info("hostctl is not installed, nothing to do")
		return nil
	}

	// 3. Stop service (ignore errors; service may not be running)
	if err := ins.systemd.Stop(ins.cfg.ServiceName); err != nil {
		ins.logger.Info("stop service", "error", err)
	}

	// 4. Disable service
	if err := ins.systemd.Disable(ins.cfg.ServiceName); err != nil {
		ins.logger.Info("disable service", "error", err)
	}

	// 5. Remove unit file
	if err := os.Remove(ins.cfg.UnitFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("packaging: remove unit file: %w", err)
	}
	ins.logger.Info("unit file removed", "path", ins.cfg.UnitFilePath)

	// 6. Daemon reload
	if err := ins.systemd.DaemonReload(); err != nil {
		return fmt.Errorf("packaging: daemon-reload: %w", err)
	}

	// 7. Remove binary
	if err := os.Remove(ins.cfg.BinaryPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("packaging: remove binary: %w", err)
	}
	ins.logger.Info("binary removed", "path", ins.cfg.BinaryPath)

	// 8. Purge directories if requested
	if purge {
		for _, dir := range []string{ins.cfg.RunDir, ins.cfg.ConfigDir} {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("packaging: remove directory %s: %w", dir, err)
			}
			ins.logger.Info("directory removed", "path", dir)
		}
	}

	return nil
}

func (ins *Installer) copyBinary() error {
	srcPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("packaging: resolve executable path: %w", err)
	}

	srcPath, err = filepath.EvalSymlinks(srcPath)
	if err != nil {
		return fmt.Errorf("packaging: resolve symlinks: %w", err)
	}

	dstPath := ins.cfg.BinaryPath

	if srcPath == dstPath {
		ins.logger.Info("binary already at install path, skipping copy", "path", dstPath)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("packaging: create binary directory: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("packaging: open source binary: %w", err)
	}
	defer src.Close()

	// Write next to the target and rename so a running binary is never
	// truncated in place.
	tmpPath := dstPath + ".new"
	dst, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("packaging: create destination binary: %w", err)
	}
	defer os.Remove(tmpPath)

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("packaging: copy binary: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("packaging: close destination binary: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		return fmt.Errorf("packaging: install binary: %w", err)
	}

	ins.logger.Info("binary installed", "src", srcPath, "dst", dstPath)
	return nil
}
