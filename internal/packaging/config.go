// Package packaging installs hostctl as a systemd service on Linux hosts.
package packaging

import (
	"errors"
)

// InstallConfig holds the configuration for installing hostctl as a systemd service.
// InstallConfig is passed as a constructor argument; no file I/O in this package.
type InstallConfig struct {
	// BinaryPath is the path to install the hostctl binary.
	// Default: /usr/local/bin/hostctl
	BinaryPath string

	// ConfigDir is the configuration directory.
	// Default: /etc/hostctl
	ConfigDir string

	// RunDir is the runtime directory holding the API socket.
	// Default: /run/hostctl
	RunDir string

	// UnitFilePath is the path for the systemd unit file.
	// Default: /etc/systemd/system/hostctl.service
	UnitFilePath string

	// ServiceName is the systemd service name.
	// Default: hostctl
	ServiceName string

	// AccessGroup is the system group allowed to invoke mutating API
	// operations. It is created on install when missing.
	// Default: hostctl
	AccessGroup string

	// Enable enables the service at boot after installing it.
	Enable bool
}

// DefaultBinaryPath is the default path to install the hostctl binary.
const DefaultBinaryPath = "/usr/local/bin/hostctl"

// DefaultConfigDir is the default configuration directory.
const DefaultConfigDir = "/etc/hostctl"

// DefaultRunDir is the default runtime directory.
const DefaultRunDir = "/run/hostctl"

// DefaultServiceName is the default systemd service name.
const DefaultServiceName = "hostctl"

// DefaultUnitFilePath is the default path for the systemd unit file.
const DefaultUnitFilePath = "/etc/systemd/system/hostctl.service"

// DefaultAccessGroup is the default operator group.
const DefaultAccessGroup = "hostctl"

// ApplyDefaults sets default values for zero-valued fields.
func (c *InstallConfig) ApplyDefaults() {
	if c.BinaryPath == "" {
		c.BinaryPath = DefaultBinaryPath
	}
	if c.ConfigDir == "" {
		c.ConfigDir = DefaultConfigDir
	}
	if c.RunDir == "" {
		c.RunDir = DefaultRunDir
	}
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.UnitFilePath == "" {
		c.UnitFilePath = DefaultUnitFilePath
	}
	if c.AccessGroup == "" {
		c.AccessGroup = DefaultAccessGroup
	}
}

// Validate checks that required fields are set.
func (c *InstallConfig) Validate() error {
	if c.BinaryPath == "" {
		return errors.New("packaging: config: BinaryPath is required")
	}
	if c.ConfigDir == "" {
		return errors.New("packaging: config: ConfigDir is required")
	}
	if c.RunDir == "" {
		return errors.New("packaging: config: RunDir is required")
	}
	if c.ServiceName == "" {
		return errors.New("packaging: config: ServiceName is required")
	}
	if c.UnitFilePath == "" {
		return errors.New("packaging: config: UnitFilePath is required")
	}
	if c.AccessGroup == "" {
		return errors.New("packaging: config: AccessGroup is required")
	}
	return nil
}
