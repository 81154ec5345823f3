package sysctl

import (
	"errors"
	"fmt"
	"time"
)

// Backend names accepted by Config.Backend.
const (
	BackendAuto    = "auto"
	BackendSystemd = "systemd"
	BackendLogind  = "logind"
)

// Config holds the configuration for the system controller.
// Config is passed as a constructor argument; no file I/O in this package.
type Config struct {
	// Backend selects the controller implementation: "systemd", "auto" or "logind".
	// With "auto" the systemd controller is used when timedated is reachable,
	// otherwise the logind controller, whose time operations are unsupported.
	// Default: systemd
	Backend string `yaml:"backend"`

	// NTPSettleDelay is the delay before the second change notification
	// after enabling automatic time.
	// Default: 2s
	NTPSettleDelay time.Duration `yaml:"ntp_settle_delay"`

	// EnforceCapabilities rejects power and time operations whose capability
	// flag was probed false, without attempting a host call.
	// Default: false
	EnforceCapabilities bool `yaml:"enforce_capabilities"`

	// StrictRestart reports host-side Restart failures to the caller instead
	// of logging them and reporting success.
	// Default: false
	StrictRestart bool `yaml:"strict_restart"`

	// UnitName is the systemd unit restarted by Restart. When empty the unit
	// is resolved from the process ID.
	UnitName string `yaml:"unit_name"`
}

// DefaultNTPSettleDelay is the default delay of the second NTP notification.
const DefaultNTPSettleDelay = 2 * time.Second

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendSystemd
	}
	if c.NTPSettleDelay == 0 {
		c.NTPSettleDelay = DefaultNTPSettleDelay
	}
}

// Validate checks that values are acceptable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendSystemd, BackendLogind:
	default:
		return fmt.Errorf("sysctl: config: invalid backend %q (must be %q, %q or %q)",
			c.Backend, BackendAuto, BackendSystemd, BackendLogind)
	}
	if c.NTPSettleDelay < 0 {
		return errors.New("sysctl: config: NTPSettleDelay must not be negative")
	}
	return nil
}
