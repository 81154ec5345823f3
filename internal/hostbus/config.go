package hostbus

import (
	"errors"
	"time"
)

// Config holds the configuration for the D-Bus host client.
// Config is passed as a constructor argument; no file I/O in this package.
type Config struct {
	// CallTimeout bounds every host call and property read. The caller's
	// context deadline applies as well when it is shorter.
	// Default: 25s
	CallTimeout time.Duration `yaml:"call_timeout"`

	// SignalBuffer is the capacity of the signal delivery channel.
	// Default: 16
	SignalBuffer int `yaml:"signal_buffer"`
}

// DefaultCallTimeout matches the default D-Bus reply timeout.
const DefaultCallTimeout = 25 * time.Second

// DefaultSignalBuffer is the default signal channel capacity.
const DefaultSignalBuffer = 16

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.CallTimeout == 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.SignalBuffer == 0 {
		c.SignalBuffer = DefaultSignalBuffer
	}
}

// Validate checks that values are acceptable.
func (c *Config) Validate() error {
	if c.CallTimeout <= 0 {
		return errors.New("hostbus: config: CallTimeout must be positive")
	}
	if c.SignalBuffer <= 0 {
		return errors.New("hostbus: config: SignalBuffer must be positive")
	}
	return nil
}
