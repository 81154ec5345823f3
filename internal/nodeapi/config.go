package nodeapi

import (
	"errors"
	"time"
)

// Config holds the configuration for the local host control API server.
// Config is passed as a constructor argument; no file I/O in this package.
type Config struct {
	// SocketPath is the path to the Unix domain socket.
	// Default: /run/hostctl/api.sock
	SocketPath string `yaml:"socket_path"`

	// AccessGroup owns the socket and may invoke mutating operations
	// (root always may).
	// Default: hostctl
	AccessGroup string `yaml:"access_group"`

	// HTTPEnabled enables the optional HTTP listener.
	// Default: false
	HTTPEnabled bool `yaml:"http_enabled"`

	// HTTPListen is the HTTP listen address.
	// Default: 127.0.0.1:9110
	HTTPListen string `yaml:"http_listen"`

	// HTTPTokenFile is the path to the HTTP bearer token file.
	HTTPTokenFile string `yaml:"http_token_file"`

	// EventBuffer is the number of undelivered change events kept per
	// event stream subscriber.
	// Default: 16
	EventBuffer int `yaml:"event_buffer"`

	// ShutdownTimeout is the maximum time to wait for a graceful shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultSocketPath is the default Unix domain socket path.
const DefaultSocketPath = "/run/hostctl/api.sock"

// DefaultAccessGroup is the default operator group.
const DefaultAccessGroup = "hostctl"

// DefaultHTTPListen is the default HTTP listen address.
const DefaultHTTPListen = "127.0.0.1:9110"

// DefaultEventBuffer is the default per-subscriber event buffer.
const DefaultEventBuffer = 16

// DefaultShutdownTimeout is the default graceful shutdown timeout.
const DefaultShutdownTimeout = 5 * time.Second

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.SocketPath == "" {
		c.SocketPath = DefaultSocketPath
	}
	if c.AccessGroup == "" {
		c.AccessGroup = DefaultAccessGroup
	}
	if c.HTTPListen == "" {
		c.HTTPListen = DefaultHTTPListen
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = DefaultEventBuffer
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Validate checks that required fields are set and values are acceptable.
func (c *Config) Validate() error {
	if c.SocketPath == "" {
		return errors.New("nodeapi: config: SocketPath is required")
	}
	if c.AccessGroup == "" {
		return errors.New("nodeapi: config: AccessGroup is required")
	}
	if c.HTTPEnabled && c.HTTPTokenFile == "" {
		return errors.New("nodeapi: config: HTTPTokenFile is required when HTTPEnabled is set")
	}
	if c.EventBuffer <= 0 {
		return errors.New("nodeapi: config: EventBuffer must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("nodeapi: config: ShutdownTimeout must be positive")
	}
	return nil
}
