package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plexsphere/hostctl/internal/hostbus"
	"github.com/plexsphere/hostctl/internal/nodeapi"
	"github.com/plexsphere/hostctl/internal/sysctl"
)

const (
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultConfigPath is the default configuration file path.
	DefaultConfigPath = "/etc/hostctl/config.yaml"
)

// Config is the top-level configuration for the hostctl daemon.
// It aggregates all subsystem configurations and is populated from
// a YAML configuration file via ParseConfig.
type Config struct {
	// LogLevel is the log level: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	HostBus    hostbus.Config `yaml:"host_bus"`
	Controller sysctl.Config  `yaml:"controller"`
	NodeAPI    nodeapi.Config `yaml:"node_api"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.HostBus.ApplyDefaults()
	c.Controller.ApplyDefaults()
	c.NodeAPI.ApplyDefaults()
}

// Validate checks that required fields are set and values are acceptable.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("agent: config: invalid log_level %q", c.LogLevel)
	}
	if err := c.HostBus.Validate(); err != nil {
		return err
	}
	if err := c.Controller.Validate(); err != nil {
		return err
	}
	if err := c.NodeAPI.Validate(); err != nil {
		return err
	}
	return nil
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ParseConfig reads a YAML configuration file and returns a Config.
// It applies defaults and validates the configuration. Read errors wrap
// the underlying error so callers can test for fs.ErrNotExist.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agent: config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("agent: config: parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
