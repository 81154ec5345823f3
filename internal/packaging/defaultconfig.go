package packaging

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/plexsphere/hostctl/internal/agent"
)

const defaultConfigHeader = `# hostctl configuration
# Unset values fall back to their defaults.

`

// GenerateDefaultConfig renders a complete config.yaml with every default
// spelled out. The socket path and access group follow cfg.
func GenerateDefaultConfig(cfg InstallConfig) (string, error) {
	cfg.ApplyDefaults()

	ac := agent.DefaultConfig()
	ac.NodeAPI.SocketPath = filepath.Join(cfg.RunDir, "api.sock")
	ac.NodeAPI.AccessGroup = cfg.AccessGroup

	body, err := yaml.Marshal(ac)
	if err != nil {
		return "", fmt.Errorf("packaging: marshal default config: %w", err)
	}
	return defaultConfigHeader + string(body), nil
}
