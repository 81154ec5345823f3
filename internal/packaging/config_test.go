package packaging

import (
	"testing"
)

func TestInstallConfig_ApplyDefaults(t *testing.T) {
	cfg := InstallConfig{}
	cfg.ApplyDefaults()

	want := InstallConfig{
		BinaryPath:   "/usr/local/bin/hostctl",
		ConfigDir:    "/etc/hostctl",
		RunDir:       "/run/hostctl",
		UnitFilePath: "/etc/systemd/system/hostctl.service",
		ServiceName:  "hostctl",
		AccessGroup:  "hostctl",
	}
	if cfg != want {
		t.Errorf("ApplyDefaults() = %+v, want %+v", cfg, want)
	}
}

func TestInstallConfig_CustomValues(t *testing.T) {
	cfg := InstallConfig{
		BinaryPath:   "/opt/hostctl/bin/hostctl",
		ConfigDir:    "/opt/hostctl/etc",
		RunDir:       "/opt/hostctl/run",
		UnitFilePath: "/usr/lib/systemd/system/hostctl.service",
		ServiceName:  "hostctl-custom",
		AccessGroup:  "wheel",
		Enable:       true,
	}
	want := cfg
	cfg.ApplyDefaults()

	if cfg != want {
		t.Errorf("ApplyDefaults() overwrote values: %+v, want %+v", cfg, want)
	}
}

func TestInstallConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InstallConfig)
	}{
		{"BinaryPath", func(c *InstallConfig) { c.BinaryPath = "" }},
		{"ConfigDir", func(c *InstallConfig) { c.ConfigDir = "" }},
		{"RunDir", func(c *InstallConfig) { c.RunDir = "" }},
		{"ServiceName", func(c *InstallConfig) { c.ServiceName = "" }},
		{"UnitFilePath", func(c *InstallConfig) { c.UnitFilePath = "" }},
		{"AccessGroup", func(c *InstallConfig) { c.AccessGroup = "" }},
	}

	valid := InstallConfig{}
	valid.ApplyDefaults()
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on defaults = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error for empty %s", tt.name)
			}
		})
	}
}
