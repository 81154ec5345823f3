package cmd

import (
	"bytes"
	"strings"
	"testing"
)

// execute runs rootCmd with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if f := rootCmd.Flags().Lookup("version"); f != nil {
		_ = f.Value.Set("false")
		f.Changed = false
	}
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	output, _ := execute(t)

	if !strings.Contains(output, "hostctl") {
		t.Errorf("help output should contain 'hostctl', got: %s", output)
	}
	for _, sub := range []string{"serve", "status", "reboot", "shutdown", "restart", "time", "timezone", "ntp", "events", "install", "uninstall"} {
		if !strings.Contains(output, sub) {
			t.Errorf("help output should list %q, got: %s", sub, output)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2025-01-01")

	output, _ := execute(t, "--version")

	for _, want := range []string{"hostctl version 1.2.3", "abc123", "2025-01-01"} {
		if !strings.Contains(output, want) {
			t.Errorf("version output should contain %q, got: %s", want, output)
		}
	}
}

func TestRootCommand_UnknownSubcommand(t *testing.T) {
	output, err := execute(t, "nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
	if !strings.Contains(output, "hostctl") {
		t.Errorf("output for unknown subcommand should contain 'hostctl', got: %s", output)
	}
}
