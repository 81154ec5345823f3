package sysctl

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLogindController(t *testing.T) {
	f := hostWithPowerAndTime()
	c := NewLogindController(context.Background(), f, Config{}, testLogger())
	defer c.Close()

	if c.Backend() != BackendLogind {
		t.Errorf("Backend() = %q, want %q", c.Backend(), BackendLogind)
	}
	if !c.PowerManagementAvailable() {
		t.Error("PowerManagementAvailable() = false, want true")
	}
	if c.TimeManagementAvailable() || c.TimeZoneManagementAvailable() {
		t.Error("time management reported available on logind backend")
	}
	if len(f.subscriptions()) != 0 {
		t.Errorf("subscriptions = %d, want 0", len(f.subscriptions()))
	}
	if n := len(f.callsTo("org.freedesktop.DBus.Peer.Ping")); n != 0 {
		t.Errorf("Ping calls = %d, want 0", n)
	}

	ctx := context.Background()
	if err := c.Reboot(ctx); err != nil {
		t.Errorf("Reboot() = %v, want nil", err)
	}
	if err := c.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}

	for name, err := range map[string]error{
		"SetTime":          c.SetTime(ctx, time.Now()),
		"SetTimeZone":      c.SetTimeZone(ctx, "UTC"),
		"SetAutomaticTime": c.SetAutomaticTime(ctx, true),
	} {
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s() = %v, want ErrUnsupported", name, err)
		}
	}
	if v, err := c.AutomaticTime(ctx); v || !errors.Is(err, ErrUnsupported) {
		t.Errorf("AutomaticTime() = %v, %v; want false, ErrUnsupported", v, err)
	}
	if v, err := c.AutomaticTimeAvailable(ctx); v || !errors.Is(err, ErrUnsupported) {
		t.Errorf("AutomaticTimeAvailable() = %v, %v; want false, ErrUnsupported", v, err)
	}
	if n := len(f.callsTo("org.freedesktop.timedate1.SetTime")); n != 0 {
		t.Errorf("SetTime calls = %d, want 0", n)
	}
}

func TestLogindController_PowerFailure(t *testing.T) {
	f := newFakeClient()
	f.replies["org.freedesktop.login1.Manager.CanPowerOff"] = []any{"challenge"}
	f.errs["org.freedesktop.login1.Manager.PowerOff"] = accessDenied
	c := NewLogindController(context.Background(), f, Config{}, testLogger())
	defer c.Close()

	if c.PowerManagementAvailable() {
		t.Error("PowerManagementAvailable() = true, want false for challenge")
	}
	var hcErr *HostCallError
	if err := c.Shutdown(context.Background()); !errors.As(err, &hcErr) || hcErr.Op != "shutdown" {
		t.Errorf("Shutdown() = %v, want HostCallError", err)
	}
}

func TestLogindController_Closed(t *testing.T) {
	c := NewLogindController(context.Background(), hostWithPowerAndTime(), Config{}, testLogger())
	c.Close()
	if err := c.SetTimeZone(context.Background(), "UTC"); !errors.Is(err, ErrClosed) {
		t.Errorf("SetTimeZone() after Close = %v, want ErrClosed", err)
	}
	if err := c.Shutdown(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Shutdown() after Close = %v, want ErrClosed", err)
	}
}
