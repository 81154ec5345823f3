package sysctl

import (
	"context"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/plexsphere/hostctl/internal/hostbus"
)

// SystemdController controls power through logind and time through timedated.
type SystemdController struct {
	*base
}

var _ SystemController = (*SystemdController)(nil)

// NewSystemdController probes logind and timedated and subscribes to
// timedated property changes. Probe failures never fail construction: the
// controller then reports the corresponding capability as absent.
func NewSystemdController(ctx context.Context, client hostbus.Client, cfg Config, logger *slog.Logger) *SystemdController {
	return newSystemdController(ctx, client, cfg, logger, nil)
}

// newSystemdController skips the timedated probe when timeControl carries a
// result the caller already obtained.
func newSystemdController(ctx context.Context, client hostbus.Client, cfg Config, logger *slog.Logger, timeControl *bool) *SystemdController {
	b := newBase(BackendSystemd, client, cfg, logger)
	p := newProber(client, b.logger)

	b.caps.PowerControl = p.probePowerControl(ctx)
	if timeControl != nil {
		b.caps.TimeControl = *timeControl
	} else {
		b.caps.TimeControl = p.probeTimeControl(ctx)
	}

	c := &SystemdController{base: b}
	b.sub = p.subscribeTimeChanges(c.onTimePropertiesChanged)

	b.logger.Info("system controller ready",
		"power_control", b.caps.PowerControl,
		"time_control", b.caps.TimeControl,
	)
	return c
}

// onTimePropertiesChanged ignores the payload; every signal is one notification.
func (c *SystemdController) onTimePropertiesChanged(iface string, changed map[string]dbus.Variant, invalidated []string) {
	if c.closed.Load() {
		return
	}
	c.logger.Debug("timedated properties changed",
		"interface", iface,
		"changed", len(changed),
		"invalidated", len(invalidated),
	)
	c.notify.emit()
}

func (c *SystemdController) SetTime(ctx context.Context, t time.Time) error {
	if err := c.guard(c.caps.TimeControl); err != nil {
		return err
	}
	return c.dispatch.setTime(ctx, t)
}

func (c *SystemdController) SetTimeZone(ctx context.Context, zone string) error {
	if err := c.guard(c.caps.TimeControl); err != nil {
		return err
	}
	return c.dispatch.setTimeZone(ctx, zone)
}

func (c *SystemdController) SetAutomaticTime(ctx context.Context, enabled bool) error {
	if err := c.guard(c.caps.TimeControl); err != nil {
		return err
	}
	return c.dispatch.setAutomaticTime(ctx, enabled)
}

func (c *SystemdController) AutomaticTimeAvailable(ctx context.Context) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}
	return c.dispatch.boolProperty(ctx, "automatic time available", "CanNTP")
}

func (c *SystemdController) AutomaticTime(ctx context.Context) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}
	return c.dispatch.boolProperty(ctx, "automatic time", "NTP")
}
