package sysctl

import (
	"context"
	"log/slog"
	"time"

	"github.com/plexsphere/hostctl/internal/hostbus"
)

// LogindController controls power through logind only. It is used on hosts
// without timedated; time operations return ErrUnsupported.
type LogindController struct {
	*base
}

var _ SystemController = (*LogindController)(nil)

// NewLogindController probes logind for power control.
func NewLogindController(ctx context.Context, client hostbus.Client, cfg Config, logger *slog.Logger) *LogindController {
	b := newBase(BackendLogind, client, cfg, logger)
	b.caps.PowerControl = newProber(client, b.logger).probePowerControl(ctx)

	b.logger.Info("system controller ready", "power_control", b.caps.PowerControl)
	return &LogindController{base: b}
}

func (c *LogindController) SetTime(context.Context, time.Time) error {
	return c.unsupported()
}

func (c *LogindController) SetTimeZone(context.Context, string) error {
	return c.unsupported()
}

func (c *LogindController) SetAutomaticTime(context.Context, bool) error {
	return c.unsupported()
}

func (c *LogindController) AutomaticTimeAvailable(context.Context) (bool, error) {
	return false, c.unsupported()
}

func (c *LogindController) AutomaticTime(context.Context) (bool, error) {
	return false, c.unsupported()
}

func (c *LogindController) unsupported() error {
	if c.closed.Load() {
		return ErrClosed
	}
	return ErrUnsupported
}
