package sysctl

import (
	"context"
	"log/slog"

	"github.com/plexsphere/hostctl/internal/hostbus"
)

// canPowerOffYes is logind's affirmative CanPowerOff reply.
const canPowerOffYes = "yes"

// prober determines host capabilities. Probe failures are logged and
// reported as "capability absent", never as errors.
type prober struct {
	client hostbus.Client
	logger *slog.Logger
}

func newProber(client hostbus.Client, logger *slog.Logger) *prober {
	return &prober{client: client, logger: logger}
}

// probePowerControl reports whether logind answers CanPowerOff with "yes".
func (p *prober) probePowerControl(ctx context.Context) bool {
	body, err := p.client.Call(ctx, hostbus.Login1, "CanPowerOff")
	if err != nil {
		p.logger.Warn("dbus call to logind failed",
			"error_name", hostbus.ErrorName(err),
			"error", hostbus.ErrorMessage(err),
		)
		return false
	}
	if len(body) == 0 {
		p.logger.Warn("logind CanPowerOff returned no value")
		return false
	}
	answer, ok := body[0].(string)
	if !ok {
		p.logger.Warn("logind CanPowerOff returned unexpected type", "type", typeName(body[0]))
		return false
	}
	if answer != canPowerOffYes {
		p.logger.Info("power control not permitted", "can_power_off", answer)
		return false
	}
	return true
}

// probeTimeControl pings timedated.
func (p *prober) probeTimeControl(ctx context.Context) bool {
	if _, err := p.client.Call(ctx, hostbus.Timedate1Peer, "Ping"); err != nil {
		p.logger.Warn("dbus call to timedated failed",
			"error_name", hostbus.ErrorName(err),
			"error", hostbus.ErrorMessage(err),
		)
		return false
	}
	return true
}

// subscribeTimeChanges registers fn for property changes of timedated.
// A failed subscription is logged and yields a nil Subscription.
func (p *prober) subscribeTimeChanges(fn hostbus.PropertiesChangedFunc) hostbus.Subscription {
	sub, err := p.client.SubscribePropertiesChanged(hostbus.Timedate1, fn)
	if err != nil {
		p.logger.Warn("failed to subscribe to timedated property changes", "error", err)
		return nil
	}
	return sub
}
