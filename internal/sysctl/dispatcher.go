package sysctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	sdbus "github.com/coreos/go-systemd/v22/dbus"
	"github.com/godbus/dbus/v5"

	"github.com/plexsphere/hostctl/internal/hostbus"
)

// restartMode is the systemd job mode used for self-restart.
const restartMode = "replace"

// dispatcher executes each operation as exactly one blocking host call
// (self-restart adds a unit lookup when no unit name is configured).
// It never retries.
type dispatcher struct {
	client hostbus.Client
	cfg    Config
	notify *notifier
	pid    func() int
	logger *slog.Logger
}

func newDispatcher(client hostbus.Client, cfg Config, notify *notifier, logger *slog.Logger) *dispatcher {
	return &dispatcher{
		client: client,
		cfg:    cfg,
		notify: notify,
		pid:    os.Getpid,
		logger: logger,
	}
}

func (d *dispatcher) reboot(ctx context.Context) error {
	d.logger.Debug("rebooting")
	if _, err := d.client.Call(ctx, hostbus.Login1, "Reboot", true); err != nil {
		d.logFailure("error calling reboot on logind", err)
		return newHostCallError("reboot", err)
	}
	return nil
}

func (d *dispatcher) shutdown(ctx context.Context) error {
	d.logger.Debug("shutting down")
	if _, err := d.client.Call(ctx, hostbus.Login1, "PowerOff", true); err != nil {
		d.logFailure("error calling poweroff on logind", err)
		return newHostCallError("shutdown", err)
	}
	return nil
}

// restart asks systemd to restart the unit this process runs in. Host
// failures are reported only when StrictRestart is set.
func (d *dispatcher) restart(ctx context.Context) error {
	d.logger.Debug("restarting service")
	err := d.restartUnit(ctx)
	if err == nil {
		return nil
	}
	d.logFailure("error restarting service", err)
	if d.cfg.StrictRestart {
		return newHostCallError("restart", err)
	}
	return nil
}

func (d *dispatcher) restartUnit(ctx context.Context) error {
	path, err := d.unitPath(ctx)
	if err != nil {
		return err
	}
	_, err = d.client.Call(ctx, hostbus.Systemd1Unit(path), "Restart", restartMode)
	return err
}

// unitPath returns the object path of the unit to restart.
func (d *dispatcher) unitPath(ctx context.Context) (dbus.ObjectPath, error) {
	if d.cfg.UnitName != "" {
		return dbus.ObjectPath("/org/freedesktop/systemd1/unit/" + sdbus.PathBusEscape(d.cfg.UnitName)), nil
	}
	body, err := d.client.Call(ctx, hostbus.Systemd1Manager, "GetUnitByPID", uint32(d.pid()))
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", errors.New("GetUnitByPID returned no value")
	}
	path, ok := body[0].(dbus.ObjectPath)
	if !ok {
		return "", fmt.Errorf("GetUnitByPID returned %s", typeName(body[0]))
	}
	return path, nil
}

func (d *dispatcher) setTime(ctx context.Context, t time.Time) error {
	usec := t.UnixMicro()
	if _, err := d.client.Call(ctx, hostbus.Timedate1, "SetTime", usec, false, false); err != nil {
		d.logFailure("error setting time", err)
		return newHostCallError("set time", err)
	}
	d.logger.Debug("time set", "time", t.UTC())
	d.notify.emit()
	return nil
}

func (d *dispatcher) setTimeZone(ctx context.Context, zone string) error {
	if _, err := d.client.Call(ctx, hostbus.Timedate1, "SetTimezone", zone, false); err != nil {
		d.logFailure("error setting time zone", err)
		return newHostCallError("set time zone", err)
	}
	d.logger.Debug("time zone set", "zone", zone)
	d.notify.emit()
	return nil
}

// setAutomaticTime toggles NTP. Enabling schedules a second notification
// because timesyncd converges after the call returns.
func (d *dispatcher) setAutomaticTime(ctx context.Context, enabled bool) error {
	if _, err := d.client.Call(ctx, hostbus.Timedate1, "SetNTP", enabled, false); err != nil {
		d.logFailure("error setting automatic time", err)
		return newHostCallError("set automatic time", err)
	}
	d.logger.Debug("automatic time set", "enabled", enabled)
	d.notify.emit()
	if enabled {
		d.notify.emitAfter(d.cfg.NTPSettleDelay)
	}
	return nil
}

func (d *dispatcher) boolProperty(ctx context.Context, op, name string) (bool, error) {
	v, err := d.client.GetProperty(ctx, hostbus.Timedate1, name)
	if err != nil {
		d.logFailure("error reading timedated property", err, "property", name)
		return false, newHostCallError(op, err)
	}
	b, ok := v.Value().(bool)
	if !ok {
		err := fmt.Errorf("property %s is %s, want bool", name, typeName(v.Value()))
		d.logger.Warn("unexpected timedated property type", "property", name, "error", err)
		return false, newHostCallError(op, err)
	}
	return b, nil
}

func (d *dispatcher) logFailure(msg string, err error, args ...any) {
	attrs := append([]any{
		"error_name", hostbus.ErrorName(err),
		"error", hostbus.ErrorMessage(err),
	}, args...)
	d.logger.Warn(msg, attrs...)
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
