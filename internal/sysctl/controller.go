// Package sysctl implements the host system controller: capability probing
// at construction, one host call per operation, and forwarding of host time
// configuration changes as change notifications.
package sysctl

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plexsphere/hostctl/internal/hostbus"
)

// Capabilities records which operation classes the host supports. It is
// determined once when the controller is constructed.
type Capabilities struct {
	PowerControl bool `json:"power_control"`
	TimeControl  bool `json:"time_control"`
}

// SystemController controls host power and time configuration.
type SystemController interface {
	// Backend returns the name of the implementation, e.g. "systemd".
	Backend() string

	// Capabilities returns the capability flags probed at construction.
	Capabilities() Capabilities
	PowerManagementAvailable() bool
	TimeManagementAvailable() bool
	TimeZoneManagementAvailable() bool

	Reboot(ctx context.Context) error
	Shutdown(ctx context.Context) error
	// Restart restarts the systemd unit this process runs in.
	Restart(ctx context.Context) error

	SetTime(ctx context.Context, t time.Time) error
	SetTimeZone(ctx context.Context, zone string) error
	SetAutomaticTime(ctx context.Context, enabled bool) error
	// AutomaticTimeAvailable reads the host's live CanNTP property.
	AutomaticTimeAvailable(ctx context.Context) (bool, error)
	// AutomaticTime reads the host's live NTP property.
	AutomaticTime(ctx context.Context) (bool, error)

	// OnTimeConfigurationChanged registers fn to be called whenever the time
	// configuration may have changed. The returned function unregisters fn.
	OnTimeConfigurationChanged(fn func()) (unregister func())

	// Close releases host subscriptions and cancels pending notifications.
	Close() error
}

// New creates the controller selected by cfg.Backend. With BackendAuto the
// systemd controller is chosen when timedated is reachable, otherwise the
// logind controller. The selection probe result is reused as the systemd
// controller's time capability.
func New(ctx context.Context, client hostbus.Client, cfg Config, logger *slog.Logger) (SystemController, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case BackendAuto:
		timeControl := newProber(client, logger.With("component", "sysctl")).probeTimeControl(ctx)
		if !timeControl {
			logger.Info("system controller backend selected", "backend", BackendLogind)
			return NewLogindController(ctx, client, cfg, logger), nil
		}
		logger.Info("system controller backend selected", "backend", BackendSystemd)
		return newSystemdController(ctx, client, cfg, logger, &timeControl), nil
	case BackendLogind:
		return NewLogindController(ctx, client, cfg, logger), nil
	default:
		return NewSystemdController(ctx, client, cfg, logger), nil
	}
}

// base holds state shared by the controller implementations.
type base struct {
	backend  string
	cfg      Config
	caps     Capabilities
	dispatch *dispatcher
	notify   *notifier
	sub      hostbus.Subscription
	logger   *slog.Logger

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newBase(backend string, client hostbus.Client, cfg Config, logger *slog.Logger) *base {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	lg := logger.With("component", "sysctl", "backend", backend)
	n := newNotifier()
	return &base{
		backend:  backend,
		cfg:      cfg,
		dispatch: newDispatcher(client, cfg, n, lg),
		notify:   n,
		logger:   lg,
	}
}

func (b *base) Backend() string { return b.backend }

func (b *base) Capabilities() Capabilities { return b.caps }

func (b *base) PowerManagementAvailable() bool { return b.caps.PowerControl }

func (b *base) TimeManagementAvailable() bool { return b.caps.TimeControl }

// TimeZoneManagementAvailable is bundled with time control.
func (b *base) TimeZoneManagementAvailable() bool { return b.caps.TimeControl }

func (b *base) Reboot(ctx context.Context) error {
	if err := b.guard(b.caps.PowerControl); err != nil {
		return err
	}
	return b.dispatch.reboot(ctx)
}

func (b *base) Shutdown(ctx context.Context) error {
	if err := b.guard(b.caps.PowerControl); err != nil {
		return err
	}
	return b.dispatch.shutdown(ctx)
}

func (b *base) Restart(ctx context.Context) error {
	if b.closed.Load() {
		return ErrClosed
	}
	return b.dispatch.restart(ctx)
}

func (b *base) OnTimeConfigurationChanged(fn func()) func() {
	return b.notify.register(fn)
}

// Close releases the property subscription and cancels the pending
// automatic-time notification. It is safe to call more than once.
func (b *base) Close() error {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		b.notify.close()
		if b.sub != nil {
			b.closeErr = b.sub.Close()
		}
		b.logger.Debug("controller closed")
	})
	return b.closeErr
}

// guard rejects operations on a closed controller and, when enforcement is
// enabled, operations whose capability is absent.
func (b *base) guard(capable bool) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if b.cfg.EnforceCapabilities && !capable {
		return ErrCapabilityUnavailable
	}
	return nil
}
