package nodeapi

import (
	"context"
	"sync"
	"time"

	"github.com/plexsphere/hostctl/internal/sysctl"
)

// fakeController records calls and returns configured errors.
type fakeController struct {
	mu sync.Mutex

	backend string
	caps    sysctl.Capabilities

	// err is returned by every mutating operation when set.
	err      error
	ntpAvail bool
	ntpOn    bool
	ntpErr   error
	calls    []string
	lastTime time.Time
	lastZone string
	lastNTP  bool
	handlers map[int]func()
	nextID   int
	closed   bool
}

func newFakeController() *fakeController {
	return &fakeController{
		backend:  "systemd",
		caps:     sysctl.Capabilities{PowerControl: true, TimeControl: true},
		ntpAvail: true,
		handlers: make(map[int]func()),
	}
}

func (f *fakeController) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeController) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) Backend() string                   { return f.backend }
func (f *fakeController) Capabilities() sysctl.Capabilities { return f.caps }
func (f *fakeController) PowerManagementAvailable() bool    { return f.caps.PowerControl }
func (f *fakeController) TimeManagementAvailable() bool     { return f.caps.TimeControl }
func (f *fakeController) TimeZoneManagementAvailable() bool { return f.caps.TimeControl }

func (f *fakeController) Reboot(context.Context) error   { return f.record("reboot") }
func (f *fakeController) Shutdown(context.Context) error { return f.record("shutdown") }
func (f *fakeController) Restart(context.Context) error  { return f.record("restart") }

func (f *fakeController) SetTime(_ context.Context, t time.Time) error {
	f.mu.Lock()
	f.lastTime = t
	f.mu.Unlock()
	return f.record("set_time")
}

func (f *fakeController) SetTimeZone(_ context.Context, zone string) error {
	f.mu.Lock()
	f.lastZone = zone
	f.mu.Unlock()
	return f.record("set_time_zone")
}

func (f *fakeController) SetAutomaticTime(_ context.Context, enabled bool) error {
	f.mu.Lock()
	f.lastNTP = enabled
	f.mu.Unlock()
	return f.record("set_ntp")
}

func (f *fakeController) AutomaticTimeAvailable(context.Context) (bool, error) {
	return f.ntpAvail, f.ntpErr
}

func (f *fakeController) AutomaticTime(context.Context) (bool, error) {
	return f.ntpOn, f.ntpErr
}

func (f *fakeController) OnTimeConfigurationChanged(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.handlers[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, id)
	}
}

// notify invokes all registered handlers.
func (f *fakeController) notify() {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.handlers))
	for _, fn := range f.handlers {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (f *fakeController) handlerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func (f *fakeController) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
