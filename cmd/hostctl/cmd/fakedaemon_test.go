package cmd

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/plexsphere/hostctl/internal/nodeapi"
	"github.com/plexsphere/hostctl/internal/sysctl"
)

// stubController is a SystemController that records calls.
type stubController struct {
	mu       sync.Mutex
	calls    []string
	zone     string
	at       time.Time
	ntp      bool
	err      error
	handlers []func()
}

func (s *stubController) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	return s.err
}

func (s *stubController) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubController) Backend() string { return "systemd" }
func (s *stubController) Capabilities() sysctl.Capabilities {
	return sysctl.Capabilities{PowerControl: true, TimeControl: true}
}
func (s *stubController) PowerManagementAvailable() bool    { return true }
func (s *stubController) TimeManagementAvailable() bool     { return true }
func (s *stubController) TimeZoneManagementAvailable() bool { return true }
func (s *stubController) Reboot(context.Context) error      { return s.record("reboot") }
func (s *stubController) Shutdown(context.Context) error    { return s.record("shutdown") }
func (s *stubController) Restart(context.Context) error     { return s.record("restart") }

func (s *stubController) SetTime(_ context.Context, t time.Time) error {
	s.mu.Lock()
	s.at = t
	s.mu.Unlock()
	return s.record("set_time")
}

func (s *stubController) SetTimeZone(_ context.Context, zone string) error {
	s.mu.Lock()
	s.zone = zone
	s.mu.Unlock()
	return s.record("set_time_zone")
}

func (s *stubController) SetAutomaticTime(_ context.Context, enabled bool) error {
	s.mu.Lock()
	s.ntp = enabled
	s.mu.Unlock()
	return s.record("set_ntp")
}

func (s *stubController) AutomaticTimeAvailable(context.Context) (bool, error) { return true, nil }

func (s *stubController) AutomaticTime(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ntp, nil
}

func (s *stubController) OnTimeConfigurationChanged(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, fn)
	return func() {}
}

func (s *stubController) Close() error { return nil }

// fakeDaemon serves the host control API for ctrl on a temporary Unix
// socket. The returned broker feeds GET /v1/events.
type fakeDaemon struct {
	socketPath string
	ctrl       *stubController
	events     *nodeapi.EventBroker
}

func startFakeDaemon(t *testing.T) *fakeDaemon {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "api.sock")
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen unix: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := &stubController{}
	events := nodeapi.NewEventBroker(4, logger)
	srv := &http.Server{Handler: nodeapi.NewHandler(ctrl, events, logger).Mux()}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ln)
	}()

	t.Cleanup(func() {
		events.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	})

	return &fakeDaemon{socketPath: socketPath, ctrl: ctrl, events: events}
}

// missingSocket returns a socket path nothing listens on.
func missingSocket(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.sock")
}
