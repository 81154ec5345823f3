package nodeapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/plexsphere/hostctl/internal/sysctl"
)

// Server is the local host control API server. It serves HTTP over a Unix
// socket and optionally over TCP with bearer token authentication.
type Server struct {
	cfg     Config
	ctrl    sysctl.SystemController
	events  *EventBroker
	logger  *slog.Logger
	onReady func()
}

// NewServer creates a new Server. Config defaults are applied automatically.
func NewServer(cfg Config, ctrl sysctl.SystemController, logger *slog.Logger) *Server {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	lg := logger.With("component", "nodeapi")
	return &Server{
		cfg:    cfg,
		ctrl:   ctrl,
		events: NewEventBroker(cfg.EventBuffer, lg),
		logger: lg,
	}
}

// SetOnReady registers fn to be called once all listeners are accepting.
func (s *Server) SetOnReady(fn func()) {
	s.onReady = fn
}

// Events returns the broker that feeds GET /v1/events.
func (s *Server) Events() *EventBroker {
	return s.events
}

// Start initializes and runs the server. It blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	unregister := s.ctrl.OnTimeConfigurationChanged(s.events.Publish)
	defer unregister()

	handler := NewHandler(s.ctrl, s.events, s.logger)
	mux := handler.Mux()

	// Remove stale socket.
	os.Remove(s.cfg.SocketPath)

	if dir := filepath.Dir(s.cfg.SocketPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("nodeapi: create socket dir: %w", err)
		}
	}

	unixLn, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("nodeapi: listen unix %s: %w", s.cfg.SocketPath, err)
	}
	applySocketPermissions(s.cfg.SocketPath, s.cfg.AccessGroup, s.logger)

	unixServer := &http.Server{
		Handler:     wrapOperatorAuth(mux, s.cfg.AccessGroup, s.logger),
		ConnContext: connContextWithPeerCred(s.logger),
	}

	var tcpServer *http.Server
	var tcpLn net.Listener

	if s.cfg.HTTPEnabled {
		token, err := readTokenFile(s.cfg.HTTPTokenFile)
		if err != nil {
			unixLn.Close()
			os.Remove(s.cfg.SocketPath)
			return fmt.Errorf("nodeapi: read token file: %w", err)
		}

		tcpLn, err = net.Listen("tcp", s.cfg.HTTPListen)
		if err != nil {
			unixLn.Close()
			os.Remove(s.cfg.SocketPath)
			return fmt.Errorf("nodeapi: listen tcp %s: %w", s.cfg.HTTPListen, err)
		}
		tcpServer = &http.Server{Handler: BearerAuthMiddleware(token)(mux)}
	}

	s.logger.Info("server started",
		"socket", s.cfg.SocketPath,
		"access_group", s.cfg.AccessGroup,
		"http_enabled", s.cfg.HTTPEnabled,
		"http_listen", s.cfg.HTTPListen,
		"backend", s.ctrl.Backend(),
	)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := unixServer.Serve(unixLn); err != http.ErrServerClosed {
			s.logger.Error("unix server error", "error", err)
		}
	}()

	if tcpServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpServer.Serve(tcpLn); err != http.ErrServerClosed {
				s.logger.Error("tcp server error", "error", err)
			}
		}()
	}

	if s.onReady != nil {
		s.onReady()
	}

	<-ctx.Done()

	s.logger.Info("server shutting down")

	// Event streams never finish on their own; end them before Shutdown
	// waits for active connections.
	s.events.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer shutdownCancel()

	unixServer.Shutdown(shutdownCtx)
	if tcpServer != nil {
		tcpServer.Shutdown(shutdownCtx)
	}

	os.Remove(s.cfg.SocketPath)

	wg.Wait()

	s.logger.Info("server stopped")

	return ctx.Err()
}

// readTokenFile reads and trims a bearer token from a file.
func readTokenFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("token file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file is empty")
	}
	return token, nil
}
