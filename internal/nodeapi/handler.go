package nodeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/plexsphere/hostctl/internal/sysctl"
)

// Handler provides HTTP handlers for the local host control API.
type Handler struct {
	ctrl   sysctl.SystemController
	events *EventBroker
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(ctrl sysctl.SystemController, events *EventBroker, logger *slog.Logger) *Handler {
	return &Handler{
		ctrl:   ctrl,
		events: events,
		logger: logger.With("component", "nodeapi"),
	}
}

// Mux returns a configured ServeMux with all host control API routes.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/capabilities", h.handleGetCapabilities)
	mux.HandleFunc("POST /v1/power/reboot", h.handleReboot)
	mux.HandleFunc("POST /v1/power/shutdown", h.handleShutdown)
	mux.HandleFunc("POST /v1/service/restart", h.handleRestart)
	mux.HandleFunc("PUT /v1/time", h.handleSetTime)
	mux.HandleFunc("PUT /v1/time/zone", h.handleSetTimeZone)
	mux.HandleFunc("GET /v1/time/ntp", h.handleGetNTP)
	mux.HandleFunc("PUT /v1/time/ntp", h.handleSetNTP)
	mux.HandleFunc("GET /v1/events", h.handleEvents)
	return mux
}

// CapabilitiesResponse is the response for GET /v1/capabilities.
type CapabilitiesResponse struct {
	Backend         string `json:"backend"`
	PowerControl    bool   `json:"power_control"`
	TimeControl     bool   `json:"time_control"`
	TimeZoneControl bool   `json:"time_zone_control"`
}

// NTPStatus is the response for GET /v1/time/ntp.
type NTPStatus struct {
	Available bool `json:"available"`
	Enabled   bool `json:"enabled"`
}

// OperationResponse is the response for successful mutating operations.
type OperationResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	// ErrorName is the host's D-Bus error name, if any.
	ErrorName string `json:"error_name,omitempty"`
}

// SetTimeRequest is the body of PUT /v1/time.
type SetTimeRequest struct {
	Time *time.Time `json:"time"`
}

// SetTimeZoneRequest is the body of PUT /v1/time/zone.
type SetTimeZoneRequest struct {
	Zone string `json:"zone"`
}

// SetNTPRequest is the body of PUT /v1/time/ntp.
type SetNTPRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *Handler) handleGetCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CapabilitiesResponse{
		Backend:         h.ctrl.Backend(),
		PowerControl:    h.ctrl.PowerManagementAvailable(),
		TimeControl:     h.ctrl.TimeManagementAvailable(),
		TimeZoneControl: h.ctrl.TimeZoneManagementAvailable(),
	})
}

func (h *Handler) handleReboot(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("reboot requested")
	h.respond(w, "reboot", h.ctrl.Reboot(r.Context()))
}

func (h *Handler) handleShutdown(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("shutdown requested")
	h.respond(w, "shutdown", h.ctrl.Shutdown(r.Context()))
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("service restart requested")
	h.respond(w, "restart", h.ctrl.Restart(r.Context()))
}

func (h *Handler) handleSetTime(w http.ResponseWriter, r *http.Request) {
	var req SetTimeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Time == nil {
		writeError(w, http.StatusBadRequest, "time is required")
		return
	}
	h.respond(w, "set time", h.ctrl.SetTime(r.Context(), *req.Time))
}

func (h *Handler) handleSetTimeZone(w http.ResponseWriter, r *http.Request) {
	var req SetTimeZoneRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Zone == "" {
		writeError(w, http.StatusBadRequest, "zone is required")
		return
	}
	h.respond(w, "set time zone", h.ctrl.SetTimeZone(r.Context(), req.Zone))
}

func (h *Handler) handleGetNTP(w http.ResponseWriter, r *http.Request) {
	available, err := h.ctrl.AutomaticTimeAvailable(r.Context())
	if err != nil {
		h.writeControllerError(w, "automatic time available", err)
		return
	}
	enabled, err := h.ctrl.AutomaticTime(r.Context())
	if err != nil {
		h.writeControllerError(w, "automatic time", err)
		return
	}
	writeJSON(w, http.StatusOK, NTPStatus{Available: available, Enabled: enabled})
}

func (h *Handler) handleSetNTP(w http.ResponseWriter, r *http.Request) {
	var req SetNTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	h.respond(w, "set automatic time", h.ctrl.SetAutomaticTime(r.Context(), *req.Enabled))
}

// handleEvents streams one SSE event per change notification until the
// client disconnects or the broker is closed.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch, cancel := h.events.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": subscribed\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: {}\n\n", EventTimeConfigurationChanged)
			flusher.Flush()
		}
	}
}

func (h *Handler) respond(w http.ResponseWriter, op string, err error) {
	if err != nil {
		h.writeControllerError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, OperationResponse{OK: true})
}

// writeControllerError maps controller errors to HTTP status codes.
func (h *Handler) writeControllerError(w http.ResponseWriter, op string, err error) {
	var hcErr *sysctl.HostCallError
	switch {
	case errors.Is(err, sysctl.ErrCapabilityUnavailable), errors.Is(err, sysctl.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, sysctl.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &hcErr):
		h.logger.Warn("host call failed", "op", op, "error_name", hcErr.Name, "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error(), ErrorName: hcErr.Name})
	default:
		h.logger.Error("operation failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// maxBodySize bounds request bodies; all requests are small JSON objects.
const maxBodySize = 4096

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
