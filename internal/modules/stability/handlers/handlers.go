// Package handlers provides HTTP handlers for corrector sessions.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/stability"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/pkg/respond"
)

// MaxRunSteps bounds a single run request
const MaxRunSteps = 10_000_000

// Handler handles stability HTTP requests
type Handler struct {
	registry      *stability.SessionRegistry
	defaultParams stability.Params
	log           zerolog.Logger
}

// NewHandler creates a new stability handler
func NewHandler(registry *stability.SessionRegistry, defaultParams stability.Params, log zerolog.Logger) *Handler {
	return &Handler{
		registry:      registry,
		defaultParams: defaultParams,
		log:           log.With().Str("handler", "stability").Logger(),
	}
}

// RunRequest advances a session
type RunRequest struct {
	Steps uint32 `json:"steps"`
}

// HandleGetDefaultParams handles GET /api/stability/params
func (h *Handler) HandleGetDefaultParams(w http.ResponseWriter, r *http.Request) {
	respond.Data(w, r, h.defaultParams, h.log)
}

// HandleCreateSession handles POST /api/stability/sessions
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	// Fields missing from a partial params object keep the service defaults
	defaults := h.defaultParams
	req := stability.CreateRequest{Params: &defaults}
	if err := respond.Decode(r, &req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	info, err := h.registry.Create(req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.Write(w, r, http.StatusCreated, respond.Envelope(info), h.log)
}

// HandleListSessions handles GET /api/stability/sessions
func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.registry.List()
	respond.Data(w, r, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	}, h.log)
}

// HandleGetSession handles GET /api/stability/sessions/{id}
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.Data(w, r, info, h.log)
}

// HandleRunSession handles POST /api/stability/sessions/{id}/run
func (h *Handler) HandleRunSession(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRun(w, r)
	if !ok {
		return
	}

	report, info, err := h.registry.Run(chi.URLParam(r, "id"), req.Steps)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.Data(w, r, map[string]interface{}{
		"report":  report,
		"session": info,
	}, h.log)
}

// HandleRunAll handles POST /api/stability/sessions/run
func (h *Handler) HandleRunAll(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRun(w, r)
	if !ok {
		return
	}

	results := h.registry.RunAll(req.Steps)
	respond.Data(w, r, map[string]interface{}{
		"results": results,
		"count":   len(results),
	}, h.log)
}

// HandleInjectLeak handles POST /api/stability/sessions/{id}/leak
func (h *Handler) HandleInjectLeak(w http.ResponseWriter, r *http.Request) {
	info, err := h.registry.InjectLeak(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.Data(w, r, info, h.log)
}

// HandleDeleteSession handles DELETE /api/stability/sessions/{id}
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.registry.Delete(id); err != nil {
		h.writeError(w, err)
		return
	}
	respond.Data(w, r, map[string]interface{}{"deleted": id}, h.log)
}

func (h *Handler) decodeRun(w http.ResponseWriter, r *http.Request) (RunRequest, bool) {
	var req RunRequest
	if err := respond.Decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	if req.Steps > MaxRunSteps {
		http.Error(w, fmt.Sprintf("steps must be <= %d", MaxRunSteps), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, stability.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, trit.ErrInvalidState), errors.Is(err, stability.ErrInvalidParams):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, trit.ErrRealityLeak):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, stability.ErrSessionLimit):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	default:
		h.log.Error().Err(err).Msg("Stability operation failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
