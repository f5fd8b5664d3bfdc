// Package handlers provides HTTP handlers for trit diagnostics.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/diagnostics"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/pkg/respond"
)

// DefaultSamples is used when the fairness request does not name a sample size
const DefaultSamples = 100_000

// Handler handles diagnostics HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new diagnostics handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "diagnostics").Logger(),
	}
}

// RegisterRequest describes a register analysis
type RegisterRequest struct {
	Size   int     `json:"size"`
	Seed   *uint64 `json:"seed,omitempty"`
	Cycles int     `json:"cycles"`
}

// HandleFairness handles GET /api/diagnostics/fairness?samples=N&seed=S&alpha=A
func (h *Handler) HandleFairness(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	samples := DefaultSamples
	if v := query.Get("samples"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "samples must be an integer", http.StatusBadRequest)
			return
		}
		samples = n
	}

	alpha := diagnostics.DefaultAlpha
	if v := query.Get("alpha"); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "alpha must be a number", http.StatusBadRequest)
			return
		}
		alpha = a
	}

	seed, err := h.seedFromQuery(query.Get("seed"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := diagnostics.SampleFairness(trit.NewSource(seed), samples, alpha)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !report.Fair {
		h.log.Warn().
			Uint64("seed", seed).
			Int("samples", samples).
			Float64("p_value", report.PValue).
			Msg("Random trit sample failed fairness test")
	}

	respond.Data(w, r, map[string]interface{}{
		"seed":   seed,
		"report": report,
	}, h.log)
}

// HandleRegister handles POST /api/diagnostics/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := respond.Decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var seed uint64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		s, err := trit.NewSeed()
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to generate seed")
			http.Error(w, "Failed to generate seed", http.StatusInternalServerError)
			return
		}
		seed = s
	}

	report, err := diagnostics.AnalyzeRegister(req.Size, seed, req.Cycles)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respond.Data(w, r, report, h.log)
}

func (h *Handler) seedFromQuery(v string) (uint64, error) {
	if v == "" {
		s, err := trit.NewSeed()
		if err != nil {
			return 0, fmt.Errorf("failed to generate seed: %w", err)
		}
		return s, nil
	}
	s, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("seed must be an unsigned integer")
	}
	return s, nil
}
