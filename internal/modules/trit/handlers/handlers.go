// Package handlers provides HTTP handlers for stateless trit gate operations.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/pkg/respond"
)

// MaxRandomCount bounds GET /trit/random
const MaxRandomCount = 10_000

// Handler handles trit HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new trit handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "trit").Logger(),
	}
}

// MeasureRequest carries raw storage bits
type MeasureRequest struct {
	Bits trit.Pair `json:"bits"`
}

// CycleRequest applies the cyclic gate times times to value
type CycleRequest struct {
	Value int `json:"value"`
	Times int `json:"times"`
}

// SwapRequest applies a transposition gate ("01" or "12") to value
type SwapRequest struct {
	Value int    `json:"value"`
	Gate  string `json:"gate"`
}

// AddRequest adds two trits modulo 3
type AddRequest struct {
	A int `json:"a"`
	B int `json:"b"`
}

// HybridRequest applies the trit-controlled operation to a binary target.
// ControlBits, when set, overrides Control with raw storage bits.
type HybridRequest struct {
	Control     int             `json:"control"`
	ControlBits *trit.Pair      `json:"control_bits,omitempty"`
	Target      trit.BinaryCell `json:"target"`
}

// CellResult describes a cell after an operation
type CellResult struct {
	Value  uint8     `json:"value"`
	State  string    `json:"state"`
	Bits   trit.Pair `json:"bits"`
	Charge float64   `json:"charge"`
}

func describe(c *trit.Cell) CellResult {
	s := c.Inspect()
	return CellResult{
		Value:  uint8(s),
		State:  s.String(),
		Bits:   c.Bits(),
		Charge: s.Charge(),
	}
}

func validBits(p trit.Pair) bool {
	return p.High <= 1 && p.Low <= 1
}

// HandleMeasure handles POST /api/trit/measure
func (h *Handler) HandleMeasure(w http.ResponseWriter, r *http.Request) {
	var req MeasureRequest
	if err := respond.Decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !validBits(req.Bits) {
		http.Error(w, "bits must be 0 or 1", http.StatusBadRequest)
		return
	}

	cell := &trit.Cell{}
	cell.SetBits(req.Bits)

	value, err := cell.Measure()
	if err != nil {
		h.writeError(w, err)
		return
	}

	res := describe(cell)
	res.Value = value
	respond.Data(w, r, res, h.log)
}

// HandleCycle handles POST /api/trit/cycle
func (h *Handler) HandleCycle(w http.ResponseWriter, r *http.Request) {
	var req CycleRequest
	if err := respond.Decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Times < 0 {
		http.Error(w, "times must be >= 0", http.StatusBadRequest)
		return
	}

	cell, err := trit.New(req.Value)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// CycleNext has order 3
	for i := 0; i < req.Times%3; i++ {
		cell.CycleNext()
	}

	respond.Data(w, r, map[string]interface{}{
		"initial": req.Value,
		"times":   req.Times,
		"result":  describe(cell),
	}, h.log)
}

// HandleSwap handles POST /api/trit/swap
func (h *Handler) HandleSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if err := respond.Decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cell, err := trit.New(req.Value)
	if err != nil {
		h.writeError(w, err)
		return
	}

	switch req.Gate {
	case "01":
		cell.SwapZeroOne()
	case "12":
		cell.SwapOneTwo()
	default:
		http.Error(w, fmt.Sprintf("unknown gate %q (want \"01\" or \"12\")", req.Gate), http.StatusBadRequest)
		return
	}

	respond.Data(w, r, map[string]interface{}{
		"initial": req.Value,
		"gate":    req.Gate,
		"result":  describe(cell),
	}, h.log)
}

// HandleAdd handles POST /api/trit/add
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := respond.Decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	a, err := trit.New(req.A)
	if err != nil {
		h.writeError(w, err)
		return
	}
	b, err := trit.New(req.B)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := a.AddMod3(b); err != nil {
		h.writeError(w, err)
		return
	}

	respond.Data(w, r, map[string]interface{}{
		"a":      req.A,
		"b":      req.B,
		"result": describe(a),
	}, h.log)
}

// HandleHybrid handles POST /api/trit/hybrid
func (h *Handler) HandleHybrid(w http.ResponseWriter, r *http.Request) {
	var req HybridRequest
	if err := respond.Decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Target.Value > 1 {
		http.Error(w, "target value must be 0 or 1", http.StatusBadRequest)
		return
	}

	var control *trit.Cell
	if req.ControlBits != nil {
		if !validBits(*req.ControlBits) {
			http.Error(w, "control bits must be 0 or 1", http.StatusBadRequest)
			return
		}
		control = &trit.Cell{}
		control.SetBits(*req.ControlBits)
	} else {
		var err error
		control, err = trit.New(req.Control)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}

	target := req.Target
	if err := trit.HybridControlledOp(control, &target); err != nil {
		h.writeError(w, err)
		return
	}

	respond.Data(w, r, map[string]interface{}{
		"control": describe(control),
		"before":  req.Target,
		"target":  target,
	}, h.log)
}

// HandleRandom handles GET /api/trit/random?count=N&seed=S
func (h *Handler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	count := 1
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxRandomCount {
			http.Error(w, fmt.Sprintf("count must be an integer in [1, %d]", MaxRandomCount), http.StatusBadRequest)
			return
		}
		count = n
	}

	var seed uint64
	if v := r.URL.Query().Get("seed"); v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "seed must be an unsigned integer", http.StatusBadRequest)
			return
		}
		seed = s
	} else {
		s, err := trit.NewSeed()
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to generate seed")
			http.Error(w, "Failed to generate seed", http.StatusInternalServerError)
			return
		}
		seed = s
	}

	src := trit.NewSource(seed)
	values := make([]int, count)
	for i := range values {
		values[i] = int(trit.RandomTrit(src))
	}

	respond.Data(w, r, map[string]interface{}{
		"seed":   seed,
		"count":  count,
		"values": values,
	}, h.log)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trit.ErrInvalidState):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, trit.ErrRealityLeak):
		h.log.Warn().Err(err).Msg("Reality leak on read")
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error().Err(err).Msg("Trit operation failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
