package stability

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
)

// MinCoherence is the floor applied after a correction. It keeps coherence
// positive and far from the subnormal range so stable steps can recover it.
const MinCoherence = 1e-9

// Report summarises one Run call
type Report struct {
	Coherence   float64 `json:"coherence" msgpack:"coherence"`
	Corrections uint32  `json:"corrections" msgpack:"corrections"`
	Steps       uint32  `json:"steps" msgpack:"steps"`
}

// CorrectionEvent describes a single detected and repaired leak
type CorrectionEvent struct {
	Step        uint64  `json:"step"`
	Coherence   float64 `json:"coherence"`
	Corrections uint64  `json:"corrections"`
}

// Observer is notified synchronously from inside Run for every correction.
type Observer interface {
	OnCorrection(ev CorrectionEvent)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ev CorrectionEvent)

// OnCorrection calls f(ev)
func (f ObserverFunc) OnCorrection(ev CorrectionEvent) {
	f(ev)
}

// Option configures a Corrector
type Option func(*Corrector)

// WithParams overrides the default tuning
func WithParams(p Params) Option {
	return func(c *Corrector) {
		c.params = p
	}
}

// WithSource sets the randomness source
func WithSource(src trit.Source) Option {
	return func(c *Corrector) {
		c.src = src
	}
}

// WithSeed uses a reproducible source built from seed
func WithSeed(seed uint64) Option {
	return func(c *Corrector) {
		c.src = trit.NewSource(seed)
	}
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Corrector) {
		c.log = log.With().Str("component", "corrector").Logger()
	}
}

// WithObserver registers a correction observer
func WithObserver(o Observer) Option {
	return func(c *Corrector) {
		c.observer = o
	}
}

// Corrector owns one trit cell and repeatedly injects noise, checks for the
// forbidden pair and resets it to void. It is not safe for concurrent use.
type Corrector struct {
	cell        *trit.Cell
	params      Params
	src         trit.Source
	coherence   float64
	corrections uint64
	totalSteps  uint64
	observer    Observer
	log         zerolog.Logger
}

// NewCorrector takes ownership of cell. A nil cell is replaced by a fresh void cell.
// The caller must not touch cell after handing it over.
func NewCorrector(cell *trit.Cell, opts ...Option) (*Corrector, error) {
	if cell == nil {
		cell = trit.MustNew(0)
	}

	c := &Corrector{
		cell:      cell,
		params:    DefaultParams(),
		coherence: 1.0,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid corrector params: %w", err)
	}
	if c.src == nil {
		c.src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return c, nil
}

// Run executes steps iterations of noise, detection and correction.
// Run(0) is a no-op that reports the current coherence.
func (c *Corrector) Run(steps uint32) Report {
	var corrected uint32

	for i := uint32(0); i < steps; i++ {
		if c.src.Float64() < c.params.NoiseProbability {
			c.cell.InjectNoise(c.src)
		}
		c.totalSteps++

		if c.correct() {
			corrected++
			c.coherence = math.Max(c.coherence*c.params.DecayFactor, MinCoherence)

			c.log.Debug().
				Uint64("step", c.totalSteps).
				Float64("coherence", c.coherence).
				Msg("Leak corrected")

			if c.observer != nil {
				c.observer.OnCorrection(CorrectionEvent{
					Step:        c.totalSteps,
					Coherence:   c.coherence,
					Corrections: c.corrections,
				})
			}
			continue
		}

		c.coherence = math.Min(1.0, c.coherence*c.params.RecoveryFactor)
	}

	if steps > 0 {
		c.log.Debug().
			Uint32("steps", steps).
			Uint32("corrections", corrected).
			Float64("coherence", c.coherence).
			Msg("Run completed")
	}

	return Report{
		Coherence:   c.coherence,
		Corrections: corrected,
		Steps:       steps,
	}
}

// Stabilize performs a single detect-and-reset check without touching coherence.
// Returns true if a leak was repaired.
func (c *Corrector) Stabilize() bool {
	return c.correct()
}

func (c *Corrector) correct() bool {
	if c.cell.Inspect() != trit.StateForbidden {
		return false
	}
	c.cell.ReturnToVoid()
	c.corrections++
	return true
}

// Coherence returns the current coherence score in (0, 1].
func (c *Corrector) Coherence() float64 {
	return c.coherence
}

// Corrections returns the number of corrections performed over the corrector's lifetime.
func (c *Corrector) Corrections() uint64 {
	return c.corrections
}

// TotalSteps returns the number of steps run over the corrector's lifetime.
func (c *Corrector) TotalSteps() uint64 {
	return c.totalSteps
}

// Params returns the tuning in use
func (c *Corrector) Params() Params {
	return c.params
}

// State peeks at the owned cell without failing on the forbidden pair.
func (c *Corrector) State() trit.State {
	return c.cell.Inspect()
}

// Bits returns the raw bits of the owned cell
func (c *Corrector) Bits() trit.Pair {
	return c.cell.Bits()
}

// MetricFactor is the time-dilation factor sqrt(1 + coherence²); higher coherence
// means faster simulated gate time.
func (c *Corrector) MetricFactor() float64 {
	return math.Sqrt(1.0 + c.coherence*c.coherence)
}

// InjectLeak forces the owned cell into the forbidden pair. Used to exercise the
// correction path deterministically.
func (c *Corrector) InjectLeak() {
	c.cell.SetBits(trit.Pair{High: 1, Low: 1})
}
