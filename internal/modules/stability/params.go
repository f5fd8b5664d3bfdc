// Package stability supervises a trit cell under injected noise, detecting and
// repairing the forbidden bit pair while tracking a bounded coherence score.
package stability

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned for tuning that cannot keep coherence inside (0, 1]
var ErrInvalidParams = errors.New("invalid stability params")

// Default tuning constants. They carry no derivation; callers may override them.
const (
	DefaultNoiseProbability = 0.1
	DefaultDecayFactor      = 0.95
	DefaultRecoveryFactor   = 1.01
)

// Params controls the evolution loop
type Params struct {
	// NoiseProbability is the chance per step that one bit of the cell is flipped
	NoiseProbability float64 `json:"noise_probability" msgpack:"noise_probability"`
	// DecayFactor multiplies coherence after each correction
	DecayFactor float64 `json:"decay_factor" msgpack:"decay_factor"`
	// RecoveryFactor multiplies coherence after each stable step (capped at 1.0)
	RecoveryFactor float64 `json:"recovery_factor" msgpack:"recovery_factor"`
}

// DefaultParams returns the standard tuning: 0.1 noise, 0.95 decay, 1.01 recovery.
func DefaultParams() Params {
	return Params{
		NoiseProbability: DefaultNoiseProbability,
		DecayFactor:      DefaultDecayFactor,
		RecoveryFactor:   DefaultRecoveryFactor,
	}
}

// Validate checks that the parameters keep coherence inside (0, 1].
func (p Params) Validate() error {
	if math.IsNaN(p.NoiseProbability) || p.NoiseProbability < 0 || p.NoiseProbability > 1 {
		return fmt.Errorf("%w: noise probability must be in [0, 1], got %v", ErrInvalidParams, p.NoiseProbability)
	}
	if math.IsNaN(p.DecayFactor) || p.DecayFactor <= 0 || p.DecayFactor >= 1 {
		return fmt.Errorf("%w: decay factor must be in (0, 1), got %v", ErrInvalidParams, p.DecayFactor)
	}
	if math.IsNaN(p.RecoveryFactor) || math.IsInf(p.RecoveryFactor, 0) || p.RecoveryFactor < 1 {
		return fmt.Errorf("%w: recovery factor must be >= 1, got %v", ErrInvalidParams, p.RecoveryFactor)
	}
	return nil
}
