package trit

import "math"

// PhaseQuarterTurn is the phase added by the control-2 branch of HybridControlledOp.
const PhaseQuarterTurn = math.Pi / 2

// BinaryCell is a simulated qubit: a bit value plus an accumulated phase in [0, 2π).
type BinaryCell struct {
	Value uint8   `json:"value" msgpack:"value"`
	Phase float64 `json:"phase" msgpack:"phase"`
}

// Flip inverts the bit value.
func (b *BinaryCell) Flip() {
	b.Value = 1 - bit(b.Value)
}

// AdvancePhase adds delta to the phase, wrapping modulo 2π.
func (b *BinaryCell) AdvancePhase(delta float64) {
	p := math.Mod(b.Phase+delta, 2*math.Pi)
	if p < 0 {
		p += 2 * math.Pi
	}
	b.Phase = p
}

// HybridControlledOp applies an operation to target selected by control's value:
// identity for 0, a bit flip for 1, a bit flip plus a quarter-turn phase for 2.
// Returns ErrRealityLeak, leaving target untouched, if control is forbidden.
func HybridControlledOp(control *Cell, target *BinaryCell) error {
	v, err := control.Measure()
	if err != nil {
		return err
	}
	switch v {
	case 1:
		target.Flip()
	case 2:
		target.Flip()
		target.AdvancePhase(PhaseQuarterTurn)
	}
	return nil
}
