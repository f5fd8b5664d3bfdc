package trit

import "fmt"

// Register is a fixed-length row of cells operated on together.
type Register struct {
	cells []Cell
}

// NewRegister builds a register from logical values.
func NewRegister(values []uint8) (*Register, error) {
	r := &Register{cells: make([]Cell, len(values))}
	for i, v := range values {
		if v > 2 {
			return nil, fmt.Errorf("register index %d: %w", i, invalidState(int(v)))
		}
		r.cells[i].set(State(v))
	}
	return r, nil
}

// NewRandomRegister builds a register of n uniformly random trits.
func NewRandomRegister(n int, src Source) *Register {
	r := &Register{cells: make([]Cell, n)}
	for i := range r.cells {
		r.cells[i].Superpose(src)
	}
	return r
}

// Len returns the number of cells.
func (r *Register) Len() int {
	return len(r.cells)
}

// At returns the i-th cell. The register keeps ownership.
func (r *Register) At(i int) *Cell {
	return &r.cells[i]
}

// Cycle applies CycleNext to every cell.
func (r *Register) Cycle() {
	for i := range r.cells {
		r.cells[i].CycleNext()
	}
}

// States returns the decoded state of every cell.
func (r *Register) States() []State {
	out := make([]State, len(r.cells))
	for i := range r.cells {
		out[i] = r.cells[i].Inspect()
	}
	return out
}

// Counts returns how many cells hold each state, indexed by State
// (the last slot counts forbidden cells).
func (r *Register) Counts() [4]int {
	var counts [4]int
	for i := range r.cells {
		counts[r.cells[i].Inspect()]++
	}
	return counts
}

// SovereignDensity is the share of cells holding 2. A uniform register sits near 1/3.
func (r *Register) SovereignDensity() float64 {
	if len(r.cells) == 0 {
		return 0
	}
	return float64(r.Counts()[StateTwo]) / float64(len(r.cells))
}
