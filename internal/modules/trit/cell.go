// Package trit implements a three-valued logic cell encoded on two binary storage bits.
//
// Encoding (high, low):
//   - 00 -> 0 (void)
//   - 01 -> 1 (matter)
//   - 10 -> 2 (sovereign)
//   - 11 -> forbidden (leaked / corrupted)
//
// The legal subspace is not structurally enforced. Gates silently act as identity
// outside their domain; only Measure, AddMod3 and HybridControlledOp surface the
// forbidden pair as ErrRealityLeak.
package trit

// State is the decoded content of a cell, including the forbidden combination.
type State uint8

const (
	StateZero      State = 0
	StateOne       State = 1
	StateTwo       State = 2
	StateForbidden State = 3
)

// String returns a short label for the state
func (s State) String() string {
	switch s {
	case StateZero:
		return "void"
	case StateOne:
		return "matter"
	case StateTwo:
		return "sovereign"
	case StateForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Legal reports whether the state is one of the three logical values.
func (s State) Legal() bool {
	return s < StateForbidden
}

// Charge is the topological charge of the state: -1 for the forbidden pair, 0 otherwise.
func (s State) Charge() float64 {
	if s == StateForbidden {
		return -1.0
	}
	return 0.0
}

// Pair is the raw content of the two storage bits.
type Pair struct {
	High uint8 `json:"high" msgpack:"high"`
	Low  uint8 `json:"low" msgpack:"low"`
}

// State decodes the pair. Any non-zero bit value counts as 1.
func (p Pair) State() State {
	return State(bit(p.High)<<1 | bit(p.Low))
}

func bit(v uint8) uint8 {
	if v != 0 {
		return 1
	}
	return 0
}

func pairOf(s State) Pair {
	return Pair{High: uint8(s>>1) & 1, Low: uint8(s) & 1}
}

// Cell is a virtual trit backed by two bits. A Cell is not safe for concurrent use;
// it belongs to exactly one owner at a time.
type Cell struct {
	high uint8
	low  uint8
}

// New creates a cell holding the given logical value.
func New(initial int) (*Cell, error) {
	if initial < 0 || initial > 2 {
		return nil, invalidState(initial)
	}
	c := &Cell{}
	c.set(State(initial))
	return c, nil
}

// MustNew is like New but panics on an invalid value. Intended for literals in tests
// and static tables.
func MustNew(initial int) *Cell {
	c, err := New(initial)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Cell) set(s State) {
	p := pairOf(s)
	c.high, c.low = p.High, p.Low
}

// Measure returns the logical value of the cell.
// Returns ErrRealityLeak when the cell holds the forbidden pair.
func (c *Cell) Measure() (uint8, error) {
	s := c.Inspect()
	if s == StateForbidden {
		return 0, ErrRealityLeak
	}
	return uint8(s), nil
}

// Inspect decodes the cell without failing. This is the tagged-result reader used
// for routine polling; it never treats the forbidden pair as an error.
func (c *Cell) Inspect() State {
	return c.Bits().State()
}

// Bits returns the raw storage bits.
func (c *Cell) Bits() Pair {
	return Pair{High: c.high, Low: c.low}
}

// SetBits writes the raw storage bits directly, bypassing the gate set.
// This is the physical fault-injection path; it can produce the forbidden pair.
func (c *Cell) SetBits(p Pair) {
	c.high, c.low = bit(p.High), bit(p.Low)
}

// ReturnToVoid forces both bits to 0.
func (c *Cell) ReturnToVoid() {
	c.high, c.low = 0, 0
}

// Clone returns an independent copy of the cell.
func (c *Cell) Clone() *Cell {
	cp := *c
	return &cp
}
