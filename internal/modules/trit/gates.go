package trit

import "fmt"

// CycleNext applies the cyclic gate 0 -> 1 -> 2 -> 0.
// The forbidden pair has no successor and is left unchanged.
func (c *Cell) CycleNext() {
	switch c.Inspect() {
	case StateZero:
		c.set(StateOne)
	case StateOne:
		c.set(StateTwo)
	case StateTwo:
		c.set(StateZero)
	}
}

// SwapZeroOne toggles between 0 and 1. It flips the low bit only when the high bit is 0,
// so 2 (and the forbidden pair) pass through unchanged.
func (c *Cell) SwapZeroOne() {
	if c.high == 0 {
		c.low ^= 1
	}
}

// SwapOneTwo maps 1 <-> 2 (01 <-> 10). Identity on 0 and on the forbidden pair.
func (c *Cell) SwapOneTwo() {
	switch c.Inspect() {
	case StateOne:
		c.set(StateTwo)
	case StateTwo:
		c.set(StateOne)
	}
}

// InjectNoise flips one of the two bits, chosen uniformly from src.
// This is the only gate that can move a legal cell into the forbidden pair.
func (c *Cell) InjectNoise(src Source) {
	if src.IntN(2) == 0 {
		c.low ^= 1
	} else {
		c.high ^= 1
	}
}

// Superpose sets the cell to a uniformly random legal value. It stands in for the
// qutrit Hadamard and Fourier gates, whose measured outcome is uniform over {0,1,2}.
func (c *Cell) Superpose(src Source) {
	c.set(State(RandomTrit(src)))
}

// AddMod3 sets c to (c + other) mod 3.
// Returns ErrRealityLeak, leaving c untouched, if either operand is forbidden.
func (c *Cell) AddMod3(other *Cell) error {
	a, err := c.Measure()
	if err != nil {
		return fmt.Errorf("add mod 3: left operand: %w", err)
	}
	b, err := other.Measure()
	if err != nil {
		return fmt.Errorf("add mod 3: right operand: %w", err)
	}
	c.set(State((a + b) % 3))
	return nil
}
