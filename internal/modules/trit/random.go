package trit

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source supplies the randomness consumed by noise injection and random trit generation.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// NewSource returns a reproducible PCG-backed source for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// RandomTrit draws a uniformly distributed legal trit.
//
// Two independent bits are drawn and the pair is re-drawn whenever it equals the
// forbidden combination 11, so each of 0, 1 and 2 has probability exactly 1/3.
func RandomTrit(src Source) uint8 {
	for {
		p := Pair{High: uint8(src.IntN(2)), Low: uint8(src.IntN(2))}
		if s := p.State(); s.Legal() {
			return uint8(s)
		}
	}
}
