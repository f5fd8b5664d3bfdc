package trit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegister(t *testing.T) {
	r, err := NewRegister([]uint8{0, 1, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, [4]int{1, 1, 2, 0}, r.Counts())
	assert.InDelta(t, 0.5, r.SovereignDensity(), 1e-12)
}

func TestNewRegister_InvalidValue(t *testing.T) {
	_, err := NewRegister([]uint8{0, 3})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Contains(t, err.Error(), "index 1")
}

func TestRegister_ThreeCyclesIsIdentity(t *testing.T) {
	r := NewRandomRegister(3000, NewSource(0))
	before := r.States()

	r.Cycle()
	assert.NotEqual(t, before, r.States())
	r.Cycle()
	r.Cycle()
	assert.Equal(t, before, r.States())
}

func TestRegister_RandomIsBalanced(t *testing.T) {
	r := NewRandomRegister(30000, NewSource(5))
	counts := r.Counts()
	assert.Zero(t, counts[StateForbidden])
	assert.InDelta(t, 1.0/3.0, r.SovereignDensity(), 0.02)
}

func TestRegister_AtSharesStorage(t *testing.T) {
	r, err := NewRegister([]uint8{1})
	require.NoError(t, err)
	r.At(0).SetBits(Pair{High: 1, Low: 1})
	assert.Equal(t, 1, r.Counts()[StateForbidden])
}

func TestRegister_EmptyDensity(t *testing.T) {
	r, err := NewRegister(nil)
	require.NoError(t, err)
	assert.Zero(t, r.SovereignDensity())
}
