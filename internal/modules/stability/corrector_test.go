package stability

import (
	"bytes"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
)

// scriptedSource replays fixed draws, then falls back to "no noise" / bit 0.
type scriptedSource struct {
	floats []float64
	ints   []int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func quietParams(noise float64) Params {
	p := DefaultParams()
	p.NoiseProbability = noise
	return p
}

func TestNewCorrector_Defaults(t *testing.T) {
	c, err := NewCorrector(trit.MustNew(2))
	require.NoError(t, err)

	assert.Equal(t, 1.0, c.Coherence())
	assert.Equal(t, DefaultParams(), c.Params())
	assert.Equal(t, trit.StateTwo, c.State())
	assert.Zero(t, c.Corrections())
}

func TestNewCorrector_NilCellStartsAtVoid(t *testing.T) {
	c, err := NewCorrector(nil)
	require.NoError(t, err)
	assert.Equal(t, trit.StateZero, c.State())
}

func TestNewCorrector_RejectsInvalidParams(t *testing.T) {
	_, err := NewCorrector(nil, WithParams(Params{NoiseProbability: 2, DecayFactor: 0.9, RecoveryFactor: 1}))
	assert.Error(t, err)
}

func TestRun_ZeroStepsIsNoop(t *testing.T) {
	c, err := NewCorrector(trit.MustNew(1), WithSeed(1))
	require.NoError(t, err)

	report := c.Run(0)
	assert.Equal(t, Report{Coherence: 1.0, Corrections: 0, Steps: 0}, report)
	assert.Equal(t, trit.StateOne, c.State())
	assert.Zero(t, c.TotalSteps())
}

func TestRun_NoNoiseIsStable(t *testing.T) {
	for _, steps := range []uint32{1, 10, 1000} {
		c, err := NewCorrector(trit.MustNew(1), WithSeed(9), WithParams(quietParams(0)))
		require.NoError(t, err)

		report := c.Run(steps)
		assert.Equal(t, uint32(0), report.Corrections)
		assert.Equal(t, 1.0, report.Coherence)
		assert.Equal(t, steps, report.Steps)
		assert.Equal(t, trit.StateOne, c.State())
	}
}

func TestRun_LeakOnLastStepLowersCoherence(t *testing.T) {
	floats := make([]float64, 20)
	for i := range floats {
		floats[i] = 0.5
	}
	floats[19] = 0.0
	// From 01, flipping the high bit lands on the forbidden pair 11.
	src := &scriptedSource{floats: floats, ints: []int{1}}

	c, err := NewCorrector(trit.MustNew(1), WithSource(src))
	require.NoError(t, err)

	report := c.Run(20)
	assert.GreaterOrEqual(t, report.Corrections, uint32(1))
	assert.Less(t, report.Coherence, 1.0)
	assert.InDelta(t, 0.95, report.Coherence, 1e-12)
	assert.Equal(t, trit.StateZero, c.State())
}

func TestRun_SeededNoiseProducesCorrections(t *testing.T) {
	c, err := NewCorrector(trit.MustNew(1), WithSeed(2024), WithParams(quietParams(1.0)))
	require.NoError(t, err)

	report := c.Run(200)
	assert.GreaterOrEqual(t, report.Corrections, uint32(1))
	assert.Greater(t, report.Coherence, 0.0)
	assert.LessOrEqual(t, report.Coherence, 1.0)
	assert.True(t, c.State().Legal())
}

func TestRun_ReproducibleWithSeed(t *testing.T) {
	a, err := NewCorrector(trit.MustNew(2), WithSeed(77))
	require.NoError(t, err)
	b, err := NewCorrector(trit.MustNew(2), WithSeed(77))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Run(50), b.Run(50))
	}
	assert.Equal(t, a.Bits(), b.Bits())
}

func TestRun_CoherenceMovesOnlyByEvents(t *testing.T) {
	c, err := NewCorrector(trit.MustNew(1), WithSeed(5), WithParams(quietParams(0.5)))
	require.NoError(t, err)

	prev := c.Coherence()
	prevCorrections := c.Corrections()
	for i := 0; i < 500; i++ {
		c.Run(1)
		cur := c.Coherence()
		if c.Corrections() > prevCorrections {
			assert.Less(t, cur, prev)
		} else {
			assert.GreaterOrEqual(t, cur, prev)
			assert.LessOrEqual(t, cur, 1.0)
		}
		assert.Greater(t, cur, 0.0)
		prev, prevCorrections = cur, c.Corrections()
	}
}

func TestRun_CorrectsExternallyForcedLeak(t *testing.T) {
	c, err := NewCorrector(trit.MustNew(2), WithParams(quietParams(0)))
	require.NoError(t, err)

	c.InjectLeak()
	assert.Equal(t, trit.StateForbidden, c.State())

	report := c.Run(1)
	assert.Equal(t, uint32(1), report.Corrections)
	assert.InDelta(t, 0.95, report.Coherence, 1e-12)
	assert.Equal(t, trit.StateZero, c.State())
}

func TestRun_NotifiesObserver(t *testing.T) {
	var events []CorrectionEvent
	c, err := NewCorrector(trit.MustNew(0),
		WithParams(quietParams(0)),
		WithObserver(ObserverFunc(func(ev CorrectionEvent) {
			events = append(events, ev)
		})),
	)
	require.NoError(t, err)

	c.Run(3)
	c.InjectLeak()
	c.Run(2)

	require.Len(t, events, 1)
	assert.Equal(t, uint64(4), events[0].Step)
	assert.Equal(t, uint64(1), events[0].Corrections)
	assert.InDelta(t, 0.95, events[0].Coherence, 1e-12)
}

func TestRun_LogsCorrections(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	c, err := NewCorrector(trit.MustNew(0), WithParams(quietParams(0)), WithLogger(log))
	require.NoError(t, err)

	c.InjectLeak()
	c.Run(1)
	assert.Contains(t, buf.String(), "Leak corrected")
	assert.Contains(t, buf.String(), `"component":"corrector"`)
}

func TestStabilize(t *testing.T) {
	c, err := NewCorrector(trit.MustNew(1))
	require.NoError(t, err)

	assert.False(t, c.Stabilize())
	assert.Equal(t, trit.StateOne, c.State())

	fixed := 0
	for i := 0; i < 5; i++ {
		c.InjectLeak()
		if c.Stabilize() {
			fixed++
		}
	}
	assert.Equal(t, 5, fixed)
	assert.Equal(t, uint64(5), c.Corrections())
	assert.Equal(t, trit.StateZero, c.State())
	assert.Equal(t, 1.0, c.Coherence())
}

func TestMetricFactor(t *testing.T) {
	c, err := NewCorrector(nil, WithParams(quietParams(0)))
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, c.MetricFactor(), 1e-12)

	c.InjectLeak()
	c.Run(1)
	assert.InDelta(t, math.Sqrt(1+0.95*0.95), c.MetricFactor(), 1e-12)
}

func TestParams_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"defaults", DefaultParams(), false},
		{"no noise", Params{0, 0.95, 1.01}, false},
		{"always noise", Params{1, 0.5, 1}, false},
		{"negative noise", Params{-0.1, 0.95, 1.01}, true},
		{"noise above one", Params{1.1, 0.95, 1.01}, true},
		{"zero decay", Params{0.1, 0, 1.01}, true},
		{"decay of one", Params{0.1, 1, 1.01}, true},
		{"recovery below one", Params{0.1, 0.95, 0.99}, true},
		{"NaN noise", Params{math.NaN(), 0.95, 1.01}, true},
		{"infinite recovery", Params{0.1, 0.95, math.Inf(1)}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRun_CoherenceStaysPositiveAndRecovers(t *testing.T) {
	c, err := NewCorrector(trit.MustNew(1), WithSeed(3), WithParams(Params{1, 0.95, 1.01}))
	require.NoError(t, err)

	c.Run(1_000_000)
	assert.GreaterOrEqual(t, c.Coherence(), MinCoherence)

	harsh, err := NewCorrector(trit.MustNew(0), WithParams(Params{0, 1e-200, 1.01}))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		harsh.InjectLeak()
		harsh.Run(1)
	}
	assert.Equal(t, MinCoherence, harsh.Coherence())

	harsh.Run(1000)
	assert.Greater(t, harsh.Coherence(), MinCoherence)
	assert.InDelta(t, MinCoherence*math.Pow(1.01, 1000), harsh.Coherence(), 1e-12)
}
