package diagnostics

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
)

// MaxRegisterSize bounds a single register analysis
const MaxRegisterSize = 1 << 22

// RegisterReport summarises a random register after a number of cyclic gates
type RegisterReport struct {
	Size             int     `json:"size" msgpack:"size"`
	Seed             uint64  `json:"seed" msgpack:"seed"`
	Cycles           int     `json:"cycles" msgpack:"cycles"`
	Counts           [3]int  `json:"counts" msgpack:"counts"`
	SovereignDensity float64 `json:"sovereign_density" msgpack:"sovereign_density"`
	Mean             float64 `json:"mean" msgpack:"mean"`
	StdDev           float64 `json:"std_dev" msgpack:"std_dev"`
	// ReturnedToOrigin is true when the register equals its initial content,
	// which holds exactly when Cycles is a multiple of 3.
	ReturnedToOrigin bool `json:"returned_to_origin" msgpack:"returned_to_origin"`
}

// AnalyzeRegister builds a seeded random register, applies the cyclic gate cycles
// times and reports the resulting distribution.
func AnalyzeRegister(size int, seed uint64, cycles int) (RegisterReport, error) {
	if size <= 0 || size > MaxRegisterSize {
		return RegisterReport{}, fmt.Errorf("size must be in [1, %d], got %d", MaxRegisterSize, size)
	}
	if cycles < 0 {
		return RegisterReport{}, fmt.Errorf("cycles must be >= 0, got %d", cycles)
	}

	reg := trit.NewRandomRegister(size, trit.NewSource(seed))
	origin := reg.States()
	// Cycle has order 3
	for i := 0; i < cycles%3; i++ {
		reg.Cycle()
	}
	states := reg.States()

	values := make([]float64, len(states))
	for i, s := range states {
		values[i] = float64(s)
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}

	counts := reg.Counts()
	return RegisterReport{
		Size:             size,
		Seed:             seed,
		Cycles:           cycles,
		Counts:           [3]int{counts[0], counts[1], counts[2]},
		SovereignDensity: reg.SovereignDensity(),
		Mean:             mean,
		StdDev:           std,
		ReturnedToOrigin: slices.Equal(origin, states),
	}, nil
}
