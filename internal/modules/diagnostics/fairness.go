// Package diagnostics provides statistical checks over trit generation and registers.
package diagnostics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
)

// DefaultAlpha is the significance level used to flag an unfair sample
const DefaultAlpha = 0.001

// MaxSamples bounds a single fairness request
const MaxSamples = 5_000_000

// FairnessReport describes a sample of RandomTrit draws
type FairnessReport struct {
	Samples      int        `json:"samples" msgpack:"samples"`
	Counts       [3]int     `json:"counts" msgpack:"counts"`
	Frequencies  [3]float64 `json:"frequencies" msgpack:"frequencies"`
	MaxDeviation float64    `json:"max_deviation" msgpack:"max_deviation"`
	Forbidden    int        `json:"forbidden" msgpack:"forbidden"`
	ChiSquare    float64    `json:"chi_square" msgpack:"chi_square"`
	PValue       float64    `json:"p_value" msgpack:"p_value"`
	Alpha        float64    `json:"alpha" msgpack:"alpha"`
	Fair         bool       `json:"fair" msgpack:"fair"`
}

// SampleFairness draws samples trits from src and tests them against the uniform
// distribution with a chi-square goodness-of-fit test (2 degrees of freedom).
func SampleFairness(src trit.Source, samples int, alpha float64) (FairnessReport, error) {
	if samples <= 0 || samples > MaxSamples {
		return FairnessReport{}, fmt.Errorf("samples must be in [1, %d], got %d", MaxSamples, samples)
	}
	if alpha <= 0 || alpha >= 1 {
		return FairnessReport{}, fmt.Errorf("alpha must be in (0, 1), got %v", alpha)
	}

	var counts [4]int
	for i := 0; i < samples; i++ {
		counts[trit.RandomTrit(src)]++
	}
	return Evaluate([3]int{counts[0], counts[1], counts[2]}, counts[3], alpha), nil
}

// Evaluate scores observed counts of 0, 1 and 2 against the uniform distribution.
func Evaluate(counts [3]int, forbidden int, alpha float64) FairnessReport {
	total := counts[0] + counts[1] + counts[2]
	report := FairnessReport{
		Samples:   total + forbidden,
		Counts:    counts,
		Forbidden: forbidden,
		Alpha:     alpha,
	}
	if total == 0 {
		return report
	}

	observed := make([]float64, 3)
	expected := make([]float64, 3)
	deviations := make([]float64, 3)
	for i, c := range counts {
		observed[i] = float64(c)
		expected[i] = float64(total) / 3.0
		report.Frequencies[i] = float64(c) / float64(total)
		deviations[i] = math.Abs(report.Frequencies[i] - 1.0/3.0)
	}

	report.MaxDeviation = floats.Max(deviations)
	report.ChiSquare = stat.ChiSquare(observed, expected)
	report.PValue = distuv.ChiSquared{K: 2}.Survival(report.ChiSquare)
	report.Fair = forbidden == 0 && report.PValue >= alpha
	return report
}
