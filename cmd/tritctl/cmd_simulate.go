package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/stability"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
)

type simulateResult struct {
	Seed         uint64           `json:"seed"`
	Initial      int              `json:"initial"`
	Params       stability.Params `json:"params"`
	Report       stability.Report `json:"report"`
	FinalState   string           `json:"final_state"`
	Corrections  uint64           `json:"corrections"`
	MetricFactor float64          `json:"metric_factor"`
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var (
		initial int
		steps   uint32
		seed    uint64
		params  = stability.DefaultParams()
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one corrector over a fresh cell and print its report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				s, err := trit.NewSeed()
				if err != nil {
					return err
				}
				seed = s
			}

			cell, err := trit.New(initial)
			if err != nil {
				return err
			}

			corrector, err := stability.NewCorrector(cell,
				stability.WithParams(params),
				stability.WithSeed(seed),
				stability.WithLogger(opts.logger(cmd)),
			)
			if err != nil {
				return err
			}

			report := corrector.Run(steps)
			res := simulateResult{
				Seed:         seed,
				Initial:      initial,
				Params:       corrector.Params(),
				Report:       report,
				FinalState:   corrector.State().String(),
				Corrections:  corrector.Corrections(),
				MetricFactor: corrector.MetricFactor(),
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, res)
			}
			fmt.Fprintf(out, "seed:          %d\n", res.Seed)
			fmt.Fprintf(out, "steps:         %d\n", res.Report.Steps)
			fmt.Fprintf(out, "corrections:   %d\n", res.Report.Corrections)
			fmt.Fprintf(out, "coherence:     %.6f\n", res.Report.Coherence)
			fmt.Fprintf(out, "final state:   %s\n", res.FinalState)
			fmt.Fprintf(out, "metric factor: %.6f\n", res.MetricFactor)
			return nil
		},
	}

	cmd.Flags().IntVarP(&initial, "initial", "i", 0, "initial trit value (0, 1 or 2)")
	cmd.Flags().Uint32VarP(&steps, "steps", "n", 1000, "number of evolution steps")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible runs (random if unset)")
	cmd.Flags().Float64Var(&params.NoiseProbability, "noise", params.NoiseProbability, "noise probability per step")
	cmd.Flags().Float64Var(&params.DecayFactor, "decay", params.DecayFactor, "coherence decay per correction")
	cmd.Flags().Float64Var(&params.RecoveryFactor, "recovery", params.RecoveryFactor, "coherence recovery per stable step")
	return cmd
}
