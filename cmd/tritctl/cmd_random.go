package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/diagnostics"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
)

type randomResult struct {
	Seed   uint64                     `json:"seed"`
	Report diagnostics.FairnessReport `json:"report"`
}

func newRandomCmd(opts *rootOptions) *cobra.Command {
	var (
		samples int
		seed    uint64
		alpha   float64
	)

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Sample uniform trits and test them for fairness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				s, err := trit.NewSeed()
				if err != nil {
					return err
				}
				seed = s
			}

			report, err := diagnostics.SampleFairness(trit.NewSource(seed), samples, alpha)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, randomResult{Seed: seed, Report: report})
			}
			fmt.Fprintf(out, "seed:       %d\n", seed)
			fmt.Fprintf(out, "samples:    %d\n", report.Samples)
			for v, c := range report.Counts {
				fmt.Fprintf(out, "  %d: %-10d %.5f\n", v, c, report.Frequencies[v])
			}
			fmt.Fprintf(out, "chi-square: %.4f\n", report.ChiSquare)
			fmt.Fprintf(out, "p-value:    %.4f\n", report.PValue)
			fmt.Fprintf(out, "fair:       %t\n", report.Fair)
			return nil
		},
	}

	cmd.Flags().IntVarP(&samples, "samples", "n", 100_000, "number of trits to draw")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible runs (random if unset)")
	cmd.Flags().Float64Var(&alpha, "alpha", diagnostics.DefaultAlpha, "significance level")
	return cmd
}
