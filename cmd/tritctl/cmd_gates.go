package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
)

// gateRow is the action of each single-cell gate on one input pair
type gateRow struct {
	Input       string `json:"input"`
	Bits        string `json:"bits"`
	CycleNext   string `json:"cycle_next"`
	SwapZeroOne string `json:"swap_zero_one"`
	SwapOneTwo  string `json:"swap_one_two"`
	Measure     string `json:"measure"`
}

func applyGate(p trit.Pair, gate func(*trit.Cell)) string {
	c := &trit.Cell{}
	c.SetBits(p)
	gate(c)
	return c.Inspect().String()
}

func gateTable() []gateRow {
	pairs := []trit.Pair{{High: 0, Low: 0}, {High: 0, Low: 1}, {High: 1, Low: 0}, {High: 1, Low: 1}}
	rows := make([]gateRow, 0, len(pairs))
	for _, p := range pairs {
		c := &trit.Cell{}
		c.SetBits(p)

		measure := "leak"
		if v, err := c.Measure(); err == nil {
			measure = fmt.Sprintf("%d", v)
		}

		rows = append(rows, gateRow{
			Input:       p.State().String(),
			Bits:        fmt.Sprintf("%d%d", p.High, p.Low),
			CycleNext:   applyGate(p, (*trit.Cell).CycleNext),
			SwapZeroOne: applyGate(p, (*trit.Cell).SwapZeroOne),
			SwapOneTwo:  applyGate(p, (*trit.Cell).SwapOneTwo),
			Measure:     measure,
		})
	}
	return rows
}

func newGatesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "gates",
		Short: "Print the state table of the single-cell gates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := gateTable()
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, rows)
			}
			fmt.Fprintf(out, "%-10s %-4s %-10s %-10s %-10s %s\n", "input", "bits", "cycle", "swap01", "swap12", "measure")
			for _, r := range rows {
				fmt.Fprintf(out, "%-10s %-4s %-10s %-10s %-10s %s\n", r.Input, r.Bits, r.CycleNext, r.SwapZeroOne, r.SwapOneTwo, r.Measure)
			}
			return nil
		},
	}
}
