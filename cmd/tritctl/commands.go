package main

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/pkg/logger"
)

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	jsonOutput bool
	verbose    bool
}

func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	if !o.verbose {
		return zerolog.Nop()
	}
	return logger.New(logger.Config{
		Level:  "debug",
		Pretty: true,
		Output: cmd.ErrOrStderr(),
	})
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tritctl",
		Short: "Run trit stability simulations and diagnostics",
		Long: `tritctl drives the trit cell, the stability corrector and the
fairness diagnostics directly, without starting tritd.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log corrector activity to stderr")

	rootCmd.AddCommand(
		newSimulateCmd(opts),
		newRandomCmd(opts),
		newGatesCmd(opts),
	)
	return rootCmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
