// Package main is tritctl, a command line front end for running trit stability
// simulations and diagnostics without the HTTP service.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
