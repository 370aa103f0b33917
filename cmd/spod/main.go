// Command spod computes and serves Spectral Proper Orthogonal
// Decomposition modes and energy spectra for audio files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spod",
	Short: "Spectral Proper Orthogonal Decomposition over audio snapshots",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
