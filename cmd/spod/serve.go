package main

import (
	"github.com/spf13/cobra"

	"github.com/gospod/spod/pkg/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <results-dir>",
	Short: "Serve a computed SPOD results directory over HTTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run(flagAddr, args[0])
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}
