package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.  Without a subcommand it serves the
// API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Barbershop booking API",
		SilenceUsage: true,
		RunE:         runServe,
	}
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewPruneTokensCmd())
	return cmd
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}
