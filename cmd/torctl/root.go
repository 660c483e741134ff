// Package main provides the entry point for the torctl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for torctl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "torctl",
		Short: "Renew Tor sessions and fetch URLs through Tor",
		Long: `torctl talks to a local Tor daemon on two channels: the ControlPort,
used to request a fresh circuit and exit identity (signal newnym), and the
SOCKS proxy, used to route HTTP fetches through the Tor network.

By default torctl expects an external Tor daemon (SOCKS on 127.0.0.1:9050,
ControlPort on localhost:9051). Use --embedded-tor to launch a private
daemon instead.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRenewCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
