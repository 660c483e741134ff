package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/torctl/internal/config"
	"github.com/nao1215/torctl/internal/control"
	"github.com/nao1215/torctl/internal/tor"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the Tor SOCKS proxy and ControlPort",
		Long: `Check probes both channels torctl depends on and reports their state:

  - the SOCKS proxy, via a SOCKS5 protocol handshake
  - the ControlPort, via an authenticate/quit exchange

It also reports where your torrc configuration file appears to live,
which is where the ControlPort is enabled if the control check fails.`,
		Args: cobra.NoArgs,
		RunE: runCheckCmd,
	}

	addEndpointFlags(cmd)

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	out := cmd.OutOrStdout()
	healthy := true

	// SOCKS side: a real SOCKS5 handshake, not just a TCP connect.
	client, err := tor.NewClient(cfg.SocksAddress, cfg.FetchTimeout)
	if err != nil {
		return err
	}
	status := client.CheckConnection(ctx)
	fmt.Fprintf(out, "SOCKS proxy  %-22s %s\n", cfg.SocksAddress, status)
	if status != tor.ProxyStatusOK {
		healthy = false
	}

	// Control side: authenticate and disconnect. This exercises the same
	// path a renewal takes, minus the newnym signal.
	channel := control.Detect(cfg.Control,
		control.WithTimeout(cfg.ControlTimeout),
		control.WithLogger(logger))
	raw, err := channel.Send(ctx, []string{
		fmt.Sprintf("authenticate %q", cfg.Control.Password),
		"quit",
	})
	switch {
	case err != nil:
		fmt.Fprintf(out, "ControlPort  %-22s unreachable\n", cfg.Control.Addr())
		healthy = false
	case !control.Classify(raw):
		fmt.Fprintf(out, "ControlPort  %-22s authentication rejected\n", cfg.Control.Addr())
		healthy = false
	default:
		fmt.Fprintf(out, "ControlPort  %-22s OK\n", cfg.Control.Addr())
	}

	fmt.Fprintf(out, "torrc        %s\n", config.FindTorrc())

	if !healthy {
		return fmt.Errorf("tor daemon is not fully reachable\n%s", control.RemediationHint)
	}

	fmt.Fprintln(out, "All checks passed.")
	return nil
}
