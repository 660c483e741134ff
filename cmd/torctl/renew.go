package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/torctl/internal/config"
	"github.com/nao1215/torctl/internal/control"
	"github.com/nao1215/torctl/internal/history"
	"github.com/nao1215/torctl/internal/session"
	"github.com/nao1215/torctl/internal/tor"
)

// NewRenewCmd creates the renew command.
func NewRenewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Request a new Tor circuit and identity (signal newnym)",
		Long: `Renew asks the Tor daemon for a fresh circuit and exit identity.

It connects to the ControlPort, authenticates, sends "signal newnym", and
disconnects. Subsequent traffic through the SOCKS proxy uses the new
identity. The attempt is recorded in the renewal history unless
--no-history is given.

Examples:
  # Renew using a stock local Tor daemon (no ControlPort password)
  torctl renew

  # Renew with a ControlPort password
  torctl renew --password my-secret

  # Renew against a non-default ControlPort
  torctl renew --control-host 10.0.0.5 --control-port 9151`,
		Args: cobra.NoArgs,
		RunE: runRenewCmd,
	}

	addEndpointFlags(cmd)
	cmd.Flags().Bool("no-history", false, "Do not record this renewal in the history database")

	return cmd
}

// runRenewCmd executes the renew command.
func runRenewCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	if !noHistory {
		cfg.SaveHistory = true
		cfg.HistoryDir = config.XDGDataDir()
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	endpoint := cfg.Control
	if cfg.UseEmbeddedTor {
		embedded := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
		logger.Info("starting embedded Tor daemon (this can take a few minutes)")
		if err := embedded.Start(ctx); err != nil {
			return fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		defer func() {
			if err := embedded.Stop(); err != nil {
				logger.Warn("failed to stop embedded Tor", slog.String("error", err.Error()))
			}
		}()

		endpoint, err = embedded.ControlEndpoint()
		if err != nil {
			return err
		}
	}

	channel := control.Detect(endpoint,
		control.WithTimeout(cfg.ControlTimeout),
		control.WithLogger(logger))
	renewer := session.NewRenewer(channel, endpoint.Password,
		session.WithRenewerLogger(logger))

	msg, renewErr := renewer.Renew(ctx)

	if cfg.SaveHistory {
		if err := recordRenewal(ctx, cfg.HistoryDir, msg, renewErr); err != nil {
			// History is a convenience; its failure must not mask the
			// renewal outcome.
			logger.Warn("failed to record renewal history", slog.String("error", err.Error()))
		}
	}

	if renewErr != nil {
		return renewErr
	}

	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

// recordRenewal appends the renewal outcome to the history database.
func recordRenewal(ctx context.Context, dir, msg string, renewErr error) error {
	db, err := history.Open(dir, history.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // Single append, close error is uninteresting

	rec := &history.Record{OK: renewErr == nil, Message: msg}
	if renewErr != nil {
		rec.Message = renewErr.Error()

		var protocolErr *control.ProtocolError
		if errors.As(renewErr, &protocolErr) {
			rec.RawReply = protocolErr.Raw
		}
	}

	return db.Append(ctx, rec)
}
