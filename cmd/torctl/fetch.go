package main

import (
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/torctl/internal/config"
	"github.com/nao1215/torctl/internal/tor"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>...",
		Short: "Fetch URLs through the Tor SOCKS proxy",
		Long: `Fetch performs HTTP GET requests routed through the Tor SOCKS5 proxy.

With a single URL the response body is written to stdout. With multiple
URLs the fetches run concurrently and a status summary is printed per URL.
Onion targets are validated (v3 checksum) before any connection is made.

Examples:
  # Fetch one page through Tor and print the body
  torctl fetch https://check.torproject.org/

  # Check several onion services concurrently
  torctl fetch http://site1.onion/ http://site2.onion/ --concurrency 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFetchCmd,
	}

	addEndpointFlags(cmd)
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Per-request timeout")
	cmd.Flags().IntP("concurrency", "b", config.DefaultFetchConcurrency,
		"Number of URLs fetched concurrently")
	cmd.Flags().Int64("max-body", config.DefaultMaxBodySize,
		"Maximum response body bytes to read per URL")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.FetchConcurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return err
	}
	if cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body"); err != nil {
		return err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Reject malformed targets before opening any circuit.
	for _, rawURL := range args {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid URL %s: %w", rawURL, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("unsupported scheme in %s: only http and https are fetched", rawURL)
		}
		if err := tor.ValidateTarget(parsed.Hostname()); err != nil {
			return fmt.Errorf("invalid target %s: %w", rawURL, err)
		}
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	socksAddr := cfg.SocksAddress
	if cfg.UseEmbeddedTor {
		embedded := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
		logger.Info("starting embedded Tor daemon (this can take a few minutes)")
		if err := embedded.Start(ctx); err != nil {
			return fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		defer embedded.Stop() //nolint:errcheck // Best effort shutdown on exit
		socksAddr = embedded.SocksAddr()
	}

	client, err := tor.NewClient(socksAddr, cfg.FetchTimeout,
		tor.WithUserAgent(cfg.UserAgent),
		tor.WithMaxBodySize(cfg.MaxBodySize))
	if err != nil {
		return err
	}

	// Single URL: stream the body to stdout, curl style.
	if len(args) == 1 {
		result, err := client.Fetch(ctx, args[0])
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(result.Body); err != nil {
			return err
		}
		if result.Truncated {
			fmt.Fprintf(os.Stderr, "\n(body truncated at %d bytes)\n", cfg.MaxBodySize)
		}
		return nil
	}

	// Multiple URLs: fetch concurrently and summarize.
	// errgroup with SetLimit keeps at most FetchConcurrency circuits busy
	// while preserving a single error path for cancellation.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.FetchConcurrency)

	var mu sync.Mutex
	failed := 0

	for _, rawURL := range args {
		g.Go(func() error {
			result, err := client.Fetch(ctx, rawURL)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "ERROR  %s  %v\n", rawURL, err)
				// Keep fetching the remaining URLs; a single bad target
				// shouldn't abort the batch.
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-6d %s  %d bytes\n", result.StatusCode, result.URL, len(result.Body))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fetches failed", failed, len(args))
	}
	return nil
}
