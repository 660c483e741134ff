package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/torctl/internal/config"
	"github.com/nao1215/torctl/internal/log"
)

// addEndpointFlags registers the flags shared by commands that talk to the
// Tor daemon (renew, fetch, check).
func addEndpointFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("socks", "s", config.DefaultSocksAddress,
		"Tor SOCKS5 proxy address (host:port)")
	cmd.Flags().String("control-host", config.DefaultControlHost,
		"Tor ControlPort host")
	cmd.Flags().Int("control-port", config.DefaultControlPort,
		"Tor ControlPort port")
	cmd.Flags().StringP("password", "p", "",
		"Tor ControlPort password (empty authenticates without a credential)")
	cmd.Flags().Duration("control-timeout", config.DefaultControlTimeout,
		"Deadline for a single ControlPort exchange (0 disables)")
	cmd.Flags().Bool("embedded-tor", false,
		"Launch a private embedded Tor daemon instead of using an external one")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .torctl in current or home directory)")
}

// buildConfig creates a Config from the shared endpoint flags and the
// optional configuration file.
//
// Precedence: defaults < configuration file < explicit flags. Cobra's
// Changed tracking tells us which flags the user actually set.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	// Load the configuration file first so flags can override it.
	// If the user explicitly specified a path, a missing file is an error;
	// otherwise a missing file just means defaults.
	explicitConfigPath := configPath != ""
	foundPath := config.FindConfigFile(configPath)
	if foundPath != "" {
		cf, err := config.LoadConfigFile(foundPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", foundPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	if cmd.Flags().Changed("socks") {
		if cfg.SocksAddress, err = cmd.Flags().GetString("socks"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("control-host") {
		if cfg.Control.Host, err = cmd.Flags().GetString("control-host"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("control-port") {
		if cfg.Control.Port, err = cmd.Flags().GetInt("control-port"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("password") {
		if cfg.Control.Password, err = cmd.Flags().GetString("password"); err != nil {
			return nil, err
		}
	}

	cfg.ControlTimeout, err = cmd.Flags().GetDuration("control-timeout")
	if err != nil {
		return nil, err
	}

	cfg.UseEmbeddedTor, err = cmd.Flags().GetBool("embedded-tor")
	if err != nil {
		return nil, err
	}

	cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger installs the torctl logger (text handler wrapped in the
// credential-redacting SecureHandler) as the slog default and returns it.
func setupLogger(verbose bool) *slog.Logger {
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT/SIGTERM for graceful
// shutdown.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
