package config

import (
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default socks address", func(t *testing.T) {
		t.Parallel()
		if cfg.SocksAddress != DefaultSocksAddress {
			t.Errorf("expected %q, got %q", DefaultSocksAddress, cfg.SocksAddress)
		}
	})

	t.Run("default control endpoint", func(t *testing.T) {
		t.Parallel()
		if cfg.Control.Host != DefaultControlHost {
			t.Errorf("expected %q, got %q", DefaultControlHost, cfg.Control.Host)
		}
		if cfg.Control.Port != DefaultControlPort {
			t.Errorf("expected %d, got %d", DefaultControlPort, cfg.Control.Port)
		}
		if cfg.Control.Password != "" {
			t.Errorf("expected empty password, got %q", cfg.Control.Password)
		}
	})

	t.Run("default timeouts", func(t *testing.T) {
		t.Parallel()
		if cfg.ControlTimeout != DefaultControlTimeout {
			t.Errorf("expected %v, got %v", DefaultControlTimeout, cfg.ControlTimeout)
		}
		if cfg.FetchTimeout != DefaultFetchTimeout {
			t.Errorf("expected %v, got %v", DefaultFetchTimeout, cfg.FetchTimeout)
		}
	})

	t.Run("default config validates", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})
}

func TestControlEndpointAddr(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		endpoint ControlEndpoint
		want     string
	}{
		{
			name:     "default endpoint",
			endpoint: NewControlEndpoint(),
			want:     "localhost:9051",
		},
		{
			name:     "custom host and port",
			endpoint: ControlEndpoint{Host: "127.0.0.1", Port: 19051},
			want:     "127.0.0.1:19051",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.endpoint.Addr(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "valid default config",
			modify:  func(_ *Config) {},
			wantErr: nil,
		},
		{
			name:    "zero control timeout is valid",
			modify:  func(c *Config) { c.ControlTimeout = 0 },
			wantErr: nil,
		},
		{
			name:    "empty control host",
			modify:  func(c *Config) { c.Control.Host = "" },
			wantErr: ErrEmptyControlHost,
		},
		{
			name:    "control port zero",
			modify:  func(c *Config) { c.Control.Port = 0 },
			wantErr: ErrInvalidControlPort,
		},
		{
			name:    "control port too large",
			modify:  func(c *Config) { c.Control.Port = 65536 },
			wantErr: ErrInvalidControlPort,
		},
		{
			name:    "negative control timeout",
			modify:  func(c *Config) { c.ControlTimeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero fetch timeout",
			modify:  func(c *Config) { c.FetchTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero fetch concurrency",
			modify:  func(c *Config) { c.FetchConcurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative max body size",
			modify:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err != tc.wantErr {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	t.Run("data dir ends with app name", func(t *testing.T) {
		t.Parallel()
		if dir := XDGDataDir(); !strings.HasSuffix(dir, AppName) {
			t.Errorf("expected data dir to end with %q, got %q", AppName, dir)
		}
	})

	t.Run("config dir ends with app name", func(t *testing.T) {
		t.Parallel()
		if dir := XDGConfigDir(); !strings.HasSuffix(dir, AppName) {
			t.Errorf("expected config dir to end with %q, got %q", AppName, dir)
		}
	})
}
