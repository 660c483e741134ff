package main

import (
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "torctl" {
			t.Errorf("expected use 'torctl', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
	})

	t.Run("has expected subcommands", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{
			"renew":          false,
			"fetch <url>...": false,
			"check":          false,
			"history":        false,
			"version":        false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Use]; ok {
				want[sub.Use] = true
			}
		}
		for use, found := range want {
			if !found {
				t.Errorf("expected subcommand %q", use)
			}
		}
	})
}

// TestRenewCmdFlags tests renew command flag registration.
func TestRenewCmdFlags(t *testing.T) {
	t.Parallel()

	cmd := NewRenewCmd()

	for _, name := range []string{
		"socks", "control-host", "control-port", "password",
		"control-timeout", "embedded-tor", "tor-timeout", "config",
		"no-history",
	} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag %q on renew command", name)
		}
	}

	t.Run("password flag defaults to empty", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("password")
		if flag.DefValue != "" {
			t.Errorf("expected empty default password, got %q", flag.DefValue)
		}
	})

	t.Run("control-port defaults to 9051", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("control-port")
		if flag.DefValue != "9051" {
			t.Errorf("expected default control port 9051, got %q", flag.DefValue)
		}
	})
}

// TestFetchCmdFlags tests fetch command flag registration.
func TestFetchCmdFlags(t *testing.T) {
	t.Parallel()

	cmd := NewFetchCmd()

	for _, name := range []string{
		"socks", "timeout", "concurrency", "max-body", "user-agent",
	} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag %q on fetch command", name)
		}
	}

	t.Run("socks defaults to local Tor", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("socks")
		if flag.DefValue != "127.0.0.1:9050" {
			t.Errorf("expected default socks 127.0.0.1:9050, got %q", flag.DefValue)
		}
	})
}

// TestFetchCmdRejectsBadTargets tests pre-flight target validation.
func TestFetchCmdRejectsBadTargets(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		url  string
	}{
		{"unsupported scheme", "ftp://example.com/file"},
		{"v2 onion address", "http://facebookcorewwwi.onion/"},
		{"invalid onion address", "http://notarealonionaddress.onion/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewFetchCmd()
			cmd.SetArgs([]string{tc.url})
			if err := cmd.Execute(); err == nil {
				t.Errorf("expected error for %s, got nil", tc.url)
			}
		})
	}
}
