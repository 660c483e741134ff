package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// TorrcNotFound is returned by FindTorrc when no torrc file could be located.
// It is a human-readable placeholder, not a path.
const TorrcNotFound = "not found"

// torrcCandidates returns the conventional torrc locations, most specific
// first. The list covers the packaged locations on Linux and the Homebrew
// and MacPorts locations on macOS, plus per-user files.
func torrcCandidates() []string {
	candidates := []string{
		"/etc/tor/torrc",
		"/usr/local/etc/tor/torrc",
		"/opt/homebrew/etc/tor/torrc",
		"/opt/local/etc/tor/torrc",
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".torrc"),
			filepath.Join(home, ".tor", "torrc"),
		)
	}

	// Tor Browser and some distributions keep torrc under the XDG config dir.
	candidates = append(candidates, filepath.Join(xdg.ConfigHome, "tor", "torrc"))

	return candidates
}

// FindTorrc locates the Tor configuration file on this system.
// It returns the first existing candidate path, or TorrcNotFound when no
// candidate exists or probing fails.
//
// This is a best-effort diagnostic helper used to tell the operator where
// to enable the ControlPort; every failure degrades to TorrcNotFound
// rather than an error because a missing torrc never blocks an operation.
func FindTorrc() string {
	for _, path := range torrcCandidates() {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return path
	}
	return TorrcNotFound
}
