package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These match the defaults of a stock Tor daemon installation where
// applicable, so torctl works out of the box against system Tor.
const (
	// DefaultSocksAddress is the standard Tor SOCKS5 proxy address.
	// Port 9050 is the default for the Tor daemon's SOCKS port.
	// We use 127.0.0.1 instead of localhost to avoid DNS resolution overhead
	// and potential issues with IPv6 resolution on some systems.
	DefaultSocksAddress = "127.0.0.1:9050"

	// DefaultControlHost is the default host of the Tor ControlPort.
	// Tor binds the ControlPort to the loopback interface by default.
	DefaultControlHost = "localhost"

	// DefaultControlPort is the default Tor ControlPort.
	// Port 9051 is the conventional ControlPort in torrc examples.
	DefaultControlPort = 9051

	// DefaultControlTimeout bounds a single ControlPort exchange: dial,
	// write the command batch, and wait for the daemon to close the
	// connection. Tor answers control commands locally so 30 seconds is
	// generous; a zero timeout disables the deadline entirely.
	DefaultControlTimeout = 30 * time.Second

	// DefaultFetchTimeout is set to 120 seconds because Tor connections are
	// inherently slower than clearnet connections due to the multiple relay
	// hops. A shorter timeout would produce many false failures for slower
	// hidden services.
	DefaultFetchTimeout = 120 * time.Second

	// DefaultFetchConcurrency is the number of URLs fetched in parallel when
	// multiple targets are given. Higher values may overwhelm the local Tor
	// daemon, which multiplexes everything over a limited set of circuits.
	DefaultFetchConcurrency = 4

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most pages while preventing memory exhaustion
	// from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies torctl in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify tool traffic in their logs.
	DefaultUserAgent = "torctl/1.0 (+https://github.com/nao1215/torctl)"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap. 3 minutes is typically sufficient for most
	// network conditions, but may need to be increased for slow connections.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "torctl"
)

// ControlEndpoint identifies the Tor ControlPort and the credential used to
// authenticate against it.
//
// Design decision: this is a value type captured by the control client at
// construction rather than a package-level mutable variable. A process-wide
// mutable endpoint would let one goroutine change the password while another
// renewal is in flight, making it ambiguous which credential either operation
// authenticates with. Snapshotting at construction removes that hazard.
type ControlEndpoint struct {
	// Host is the ControlPort host, typically "localhost".
	Host string

	// Port is the ControlPort TCP port, typically 9051.
	Port int

	// Password is the ControlPort password. An empty password means
	// "authenticate with no credential", which Tor accepts when no
	// HashedControlPassword is configured and rejects otherwise.
	Password string
}

// NewControlEndpoint returns a ControlEndpoint with the default host and port
// and an empty password.
func NewControlEndpoint() ControlEndpoint {
	return ControlEndpoint{
		Host: DefaultControlHost,
		Port: DefaultControlPort,
	}
}

// Addr returns the endpoint in "host:port" form suitable for net.Dial.
func (e ControlEndpoint) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// Config holds all configuration options for torctl.
// This struct is populated from CLI flags and the optional .torctl file and
// passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, RenewConfig) for simplicity. The number of options is
// manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// SocksAddress is the address of the Tor SOCKS5 proxy in "host:port"
	// format. All HTTP fetches are routed through this proxy.
	SocksAddress string

	// Control is the ControlPort endpoint used for session renewal.
	Control ControlEndpoint

	// ControlTimeout bounds a single ControlPort exchange.
	// Zero disables the deadline; the call then waits for peer close
	// indefinitely.
	ControlTimeout time.Duration

	// FetchTimeout is the per-request timeout for HTTP fetches through Tor.
	FetchTimeout time.Duration

	// FetchConcurrency is the number of URLs fetched concurrently when
	// multiple targets are given.
	FetchConcurrency int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. Zero means the default.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// UseEmbeddedTor launches an embedded Tor daemon instead of connecting
	// to an external one. The SOCKS and control endpoints are then taken
	// from the embedded daemon, not from this configuration.
	//
	// Note: The embedded Tor daemon takes 1-3 minutes to bootstrap and
	// connect to the Tor network on first start.
	UseEmbeddedTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon to bootstrap. Only used when UseEmbeddedTor is true.
	TorStartupTimeout time.Duration

	// HistoryDir is the directory holding the renewal history database.
	// When empty, renewals are not persisted.
	// Defaults to the XDG data directory (~/.local/share/torctl on Linux).
	HistoryDir string

	// SaveHistory indicates whether renewal attempts are recorded in the
	// history database. Automatically true when HistoryDir is configured.
	SaveHistory bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .torctl in the current directory and
	// then in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work against a stock
// Tor installation. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, port
// numbers). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		SocksAddress:      DefaultSocksAddress,
		Control:           NewControlEndpoint(),
		ControlTimeout:    DefaultControlTimeout,
		FetchTimeout:      DefaultFetchTimeout,
		FetchConcurrency:  DefaultFetchConcurrency,
		MaxBodySize:       DefaultMaxBodySize,
		UserAgent:         DefaultUserAgent,
		TorStartupTimeout: DefaultTorStartupTimeout,
	}
}

// XDGDataDir returns the XDG data directory for torctl.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/torctl
// On macOS: ~/Library/Application Support/torctl
// On Windows: %LOCALAPPDATA%\torctl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for torctl.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/torctl
// On macOS: ~/Library/Application Support/torctl
// On Windows: %APPDATA%\torctl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any network operation.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Control.Host == "" {
		return ErrEmptyControlHost
	}

	if c.Control.Port < 1 || c.Control.Port > 65535 {
		return ErrInvalidControlPort
	}

	// A negative control timeout is invalid; zero means "no deadline".
	if c.ControlTimeout < 0 {
		return ErrInvalidTimeout
	}

	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.FetchConcurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
