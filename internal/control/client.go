package control

import (
	"context"
	"io"
	"log/slog"
	"net"
	"runtime"
	"strings"
	"time"

	"github.com/nao1215/torctl/internal/config"
)

// Channel is the control-channel abstraction used by the rest of torctl.
// It has exactly two implementations: Client, which talks to a real
// ControlPort over TCP, and Unavailable, which always fails.
//
// Design decision: the capability split is an interface selected once at
// startup (see Detect) rather than an "is this environment sandboxed"
// check inside every call. Callers hold a Channel and never care which
// variant they got.
type Channel interface {
	// Send writes the command batch to the ControlPort and returns the
	// full reply accumulated until the daemon closed the connection.
	Send(ctx context.Context, commands []string) (string, error)
}

// Client is the socket-backed Channel implementation.
//
// Each Send opens its own TCP connection; no connection is pooled or
// reused. The endpoint is captured at construction and never changes, so
// concurrent Sends on one Client are safe and independent.
type Client struct {
	// endpoint is the ControlPort endpoint, snapshotted at construction.
	endpoint config.ControlEndpoint

	// timeout bounds the whole exchange (dial, write, wait for close).
	// Zero disables the deadline; Send then waits for peer close
	// indefinitely, which mirrors the raw protocol but is rarely wanted.
	timeout time.Duration

	// logger is used for debug-level protocol logging.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the deadline for a single ControlPort exchange.
// A zero duration disables the deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets a custom logger for protocol-level debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the given ControlPort endpoint.
// The default exchange timeout is config.DefaultControlTimeout.
func NewClient(endpoint config.ControlEndpoint, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		timeout:  config.DefaultControlTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Endpoint returns the endpoint this client talks to.
func (c *Client) Endpoint() config.ControlEndpoint {
	return c.endpoint
}

// Send implements Channel.
//
// The batch is serialized by joining the commands with "\n" and appending
// one trailing "\n", then written in a single operation before any reply
// byte is read. The reply is everything the daemon sends until it closes
// the connection; no line-level parsing happens here (see Classify).
//
// Failure modes:
//   - empty batch: ErrEmptyBatch, no connection is opened
//   - dial/write/read failure or expired deadline: *TransportError with
//     RemediationHint attached
//   - context cancellation: *TransportError wrapping the context error
//
// A successful return means the daemon closed the connection normally; it
// says nothing about whether the commands succeeded. Run Classify over the
// returned reply for that.
func (c *Client) Send(ctx context.Context, commands []string) (string, error) {
	if len(commands) == 0 {
		return "", ErrEmptyBatch
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.endpoint.Addr())
	if err != nil {
		return "", WithHint(&TransportError{Addr: c.endpoint.Addr(), Err: err})
	}
	defer conn.Close() //nolint:errcheck // Read side already consumed until EOF

	if c.timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return "", WithHint(&TransportError{Addr: c.endpoint.Addr(), Err: err})
		}
	}

	// Close the connection early if the context is cancelled while we wait
	// for the daemon. io.ReadAll then returns with a "use of closed
	// connection" error and we surface ctx.Err() instead.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close() //nolint:errcheck // Best effort unblock
		case <-watchDone:
		}
	}()

	payload := strings.Join(commands, "\n") + "\n"
	c.logger.Debug("sending control commands",
		slog.String("addr", c.endpoint.Addr()),
		slog.Int("commands", len(commands)))

	if _, err := conn.Write([]byte(payload)); err != nil {
		return "", WithHint(&TransportError{Addr: c.endpoint.Addr(), Err: err})
	}

	// The ControlPort answers every command and closes the connection after
	// QUIT, so reading until EOF yields the complete reply.
	data, err := io.ReadAll(conn)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", WithHint(&TransportError{Addr: c.endpoint.Addr(), Err: err})
	}

	c.logger.Debug("received control reply", slog.Int("bytes", len(data)))
	return string(data), nil
}

// Unavailable is the Channel implementation for runtimes without raw
// socket capability (e.g., js/wasm builds). Every Send fails with
// ErrUnavailable.
type Unavailable struct{}

// Send implements Channel. It always returns ErrUnavailable.
func (Unavailable) Send(_ context.Context, _ []string) (string, error) {
	return "", ErrUnavailable
}

// Supported reports whether the current runtime can open raw TCP sockets.
// WebAssembly targets run sandboxed without direct socket access.
func Supported() bool {
	return runtime.GOOS != "js" && runtime.GOOS != "wasip1"
}

// Detect returns the Channel implementation for the current runtime:
// a socket-backed Client when raw sockets are available, Unavailable
// otherwise. Call it once at startup and hold on to the result.
func Detect(endpoint config.ControlEndpoint, opts ...Option) Channel {
	if !Supported() {
		return Unavailable{}
	}
	return NewClient(endpoint, opts...)
}
