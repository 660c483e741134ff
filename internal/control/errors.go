package control

import (
	"errors"
	"fmt"
	"strings"
)

// RemediationHint is appended to ControlPort errors to tell the operator
// how to fix the most common cause: the ControlPort not being enabled at
// all. The text is fixed so that WithHint can detect and skip a second
// attachment.
const RemediationHint = `Please make sure the ControlPort is enabled in your torrc configuration file (e.g., "ControlPort 9051").`

// protocolErrorPreamble opens every ProtocolError message. Kept as its own
// constant because callers grep for it in logs and tests assert on it.
const protocolErrorPreamble = "Error communicating with Tor ControlPort"

// Sentinel errors for the control channel.
var (
	// ErrUnavailable is returned when the current runtime has no raw
	// socket capability and the control channel cannot operate at all.
	ErrUnavailable = errors.New("control channel is unavailable in this environment")

	// ErrEmptyBatch is returned when Send is called with no commands.
	// An empty batch would open a connection only to close it again and
	// always indicates a caller bug.
	ErrEmptyBatch = errors.New("empty command batch")
)

// TransportError is a connection-level failure: refused, reset, DNS
// failure, or a deadline expiring before the daemon closed the connection.
// The underlying error is preserved for errors.Is/As inspection.
type TransportError struct {
	// Addr is the control endpoint address the client tried to reach.
	Addr string

	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("control connection to %s failed: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError means the connection succeeded and closed normally, but the
// accumulated reply contained at least one non-250 line. The full raw reply
// is embedded verbatim so the operator can see exactly what the daemon said.
type ProtocolError struct {
	// Raw is the complete reply received from the daemon.
	Raw string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return protocolErrorPreamble + "\n" + e.Raw
}

// WithHint appends RemediationHint to an error's message.
//
// The append is idempotent: if the error text already contains the hint
// (for example because the error was re-attached across calls), the error
// is returned unchanged. Wrapping with %w keeps errors.Is/As working on
// the original error.
func WithHint(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), RemediationHint) {
		return err
	}
	return fmt.Errorf("%w\n%s", err, RemediationHint)
}
