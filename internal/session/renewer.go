package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/torctl/internal/control"
)

// SuccessMessage is the fixed message returned by a successful renewal.
const SuccessMessage = "Tor session successfully renewed!!"

// Renewer performs Tor session renewal over a control Channel.
//
// The Renewer holds the ControlPort password and the channel; both are
// fixed at construction. Concurrent Renew calls are permitted and race
// independently against the daemon, each over its own connection.
type Renewer struct {
	// channel is the control channel the batch is sent over.
	channel control.Channel

	// password is the ControlPort password used in the authenticate
	// command. Empty means "authenticate with no credential".
	password string

	// logger is used for renewal lifecycle logging.
	logger *slog.Logger
}

// RenewerOption configures a Renewer.
type RenewerOption func(*Renewer)

// WithRenewerLogger sets a custom logger for renewal logging.
func WithRenewerLogger(logger *slog.Logger) RenewerOption {
	return func(r *Renewer) {
		r.logger = logger
	}
}

// NewRenewer creates a Renewer that renews sessions over the given channel
// using the given ControlPort password.
func NewRenewer(channel control.Channel, password string, opts ...RenewerOption) *Renewer {
	r := &Renewer{
		channel:  channel,
		password: password,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Commands returns the command batch a renewal sends.
// Exposed for diagnostics; the password is quoted the way Tor expects
// (double quotes with backslash escapes).
func (r *Renewer) Commands() []string {
	return []string{
		fmt.Sprintf("authenticate %q", r.password),
		"signal newnym",
		"quit",
	}
}

// Renew requests a new Tor circuit and identity.
//
// It sends the authenticate / signal newnym / quit batch, waits for the
// daemon to close the connection, and classifies the accumulated reply.
// On success it returns SuccessMessage. On a transport failure the channel
// error propagates unchanged (it already carries the ControlPort
// remediation hint). On a protocol failure the error embeds the daemon's
// full raw reply for operator diagnosis, plus the same hint.
//
// No retry is performed at any level: every failure surfaces directly to
// the caller.
func (r *Renewer) Renew(ctx context.Context) (string, error) {
	raw, err := r.channel.Send(ctx, r.Commands())
	if err != nil {
		r.logger.Warn("session renewal failed", slog.String("error", err.Error()))
		// WithHint is idempotent, so re-attaching here is safe even though
		// the socket-backed channel already hints its transport errors.
		return "", control.WithHint(err)
	}

	if !control.Classify(raw) {
		r.logger.Warn("control port rejected renewal", slog.Int("reply_bytes", len(raw)))
		return "", control.WithHint(&control.ProtocolError{Raw: raw})
	}

	r.logger.Info("tor session renewed")
	return SuccessMessage, nil
}
