// Package control implements a minimal client for the Tor ControlPort
// protocol.
//
// The ControlPort speaks a line-oriented text protocol: the client writes
// one command per line and the daemon answers each command with one reply
// line that starts with a 3-digit status code ("250" on success). torctl
// only needs the authenticate/signal/quit subset, so the client writes the
// whole command batch in a single operation, accumulates everything the
// daemon sends until it closes the connection, and classifies the
// accumulated reply afterwards. There is no per-command round-trip.
//
// The package deliberately does not cover circuit selection, stream
// isolation, or asynchronous event subscription.
package control
