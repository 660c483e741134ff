// Package log provides logging utilities for torctl.
//
// Its main export is SecureHandler, an slog.Handler wrapper that redacts
// credentials before they reach the log output. torctl handles the Tor
// ControlPort password, and an operator running with --verbose must never
// find that password in a log line or a shell history capture.
package log
