// Package session orchestrates Tor session renewal over the ControlPort.
//
// A renewal is the authenticate / signal newnym / quit command batch: it
// authenticates against the ControlPort, asks Tor for a fresh circuit and
// exit identity, and disconnects. The package composes the batch, hands it
// to the control channel, classifies the reply, and reports a single
// success-or-failure outcome.
package session
