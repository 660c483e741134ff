// Package tor provides the SOCKS side of torctl: HTTP fetches routed
// through the Tor SOCKS5 proxy, a proxy liveness probe, onion-address
// validation for fetch targets, and optional management of an embedded
// Tor daemon.
//
// The ControlPort side lives in the control package; this package never
// touches the control channel.
package tor
