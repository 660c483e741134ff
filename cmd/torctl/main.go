// Package main provides the entry point for the torctl CLI.
//
// torctl manages a local Tor daemon from the outside: it renews the Tor
// session (circuit/identity) over the ControlPort and fetches URLs through
// the Tor SOCKS proxy.
//
// Usage:
//
//	torctl renew
//	torctl fetch <url>...
//	torctl check
//	torctl history
//
// See --help for all available options.
package main

// main is the entry point for torctl.
func main() {
	Execute()
}
