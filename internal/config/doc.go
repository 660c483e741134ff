// Package config provides configuration structures and utilities for torctl.
// It defines the SOCKS proxy and ControlPort endpoint settings, validation,
// the optional .torctl configuration file, and torrc discovery helpers.
package config
