// Package report renders the renewal history in human-readable formats.
//
// Two writers are provided: a plain-text writer for terminal display and a
// Markdown writer for documentation and sharing.
package report
