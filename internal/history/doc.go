// Package history persists a journal of Tor session renewal attempts.
//
// Every renewal (successful or not) can be appended to a small SQLite
// database in the XDG data directory. The journal lets an operator answer
// "when did I last rotate my circuit, and did it work" without digging
// through shell history, and feeds the torctl history command.
package history
