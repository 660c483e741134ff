package control

import "strings"

// StatusOK is the ControlPort status code for a successful command.
// Every reply line of a fully successful exchange starts with it.
const StatusOK = "250"

// Classify reports whether a raw ControlPort reply represents success for
// every command in the batch.
//
// The reply is split on "\n" and the final element is dropped: the daemon
// terminates its last line with a newline, so the split always produces a
// trailing empty string. Dropping it unconditionally means that a reply
// whose last line is NOT newline-terminated loses that line before
// classification. Tor always terminates its reply lines, so this has not
// been observed in practice, but it is a structural assumption rather than
// a verified protocol guarantee.
//
// A reply is successful iff every remaining line is empty or contains
// StatusOK as a substring. The substring check (rather than a prefix
// check) tolerates "\r\n" line endings and mid-line status repetition.
// An empty reply classifies as success: zero lines, vacuously true.
//
// Classify is a pure function; it never inspects anything but raw.
func Classify(raw string) bool {
	lines := strings.Split(raw, "\n")
	lines = lines[:len(lines)-1]

	for _, line := range lines {
		if line != "" && !strings.Contains(line, StatusOK) {
			return false
		}
	}
	return true
}
