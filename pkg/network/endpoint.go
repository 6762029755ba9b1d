package network

import "strings"

// IsInproc reports whether endpoint denotes an in-process transport.
// Detection is a substring match, matching the source behavior this
// spec inherits (spec §4.C "Inproc auto-authorization").
func IsInproc(endpoint string) bool {
	return strings.Contains(endpoint, "inproc")
}
