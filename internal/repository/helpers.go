package repository

import (
	"strings"
	"time"
)

const roleSeparator = ";"

// joinRoles serializes a role set for single-column SQLite storage.
func joinRoles(roles []string) string {
	return strings.Join(roles, roleSeparator)
}

// splitRoles parses a role column back into a slice, dropping empties.
func splitRoles(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, r := range strings.Split(s, roleSeparator) {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
