// Package output provides output format selection and report emission.
package output

import (
	"fmt"
	"strings"
)

// Format represents the report output format.
type Format string

const (
	// FormatText is the human-readable multi-section text report (default).
	FormatText Format = "text"

	// FormatJSON is the pretty-printed machine-readable report.
	FormatJSON Format = "json"
)

// ParseFormat parses a format string into a Format value.
// Accepts: "text", "json" (case-insensitive).
// Returns an error for invalid format values.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected text or json)", s)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}
