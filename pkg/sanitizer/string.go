package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses runs of whitespace into
// single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeReason cleans up the free-text reason for an appointment.
func NormalizeReason(reason string) string {
	return TrimAndNormalize(reason)
}

// NormalizeNotes cleans up optional clinical notes, preserving line breaks.
func NormalizeNotes(notes string) string {
	lines := strings.Split(notes, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		line = TrimAndNormalize(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
