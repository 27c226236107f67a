package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps the value at
// maxLen bytes. Used for path parameters like vehicle identifiers.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		trimmed = trimmed[:maxLen]
	}
	return trimmed
}
