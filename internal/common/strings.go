package common

import "strings"

// UnknownStr is the String() fallback for enum values outside their range.
const UnknownStr = "unknown"

// SplitCommaSeparated splits a comma-separated string into trimmed, non-empty parts.
func SplitCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
