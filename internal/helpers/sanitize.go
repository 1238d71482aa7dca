package helpers

import "strings"

// SanitizeName replaces characters unsuitable for Docker identifiers
// (container names, network names) with underscores. Allows alphanumeric
// characters, hyphen, and underscore.
func SanitizeName(input string) string {
	if input == "" {
		return ""
	}
	var result strings.Builder
	result.Grow(len(input))

	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}
	return result.String()
}

// SafeIDPrefix shortens a container ID to the 12-character form Docker
// prints by default.
func SafeIDPrefix(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
