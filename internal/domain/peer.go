package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxDisplayNameLen  = 36
	DefaultDisplayName = "guest"
)

// SanitizeDisplayName trims and truncates a client-supplied label. A
// missing label gets the placeholder rather than an error; the relay never
// rejects a join over its display name. Truncation is by rune so a
// multi-byte name is never cut into invalid UTF-8.
func SanitizeDisplayName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return DefaultDisplayName
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		name = string([]rune(name)[:MaxDisplayNameLen])
	}
	return name
}
