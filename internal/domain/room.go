// Package domain contains entity meta-data and the sanitizers applied to
// client-supplied identifiers before any internal use.
package domain

import "regexp"

// DefaultRoomName is used when a client-supplied room id is empty after
// sanitization.
const DefaultRoomName RoomName = "default_room"

type RoomName string

var roomNameStrip = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// SanitizeRoomName strips everything outside [a-zA-Z0-9_-]. The result is
// used both as a registry key and as a chat log filename component, so
// stripping (rather than rejecting) keeps path traversal out of both.
func SanitizeRoomName(raw string) RoomName {
	clean := roomNameStrip.ReplaceAllString(raw, "")
	if clean == "" {
		return DefaultRoomName
	}
	return RoomName(clean)
}
