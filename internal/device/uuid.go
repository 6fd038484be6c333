package device

import (
	"strings"
)

const sigBaseSuffix = "00001000800000805f9b34fb"

// NormalizeUUID converts a UUID string to the internal format (lowercase, no dashes).
// Handles both dashed and already normalized forms and strips a 0x prefix.
// Full 128-bit UUIDs in Bluetooth SIG base form (0000xxxx-0000-1000-8000-00805f9b34fb)
// are shortened to their 16-bit form (xxxx), which is also how go-ble prints them.
// Returns "" for anything that is not hex.
func NormalizeUUID(uuid string) string {
	s := strings.ToLower(strings.TrimSpace(uuid))
	s = strings.TrimPrefix(s, "0x")
	s = strings.ReplaceAll(s, "-", "")
	if s == "" {
		return ""
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return ""
		}
	}
	switch len(s) {
	case 4, 8:
		return s
	case 32:
		if strings.HasPrefix(s, "0000") && strings.HasSuffix(s, sigBaseSuffix) {
			return s[4:8]
		}
		return s
	default:
		return ""
	}
}

// NormalizeUUIDs normalizes a slice of UUID strings, dropping invalid entries.
func NormalizeUUIDs(uuids []string) []string {
	result := make([]string, 0, len(uuids))
	for _, u := range uuids {
		if n := NormalizeUUID(u); n != "" {
			result = append(result, n)
		}
	}
	return result
}

// ContainsUUID reports whether want (any textual form) is present in uuids.
func ContainsUUID(uuids []string, want string) bool {
	w := NormalizeUUID(want)
	if w == "" {
		return false
	}
	for _, u := range uuids {
		if NormalizeUUID(u) == w {
			return true
		}
	}
	return false
}

// ShortenUUID returns a truncated version of a UUID for display purposes.
func ShortenUUID(uuid string) string {
	if len(uuid) > 8 {
		return uuid[:8]
	}
	return uuid
}
