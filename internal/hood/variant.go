package hood

import (
	"strings"

	"github.com/srg/hoodctl/internal/device"
)

// Variant is the firmware generation of a hood.
type Variant int

const (
	Modern Variant = iota
	Legacy
)

func (v Variant) String() string {
	switch v {
	case Modern:
		return "modern"
	case Legacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// supportedNameMarkers are the advertised-name fragments of known hoods.
var supportedNameMarkers = []string{"SKE", "BERBEL", LegacyNameMarker}

// DetectVariant classifies a peer from its advertisement. Anything not recognizably
// legacy is Modern.
func DetectVariant(name string, services []string) Variant {
	if strings.Contains(strings.ToUpper(name), LegacyNameMarker) {
		return Legacy
	}
	if device.ContainsUUID(services, LegacyServiceUUID) || device.ContainsUUID(services, Legacy2018ServiceUUID) {
		return Legacy
	}
	return Modern
}

// IsSupported reports whether an advertisement looks like a hood at all.
func IsSupported(name string, services []string) bool {
	upper := strings.ToUpper(name)
	for _, m := range supportedNameMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	for _, svc := range []string{ServiceUUID, LegacyServiceUUID, Legacy2018ServiceUUID} {
		if device.ContainsUUID(services, svc) {
			return true
		}
	}
	return false
}
