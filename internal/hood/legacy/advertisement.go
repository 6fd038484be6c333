package legacy

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Hex string offsets within the manufacturer data.
const (
	advFanLevelAt       = 12
	advAutoRunResetAt   = 14
	advFiltersAt        = 15
	advLightingAt       = 16
	advStateAt          = 17
	advCurveAt          = 18
	advDimmerFeaturesAt = 22
	advFeaturesAt       = 23
	advHoursAt          = 24

	advMinHexLen = advStateAt + 1
)

// DecodeAdvertisement decodes raw manufacturer data. ok is false when the payload
// carries no usable state; the zero Reading is returned then.
func DecodeAdvertisement(payload []byte) (Reading, bool) {
	return DecodeAdvertisementHex(hex.EncodeToString(payload))
}

// DecodeAdvertisementHex decodes the hex rendering of manufacturer data. Spaces are
// ignored and case does not matter.
func DecodeAdvertisementHex(s string) (Reading, bool) {
	s = strings.ToLower(strings.ReplaceAll(s, " ", ""))
	if len(s) < advMinHexLen {
		return Reading{}, false
	}
	for i := 0; i < len(s); i++ {
		if !isHex(s[i]) {
			return Reading{}, false
		}
	}

	r := emptyReading()
	r.FanLevel = min(hexByte(s, advFanLevelAt), 3)

	n14 := nibble(s, advAutoRunResetAt)
	n15 := nibble(s, advFiltersAt)
	n16 := nibble(s, advLightingAt)
	n17 := nibble(s, advStateAt)
	n22 := nibble(s, advDimmerFeaturesAt)
	n23 := nibble(s, advFeaturesAt)

	r.Active = Active{
		Illumination:        n17&0b0001 != 0,
		Postrun:             n17&0b0010 != 0,
		Circulation:         n17&0b0100 != 0,
		LiftUp:              n17&0b1000 != 0,
		LiftDown:            n16&0b0001 != 0,
		Effect:              n16&0b0010 != 0,
		RGB:                 n16&0b0100 != 0,
		FatFilterSaturated:  n16&0b1000 != 0,
		CoalFilterSaturated: n15&0b0001 != 0,
		Automatic:           n15&0b1000 != 0,
		AutoRunReset:        n14&0b0001 != 0,
	}
	r.Features = Features{
		EffectLight:  n23&0b0001 != 0,
		Circulation:  n23&0b0010 != 0,
		RGB:          n23&0b0100 != 0,
		Lift:         n23&0b1000 != 0,
		Dimmer:       n22&0b0010 != 0,
		AutoTrailing: n22&0b0100 != 0,
		Intensive:    n22&0b1000 != 0,
	}

	if len(s) >= advCurveAt+2 {
		r.Curve = hexByte(s, advCurveAt)
	}
	if len(s) >= advHoursAt+4 {
		if v, err := strconv.ParseUint(s[advHoursAt:advHoursAt+4], 16, 16); err == nil {
			r.OperatingHours = int(v)
		}
	}
	return r, true
}

// nibble returns 0 past the end of s, like a missing field.
func nibble(s string, at int) int {
	if at >= len(s) {
		return 0
	}
	v, _ := strconv.ParseUint(s[at:at+1], 16, 8)
	return int(v)
}

func hexByte(s string, at int) int {
	if at+1 >= len(s) {
		return 0
	}
	v, _ := strconv.ParseUint(s[at:at+2], 16, 8)
	return int(v)
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}
