package hood

import "fmt"

// Status characteristic layout.
const (
	statusFanLevel1Byte  = 0
	statusFanLevel24Byte = 1
	statusLightTopByte   = 2
	statusLightBotByte   = 4
	statusPostrunByte    = 5

	fanLevel1Value = 0x10
	fanLevel2Value = 0x10
	fanLevel3Value = 0x18
	fanLevel4Value = 0x19

	lightOnMask  = 0x10
	postrunMask  = 0x90
	minStatusLen = statusPostrunByte + 1
)

// DecodeStatus turns the three status reads into a Status. Only a status buffer too short
// to hold the postrun byte is an error; short brightness or color reads decode as 0.
func DecodeStatus(name, address string, status, brightness, colors []byte) (Status, error) {
	if len(status) < minStatusLen {
		return Status{}, fmt.Errorf("%w: status is %d bytes, want at least %d", ErrMalformedFrame, len(status), minStatusLen)
	}

	s := Status{
		Name:             name,
		Address:          address,
		LightTopOn:       status[statusLightTopByte]&lightOnMask != 0,
		LightBottomOn:    status[statusLightBotByte]&lightOnMask != 0,
		FanLevel:         decodeFanLevel(status),
		FanPostrunActive: status[statusPostrunByte]&postrunMask == postrunMask,
	}
	s.LightBottomBrightness, s.LightTopBrightness = percentPair(brightness, brightnessBottomOffset, brightnessTopOffset)
	s.LightBottomColor, s.LightTopColor = percentPair(colors, colorBottomOffset, colorTopOffset)

	return NewStatus(s), nil
}

// decodeFanLevel checks the level 1 byte before the shared byte for levels 2..4.
func decodeFanLevel(status []byte) int {
	if status[statusFanLevel1Byte] == fanLevel1Value {
		return 1
	}
	switch status[statusFanLevel24Byte] {
	case fanLevel2Value:
		return 2
	case fanLevel3Value:
		return 3
	case fanLevel4Value:
		return 4
	}
	return 0
}

func percentPair(buf []byte, first, second int) (int, int) {
	if len(buf) <= max(first, second) {
		return 0, 0
	}
	return ByteToPercent(buf[first]), ByteToPercent(buf[second])
}
