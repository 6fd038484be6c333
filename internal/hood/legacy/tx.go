package legacy

import "strings"

// TX status text layout, one character per field: "....3LNMHEBFK.A".
const (
	txFanLevelAt     = 4
	txIlluminationAt = 5
	txPostrunAt      = 6
	txCirculationAt  = 7
	txLiftAt         = 8
	txEffectAt       = 9
	txRGBAt          = 10
	txFatFilterAt    = 11
	txCoalFilterAt   = 12
	txAutomaticAt    = 14

	txMinLen = txAutomaticAt + 1
)

// DecodeTX decodes the ASCII status read from the TX characteristic. Text shorter than
// the fixed layout yields an empty reading and false.
func DecodeTX(text string) (Reading, bool) {
	if len(text) < txMinLen {
		return emptyReading(), false
	}

	r := emptyReading()
	if c := text[txFanLevelAt]; c >= '0' && c <= '9' {
		r.FanLevel = min(int(c-'0'), 3)
	}
	r.Active = Active{
		Illumination:        text[txIlluminationAt] == 'L',
		Postrun:             text[txPostrunAt] == 'N',
		Circulation:         text[txCirculationAt] == 'M',
		LiftUp:              text[txLiftAt] == 'H',
		LiftDown:            text[txLiftAt] == 'R',
		Effect:              text[txEffectAt] == 'E',
		RGB:                 text[txRGBAt] == 'B',
		FatFilterSaturated:  text[txFatFilterAt] == 'F',
		CoalFilterSaturated: text[txCoalFilterAt] == 'K',
		Automatic:           text[txAutomaticAt] == 'A',
	}
	return r, true
}

// DecodeTXBytes decodes a raw characteristic value, dropping bytes that are not valid UTF-8.
func DecodeTXBytes(data []byte) (Reading, bool) {
	return DecodeTX(strings.ToValidUTF8(string(data), ""))
}
