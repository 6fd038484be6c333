package hood

import "fmt"

// FrameLength is the size of every modern command frame and of the color frame.
const FrameLength = 31

const (
	brightnessBottomOffset = 4
	brightnessTopOffset    = 5
	colorBottomOffset      = 6
	colorTopOffset         = 7
)

// brightnessTemplate is the light command. The device reads a brightness byte of zero
// as "off", so callers changing one side pass the other side's current value.
var brightnessTemplate = frame(0x01, 0x63)

// fanFrames are the four fan commands, indexed by level.
var fanFrames = [MaxCommandFanLevel + 1][]byte{
	frame(0x01, 0x61, 0x00, 0x00, 0x00),
	frame(0x01, 0x61, 0x00, 0x00, 0x01),
	frame(0x01, 0x61, 0x00, 0x00, 0x02),
	frame(0x01, 0x61, 0x00, 0x00, 0x03),
}

func frame(prefix ...byte) []byte {
	f := make([]byte, FrameLength)
	copy(f, prefix)
	return f
}

// BrightnessPercentToByte scales 0..100 to 0..255 as round(p*2.55).
// 0 -> 0, 50 -> 128, 100 -> 255.
func BrightnessPercentToByte(pct int) byte {
	return byte((pct*255 + 50) / 100)
}

// ColorPercentToByte scales 0..100 to 0..255 as round(p*255/100).
func ColorPercentToByte(pct int) byte {
	return byte((pct*255 + 50) / 100)
}

// ByteToPercent is the decoder's truncating inverse: floor(v*100/255).
func ByteToPercent(v byte) int {
	return int(v) * 100 / 255
}

func checkPercent(what string, pct *int) error {
	if pct == nil {
		return nil
	}
	if *pct < 0 || *pct > 100 {
		return fmt.Errorf("%w: %s %d outside 0..100", ErrInvalidArgument, what, *pct)
	}
	return nil
}

// EncodeLightBrightness builds the light command. A nil side keeps the template byte.
func EncodeLightBrightness(top, bottom *int) ([]byte, error) {
	if err := checkPercent("top brightness", top); err != nil {
		return nil, err
	}
	if err := checkPercent("bottom brightness", bottom); err != nil {
		return nil, err
	}

	f := append([]byte(nil), brightnessTemplate...)
	if top != nil {
		f[brightnessTopOffset] = BrightnessPercentToByte(*top)
	}
	if bottom != nil {
		f[brightnessBottomOffset] = BrightnessPercentToByte(*bottom)
	}
	return f, nil
}

// EncodeFanLevel returns the fan command for level 0..3.
func EncodeFanLevel(level int) ([]byte, error) {
	if level < 0 || level > MaxCommandFanLevel {
		return nil, fmt.Errorf("%w: fan level %d outside 0..%d", ErrInvalidArgument, level, MaxCommandFanLevel)
	}
	return append([]byte(nil), fanFrames[level]...), nil
}

// ValidateFrameLength must pass before any frame is written.
func ValidateFrameLength(f []byte) error {
	if len(f) != FrameLength {
		return fmt.Errorf("%w: frame is %d bytes, want %d", ErrMalformedFrame, len(f), FrameLength)
	}
	return nil
}

// ApplyColor returns a copy of the color frame read from the device with the requested
// sides overwritten. The read frame must be a full frame; a short read is not patched.
func ApplyColor(current []byte, top, bottom *int) ([]byte, error) {
	if err := checkPercent("top color", top); err != nil {
		return nil, err
	}
	if err := checkPercent("bottom color", bottom); err != nil {
		return nil, err
	}
	if err := ValidateFrameLength(current); err != nil {
		return nil, fmt.Errorf("color frame read back: %w", err)
	}

	f := append([]byte(nil), current...)
	if top != nil {
		f[colorTopOffset] = ColorPercentToByte(*top)
	}
	if bottom != nil {
		f[colorBottomOffset] = ColorPercentToByte(*bottom)
	}
	return f, nil
}
