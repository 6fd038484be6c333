package hood_test

import (
	"testing"

	"github.com/srg/hoodctl/internal/hood"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestEncodeLightBrightness_Layout(t *testing.T) {
	f, err := hood.EncodeLightBrightness(intp(100), intp(50))
	require.NoError(t, err)
	require.Len(t, f, hood.FrameLength)

	assert.Equal(t, []byte{0x01, 0x63, 0x00, 0x00, 0x80, 0xff}, f[:6], "bottom MUST go to offset 4 and top to offset 5")
	for i := 6; i < hood.FrameLength; i++ {
		assert.Zero(t, f[i], "byte %d MUST keep the template value", i)
	}
}

func TestEncodeLightBrightness_OmittedSideKeepsTemplate(t *testing.T) {
	f, err := hood.EncodeLightBrightness(intp(20), nil)
	require.NoError(t, err)
	assert.Equal(t, byte(51), f[5])
	assert.Zero(t, f[4])

	f, err = hood.EncodeLightBrightness(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x01, 0x63}, make([]byte, 29)...), f)
}

func TestEncodeLightBrightness_RejectsOutOfRange(t *testing.T) {
	for _, tc := range []struct {
		name        string
		top, bottom *int
	}{
		{"top above 100", intp(101), nil},
		{"top negative", intp(-1), nil},
		{"bottom above 100", nil, intp(150)},
		{"both bad", intp(200), intp(-5)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f, err := hood.EncodeLightBrightness(tc.top, tc.bottom)
			assert.ErrorIs(t, err, hood.ErrInvalidArgument)
			assert.Nil(t, f)
		})
	}
}

func TestBrightnessRoundTrip(t *testing.T) {
	// round(p*2.55) then floor(v*100/255): exact at the ends, at most one unit low in between.
	for p := 0; p <= 100; p++ {
		f, err := hood.EncodeLightBrightness(intp(p), nil)
		require.NoError(t, err)

		brightness := make([]byte, 6)
		brightness[5] = f[5]
		st, err := hood.DecodeStatus("", "", make([]byte, 6), brightness, nil)
		require.NoError(t, err)

		assert.InDelta(t, p, st.LightTopBrightness, 1, "p=%d MUST round-trip within one unit", p)
		assert.Equal(t, int(f[5])*100/255, st.LightTopBrightness)
	}

	assert.Equal(t, byte(0), hood.BrightnessPercentToByte(0))
	assert.Equal(t, byte(128), hood.BrightnessPercentToByte(50))
	assert.Equal(t, byte(255), hood.BrightnessPercentToByte(100))
	assert.Equal(t, 50, hood.ByteToPercent(128), "p=50 MUST decode back to 50")
	assert.Equal(t, 100, hood.ByteToPercent(255))
}

func TestEncodeFanLevel(t *testing.T) {
	for level := 0; level <= 3; level++ {
		f, err := hood.EncodeFanLevel(level)
		require.NoError(t, err)
		require.NoError(t, hood.ValidateFrameLength(f))
		assert.Equal(t, []byte{0x01, 0x61, 0x00, 0x00, byte(level)}, f[:5])
	}

	for _, level := range []int{-1, 4, 7} {
		_, err := hood.EncodeFanLevel(level)
		assert.ErrorIs(t, err, hood.ErrInvalidArgument, "level %d MUST be rejected", level)
	}
}

func TestEncodeFanLevel_ReturnsCopy(t *testing.T) {
	f, err := hood.EncodeFanLevel(2)
	require.NoError(t, err)
	f[4] = 0xee

	again, err := hood.EncodeFanLevel(2)
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), again[4], "precomputed frames MUST NOT be shared with callers")
}

func TestValidateFrameLength(t *testing.T) {
	for _, n := range []int{0, 1, 30, 32, 255} {
		err := hood.ValidateFrameLength(make([]byte, n))
		assert.ErrorIs(t, err, hood.ErrMalformedFrame, "length %d MUST be rejected", n)
	}
	assert.NoError(t, hood.ValidateFrameLength(make([]byte, 31)))
}

func TestApplyColor(t *testing.T) {
	current := make([]byte, hood.FrameLength)
	for i := range current {
		current[i] = byte(i)
	}

	f, err := hood.ApplyColor(current, intp(100), nil)
	require.NoError(t, err)
	assert.Equal(t, byte(255), f[7], "top color MUST land on offset 7")
	assert.Equal(t, byte(6), f[6], "bottom color MUST be preserved")
	assert.Equal(t, byte(7), current[7], "input frame MUST NOT be modified")

	f, err = hood.ApplyColor(current, intp(0), intp(50))
	require.NoError(t, err)
	assert.Equal(t, byte(0), f[7])
	assert.Equal(t, byte(128), f[6])
	assert.Equal(t, current[8:], f[8:], "bytes outside the color offsets MUST be preserved")
}

func TestApplyColor_Errors(t *testing.T) {
	_, err := hood.ApplyColor(make([]byte, 8), intp(10), nil)
	assert.ErrorIs(t, err, hood.ErrMalformedFrame, "short read-back MUST NOT be patched")

	_, err = hood.ApplyColor(make([]byte, hood.FrameLength), nil, intp(101))
	assert.ErrorIs(t, err, hood.ErrInvalidArgument)
}
