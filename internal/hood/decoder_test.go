package hood_test

import (
	"testing"

	"github.com/srg/hoodctl/internal/hood"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStatus_EndToEnd(t *testing.T) {
	status := []byte{0x10, 0x10, 0x10, 0x00, 0x00, 0x90}
	brightness := []byte{0, 0, 0, 0, 128, 191}
	colors := []byte{0, 0, 0, 0, 0, 0, 255, 0}

	st, err := hood.DecodeStatus("SKE Edge", "AA:BB:CC:DD:EE:FF", status, brightness, colors)
	require.NoError(t, err)

	assert.Equal(t, "SKE Edge", st.Name)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", st.Address)
	assert.Equal(t, 1, st.FanLevel, "level 1 byte MUST win over the level 2..4 byte")
	assert.True(t, st.FanPostrunActive)
	assert.True(t, st.LightTopOn)
	assert.False(t, st.LightBottomOn)
	assert.Equal(t, 50, st.LightBottomBrightness)
	assert.Equal(t, 74, st.LightTopBrightness, "191 MUST truncate to 74")
	assert.Equal(t, 100, st.LightBottomColor)
	assert.Equal(t, 0, st.LightTopColor)
}

func TestDecodeStatus_FanLevels(t *testing.T) {
	tests := []struct {
		b0, b1 byte
		level  int
	}{
		{0x10, 0x00, 1},
		{0x00, 0x10, 2},
		{0x00, 0x18, 3},
		{0x00, 0x19, 4},
		{0x00, 0x00, 0},
		{0x01, 0x11, 0},
	}
	for _, tt := range tests {
		st, err := hood.DecodeStatus("", "", []byte{tt.b0, tt.b1, 0, 0, 0, 0}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.level, st.FanLevel, "bytes %#x %#x", tt.b0, tt.b1)
	}
}

func TestDecodeStatus_Masks(t *testing.T) {
	st, err := hood.DecodeStatus("", "", []byte{0, 0, 0x1f, 0, 0x30, 0x80}, nil, nil)
	require.NoError(t, err)
	assert.True(t, st.LightTopOn)
	assert.True(t, st.LightBottomOn)
	assert.False(t, st.FanPostrunActive, "postrun needs both mask bits")

	st, err = hood.DecodeStatus("", "", []byte{0, 0, 0x0f, 0, 0xef, 0xff}, nil, nil)
	require.NoError(t, err)
	assert.False(t, st.LightTopOn)
	assert.False(t, st.LightBottomOn)
	assert.True(t, st.FanPostrunActive)
}

func TestDecodeStatus_ShortReadsDegrade(t *testing.T) {
	st, err := hood.DecodeStatus("", "", make([]byte, 6), []byte{0, 0, 0, 0, 200}, []byte{1, 2, 3})
	require.NoError(t, err, "short brightness and color reads MUST NOT fail")
	assert.Zero(t, st.LightTopBrightness)
	assert.Zero(t, st.LightBottomBrightness)
	assert.Zero(t, st.LightTopColor)
	assert.Zero(t, st.LightBottomColor)
}

func TestDecodeStatus_ShortStatusIsMalformed(t *testing.T) {
	_, err := hood.DecodeStatus("", "", []byte{0x10, 0, 0}, nil, nil)
	assert.ErrorIs(t, err, hood.ErrMalformedFrame)
}
