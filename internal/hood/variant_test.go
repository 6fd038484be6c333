package hood_test

import (
	"testing"

	"github.com/srg/hoodctl/internal/hood"
	"github.com/stretchr/testify/assert"
)

func TestDetectVariant(t *testing.T) {
	tests := []struct {
		name     string
		peerName string
		services []string
		expected hood.Variant
	}{
		{"legacy marker", "HOOD_PER 1234", nil, hood.Legacy},
		{"legacy marker lowercase", "my hood_per", nil, hood.Legacy},
		{"nordic service", "Unnamed", []string{"6E400001-B5A3-F393-E0A9-E50E24DCCA9E"}, hood.Legacy},
		{"2018 service short form", "", []string{"FFE0"}, hood.Legacy},
		{"modern name", "SKE Edge Base", []string{hood.ServiceUUID}, hood.Modern},
		{"nothing known", "", nil, hood.Modern},
		{"garbage services", "x", []string{"not-a-uuid"}, hood.Modern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, hood.DetectVariant(tt.peerName, tt.services))
		})
	}
}

func TestVariant_String(t *testing.T) {
	assert.Equal(t, "modern", hood.Modern.String())
	assert.Equal(t, "legacy", hood.Legacy.String())
	assert.Equal(t, "unknown", hood.Variant(9).String())
}

func TestIsSupported(t *testing.T) {
	assert.True(t, hood.IsSupported("SKE Skyline", nil))
	assert.True(t, hood.IsSupported("berbel hood", nil))
	assert.True(t, hood.IsSupported("HOOD_PER", nil))
	assert.True(t, hood.IsSupported("", []string{hood.ServiceUUID}))
	assert.True(t, hood.IsSupported("", []string{"ffe0"}))
	assert.False(t, hood.IsSupported("Heart Rate", []string{"180d"}))
}
