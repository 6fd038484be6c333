package hood

import "fmt"

const (
	MinKelvin = 2700
	MaxKelvin = 6500

	MaxFanLevel = 4
	// MaxCommandFanLevel is the highest level a command can select; level 4 is only ever reported.
	MaxCommandFanLevel = 3
)

// Status is one snapshot of a hood. Values are clamped by NewStatus and the type is
// always passed by value.
type Status struct {
	Name    string `json:"name"`
	Address string `json:"address"`

	LightTopOn    bool `json:"light_top_on"`
	LightBottomOn bool `json:"light_bottom_on"`

	LightTopBrightness    int `json:"light_top_brightness"`    // 0..100
	LightBottomBrightness int `json:"light_bottom_brightness"` // 0..100

	// Color is a percentage: 0 is the coolest white (6500 K), 100 the warmest (2700 K).
	LightTopColor    int `json:"light_top_color"`
	LightBottomColor int `json:"light_bottom_color"`

	FanLevel         int  `json:"fan_level"` // 0..4
	FanPostrunActive bool `json:"fan_postrun_active"`
}

// NewStatus returns s with every ranged field clamped.
func NewStatus(s Status) Status {
	s.LightTopBrightness = clamp(s.LightTopBrightness, 0, 100)
	s.LightBottomBrightness = clamp(s.LightBottomBrightness, 0, 100)
	s.LightTopColor = clamp(s.LightTopColor, 0, 100)
	s.LightBottomColor = clamp(s.LightBottomColor, 0, 100)
	s.FanLevel = clamp(s.FanLevel, 0, MaxFanLevel)
	return s
}

func (s Status) LightTopColorKelvin() int    { return PercentToKelvin(s.LightTopColor) }
func (s Status) LightBottomColorKelvin() int { return PercentToKelvin(s.LightBottomColor) }

func (s Status) String() string {
	return fmt.Sprintf("%s (%s): fan=%d postrun=%t top=%s bottom=%s",
		s.Name, s.Address, s.FanLevel, s.FanPostrunActive,
		lightString(s.LightTopOn, s.LightTopBrightness, s.LightTopColorKelvin()),
		lightString(s.LightBottomOn, s.LightBottomBrightness, s.LightBottomColorKelvin()))
}

func lightString(on bool, brightness, kelvin int) string {
	if !on {
		return "off"
	}
	return fmt.Sprintf("on/%d%%/%dK", brightness, kelvin)
}

// PercentToKelvin maps a color percentage linearly onto 6500 K (0) .. 2700 K (100).
// The span is exactly 38 K per percent, so the result is always integral.
func PercentToKelvin(pct int) int {
	pct = clamp(pct, 0, 100)
	return MaxKelvin - pct*(MaxKelvin-MinKelvin)/100
}

// KelvinToPercent is the rounded inverse of PercentToKelvin.
func KelvinToPercent(kelvin int) int {
	kelvin = clamp(kelvin, MinKelvin, MaxKelvin)
	span := MaxKelvin - MinKelvin
	return (100*(MaxKelvin-kelvin) + span/2) / span
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
