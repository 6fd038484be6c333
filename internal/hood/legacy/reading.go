package legacy

import "github.com/srg/hoodctl/internal/hood"

// Active holds the runtime state flags a legacy hood reports.
type Active struct {
	Illumination        bool `json:"illumination"`
	Postrun             bool `json:"postrun"`
	Circulation         bool `json:"circulation"`
	LiftUp              bool `json:"lift_up"`
	LiftDown            bool `json:"lift_down"`
	Effect              bool `json:"effect"`
	RGB                 bool `json:"rgb"`
	FatFilterSaturated  bool `json:"fat_filter_saturated"`
	CoalFilterSaturated bool `json:"coal_filter_saturated"`
	Automatic           bool `json:"automatic"`
	AutoRunReset        bool `json:"auto_run_reset"`
}

// Features holds what the unit is fitted with. Only the advertisement carries these.
type Features struct {
	EffectLight  bool `json:"effect_light"`
	Circulation  bool `json:"circulation"`
	RGB          bool `json:"rgb"`
	Lift         bool `json:"lift"`
	Dimmer       bool `json:"dimmer"`
	AutoTrailing bool `json:"auto_trailing"`
	Intensive    bool `json:"intensive"`
}

// Reading is everything decoded from one legacy payload.
type Reading struct {
	FanLevel int      `json:"fan_level"` // 0..3
	Active   Active   `json:"active"`
	Features Features `json:"features"`

	// Curve is the configured fan curve, -1 when the payload is too short to carry it.
	Curve int `json:"curve"`
	// OperatingHours is -1 when not broadcast.
	OperatingHours int `json:"operating_hours"`
}

// Status maps a reading onto the shared model. Legacy hardware reports a single
// lighting flag, so it switches top and bottom together; brightness and color are
// unknowable and stay 0.
func (r Reading) Status(name, address string) hood.Status {
	lights := r.Active.Illumination || r.Features.EffectLight
	return hood.NewStatus(hood.Status{
		Name:             name,
		Address:          address,
		LightTopOn:       lights,
		LightBottomOn:    lights,
		FanLevel:         r.FanLevel,
		FanPostrunActive: r.Active.Postrun,
	})
}

func emptyReading() Reading {
	return Reading{Curve: -1, OperatingHours: -1}
}
