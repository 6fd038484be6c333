package client

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/hood"
	"github.com/srg/hoodctl/internal/hood/legacy"
)

// SetFanLevel sets the fan to 0..3. The level is validated before any I/O.
func (c *Client) SetFanLevel(ctx context.Context, peer device.Peer, level int) error {
	if c.Variant(peer) == hood.Legacy {
		cmd, err := legacy.CommandForFanLevel(level)
		if err != nil {
			return err
		}
		return c.sendLegacy(ctx, peer, cmd)
	}

	frame, err := hood.EncodeFanLevel(level)
	if err != nil {
		return err
	}
	return c.mgr.Do(ctx, peer, func(s device.Session) error {
		return c.writeCommandLocked(ctx, s, frame)
	})
}

// SetLightBrightness sets one or both lights to a percentage. A side left nil keeps its
// current brightness, or stays off if it is off.
func (c *Client) SetLightBrightness(ctx context.Context, peer device.Peer, top, bottom *int) error {
	if top == nil && bottom == nil {
		return fmt.Errorf("%w: no light selected", hood.ErrInvalidArgument)
	}
	// Validate on a throwaway frame so a bad value never opens a connection.
	if _, err := hood.EncodeLightBrightness(top, bottom); err != nil {
		return err
	}
	if c.Variant(peer) == hood.Legacy {
		return fmt.Errorf("%w: legacy hoods have no dimmer control", hood.ErrUnsupported)
	}
	return c.writeBrightness(ctx, peer, top, bottom)
}

// SetLightOnOff switches lights. On is full brightness.
func (c *Client) SetLightOnOff(ctx context.Context, peer device.Peer, top, bottom *bool) error {
	if top == nil && bottom == nil {
		return fmt.Errorf("%w: no light selected", hood.ErrInvalidArgument)
	}

	if c.Variant(peer) == hood.Legacy {
		// Both panels share one switch on legacy hardware.
		switch {
		case top != nil && bottom != nil && *top && *bottom:
			return c.sendLegacy(ctx, peer, legacy.LightsOn)
		case top != nil && bottom != nil && !*top && !*bottom:
			return c.sendLegacy(ctx, peer, legacy.LightsOff)
		}
		return fmt.Errorf("%w: legacy lights can only be switched together", hood.ErrUnsupported)
	}

	return c.writeBrightness(ctx, peer, onOffPercent(top), onOffPercent(bottom))
}

func onOffPercent(on *bool) *int {
	if on == nil {
		return nil
	}
	pct := 0
	if *on {
		pct = 100
	}
	return &pct
}

func (c *Client) writeBrightness(ctx context.Context, peer device.Peer, top, bottom *int) error {
	return c.mgr.Do(ctx, peer, func(s device.Session) error {
		if top == nil || bottom == nil {
			st, err := c.readStatusLocked(ctx, s, peer)
			if err != nil {
				return err
			}
			if top == nil {
				top = preserved(st.LightTopOn, st.LightTopBrightness)
			}
			if bottom == nil {
				bottom = preserved(st.LightBottomOn, st.LightBottomBrightness)
			}
			c.logger.WithFields(logrus.Fields{
				"address": peer.Address(),
				"top":     *top,
				"bottom":  *bottom,
			}).Debug("Preserving current brightness of the other light")
		}

		frame, err := hood.EncodeLightBrightness(top, bottom)
		if err != nil {
			return err
		}
		return c.writeCommandLocked(ctx, s, frame)
	})
}

// preserved is what to send for a side the caller did not name: zero switches a light
// off, so an off light must stay at zero.
func preserved(on bool, brightness int) *int {
	v := 0
	if on {
		v = brightness
	}
	return &v
}

// SetLightColorKelvin sets the color temperature of one or both lights.
func (c *Client) SetLightColorKelvin(ctx context.Context, peer device.Peer, top, bottom *int) error {
	topPct, err := kelvinPercent("top", top)
	if err != nil {
		return err
	}
	bottomPct, err := kelvinPercent("bottom", bottom)
	if err != nil {
		return err
	}
	return c.SetLightColor(ctx, peer, topPct, bottomPct)
}

func kelvinPercent(side string, kelvin *int) (*int, error) {
	if kelvin == nil {
		return nil, nil
	}
	if *kelvin < hood.MinKelvin || *kelvin > hood.MaxKelvin {
		return nil, fmt.Errorf("%w: %s color %dK outside %d..%d", hood.ErrInvalidArgument, side, *kelvin, hood.MinKelvin, hood.MaxKelvin)
	}
	pct := hood.KelvinToPercent(*kelvin)
	return &pct, nil
}

// SetLightColor sets the color percentage (0 cool, 100 warm) of one or both lights.
// The color frame is read back and patched, so the rest of it survives.
func (c *Client) SetLightColor(ctx context.Context, peer device.Peer, top, bottom *int) error {
	if top == nil && bottom == nil {
		return fmt.Errorf("%w: no light selected", hood.ErrInvalidArgument)
	}
	if _, err := hood.ApplyColor(make([]byte, hood.FrameLength), top, bottom); err != nil {
		return err
	}
	if c.Variant(peer) == hood.Legacy {
		return fmt.Errorf("%w: legacy hoods have no color control", hood.ErrUnsupported)
	}

	return c.mgr.Do(ctx, peer, func(s device.Session) error {
		current, err := s.ReadCharacteristic(ctx, hood.ColorCharacteristic)
		if err != nil {
			return err
		}
		next, err := hood.ApplyColor(current, top, bottom)
		if err != nil {
			return err
		}
		if err := sleep(ctx, c.commandDelay); err != nil {
			return err
		}
		return s.WriteCharacteristic(ctx, hood.ColorCharacteristic, next, true)
	})
}

// SetPostrun starts the postrun cycle or cancels it. Legacy hoods only; modern hoods
// start postrun themselves when the fan goes off.
func (c *Client) SetPostrun(ctx context.Context, peer device.Peer, on bool) error {
	if c.Variant(peer) != hood.Legacy {
		return fmt.Errorf("%w: postrun is controlled by the hood", hood.ErrUnsupported)
	}
	cmd := legacy.PostrunOff
	if on {
		cmd = legacy.PostrunToggle
	}
	return c.sendLegacy(ctx, peer, cmd)
}

// ExecuteWithStatus writes a raw command frame and returns the status the hood reports
// once the command has settled.
func (c *Client) ExecuteWithStatus(ctx context.Context, peer device.Peer, frame []byte) (hood.Status, error) {
	if err := hood.ValidateFrameLength(frame); err != nil {
		return hood.Status{}, err
	}
	if c.Variant(peer) == hood.Legacy {
		return hood.Status{}, fmt.Errorf("%w: legacy hoods take text commands", hood.ErrUnsupported)
	}

	var st hood.Status
	err := c.mgr.Do(ctx, peer, func(s device.Session) error {
		if err := c.writeCommandLocked(ctx, s, frame); err != nil {
			return err
		}
		if err := sleep(ctx, c.settleDelay); err != nil {
			return err
		}
		var err error
		st, err = c.readStatusLocked(ctx, s, peer)
		return err
	})
	return st, err
}

func (c *Client) writeCommandLocked(ctx context.Context, s device.Session, frame []byte) error {
	if err := hood.ValidateFrameLength(frame); err != nil {
		return err
	}
	if err := sleep(ctx, c.commandDelay); err != nil {
		return err
	}
	return s.WriteCharacteristic(ctx, hood.CommandCharacteristic, frame, true)
}

func (c *Client) sendLegacy(ctx context.Context, peer device.Peer, cmd legacy.Command) error {
	payload, err := legacy.Encode(c.pin, cmd)
	if err != nil {
		return err
	}
	return c.mgr.Do(ctx, peer, func(s device.Session) error {
		rx := legacy.SelectRX(s.ServiceUUIDs())
		c.logger.WithFields(logrus.Fields{
			"address": peer.Address(),
			"command": cmd,
			"rx":      rx,
		}).Debug("Sending legacy command")

		if err := sleep(ctx, c.commandDelay); err != nil {
			return err
		}
		return s.WriteCharacteristic(ctx, rx, payload, true)
	})
}
