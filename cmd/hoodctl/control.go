package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/hood"
)

var fanCmd = &cobra.Command{
	Use:   "fan <address> <0-3>",
	Short: "Set the fan level",
	Long: `Set the fan level. 0 turns the fan off.

Examples:
  hoodctl fan AA:BB:CC:DD:EE:01 2
  hoodctl fan AA:BB:CC:DD:EE:10 0`,
	Args: cobra.ExactArgs(2),
	RunE: runFan,
}

var lightCmd = &cobra.Command{
	Use:   "light <address>",
	Short: "Set light brightness or switch lights on and off",
	Long: `Set the brightness of the top and bottom light, or switch them on and off.

A side that is not given keeps its current brightness. Legacy hoods only
support switching both sides together.

Examples:
  hoodctl light AA:BB:CC:DD:EE:01 --top 80
  hoodctl light AA:BB:CC:DD:EE:01 --top 80 --bottom 40
  hoodctl light AA:BB:CC:DD:EE:01 --off bottom
  hoodctl light AA:BB:CC:DD:EE:10 --on both`,
	Args: cobra.ExactArgs(1),
	RunE: runLight,
}

var colorCmd = &cobra.Command{
	Use:   "color <address>",
	Short: "Set the light color temperature",
	Long: fmt.Sprintf(`Set the color temperature of the top and bottom light in Kelvin,
from %d (warm) to %d (cool). A side that is not given keeps its color.

Examples:
  hoodctl color AA:BB:CC:DD:EE:01 --top 3000 --bottom 5000`, hood.MinKelvin, hood.MaxKelvin),
	Args: cobra.ExactArgs(1),
	RunE: runColor,
}

var postrunCmd = &cobra.Command{
	Use:   "postrun <address> on|off",
	Short: "Start or stop the fan postrun (legacy hoods)",
	Args:  cobra.ExactArgs(2),
	RunE:  runPostrun,
}

var (
	lightTop    int
	lightBottom int
	lightOn     string
	lightOff    string
	colorTop    int
	colorBottom int
)

func init() {
	lightCmd.Flags().IntVar(&lightTop, "top", 0, "Top light brightness in percent (0-100)")
	lightCmd.Flags().IntVar(&lightBottom, "bottom", 0, "Bottom light brightness in percent (0-100)")
	lightCmd.Flags().StringVar(&lightOn, "on", "", "Switch lights on: top, bottom or both")
	lightCmd.Flags().StringVar(&lightOff, "off", "", "Switch lights off: top, bottom or both")

	colorCmd.Flags().IntVar(&colorTop, "top", 0, "Top light color temperature in Kelvin")
	colorCmd.Flags().IntVar(&colorBottom, "bottom", 0, "Bottom light color temperature in Kelvin")
}

// intFlag is nil when the flag was not given, so that side is left alone.
func intFlag(cmd *cobra.Command, name string, v int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

// sides maps top|bottom|both onto the two sides, setting the named ones to on.
func sides(which string, on bool, top, bottom **bool) error {
	switch strings.ToLower(which) {
	case "":
	case "top":
		*top = &on
	case "bottom":
		*bottom = &on
	case "both":
		*top, *bottom = &on, &on
	default:
		return fmt.Errorf("%w: light side must be top, bottom or both, got %q", hood.ErrInvalidArgument, which)
	}
	return nil
}

// withHood resolves the address argument and runs fn against it.
func withHood(cmd *cobra.Command, address string, fn func(ctx context.Context, rt *hoodRuntime, peer device.Peer) error) error {
	rt, err := newHoodRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	cmd.SilenceUsage = true

	ctx, cancel := commandContext(cmd)
	defer cancel()

	peer, err := rt.resolve(ctx, address)
	if err != nil {
		return err
	}
	return fn(ctx, rt, peer)
}

func runFan(cmd *cobra.Command, args []string) error {
	level, err := strconv.Atoi(args[1])
	if err != nil || level < 0 || level > hood.MaxCommandFanLevel {
		return fmt.Errorf("%w: fan level must be 0-%d, got %q", hood.ErrInvalidArgument, hood.MaxCommandFanLevel, args[1])
	}

	return withHood(cmd, args[0], func(ctx context.Context, rt *hoodRuntime, peer device.Peer) error {
		if err := rt.client.SetFanLevel(ctx, peer, level); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fan level set to %d\n", level)
		return nil
	})
}

func runLight(cmd *cobra.Command, args []string) error {
	top := intFlag(cmd, "top", lightTop)
	bottom := intFlag(cmd, "bottom", lightBottom)

	var onTop, onBottom *bool
	if err := sides(lightOn, true, &onTop, &onBottom); err != nil {
		return err
	}
	if err := sides(lightOff, false, &onTop, &onBottom); err != nil {
		return err
	}

	brightness := top != nil || bottom != nil
	switching := onTop != nil || onBottom != nil
	switch {
	case brightness && switching:
		return fmt.Errorf("%w: use either --top/--bottom or --on/--off", hood.ErrInvalidArgument)
	case !brightness && !switching:
		return fmt.Errorf("%w: nothing to set; give --top, --bottom, --on or --off", hood.ErrInvalidArgument)
	case lightOn != "" && lightOff != "" && strings.EqualFold(lightOn, lightOff):
		return fmt.Errorf("%w: the same side cannot be switched on and off", hood.ErrInvalidArgument)
	}

	return withHood(cmd, args[0], func(ctx context.Context, rt *hoodRuntime, peer device.Peer) error {
		if brightness {
			if err := rt.client.SetLightBrightness(ctx, peer, top, bottom); err != nil {
				return err
			}
		} else if err := rt.client.SetLightOnOff(ctx, peer, onTop, onBottom); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Lights updated")
		return nil
	})
}

func runColor(cmd *cobra.Command, args []string) error {
	top := intFlag(cmd, "top", colorTop)
	bottom := intFlag(cmd, "bottom", colorBottom)
	if top == nil && bottom == nil {
		return fmt.Errorf("%w: give --top or --bottom", hood.ErrInvalidArgument)
	}

	return withHood(cmd, args[0], func(ctx context.Context, rt *hoodRuntime, peer device.Peer) error {
		if err := rt.client.SetLightColorKelvin(ctx, peer, top, bottom); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Light color updated")
		return nil
	})
}

func runPostrun(cmd *cobra.Command, args []string) error {
	var on bool
	switch strings.ToLower(args[1]) {
	case "on":
		on = true
	case "off":
	default:
		return fmt.Errorf("%w: postrun must be on or off, got %q", hood.ErrInvalidArgument, args[1])
	}

	return withHood(cmd, args[0], func(ctx context.Context, rt *hoodRuntime, peer device.Peer) error {
		if err := rt.client.SetPostrun(ctx, peer, on); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Postrun %s\n", strings.ToLower(args[1]))
		return nil
	})
}
