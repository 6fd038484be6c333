package main

import (
	"github.com/spf13/cobra"
	"github.com/srg/hoodctl/internal/hood"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <address>",
	Short: "Show a hood's fan and light state",
	Long: `Read the current state of a hood.

Modern hoods are read over GATT. Legacy hoods report their state in the
advertisement, so no connection is made unless --gatt is given.

Examples:
  hoodctl status AA:BB:CC:DD:EE:01
  hoodctl status AA:BB:CC:DD:EE:01 --json
  hoodctl status AA:BB:CC:DD:EE:10 --gatt`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var (
	statusJSON bool
	statusGATT bool
)

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	statusCmd.Flags().BoolVar(&statusGATT, "gatt", false, "Read a legacy hood's status over GATT instead of its advertisement")
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := newHoodRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	format := rt.cfg.OutputFormat
	if statusJSON {
		format = "json"
	}
	cmd.SilenceUsage = true

	ctx, cancel := commandContext(cmd)
	defer cancel()

	peer, err := rt.resolve(ctx, args[0])
	if err != nil {
		return err
	}
	variant := rt.client.Variant(peer)

	var st hood.Status
	if statusGATT && variant == hood.Legacy {
		st, err = rt.client.UpdateDeviceViaGATT(ctx, peer)
	} else {
		st, err = rt.client.UpdateDevice(ctx, peer)
	}
	if err != nil {
		return err
	}
	return printStatus(cmd.OutOrStdout(), st, variant, format)
}
