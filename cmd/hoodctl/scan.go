package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/srg/hoodctl/internal/devicefactory"
	"github.com/srg/hoodctl/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for hoods",
	Long: `Listen for BLE advertisements and list the hoods heard, strongest signal first.

Both firmware generations are recognised, by advertised name or service. Other
devices are hidden unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	scanDuration  time.Duration
	scanFormat    string
	scanAllowList []string
	scanBlockList []string
	scanAll       bool
)

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 0, "Scan duration (defaults to scan_timeout from the config)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "", "Output format (table, json); defaults to output_format from the config")
	scanCmd.Flags().StringSliceVar(&scanAllowList, "allow", nil, "Only show devices with these addresses")
	scanCmd.Flags().StringSliceVar(&scanBlockList, "block", nil, "Hide devices with these addresses")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "Also list devices that are not hoods")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format := scanFormat
	if format == "" {
		format = cfg.OutputFormat
	}
	if err := validateFormat(format); err != nil {
		return err
	}
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	opts := scanner.DefaultScanOptions()
	opts.Duration = cfg.ScanTimeout
	if scanDuration > 0 {
		opts.Duration = scanDuration
	}
	opts.AllowList = scanAllowList
	opts.BlockList = scanBlockList
	opts.IncludeUnsupported = scanAll

	ctx, cancel := commandContext(cmd)
	defer cancel()

	defer func() {
		if err := devicefactory.ReleaseDevice(); err != nil {
			logger.WithError(err).Debug("Failed to release BLE device")
		}
	}()

	progress := NewProgressPrinter(cmd.OutOrStdout(), "Scanning for hoods", "Scanning", opts.Duration, "Processing results")
	progress.Start()
	defer progress.Stop()

	hoods, err := scanner.NewScanner(logger).Scan(ctx, opts, progress.Callback())
	if err != nil {
		logger.WithError(err).Error("scan failed")
		return err
	}
	progress.Stop()

	return printHoods(cmd.OutOrStdout(), hoods, format)
}
