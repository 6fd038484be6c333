package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/srg/hoodctl/internal/device"
	goble "github.com/srg/hoodctl/internal/device/go-ble"
	"github.com/srg/hoodctl/internal/devicefactory"
	"github.com/srg/hoodctl/internal/hood"
	"github.com/srg/hoodctl/internal/testutils"
)

// Addresses as the fake radio advertises them.
const (
	modernAddress = "aa:bb:cc:dd:ee:01"
	legacyAddress = "aa:bb:cc:dd:ee:10"
	absentAddress = "00:00:00:00:00:99"
)

var (
	// fan 2, top on, bottom off, postrun running
	modernStatus = []byte{0x00, 0x10, 0x10, 0x00, 0x00, 0x90}
	// bottom 128 -> 50%, top 191 -> 74%
	modernBrightness = frameWith(map[int]byte{4: 128, 5: 191})
	// bottom coolest, top warmest
	modernColors = frameWith(map[int]byte{0: 0x01, 6: 0, 7: 255, 30: 0x7f})
	// fan 2, both lights on
	legacyManufacturerData = []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x02, 0x00, 0x01}
)

func frameWith(at map[int]byte) []byte {
	f := make([]byte, hood.FrameLength)
	for i, v := range at {
		f[i] = v
	}
	return f
}

// replayRadio replays its advertisements and then scans until cancelled.
type replayRadio struct {
	ads []device.Advertisement
}

func (r *replayRadio) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	for _, adv := range r.ads {
		handler(adv)
	}
	<-ctx.Done()
	return ctx.Err()
}

// CommandTestSuite runs hoodctl commands against a fake radio: scans replay a modern
// and a legacy hood, and GATT sessions go to the suite's FakeTransport.
// All cmd/hoodctl test suites should embed this.
type CommandTestSuite struct {
	testutils.TransportSuite

	configPath string
	// releases counts devicefactory.ReleaseDevice calls.
	releases int

	originalDeviceFactory    func() (device.ScanningDevice, error)
	originalTransportFactory func(*logrus.Logger, devicefactory.TransportOptions) device.Transport
	originalReleaseDevice    func() error
}

func (s *CommandTestSuite) SetupTest() {
	s.TransportSuite.SetupTest()
	s.Transport.
		WithValue(hood.StatusCharacteristic, modernStatus).
		WithValue(hood.BrightnessCharacteristic, modernBrightness).
		WithValue(hood.ColorCharacteristic, modernColors)

	radio := &replayRadio{ads: []device.Advertisement{
		goble.NewBLEAdvertisement(testutils.NewAdvertisementBuilder().
			WithName("SKE Skyline").
			WithAddress(modernAddress).
			WithRSSI(-70).
			WithServices(hood.ServiceUUID).
			Build()),
		goble.NewBLEAdvertisement(testutils.NewAdvertisementBuilder().
			WithName("HOOD_PER 42").
			WithAddress(legacyAddress).
			WithRSSI(-50).
			WithManufacturerData(testutils.TestCompanyID, legacyManufacturerData).
			Build()),
	}}

	s.originalDeviceFactory = devicefactory.DeviceFactory
	s.originalTransportFactory = devicefactory.TransportFactory
	s.originalReleaseDevice = devicefactory.ReleaseDevice
	s.releases = 0
	devicefactory.ReleaseDevice = func() error {
		s.releases++
		return nil
	}
	devicefactory.DeviceFactory = func() (device.ScanningDevice, error) { return radio, nil }
	devicefactory.TransportFactory = func(*logrus.Logger, devicefactory.TransportOptions) device.Transport {
		return s.Transport
	}

	s.configPath = s.WriteConfig(`
log_level: panic
scan_timeout: 150ms
retry_backoff: 0s
command_delay: 0s
settle_delay: 0s
`)
	resetFlags(rootCmd)
}

func (s *CommandTestSuite) TearDownTest() {
	devicefactory.DeviceFactory = s.originalDeviceFactory
	devicefactory.TransportFactory = s.originalTransportFactory
	devicefactory.ReleaseDevice = s.originalReleaseDevice
}

// WriteConfig writes a YAML config file for --config.
func (s *CommandTestSuite) WriteConfig(content string) string {
	path := filepath.Join(s.T().TempDir(), "hoodctl.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600), "config MUST be written")
	return path
}

// Execute runs hoodctl with args and the suite's config, returning stdout and stderr
// combined.
func (s *CommandTestSuite) Execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--config", s.configPath}, args...))
	s.T().Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag of cmd and its subcommands to its default, so a flag
// set by one test does not leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
