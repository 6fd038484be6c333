package main

import (
	"testing"

	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/hood"
	"github.com/srg/hoodctl/internal/testutils"
	"github.com/stretchr/testify/suite"
)

type CommandsTestSuite struct {
	CommandTestSuite
}

func (s *CommandsTestSuite) writesTo(uuid string) [][]byte {
	var out [][]byte
	for _, w := range s.Transport.Writes() {
		if w.UUID == device.NormalizeUUID(uuid) {
			out = append(out, w.Data)
		}
	}
	return out
}

func (s *CommandsTestSuite) TestStatusModernJSON() {
	// GOAL: Verify status reads a modern hood over GATT and prints the documented JSON
	//
	// TEST SCENARIO: status --json on the modern address → three reads → fan 2, top on 74%/2700K, bottom off

	out, err := s.Execute("status", modernAddress, "--json")
	s.Require().NoError(err, "status MUST succeed")

	testutils.NewJSONAsserter(s.T()).Assert(out, `{
		"name": "SKE Skyline",
		"address": "aa:bb:cc:dd:ee:01",
		"variant": "modern",
		"fan_level": 2,
		"fan_postrun_active": true,
		"light_top": {"on": true, "brightness": 74, "color": 100, "kelvin": 2700},
		"light_bottom": {"on": false, "brightness": 50, "color": 0, "kelvin": 6500}
	}`)
	s.Equal(3, s.Transport.Reads(), "modern status MUST read status, brightness and color")
}

func (s *CommandsTestSuite) TestStatusModernTable() {
	out, err := s.Execute("status", modernAddress)
	s.Require().NoError(err)

	s.Contains(out, "SKE Skyline")
	s.Contains(out, "2 (postrun)")
	s.Contains(out, "on 74% 2700K")
	s.Contains(out, "off")
}

func (s *CommandsTestSuite) TestStatusLegacyFromAdvertisement() {
	// GOAL: Verify a legacy hood's status comes from its advertisement without touching GATT
	//
	// TEST SCENARIO: status --json on the legacy address → fan 2, both lights on, zero radio calls

	out, err := s.Execute("status", legacyAddress, "--json")
	s.Require().NoError(err)

	testutils.NewJSONAsserter(s.T()).Assert(out, `{
		"address": "aa:bb:cc:dd:ee:10",
		"variant": "legacy",
		"fan_level": 2,
		"light_top": {"on": true},
		"light_bottom": {"on": true}
	}`)
	s.Equal(0, s.Transport.Calls(), "legacy status MUST NOT connect")
}

func (s *CommandsTestSuite) TestStatusNotFound() {
	_, err := s.Execute("status", absentAddress)

	s.ErrorIs(err, device.ErrPeerNotFound)
	s.Contains(FormatUserError(err), "hood not found")
	s.Equal(0, s.Transport.Calls())
}

func (s *CommandsTestSuite) TestStatusUnavailableAfterRetries() {
	s.Transport.FailReads(device.ErrNotConnected, device.ErrNotConnected)

	_, err := s.Execute("status", modernAddress)

	s.Require().Error(err)
	s.True(device.IsTransportError(err), "exhausted retries MUST surface the transport error")
	s.Equal(2, s.Transport.Connects(), "each attempt MUST use a fresh connection")
}

func (s *CommandsTestSuite) TestFanModern() {
	out, err := s.Execute("fan", modernAddress, "3")
	s.Require().NoError(err)

	want, err := hood.EncodeFanLevel(3)
	s.Require().NoError(err)
	s.Equal([][]byte{want}, s.writesTo(hood.CommandCharacteristic))
	s.Contains(out, "Fan level set to 3")
}

func (s *CommandsTestSuite) TestFanLegacy() {
	_, err := s.Execute("fan", legacyAddress, "0")
	s.Require().NoError(err)

	s.Equal([][]byte{[]byte("0000cmd_off")}, s.writesTo(hood.LegacyRXUUID))
}

func (s *CommandsTestSuite) TestFanRejectsLevelBeforeAnyRadioWork() {
	// GOAL: Verify an invalid fan level fails before scanning or connecting
	//
	// TEST SCENARIO: fan levels 4, 12 and "high" → ErrInvalidArgument, zero transport calls

	for _, level := range []string{"4", "12", "high"} {
		_, err := s.Execute("fan", modernAddress, level)
		s.ErrorIs(err, hood.ErrInvalidArgument, "level %q MUST be rejected", level)
	}
	s.Equal(0, s.Transport.Calls())
}

func (s *CommandsTestSuite) TestLightBrightnessKeepsOtherSide() {
	// GOAL: Verify setting one side reads the current state and keeps the other side
	//
	// TEST SCENARIO: --top 80 with bottom off → one frame with top 80% and bottom 0%

	_, err := s.Execute("light", modernAddress, "--top", "80")
	s.Require().NoError(err)

	want, err := hood.EncodeLightBrightness(ptr(80), ptr(0))
	s.Require().NoError(err)
	s.Equal([][]byte{want}, s.writesTo(hood.CommandCharacteristic))
}

func (s *CommandsTestSuite) TestLightOnOff() {
	_, err := s.Execute("light", modernAddress, "--off", "top")
	s.Require().NoError(err)

	// top switched off, bottom stays off
	want, err := hood.EncodeLightBrightness(ptr(0), ptr(0))
	s.Require().NoError(err)
	s.Equal([][]byte{want}, s.writesTo(hood.CommandCharacteristic))
}

func (s *CommandsTestSuite) TestLightLegacyBoth() {
	_, err := s.Execute("light", legacyAddress, "--on", "both")
	s.Require().NoError(err)

	s.Equal([][]byte{[]byte("0000cmd_panel_on")}, s.writesTo(hood.LegacyRXUUID))
}

func (s *CommandsTestSuite) TestLightArgumentErrors() {
	tests := []struct {
		name string
		args []string
	}{
		{"nothing to set", []string{"light", modernAddress}},
		{"brightness and switch", []string{"light", modernAddress, "--top", "10", "--off", "bottom"}},
		{"unknown side", []string{"light", modernAddress, "--on", "middle"}},
		{"same side on and off", []string{"light", modernAddress, "--on", "top", "--off", "top"}},
	}
	for _, tt := range tests {
		resetFlags(rootCmd)
		_, err := s.Execute(tt.args...)
		s.ErrorIs(err, hood.ErrInvalidArgument, tt.name)
	}
	s.Equal(0, s.Transport.Calls(), "argument errors MUST NOT reach the radio")
}

func (s *CommandsTestSuite) TestColorKelvin() {
	// GOAL: Verify color is a read-modify-write of the color characteristic in Kelvin
	//
	// TEST SCENARIO: --bottom 2700 → color frame with bottom byte 255, top byte unchanged

	out, err := s.Execute("color", modernAddress, "--bottom", "2700")
	s.Require().NoError(err)

	writes := s.writesTo(hood.ColorCharacteristic)
	s.Require().Len(writes, 1)
	s.Equal(byte(255), writes[0][6], "bottom color MUST be the warmest value")
	s.Equal(byte(255), writes[0][7], "top color MUST be kept")
	s.Contains(out, "Light color updated")
}

func (s *CommandsTestSuite) TestColorRejections() {
	_, err := s.Execute("color", modernAddress)
	s.ErrorIs(err, hood.ErrInvalidArgument)

	resetFlags(rootCmd)
	_, err = s.Execute("color", modernAddress, "--top", "9000")
	s.ErrorIs(err, hood.ErrInvalidArgument)
	s.Empty(s.writesTo(hood.ColorCharacteristic))

	resetFlags(rootCmd)
	_, err = s.Execute("color", legacyAddress, "--top", "3000")
	s.ErrorIs(err, hood.ErrUnsupported)
}

func (s *CommandsTestSuite) TestPostrun() {
	_, err := s.Execute("postrun", legacyAddress, "off")
	s.Require().NoError(err)
	s.Equal([][]byte{[]byte("0000cmd_nachlauf_aus")}, s.writesTo(hood.LegacyRXUUID))

	resetFlags(rootCmd)
	_, err = s.Execute("postrun", modernAddress, "on")
	s.ErrorIs(err, hood.ErrUnsupported)

	resetFlags(rootCmd)
	_, err = s.Execute("postrun", legacyAddress, "maybe")
	s.ErrorIs(err, hood.ErrInvalidArgument)
}

func (s *CommandsTestSuite) TestScanJSON() {
	out, err := s.Execute("scan", "--format", "json", "--duration", "30ms")
	s.Require().NoError(err)

	testutils.NewJSONAsserter(s.T()).Assert(out, `[
		{"name": "HOOD_PER 42", "address": "aa:bb:cc:dd:ee:10", "variant": "legacy", "rssi": -50},
		{"name": "SKE Skyline", "address": "aa:bb:cc:dd:ee:01", "variant": "modern", "rssi": -70}
	]`)
}

func (s *CommandsTestSuite) TestRadioReleasedAfterEachCommand() {
	// GOAL: Verify every command gives the adapter back when it ends
	//
	// TEST SCENARIO: status, fan, a failed status and scan → one release per command

	_, err := s.Execute("status", modernAddress)
	s.Require().NoError(err)
	s.Equal(1, s.releases, "status MUST release the radio")

	resetFlags(rootCmd)
	_, err = s.Execute("fan", modernAddress, "1")
	s.Require().NoError(err)
	s.Equal(2, s.releases, "fan MUST release the radio")

	resetFlags(rootCmd)
	_, err = s.Execute("status", absentAddress)
	s.Require().Error(err)
	s.Equal(3, s.releases, "a failed command MUST release the radio too")

	resetFlags(rootCmd)
	_, err = s.Execute("scan", "--duration", "30ms")
	s.Require().NoError(err)
	s.Equal(4, s.releases, "scan MUST release the radio")
}

func (s *CommandsTestSuite) TestScanTable() {
	out, err := s.Execute("scan", "--duration", "30ms", "--block", legacyAddress)
	s.Require().NoError(err)

	s.Contains(out, "NAME")
	s.Contains(out, modernAddress)
	s.NotContains(out, legacyAddress)
}

func (s *CommandsTestSuite) TestInvalidFormatAndLogLevel() {
	_, err := s.Execute("scan", "--format", "xml")
	s.ErrorContains(err, "invalid format")

	resetFlags(rootCmd)
	_, err = s.Execute("status", modernAddress, "--log-level", "chatty")
	s.ErrorContains(err, "invalid log level")
	s.Equal(0, s.Transport.Calls())
}

func (s *CommandsTestSuite) TestBadConfig() {
	s.configPath = s.WriteConfig("update_attempts: 0")

	_, err := s.Execute("status", modernAddress)
	s.ErrorContains(err, "update_attempts")
}

func ptr[T any](v T) *T { return &v }

func TestCommandsTestSuite(t *testing.T) {
	suite.Run(t, new(CommandsTestSuite))
}
