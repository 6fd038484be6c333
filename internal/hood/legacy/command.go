package legacy

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/hood"
)

// Command is one of the fixed legacy firmware commands.
type Command int

const (
	FanOff Command = iota
	FanLevel1
	FanLevel2
	FanLevel3
	LightsOn
	LightsOff
	PostrunToggle
	PostrunOff
)

var commandTokens = map[Command]string{
	FanOff:        "cmd_off",
	FanLevel1:     "cmd_luft1",
	FanLevel2:     "cmd_luft2",
	FanLevel3:     "cmd_luft3",
	LightsOn:      "cmd_panel_on",
	LightsOff:     "cmd_panel_off",
	PostrunToggle: "cmd_nachlauf",
	PostrunOff:    "cmd_nachlauf_aus",
}

// Token is the text the firmware expects for c.
func (c Command) Token() string {
	return commandTokens[c]
}

func (c Command) String() string {
	if t, ok := commandTokens[c]; ok {
		return t
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// CommandForFanLevel maps 0..3 onto the fan commands.
func CommandForFanLevel(level int) (Command, error) {
	switch level {
	case 0:
		return FanOff, nil
	case 1:
		return FanLevel1, nil
	case 2:
		return FanLevel2, nil
	case 3:
		return FanLevel3, nil
	}
	return 0, fmt.Errorf("%w: fan level %d outside 0..%d", hood.ErrInvalidArgument, level, hood.MaxCommandFanLevel)
}

// Encode builds the RX payload: the percent-encoded PIN followed by the command token.
// Every byte outside [A-Za-z0-9_.~-] is escaped, spaces as %20.
func Encode(pin string, c Command) ([]byte, error) {
	token := c.Token()
	if token == "" {
		return nil, fmt.Errorf("%w: unknown legacy command %d", hood.ErrInvalidArgument, int(c))
	}
	// QueryEscape writes '+' only for spaces; a literal '+' comes out as %2B.
	escaped := strings.ReplaceAll(url.QueryEscape(pin+token), "+", "%20")
	return []byte(escaped), nil
}

// SelectRX picks the characteristic commands are written to, preferring the 2018
// layout whenever the peer exposes it.
func SelectRX(serviceUUIDs []string) string {
	if device.ContainsUUID(serviceUUIDs, hood.Legacy2018RXUUID) || device.ContainsUUID(serviceUUIDs, hood.Legacy2018ServiceUUID) {
		return hood.Legacy2018RXUUID
	}
	return hood.LegacyRXUUID
}
