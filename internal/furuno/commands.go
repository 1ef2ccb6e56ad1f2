package furuno

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/radar"
)

// commandID enumerates the Furuno NMEA-like command identifiers (spec
// §4.D.Furuno).
type commandID int

const (
	cmdConnect      commandID = 0x60
	cmdRange        commandID = 0x62
	cmdGain         commandID = 0x63
	cmdSea          commandID = 0x64
	cmdRain         commandID = 0x65
	cmdStatus       commandID = 0x69
	cmdBlindSector  commandID = 0x77
	cmdModules      commandID = 0x96
	cmdAntennaHeight commandID = 0x84
	cmdAliveCheck   commandID = 0xE3
)

// CommandEncoder implements radar.CommandEncoder for Furuno, producing
// a `$S{hex},arg,...\r\n` ASCII line (spec §6 "Furuno command TCP stream").
type CommandEncoder struct{}

func (CommandEncoder) Encode(t control.ControlType, value float64, auto bool, info *radar.RadarInfo) ([]byte, error) {
	switch t {
	case control.Range:
		idx, err := meterstoRangeWireIndex(value)
		if err != nil {
			return nil, err
		}
		return setLine(cmdRange, idx), nil
	case control.Gain:
		return setLine(cmdGain, int(value), boolToInt(auto)), nil
	case control.Sea:
		return setLine(cmdSea, int(value), boolToInt(auto)), nil
	case control.Rain:
		return setLine(cmdRain, int(value)), nil
	case control.AntennaHeight:
		return setLine(cmdAntennaHeight, int(value*1000)), nil
	case control.NoTransmitStart1, control.NoTransmitEnd1:
		return setLine(cmdBlindSector, 0, int(value*10)), nil
	case control.NoTransmitStart2, control.NoTransmitEnd2:
		return setLine(cmdBlindSector, 1, int(value*10)), nil
	case control.Status:
		return setLine(cmdStatus, int(value)), nil
	default:
		return nil, fmt.Errorf("furuno command: %v has no wire encoding", t)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// setLine formats "$S{id-hex},arg,...\r\n".
func setLine(id commandID, args ...int) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "$S%02X", int(id))
	for _, a := range args {
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(a))
	}
	sb.WriteString("\r\n")
	return []byte(sb.String())
}

// RequestLine formats the request-form "$R{id-hex},arg,...\r\n" used for
// the initial R-queries and the 5 s AliveCheck heartbeat.
func RequestLine(id commandID, args ...int) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "$R%02X", int(id))
	for _, a := range args {
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(a))
	}
	sb.WriteString("\r\n")
	return []byte(sb.String())
}

// AliveCheckLine is the 5 s keepalive sent once the receiver has seen
// its first report.
func AliveCheckLine() []byte { return RequestLine(cmdAliveCheck) }

// InitialQueries returns one R-query for each of nine commands (connect,
// range, gain, sea, rain, status, blind sector, modules, antenna height);
// the receiver sends them once, when the first report arrives. No other
// command is queried at startup.
func InitialQueries() [][]byte {
	ids := []commandID{
		cmdConnect, cmdRange, cmdGain, cmdSea, cmdRain, cmdStatus,
		cmdBlindSector, cmdModules, cmdAntennaHeight,
	}
	lines := make([][]byte, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, RequestLine(id))
	}
	return lines
}

func meterstoRangeWireIndex(meters float64) (int, error) {
	for idx, m := range rangeTable {
		if approxEqualMeters(m, meters) {
			return idx, nil
		}
	}
	return 0, fmt.Errorf("furuno command: %.1fm is not in the range table", meters)
}

func approxEqualMeters(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 0.5
}
