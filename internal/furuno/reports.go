package furuno

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/logging"
	"github.com/navbridge/radargateway/internal/radar"
)

var loggedUnknownIDs = map[int]bool{}

// ReportHandler implements radar.ReportHandler for Furuno. data is one
// `$N{hex},arg,...` line with the leading `$N` and trailing `\r\n`
// already stripped by the TCP line reader.
type ReportHandler struct{}

func (ReportHandler) HandleReport(data []byte, info *radar.RadarInfo) error {
	line := string(data)
	idHex, rest, _ := strings.Cut(line, ",")
	id, err := strconv.ParseInt(idHex, 16, 32)
	if err != nil {
		return fmt.Errorf("furuno report: bad id %q: %w", idHex, err)
	}

	switch commandID(id) {
	case cmdModules:
		return handleModules(rest, info)
	case cmdRange:
		return handleRange(rest, info)
	case cmdGain:
		return handleAutoNumeric(rest, info, control.Gain)
	case cmdSea:
		return handleAutoNumeric(rest, info, control.Sea)
	case cmdRain:
		return handleNumeric(rest, info, control.Rain)
	case cmdStatus:
		return handleStatus(rest, info)
	case cmdAntennaHeight:
		return handleAntennaHeight(rest, info)
	default:
		if !loggedUnknownIDs[int(id)] {
			loggedUnknownIDs[int(id)] = true
			logging.Opsf("furuno: unknown report id %#02x (logged once)", id)
		}
		return nil
	}
}

// handleModules parses "$N96,0359360-01.05,..." (spec §4.D, §8 scenario
// 3): the first token's part number identifies the model.
func handleModules(rest string, info *radar.RadarInfo) error {
	fields := strings.Split(rest, ",")
	if len(fields) == 0 || fields[0] == "" {
		return fmt.Errorf("furuno N96: empty modules list")
	}
	partNo, version, _ := strings.Cut(fields[0], "-")
	name, ok := modelForPartNumber(partNo)
	if !ok {
		logging.Opsf("furuno: unrecognized part number %q, model stays unknown", partNo)
		return nil
	}
	RegisterModelControls(info, name)
	info.Controls.SetString(control.ModelName, name)
	info.Controls.SetString(control.FirmwareVersion, version)
	return nil
}

func handleRange(rest string, info *radar.RadarInfo) error {
	idx, err := strconv.Atoi(rest)
	if err != nil {
		return fmt.Errorf("furuno R62: bad range index %q: %w", rest, err)
	}
	meters, ok := rangeWireToMeters(idx)
	if !ok {
		logging.Opsf("furuno: range wire index %d not in table, dropped", idx)
		return nil
	}
	info.Controls.Set(control.Range, meters, nil)
	if info.RangeDetection != nil {
		if candidate, ok := info.RangeDetection.NextCandidate(); ok {
			info.RangeDetection.Observe(candidate, meters)
		}
	}
	return nil
}

func handleAutoNumeric(rest string, info *radar.RadarInfo, t control.ControlType) error {
	fields := strings.Split(rest, ",")
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("furuno report: bad numeric value %q: %w", fields[0], err)
	}
	var auto *bool
	if len(fields) > 1 {
		a := fields[1] == "1"
		auto = &a
	}
	info.Controls.Set(t, float64(v), auto)
	return nil
}

func handleNumeric(rest string, info *radar.RadarInfo, t control.ControlType) error {
	v, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return fmt.Errorf("furuno report: bad numeric value %q: %w", rest, err)
	}
	info.Controls.Set(t, float64(v), nil)
	return nil
}

func handleStatus(rest string, info *radar.RadarInfo) error {
	v, err := strconv.Atoi(rest)
	if err != nil {
		return fmt.Errorf("furuno R69: bad status %q: %w", rest, err)
	}
	var status control.StatusValue
	switch v {
	case 0:
		status = control.StatusOff
	case 1:
		status = control.StatusStandby
	case 2:
		status = control.StatusTransmit
	case 3:
		status = control.StatusWarmingUp
	default:
		logging.Opsf("furuno: unmapped status value %d", v)
		return nil
	}
	info.Controls.Set(control.Status, float64(status), nil)
	return nil
}

func handleAntennaHeight(rest string, info *radar.RadarInfo) error {
	mm, err := strconv.Atoi(rest)
	if err != nil {
		return fmt.Errorf("furuno R84: bad antenna height %q: %w", rest, err)
	}
	info.Controls.Set(control.AntennaHeight, float64(mm)/1000.0, nil)
	return nil
}
