package navico

import (
	"encoding/binary"
	"fmt"

	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/logging"
	"github.com/navbridge/radargateway/internal/radar"
)

// Report IDs (byte 0), all followed by 0xC4 at byte 1 (spec §4.D, §6).
const (
	reportIDStatus        = 0x01
	reportIDRangeAndGains = 0x02
	reportIDModel         = 0x03
	reportIDBearing       = 0x04
	reportIDBlanking      = 0x06
	reportIDExtended      = 0x08
	reportMarker          = 0xC4
)

// rangeWireScale converts the raw little-endian range field (1/256 m
// units) to meters.
const rangeWireScale = 1.0 / 256.0

var loggedUnknownIDs = map[byte]bool{}

// ReportHandler implements radar.ReportHandler for Navico.
type ReportHandler struct{}

func (ReportHandler) HandleReport(data []byte, info *radar.RadarInfo) error {
	if len(data) < 2 {
		return fmt.Errorf("navico report: too short (%d bytes)", len(data))
	}
	id := data[0]
	if data[1] != reportMarker {
		if id&0xF0 == 0xC0 { // 0xC6 family acknowledged but ignored
			return nil
		}
		return fmt.Errorf("navico report: missing 0xC4 marker (got %#02x)", data[1])
	}

	switch id {
	case reportIDStatus:
		return handleStatus(data, info)
	case reportIDRangeAndGains:
		return handleRangeAndGains(data, info)
	case reportIDModel:
		return handleModel(data, info)
	case reportIDBearing:
		return handleBearing(data, info)
	case reportIDBlanking:
		return handleBlanking(data, info)
	case reportIDExtended:
		return handleExtended(data, info)
	default:
		if !loggedUnknownIDs[id] {
			loggedUnknownIDs[id] = true
			logging.Opsf("navico: unknown report id %#02x, length %d (logged once)", id, len(data))
		}
		return nil
	}
}

// handleStatus parses the 18-byte report 01: radar operating status.
func handleStatus(data []byte, info *radar.RadarInfo) error {
	const want = 18
	if len(data) != want {
		logging.Opsf("navico: report 01 wrong length %d (want %d), dropped", len(data), want)
		return nil
	}
	raw := data[2]
	status, err := mapStatus(raw)
	if err != nil {
		logging.Opsf("navico: %v", err)
		return nil
	}
	info.Controls.Set(control.Status, float64(status), nil)
	return nil
}

func mapStatus(raw byte) (control.StatusValue, error) {
	switch raw {
	case 0:
		return control.StatusOff, nil
	case 1:
		return control.StatusStandby, nil
	case 2:
		return control.StatusTransmit, nil
	case 5:
		return control.StatusSpinningUp, nil
	default:
		return 0, fmt.Errorf("report 01: unmapped status byte %#02x (soft error)", raw)
	}
}

// handleRangeAndGains parses the 99-byte report 02: range, gain, sea,
// rain, interference rejection, target boost/expansion, mode.
//
// Layout (offsets in bytes): 0-1 id+marker, 2-3 reserved,
// 4-7 range (u32 LE, 1/256 m units), 8 gain, 9 gain_auto,
// 10 sea, 11 sea_auto, 12 rain, 13 interference rejection,
// 14 target boost, 15 target expansion, 16 mode, 17-98 reserved.
func handleRangeAndGains(data []byte, info *radar.RadarInfo) error {
	const want = 99
	if len(data) != want {
		logging.Opsf("navico: report 02 wrong length %d (want %d), dropped", len(data), want)
		return nil
	}

	rangeRaw := binary.LittleEndian.Uint32(data[4:8])
	rangeMeters := float64(rangeRaw) * rangeWireScale
	info.Controls.Set(control.Range, rangeMeters, nil)
	if info.RangeDetection != nil {
		if candidate, ok := info.RangeDetection.NextCandidate(); ok {
			info.RangeDetection.Observe(candidate, rangeMeters)
		}
	}

	gainAuto := data[9] != 0
	info.Controls.Set(control.Gain, float64(data[8]), &gainAuto)

	seaAuto := data[11] != 0
	info.Controls.Set(control.Sea, float64(data[10]), &seaAuto)

	info.Controls.Set(control.Rain, float64(data[12]), nil)
	info.Controls.Set(control.InterferenceRejection, float64(data[13]), nil)
	info.Controls.Set(control.TargetBoost, float64(data[14]), nil)
	info.Controls.Set(control.TargetExpansion, float64(data[15]), nil)
	info.Controls.Set(control.Mode, float64(data[16]), nil)
	return nil
}

// handleModel parses the 129-byte report 03: model code, firmware, hours.
func handleModel(data []byte, info *radar.RadarInfo) error {
	const want = 129
	if len(data) != want {
		logging.Opsf("navico: report 03 wrong length %d (want %d), dropped", len(data), want)
		return nil
	}
	modelCode := data[2]
	modelName := modelCodeToName(modelCode)
	info.Controls.SetString(control.ModelName, modelName)

	firmware := decodeZeroPaddedASCII(data[3:35])
	info.Controls.SetString(control.FirmwareVersion, firmware)

	hours := binary.LittleEndian.Uint32(data[35:39])
	info.Controls.Set(control.OperatingHours, float64(hours), nil)
	return nil
}

func modelCodeToName(code byte) string {
	switch code {
	case 0x01:
		return "BR24"
	case 0x08:
		return "3G"
	case 0x0F:
		return "4G"
	case 0x11:
		return "HALO"
	default:
		return "Unknown"
	}
}

// handleBearing parses the 66-byte report 04: bearing alignment,
// antenna height, accent light.
func handleBearing(data []byte, info *radar.RadarInfo) error {
	const want = 66
	if len(data) != want {
		logging.Opsf("navico: report 04 wrong length %d (want %d), dropped", len(data), want)
		return nil
	}
	bearing := int16(binary.LittleEndian.Uint16(data[2:4]))
	info.Controls.Set(control.BearingAlignment, float64(bearing)/10.0, nil)
	antennaHeightMM := binary.LittleEndian.Uint16(data[4:6])
	info.Controls.Set(control.AntennaHeight, float64(antennaHeightMM)/1000.0, nil)
	info.Controls.Set(control.AccentLight, float64(data[6]), nil)
	return nil
}

// handleBlanking parses the 68- or 74-byte report 06: no-transmit
// sectors and radar name.
func handleBlanking(data []byte, info *radar.RadarInfo) error {
	if len(data) != 68 && len(data) != 74 {
		logging.Opsf("navico: report 06 wrong length %d (want 68 or 74), dropped", len(data))
		return nil
	}
	sectors := []struct{ start, end control.ControlType }{
		{control.NoTransmitStart1, control.NoTransmitEnd1},
		{control.NoTransmitStart2, control.NoTransmitEnd2},
		{control.NoTransmitStart3, control.NoTransmitEnd3},
		{control.NoTransmitStart4, control.NoTransmitEnd4},
	}
	off := 2
	for _, s := range sectors {
		if off+4 > len(data) {
			break
		}
		start := int16(binary.LittleEndian.Uint16(data[off : off+2]))
		end := int16(binary.LittleEndian.Uint16(data[off+2 : off+4]))
		info.Controls.Set(s.start, float64(start)/10.0, nil)
		info.Controls.Set(s.end, float64(end)/10.0, nil)
		off += 4
	}
	if len(data) == 74 {
		name := decodeZeroPaddedASCII(data[off:])
		info.Controls.SetString(control.UserName, name)
	}
	return nil
}

// handleExtended parses report 08, 18/21/22/32 bytes: the 18-byte base
// carries sea state, scan speed, noise/target separation; the 21+
// extension adds Doppler mode and threshold. Length distinguishes HALO
// (≥21) from 4G (18). Bytes beyond the documented fields in the 22/32
// variants are undocumented and preserved unexamined (spec §9).
func handleExtended(data []byte, info *radar.RadarInfo) error {
	if len(data) != 18 && len(data) != 21 && len(data) != 22 && len(data) != 32 {
		logging.Opsf("navico: report 08 wrong length %d, dropped", len(data))
		return nil
	}
	info.Controls.Set(control.SideLobeSuppression, float64(data[2]), nil)
	info.Controls.Set(control.ScanSpeed, float64(data[10]), nil)
	info.Controls.Set(control.NoiseRejection, float64(data[11]), nil)
	info.Controls.Set(control.TargetSeparation, float64(data[12]), nil)

	if len(data) >= 21 {
		if _, ok := info.Controls.Get(control.Doppler); !ok {
			RegisterHaloControls(info)
		}
		dopplerMode := float64(data[18])
		info.Controls.Set(control.Doppler, dopplerMode, nil)
		info.Doppler = dopplerMode != 0
		threshold := binary.LittleEndian.Uint16(data[19:21])
		info.Controls.Set(control.DopplerSpeedThreshold, float64(threshold), nil)
	}
	// data[21:] in the 22/32-byte variants: undocumented, preserved
	// unexamined (spec §9 Open Questions).
	return nil
}
