package raymarine

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/logging"
	"github.com/navbridge/radargateway/internal/radar"
)

// ErrUnknownFieldCombination is returned when an RD status message's
// field-x constants don't match either documented variant. The spec's
// reference behavior is to break out of the parse loop rather than
// guess semantics (spec §9 Open Questions) — the receiver logs and
// drops the frame.
var ErrUnknownFieldCombination = errors.New("raymarine: unknown RD status field combination")

var loggedUnknownIDs = map[messageID]bool{}

// ReportHandler implements radar.ReportHandler for Raymarine.
type ReportHandler struct{}

func (ReportHandler) HandleReport(data []byte, info *radar.RadarInfo) error {
	if len(data) < idLen {
		return fmt.Errorf("raymarine report: too short (%d bytes)", len(data))
	}
	id := messageID(binary.LittleEndian.Uint32(data[:idLen]))
	body := data[idLen:]

	switch id {
	case idStatusRD, idStatusHD:
		return handleStatus(body, id.isHD(), info)
	case idFixed:
		return nil // fixed-layout housekeeping fields, nothing the control model surfaces
	case idInfo:
		return handleInfo(body, info)
	case idSpoke:
		return nil // spokes are handled by SpokeDecoder, not the report path
	case idQuantumA, idQuantumB, idQuantumC, idQuantumFixed:
		return handleQuantum(id, body, info)
	default:
		if !loggedUnknownIDs[id] {
			loggedUnknownIDs[id] = true
			logging.Opsf("raymarine: unknown message id %#06x (logged once)", uint32(id))
		}
		return nil
	}
}

// RD status layout (spec §4.D: "Range is an index into an 11- or
// 20-entry table reported inside the status message"). Two field-x
// variants exist on real hardware; only the documented pair is parsed
// here. Anything else returns ErrUnknownFieldCombination rather than
// guessing (spec §9).
const (
	fieldXVariantA = 0x00
	fieldXVariantB = 0x01
)

func handleStatus(body []byte, hd bool, info *radar.RadarInfo) error {
	const want = 20
	if len(body) < want {
		return fmt.Errorf("raymarine status: too short (%d bytes)", len(body))
	}
	fieldX := body[0]
	if fieldX != fieldXVariantA && fieldX != fieldXVariantB {
		return ErrUnknownFieldCombination
	}

	rangeIdx := int(body[1])
	meters, ok := rangeIndexToMeters(hd, rangeIdx)
	if !ok {
		logging.Opsf("raymarine: range index %d out of table, dropped", rangeIdx)
		return nil
	}
	info.Controls.Set(control.Range, meters, nil)
	if info.RangeDetection != nil {
		if candidate, ok := info.RangeDetection.NextCandidate(); ok {
			info.RangeDetection.Observe(candidate, meters)
		}
	}

	statusByte := body[2]
	var status control.StatusValue
	switch statusByte {
	case 0:
		status = control.StatusOff
	case 1:
		status = control.StatusStandby
	case 2:
		status = control.StatusTransmit
	default:
		logging.Opsf("raymarine: unmapped status byte %#02x", statusByte)
		return nil
	}
	info.Controls.Set(control.Status, float64(status), nil)

	gainAuto := body[4] != 0
	info.Controls.Set(control.Gain, float64(body[3]), &gainAuto)

	seaAuto := body[6] != 0
	info.Controls.Set(control.Sea, float64(body[5]), &seaAuto)

	info.Controls.Set(control.Rain, float64(body[7]), nil)
	return nil
}

// handleInfo parses the info message (model serial and firmware, spec
// §4.D) and installs the brand-specific control set once seen.
func handleInfo(body []byte, info *radar.RadarInfo) error {
	const partNumberLen = 16
	if len(body) < partNumberLen {
		return fmt.Errorf("raymarine info: too short (%d bytes)", len(body))
	}
	partNo := decodeASCIIPartNumber(body[:partNumberLen])
	hd := isHDPartNumber(partNo)
	RegisterControls(info, hd)
	info.Controls.SetString(control.ModelName, modelNameFromPartNumber(partNo))
	if len(body) >= partNumberLen+8 {
		firmware := decodeASCIIPartNumber(body[partNumberLen : partNumberLen+8])
		info.Controls.SetString(control.FirmwareVersion, firmware)
	}
	return nil
}

func handleQuantum(id messageID, body []byte, info *radar.RadarInfo) error {
	switch id {
	case idQuantumFixed:
		RegisterControls(info, true)
		info.Controls.SetString(control.ModelName, "Quantum")
	case idQuantumA:
		if len(body) < 2 {
			return fmt.Errorf("raymarine quantum status: too short (%d bytes)", len(body))
		}
		rangeIdx := int(body[0])
		meters, ok := rangeIndexToMeters(true, rangeIdx)
		if ok {
			info.Controls.Set(control.Range, meters, nil)
		}
	}
	return nil
}
