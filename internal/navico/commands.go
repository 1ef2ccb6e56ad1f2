package navico

import (
	"encoding/binary"
	"fmt"

	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/radar"
)

// Command opcodes (first two bytes of the command payload, spec §6
// "Navico command endpoints").
var (
	opRange               = []byte{0xc1, 0x03}
	opSubCommand          = []byte{0xc1, 0x06}
	opInterference        = []byte{0xc1, 0x08}
	opHaloSea             = []byte{0xc1, 0x11}
	opNoTransmit          = []byte{0xc1, 0x0d}
	opNoTransmitHalo      = []byte{0xc1, 0xc0}
	opAntennaHeight       = []byte{0xc1, 0x30}
	opAccentLight         = []byte{0xc1, 0x31}
	opPowerOff            = []byte{0xc1, 0x00}
	opPowerOn             = []byte{0xc1, 0x01}
)

// sub-command IDs used under opSubCommand (spec §6).
const (
	subGain             = 0x00
	subSea              = 0x02
	subRain             = 0x04
	subMode             = 0x06
	subTargetBoost      = 0x08
	subTargetExpansion  = 0x09
	subScanSpeed        = 0x0a
	subNoiseRejection   = 0x21
	subTargetSeparation = 0x22
	subSideLobe         = 0x24
	subDoppler          = 0x31
	subDopplerThreshold = 0x32
	subBearingAlignment = 0x33
)

// CommandEncoder implements radar.CommandEncoder for Navico.
type CommandEncoder struct{}

func le16(v int16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func autoByte(auto bool) byte {
	if auto {
		return 1
	}
	return 0
}

func (CommandEncoder) Encode(t control.ControlType, value float64, auto bool, info *radar.RadarInfo) ([]byte, error) {
	switch t {
	case control.Range:
		raw := uint32(value / rangeWireScale)
		return append(append([]byte{}, opRange...), le32(raw)...), nil

	case control.Gain:
		return subCommandByte(opSubCommand, subGain, byte(value), autoByte(auto)), nil
	case control.Sea:
		if info.Doppler {
			return append(append([]byte{}, opHaloSea...), byte(value), autoByte(auto)), nil
		}
		return subCommandByte(opSubCommand, subSea, byte(value), autoByte(auto)), nil
	case control.Rain:
		return subCommandByte(opSubCommand, subRain, byte(value), 0), nil
	case control.Mode:
		return subCommandByte(opSubCommand, subMode, byte(value), 0), nil
	case control.TargetBoost:
		return subCommandByte(opSubCommand, subTargetBoost, byte(value), 0), nil
	case control.TargetExpansion:
		return subCommandByte(opSubCommand, subTargetExpansion, byte(value), 0), nil
	case control.ScanSpeed:
		return subCommandByte(opSubCommand, subScanSpeed, byte(value), 0), nil
	case control.NoiseRejection:
		return subCommandByte(opSubCommand, subNoiseRejection, byte(value), 0), nil
	case control.TargetSeparation:
		return subCommandByte(opSubCommand, subTargetSeparation, byte(value), 0), nil
	case control.SideLobeSuppression:
		return subCommandByte(opSubCommand, subSideLobe, byte(value), autoByte(auto)), nil
	case control.Doppler:
		return subCommandByte(opSubCommand, subDoppler, byte(value), 0), nil
	case control.DopplerSpeedThreshold:
		b := append([]byte{}, opSubCommand...)
		b = append(b, subDopplerThreshold)
		b = append(b, le16(int16(value))...)
		return b, nil
	case control.BearingAlignment:
		b := append([]byte{}, opSubCommand...)
		b = append(b, subBearingAlignment)
		b = append(b, le16(int16(value*10))...)
		return b, nil

	case control.InterferenceRejection:
		return append(append([]byte{}, opInterference...), byte(value)), nil

	case control.AntennaHeight:
		raw := uint32(value * 1000)
		return append(append([]byte{}, opAntennaHeight...), le32(raw)...), nil
	case control.AccentLight:
		return append(append([]byte{}, opAccentLight...), byte(value)), nil

	case control.NoTransmitStart1, control.NoTransmitEnd1,
		control.NoTransmitStart2, control.NoTransmitEnd2,
		control.NoTransmitStart3, control.NoTransmitEnd3,
		control.NoTransmitStart4, control.NoTransmitEnd4:
		op := opNoTransmit
		if info.Doppler {
			op = opNoTransmitHalo
		}
		sector, isStart := noTransmitSector(t)
		b := append([]byte{}, op...)
		b = append(b, byte(sector), boolByte(isStart))
		b = append(b, le16(int16(value*10))...)
		return b, nil

	case control.Status:
		if value == float64(control.StatusTransmit) {
			return append([]byte{}, opPowerOn...), nil
		}
		return append([]byte{}, opPowerOff...), nil

	default:
		return nil, fmt.Errorf("navico command: %v has no wire encoding", t)
	}
}

func subCommandByte(op []byte, sub, value, auto byte) []byte {
	b := append([]byte{}, op...)
	return append(b, sub, value, auto)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func noTransmitSector(t control.ControlType) (sector int, isStart bool) {
	switch t {
	case control.NoTransmitStart1:
		return 0, true
	case control.NoTransmitEnd1:
		return 0, false
	case control.NoTransmitStart2:
		return 1, true
	case control.NoTransmitEnd2:
		return 1, false
	case control.NoTransmitStart3:
		return 2, true
	case control.NoTransmitEnd3:
		return 2, false
	case control.NoTransmitStart4:
		return 3, true
	case control.NoTransmitEnd4:
		return 3, false
	default:
		return -1, false
	}
}
