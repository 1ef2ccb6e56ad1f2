package raymarine

import (
	"encoding/binary"
	"fmt"

	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/radar"
)

// CommandEncoder implements radar.CommandEncoder for Raymarine. Unlike
// Navico and Furuno, spec.md documents Raymarine's report/data message
// ids but never a command wire format — only that commands are "on a
// distinct send socket" (spec §9). Following the same
// id-prefixed-fixed-struct convention the reports use is the smallest
// change consistent with what is documented; id 0x010002 ("fixed") is
// reused as the settings-write message since it is the one documented
// id besides spoke/status/info that isn't already a full report.
type CommandEncoder struct{}

func le32(id messageID) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(id))
	return b
}

func (e CommandEncoder) Encode(t control.ControlType, value float64, auto bool, info *radar.RadarInfo) ([]byte, error) {
	hd := info.MaxSpokeLen >= 1024
	switch t {
	case control.Range:
		idx, ok := metersToRangeIndex(hd, value)
		if !ok {
			return nil, fmt.Errorf("raymarine command: %.1fm is not in the range table", value)
		}
		return append(le32(idFixed), byte(idx)), nil
	case control.Gain:
		return append(le32(idFixed), byte(value), boolByte(auto)), nil
	case control.Sea:
		return append(le32(idFixed), byte(value), boolByte(auto)), nil
	case control.Rain:
		return append(le32(idFixed), byte(value)), nil
	case control.Status:
		return append(le32(idFixed), byte(value)), nil
	default:
		return nil, fmt.Errorf("raymarine command: %v has no wire encoding", t)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
