package raymarine

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/radar"
)

const (
	spokeEscape      = 0x5C
	spokeHeaderLen   = 16
	angleOffset      = 4
	headingOffset    = 6
)

// SpokeDecoder implements radar.SpokeDecoder for Raymarine. Whether HD
// expansion applies (1024-wide, each byte one pixel value>>1) or non-HD
// (512-wide, each byte two nibble pixels) is read from info.MaxSpokeLen,
// set by RegisterControls once the model is identified.
type SpokeDecoder struct{}

func (d SpokeDecoder) DecodeSpoke(frame []byte, info *radar.RadarInfo, received time.Time) ([]radar.Spoke, error) {
	if len(frame) < idLen+spokeHeaderLen {
		return nil, fmt.Errorf("raymarine spoke: too short (%d bytes)", len(frame))
	}
	header := frame[idLen : idLen+spokeHeaderLen]
	body := frame[idLen+spokeHeaderLen:]
	hd := info.MaxSpokeLen >= 1024

	angle := radar.ModSpokes(int(binary.LittleEndian.Uint16(header[angleOffset:angleOffset+2])), info.SpokesPerRevolution)
	headingRaw := binary.LittleEndian.Uint16(header[headingOffset : headingOffset+2])
	var heading *int
	if headingRaw != 0xFFFF {
		h := int(headingRaw)
		heading = &h
	}

	raw, err := DecodeRLE(body, info.MaxSpokeLen)
	if err != nil {
		return nil, err
	}
	pixels := expandPixels(raw, hd)

	rangeMeters := 0.0
	if ctrl, ok := info.Controls.Get(control.Range); ok {
		rangeMeters = ctrl.Value
	}

	return []radar.Spoke{{
		RangeMeters: rangeMeters,
		Angle:       angle,
		Heading:     heading,
		TimeMs:      received.UnixMilli(),
		Data:        pixels,
	}}, nil
}

// DecodeRLE decodes Raymarine's escape-byte RLE: 0x5C is the escape;
// "5C count value" expands to count copies of value; any other byte is
// literal (spec §4.D, §8).
func DecodeRLE(encoded []byte, want int) ([]byte, error) {
	out := make([]byte, 0, want)
	i := 0
	for len(out) < want {
		if i >= len(encoded) {
			return nil, fmt.Errorf("raymarine RLE: ran out of input before %d bytes", want)
		}
		b := encoded[i]
		i++
		if b == spokeEscape {
			if i+1 >= len(encoded) {
				return nil, fmt.Errorf("raymarine RLE: truncated escape sequence")
			}
			count := int(encoded[i])
			value := encoded[i+1]
			i += 2
			for k := 0; k < count && len(out) < want; k++ {
				out = append(out, value)
			}
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// expandPixels applies the HD/non-HD scaling documented in spec §4.D:
// HD each decoded byte is one pixel (value >> 1); non-HD each byte
// produces two nibble pixels.
func expandPixels(raw []byte, hd bool) []byte {
	if hd {
		out := make([]byte, len(raw))
		for i, b := range raw {
			out[i] = b >> 1
		}
		return out
	}
	// Non-HD nibbles are scaled ×8 to land in the same intensity range
	// as HD's value>>1 (spec §8 round-trip law).
	out := make([]byte, 0, len(raw)*2)
	for _, b := range raw {
		out = append(out, (b&0x0F)<<3, (b>>4)<<3)
	}
	return out
}
