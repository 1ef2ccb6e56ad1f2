package furuno

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/navbridge/radargateway/internal/radar"
)

const (
	frameMagic     = 0x02
	frameHeaderLen = 16
)

// spokeHeader is the fixed 16-byte datagram header (spec §4.D.Furuno).
type spokeHeader struct {
	sweepCount   int
	sweepLen     int
	encoding     int
	haveHeading  bool
	headingRaw   uint16
	rangeIndex   int
}

func parseSpokeHeader(b []byte) (spokeHeader, error) {
	if len(b) < frameHeaderLen || b[0] != frameMagic {
		return spokeHeader{}, fmt.Errorf("furuno spoke: bad magic or short header")
	}
	h := spokeHeader{
		sweepCount:  int(b[1]),
		sweepLen:    int(binary.LittleEndian.Uint16(b[2:4])),
		encoding:    int(b[4] & 0x03),
		haveHeading: b[5] != 0,
		headingRaw:  binary.LittleEndian.Uint16(b[6:8]),
		rangeIndex:  int(b[8]),
	}
	return h, nil
}

// SpokeDecoder implements radar.SpokeDecoder for Furuno.
type SpokeDecoder struct{}

func (SpokeDecoder) DecodeSpoke(frame []byte, info *radar.RadarInfo, received time.Time) ([]radar.Spoke, error) {
	header, err := parseSpokeHeader(frame)
	if err != nil {
		return nil, err
	}
	rangeMeters, ok := rangeWireToMeters(header.rangeIndex)
	if !ok {
		return nil, fmt.Errorf("furuno spoke: unknown range wire index %d", header.rangeIndex)
	}

	body := frame[frameHeaderLen:]
	spokes := make([]radar.Spoke, 0, header.sweepCount)
	prevSpoke := make([]byte, header.sweepLen)

	offset := 0
	for s := 0; s < header.sweepCount && offset < len(body); s++ {
		encoded := body[offset:]
		pixels, consumed, err := DecodeRLE(header.encoding, encoded, prevSpoke, header.sweepLen)
		if err != nil {
			return spokes, err
		}
		offset += consumed

		var heading *int
		if header.haveHeading {
			h := int(header.headingRaw)
			heading = &h
		}

		scaled := make([]byte, len(pixels))
		for i, p := range pixels {
			scaled[i] = p >> 2
		}
		if info.Replay && len(scaled) > 0 {
			// Furuno's PCAP fixtures stamp a synthetic range-limit
			// marker on the last pixel of every spoke; live radars
			// never send this.
			scaled[len(scaled)-1] = 64
		}

		spokes = append(spokes, radar.Spoke{
			RangeMeters: rangeMeters,
			Angle:       radar.ModSpokes(s, info.SpokesPerRevolution),
			Heading:     heading,
			TimeMs:      received.UnixMilli(),
			Data:        scaled,
		})
		prevSpoke = pixels
	}
	return spokes, nil
}

// DecodeRLE decodes one encoded spoke under encoding 0..3, returning
// exactly sweepLen pixels and the number of encoded bytes consumed
// (spec §8 "Furuno RLE encodings 0,1,2,3").
//
// Encoding 3's leading byte of every spoke is always a literal seed —
// there is no established "current strength" to run-length against
// until one literal has been emitted — after which the two-low-bit
// mode selector applies to every subsequent byte. This reproduces the
// worked example in spec §8 scenario 4 exactly.
func DecodeRLE(encoding int, encoded []byte, prevSpoke []byte, sweepLen int) ([]byte, int, error) {
	out := make([]byte, 0, sweepLen)
	currentStrength := byte(0)

	switch encoding {
	case 0:
		if len(encoded) < sweepLen {
			return nil, 0, fmt.Errorf("furuno RLE-0: need %d bytes, have %d", sweepLen, len(encoded))
		}
		out = append(out, encoded[:sweepLen]...)
		return out, sweepLen, nil

	case 1, 2:
		i := 0
		for len(out) < sweepLen {
			if i >= len(encoded) {
				return nil, 0, fmt.Errorf("furuno RLE-%d: ran out of input before sweep_len", encoding)
			}
			b := encoded[i]
			i++
			if b&0x01 == 1 {
				count := int(b >> 1)
				out = appendRun(out, encoding, prevSpoke, currentStrength, count, sweepLen)
			} else {
				currentStrength = b
				out = append(out, b)
			}
		}
		return trim(out, sweepLen), i, nil

	case 3:
		i := 0
		first := true
		for len(out) < sweepLen {
			if i >= len(encoded) {
				return nil, 0, fmt.Errorf("furuno RLE-3: ran out of input before sweep_len")
			}
			b := encoded[i]
			i++
			if first {
				currentStrength = b
				out = append(out, b)
				first = false
				continue
			}
			mode := b & 0x03
			count := int(b >> 2)
			switch mode {
			case 0x01: // repeat-from-prev
				if count == 0 {
					count = 64
				}
				out = appendRun(out, 2, prevSpoke, currentStrength, count, sweepLen)
			case 0x03: // repeat-current-strength
				if count == 0 {
					count = 128
				}
				out = appendRun(out, 1, prevSpoke, currentStrength, count, sweepLen)
			default: // literal
				currentStrength = b
				out = append(out, b)
			}
		}
		return trim(out, sweepLen), i, nil

	default:
		return nil, 0, fmt.Errorf("furuno RLE: unknown encoding %d", encoding)
	}
}

// appendRun appends count copies of either the running "current
// strength" value (mode 1) or the aligned previous-spoke byte (mode 2),
// stopping early at sweepLen.
func appendRun(out []byte, mode int, prevSpoke []byte, currentStrength byte, count, sweepLen int) []byte {
	for k := 0; k < count && len(out) < sweepLen; k++ {
		if mode == 2 {
			pos := len(out)
			if pos < len(prevSpoke) {
				out = append(out, prevSpoke[pos])
			} else {
				out = append(out, 0)
			}
		} else {
			out = append(out, currentStrength)
		}
	}
	return out
}

func trim(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
