package raymarine

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/navbridge/radargateway/internal/radar"
)

// ListenAddr is the Raymarine reports/data multicast group. spec.md
// documents Raymarine's message-id family but, like Furuno, gives no
// byte layout for a dedicated discovery beacon — a radar is considered
// discovered the first time one of its status/info messages is seen on
// this group, so BeaconParser.Parse is driven by the same id-prefixed
// framing as the report handler rather than a separate beacon format.
var ListenAddr = radar.Endpoint{IP: net.IPv4(224, 0, 0, 1), Port: 5800}

const (
	idLen        = 4
	serialOffset = 4
	serialLen    = 16
)

// BeaconParser implements radar.BeaconParser for Raymarine.
type BeaconParser struct{}

func (BeaconParser) ListenGroup() radar.Endpoint { return ListenAddr }

func (BeaconParser) WakePackets() [][]byte { return nil } // Raymarine radars announce unprompted

func (BeaconParser) Parse(payload []byte, fromAddr *net.UDPAddr, nicAddr net.IP) ([]radar.Discovery, error) {
	if len(payload) < idLen {
		return nil, fmt.Errorf("raymarine beacon: too short (%d bytes)", len(payload))
	}
	id := messageID(binary.LittleEndian.Uint32(payload[:idLen]))
	if id != idInfo {
		// Only the info message (0x010006) carries a serial; status and
		// spoke messages arrive before it is of any use to the locator.
		return nil, nil
	}
	if len(payload) < serialOffset+serialLen {
		return nil, fmt.Errorf("raymarine beacon: info message too short (%d bytes)", len(payload))
	}
	serial := decodeASCIIPartNumber(payload[serialOffset : serialOffset+serialLen])

	endpoint := radar.Endpoint{IP: fromAddr.IP, Port: uint16(fromAddr.Port)}
	return []radar.Discovery{{
		Brand:           radar.Raymarine,
		Serial:          serial,
		Which:           radar.WhichNone,
		Addr:            endpoint,
		SpokeDataAddr:   ListenAddr,
		ReportAddr:      ListenAddr,
		SendCommandAddr: endpoint,
	}}, nil
}

func decodeASCIIPartNumber(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 && b[n] >= 0x20 && b[n] < 0x7F {
		n++
	}
	return string(b[:n])
}

// Behaviors returns the Raymarine Behaviors bundle. Like Furuno, there
// is no Bootstrap: HD/non-HD and the control set are only known once
// the info (or Quantum fixed) message identifies the model.
func Behaviors() radar.Behaviors {
	return radar.Behaviors{
		Beacon:  BeaconParser{},
		Report:  ReportHandler{},
		Command: CommandEncoder{},
		Spoke:   SpokeDecoder{},
	}
}
