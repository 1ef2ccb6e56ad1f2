package furuno

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/navbridge/radargateway/internal/radar"
)

// ListenAddr is the Furuno discovery broadcast group. Spec.md documents
// byte layouts for Navico and Raymarine beacons but is silent on
// Furuno's (it only specifies the TCP login step that follows
// discovery, and marks that login itself out of scope). This parser
// targets the minimal payload a locator needs to hand off to that
// login step: a zero-padded ASCII serial and the TCP command port.
var ListenAddr = radar.Endpoint{IP: net.IPv4bcast, Port: 10010}

const (
	beaconMagic0 = 'F'
	beaconMagic1 = 'R'

	beaconLen    = 24
	serialOffset = 2
	serialLen    = 16
	portOffset   = 18
)

// BeaconParser implements radar.BeaconParser for Furuno.
type BeaconParser struct{}

func (BeaconParser) ListenGroup() radar.Endpoint { return ListenAddr }

func (BeaconParser) WakePackets() [][]byte {
	return [][]byte{{beaconMagic0, beaconMagic1, 0x00}}
}

func (BeaconParser) Parse(payload []byte, fromAddr *net.UDPAddr, nicAddr net.IP) ([]radar.Discovery, error) {
	if len(payload) != beaconLen {
		return nil, fmt.Errorf("furuno beacon: unexpected length %d", len(payload))
	}
	if payload[0] != beaconMagic0 || payload[1] != beaconMagic1 {
		return nil, fmt.Errorf("furuno beacon: bad magic %#02x%02x", payload[0], payload[1])
	}
	serial := decodeZeroPaddedASCII(payload[serialOffset : serialOffset+serialLen])
	port := binary.BigEndian.Uint16(payload[portOffset : portOffset+2])

	loginAddr := radar.Endpoint{IP: fromAddr.IP, Port: port}
	return []radar.Discovery{{
		Brand:           radar.Furuno,
		Serial:          serial,
		Which:           radar.WhichNone,
		Addr:            loginAddr,
		SendCommandAddr: loginAddr, // Furuno multiplexes commands+reports on one TCP socket
		ReportAddr:      loginAddr,
	}}, nil
}

func decodeZeroPaddedASCII(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// Behaviors returns the Furuno Behaviors bundle. Furuno has no
// Bootstrap: the control set depends on the model, which is unknown
// until the N96 modules report arrives (reports.go's handleModules).
func Behaviors() radar.Behaviors {
	return radar.Behaviors{
		Beacon:          BeaconParser{},
		Report:          ReportHandler{},
		Command:         CommandEncoder{},
		Spoke:           SpokeDecoder{},
		InitialCommands: func(*radar.RadarInfo) [][]byte { return InitialQueries() },
		Heartbeat:       func(*radar.RadarInfo) []byte { return AliveCheckLine() },
	}
}
