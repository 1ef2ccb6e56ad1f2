// Package navico implements the Navico (BR24, 3G, 4G, HALO) beacon
// locator, report parser, command encoder, and spoke decoder (spec
// §4.D "Navico details", §6).
package navico

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/navbridge/radargateway/internal/radar"
)

// ListenAddr is the Navico beacon multicast group (spec §6).
var ListenAddr = radar.Endpoint{IP: net.IPv4(236, 6, 7, 5), Port: 6878}

const (
	beaconMagic0 = 0x01
	beaconMagic1 = 0xB2
	wakeMagic0   = 0x01
	wakeMagic1   = 0xB1

	beaconSingleRangeLen = 234
	beaconDualRangeLen   = 320

	serialOffset = 2
	serialLen    = 16
	radarAddrOff = 18 // NetAddr: 4-byte IPv4 + 2-byte big-endian port
	netAddrLen   = 6

	// headerLen is sizeof(NavicoBeaconHeader): _id(2) + serial_no(16) +
	// radar_addr(6) + _filler1(12) + _addr1(6) + _filler2(4) + _addr2(6)
	// + _filler3(10) + _addr3(6) + _filler4(4) + _addr4(6).
	headerLen = 78

	// subBlockLen is sizeof(NavicoBeaconRadar): _filler1(10) + data(6) +
	// _filler2(4) + send(6) + _filler3(4) + report(6). Sub-radar blocks
	// sit back-to-back right after the header, "A" first and "B" (when
	// present) immediately after; anything past the second block is
	// further undocumented address data we don't care about.
	subBlockLen = 36

	subBlockDataOff   = 10
	subBlockSendOff   = subBlockDataOff + netAddrLen + 4
	subBlockReportOff = subBlockSendOff + netAddrLen + 4
)

// BeaconParser implements radar.BeaconParser for Navico.
type BeaconParser struct{}

func (BeaconParser) ListenGroup() radar.Endpoint { return ListenAddr }

func (BeaconParser) WakePackets() [][]byte {
	return [][]byte{{wakeMagic0, wakeMagic1}}
}

func readNetAddr(b []byte) radar.Endpoint {
	ip := net.IPv4(b[0], b[1], b[2], b[3])
	port := binary.BigEndian.Uint16(b[4:6])
	return radar.Endpoint{IP: ip, Port: port}
}

// Parse decodes a 234-byte (single-range) or 320-byte (dual-range)
// beacon payload (spec §6 "Navico beacon").
func (BeaconParser) Parse(payload []byte, fromAddr *net.UDPAddr, nicAddr net.IP) ([]radar.Discovery, error) {
	if len(payload) != beaconSingleRangeLen && len(payload) != beaconDualRangeLen {
		return nil, fmt.Errorf("navico beacon: unexpected length %d", len(payload))
	}
	if payload[0] != beaconMagic0 || payload[1] != beaconMagic1 {
		return nil, fmt.Errorf("navico beacon: bad magic %#02x%02x", payload[0], payload[1])
	}

	serial := decodeZeroPaddedASCII(payload[serialOffset : serialOffset+serialLen])
	radarAddr := readNetAddr(payload[radarAddrOff : radarAddrOff+netAddrLen])

	dual := len(payload) == beaconDualRangeLen
	subCount := 1
	if dual {
		subCount = 2
	}

	discoveries := make([]radar.Discovery, 0, subCount)
	for i := 0; i < subCount; i++ {
		// Sub-radar address blocks sit immediately after the fixed
		// 78-byte header, "A" first and "B" (dual-range only) right
		// after it; the offset is forward from the start of the
		// packet, never from the end.
		off := headerLen + i*subBlockLen

		dataAddr := readNetAddr(payload[off+subBlockDataOff : off+subBlockDataOff+netAddrLen])
		sendAddr := readNetAddr(payload[off+subBlockSendOff : off+subBlockSendOff+netAddrLen])
		reportAddr := readNetAddr(payload[off+subBlockReportOff : off+subBlockReportOff+netAddrLen])

		which := radar.WhichNone
		if dual {
			if i == 0 {
				which = radar.WhichA
			} else {
				which = radar.WhichB
			}
		}

		discoveries = append(discoveries, radar.Discovery{
			Brand:           radar.Navico,
			Serial:          serial,
			Which:           which,
			Addr:            radarAddr,
			SpokeDataAddr:   dataAddr,
			SendCommandAddr: sendAddr,
			ReportAddr:      reportAddr,
		})
	}

	return discoveries, nil
}

func decodeZeroPaddedASCII(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// Behaviors returns the Navico Behaviors bundle, including the
// Bootstrap hook that registers the base control set before the first
// report is parsed (every Navico model shares it; spec §4.D).
func Behaviors() radar.Behaviors {
	return radar.Behaviors{
		Beacon:    BeaconParser{},
		Report:    ReportHandler{},
		Command:   CommandEncoder{},
		Spoke:     SpokeDecoder{},
		Bootstrap: RegisterBaseControls,
	}
}
