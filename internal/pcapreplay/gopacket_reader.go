//go:build pcap
// +build pcap

package pcapreplay

import (
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// GopacketReader reads packets from a real PCAP file via libpcap.
// Built only with -tags=pcap, matching the teacher's gating of its own
// cgo-dependent PCAP reader.
type GopacketReader struct {
	handle *pcap.Handle
	source *gopacket.PacketSource
}

// GopacketReaderFactory constructs GopacketReaders.
type GopacketReaderFactory struct{}

func (GopacketReaderFactory) NewReader() Reader { return &GopacketReader{} }

func (r *GopacketReader) Open(filename string) error {
	handle, err := pcap.OpenOffline(filename)
	if err != nil {
		return fmt.Errorf("open pcap file %s: %w", filename, err)
	}
	r.handle = handle
	r.source = gopacket.NewPacketSource(handle, handle.LinkType())
	return nil
}

func (r *GopacketReader) SetBPFFilter(filter string) error {
	if r.handle == nil {
		return fmt.Errorf("pcap reader not open")
	}
	return r.handle.SetBPFFilter(filter)
}

func (r *GopacketReader) NextPacket() (*Packet, error) {
	packet, err := r.source.NextPacket()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	udpLayer := packet.Layer(layers.LayerTypeUDP)
	if udpLayer == nil {
		return &Packet{Timestamp: packet.Metadata().Timestamp}, nil
	}
	udp, ok := udpLayer.(*layers.UDP)
	if !ok {
		return &Packet{Timestamp: packet.Metadata().Timestamp}, nil
	}

	return &Packet{
		DestPort:  int(udp.DstPort),
		Payload:   udp.Payload,
		Timestamp: packet.Metadata().Timestamp,
	}, nil
}

func (r *GopacketReader) Close() {
	if r.handle != nil {
		r.handle.Close()
	}
}
