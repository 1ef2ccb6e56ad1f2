//go:build !pcap
// +build !pcap

package pcapreplay

import "fmt"

// GopacketReaderFactory is a stub when built without -tags=pcap: real
// PCAP file replay needs libpcap via cgo, which the default build
// excludes the same way the teacher gates its own PCAP reader.
type GopacketReaderFactory struct{}

func (GopacketReaderFactory) NewReader() Reader { return stubReader{} }

type stubReader struct{}

func (stubReader) Open(string) error {
	return fmt.Errorf("pcap support not enabled: rebuild with -tags=pcap")
}
func (stubReader) SetBPFFilter(string) error { return nil }
func (stubReader) NextPacket() (*Packet, error) {
	return nil, fmt.Errorf("pcap support not enabled: rebuild with -tags=pcap")
}
func (stubReader) Close() {}
