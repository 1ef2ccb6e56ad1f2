// Package pcapreplay replays a previously captured radar session from a
// PCAP file back onto in-process byte channels, standing in for a live
// UDP socket during development and regression testing (spec §4.F).
//
// Grounded on the teacher's internal/lidar/network PCAP reader split:
// a PCAPReader/PCAPReaderFactory interface pair with a MockPCAPReader
// for tests, and a real gopacket/pcap implementation gated behind a
// "pcap" build tag since libpcap's cgo dependency shouldn't be forced
// on every build of the gateway.
package pcapreplay

import (
	"context"
	"sync"
	"time"
)

// Packet is one captured UDP datagram.
type Packet struct {
	DestPort  int
	Payload   []byte
	Timestamp time.Time
}

// Reader reads captured packets from a PCAP file. This abstraction
// keeps replay logic testable without a real capture file.
type Reader interface {
	Open(filename string) error
	SetBPFFilter(filter string) error
	NextPacket() (*Packet, error)
	Close()
}

// ReaderFactory creates Readers, letting callers inject a mock in tests.
type ReaderFactory interface {
	NewReader() Reader
}

// PortRouter dispatches a replayed packet's payload to the channel
// registered for its destination UDP port (a radar's report, info,
// speed, or spoke-data socket per spec §9 "per-destination channels").
type PortRouter struct {
	mu    sync.Mutex
	ports map[int]chan<- []byte
}

// NewPortRouter creates an empty router.
func NewPortRouter() *PortRouter {
	return &PortRouter{ports: make(map[int]chan<- []byte)}
}

// Register wires a destination port to the channel a receiver.Inputs
// field reads from.
func (r *PortRouter) Register(port int, ch chan<- []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ports[port] = ch
}

func (r *PortRouter) route(port int, payload []byte) (chan<- []byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.ports[port]
	return ch, ok
}

// Config controls one replay run.
type Config struct {
	// SpeedMultiplier scales inter-packet delay; 0 means read as fast
	// as possible (used by tests), 1.0 reproduces original timing.
	SpeedMultiplier float64
	BPFFilter       string
}

// Replay drives factory-created Reader packets onto router until the
// file is exhausted or ctx is cancelled, pacing delivery by each
// packet's capture timestamp scaled by SpeedMultiplier.
func Replay(ctx context.Context, factory ReaderFactory, filename string, router *PortRouter, cfg Config) error {
	reader := factory.NewReader()
	defer reader.Close()

	if err := reader.Open(filename); err != nil {
		return err
	}
	if cfg.BPFFilter != "" {
		if err := reader.SetBPFFilter(cfg.BPFFilter); err != nil {
			return err
		}
	}

	var lastTimestamp time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pkt, err := reader.NextPacket()
		if err != nil {
			return err
		}
		if pkt == nil {
			return nil
		}

		if cfg.SpeedMultiplier > 0 && !lastTimestamp.IsZero() {
			delay := pkt.Timestamp.Sub(lastTimestamp)
			if delay > 0 {
				scaled := time.Duration(float64(delay) / cfg.SpeedMultiplier)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(scaled):
				}
			}
		}
		lastTimestamp = pkt.Timestamp

		if ch, ok := router.route(pkt.DestPort, pkt.Payload); ok {
			select {
			case ch <- pkt.Payload:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
