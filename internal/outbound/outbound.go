// Package outbound encodes the normalized spoke/control stream as the
// length-delimited protobuf byte channel documented in spec §6
// "Outbound (to the HTTP layer)", and fans it out to the out-of-scope
// HTTP layer's subscribers.
//
// The wire message is never run through protoc: protowire is the
// low-level field-by-field encoder from the same google.golang.org/protobuf
// module protoc-generated code would use, applied directly since there
// is no way to run the protobuf compiler in this environment. This
// keeps the outbound codec a real dependency of the actual protobuf
// ecosystem rather than a hand-rolled binary format.
package outbound

import (
	"math"
	"sync"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/navbridge/radargateway/internal/logging"
	"github.com/navbridge/radargateway/internal/radar"
)

// Field numbers for RadarMessage and Spoke (spec §6).
const (
	fieldMessageKey    = 1
	fieldMessageSpokes = 2

	fieldSpokeRangeMeters = 1
	fieldSpokeAngle       = 2
	fieldSpokeHeading     = 3
	fieldSpokeTimeMs      = 4
	fieldSpokeData        = 5
)

// EncodeRadarMessage builds the wire bytes for one RadarMessage: the
// owning radar's key plus every Spoke decoded since the last publish.
func EncodeRadarMessage(key string, spokes []radar.Spoke) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldMessageKey, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte(key))
	for _, s := range spokes {
		b = protowire.AppendTag(b, fieldMessageSpokes, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeSpoke(s))
	}
	return b
}

func encodeSpoke(s radar.Spoke) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldSpokeRangeMeters, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(s.RangeMeters))

	b = protowire.AppendTag(b, fieldSpokeAngle, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(s.Angle)))

	if s.Heading != nil {
		b = protowire.AppendTag(b, fieldSpokeHeading, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(*s.Heading)))
	}

	b = protowire.AppendTag(b, fieldSpokeTimeMs, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.TimeMs))

	b = protowire.AppendTag(b, fieldSpokeData, protowire.BytesType)
	b = protowire.AppendBytes(b, s.Data)
	return b
}

const subscriberChanBuffer = 8

// Hub is the bounded broadcast channel of encoded RadarMessage frames
// consumed by the out-of-scope HTTP layer (spec §5 "the outbound
// protobuf channel ... is bounded broadcast; lagged consumers drop
// frames, never block the receiver"). Grounded on internal/control's
// publish/subscribe fan-out, the same drop-on-full discipline applied
// to encoded bytes instead of ControlUpdate values.
type Hub struct {
	mu          sync.Mutex
	subscribers map[int]chan []byte
	nextID      int
}

// NewHub creates an empty broadcast hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[int]chan []byte)}
}

// Subscribe returns a channel of every future encoded RadarMessage. The
// caller must call the returned cancel func when done.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan []byte, subscriberChanBuffer)
	h.subscribers[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if existing, ok := h.subscribers[id]; ok {
			delete(h.subscribers, id)
			close(existing)
		}
	}
}

// Publish encodes spokes under key and fans the frame out to every
// subscriber, dropping (and logging) on any that is backed up.
func (h *Hub) Publish(key string, spokes []radar.Spoke) {
	frame := EncodeRadarMessage(key, spokes)
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- frame:
		default:
			logging.Opsf("outbound: subscriber backed up, dropping a frame for %s", key)
		}
	}
}
