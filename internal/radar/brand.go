package radar

import (
	"net"
	"time"

	"github.com/navbridge/radargateway/internal/control"
)

// Spoke is one radial line of samples, already decoded into the
// canonical pixel legend and ready for outbound publication (spec §3
// "GLOSSARY", §6 "Outbound").
type Spoke struct {
	RangeMeters float64
	Angle       int // spoke units, [0, SpokesPerRevolution)
	Heading     *int
	TimeMs      int64
	Data        []byte
}

// Discovery is what a brand's beacon parser reports back to the
// locator: enough to build or update a RadarInfo (spec §4.B).
type Discovery struct {
	Brand           Brand
	Serial          string
	Which           Which
	Addr            Endpoint
	SpokeDataAddr   Endpoint
	ReportAddr      Endpoint
	SendCommandAddr Endpoint
}

// BeaconParser finds radars via multicast beacons (spec §4.B "Locator").
type BeaconParser interface {
	// ListenGroup is the multicast/broadcast group this brand's beacons
	// arrive on.
	ListenGroup() Endpoint
	// WakePackets are broadcast periodically while searching, to prompt
	// radars of this brand to announce themselves.
	WakePackets() [][]byte
	// Parse decodes a beacon payload received from fromAddr on nic.
	Parse(payload []byte, fromAddr *net.UDPAddr, nicAddr net.IP) ([]Discovery, error)
}

// ReportHandler parses a brand's binary/ASCII reports into control
// updates on a RadarInfo already owned by a receiver (spec §4.D
// "Report parsing — common rules").
type ReportHandler interface {
	// HandleReport parses one report record and applies any resulting
	// control writes to info.Controls. Records of unknown id are
	// logged once per id and otherwise ignored, never erroring.
	HandleReport(data []byte, info *RadarInfo) error
}

// CommandEncoder turns a control write into the brand's wire command
// bytes (spec §4.D, §6).
type CommandEncoder interface {
	Encode(t control.ControlType, value float64, auto bool, info *RadarInfo) ([]byte, error)
}

// SpokeDecoder turns one brand-specific spoke data frame into zero or
// more canonical Spokes (spec §4.D "Pixel expansion").
type SpokeDecoder interface {
	DecodeSpoke(frame []byte, info *RadarInfo, received time.Time) ([]Spoke, error)
}

// Behaviors bundles the three per-brand capabilities the generic
// receiver driver is parameterized by (spec §9 "Brand polymorphism" —
// tagged-variant dispatch on Brand at task-spawn time, behavior
// objects thereafter).
//
// Bootstrap installs whatever controls a brand can register without
// looking at report contents; the receiver calls it once, when the first
// report arrives and before that report is parsed (Navico's base control
// set is the same across every model, spec §4.D). Brands whose control set depends on report
// contents (Furuno, Raymarine — model identified from N96/info
// messages) leave this nil; their ReportHandler registers controls
// itself once the model is known.
// InitialCommands, when non-nil, returns the wire lines the receiver
// sends once on first report (Furuno's startup `R`-queries; spec
// §4.D.Furuno). Heartbeat, when non-nil, returns the periodic keep-alive
// line the receiver sends every 5s instead of (not in addition to) the
// generic report-request heartbeat (Furuno's AliveCheck).
type Behaviors struct {
	Beacon          BeaconParser
	Report          ReportHandler
	Command         CommandEncoder
	Spoke           SpokeDecoder
	Bootstrap       func(*RadarInfo)
	InitialCommands func(*RadarInfo) [][]byte
	Heartbeat       func(*RadarInfo) []byte
}
