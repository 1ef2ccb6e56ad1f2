// Package radar holds the brand-independent domain types shared by the
// locator, the per-brand receivers, and the ARPA tracker: RadarInfo,
// the Legend pixel map, the Brand enum, and the three per-brand
// behavior interfaces the generic receiver driver is parameterized by
// (spec §4.D, §9 "Brand polymorphism").
package radar

import (
	"net"

	"github.com/navbridge/radargateway/internal/control"
)

// Brand identifies a supported radar manufacturer family.
type Brand int

const (
	Navico Brand = iota
	Furuno
	Raymarine
)

func (b Brand) String() string {
	switch b {
	case Navico:
		return "Navico"
	case Furuno:
		return "Furuno"
	case Raymarine:
		return "Raymarine"
	default:
		return "Unknown"
	}
}

// Which distinguishes the A/B sub-radar of a Navico dual-range unit.
type Which string

const (
	WhichNone Which = ""
	WhichA    Which = "A"
	WhichB    Which = "B"
)

// Endpoint is a multicast or unicast IPv4 destination.
type Endpoint struct {
	IP   net.IP
	Port uint16
}

func (e Endpoint) UDPAddr() *net.UDPAddr { return &net.UDPAddr{IP: e.IP, Port: int(e.Port)} }

// HistoryPixel flags (spec §3 "HistorySpoke"), stored as independent
// bits so the ARPA tracker can both test and accumulate state for a
// bearing/radius cell across sweeps.
type HistoryPixel uint8

const (
	PixelTarget HistoryPixel = 1 << iota
	PixelBackup
	PixelApproaching
	PixelReceding
	PixelContour
)

// LegendClass is the semantic class a pixel byte value maps to.
type LegendClass int

const (
	ClassNone LegendClass = iota
	ClassNormal
	ClassBorder
	ClassDopplerApproaching
	ClassDopplerReceding
	ClassHistory
)

// Legend maps outbound pixel byte values to (semantic class, RGBA),
// produced by the receiver once pixel depth and Doppler capability are
// known (spec §3 "Legend", GLOSSARY).
type Legend struct {
	PixelValues int // count of valid signal-strength levels

	// Reserved slot values beyond PixelValues, per spec §6 "Outbound".
	Border              byte
	DopplerApproaching  byte
	DopplerReceding     byte
	HistoryStart        byte // history occupies HistoryStart..HistoryStart+31

	StrongReturn byte // minimum sample value counted as TARGET by the ARPA tracker
}

// NewLegend derives the reserved slot layout from pixelValues, matching
// the wire layout documented in spec §6: intensities occupy
// [1, pixelValues], then border, then doppler approaching/receding,
// then 32 history slots.
func NewLegend(pixelValues int, strongReturnFraction float64) Legend {
	border := byte(pixelValues + 1)
	approaching := border + 1
	receding := approaching + 1
	historyStart := receding + 1
	strong := byte(float64(pixelValues) * strongReturnFraction)
	if strong < 1 {
		strong = 1
	}
	return Legend{
		PixelValues:        pixelValues,
		Border:             border,
		DopplerApproaching: approaching,
		DopplerReceding:    receding,
		HistoryStart:       historyStart,
		StrongReturn:       strong,
	}
}

// DopplerMode selects which pixel decode table a brand applies.
type DopplerMode int

const (
	DopplerNone DopplerMode = iota
	DopplerBoth
	DopplerApproachingOnly
)

// RadarInfo is the identity and network address set for one discovered
// radar (spec §3 "RadarInfo"). Created by the locator on first beacon,
// mutated by the receiver, never destroyed on network loss so
// reconnection preserves identity.
type RadarInfo struct {
	Key Key

	Brand     Brand
	SerialNo  string
	Which     Which

	Addr            Endpoint
	NICAddr         net.IP
	SpokeDataAddr   Endpoint
	ReportAddr      Endpoint
	SendCommandAddr Endpoint

	PixelValues          int
	SpokesPerRevolution  int
	MaxSpokeLen          int
	Doppler              bool

	// Replay is true when this radar's reports/spokes are sourced from
	// a pcapreplay run rather than a live socket. A few brand quirks
	// (e.g. Furuno's range-limit ring marker) only apply to replayed
	// fixtures, never to live wire data.
	Replay bool

	Ranges         control.Ranges
	RangeDetection *control.RangeDetection

	Legend   Legend
	Controls *control.Controls
}

// Key is the stable, process-unique identity for a radar: brand +
// serial + optional A/B suffix (spec §3 "RadarInfo" invariant).
type Key string

// MakeKey builds the canonical key for a radar.
func MakeKey(brand Brand, serial string, which Which) Key {
	if which == WhichNone {
		return Key(brand.String() + "-" + serial)
	}
	return Key(brand.String() + "-" + serial + "-" + string(which))
}

// ModSpokes normalizes angle into [0, spokesPerRevolution).
func ModSpokes(angle, spokesPerRevolution int) int {
	m := angle % spokesPerRevolution
	if m < 0 {
		m += spokesPerRevolution
	}
	return m
}
