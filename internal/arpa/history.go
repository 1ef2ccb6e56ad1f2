package arpa

import (
	"time"

	"github.com/navbridge/radargateway/internal/radar"
)

// OwnShipFix is the own-ship position cached for one history slot, read
// from the out-of-scope navigation ingester at spoke-receive time (spec
// §9 "global mutable navigation"). Valid is false when the nav cache
// has gone stale; a stale fix degrades ARPA geolocation silently rather
// than producing a wrong one.
type OwnShipFix struct {
	Lat, Lon float64
	Valid    bool
}

// HistorySpoke is one bearing slot of the radial history buffer (spec
// §3 "HistorySpoke").
type HistorySpoke struct {
	Time    time.Time
	OwnShip OwnShipFix
	Pixels  []radar.HistoryPixel // one per radius sample, len == maxSpokeLen
}

// History is the fixed-size polar buffer: exactly spokesPerRevolution
// slots, each overwritten as a spoke at that bearing arrives (spec §3
// "HistorySpoke" invariant).
type History struct {
	SpokesPerRevolution int
	MaxSpokeLen         int
	slots               []HistorySpoke
}

// NewHistory allocates an empty buffer.
func NewHistory(spokesPerRevolution, maxSpokeLen int) *History {
	slots := make([]HistorySpoke, spokesPerRevolution)
	for i := range slots {
		slots[i].Pixels = make([]radar.HistoryPixel, maxSpokeLen)
	}
	return &History{
		SpokesPerRevolution: spokesPerRevolution,
		MaxSpokeLen:         maxSpokeLen,
		slots:               slots,
	}
}

// Slot returns the history slot at angle, normalized into range.
func (h *History) Slot(angle int) *HistorySpoke {
	return &h.slots[radar.ModSpokes(angle, h.SpokesPerRevolution)]
}

// Update overwrites the slot at angle with a freshly classified spoke
// (spec §4.E step 1): TARGET iff the sample is at least
// legend.StrongReturn, APPROACHING/RECEDING from the reserved Doppler
// legend values, CONTOUR bits are drawn separately once a contour is
// traced.
func (h *History) Update(angle int, t time.Time, own OwnShipFix, data []byte, legend radar.Legend) {
	slot := h.Slot(angle)
	slot.Time = t
	slot.OwnShip = own
	n := len(slot.Pixels)
	if len(data) < n {
		n = len(data)
	}
	for i := 0; i < n; i++ {
		slot.Pixels[i] = classifyPixel(data[i], legend)
	}
	for i := n; i < len(slot.Pixels); i++ {
		slot.Pixels[i] = 0
	}
}

func classifyPixel(sample byte, legend radar.Legend) radar.HistoryPixel {
	var p radar.HistoryPixel
	switch sample {
	case legend.DopplerApproaching:
		p |= radar.PixelApproaching | radar.PixelTarget
	case legend.DopplerReceding:
		p |= radar.PixelReceding | radar.PixelTarget
	default:
		if sample >= legend.StrongReturn && sample > 0 && sample <= byte(legend.PixelValues) {
			p |= radar.PixelTarget
		}
	}
	return p
}

// IsBlob reports whether the pixel at (angle, r) counts toward a blob:
// any of TARGET/APPROACHING/RECEDING set.
func (h *History) IsBlob(angle, r int) bool {
	if r < 0 || r >= h.MaxSpokeLen {
		return false
	}
	slot := h.Slot(angle)
	p := slot.Pixels[r]
	return p&(radar.PixelTarget|radar.PixelApproaching|radar.PixelReceding) != 0
}

// ClearFootprint erases TARGET/APPROACHING/RECEDING within a radial
// square centered on (angle, r) plus margin pixels in every direction,
// then re-sets CONTOUR along pts (spec §4.E step 8).
func (h *History) ClearFootprint(angle, r, margin int, pts []Point) {
	for da := -margin; da <= margin; da++ {
		for dr := -margin; dr <= margin; dr++ {
			a := radar.ModSpokes(angle+da, h.SpokesPerRevolution)
			rr := r + dr
			if rr < 0 || rr >= h.MaxSpokeLen {
				continue
			}
			h.slots[a].Pixels[rr] &^= radar.PixelTarget | radar.PixelApproaching | radar.PixelReceding
		}
	}
	for _, pt := range pts {
		a := radar.ModSpokes(pt.Angle, h.SpokesPerRevolution)
		if pt.R < 0 || pt.R >= h.MaxSpokeLen {
			continue
		}
		h.slots[a].Pixels[pt.R] |= radar.PixelContour
	}
}
