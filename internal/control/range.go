package control

import (
	"fmt"
	"math"
)

// Range is a single radar scale.
type Range struct {
	DistanceMeters float64
}

// IsMetric reports whether the range is conventionally expressed in
// metric units (a multiple of 25/50/75/100) rather than nautical miles.
func (r Range) IsMetric() bool {
	d := r.DistanceMeters
	for _, step := range []float64{25, 50, 75, 100} {
		if math.Mod(d, step) < 1e-6 {
			return true
		}
	}
	return false
}

const metersPerNauticalMile = 1852.0

// Label formats the range the way the radar's own UI would: "1/4 nm",
// "750 m", "6 nm".
func (r Range) Label() string {
	if r.IsMetric() {
		return fmt.Sprintf("%d m", int(r.DistanceMeters+0.5))
	}
	nm := r.DistanceMeters / metersPerNauticalMile
	if nm < 1 {
		// Render common fractional nm labels.
		switch {
		case approxEqual(nm, 0.125):
			return "1/8 nm"
		case approxEqual(nm, 0.25):
			return "1/4 nm"
		case approxEqual(nm, 0.5):
			return "1/2 nm"
		case approxEqual(nm, 0.75):
			return "3/4 nm"
		default:
			return fmt.Sprintf("%.2f nm", nm)
		}
	}
	if nm == float64(int64(nm)) {
		return fmt.Sprintf("%d nm", int64(nm))
	}
	return fmt.Sprintf("%.1f nm", nm)
}

func approxEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}

// Ranges is an ordered, de-duplicated collection of Range values. A
// Ranges is always sorted ascending with no duplicates; Metric and
// Nautical are views into the same ordered set.
type Ranges struct {
	all []Range
}

// NewRanges builds a Ranges from distances in meters, sorting and
// de-duplicating them.
func NewRanges(metersValues []float64) Ranges {
	seen := make(map[float64]struct{}, len(metersValues))
	uniq := make([]float64, 0, len(metersValues))
	for _, v := range metersValues {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		uniq = append(uniq, v)
	}
	insertionSort(uniq)

	rs := make([]Range, len(uniq))
	for i, v := range uniq {
		rs[i] = Range{DistanceMeters: v}
	}
	return Ranges{all: rs}
}

func insertionSort(xs []float64) {
	for i := 1; i < len(xs); i++ {
		v := xs[i]
		j := i - 1
		for j >= 0 && xs[j] > v {
			xs[j+1] = xs[j]
			j--
		}
		xs[j+1] = v
	}
}

// All returns the full sorted, de-duplicated set.
func (r Ranges) All() []Range { return r.all }

// Len reports the number of distinct ranges.
func (r Ranges) Len() int { return len(r.all) }

// Metric returns only the metric-labeled subset, in ascending order.
func (r Ranges) Metric() []Range {
	var out []Range
	for _, v := range r.all {
		if v.IsMetric() {
			out = append(out, v)
		}
	}
	return out
}

// Nautical returns only the nautical-labeled subset, in ascending order.
func (r Ranges) Nautical() []Range {
	var out []Range
	for _, v := range r.all {
		if !v.IsMetric() {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether meters is present in the set (exact match).
func (r Ranges) Contains(meters float64) bool {
	for _, v := range r.all {
		if v.DistanceMeters == meters {
			return true
		}
	}
	return false
}

// AllPossibleMetricRanges and AllPossibleNauticalRanges are the
// brand-independent candidate sets range-detection walks, filtered per
// radar by [min_range, max_range] (spec §4.D "Adaptive range
// discovery").
var AllPossibleMetricRanges = []float64{
	25, 50, 75, 100, 250, 500, 750, 1000, 1500, 2000, 3000, 4000, 6000, 8000, 12000, 16000, 24000, 36000, 48000, 64000, 96000,
}

// AllPossibleNauticalRanges expresses common nautical-mile fractions
// and whole miles, in meters.
var AllPossibleNauticalRanges = func() []float64 {
	nm := []float64{0.125, 0.25, 0.5, 0.75, 1, 1.5, 2, 3, 4, 6, 8, 12, 16, 24, 36, 48, 64, 72, 96}
	out := make([]float64, len(nm))
	for i, v := range nm {
		out[i] = v * metersPerNauticalMile
	}
	return out
}()
