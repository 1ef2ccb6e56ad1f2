package raymarine

// rangeTableRD is the 11-entry range table reported inside the analog
// RD status message, in nautical miles, scaled ×1852 to meters (spec
// §4.D "Range is an index into an 11- or 20-entry table").
var rangeTableRD = []float64{
	0.125, 0.25, 0.5, 0.75, 1, 1.5, 3, 6, 12, 24, 36,
}

// rangeTableHD is the 20-entry table used by HD and Quantum units.
var rangeTableHD = []float64{
	0.125, 0.25, 0.375, 0.5, 0.75, 1, 1.5, 2, 3, 4,
	6, 8, 12, 16, 24, 32, 36, 48, 72, 96,
}

func rangeTableFor(hd bool) []float64 {
	if hd {
		return rangeTableHD
	}
	return rangeTableRD
}

// rangeIndexToMeters resolves a range table index to meters.
func rangeIndexToMeters(hd bool, index int) (float64, bool) {
	table := rangeTableFor(hd)
	if index < 0 || index >= len(table) {
		return 0, false
	}
	return table[index] * nauticalMileMeters, true
}

// metersToRangeIndex finds the closest table entry, for command encoding.
func metersToRangeIndex(hd bool, meters float64) (int, bool) {
	table := rangeTableFor(hd)
	best := -1
	bestDelta := 0.0
	for i, nm := range table {
		delta := nm*nauticalMileMeters - meters
		if delta < 0 {
			delta = -delta
		}
		if best == -1 || delta < bestDelta {
			best, bestDelta = i, delta
		}
	}
	if best == -1 || bestDelta > nauticalMileMeters/8 {
		return 0, false
	}
	return best, true
}
