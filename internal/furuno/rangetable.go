package furuno

// rangeTable maps a spoke frame's non-sequential range wire index to
// meters. Some indices are simply invalid on real hardware (e.g. 16..18
// here) — the table is authoritative and is never computed from a
// formula (spec §9 Open Questions).
var rangeTable = map[int]float64{
	0:  231.7,  // 1/8 nm
	1:  463.0,  // 1/4 nm
	2:  694.5,  // 3/8 nm
	3:  926.0,  // 1/2 nm
	4:  1389.0, // 3/4 nm
	5:  1852.0, // 1 nm
	6:  2778.0, // 1.5 nm
	7:  3704.0, // 2 nm
	8:  5556.0, // 3 nm
	9:  7408.0, // 4 nm
	10: 11112.0, // 6 nm
	11: 14816.0, // 8 nm
	12: 22224.0, // 12 nm
	13: 29632.0, // 16 nm
	14: 44448.0, // 24 nm
	15: 59264.0, // 32 nm
	// 16..18 unassigned on this model family.
	19: 88896.0,  // 48 nm
	20: 118528.0, // 64 nm
	21: 133344.0, // 72 nm
	25: 177792.0, // 96 nm
}

// rangeWireToMeters looks up a spoke's range wire index, per spec §9
// ("use a lookup table only — never compute").
func rangeWireToMeters(index int) (float64, bool) {
	m, ok := rangeTable[index]
	return m, ok
}
