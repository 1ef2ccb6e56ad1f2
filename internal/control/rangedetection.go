package control

import "gonum.org/v1/gonum/stat"

// RangeDetection is the auto-discovery scratch state for a radar whose
// valid range list is not yet known (spec §3 "RangeDetection", §4.D
// "Adaptive range discovery").
type RangeDetection struct {
	rangesToTry []float64 // every candidate, ascending; IndexToTry is the next one to command
	tried       map[float64]bool
	// observed maps a commanded candidate to every decoded range value
	// seen in report traffic while that candidate was active, so noisy
	// hardware that repeats a report several times during the 2s wait
	// window can be reduced to a representative mean rather than the
	// last sample received.
	observed map[float64][]float64

	SavedRange               float64
	TransmitAfterDetection   bool
	IndexToTry               int
}

// NewRangeDetection builds the candidate set from the brand-independent
// metric and nautical range tables, filtered to [minRange, maxRange].
func NewRangeDetection(minRange, maxRange, savedRange float64, wasTransmitting bool) *RangeDetection {
	var candidates []float64
	for _, v := range AllPossibleMetricRanges {
		if v >= minRange && v <= maxRange {
			candidates = append(candidates, v)
		}
	}
	for _, v := range AllPossibleNauticalRanges {
		if v >= minRange && v <= maxRange {
			candidates = append(candidates, v)
		}
	}
	insertionSort(candidates)

	return &RangeDetection{
		rangesToTry:            candidates,
		tried:                  make(map[float64]bool, len(candidates)),
		observed:               make(map[float64][]float64),
		SavedRange:             savedRange,
		TransmitAfterDetection: wasTransmitting,
	}
}

// Done reports whether every candidate has been tried.
func (rd *RangeDetection) Done() bool {
	return rd.IndexToTry >= len(rd.rangesToTry)
}

// NextCandidate returns the next candidate range to command, and
// whether one remains.
func (rd *RangeDetection) NextCandidate() (float64, bool) {
	if rd.Done() {
		return 0, false
	}
	return rd.rangesToTry[rd.IndexToTry], true
}

// MarkCommanded advances past the current candidate, recording it as tried.
func (rd *RangeDetection) MarkCommanded(candidate float64) {
	rd.tried[candidate] = true
	rd.IndexToTry++
}

// Observe records a decoded range report seen while a candidate is
// outstanding.
func (rd *RangeDetection) Observe(candidate, reportedMeters float64) {
	rd.observed[candidate] = append(rd.observed[candidate], reportedMeters)
}

// FoundRanges reduces each candidate's observations to a single
// representative value (the mean, via gonum/stat) and returns the
// accepted set in ascending order, de-duplicated.
func (rd *RangeDetection) FoundRanges() []float64 {
	var out []float64
	for _, samples := range rd.observed {
		if len(samples) == 0 {
			continue
		}
		insertionSort(samples)
		out = append(out, stat.Mean(samples, nil))
	}
	insertionSort(out)
	// de-duplicate within a small epsilon.
	deduped := out[:0]
	for _, v := range out {
		if len(deduped) == 0 || v-deduped[len(deduped)-1] > 0.5 {
			deduped = append(deduped, v)
		}
	}
	return deduped
}
