package arpa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navbridge/radargateway/internal/radar"
)

// TestTrackerAcquiresApproachingBlob exercises the scan-trigger
// acquisition path: a 3x3 APPROACHING blob fed for one revolution
// should resolve to exactly one Acquire0 target classified Approaching.
func TestTrackerAcquiresApproachingBlob(t *testing.T) {
	t.Parallel()

	legend := radar.NewLegend(32, 0.8)
	spokesPerRev := 360
	maxSpokeLen := 64
	tracker := NewTracker(spokesPerRev, maxSpokeLen, legend, nil)

	blobAngle, blobR := 10, 20
	t0 := time.Now()

	feedBlob := func(tBase time.Time) {
		for da := -1; da <= 1; da++ {
			data := make([]byte, maxSpokeLen)
			for dr := -1; dr <= 1; dr++ {
				data[blobR+dr] = legend.DopplerApproaching
			}
			tracker.ProcessSpoke(radar.Spoke{
				RangeMeters: 1000,
				Angle:       blobAngle + da,
				TimeMs:      tBase.UnixMilli(),
				Data:        data,
			})
		}
		// sweep the rest of the revolution with empty spokes so the
		// scan-trigger band (75% of a revolution) is crossed.
		for a := 0; a < spokesPerRev; a++ {
			if a >= blobAngle-1 && a <= blobAngle+1 {
				continue
			}
			tracker.ProcessSpoke(radar.Spoke{
				RangeMeters: 1000,
				Angle:       a,
				TimeMs:      tBase.Add(time.Duration(a) * time.Millisecond).UnixMilli(),
				Data:        make([]byte, maxSpokeLen),
			})
		}
	}

	feedBlob(t0)
	require.Len(t, tracker.Targets, 1, "exactly one target should be acquired from one connected blob")

	var acquired *ArpaTarget
	for _, target := range tracker.Targets {
		acquired = target
	}
	assert.Equal(t, Acquire0, acquired.Status)
	assert.Equal(t, DopplerApproaching, acquired.Doppler)
}

func TestTrackerDopplerTransitionBoundary(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(360, 64, radar.NewLegend(32, 0.8), nil)

	target := &ArpaTarget{TotalPixels: 100, ApproachingPixels: 90, RecedingPixels: 0, Doppler: DopplerAny}
	tracker.classifyDoppler(target)
	assert.Equal(t, DopplerApproaching, target.Doppler, "90/100 approaching should enter Approaching")

	target2 := &ArpaTarget{TotalPixels: 100, ApproachingPixels: 30, RecedingPixels: 0, Doppler: DopplerApproaching}
	tracker.classifyDoppler(target2)
	assert.Equal(t, DopplerAny, target2.Doppler, "dropping to 30/100 approaching should fall back to Any")
}

func TestTrackerAdvanceStatusProgression(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(360, 64, radar.NewLegend(32, 0.8), nil)
	target := &ArpaTarget{Status: Acquire0}

	tracker.advanceStatus(target, true)
	assert.Equal(t, Acquire1, target.Status)

	tracker.advanceStatus(target, true)
	assert.Equal(t, Acquire2, target.Status)

	tracker.advanceStatus(target, true)
	assert.Equal(t, Acquire3, target.Status)

	tracker.advanceStatus(target, true)
	assert.Equal(t, Active, target.Status)

	for i := 0; i < MaxLostCount; i++ {
		tracker.advanceStatus(target, false)
	}
	assert.Equal(t, Lost, target.Status)

	tracker.advanceStatus(target, false)
	assert.Equal(t, ForDeletion, target.Status)
}
