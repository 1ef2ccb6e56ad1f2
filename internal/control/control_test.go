package control

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlsSetReportsChanged(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(Control{Type: Gain, Domain: DomainNumericRange, Min: 0, Max: 100})

	assert.True(t, c.Set(Gain, 50, nil))
	assert.False(t, c.Set(Gain, 50, nil), "setting the same value again must not report a change")

	got, ok := c.Get(Gain)
	require.True(t, ok)
	assert.Equal(t, 50.0, got.Value)
}

func TestControlsSetUnknownTypeIsNoop(t *testing.T) {
	t.Parallel()

	c := New()
	assert.False(t, c.Set(Sea, 1, nil))
	_, ok := c.Get(Sea)
	assert.False(t, ok)
}

func TestControlsGetStatus(t *testing.T) {
	t.Parallel()

	c := New()
	_, ok := c.GetStatus()
	assert.False(t, ok)

	c.Add(Control{Type: Status, Domain: DomainEnumerated})
	c.Set(Status, float64(StatusTransmit), nil)

	status, ok := c.GetStatus()
	require.True(t, ok)
	assert.Equal(t, StatusTransmit, status)
}

func TestControlsSetValidValuesNarrowsMinMax(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(Control{Type: Range, Domain: DomainEnumerated})

	c.SetValidValues(Range, []float64{1852, 3704, 7408})

	got, ok := c.Get(Range)
	require.True(t, ok)
	assert.Equal(t, []float64{1852, 3704, 7408}, got.ValidValues)
	assert.Equal(t, 1852.0, got.Min)
	assert.Equal(t, 7408.0, got.Max)
}

func TestControlsDirtyClearsOnRead(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(Control{Type: Gain, Domain: DomainNumericRange})
	assert.False(t, c.Dirty())

	c.Set(Gain, 1, nil)
	assert.True(t, c.Dirty())
	assert.False(t, c.Dirty(), "Dirty must clear on read")
}

func TestControlsPublishDropsOnLaggedSubscriber(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(Control{Type: Gain, Domain: DomainNumericRange})

	ch, cancel := c.ControlUpdateSubscribe()
	defer cancel()

	for i := 0; i < subscriberChanBuffer+5; i++ {
		c.Set(Gain, float64(i), nil)
	}

	assert.Len(t, ch, subscriberChanBuffer, "publish must never block even when a subscriber is backed up")
}

func TestControlUpdateSubscribeCancelClosesChannel(t *testing.T) {
	t.Parallel()

	c := New()
	ch, cancel := c.ControlUpdateSubscribe()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
}

func TestSendErrorToClientDeliversAndDropsWhenFull(t *testing.T) {
	t.Parallel()

	reply := make(chan CommandError, 1)
	SendErrorToClient(reply, Gain, errors.New("boom"))
	require.Len(t, reply, 1)
	got := <-reply
	assert.Equal(t, Gain, got.Type)

	SendErrorToClient(nil, Gain, errors.New("ignored"))

	full := make(chan CommandError, 1)
	full <- CommandError{}
	SendErrorToClient(full, Sea, errors.New("dropped"))
	assert.Len(t, full, 1, "a full reply channel must not block")
}

func TestRangesContainsAndOrdering(t *testing.T) {
	t.Parallel()

	r := NewRanges([]float64{1852, 926, 3704})
	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, 926.0, all[0].DistanceMeters)

	assert.True(t, r.Contains(1852))
	assert.False(t, r.Contains(999999))
}

func TestRangeDetectionWalksCandidatesThenDone(t *testing.T) {
	t.Parallel()

	rd := NewRangeDetection(1000, 4000, 1852, true)
	require.False(t, rd.Done())

	var commanded []float64
	for {
		candidate, ok := rd.NextCandidate()
		if !ok {
			break
		}
		rd.Observe(candidate, candidate)
		rd.MarkCommanded(candidate)
		commanded = append(commanded, candidate)
	}

	assert.True(t, rd.Done())
	assert.NotEmpty(t, commanded)

	found := rd.FoundRanges()
	assert.Len(t, found, len(commanded))
}
