package receiver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navbridge/radargateway/internal/arpa"
	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/outbound"
	"github.com/navbridge/radargateway/internal/radar"
)

// fakeReportHandler applies a fixed effect to RadarInfo each time it's
// called, and records every payload it saw.
type fakeReportHandler struct {
	seen     [][]byte
	err      error
	onHandle func(info *radar.RadarInfo)
}

func (f *fakeReportHandler) HandleReport(data []byte, info *radar.RadarInfo) error {
	f.seen = append(f.seen, data)
	if f.err != nil {
		return f.err
	}
	if f.onHandle != nil {
		f.onHandle(info)
	}
	return nil
}

type fakeCommandEncoder struct {
	calls []control.ControlType
	err   error
}

func (f *fakeCommandEncoder) Encode(t control.ControlType, value float64, auto bool, info *radar.RadarInfo) ([]byte, error) {
	f.calls = append(f.calls, t)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("cmd"), nil
}

type fakeSpokeDecoder struct {
	spokes []radar.Spoke
	err    error
}

func (f *fakeSpokeDecoder) DecodeSpoke(frame []byte, info *radar.RadarInfo, received time.Time) ([]radar.Spoke, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.spokes, nil
}

func newTestInfo() *radar.RadarInfo {
	return &radar.RadarInfo{
		Key:      radar.MakeKey(radar.Navico, "123456", radar.WhichNone),
		Brand:    radar.Navico,
		Controls: control.New(),
	}
}

func TestHandleReportBootstrapsOnlyOnFirstReport(t *testing.T) {
	t.Parallel()

	bootstrapCalls := 0
	report := &fakeReportHandler{}
	r := &Receiver{
		Info: newTestInfo(),
		Behaviors: radar.Behaviors{
			Report:    report,
			Bootstrap: func(info *radar.RadarInfo) { bootstrapCalls++ },
		},
	}

	r.handleReport([]byte("a"))
	r.handleReport([]byte("b"))

	assert.Equal(t, 1, bootstrapCalls)
	assert.Len(t, report.seen, 2)
}

func TestHandleReportSendsInitialCommandsOnce(t *testing.T) {
	t.Parallel()

	out := make(chan []byte, 4)
	r := &Receiver{
		Info: newTestInfo(),
		Behaviors: radar.Behaviors{
			Report: &fakeReportHandler{},
			InitialCommands: func(info *radar.RadarInfo) [][]byte {
				return [][]byte{[]byte("x"), []byte("y")}
			},
		},
		Inputs: Inputs{CommandOut: out},
	}

	r.handleReport([]byte("a"))
	r.handleReport([]byte("b"))

	require.Len(t, out, 2)
	assert.Equal(t, []byte("x"), <-out)
	assert.Equal(t, []byte("y"), <-out)
}

func TestHandleReportAdvancesStateToModelKnownThenOperational(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	report := &fakeReportHandler{}
	r := &Receiver{
		Info:      info,
		Behaviors: radar.Behaviors{Report: report},
		state:     StateDiscovering,
	}

	r.handleReport([]byte("a"))
	assert.Equal(t, StateModelKnown, r.State())

	info.Ranges = control.NewRanges([]float64{1852, 3704})
	r.handleReport([]byte("b"))
	assert.Equal(t, StateOperational, r.State())
}

func TestHandleReportStopsOnParseError(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	report := &fakeReportHandler{err: assert.AnError}
	r := &Receiver{
		Info:      info,
		Behaviors: radar.Behaviors{Report: report},
		state:     StateDiscovering,
	}

	r.handleReport([]byte("a"))
	assert.Equal(t, StateDiscovering, r.State(), "a parse error must not advance state")
}

func TestHandleReportLazilyConstructsArpaTrackerOnceGeometryKnown(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	constructed := 0
	r := &Receiver{
		Info: info,
		Behaviors: radar.Behaviors{
			Report: &fakeReportHandler{onHandle: func(i *radar.RadarInfo) {
				i.SpokesPerRevolution = 360
				i.MaxSpokeLen = 64
			}},
		},
		NewArpaTracker: func(info *radar.RadarInfo) *arpa.Tracker {
			constructed++
			return arpa.NewTracker(info.SpokesPerRevolution, info.MaxSpokeLen, info.Legend, nil)
		},
	}

	assert.Nil(t, r.Arpa())

	r.handleReport([]byte("a")) // onHandle sets SpokesPerRevolution before the lazy-construct check runs
	assert.Equal(t, 1, constructed)
	assert.NotNil(t, r.Arpa())

	r.handleReport([]byte("b"))
	assert.Equal(t, 1, constructed, "tracker must only be constructed once")
}

func TestHandleSpokeFrameFeedsArpaTracker(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.SpokesPerRevolution = 360
	info.MaxSpokeLen = 64
	tracker := arpa.NewTracker(360, 64, radar.NewLegend(32, 0.8), nil)

	decoder := &fakeSpokeDecoder{spokes: []radar.Spoke{{Angle: 5, RangeMeters: 1000, Data: make([]byte, 64)}}}
	r := &Receiver{
		Info:      info,
		Behaviors: radar.Behaviors{Spoke: decoder},
	}
	r.arpa.Store(tracker)

	r.handleSpokeFrame(Frame{Data: []byte("frame"), Received: time.Now()})

	assert.False(t, tracker.History.Slot(5).Time.IsZero(), "ProcessSpoke should have recorded the decoded spoke")
}

func TestHandleSpokeFramePublishesToOutbound(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	decoder := &fakeSpokeDecoder{spokes: []radar.Spoke{{Angle: 1}}}
	hub := outbound.NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()
	r := &Receiver{
		Info:      info,
		Behaviors: radar.Behaviors{Spoke: decoder},
		Outbound:  hub,
	}

	r.handleSpokeFrame(Frame{Data: []byte("frame"), Received: time.Now()})

	select {
	case frame := <-ch:
		assert.NotEmpty(t, frame)
	case <-time.After(time.Second):
		t.Fatal("expected a published frame")
	}
}

func TestHandleClientCommandEncodesAndWrites(t *testing.T) {
	t.Parallel()

	out := make(chan []byte, 1)
	encoder := &fakeCommandEncoder{}
	r := &Receiver{
		Info:      newTestInfo(),
		Behaviors: radar.Behaviors{Command: encoder},
		Inputs:    Inputs{CommandOut: out},
	}

	r.handleClientCommand(ClientCommand{Type: control.Gain, Value: 50})

	require.Len(t, out, 1)
	assert.Equal(t, []byte("cmd"), <-out)
	assert.Equal(t, []control.ControlType{control.Gain}, encoder.calls)
}

func TestHandleClientCommandRepliesOnEncodeError(t *testing.T) {
	t.Parallel()

	encoder := &fakeCommandEncoder{err: assert.AnError}
	r := &Receiver{
		Info:      newTestInfo(),
		Behaviors: radar.Behaviors{Command: encoder},
	}
	reply := make(chan control.CommandError, 1)

	r.handleClientCommand(ClientCommand{Type: control.Gain, Value: 50, Reply: reply})

	got := <-reply
	assert.Equal(t, control.Gain, got.Type)
	assert.ErrorIs(t, got.Error, assert.AnError)
}

func TestStartRangeDetectionStandsDownTransmittingRadar(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.Controls.Add(control.Control{Type: control.Status, Domain: control.DomainEnumerated})
	info.Controls.Set(control.Status, float64(control.StatusTransmit), nil)
	encoder := &fakeCommandEncoder{}

	var written [][]byte
	StartRangeDetection(info, 100, 10000, encoder, func(b []byte) { written = append(written, b) })

	require.NotNil(t, info.RangeDetection)
	require.Len(t, written, 1)
	assert.Equal(t, []control.ControlType{control.Status}, encoder.calls)
}

func TestStepRangeDetectionCommandsEachCandidateThenFinishes(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.Controls.Add(control.Control{Type: control.Range, Domain: control.DomainNumericRange})
	encoder := &fakeCommandEncoder{}
	out := make(chan []byte, 32)
	r := &Receiver{
		Info:      info,
		Behaviors: radar.Behaviors{Command: encoder},
		Inputs:    Inputs{CommandOut: out},
		state:     StateRanging,
	}
	StartRangeDetection(info, 100, 800, encoder, func(b []byte) {})
	require.NotNil(t, info.RangeDetection)

	for !info.RangeDetection.Done() {
		r.stepRangeDetection()
	}
	r.stepRangeDetection() // drives finishRangeDetection

	assert.Nil(t, info.RangeDetection)
	assert.Equal(t, StateOperational, r.State())
}

func TestRunShutsDownOnContextCancel(t *testing.T) {
	t.Parallel()

	r := &Receiver{
		Info:      newTestInfo(),
		Behaviors: radar.Behaviors{},
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
