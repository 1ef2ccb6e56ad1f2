// Package receiver is the generic per-radar driver (spec §4.D): one
// goroutine per discovered radar, parameterized by a brand's
// radar.Behaviors, that owns the radar's RadarInfo for its whole
// lifetime and is the sole writer of its control set.
//
// Grounded on the teacher's cmd/radar/radar.go goroutine-per-component
// idiom (one long-lived goroutine per I/O source, signal.NotifyContext
// shutdown, sync.WaitGroup join) and internal/lidar/network's
// producer/decoder split: this package never opens a socket itself and
// only reads the channels below (Inputs), keeping the state machine and
// decode logic transport-free and testable without a network.
// cmd/radargateway connects only CommandOut, to a UDP command sender; it
// opens no report, info, speed or spoke socket, so those channels stay
// nil there.
package receiver

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/navbridge/radargateway/internal/arpa"
	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/logging"
	"github.com/navbridge/radargateway/internal/outbound"
	"github.com/navbridge/radargateway/internal/radar"
)

// State is the per-radar receiver state machine (spec §4.D).
type State int

const (
	StateInitial State = iota
	StateDiscovering
	StateModelKnown
	StateRanging
	StateOperational
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateDiscovering:
		return "Discovering"
	case StateModelKnown:
		return "ModelKnown"
	case StateRanging:
		return "Ranging"
	case StateOperational:
		return "Operational"
	default:
		return "Unknown"
	}
}

// Frame pairs a raw wire frame with its arrival time, for spoke decode.
type Frame struct {
	Data     []byte
	Received time.Time
}

// ClientCommand is a control write requested by the out-of-scope HTTP
// layer, dispatched to the brand's CommandEncoder (spec §4.C, §4.D).
type ClientCommand struct {
	Type  control.ControlType
	Value float64
	Auto  bool
	Reply chan<- control.CommandError
}

// Inputs bundles every channel the driver selects over. Reports, Info,
// and Speed carry already-length-delimited application records (one
// record per receive); Info/Speed are Navico-only and left nil for
// other brands. CommandOut is where the driver writes encoded command
// bytes for the caller's socket writer to flush; the caller owns the
// underlying connection (spec §9 "single command writer per radar" —
// the receiver goroutine is still the serialization point since it is
// the only writer to CommandOut).
type Inputs struct {
	Reports        <-chan []byte
	Info           <-chan []byte
	Speed          <-chan []byte
	Spokes         <-chan Frame
	ControlUpdates <-chan ClientCommand
	CommandOut     chan<- []byte
}

// Receiver drives one radar's state machine and report/spoke pipeline.
type Receiver struct {
	Info      *radar.RadarInfo
	Behaviors radar.Behaviors
	Inputs    Inputs
	Outbound  *outbound.Hub

	// NewArpaTracker, if set, lazily constructs the ARPA tracker once the
	// radar's spoke geometry (SpokesPerRevolution, MaxSpokeLen, Legend)
	// is known from its first parsed report — those fields are zero at
	// discovery time, so a Tracker built any earlier would allocate an
	// empty history buffer. Retrieve the live tracker with Arpa().
	NewArpaTracker func(*radar.RadarInfo) *arpa.Tracker

	// RangeStepInterval paces how often stepRangeDetection fires a new
	// candidate command (spec §4.C range detection). Zero means use the
	// compiled-in rangeStepInterval default.
	RangeStepInterval time.Duration

	arpa atomic.Pointer[arpa.Tracker]

	state              State
	seenAnyReport      bool
	lastInfoFromOther  time.Time
	spokesSincePublish []radar.Spoke
}

// Arpa returns the radar's ARPA tracker, or nil if ARPA is disabled or
// the tracker has not been constructed yet. Safe to call from any
// goroutine (the debug HTTP mux reads this concurrently with Run).
func (r *Receiver) Arpa() *arpa.Tracker { return r.arpa.Load() }

const (
	reportRequestInterval = 5 * time.Second
	infoRequestInterval   = 250 * time.Millisecond
	infoRequestPause      = 15 * time.Second
	rangeStepInterval     = 2 * time.Second
	socketRetryBackoff    = 1 * time.Second
)

// Run executes the select loop until ctx is cancelled. Non-fatal socket
// errors are the caller's concern (Inputs channels simply stop
// producing); Run only returns once ctx.Done() fires.
func (r *Receiver) Run(ctx context.Context) {
	r.setState(StateDiscovering)

	reportTimer := time.NewTimer(reportRequestInterval)
	defer reportTimer.Stop()
	infoTimer := time.NewTimer(infoRequestInterval)
	defer infoTimer.Stop()
	stepInterval := r.RangeStepInterval
	if stepInterval == 0 {
		stepInterval = rangeStepInterval
	}
	rangeTimer := time.NewTimer(stepInterval)
	defer rangeTimer.Stop()
	rangeTimer.Stop() // only armed once RangeDetection is active

	for {
		select {
		case <-ctx.Done():
			logging.Diagf("receiver %s: shutdown", r.Info.Key)
			return

		case data, ok := <-r.Inputs.Reports:
			if !ok {
				r.Inputs.Reports = nil
				continue
			}
			r.handleReport(data)

		case data, ok := <-r.Inputs.Info:
			if !ok {
				r.Inputs.Info = nil
				continue
			}
			r.lastInfoFromOther = time.Now()
			if err := r.Behaviors.Report.HandleReport(data, r.Info); err != nil {
				logging.Opsf("receiver %s: info parse: %v", r.Info.Key, err)
			}

		case data, ok := <-r.Inputs.Speed:
			if !ok {
				r.Inputs.Speed = nil
				continue
			}
			if err := r.Behaviors.Report.HandleReport(data, r.Info); err != nil {
				logging.Opsf("receiver %s: speed parse: %v", r.Info.Key, err)
			}

		case f, ok := <-r.Inputs.Spokes:
			if !ok {
				r.Inputs.Spokes = nil
				continue
			}
			r.handleSpokeFrame(f)

		case cmd, ok := <-r.Inputs.ControlUpdates:
			if !ok {
				r.Inputs.ControlUpdates = nil
				continue
			}
			r.handleClientCommand(cmd)

		case <-reportTimer.C:
			r.sendHeartbeat()
			reportTimer.Reset(reportRequestInterval)

		case <-infoTimer.C:
			if time.Since(r.lastInfoFromOther) < infoRequestPause {
				infoTimer.Reset(infoRequestPause)
			} else {
				r.sendInfoRequest()
				infoTimer.Reset(infoRequestInterval)
			}

		case <-rangeTimer.C:
			r.stepRangeDetection()
			if r.Info.RangeDetection != nil && !r.Info.RangeDetection.Done() {
				rangeTimer.Reset(stepInterval)
			}
		}

		if r.Info.RangeDetection != nil && r.state != StateRanging {
			r.setState(StateRanging)
			rangeTimer.Reset(stepInterval)
		}
	}
}

// State returns the receiver's current lifecycle state, for read-only
// introspection (the debug HTTP mux).
func (r *Receiver) State() State { return r.state }

func (r *Receiver) setState(s State) {
	if r.state == s {
		return
	}
	logging.Diagf("receiver %s: %s -> %s", r.Info.Key, r.state, s)
	r.state = s
}

func (r *Receiver) handleReport(data []byte) {
	if !r.seenAnyReport {
		r.seenAnyReport = true
		if r.Behaviors.Bootstrap != nil {
			r.Behaviors.Bootstrap(r.Info)
		}
		if r.Behaviors.InitialCommands != nil {
			for _, line := range r.Behaviors.InitialCommands(r.Info) {
				r.writeCommand(line)
			}
		}
	}
	if err := r.Behaviors.Report.HandleReport(data, r.Info); err != nil {
		logging.Opsf("receiver %s: report parse: %v", r.Info.Key, err)
		return
	}
	if r.state == StateDiscovering {
		r.setState(StateModelKnown)
	}
	if r.state == StateModelKnown && r.Info.Ranges.Len() > 0 {
		r.setState(StateOperational)
	}
	if r.arpa.Load() == nil && r.NewArpaTracker != nil && r.Info.SpokesPerRevolution > 0 {
		r.arpa.Store(r.NewArpaTracker(r.Info))
	}
}

func (r *Receiver) handleSpokeFrame(f Frame) {
	spokes, err := r.Behaviors.Spoke.DecodeSpoke(f.Data, r.Info, f.Received)
	if err != nil {
		logging.Opsf("receiver %s: spoke decode: %v", r.Info.Key, err)
		return
	}
	if len(spokes) == 0 {
		return
	}
	if tracker := r.arpa.Load(); tracker != nil {
		for _, s := range spokes {
			tracker.ProcessSpoke(s)
		}
	}
	if r.Outbound != nil {
		r.Outbound.Publish(string(r.Info.Key), spokes)
	}
}

func (r *Receiver) handleClientCommand(cmd ClientCommand) {
	wire, err := r.Behaviors.Command.Encode(cmd.Type, cmd.Value, cmd.Auto, r.Info)
	if err != nil {
		control.SendErrorToClient(cmd.Reply, cmd.Type, err)
		return
	}
	r.writeCommand(wire)
}

func (r *Receiver) writeCommand(wire []byte) {
	if r.Inputs.CommandOut == nil || wire == nil {
		return
	}
	select {
	case r.Inputs.CommandOut <- wire:
	default:
		logging.Opsf("receiver %s: command writer backed up, dropping a command", r.Info.Key)
	}
}

// sendHeartbeat sends the brand's keep-alive line if it has one
// (Furuno's AliveCheck); otherwise there is nothing documented to send
// — Navico/Raymarine radars keep reporting on their own cadence once
// transmitting (spec §4.D.Furuno, §5 "receiver report-request interval
// is 5s").
func (r *Receiver) sendHeartbeat() {
	if r.Behaviors.Heartbeat == nil {
		return
	}
	r.writeCommand(r.Behaviors.Heartbeat(r.Info))
}

// sendInfoRequest is a hook for brands (Navico) whose info/nav stream
// needs an explicit poll; none of the three supported brands document
// one, so this is currently a no-op retained for the timer skeleton
// the spec names (§4.D core loop item 3, §5 "info-request interval").
func (r *Receiver) sendInfoRequest() {}

// stepRangeDetection drives the adaptive range-discovery state machine
// (spec §4.D "Adaptive range discovery"): command the next untried
// candidate, wait for the step to elapse (each tick of rangeTimer is
// one 2s step), then either advance or finish.
func (r *Receiver) stepRangeDetection() {
	rd := r.Info.RangeDetection
	if rd == nil {
		return
	}
	if candidate, ok := rd.NextCandidate(); ok {
		wire, err := r.Behaviors.Command.Encode(control.Range, candidate, false, r.Info)
		if err != nil {
			logging.Opsf("receiver %s: range-detection command: %v", r.Info.Key, err)
		} else {
			r.writeCommand(wire)
		}
		rd.MarkCommanded(candidate)
		return
	}
	r.finishRangeDetection(rd)
}

func (r *Receiver) finishRangeDetection(rd *control.RangeDetection) {
	found := rd.FoundRanges()
	r.Info.Ranges = control.NewRanges(found)
	r.Info.Controls.SetValidValues(control.Range, found)
	logging.Diagf("receiver %s: range detection complete, %d ranges found", r.Info.Key, len(found))

	wire, err := r.Behaviors.Command.Encode(control.Range, rd.SavedRange, false, r.Info)
	if err != nil {
		logging.Opsf("receiver %s: restoring saved range: %v", r.Info.Key, err)
	} else {
		r.writeCommand(wire)
	}
	if rd.TransmitAfterDetection {
		if wire, err := r.Behaviors.Command.Encode(control.Status, float64(control.StatusTransmit), false, r.Info); err == nil {
			r.writeCommand(wire)
		}
	}
	r.Info.RangeDetection = nil
	r.setState(StateOperational)
}

// StartRangeDetection begins adaptive range discovery for a radar with
// no known range list (spec §4.D step 1): it remembers the current
// range and transmit state, stands the radar down if it was
// transmitting, and installs the candidate walk.
func StartRangeDetection(info *radar.RadarInfo, minRange, maxRange float64, encoder radar.CommandEncoder, writeCommand func([]byte)) {
	saved := 0.0
	if ctrl, ok := info.Controls.Get(control.Range); ok {
		saved = ctrl.Value
	}
	wasTransmitting := false
	if status, ok := info.Controls.GetStatus(); ok && status == control.StatusTransmit {
		wasTransmitting = true
		if wire, err := encoder.Encode(control.Status, float64(control.StatusStandby), false, info); err == nil {
			writeCommand(wire)
		}
	}
	info.RangeDetection = control.NewRangeDetection(minRange, maxRange, saved, wasTransmitting)
}
