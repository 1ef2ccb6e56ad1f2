// Package control is the per-radar typed control registry (spec §4.C):
// Range, Gain, Sea, Rain, Status, and the rest of ControlType, each
// with valid ranges, auto/enabled flags, and subscription channels for
// client updates.
package control

import (
	"sync"
)

// ControlUpdate is published on the internal broadcast channel whenever
// a write actually changes a control's value.
type ControlUpdate struct {
	Type    ControlType
	Control Control
}

// CommandError is the reply path for a failed client-originated set
// (spec §4.C "send_error_to_client").
type CommandError struct {
	Type  ControlType
	Error error
}

const subscriberChanBuffer = 16

// Controls stores the mapping from ControlType to Control for one
// radar, plus fan-out channels for the command dispatcher and for
// client-visible deltas. Reads happen from any goroutine; writes only
// from the owning radar's receiver goroutine (spec §5).
type Controls struct {
	mu       sync.RWMutex
	byType   map[ControlType]*Control
	dirty    bool // consumed by the out-of-scope persistence layer

	subMu             sync.Mutex
	updateSubscribers map[int]chan ControlUpdate
	clientSubscribers map[int]chan ControlUpdate
	nextSubID         int
}

// New creates an empty control registry.
func New() *Controls {
	return &Controls{
		byType:            make(map[ControlType]*Control),
		updateSubscribers: make(map[int]chan ControlUpdate),
		clientSubscribers: make(map[int]chan ControlUpdate),
	}
}

// Add registers a new control, typically as the brand-specific receiver
// learns that the model supports it. Adding an already-present type
// replaces its static shape (Domain/Min/Max/Unit) and keeps its current
// Value, Auto and StringValue.
func (c *Controls) Add(ctrl Control) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := ctrl
	if existing, ok := c.byType[ctrl.Type]; ok {
		cp.Value = existing.Value
		cp.Auto = existing.Auto
		cp.StringValue = existing.StringValue
	}
	c.byType[ctrl.Type] = &cp
}

// Get returns a copy of the control for t, and whether it is present.
func (c *Controls) Get(t ControlType) (Control, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctrl, ok := c.byType[t]
	if !ok {
		return Control{}, false
	}
	return *ctrl, true
}

// Snapshot returns a copy of every registered control, for read-only
// introspection (the debug HTTP mux).
func (c *Controls) Snapshot() map[ControlType]Control {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[ControlType]Control, len(c.byType))
	for t, ctrl := range c.byType {
		out[t] = *ctrl
	}
	return out
}

// GetStatus returns the radar's current Status control value, if present.
func (c *Controls) GetStatus() (StatusValue, bool) {
	ctrl, ok := c.Get(Status)
	if !ok {
		return 0, false
	}
	return StatusValue(ctrl.Value), true
}

// Set writes value (and, if non-nil, auto) iff different, publishing a
// ControlUpdate and returning true iff the write changed anything.
func (c *Controls) Set(t ControlType, value float64, auto *bool) bool {
	return c.SetValueAutoEnabled(t, value, auto, nil)
}

// SetValueAutoEnabled writes value/auto/enabled iff different from the
// current control state (spec §4.C).
func (c *Controls) SetValueAutoEnabled(t ControlType, value float64, auto *bool, enabled *bool) bool {
	c.mu.Lock()
	ctrl, ok := c.byType[t]
	if !ok {
		c.mu.Unlock()
		return false
	}
	changed := ctrl.set(value, auto)
	if enabled != nil && ctrl.Enabled != *enabled {
		ctrl.Enabled = *enabled
		changed = true
	}
	if changed {
		c.dirty = true
	}
	snapshot := *ctrl
	c.mu.Unlock()

	if changed {
		c.publish(ControlUpdate{Type: t, Control: snapshot})
	}
	return changed
}

// SetValidValues narrows an enumerated control's domain, e.g. when
// adaptive range discovery (spec §4.D) completes.
func (c *Controls) SetValidValues(t ControlType, values []float64) {
	c.mu.Lock()
	ctrl, ok := c.byType[t]
	if !ok {
		c.mu.Unlock()
		return
	}
	ctrl.ValidValues = append([]float64(nil), values...)
	if len(values) > 0 {
		ctrl.Min, ctrl.Max = values[0], values[0]
		for _, v := range values {
			if v < ctrl.Min {
				ctrl.Min = v
			}
			if v > ctrl.Max {
				ctrl.Max = v
			}
		}
	}
	snapshot := *ctrl
	c.mu.Unlock()
	c.publish(ControlUpdate{Type: t, Control: snapshot})
}

// SetString writes a new value for a string-valued control, returning
// the previous value iff it changed.
func (c *Controls) SetString(t ControlType, s string) (string, bool) {
	c.mu.Lock()
	ctrl, ok := c.byType[t]
	if !ok {
		c.mu.Unlock()
		return "", false
	}
	prev, changed := ctrl.setString(s)
	if changed {
		c.dirty = true
	}
	snapshot := *ctrl
	c.mu.Unlock()
	if changed {
		c.publish(ControlUpdate{Type: t, Control: snapshot})
	}
	return prev, changed
}

// Dirty reports and clears whether any control changed since the last
// call, for the out-of-scope persistence layer to poll.
func (c *Controls) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.dirty
	c.dirty = false
	return d
}

// ControlUpdateSubscribe returns a channel of every future ControlUpdate,
// for the command dispatcher. The caller must call the returned cancel
// func to unsubscribe.
func (c *Controls) ControlUpdateSubscribe() (<-chan ControlUpdate, func()) {
	return c.subscribe(c.updateSubscribers)
}

// NewClientSubscription returns a channel of every future ControlUpdate,
// for client (HTTP layer) delta propagation. Ordering within one radar
// matches publish order (spec §5).
func (c *Controls) NewClientSubscription() (<-chan ControlUpdate, func()) {
	return c.subscribe(c.clientSubscribers)
}

func (c *Controls) subscribe(set map[int]chan ControlUpdate) (<-chan ControlUpdate, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	ch := make(chan ControlUpdate, subscriberChanBuffer)
	set[id] = ch
	return ch, func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if existing, ok := set[id]; ok {
			delete(set, id)
			close(existing)
		}
	}
}

// publish fans out to every subscriber on both channels. A lagged
// subscriber's update is dropped rather than blocking the publisher
// (spec §5 "dropped messages ... logged and swallowed").
func (c *Controls) publish(u ControlUpdate) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.updateSubscribers {
		select {
		case ch <- u:
		default:
		}
	}
	for _, ch := range c.clientSubscribers {
		select {
		case ch <- u:
		default:
		}
	}
}

// SendErrorToClient delivers a failed-set error on the command reply
// path. replyTx is owned by the HTTP command dispatcher; a full channel
// drops the reply rather than blocking the receiver.
func SendErrorToClient(replyTx chan<- CommandError, t ControlType, err error) {
	if replyTx == nil {
		return
	}
	select {
	case replyTx <- CommandError{Type: t, Error: err}:
	default:
	}
}
