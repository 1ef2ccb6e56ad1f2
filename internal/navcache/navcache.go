// Package navcache holds the single most recent own-ship navigation
// fix (heading, position) shared across every radar goroutine (spec §9
// "global mutable navigation state"). Exactly one Cache exists per
// process; every receiver and the ARPA tracker it owns reads the same
// fix without taking a lock, the same lock-free sharing discipline the
// teacher's internal/lidar/visualiser package uses for its hot
// atomic.Int32/Uint64 counters (model.go refCount, adapter.go
// frameCount/totalAdaptTimeNs), generalized here from scalar counters
// to a small immutable struct via atomic.Pointer.
package navcache

import (
	"sync/atomic"
	"time"
)

// Fix is one navigation sample. HeadingValid is false when no compass
// or heading sensor is configured, matching spec §3's OwnShipFix
// "Valid" flag.
type Fix struct {
	Lat, Lon     float64
	Heading      float64
	HeadingValid bool
	Received     time.Time
}

// staleAfter bounds how long a fix is trusted once no new sample
// arrives; beyond this ARPA degrades to dead reckoning is out of scope,
// so callers simply stop trusting the fix (spec §9).
const staleAfter = 10 * time.Second

// Cache holds the latest Fix, safe for concurrent readers and a single
// writer (the navigation ingester, out of scope for this spec).
type Cache struct {
	fix atomic.Pointer[Fix]
}

// New creates an empty cache; Current returns a zero, invalid Fix until
// the first Update.
func New() *Cache {
	return &Cache{}
}

// Update stores the latest fix, stamping Received with the time the
// caller observed it.
func (c *Cache) Update(lat, lon float64, heading float64, headingValid bool, received time.Time) {
	c.fix.Store(&Fix{
		Lat: lat, Lon: lon,
		Heading: heading, HeadingValid: headingValid,
		Received: received,
	})
}

// Current returns the latest fix and whether it is both present and
// fresh enough to trust.
func (c *Cache) Current(now time.Time) (Fix, bool) {
	p := c.fix.Load()
	if p == nil {
		return Fix{}, false
	}
	if now.Sub(p.Received) > staleAfter {
		return *p, false
	}
	return *p, true
}
