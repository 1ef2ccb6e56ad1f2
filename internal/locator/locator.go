// Package locator discovers radars on the local network segments and
// hands each one off as a radar.RadarInfo once its beacon is parsed
// (spec §4.B "Locator"). One Locator runs per process; it owns a
// per-(interface, brand) multicast listen socket, periodically
// broadcasts each brand's wake packets, and tracks every NIC's
// Unseen→Active→Lost lifecycle: a (NIC, brand) pair whose radar goes
// quiet is marked Lost, while the radar itself stays in the known set,
// and a replugged NIC is picked back up on re-enumeration.
//
// Grounded on the teacher's cmd/radar/radar.go NIC-driven startup
// (enumerate interfaces, one listen goroutine per interface, a select
// loop reacting to shutdown/IP-change/timeout) generalized from one
// fixed lidar multicast group to per-brand listen groups, dispatched
// through radar.BeaconParser instead of a single hardcoded parser.
package locator

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/navbridge/radargateway/internal/config"
	"github.com/navbridge/radargateway/internal/logging"
	"github.com/navbridge/radargateway/internal/netutil"
	"github.com/navbridge/radargateway/internal/radar"
	"github.com/navbridge/radargateway/internal/timeutil"
)

const (
	// wakeInterval is how often wake packets are broadcast while a NIC
	// has no active radar of a given brand (spec §4.B).
	wakeInterval = 2 * time.Second
	// idleInterval backs off wake broadcasts once at least one radar of
	// that brand has been seen on this NIC recently.
	idleInterval = 20 * time.Second
	// lostAfter is how long since the last beacon before a NIC's radar
	// of a brand is considered gone.
	lostAfter = 60 * time.Second
	listenBuffer = 2048
)

// NICState is one interface's discovery lifecycle for one brand.
type NICState int

const (
	Unseen NICState = iota
	Active
	Lost
)

func (s NICState) String() string {
	switch s {
	case Unseen:
		return "Unseen"
	case Active:
		return "Active"
	case Lost:
		return "Lost"
	default:
		return "Unknown"
	}
}

// Found is delivered to the caller every time a beacon resolves to a
// radar, brand behaviors attached so the caller can hand it straight
// to a receiver.
type Found struct {
	Info      *radar.RadarInfo
	Behaviors radar.Behaviors
	NIC       netutil.Interface
}

// BrandSource pairs a brand's beacon parser with the Behaviors bundle a
// discovered radar of that brand should run with.
type BrandSource struct {
	Brand     radar.Brand
	Beacon    radar.BeaconParser
	Behaviors radar.Behaviors
}

// watch is the per-(NIC, brand) state the select loop below drives.
type watch struct {
	nic       netutil.Interface
	source    BrandSource
	conn      *net.UDPConn
	sendConn  *net.UDPConn
	state     NICState
	lastSeen  time.Time
}

// Locator runs discovery across every local NIC for a fixed set of
// brand sources.
type Locator struct {
	sources []BrandSource
	clock   timeutil.Clock

	wakeInterval time.Duration
	idleInterval time.Duration
	lostAfter    time.Duration

	mu    sync.Mutex
	known map[radar.Key]*radar.RadarInfo

	Found chan Found
}

// New creates a Locator for the given brand sources (typically
// navico.Behaviors() wired to navico.BeaconParser{}, and the Furuno and
// Raymarine equivalents), using the compiled-in timing defaults.
func New(sources []BrandSource) *Locator {
	return &Locator{
		sources:      sources,
		clock:        timeutil.RealClock{},
		wakeInterval: wakeInterval,
		idleInterval: idleInterval,
		lostAfter:    lostAfter,
		known:        make(map[radar.Key]*radar.RadarInfo),
		Found:        make(chan Found, 8),
	}
}

// WithClock overrides the locator's time source, for tests that need to
// drive lostAfter/wakeInterval transitions without sleeping.
func (l *Locator) WithClock(c timeutil.Clock) *Locator {
	l.clock = c
	return l
}

// WithConfig overrides the locator's wake/idle/lost timing from a
// TuningConfig loaded from JSON, falling back to the compiled-in
// defaults for anything left unset (spec §4.B).
func (l *Locator) WithConfig(cfg *config.TuningConfig) *Locator {
	if cfg == nil {
		return l
	}
	l.wakeInterval = cfg.GetWakeInterval()
	l.idleInterval = cfg.GetIdleInterval()
	l.lostAfter = cfg.GetLostAfter()
	return l
}

// Run enumerates interfaces, opens one listen socket per
// (interface, brand), and drives discovery until ctx is cancelled or a
// fatal enumeration error occurs. Re-enumerates whenever
// netutil.WaitForIPAddrChange reports a change, per spec §4.A.
func (l *Locator) Run(ctx context.Context) error {
	for {
		runCtx, cancel := context.WithCancel(ctx)
		errCh := make(chan error, 1)
		go func() { errCh <- l.runOnce(runCtx) }()

		ipChanged := make(chan error, 1)
		go func() { ipChanged <- netutil.WaitForIPAddrChange(runCtx) }()

		select {
		case <-ctx.Done():
			cancel()
			<-errCh
			return ctx.Err()
		case err := <-errCh:
			cancel()
			return err
		case <-ipChanged:
			logging.Opsf("locator: IPv4 address change detected, re-enumerating interfaces")
			cancel()
			<-errCh
		}
	}
}

func (l *Locator) runOnce(ctx context.Context) error {
	ifaces, err := netutil.EnumerateInterfaces()
	if err != nil {
		return netutil.ErrEnumerationFailed
	}

	var watches []*watch
	var wg sync.WaitGroup
	for _, nic := range ifaces {
		if nic.Loopback || !nic.HasV4() {
			continue
		}
		for _, src := range l.sources {
			w := &watch{nic: nic, source: src, state: Unseen}
			watches = append(watches, w)

			group := src.Beacon.ListenGroup().UDPAddr()
			conn, err := netutil.CreateUDPMulticastListen(group, nic)
			if err != nil {
				logging.Opsf("locator: listen %s on %s: %v", src.Brand, nic.Name, err)
				continue
			}
			w.conn = conn

			sendConn, err := netutil.CreateMulticastSend(group, nic)
			if err != nil {
				logging.Opsf("locator: send socket %s on %s: %v", src.Brand, nic.Name, err)
			} else {
				w.sendConn = sendConn
			}

			wg.Add(1)
			go func(w *watch) {
				defer wg.Done()
				l.listen(ctx, w)
			}(w)

			wg.Add(1)
			go func(w *watch) {
				defer wg.Done()
				l.wakeLoop(ctx, w)
			}(w)
		}
	}

	<-ctx.Done()
	for _, w := range watches {
		if w.conn != nil {
			w.conn.Close()
		}
		if w.sendConn != nil {
			w.sendConn.Close()
		}
	}
	wg.Wait()
	return ctx.Err()
}

func (l *Locator) listen(ctx context.Context, w *watch) {
	if w.conn == nil {
		return
	}
	buf := make([]byte, listenBuffer)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		n, from, err := w.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				l.checkLost(w)
				continue
			}
			return
		}
		payload := append([]byte(nil), buf[:n]...)
		discoveries, err := w.source.Beacon.Parse(payload, from, w.nic.V4Addr)
		if err != nil {
			logging.Tracef("locator: %s beacon parse on %s: %v", w.source.Brand, w.nic.Name, err)
			continue
		}
		for _, d := range discoveries {
			l.handleDiscovery(w, d)
		}
	}
}

func (l *Locator) handleDiscovery(w *watch, d radar.Discovery) {
	w.state = Active
	w.lastSeen = l.clock.Now()

	key := radar.MakeKey(d.Brand, d.Serial, d.Which)

	l.mu.Lock()
	info, exists := l.known[key]
	if !exists {
		info = &radar.RadarInfo{
			Key:             key,
			Brand:           d.Brand,
			SerialNo:        d.Serial,
			Which:           d.Which,
			Addr:            d.Addr,
			NICAddr:         w.nic.V4Addr,
			SpokeDataAddr:   d.SpokeDataAddr,
			ReportAddr:      d.ReportAddr,
			SendCommandAddr: d.SendCommandAddr,
		}
		l.known[key] = info
	} else {
		info.Addr = d.Addr
		info.SpokeDataAddr = d.SpokeDataAddr
		info.ReportAddr = d.ReportAddr
		info.SendCommandAddr = d.SendCommandAddr
	}
	l.mu.Unlock()

	if !exists {
		logging.Opsf("locator: discovered %s radar %s on %s", d.Brand, d.Serial, w.nic.Name)
		select {
		case l.Found <- Found{Info: info, Behaviors: w.source.Behaviors, NIC: w.nic}:
		default:
			logging.Opsf("locator: Found channel full, dropping discovery of %s", key)
		}
	}
}

func (l *Locator) checkLost(w *watch) {
	if w.state == Active && l.clock.Since(w.lastSeen) > l.lostAfter {
		w.state = Lost
		logging.Opsf("locator: %s on %s marked lost (no beacon for %s)", w.source.Brand, w.nic.Name, l.lostAfter)
	}
}

// wakeLoop periodically broadcasts a brand's wake packets on nic,
// backing off to idleInterval once a radar of that brand is Active
// (spec §4.B "wake packet cadence").
func (l *Locator) wakeLoop(ctx context.Context, w *watch) {
	packets := w.source.Beacon.WakePackets()
	if len(packets) == 0 || w.sendConn == nil {
		return
	}
	group := w.source.Beacon.ListenGroup().UDPAddr()

	t := l.clock.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			for _, p := range packets {
				if _, err := w.sendConn.WriteToUDP(p, group); err != nil {
					logging.Tracef("locator: wake send on %s: %v", w.nic.Name, err)
				}
			}
			interval := l.wakeInterval
			if w.state == Active {
				interval = l.idleInterval
			}
			t.Reset(interval)
		}
	}
}
