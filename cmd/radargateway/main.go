// Command radargateway discovers Navico, Furuno, and Raymarine marine
// radars on the local network, decodes their reports and spoke data,
// runs ARPA target tracking, and republishes every radar as an
// outbound protobuf stream over its own debug-mux hub (spec §1
// "Overview").
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/navbridge/radargateway/internal/arpa"
	"github.com/navbridge/radargateway/internal/config"
	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/debugmux"
	"github.com/navbridge/radargateway/internal/furuno"
	"github.com/navbridge/radargateway/internal/locator"
	"github.com/navbridge/radargateway/internal/logging"
	"github.com/navbridge/radargateway/internal/navcache"
	"github.com/navbridge/radargateway/internal/navico"
	"github.com/navbridge/radargateway/internal/outbound"
	"github.com/navbridge/radargateway/internal/radar"
	"github.com/navbridge/radargateway/internal/raymarine"
	"github.com/navbridge/radargateway/internal/receiver"
	"github.com/navbridge/radargateway/internal/version"
)

var (
	listen      = flag.String("listen", ":8080", "HTTP listen address for outbound streams and debug routes")
	enableArpa  = flag.Bool("enable-arpa", true, "Run the ARPA target tracker for every discovered radar")
	versionFlag = flag.Bool("version", false, "Print version information and exit")
	configPath  = flag.String("config", "", "Path to a tuning config JSON file overriding locator/receiver/ARPA defaults")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("radargateway v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			logging.Opsf("radargateway: loading tuning config %s: %v", *configPath, err)
		} else {
			tuning = loaded
		}
	}

	nav := navcache.New()

	gw := newGateway(nav, tuning)

	loc := locator.New([]locator.BrandSource{
		{Brand: radar.Navico, Beacon: navico.BeaconParser{}, Behaviors: navico.Behaviors()},
		{Brand: radar.Furuno, Beacon: furuno.BeaconParser{}, Behaviors: furuno.Behaviors()},
		{Brand: radar.Raymarine, Beacon: raymarine.BeaconParser{}, Behaviors: raymarine.Behaviors()},
	}).WithConfig(tuning)

	var wg sync.WaitGroup

	mux := http.NewServeMux()
	debugmux.NewRegistry(gw.snapshot).Attach(mux)
	mux.HandleFunc("/stream/", gw.streamHandler)

	server := &http.Server{Addr: *listen, Handler: mux}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logging.Opsf("radargateway: listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Opsf("radargateway: http server error: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loc.Run(ctx); err != nil && ctx.Err() == nil {
			logging.Opsf("radargateway: locator stopped: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		gw.acceptDiscoveries(ctx, loc.Found, &wg)
	}()

	<-ctx.Done()
	logging.Opsf("radargateway: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	wg.Wait()
}

// gateway owns every discovered radar's receiver and the outbound
// hub it publishes through.
type gateway struct {
	nav    *navcache.Cache
	tuning *config.TuningConfig

	mu     sync.Mutex
	radars map[radar.Key]*managedRadar
}

type managedRadar struct {
	info     *radar.RadarInfo
	receiver *receiver.Receiver
	hub      *outbound.Hub
}

func newGateway(nav *navcache.Cache, tuning *config.TuningConfig) *gateway {
	return &gateway{nav: nav, tuning: tuning, radars: make(map[radar.Key]*managedRadar)}
}

// acceptDiscoveries consumes locator.Found and stands up a receiver for
// each newly discovered radar. Real socket wiring (reports/info/spoke
// UDP listeners per radar.RadarInfo's discovered endpoints) belongs to
// a transport adapter layered on top of this; it is intentionally left
// for deployment-specific configuration (reuse-port strategy, NIC
// binding) rather than hardcoded here.
func (g *gateway) acceptDiscoveries(ctx context.Context, found <-chan locator.Found, wg *sync.WaitGroup) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-found:
			if !ok {
				return
			}
			g.start(ctx, f, wg)
		}
	}
}

func (g *gateway) start(ctx context.Context, f locator.Found, wg *sync.WaitGroup) {
	g.mu.Lock()
	if _, exists := g.radars[f.Info.Key]; exists {
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	info := f.Info
	info.Controls = control.New()

	hub := outbound.NewHub()

	commandOut := make(chan []byte, 16)
	rx := &receiver.Receiver{
		Info:      info,
		Behaviors: f.Behaviors,
		Inputs: receiver.Inputs{
			CommandOut: commandOut,
		},
		Outbound:          hub,
		RangeStepInterval: g.tuning.GetRangeDetectionStepInterval(),
	}
	if *enableArpa {
		rx.NewArpaTracker = func(info *radar.RadarInfo) *arpa.Tracker {
			return arpa.NewTrackerWithConfig(info.SpokesPerRevolution, info.MaxSpokeLen, info.Legend, func() arpa.OwnShipFix {
				fix, ok := g.nav.Current(timeNow())
				return arpa.OwnShipFix{Lat: fix.Lat, Lon: fix.Lon, Valid: ok}
			}, g.tuning)
		}
	}

	g.mu.Lock()
	g.radars[info.Key] = &managedRadar{info: info, receiver: rx, hub: hub}
	g.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		rx.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case cmd, ok := <-commandOut:
				if !ok {
					return
				}
				g.sendCommand(info, cmd)
			}
		}
	}()

	logging.Opsf("radargateway: started receiver for %s", info.Key)
}

// sendCommand writes an encoded command to the radar's command
// endpoint. It dials a fresh UDP socket to info.SendCommandAddr for
// every command and closes it after the write.
func (g *gateway) sendCommand(info *radar.RadarInfo, cmd []byte) {
	conn, err := net.DialUDP("udp4", nil, info.SendCommandAddr.UDPAddr())
	if err != nil {
		logging.Opsf("radargateway: dial command socket for %s: %v", info.Key, err)
		return
	}
	defer conn.Close()
	if _, err := conn.Write(cmd); err != nil {
		logging.Opsf("radargateway: write command for %s: %v", info.Key, err)
	}
}

func (g *gateway) snapshot() map[radar.Key]debugmux.RadarView {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[radar.Key]debugmux.RadarView, len(g.radars))
	for k, v := range g.radars {
		mr := v
		out[k] = debugmux.RadarView{
			Info:  mr.info,
			State: func() string { return mr.receiver.State().String() },
			Arpa:  mr.receiver.Arpa(),
		}
	}
	return out
}

// streamHandler serves the outbound protobuf stream for one radar as
// chunked binary frames: each RadarMessage from a Publish call is
// preceded by its byte length as an unsigned varint.
func (g *gateway) streamHandler(w http.ResponseWriter, r *http.Request) {
	key := radar.Key(r.URL.Query().Get("key"))
	g.mu.Lock()
	mr, ok := g.radars[key]
	g.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	ch, cancel := mr.hub.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "application/octet-stream")
	flusher, _ := w.(http.Flusher)
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-ch:
			if !ok {
				return
			}
			prefixed := binary.AppendUvarint(nil, uint64(len(frame)))
			prefixed = append(prefixed, frame...)
			if _, err := w.Write(prefixed); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func timeNow() time.Time { return time.Now() }
