// Package debugmux exposes read-only introspection of every running
// radar receiver over HTTP: current state, control values, and ARPA
// target snapshots, for the same kind of operator debug page the
// teacher wires up per subsystem.
//
// Grounded on the teacher's internal/serialmux.AttachAdminRoutes and
// internal/db's own tsweb.Debugger wiring: both register handlers
// through tailscale.com/tsweb's Debugger rather than bare
// http.ServeMux.HandleFunc, which also gives every route a line on the
// generated /debug/ index page for free.
package debugmux

import (
	"encoding/json"
	"net/http"
	"sort"

	"tailscale.com/tsweb"

	"github.com/navbridge/radargateway/internal/arpa"
	"github.com/navbridge/radargateway/internal/radar"
)

// RadarView is what one registered radar exposes to the debug mux.
type RadarView struct {
	Info  *radar.RadarInfo
	State func() string
	Arpa  *arpa.Tracker // nil if ARPA is not enabled for this radar
}

// Registry is the set of radars currently known to the process, queried
// live by the debug handlers on every request.
type Registry struct {
	radars func() map[radar.Key]RadarView
}

// NewRegistry wraps a snapshot function; callers typically close over a
// mutex-protected map maintained by cmd/radargateway's main loop.
func NewRegistry(snapshot func() map[radar.Key]RadarView) *Registry {
	return &Registry{radars: snapshot}
}

// Attach registers every debug route under mux's tsweb.Debugger.
func (r *Registry) Attach(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("radars", "list discovered radars and their state", func(w http.ResponseWriter, req *http.Request) {
		type row struct {
			Key    string `json:"key"`
			Brand  string `json:"brand"`
			Serial string `json:"serial"`
			State  string `json:"state"`
		}
		var rows []row
		for key, v := range r.radars() {
			rows = append(rows, row{
				Key:    string(key),
				Brand:  v.Info.Brand.String(),
				Serial: v.Info.SerialNo,
				State:  v.State(),
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
		writeJSON(w, rows)
	})

	debug.HandleFunc("radar-controls", "dump current control values for one radar (?key=)", func(w http.ResponseWriter, req *http.Request) {
		key := radar.Key(req.URL.Query().Get("key"))
		v, ok := r.radars()[key]
		if !ok {
			http.NotFound(w, req)
			return
		}
		writeJSON(w, v.Info.Controls.Snapshot())
	})

	debug.HandleFunc("arpa-targets", "dump ARPA target list for one radar (?key=)", func(w http.ResponseWriter, req *http.Request) {
		key := radar.Key(req.URL.Query().Get("key"))
		v, ok := r.radars()[key]
		if !ok || v.Arpa == nil {
			http.NotFound(w, req)
			return
		}
		writeJSON(w, v.Arpa.Snapshot())
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
