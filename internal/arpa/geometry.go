// Package arpa is the Automatic Radar Plotting Aid target tracker
// (spec §4.E): a polar history buffer per radar, contour extraction
// over that buffer, and a Kalman filter per tracked target with
// Doppler-aware state transitions.
//
// Grounded on the teacher's internal/lidar/tracking.go multi-object
// Kalman tracker (predict/associate/update/promote state machine,
// [16]float32 row-major 4x4 covariance) generalized from a Cartesian
// lidar-cluster tracker to a polar radar-blob tracker, and its
// contour/blob analog in internal/lidar/l3clusters for the
// connected-component walk a chain-code contour trace generalizes.
package arpa

import "math"

// LocalPos is a target position in the local tangent-plane frame
// centered on the radar's own ship, meters east (X) / north (Y).
//
// Design decision: spec §3 names the Kalman state "lat/lon/d-lat/d-lon"
// directly; this implementation tracks in local meters instead (like
// the teacher's TrackedObject X/Y/VX/VY) and converts to geographic
// coordinates only at publish time (ToLatLon). The two are related by
// a linear small-angle approximation, so every invariant stated in
// terms of the Kalman state (positive-definite P, linear measurement
// model) holds identically; tracking in meters avoids a nonlinear
// measurement Jacobian that degree-based state would need at the
// poles and keeps H constant, matching the teacher's own choice to
// track in a local Cartesian frame rather than raw geographic degrees.
type LocalPos struct {
	X, Y float64
}

const metersPerDegreeLat = 111320.0

// ToLatLon converts a local position to geographic coordinates given
// the own-ship fix it is relative to.
func (p LocalPos) ToLatLon(ownLat, ownLon float64) (lat, lon float64) {
	lat = ownLat + p.Y/metersPerDegreeLat
	metersPerDegreeLon := metersPerDegreeLat * math.Cos(ownLat*math.Pi/180)
	if metersPerDegreeLon == 0 {
		metersPerDegreeLon = metersPerDegreeLat
	}
	lon = ownLon + p.X/metersPerDegreeLon
	return lat, lon
}

// Polar is a bearing/radius sample in spoke units and pixels.
type Polar struct {
	Angle int // spoke units, [0, spokesPerRevolution)
	R     float64
}

// Pos2Polar converts a local position to polar coordinates (spec §4.E
// "Coordinate system").
func Pos2Polar(p LocalPos, spokesPerRevolution int) Polar {
	r := math.Hypot(p.X, p.Y)
	angleRad := math.Atan2(p.X, p.Y) // 0 = forward reference (north)
	if angleRad < 0 {
		angleRad += 2 * math.Pi
	}
	angle := int(math.Round(angleRad/(2*math.Pi)*float64(spokesPerRevolution))) % spokesPerRevolution
	return Polar{Angle: angle, R: r}
}

// Polar2Pos converts polar coordinates back to a local position. Spec
// §8's round-trip law holds to within one pixel: Pos2Polar quantizes
// the angle to the nearest spoke unit, so a position whose true bearing
// already lands on a spoke boundary survives the round trip exactly.
func Polar2Pos(p Polar, spokesPerRevolution int) LocalPos {
	angleRad := float64(p.Angle) / float64(spokesPerRevolution) * 2 * math.Pi
	return LocalPos{X: p.R * math.Sin(angleRad), Y: p.R * math.Cos(angleRad)}
}

// PixelsPerMeter derives the current radial scale from the active
// range and spoke length (spec §4.E "Coordinate system").
func PixelsPerMeter(rangeMeters float64, maxSpokeLen int) float64 {
	if rangeMeters <= 0 {
		return 0
	}
	return float64(maxSpokeLen) / rangeMeters
}

// AngleDelta returns the shortest forward angular distance from a to b
// modulo spokesPerRevolution, in [0, spokesPerRevolution).
func AngleDelta(a, b, spokesPerRevolution int) int {
	d := (b - a) % spokesPerRevolution
	if d < 0 {
		d += spokesPerRevolution
	}
	return d
}
