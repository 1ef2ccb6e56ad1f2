package arpa

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/navbridge/radargateway/internal/config"
	"github.com/navbridge/radargateway/internal/logging"
	"github.com/navbridge/radargateway/internal/radar"
)

const (
	scanTriggerFraction    = 0.75
	refreshStartFraction   = 0.25
	refreshEndFraction     = 0.50
	approachingTransition  = 0.85
	recedingEscapeFraction = 0.80
	footprintMargin        = 30
	shadowMultiplier       = 4
)

// OwnShipFunc returns the current own-ship fix, backed by the
// out-of-scope nav cache (spec §9).
type OwnShipFunc func() OwnShipFix

// Tracker maintains the polar history buffer and every ArpaTarget for
// one radar (spec §4.E). One Tracker attaches to at most one receiver.
type Tracker struct {
	mu sync.Mutex

	History *History
	Legend  radar.Legend
	OwnShip OwnShipFunc

	rangeMeters        float64
	rotationPeriod     time.Duration
	lastSpokeAngle     int
	lastSpokeTime      time.Time
	lastScanTrigger    int
	lastRefreshTrigger int
	sawFirstSpoke      bool

	processNoisePos  float64
	processNoiseVel  float64
	measurementNoise float64
	maxLostCount     int

	Targets map[string]*ArpaTarget
}

// NewTracker allocates a tracker with an empty history buffer sized to
// the radar's current spoke geometry, using the compiled-in Kalman and
// lost-target defaults (spec §4.E).
func NewTracker(spokesPerRevolution, maxSpokeLen int, legend radar.Legend, ownShip OwnShipFunc) *Tracker {
	return NewTrackerWithConfig(spokesPerRevolution, maxSpokeLen, legend, ownShip, config.EmptyTuningConfig())
}

// NewTrackerWithConfig is NewTracker with every Kalman/lost-target
// threshold overridable from a TuningConfig loaded from JSON.
func NewTrackerWithConfig(spokesPerRevolution, maxSpokeLen int, legend radar.Legend, ownShip OwnShipFunc, cfg *config.TuningConfig) *Tracker {
	if ownShip == nil {
		ownShip = func() OwnShipFix { return OwnShipFix{} }
	}
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Tracker{
		History:          NewHistory(spokesPerRevolution, maxSpokeLen),
		Legend:           legend,
		OwnShip:          ownShip,
		processNoisePos:  cfg.GetProcessNoisePos(),
		processNoiseVel:  cfg.GetProcessNoiseVel(),
		measurementNoise: cfg.GetMeasurementNoise(),
		maxLostCount:     cfg.GetMaxLostCount(),
		Targets:          make(map[string]*ArpaTarget),
	}
}

// ProcessSpoke is called once per decoded outbound spoke (spec §4.E
// intro: "after the outbound message is built").
func (t *Tracker) ProcessSpoke(s radar.Spoke) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rangeMeters = s.RangeMeters
	now := time.UnixMilli(s.TimeMs)
	own := t.OwnShip()

	t.History.Update(s.Angle, now, own, s.Data, t.Legend)
	t.drawContours()

	spokesPerRev := t.History.SpokesPerRevolution
	if t.sawFirstSpoke {
		if t.lastSpokeAngle != s.Angle {
			elapsed := now.Sub(t.lastSpokeTime)
			steps := AngleDelta(t.lastSpokeAngle, s.Angle, spokesPerRev)
			if steps > 0 && elapsed > 0 {
				t.rotationPeriod = time.Duration(int64(elapsed) * int64(spokesPerRev) / int64(steps))
			}
		}
	}
	t.sawFirstSpoke = true
	t.lastSpokeAngle = s.Angle
	t.lastSpokeTime = now

	scanBand := AngleDelta(t.lastScanTrigger, s.Angle, spokesPerRev)
	if scanBand >= int(scanTriggerFraction*float64(spokesPerRev)) {
		t.scanForTargets(t.lastScanTrigger, s.Angle)
		t.lastScanTrigger = s.Angle
	}

	refreshBand := AngleDelta(t.lastRefreshTrigger, s.Angle, spokesPerRev)
	lowerBound := int(refreshStartFraction * float64(spokesPerRev))
	upperBound := int(refreshEndFraction * float64(spokesPerRev))
	if refreshBand >= lowerBound && refreshBand <= upperBound {
		t.refreshTargets(s.Angle)
		t.lastRefreshTrigger = s.Angle
	}
}

// drawContours paints CONTOUR bits from the last traced boundary of
// every target onto the current history slot (spec §4.E step 1).
func (t *Tracker) drawContours() {
	for _, target := range t.Targets {
		for _, p := range target.Contour.Points {
			slot := t.History.Slot(p.Angle)
			if p.R >= 0 && p.R < len(slot.Pixels) {
				slot.Pixels[p.R] |= radar.PixelContour
			}
		}
	}
}

// scanForTargets looks for new Doppler-positive blobs in
// [from, to+3/4 rev) and acquires one ArpaTarget per unclaimed
// MIN_CONTOUR_LENGTH+ contour (spec §4.E step 2).
func (t *Tracker) scanForTargets(from, to int) {
	spokesPerRev := t.History.SpokesPerRevolution
	band := AngleDelta(from, to, spokesPerRev) + int(0.75*float64(spokesPerRev))
	ppm := PixelsPerMeter(t.rangeMeters, t.History.MaxSpokeLen)

	for step := 0; step < band; step++ {
		angle := radar.ModSpokes(from+step, spokesPerRev)
		slot := t.History.Slot(angle)
		for r, px := range slot.Pixels {
			if px&(radar.PixelApproaching|radar.PixelReceding) == 0 {
				continue
			}
			if !MultiPix(t.History, angle, r) {
				continue
			}
			if t.claimedBy(angle, r) != nil {
				continue
			}
			pts, ok := FindContourFromInside(t.History, Point{Angle: angle, R: r})
			if !ok || len(pts) < MinContourLength {
				continue
			}
			t.acquireTarget(pts, ppm)
		}
	}
}

// claimedBy returns the target whose contour already covers (angle, r),
// if any, so scanForTargets never double-acquires a blob.
func (t *Tracker) claimedBy(angle, r int) *ArpaTarget {
	for _, target := range t.Targets {
		minA, maxA, minR, maxR := target.Contour.MinAngle, target.Contour.MaxAngle, target.Contour.MinR, target.Contour.MaxR
		if angle >= minA && angle <= maxA && r >= minR && r <= maxR {
			return target
		}
	}
	return nil
}

func (t *Tracker) acquireTarget(pts []Point, ppm float64) {
	minA, maxA, minR, maxR := Bounds(pts)
	centerAngle := (minA + maxA) / 2
	centerR := (minR + maxR) / 2

	var local LocalPos
	if ppm > 0 {
		local = Polar2Pos(Polar{Angle: centerAngle, R: float64(centerR) / ppm}, t.History.SpokesPerRevolution)
	}

	target := &ArpaTarget{
		ID:           uuid.NewString(),
		Status:       Acquire0,
		Kalman:       NewKalmanState(local.X, local.Y),
		Contour:      Contour{MinAngle: minA, MaxAngle: maxA, MinR: minR, MaxR: maxR, Points: pts},
		Expected:     Polar{Angle: centerAngle, R: float64(centerR)},
		RefreshTime:  time.Now(),
		createdAngle: centerAngle,
	}
	t.countPixels(target)
	t.classifyDoppler(target)
	t.Targets[target.ID] = target
	logging.Diagf("arpa: acquired target %s at angle=%d r=%d", target.ID, centerAngle, centerR)
}

// refreshTargets runs the predict/locate/update cycle for every target
// whose expected angle falls in the current refresh band, in three
// passes with growing search radius (spec §4.E step 3).
func (t *Tracker) refreshTargets(triggerAngle int) {
	if t.rotationPeriod <= 0 {
		t.rotationPeriod = 2500 * time.Millisecond
	}
	ppm := PixelsPerMeter(t.rangeMeters, t.History.MaxSpokeLen)
	searchRadius := MaxDetectionSpeedKn * t.rotationPeriod.Seconds() / 1.9438445 * ppm
	if searchRadius < 1 {
		searchRadius = 1
	}

	passes := []float64{searchRadius / 4, searchRadius / 3, searchRadius}
	dueForRefresh := make([]*ArpaTarget, 0, len(t.Targets))
	spokesPerRev := t.History.SpokesPerRevolution
	for _, target := range t.Targets {
		band := AngleDelta(t.lastRefreshTrigger, triggerAngle, spokesPerRev)
		expectedBand := AngleDelta(t.lastRefreshTrigger, target.Expected.Angle, spokesPerRev)
		if expectedBand <= band {
			dueForRefresh = append(dueForRefresh, target)
		}
	}

	now := time.Now()
	for _, target := range dueForRefresh {
		dt := now.Sub(target.RefreshTime).Seconds()
		if dt <= 0 {
			dt = t.rotationPeriod.Seconds()
		}
		if target.Status != Acquire0 {
			target.Kalman.Predict(dt, t.processNoisePos, t.processNoiseVel)
		}

		found := false
		for _, dist := range passes {
			if t.locateAndUpdate(target, int(dist), ppm) {
				found = true
				break
			}
		}
		target.RefreshTime = now
		t.advanceStatus(target, found)
	}
	t.cleanupTargets()
}

// locateAndUpdate performs one locate pass (spec §4.E step 2) plus, on
// success, steps 3-5 and 8.
func (t *Tracker) locateAndUpdate(target *ArpaTarget, dist int, ppm float64) bool {
	x, y := target.Kalman.PositionMeters()
	predicted := Pos2Polar(LocalPos{X: x, Y: y}, t.History.SpokesPerRevolution)
	center := Point{Angle: predicted.Angle, R: int(predicted.R * ppm)}

	pts, ok := FindNearestContour(t.History, center, dist)
	if !ok {
		return false
	}

	t.applyFind(target, pts, ppm)
	return true
}

func (t *Tracker) applyFind(target *ArpaTarget, pts []Point, ppm float64) {
	minA, maxA, minR, maxR := Bounds(pts)
	target.Contour = Contour{MinAngle: minA, MaxAngle: maxA, MinR: minR, MaxR: maxR, Points: pts}
	target.Expected = Polar{Angle: (minA + maxA) / 2, R: float64(minR+maxR) / 2}

	t.countPixels(target)
	t.classifyDoppler(target)

	if t.smallFastOverride(target) {
		t.eraseFootprint(target)
		return
	}

	var measured LocalPos
	if ppm > 0 {
		measured = Polar2Pos(Polar{Angle: target.Expected.Angle, R: target.Expected.R / ppm}, t.History.SpokesPerRevolution)
	}
	if target.Status == Acquire0 {
		target.Kalman = NewKalmanState(measured.X, measured.Y)
	} else {
		target.Kalman.Update(measured.X, measured.Y, t.measurementNoise)
	}
	t.updatePosition(target)
	t.eraseFootprint(target)
}

// countPixels tallies total/approaching/receding samples across the
// contour's angular range (spec §4.E step 3).
func (t *Tracker) countPixels(target *ArpaTarget) {
	total, approaching, receding := 0, 0, 0
	for a := target.Contour.MinAngle; a <= target.Contour.MaxAngle; a++ {
		slot := t.History.Slot(a)
		for r := target.Contour.MinR; r <= target.Contour.MaxR && r < len(slot.Pixels); r++ {
			if r < 0 {
				continue
			}
			px := slot.Pixels[r]
			if px&radar.PixelTarget != 0 {
				total++
			}
			if px&radar.PixelApproaching != 0 {
				approaching++
			}
			if px&radar.PixelReceding != 0 {
				receding++
			}
		}
	}
	target.TotalPixels, target.ApproachingPixels, target.RecedingPixels = total, approaching, receding
}

// classifyDoppler applies the transition rules in spec §4.E step 4.
func (t *Tracker) classifyDoppler(target *ArpaTarget) {
	total := float64(target.TotalPixels)
	approaching := float64(target.ApproachingPixels)
	receding := float64(target.RecedingPixels)
	if total == 0 {
		return
	}

	switch target.Doppler {
	case DopplerApproaching:
		if approaching < recedingEscapeFraction*(total-receding) {
			target.Doppler = DopplerAny
		}
	case DopplerReceding:
		if receding < recedingEscapeFraction*(total-approaching) {
			target.Doppler = DopplerAny
		}
	default:
		switch {
		case approaching > receding && approaching > approachingTransition*total:
			target.Doppler = DopplerApproaching
		case receding > approaching && receding > approachingTransition*total:
			target.Doppler = DopplerReceding
		}
	}
}

// smallFastOverride bypasses the Kalman filter for small, young, fast
// targets (spec §4.E step 7).
func (t *Tracker) smallFastOverride(target *ArpaTarget) bool {
	wide := target.Contour.MaxAngle - target.Contour.MinAngle
	deep := target.Contour.MaxR - target.Contour.MinR
	small := wide <= 2 && deep <= 2
	young := target.AgeRotations >= 2 && target.AgeRotations <= 5
	if !small || !young || target.SpeedKn() < 10 {
		return false
	}
	damping := 1.0
	for i := 1; i < target.AgeRotations; i++ {
		damping *= 0.8
	}
	vx, vy := target.Kalman.VelocityMetersPerSec()
	x, y := target.Kalman.PositionMeters()
	target.Kalman.X.SetVec(0, x+vx*damping)
	target.Kalman.X.SetVec(1, y+vy*damping)
	t.updatePosition(target)
	return true
}

func (t *Tracker) updatePosition(target *ArpaTarget) {
	own := t.OwnShip()
	x, y := target.Kalman.PositionMeters()
	vx, vy := target.Kalman.VelocityMetersPerSec()
	lat, lon := x, y
	if own.Valid {
		lat, lon = (LocalPos{X: x, Y: y}).ToLatLon(own.Lat, own.Lon)
	}
	target.Position = ExtendedPosition{
		Lat: lat, Lon: lon,
		VXMps: vx, VYMps: vy,
		Time:    time.Now(),
		SpeedKn: target.SpeedKn(),
		SigmaM:  target.Kalman.P.At(0, 0),
	}
}

// eraseFootprint clears found pixels around the contour and re-draws
// CONTOUR bits (spec §4.E step 8).
func (t *Tracker) eraseFootprint(target *ArpaTarget) {
	centerAngle := (target.Contour.MinAngle + target.Contour.MaxAngle) / 2
	centerR := (target.Contour.MinR + target.Contour.MaxR) / 2
	margin := footprintMargin

	maxR := target.Contour.MaxR
	if maxR > 0 && (target.Contour.MaxR-target.Contour.MinR) < 4 && centerR < t.History.MaxSpokeLen/4 {
		margin = maxR * shadowMultiplier
	}
	t.History.ClearFootprint(centerAngle, centerR, margin, target.Contour.Points)
}

// advanceStatus implements the status progression in spec §4.E step 6.
func (t *Tracker) advanceStatus(target *ArpaTarget, found bool) {
	if found {
		target.LostCount = 0
		switch target.Status {
		case Acquire0:
			target.Status = Acquire1
		case Acquire1:
			target.Status = Acquire2
		case Acquire2:
			target.Status = Acquire3
		case Acquire3, Active:
			target.Status = Active
		case Lost:
			target.Status = Active
		}
		return
	}

	switch target.Status {
	case Acquire0, Acquire1, Acquire2:
		target.Status = ForDeletion
	case Acquire3, Active, Lost:
		target.LostCount++
		target.Status = Lost
		maxLost := t.maxLostCount
		if maxLost == 0 {
			maxLost = MaxLostCount
		}
		if target.LostCount > maxLost {
			target.Status = ForDeletion
		}
	}
}

func (t *Tracker) cleanupTargets() {
	for id, target := range t.Targets {
		if target.Status == ForDeletion {
			delete(t.Targets, id)
		}
	}
}

// Snapshot returns a copy of every tracked target, for the out-of-scope
// HTTP layer.
func (t *Tracker) Snapshot() []ArpaTarget {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ArpaTarget, 0, len(t.Targets))
	for _, target := range t.Targets {
		out = append(out, *target)
	}
	return out
}
