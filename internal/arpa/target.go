package arpa

import (
	"math"
	"time"
)

// Status is the ArpaTarget acquisition/lifecycle state (spec §3
// "ArpaTarget").
type Status int

const (
	Acquire0 Status = iota
	Acquire1
	Acquire2
	Acquire3
	Active
	Lost
	ForDeletion
)

func (s Status) String() string {
	switch s {
	case Acquire0:
		return "Acquire0"
	case Acquire1:
		return "Acquire1"
	case Acquire2:
		return "Acquire2"
	case Acquire3:
		return "Acquire3"
	case Active:
		return "Active"
	case Lost:
		return "Lost"
	case ForDeletion:
		return "ForDeletion"
	default:
		return "Unknown"
	}
}

// DopplerClass is a target's measured velocity-component classification
// (spec §4.E step 4).
type DopplerClass int

const (
	DopplerAny DopplerClass = iota
	DopplerApproaching
	DopplerReceding
)

// MaxLostCount is the number of consecutive missed refreshes before an
// Active target is deleted (spec §4.E step 6).
const MaxLostCount = 12

// MaxDetectionSpeedKn bounds the search radius growth for target
// refresh (spec §4.E step 3 "search_radius = MAX_DETECTION_SPEED_KN ×
// rotation_period × pixels_per_meter"). Not a documented constant in
// spec.md; 50kn covers every vessel class the three supported radar
// families are marketed for.
const MaxDetectionSpeedKn = 50.0

// ExtendedPosition is a target's current position/velocity estimate
// (spec §3 "ExtendedPosition").
type ExtendedPosition struct {
	Lat, Lon   float64
	VXMps, VYMps float64
	Time       time.Time
	SpeedKn    float64
	SigmaM     float64
}

// Contour is the traced boundary of one blob (spec §3 "ArpaTarget.contour").
type Contour struct {
	MinAngle, MaxAngle int
	MinR, MaxR         int
	Points             []Point
}

// ArpaTarget is one tracked object (spec §3 "ArpaTarget").
type ArpaTarget struct {
	ID     string
	Status Status

	Kalman *KalmanState

	Position ExtendedPosition
	Contour  Contour

	Doppler                                DopplerClass
	TotalPixels, ApproachingPixels, RecedingPixels int

	LostCount    int
	AgeRotations int
	RefreshTime  time.Time
	Expected     Polar

	createdAngle int // angle the target was first acquired at, to detect a full rotation elapsed
}

// SpeedKn returns the filter's current speed estimate in knots.
func (t *ArpaTarget) SpeedKn() float64 {
	vx, vy := t.Kalman.VelocityMetersPerSec()
	mps := math.Hypot(vx, vy)
	return mps * 1.9438445 // m/s -> kn
}
