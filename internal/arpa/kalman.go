package arpa

import (
	"gonum.org/v1/gonum/mat"
)

// KalmanState is the 4-state [x, y, vx, vy] filter for one target,
// tracked in local tangent-plane meters (see geometry.go). Grounded on
// the teacher's TrackedObject Kalman math (internal/lidar/tracking.go
// predict/update), rewritten against gonum/mat's Dense/VecDense instead
// of a hand-unrolled [16]float32 array, since this is the one place in
// the corpus that already depends on gonum for matrix work — using its
// matrix type here instead of flattened arrays is keeping faith with
// that dependency's purpose rather than only ever calling stat.Mean.
type KalmanState struct {
	X *mat.VecDense // [x, y, vx, vy]
	P *mat.Dense    // 4x4 covariance
}

// NewKalmanState seeds a target at (x0, y0) with zero velocity and high
// positional uncertainty, low velocity uncertainty — the same shape the
// teacher's initTrack uses.
func NewKalmanState(x0, y0 float64) *KalmanState {
	return &KalmanState{
		X: mat.NewVecDense(4, []float64{x0, y0, 0, 0}),
		P: mat.NewDense(4, 4, []float64{
			10, 0, 0, 0,
			0, 10, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}),
	}
}

func transitionMatrix(dt float64) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, dt, 0,
		0, 1, 0, dt,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// Predict advances the filter by dt: x ← Ax, P ← APA^T + Q, with
// processNoisePos added to the position variances and processNoiseVel
// to the velocity variances (spec §4.E step 1
// "A = I + Δt in the off-diagonal; W injects process noise Q = NOISE·I
// on velocity").
func (k *KalmanState) Predict(dt, processNoisePos, processNoiseVel float64) {
	a := transitionMatrix(dt)

	var newX mat.VecDense
	newX.MulVec(a, k.X)
	k.X = &newX

	var ap, apat mat.Dense
	ap.Mul(a, k.P)
	apat.Mul(&ap, a.T())

	apat.Set(0, 0, apat.At(0, 0)+processNoisePos)
	apat.Set(1, 1, apat.At(1, 1)+processNoisePos)
	apat.Set(2, 2, apat.At(2, 2)+processNoiseVel)
	apat.Set(3, 3, apat.At(3, 3)+processNoiseVel)
	k.P = &apat
}

// Update applies a position measurement (spec §4.E step 5): innovation
// Z = measured - expected, H extracts position, gain
// K = P H^T (H P H^T + R)^-1, x ← x + K Z, P ← (I - K H) P.
func (k *KalmanState) Update(measuredX, measuredY, measurementNoise float64) error {
	h := mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
	})

	var hp, hpht mat.Dense
	hp.Mul(h, k.P)
	hpht.Mul(&hp, h.T())
	hpht.Set(0, 0, hpht.At(0, 0)+measurementNoise)
	hpht.Set(1, 1, hpht.At(1, 1)+measurementNoise)

	var sInv mat.Dense
	if err := sInv.Inverse(&hpht); err != nil {
		return err
	}

	var pht mat.Dense
	pht.Mul(k.P, h.T())
	var gain mat.Dense
	gain.Mul(&pht, &sInv)

	z := mat.NewVecDense(2, []float64{measuredX - k.X.AtVec(0), measuredY - k.X.AtVec(1)})
	var correction mat.VecDense
	correction.MulVec(&gain, z)
	var newX mat.VecDense
	newX.AddVec(k.X, &correction)
	k.X = &newX

	var kh, ikh, newP mat.Dense
	kh.Mul(&gain, h)
	ikh.Sub(identity4(), &kh)
	newP.Mul(&ikh, k.P)
	k.P = &newP
	return nil
}

func identity4() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// PositionMeters returns the filter's current position estimate.
func (k *KalmanState) PositionMeters() (x, y float64) {
	return k.X.AtVec(0), k.X.AtVec(1)
}

// VelocityMetersPerSec returns the filter's current velocity estimate.
func (k *KalmanState) VelocityMetersPerSec() (vx, vy float64) {
	return k.X.AtVec(2), k.X.AtVec(3)
}
