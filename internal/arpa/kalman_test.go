package arpa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isPositiveDefinite4(k *KalmanState) bool {
	for i := 0; i < 4; i++ {
		if k.P.At(i, i) <= 0 {
			return false
		}
	}
	return true
}

func TestKalmanPredictAdvancesPositionByVelocity(t *testing.T) {
	t.Parallel()

	k := NewKalmanState(0, 0)
	k.X.SetVec(2, 10) // vx = 10 m/s
	k.X.SetVec(3, 0)

	k.Predict(1.0, 0.1, 0.1)

	x, y := k.PositionMeters()
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
	assert.True(t, isPositiveDefinite4(k))
}

func TestKalmanUpdatePullsTowardMeasurement(t *testing.T) {
	t.Parallel()

	k := NewKalmanState(0, 0)
	err := k.Update(100, 50, 0.5)
	require.NoError(t, err)

	x, y := k.PositionMeters()
	assert.Greater(t, x, 0.0)
	assert.Greater(t, y, 0.0)
	assert.True(t, isPositiveDefinite4(k))
}

func TestKalmanPredictThenUpdateStaysPositiveDefinite(t *testing.T) {
	t.Parallel()

	k := NewKalmanState(10, 10)
	for i := 0; i < 5; i++ {
		k.Predict(1.0, 0.1, 0.5)
		require.NoError(t, k.Update(float64(10+i), float64(10+i), 0.2))
		assert.True(t, isPositiveDefinite4(k))
	}
}
