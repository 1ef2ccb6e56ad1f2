package arpa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArpaTargetSpeedKn(t *testing.T) {
	t.Parallel()

	target := &ArpaTarget{Kalman: NewKalmanState(0, 0)}
	target.Kalman.X.SetVec(2, 1.0/1.9438445) // 1 knot east, in m/s
	target.Kalman.X.SetVec(3, 0)

	assert.InDelta(t, 1.0, target.SpeedKn(), 1e-6)
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	cases := map[Status]string{
		Acquire0:    "Acquire0",
		Acquire1:    "Acquire1",
		Active:      "Active",
		Lost:        "Lost",
		ForDeletion: "ForDeletion",
	}
	for status, want := range cases {
		assert.Equal(t, want, status.String())
	}
}
