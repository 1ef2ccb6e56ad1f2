package arpa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolarRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("spoke-aligned angle survives round trip", func(t *testing.T) {
		t.Parallel()
		spokesPerRev := 2048
		original := Polar{Angle: 512, R: 300}
		pos := Polar2Pos(original, spokesPerRev)
		back := Pos2Polar(pos, spokesPerRev)

		assert.Equal(t, original.Angle, back.Angle)
		assert.InDelta(t, original.R, back.R, 1e-6)
	})

	t.Run("zero radius maps to the origin", func(t *testing.T) {
		t.Parallel()
		pos := Polar2Pos(Polar{Angle: 100, R: 0}, 2048)
		assert.InDelta(t, 0, pos.X, 1e-9)
		assert.InDelta(t, 0, pos.Y, 1e-9)
	})
}

func TestToLatLon(t *testing.T) {
	t.Parallel()

	p := LocalPos{X: 0, Y: metersPerDegreeLat}
	lat, lon := p.ToLatLon(10, 20)
	assert.InDelta(t, 11, lat, 1e-6)
	assert.InDelta(t, 20, lon, 1e-6)
}

func TestAngleDelta(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		a, b, n  int
		expected int
	}{
		{"simple forward", 10, 20, 100, 10},
		{"wraps past zero", 90, 5, 100, 15},
		{"same angle", 42, 42, 100, 0},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, c.expected, AngleDelta(c.a, c.b, c.n))
		})
	}
}

func TestPixelsPerMeter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, PixelsPerMeter(0, 512))
	assert.InDelta(t, 512.0/1000.0, PixelsPerMeter(1000, 512), 1e-9)
}

func TestPos2PolarQuadrants(t *testing.T) {
	t.Parallel()

	// Due north (Y positive, X zero) should land at angle 0.
	p := Pos2Polar(LocalPos{X: 0, Y: 100}, 360)
	assert.Equal(t, 0, p.Angle)
	assert.InDelta(t, 100, p.R, 1e-9)

	// Due east should be a quarter revolution around.
	e := Pos2Polar(LocalPos{X: 100, Y: 0}, 360)
	assert.Equal(t, 90, e.Angle)
}
