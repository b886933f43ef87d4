package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAngle(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{359.9, 359.9},
		{360, 0},
		{361, 1},
		{720, 0},
		{-1, 359},
		{-360, 0},
		{-725, 355},
		{1083.5, 3.5},
		{-10000, 80},
	} {
		assert.InDelta(t, tc.want, NormalizeAngle(tc.in), 1e-9, "input %v", tc.in)
	}
}

func TestNormalizeAngleTinyNegatives(t *testing.T) {
	// a += 360 on a tiny negative remainder rounds to exactly 360; the
	// result must still land inside [0,360).
	for _, a := range []float64{-1e-15, -1e-20, -5e-15, -math.SmallestNonzeroFloat64} {
		got := NormalizeAngle(a)
		assert.GreaterOrEqual(t, got, 0.0, "input %v", a)
		assert.Less(t, got, 360.0, "input %v", a)
	}

	// Bearing goes through the same reduction.
	b := Vec2{X: -math.Sin(1e-17), Y: 1}.Bearing()
	assert.GreaterOrEqual(t, b, 0.0)
	assert.Less(t, b, 360.0)
}

func TestNormalizeAngleIdempotent(t *testing.T) {
	for _, a := range []float64{-1234.5, -0.001, 0, 17.25, 359.999, 1e6} {
		once := NormalizeAngle(a)
		assert.Equal(t, once, NormalizeAngle(once), "input %v", a)
		assert.GreaterOrEqual(t, once, 0.0)
		assert.Less(t, once, 360.0)
	}
}

func TestRelativeBearing(t *testing.T) {
	assert.InDelta(t, 0, RelativeBearing(0), 1e-9)
	assert.InDelta(t, 90, RelativeBearing(90), 1e-9)
	assert.InDelta(t, 180, RelativeBearing(180), 1e-9)
	assert.InDelta(t, -90, RelativeBearing(270), 1e-9)
	assert.InDelta(t, -5, RelativeBearing(-5), 1e-9)
	assert.InDelta(t, 10, RelativeBearing(370), 1e-9)
}

func TestVec2(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	assert.InDelta(t, 5, v.Mag(), 1e-9)

	d := v.Sub(Vec2{X: 1, Y: 1})
	assert.InDelta(t, 2, d.X, 1e-9)
	assert.InDelta(t, 3, d.Y, 1e-9)
}

func TestFromBearing(t *testing.T) {
	// Due north: all Y.
	n := FromBearing(10, 0)
	assert.InDelta(t, 0, n.X, 1e-9)
	assert.InDelta(t, 10, n.Y, 1e-9)

	// Due east: all X.
	e := FromBearing(10, 90)
	assert.InDelta(t, 10, e.X, 1e-9)
	assert.InDelta(t, 0, e.Y, 1e-9)

	// Round trip through Bearing.
	for _, b := range []float64{0, 45, 133.7, 270, 359} {
		v := FromBearing(42, b)
		assert.InDelta(t, b, v.Bearing(), 1e-9, "bearing %v", b)
		assert.InDelta(t, 42, v.Mag(), 1e-9)
	}
}

func TestBearingZeroVector(t *testing.T) {
	// atan2(0,0) is 0 by definition; normalized it stays 0.
	assert.Equal(t, 0.0, Vec2{}.Bearing())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(10, 0, 5))
	assert.Equal(t, 0, Clamp(-10, 0, 5))
	assert.Equal(t, 3, Clamp(3, 0, 5))
	assert.InDelta(t, 0.0, Clamp(-2.5, 0.0, 1.0), 1e-9)
}

func TestDegreesRadians(t *testing.T) {
	assert.InDelta(t, math.Pi, Radians(180), 1e-12)
	assert.InDelta(t, 180, Degrees(math.Pi), 1e-12)
	assert.InDelta(t, 4, Sqr(2.0), 1e-12)
}
