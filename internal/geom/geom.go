// Package geom provides the small set of angle and 2-D vector operations the
// performance calculators are built on. Angles are degrees unless a name says
// otherwise; headings follow the aviation convention (0 = north, 90 = east).
package geom

import (
	"math"

	"golang.org/x/exp/constraints"
)

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * degToRad }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * radToDeg }

// NormalizeAngle reduces an angle in degrees to [0,360). Correct for any
// finite input magnitude: math.Mod keeps the sign of the dividend, so a
// single correction loop (at most one iteration for finite inputs, since
// |Mod(a,360)| < 360) brings negatives back into range. Adding 360 to a
// tiny negative remainder rounds to exactly 360, so the upper bound needs
// its own correction.
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	for a < 0 {
		a += 360
	}
	if a >= 360 {
		a -= 360
	}
	return a
}

// RelativeBearing folds an angle difference in degrees into (-180,180].
// Positive means the target bearing lies to the right of the reference.
func RelativeBearing(deg float64) float64 {
	a := NormalizeAngle(deg)
	if a > 180 {
		a -= 360
	}
	return a
}

// ---------------------------------------------------------------------------
// 2-D vectors
// ---------------------------------------------------------------------------

// Vec2 is a 2-D vector in the east/north plane (X east, Y north).
type Vec2 struct {
	X float64
	Y float64
}

// FromBearing returns the vector of the given magnitude pointing along a
// compass bearing in degrees (east = sin, north = cos).
func FromBearing(magnitude, bearingDeg float64) Vec2 {
	r := Radians(bearingDeg)
	return Vec2{X: magnitude * math.Sin(r), Y: magnitude * math.Cos(r)}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mag returns the vector magnitude.
func (v Vec2) Mag() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Bearing returns the compass bearing the vector points toward, in [0,360).
func (v Vec2) Bearing() float64 {
	return NormalizeAngle(Degrees(math.Atan2(v.X, v.Y)))
}

// ---------------------------------------------------------------------------
// Generic numeric helpers
// ---------------------------------------------------------------------------

// Clamp limits x to [low, high].
func Clamp[T constraints.Ordered](x, low, high T) T {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// Sqr returns v squared.
func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }
