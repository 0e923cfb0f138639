// Package geometry computes joint angles from body keypoints.
//
// All angles are returned in degrees. Points must be distinct: an angle whose
// arms have zero length is undefined and reported as ErrDegenerate rather than NaN.
package geometry

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
)

// ErrDegenerate is returned when a vector used by an angle has zero length.
var ErrDegenerate = errors.New("degenerate angle: coincident points")

// Point is a 2D or 3D landmark. Z is ignored by the planar functions.
type Point struct {
	X, Y, Z float64
	Score   float64
}

// Vector returns the point as an r3 vector.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// Reference is the fixed axis a bearing is measured against.
type Reference string

const (
	// None marks a three-point angle.
	None Reference = ""
	// Horizontal measures against the image x axis, counter-clockwise positive.
	Horizontal Reference = "horizontal"
	// Vertical measures against the image y axis (pointing down).
	Vertical Reference = "vertical"
)

// Valid reports whether r is a known reference.
func (r Reference) Valid() bool {
	switch r {
	case None, Horizontal, Vertical:
		return true
	}
	return false
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// Angle2D returns the included angle ABC in the image plane using the law of cosines.
func Angle2D(a, b, c Point) (float64, error) {
	ab := math.Hypot(b.X-a.X, b.Y-a.Y)
	bc := math.Hypot(b.X-c.X, b.Y-c.Y)
	ac := math.Hypot(c.X-a.X, c.Y-a.Y)
	if ab == 0 || bc == 0 {
		return 0, ErrDegenerate
	}

	cos := (bc*bc + ab*ab - ac*ac) / (2 * bc * ab)
	return Degrees(math.Acos(clampUnit(cos))), nil
}

// Angle3D returns the included angle ABC in space using the dot product of BA and BC.
func Angle3D(a, b, c Point) (float64, error) {
	ba := a.Vector().Sub(b.Vector())
	bc := c.Vector().Sub(b.Vector())

	norms := ba.Norm() * bc.Norm()
	if norms == 0 {
		return 0, ErrDegenerate
	}

	return Degrees(math.Acos(clampUnit(ba.Dot(bc) / norms))), nil
}

// Bearing returns the absolute angle of the vector a->b against ref.
// Horizontal bearings are sign-flipped so that pointing up the image is positive.
func Bearing(a, b Point, ref Reference) (float64, error) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return 0, ErrDegenerate
	}

	switch ref {
	case Horizontal:
		return -Degrees(math.Atan2(dy, dx)), nil
	case Vertical:
		return Degrees(math.Atan2(dx, dy)), nil
	default:
		return 0, errors.New("bearing needs a horizontal or vertical reference")
	}
}

// clampUnit keeps rounding noise from pushing a cosine outside acos's domain.
func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
