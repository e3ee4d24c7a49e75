// Package geometry provides the 2-D joint measurements used to track arm extension.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point2D is a landmark position in normalized image coordinates (0..1).
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec returns p as a gonum vector.
func (p Point2D) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Angle returns the angle in degrees at vertex b formed by the rays b->a and b->c.
// The result is always in [0, 180]. If a or c coincides with b the angle is
// undefined and 0 is returned.
func Angle(a, b, c Point2D) float64 {
	if a == b || c == b {
		return 0
	}

	ba := r2.Sub(a.Vec(), b.Vec())
	bc := r2.Sub(c.Vec(), b.Vec())

	radians := math.Atan2(bc.Y, bc.X) - math.Atan2(ba.Y, ba.X)
	angle := math.Abs(radians * 180.0 / math.Pi)

	if angle > 180.0 {
		angle = 360.0 - angle
	}

	return angle
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point2D) float64 {
	return r2.Norm(r2.Sub(a.Vec(), b.Vec()))
}
