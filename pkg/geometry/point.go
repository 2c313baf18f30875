// Package geometry provides the small spatial types shared by every other
// package: n-dimensional points and vectors backed by float64 slices.
package geometry

import (
	"errors"
	"math"
)

// ErrDimensionMismatch signals that values of incompatible dimension were
// combined, such as a 2D point translated by a 3D vector or a parameter
// vector of the wrong length. It indicates caller misuse and is never
// recovered from internally.
var ErrDimensionMismatch = errors.New("geometry: dimension mismatch")

// Point is an n-dimensional spatial coordinate. Operations return fresh
// copies; a Point is never mutated after construction, which makes it safe
// to share across goroutines.
type Point []float64

// Pt builds a point from the given coordinates.
func Pt(coords ...float64) Point {
	p := make(Point, len(coords))
	copy(p, coords)
	return p
}

// Dim returns the number of coordinates.
func (p Point) Dim() int {
	return len(p)
}

// Clone returns an independent copy of p.
func (p Point) Clone() Point {
	c := make(Point, len(p))
	copy(c, p)
	return c
}

// Add returns p translated by v. It panics with ErrDimensionMismatch if the
// dimensions differ.
func (p Point) Add(v Vector) Point {
	if len(p) != len(v) {
		panic(ErrDimensionMismatch)
	}
	out := make(Point, len(p))
	for i := range p {
		out[i] = p[i] + v[i]
	}
	return out
}

// Sub returns the displacement vector from q to p, so that q.Add(p.Sub(q))
// equals p. It panics with ErrDimensionMismatch if the dimensions differ.
func (p Point) Sub(q Point) Vector {
	if len(p) != len(q) {
		panic(ErrDimensionMismatch)
	}
	out := make(Vector, len(p))
	for i := range p {
		out[i] = p[i] - q[i]
	}
	return out
}

// ToVector reinterprets p as the position vector from the origin.
func (p Point) ToVector() Vector {
	v := make(Vector, len(p))
	copy(v, p)
	return v
}

// Equal reports whether p and q have the same dimension and exactly equal
// coordinates.
func (p Point) Equal(q Point) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// EqualWithin reports whether p and q have the same dimension and every
// coordinate pair differs by at most tol.
func (p Point) EqualWithin(q Point, tol float64) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if math.Abs(p[i]-q[i]) > tol {
			return false
		}
	}
	return true
}
