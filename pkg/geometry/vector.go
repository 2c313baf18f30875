package geometry

import "math"

// Vector is an n-dimensional displacement. Like Point it is value-like:
// operations allocate their result and never modify the receiver.
type Vector []float64

// Vec builds a vector from the given components.
func Vec(comps ...float64) Vector {
	v := make(Vector, len(comps))
	copy(v, comps)
	return v
}

// ZeroVector returns the zero vector of the given dimension.
func ZeroVector(dim int) Vector {
	return make(Vector, dim)
}

// Dim returns the number of components.
func (v Vector) Dim() int {
	return len(v)
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Add returns the componentwise sum v + w. It panics with
// ErrDimensionMismatch if the dimensions differ.
func (v Vector) Add(w Vector) Vector {
	if len(v) != len(w) {
		panic(ErrDimensionMismatch)
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] + w[i]
	}
	return out
}

// Sub returns the componentwise difference v - w. It panics with
// ErrDimensionMismatch if the dimensions differ.
func (v Vector) Sub(w Vector) Vector {
	if len(v) != len(w) {
		panic(ErrDimensionMismatch)
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] - w[i]
	}
	return out
}

// Scale returns v multiplied by the scalar c.
func (v Vector) Scale(c float64) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = c * v[i]
	}
	return out
}

// Dot returns the inner product of v and w. It panics with
// ErrDimensionMismatch if the dimensions differ.
func (v Vector) Dot(w Vector) float64 {
	if len(v) != len(w) {
		panic(ErrDimensionMismatch)
	}
	sum := 0.0
	for i := range v {
		sum += v[i] * w[i]
	}
	return sum
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// ToPoint reinterprets v as the point at displacement v from the origin.
func (v Vector) ToPoint() Point {
	p := make(Point, len(v))
	copy(p, v)
	return p
}

// EqualWithin reports whether v and w have the same dimension and every
// component pair differs by at most tol.
func (v Vector) EqualWithin(w Vector, tol float64) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if math.Abs(v[i]-w[i]) > tol {
			return false
		}
	}
	return true
}
