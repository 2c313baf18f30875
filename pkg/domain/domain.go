// Package domain describes where fields and images are defined. A domain is
// a pure predicate over points; grid domains additionally enumerate a finite
// set of regularly spaced points and map them to and from linear indices.
package domain

import (
	"errors"

	"mrireg/pkg/geometry"
)

// ErrUndefinedAt signals that a field was evaluated at a point outside its
// domain. Callers that walk arbitrary points are expected to guard with
// IsDefinedAt first; evaluation code treats the error as a signal, not a
// crash.
var ErrUndefinedAt = errors.New("domain: undefined at point")

// Domain is a spatial predicate. Implementations are immutable after
// construction and safe for concurrent use.
type Domain interface {
	// Dim returns the dimensionality of the space the domain lives in.
	Dim() int
	// IsDefinedAt reports whether p belongs to the domain. A point of the
	// wrong dimension is never inside.
	IsDefinedAt(p geometry.Point) bool
}

// Full is the domain containing every point of a given dimension.
type Full struct {
	dim int
}

// NewFull returns the all-of-space domain of the given dimension.
func NewFull(dim int) *Full {
	return &Full{dim: dim}
}

func (f *Full) Dim() int { return f.dim }

func (f *Full) IsDefinedAt(p geometry.Point) bool {
	return p.Dim() == f.dim
}

// Empty is the domain containing no points.
type Empty struct {
	dim int
}

// NewEmpty returns the empty domain of the given dimension.
func NewEmpty(dim int) *Empty {
	return &Empty{dim: dim}
}

func (e *Empty) Dim() int { return e.dim }

func (e *Empty) IsDefinedAt(p geometry.Point) bool {
	return false
}

// Intersect returns the domain defined exactly where both a and b are.
// When both operands are boxes the result collapses to a box; otherwise a
// lazy conjunction of the two predicates is returned. It panics with
// geometry.ErrDimensionMismatch if the operands live in different spaces.
func Intersect(a, b Domain) Domain {
	if a.Dim() != b.Dim() {
		panic(geometry.ErrDimensionMismatch)
	}
	ab, aok := a.(*Box)
	bb, bok := b.(*Box)
	if aok && bok {
		return ab.Intersect(bb)
	}
	return &intersection{a: a, b: b}
}

// intersection is the conjunction of two arbitrary domains.
type intersection struct {
	a, b Domain
}

func (d *intersection) Dim() int { return d.a.Dim() }

func (d *intersection) IsDefinedAt(p geometry.Point) bool {
	return d.a.IsDefinedAt(p) && d.b.IsDefinedAt(p)
}
