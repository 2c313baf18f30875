package domain

import (
	"math"

	"mrireg/pkg/geometry"
)

// Box is an axis-aligned box domain, closed on every face: a point lying
// exactly on a boundary is inside. A box whose min exceeds its max along any
// axis is empty.
type Box struct {
	min, max geometry.Point
}

// NewBox returns the closed box spanning [min, max]. It panics with
// geometry.ErrDimensionMismatch if the corners have different dimensions.
func NewBox(min, max geometry.Point) *Box {
	if min.Dim() != max.Dim() {
		panic(geometry.ErrDimensionMismatch)
	}
	return &Box{min: min.Clone(), max: max.Clone()}
}

func (b *Box) Dim() int { return len(b.min) }

// Min returns a copy of the lower corner.
func (b *Box) Min() geometry.Point { return b.min.Clone() }

// Max returns a copy of the upper corner.
func (b *Box) Max() geometry.Point { return b.max.Clone() }

func (b *Box) IsDefinedAt(p geometry.Point) bool {
	if p.Dim() != len(b.min) {
		return false
	}
	for d := range b.min {
		if p[d] < b.min[d] || p[d] > b.max[d] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the box contains no points.
func (b *Box) IsEmpty() bool {
	for d := range b.min {
		if b.min[d] > b.max[d] {
			return true
		}
	}
	return false
}

// Extent returns the edge lengths of the box, zero for an empty box.
func (b *Box) Extent() geometry.Vector {
	ext := make(geometry.Vector, len(b.min))
	for d := range b.min {
		ext[d] = math.Max(0, b.max[d]-b.min[d])
	}
	return ext
}

// Volume returns the product of the edge lengths.
func (b *Box) Volume() float64 {
	v := 1.0
	for _, e := range b.Extent() {
		v *= e
	}
	return v
}

// Center returns the midpoint of the box.
func (b *Box) Center() geometry.Point {
	c := make(geometry.Point, len(b.min))
	for d := range b.min {
		c[d] = 0.5 * (b.min[d] + b.max[d])
	}
	return c
}

// Intersect returns the box covering exactly the overlap of b and other.
// The result may be empty. It panics with geometry.ErrDimensionMismatch if
// the boxes have different dimensions.
func (b *Box) Intersect(other *Box) *Box {
	if b.Dim() != other.Dim() {
		panic(geometry.ErrDimensionMismatch)
	}
	min := make(geometry.Point, len(b.min))
	max := make(geometry.Point, len(b.max))
	for d := range b.min {
		min[d] = math.Max(b.min[d], other.min[d])
		max[d] = math.Min(b.max[d], other.max[d])
	}
	return &Box{min: min, max: max}
}

// Contains reports whether every point of other lies inside b. An empty
// other is contained in anything.
func (b *Box) Contains(other *Box) bool {
	if b.Dim() != other.Dim() {
		return false
	}
	if other.IsEmpty() {
		return true
	}
	for d := range b.min {
		if other.min[d] < b.min[d] || other.max[d] > b.max[d] {
			return false
		}
	}
	return true
}
