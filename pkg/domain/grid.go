package domain

import (
	"fmt"
	"math"

	"mrireg/pkg/geometry"
)

// snapTol is the relative tolerance, in units of one grid spacing, within
// which a continuous coordinate is considered to lie on a grid point.
const snapTol = 1e-9

// Grid is a finite regular lattice of points described by an origin, a
// per-axis spacing and a per-axis point count. Grid points are enumerated by
// a linear index in which the first axis varies fastest:
//
//	linear = i0 + i1*s0 + i2*s0*s1 + ...
//
// The mapping is an exact bijection with the multi-dimensional index.
type Grid struct {
	origin  geometry.Point
	spacing geometry.Vector
	size    []int
	strides []int
	count   int
	bbox    *Box
	ibox    *Box
}

// NewGrid builds a grid from its origin, positive per-axis spacing and
// per-axis point counts. All three must have the same dimension and every
// count must be at least one.
func NewGrid(origin geometry.Point, spacing geometry.Vector, size []int) (*Grid, error) {
	dim := origin.Dim()
	if spacing.Dim() != dim || len(size) != dim {
		return nil, fmt.Errorf("grid: origin %dD, spacing %dD, size %dD: %w",
			dim, spacing.Dim(), len(size), geometry.ErrDimensionMismatch)
	}
	if dim == 0 {
		return nil, fmt.Errorf("grid: dimension must be at least one")
	}
	for d := 0; d < dim; d++ {
		if size[d] < 1 {
			return nil, fmt.Errorf("grid: size[%d] = %d, must be at least 1", d, size[d])
		}
		if spacing[d] <= 0 || math.IsInf(spacing[d], 0) || math.IsNaN(spacing[d]) {
			return nil, fmt.Errorf("grid: spacing[%d] = %v, must be positive and finite", d, spacing[d])
		}
	}

	g := &Grid{
		origin:  origin.Clone(),
		spacing: spacing.Clone(),
		size:    append([]int(nil), size...),
		strides: make([]int, dim),
		count:   1,
	}
	for d := 0; d < dim; d++ {
		g.strides[d] = g.count
		g.count *= size[d]
	}

	bmax := make(geometry.Point, dim)
	imax := make(geometry.Point, dim)
	for d := 0; d < dim; d++ {
		bmax[d] = g.origin[d] + g.spacing[d]*float64(size[d]-1)
		imax[d] = g.origin[d] + g.spacing[d]*float64(size[d])
	}
	g.bbox = NewBox(g.origin, bmax)
	g.ibox = NewBox(g.origin, imax)
	return g, nil
}

// MustGrid is NewGrid that panics on error, for use in tests and literals.
func MustGrid(origin geometry.Point, spacing geometry.Vector, size []int) *Grid {
	g, err := NewGrid(origin, spacing, size)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Grid) Dim() int { return len(g.size) }

// Size returns a copy of the per-axis point counts.
func (g *Grid) Size() []int { return append([]int(nil), g.size...) }

// Origin returns a copy of the position of grid point zero.
func (g *Grid) Origin() geometry.Point { return g.origin.Clone() }

// Spacing returns a copy of the per-axis step between neighbouring points.
func (g *Grid) Spacing() geometry.Vector { return g.spacing.Clone() }

// Strides returns a copy of the linear-index stride of each axis.
func (g *Grid) Strides() []int { return append([]int(nil), g.strides...) }

// PointCount returns the total number of grid points.
func (g *Grid) PointCount() int { return g.count }

// IndexToLinear converts a multi-dimensional index to its linear index.
// It panics if idx has the wrong dimension or any component is out of range.
func (g *Grid) IndexToLinear(idx []int) int {
	if len(idx) != len(g.size) {
		panic(geometry.ErrDimensionMismatch)
	}
	lin := 0
	for d, i := range idx {
		if i < 0 || i >= g.size[d] {
			panic(fmt.Sprintf("grid: index %d out of range [0,%d) on axis %d", i, g.size[d], d))
		}
		lin += i * g.strides[d]
	}
	return lin
}

// LinearToIndex converts a linear index back to its multi-dimensional index.
// It is the exact inverse of IndexToLinear. It panics if lin is out of range.
func (g *Grid) LinearToIndex(lin int) []int {
	if lin < 0 || lin >= g.count {
		panic(fmt.Sprintf("grid: linear index %d out of range [0,%d)", lin, g.count))
	}
	idx := make([]int, len(g.size))
	for d := range g.size {
		idx[d] = (lin / g.strides[d]) % g.size[d]
	}
	return idx
}

// PointAt returns the spatial position of the grid point at idx.
func (g *Grid) PointAt(idx []int) geometry.Point {
	if len(idx) != len(g.size) {
		panic(geometry.ErrDimensionMismatch)
	}
	p := make(geometry.Point, len(g.size))
	for d, i := range idx {
		p[d] = g.origin[d] + g.spacing[d]*float64(i)
	}
	return p
}

// PointAtLinear returns the spatial position of the grid point with the
// given linear index.
func (g *Grid) PointAtLinear(lin int) geometry.Point {
	if lin < 0 || lin >= g.count {
		panic(fmt.Sprintf("grid: linear index %d out of range [0,%d)", lin, g.count))
	}
	p := make(geometry.Point, len(g.size))
	for d := range g.size {
		i := (lin / g.strides[d]) % g.size[d]
		p[d] = g.origin[d] + g.spacing[d]*float64(i)
	}
	return p
}

// IsDefinedAt reports whether p coincides with a grid point, within a
// relative snap tolerance of one part in 1e9 of the spacing on each axis.
func (g *Grid) IsDefinedAt(p geometry.Point) bool {
	if p.Dim() != len(g.size) {
		return false
	}
	for d := range g.size {
		r := (p[d] - g.origin[d]) / g.spacing[d]
		k := math.Round(r)
		if math.Abs(r-k) > snapTol {
			return false
		}
		if k < 0 || int(k) >= g.size[d] {
			return false
		}
	}
	return true
}

// ClosestIndex returns the multi-dimensional index of the grid point nearest
// to p, clamped to the grid. It panics with geometry.ErrDimensionMismatch if
// p has the wrong dimension.
func (g *Grid) ClosestIndex(p geometry.Point) []int {
	if p.Dim() != len(g.size) {
		panic(geometry.ErrDimensionMismatch)
	}
	idx := make([]int, len(g.size))
	for d := range g.size {
		k := int(math.Round((p[d] - g.origin[d]) / g.spacing[d]))
		if k < 0 {
			k = 0
		}
		if k > g.size[d]-1 {
			k = g.size[d] - 1
		}
		idx[d] = k
	}
	return idx
}

// BoundingBox returns the closed hull of the grid points themselves,
// [origin, origin + spacing*(size-1)].
func (g *Grid) BoundingBox() *Box { return g.bbox }

// ImageBox returns the closed region on which continuous interpolants of
// data sampled on this grid are defined, [origin, origin + spacing*size].
// It extends one spacing beyond the last grid point on each axis.
func (g *Grid) ImageBox() *Box { return g.ibox }
