package sampler

import (
	"fmt"

	"mrireg/pkg/domain"
	"mrireg/pkg/geometry"
)

// UniformGrid samples a regular lattice spanning a box, endpoints
// included. It is deterministic: every call to Sample returns the same
// points.
type UniformGrid struct {
	box    *domain.Box
	counts []int
	total  int
	weight float64
}

// NewUniformGrid builds a lattice sampler over box with the given number
// of points per axis. Every count must be at least one and the box must
// not be empty.
func NewUniformGrid(box *domain.Box, pointsPerAxis []int) (*UniformGrid, error) {
	if len(pointsPerAxis) != box.Dim() {
		return nil, fmt.Errorf("sampler: %d axis counts for a %dD box: %w",
			len(pointsPerAxis), box.Dim(), geometry.ErrDimensionMismatch)
	}
	if box.IsEmpty() {
		return nil, fmt.Errorf("sampler: cannot sample an empty box")
	}
	total := 1
	for d, k := range pointsPerAxis {
		if k < 1 {
			return nil, fmt.Errorf("sampler: pointsPerAxis[%d] = %d, must be at least 1", d, k)
		}
		total *= k
	}
	s := &UniformGrid{
		box:    box,
		counts: append([]int(nil), pointsPerAxis...),
		total:  total,
	}
	s.weight = densityOver(box, total)
	return s, nil
}

func (s *UniformGrid) NumberOfPoints() int           { return s.total }
func (s *UniformGrid) VolumeOfSampleRegion() float64 { return s.box.Volume() }

func (s *UniformGrid) Sample() []PointWithWeight {
	dim := s.box.Dim()
	min := s.box.Min()
	max := s.box.Max()

	pts := make([]PointWithWeight, s.total)
	idx := make([]int, dim)
	for i := 0; i < s.total; i++ {
		p := make(geometry.Point, dim)
		for d := 0; d < dim; d++ {
			if s.counts[d] == 1 {
				p[d] = 0.5 * (min[d] + max[d])
			} else {
				step := (max[d] - min[d]) / float64(s.counts[d]-1)
				p[d] = min[d] + float64(idx[d])*step
			}
		}
		pts[i] = PointWithWeight{Point: p, Weight: s.weight}

		for d := 0; d < dim; d++ {
			idx[d]++
			if idx[d] < s.counts[d] {
				break
			}
			idx[d] = 0
		}
	}
	return pts
}

// GridPoints samples exactly the lattice of a grid domain, in linear-index
// order. It is deterministic.
type GridPoints struct {
	grid   *domain.Grid
	weight float64
}

// NewGridPoints builds a sampler over every point of grid. The reported
// region is the grid's continuous support (its image box), which is never
// degenerate.
func NewGridPoints(grid *domain.Grid) *GridPoints {
	return &GridPoints{
		grid:   grid,
		weight: 1 / grid.ImageBox().Volume(),
	}
}

func (s *GridPoints) NumberOfPoints() int           { return s.grid.PointCount() }
func (s *GridPoints) VolumeOfSampleRegion() float64 { return s.grid.ImageBox().Volume() }

func (s *GridPoints) Sample() []PointWithWeight {
	pts := make([]PointWithWeight, s.grid.PointCount())
	for lin := range pts {
		pts[lin] = PointWithWeight{Point: s.grid.PointAtLinear(lin), Weight: s.weight}
	}
	return pts
}

// densityOver returns the uniform sampling density over a box, falling
// back to 1/n when the box has zero measure.
func densityOver(box *domain.Box, n int) float64 {
	if v := box.Volume(); v > 0 {
		return 1 / v
	}
	return 1 / float64(n)
}
