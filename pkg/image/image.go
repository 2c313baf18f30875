// Package image provides discrete scalar images on regular grids and the
// interpolation schemes that lift them to continuous, differentiable
// fields.
package image

import (
	"fmt"
	"math"

	"mrireg/pkg/domain"
	"mrireg/pkg/field"
	"mrireg/pkg/geometry"
)

// DiscreteImage is a scalar image sampled on a regular grid. The sample
// slice is indexed by the grid's linear index and always holds exactly
// grid.PointCount() values. Images are immutable once built.
type DiscreteImage struct {
	grid    *domain.Grid
	samples []float64
}

// New builds an image from a grid and its samples. The slice is copied.
// The sample count must equal the grid's point count.
func New(grid *domain.Grid, samples []float64) (*DiscreteImage, error) {
	if len(samples) != grid.PointCount() {
		return nil, fmt.Errorf("image: %d samples for a grid of %d points", len(samples), grid.PointCount())
	}
	data := make([]float64, len(samples))
	copy(data, samples)
	return &DiscreteImage{grid: grid, samples: data}, nil
}

// FromFunc samples f at every grid point.
func FromFunc(grid *domain.Grid, f func(geometry.Point) float64) *DiscreteImage {
	data := make([]float64, grid.PointCount())
	for lin := range data {
		data[lin] = f(grid.PointAtLinear(lin))
	}
	return &DiscreteImage{grid: grid, samples: data}
}

// Grid returns the sampling grid.
func (img *DiscreteImage) Grid() *domain.Grid { return img.grid }

// Dim returns the image dimensionality.
func (img *DiscreteImage) Dim() int { return img.grid.Dim() }

// Samples returns the raw sample slice in linear-index order. The slice is
// owned by the image and must not be modified.
func (img *DiscreteImage) Samples() []float64 { return img.samples }

// At returns the sample at the given linear index.
func (img *DiscreteImage) At(lin int) float64 { return img.samples[lin] }

// AtIndex returns the sample at the given multi-dimensional index.
func (img *DiscreteImage) AtIndex(idx []int) float64 {
	return img.samples[img.grid.IndexToLinear(idx)]
}

// MinMax returns the smallest and largest sample value.
func (img *DiscreteImage) MinMax() (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range img.samples {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Map returns a new image with f applied to every sample.
func (img *DiscreteImage) Map(f func(float64) float64) *DiscreteImage {
	data := make([]float64, len(img.samples))
	for i, v := range img.samples {
		data[i] = f(v)
	}
	return &DiscreteImage{grid: img.grid, samples: data}
}

// Normalize returns the image rescaled linearly to [0, 1]. A constant image
// maps to all zeros.
func (img *DiscreteImage) Normalize() *DiscreteImage {
	min, max := img.MinMax()
	span := max - min
	if span == 0 {
		return img.Map(func(float64) float64 { return 0 })
	}
	return img.Map(func(v float64) float64 { return (v - min) / span })
}

// Resample evaluates a continuous field at every point of grid, producing a
// discrete image. Points where the field is undefined receive fill.
func Resample(f field.Field, grid *domain.Grid, fill float64) *DiscreteImage {
	data := make([]float64, grid.PointCount())
	for lin := range data {
		p := grid.PointAtLinear(lin)
		v, err := f.Value(p)
		if err != nil {
			v = fill
		}
		data[lin] = v
	}
	return &DiscreteImage{grid: grid, samples: data}
}
