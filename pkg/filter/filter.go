// Package filter provides separable image filters and the resolution
// pyramid used by coarse-to-fine registration.
package filter

import (
	"fmt"
	"math"

	"mrireg/pkg/domain"
	"mrireg/pkg/image"
)

// GaussianSmooth convolves the image with a separable Gaussian of the
// given standard deviation in physical units. Edges are handled by
// clamping. A zero sigma returns the image unchanged.
func GaussianSmooth(img *image.DiscreteImage, sigma float64) (*image.DiscreteImage, error) {
	if sigma < 0 {
		return nil, fmt.Errorf("filter: negative sigma %v", sigma)
	}
	if sigma == 0 {
		return img, nil
	}

	grid := img.Grid()
	size := grid.Size()
	strides := grid.Strides()
	spacing := grid.Spacing()

	src := append([]float64(nil), img.Samples()...)
	dst := make([]float64, len(src))
	for d := range size {
		kernel := gaussianKernel(sigma / spacing[d])
		radius := (len(kernel) - 1) / 2
		n := size[d]
		stride := strides[d]

		for lin := range src {
			pos := (lin / stride) % n
			sum := 0.0
			for k, w := range kernel {
				q := pos + k - radius
				if q < 0 {
					q = 0
				}
				if q > n-1 {
					q = n - 1
				}
				sum += w * src[lin+(q-pos)*stride]
			}
			dst[lin] = sum
		}
		src, dst = dst, src
	}
	return image.New(grid, src)
}

// gaussianKernel builds a normalized sampled Gaussian with radius 3 sigma,
// in units of grid samples.
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// Downsample keeps every factor-th sample along each axis, widening the
// spacing accordingly. The caller is expected to smooth first.
func Downsample(img *image.DiscreteImage, factor int) (*image.DiscreteImage, error) {
	if factor < 1 {
		return nil, fmt.Errorf("filter: downsample factor %d, must be at least 1", factor)
	}
	if factor == 1 {
		return img, nil
	}

	grid := img.Grid()
	size := grid.Size()
	spacing := grid.Spacing()

	newSize := make([]int, len(size))
	for d := range size {
		newSize[d] = (size[d] + factor - 1) / factor
		spacing[d] *= float64(factor)
	}
	newGrid, err := domain.NewGrid(grid.Origin(), spacing, newSize)
	if err != nil {
		return nil, err
	}

	samples := make([]float64, newGrid.PointCount())
	for lin := range samples {
		idx := newGrid.LinearToIndex(lin)
		for d := range idx {
			idx[d] *= factor
		}
		samples[lin] = img.AtIndex(idx)
	}
	return image.New(newGrid, samples)
}

// Pyramid builds a coarse-to-fine resolution pyramid with the given number
// of levels. Element 0 is the coarsest level; the last element is the
// original image. Each coarser level is smoothed with sigma (scaled to the
// level's spacing) and downsampled by two.
func Pyramid(img *image.DiscreteImage, levels int, sigma float64) ([]*image.DiscreteImage, error) {
	if levels < 1 {
		return nil, fmt.Errorf("filter: pyramid needs at least one level, got %d", levels)
	}

	out := make([]*image.DiscreteImage, levels)
	out[levels-1] = img
	current := img
	for l := levels - 2; l >= 0; l-- {
		minSpacing := current.Grid().Spacing()[0]
		for _, s := range current.Grid().Spacing() {
			if s < minSpacing {
				minSpacing = s
			}
		}
		smoothed, err := GaussianSmooth(current, sigma*minSpacing)
		if err != nil {
			return nil, err
		}
		coarse, err := Downsample(smoothed, 2)
		if err != nil {
			return nil, err
		}
		out[l] = coarse
		current = coarse
	}
	return out, nil
}
