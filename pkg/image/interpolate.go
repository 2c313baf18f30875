package image

import (
	"fmt"
	"math"

	"mrireg/pkg/domain"
	"mrireg/pkg/field"
	"mrireg/pkg/geometry"
)

// Interpolate lifts a discrete image to a continuous differentiable field.
// The field is defined on the grid's image box, which extends one spacing
// beyond the last sample on each axis; coordinates in that margin are
// extrapolated from the boundary samples. For BSpline3 the samples are
// prefiltered here, once.
func Interpolate(img *DiscreteImage, k Kernel) (field.Differentiable, error) {
	ip := &interpolant{
		kernel:  k,
		size:    img.grid.Size(),
		strides: img.grid.Strides(),
		origin:  img.grid.Origin(),
		spacing: img.grid.Spacing(),
		dom:     img.grid.ImageBox(),
	}
	switch k {
	case Nearest, Linear:
		ip.coeffs = img.samples
	case BSpline3:
		ip.coeffs = prefilterBSpline3(img.samples, ip.size, ip.strides)
	default:
		return nil, fmt.Errorf("image: unknown interpolation kernel %d", int(k))
	}
	return ip, nil
}

// interpolant is the continuous view of a discrete image. It is immutable
// and safe for concurrent evaluation.
type interpolant struct {
	kernel  Kernel
	coeffs  []float64
	size    []int
	strides []int
	origin  geometry.Point
	spacing geometry.Vector
	dom     *domain.Box
}

func (ip *interpolant) Domain() domain.Domain { return ip.dom }

func (ip *interpolant) Value(p geometry.Point) (float64, error) {
	if !ip.dom.IsDefinedAt(p) {
		return 0, fmt.Errorf("image: value at %v: %w", p, domain.ErrUndefinedAt)
	}
	switch ip.kernel {
	case Nearest:
		return ip.coeffs[ip.nearestLinearIndex(p)], nil
	case Linear:
		return ip.valueLinear(p), nil
	default:
		return ip.valueBSpline(p), nil
	}
}

func (ip *interpolant) Gradient(p geometry.Point) (geometry.Vector, error) {
	if !ip.dom.IsDefinedAt(p) {
		return nil, fmt.Errorf("image: gradient at %v: %w", p, domain.ErrUndefinedAt)
	}
	switch ip.kernel {
	case Nearest:
		// Piecewise constant.
		return geometry.ZeroVector(len(ip.size)), nil
	case Linear:
		return ip.gradientLinear(p), nil
	default:
		return ip.gradientBSpline(p), nil
	}
}

// normalized returns the grid-relative coordinate along axis d.
func (ip *interpolant) normalized(p geometry.Point, d int) float64 {
	return (p[d] - ip.origin[d]) / ip.spacing[d]
}

func (ip *interpolant) nearestLinearIndex(p geometry.Point) int {
	lin := 0
	for d := range ip.size {
		k := int(math.Round(ip.normalized(p, d)))
		if k < 0 {
			k = 0
		}
		if k > ip.size[d]-1 {
			k = ip.size[d] - 1
		}
		lin += k * ip.strides[d]
	}
	return lin
}

// linearCell locates the interpolation cell for multilinear evaluation:
// base index and fractional offset per axis. In the extrapolation margin
// the outermost cell is reused, so the fraction may leave [0, 1].
func (ip *interpolant) linearCell(p geometry.Point, base []int, frac []float64) {
	for d := range ip.size {
		r := ip.normalized(p, d)
		c := int(math.Floor(r))
		if c > ip.size[d]-2 {
			c = ip.size[d] - 2
		}
		if c < 0 {
			c = 0
		}
		base[d] = c
		frac[d] = r - float64(c)
	}
}

func (ip *interpolant) valueLinear(p geometry.Point) float64 {
	dim := len(ip.size)
	base := make([]int, dim)
	frac := make([]float64, dim)
	ip.linearCell(p, base, frac)

	sum := 0.0
	for mask := 0; mask < 1<<dim; mask++ {
		w := 1.0
		lin := 0
		for d := 0; d < dim; d++ {
			i := base[d]
			if mask&(1<<d) != 0 {
				w *= frac[d]
				i++
				if i > ip.size[d]-1 {
					i = ip.size[d] - 1
				}
			} else {
				w *= 1 - frac[d]
			}
			lin += i * ip.strides[d]
		}
		if w != 0 {
			sum += w * ip.coeffs[lin]
		}
	}
	return sum
}

func (ip *interpolant) gradientLinear(p geometry.Point) geometry.Vector {
	dim := len(ip.size)
	base := make([]int, dim)
	frac := make([]float64, dim)
	ip.linearCell(p, base, frac)

	weights := make([]float64, dim)
	grad := make(geometry.Vector, dim)
	for mask := 0; mask < 1<<dim; mask++ {
		lin := 0
		for d := 0; d < dim; d++ {
			i := base[d]
			if mask&(1<<d) != 0 {
				weights[d] = frac[d]
				i++
				if i > ip.size[d]-1 {
					i = ip.size[d] - 1
				}
			} else {
				weights[d] = 1 - frac[d]
			}
			lin += i * ip.strides[d]
		}
		v := ip.coeffs[lin]
		for d := 0; d < dim; d++ {
			prod := 1.0
			for e := 0; e < dim; e++ {
				if e != d {
					prod *= weights[e]
				}
			}
			sign := -1.0
			if mask&(1<<d) != 0 {
				sign = 1.0
			}
			grad[d] += sign * prod * v / ip.spacing[d]
		}
	}
	return grad
}

// splineSupport locates the four samples supporting the cubic spline along
// each axis and their basis weights (or derivative weights on the axis
// being differentiated).
func (ip *interpolant) splineSupport(p geometry.Point, deriv int) (taps [][4]int, weights [][4]float64) {
	dim := len(ip.size)
	taps = make([][4]int, dim)
	weights = make([][4]float64, dim)
	for d := 0; d < dim; d++ {
		r := ip.normalized(p, d)
		base := int(math.Floor(r))
		for j := 0; j < 4; j++ {
			tap := base - 1 + j
			x := r - float64(tap)
			if d == deriv {
				weights[d][j] = bspline3Deriv(x) / ip.spacing[d]
			} else {
				weights[d][j] = bspline3(x)
			}
			taps[d][j] = mirrorIndex(tap, ip.size[d])
		}
	}
	return taps, weights
}

func (ip *interpolant) valueBSpline(p geometry.Point) float64 {
	dim := len(ip.size)
	taps, weights := ip.splineSupport(p, -1)

	sum := 0.0
	total := 1
	for i := 0; i < dim; i++ {
		total *= 4
	}
	for m := 0; m < total; m++ {
		w := 1.0
		lin := 0
		rem := m
		for d := 0; d < dim; d++ {
			j := rem % 4
			rem /= 4
			w *= weights[d][j]
			lin += taps[d][j] * ip.strides[d]
		}
		if w != 0 {
			sum += w * ip.coeffs[lin]
		}
	}
	return sum
}

func (ip *interpolant) gradientBSpline(p geometry.Point) geometry.Vector {
	dim := len(ip.size)
	grad := make(geometry.Vector, dim)
	for d := 0; d < dim; d++ {
		taps, weights := ip.splineSupport(p, d)
		sum := 0.0
		total := 1
		for i := 0; i < dim; i++ {
			total *= 4
		}
		for m := 0; m < total; m++ {
			w := 1.0
			lin := 0
			rem := m
			for e := 0; e < dim; e++ {
				j := rem % 4
				rem /= 4
				w *= weights[e][j]
				lin += taps[e][j] * ip.strides[e]
			}
			if w != 0 {
				sum += w * ip.coeffs[lin]
			}
		}
		grad[d] = sum
	}
	return grad
}

var _ field.Differentiable = (*interpolant)(nil)
