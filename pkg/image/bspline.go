package image

import "math"

// Cubic B-spline interpolation does not reproduce the samples unless the
// data is first passed through the inverse of the spline's sampling
// operator. The recursive filter below is the classic two-pass
// causal/anticausal implementation with a single pole at sqrt(3)-2.
const bspline3Pole = -0.26794919243112270647 // sqrt(3) - 2

// prefilterBSpline3 converts image samples to cubic B-spline coefficients,
// filtering every grid line along every axis. The input is not modified.
func prefilterBSpline3(samples []float64, size, strides []int) []float64 {
	coeffs := make([]float64, len(samples))
	copy(coeffs, samples)

	line := make([]float64, maxInt(size))
	for d := range size {
		n := size[d]
		if n < 2 {
			continue
		}
		stride := strides[d]
		for start := 0; start < len(coeffs); start++ {
			if (start/stride)%n != 0 {
				continue // not the first point of a line along axis d
			}
			buf := line[:n]
			for i := 0; i < n; i++ {
				buf[i] = coeffs[start+i*stride]
			}
			filterSplineLine(buf)
			for i := 0; i < n; i++ {
				coeffs[start+i*stride] = buf[i]
			}
		}
	}
	return coeffs
}

// filterSplineLine converts one line of samples to spline coefficients in
// place.
func filterSplineLine(c []float64) {
	n := len(c)
	gain := (1 - bspline3Pole) * (1 - 1/bspline3Pole)
	for i := range c {
		c[i] *= gain
	}

	c[0] = causalInit(c, bspline3Pole)
	for i := 1; i < n; i++ {
		c[i] += bspline3Pole * c[i-1]
	}

	c[n-1] = anticausalInit(c, bspline3Pole)
	for i := n - 2; i >= 0; i-- {
		c[i] = bspline3Pole * (c[i+1] - c[i])
	}
}

// causalInit computes the starting value of the causal pass under mirror
// boundary conditions. Long lines use a truncated geometric series; short
// lines need the exact mirrored sum or the boundary error stays visible at
// the grid points.
func causalInit(c []float64, z float64) float64 {
	n := len(c)
	horizon := int(math.Ceil(math.Log(1e-12) / math.Log(math.Abs(z))))
	if horizon < n {
		sum := c[0]
		zn := z
		for i := 1; i < horizon; i++ {
			sum += zn * c[i]
			zn *= z
		}
		return sum
	}

	zn := z
	iz := 1 / z
	z2n := math.Pow(z, float64(n-1))
	sum := c[0] + z2n*c[n-1]
	z2n *= z2n * iz
	for i := 1; i <= n-2; i++ {
		sum += (zn + z2n) * c[i]
		zn *= z
		z2n *= iz
	}
	return sum / (1 - zn*zn)
}

// anticausalInit computes the starting value of the anticausal pass.
func anticausalInit(c []float64, z float64) float64 {
	n := len(c)
	return (z / (z*z - 1)) * (z*c[n-2] + c[n-1])
}

// mirrorIndex reflects an out-of-range sample index back into [0, n-1]
// using whole-sample symmetry, matching the boundary condition of the
// prefilter.
func mirrorIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i = i % period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

func maxInt(xs []int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
