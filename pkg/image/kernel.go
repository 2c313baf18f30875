package image

import "fmt"

// Kernel selects the interpolation scheme used to lift a discrete image to
// a continuous field.
type Kernel int

const (
	// Nearest snaps to the closest grid point. Piecewise constant, zero
	// gradient.
	Nearest Kernel = iota
	// Linear interpolates multilinearly between the surrounding grid
	// points.
	Linear
	// BSpline3 interpolates with cubic B-splines. The image samples are
	// prefiltered once at construction so that the interpolant reproduces
	// them exactly at the grid points.
	BSpline3
)

// String returns the kernel name used in configuration files.
func (k Kernel) String() string {
	switch k {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	case BSpline3:
		return "bspline"
	default:
		return fmt.Sprintf("kernel(%d)", int(k))
	}
}

// ParseKernel converts a configuration name to a Kernel.
func ParseKernel(name string) (Kernel, error) {
	switch name {
	case "nearest":
		return Nearest, nil
	case "linear":
		return Linear, nil
	case "bspline", "bspline3", "cubic":
		return BSpline3, nil
	default:
		return 0, fmt.Errorf("image: unknown interpolation kernel %q", name)
	}
}

// bspline3 evaluates the cubic B-spline basis function at x.
func bspline3(x float64) float64 {
	if x < 0 {
		x = -x
	}
	switch {
	case x < 1:
		return 2.0/3.0 - x*x + 0.5*x*x*x
	case x < 2:
		d := 2 - x
		return d * d * d / 6.0
	default:
		return 0
	}
}

// bspline3Deriv evaluates the derivative of the cubic B-spline basis
// function at x.
func bspline3Deriv(x float64) float64 {
	neg := x < 0
	if neg {
		x = -x
	}
	var d float64
	switch {
	case x < 1:
		d = 1.5*x*x - 2*x
	case x < 2:
		e := 2 - x
		d = -0.5 * e * e
	default:
		return 0
	}
	if neg {
		return -d
	}
	return d
}
