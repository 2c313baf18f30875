// Package alignment estimates the integer translation between two images
// by phase correlation, providing the starting point for gradient-based
// registration.
package alignment

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/stat"

	"mrireg/pkg/geometry"
	"mrireg/pkg/image"
)

// EstimateShift computes the displacement of the moving image's content
// relative to the fixed image: moving(x) ≈ fixed(x - shift). Feeding the
// result to a translation space as initial parameters aligns the pair to
// the nearest grid step. Both images must be 2D with identical grids.
func EstimateShift(fixed, moving *image.DiscreteImage) (geometry.Vector, error) {
	if fixed.Dim() != 2 || moving.Dim() != 2 {
		return nil, fmt.Errorf("alignment: phase correlation needs 2D images, got %dD and %dD",
			fixed.Dim(), moving.Dim())
	}
	fs, ms := fixed.Grid().Size(), moving.Grid().Size()
	if fs[0] != ms[0] || fs[1] != ms[1] {
		return nil, fmt.Errorf("alignment: image sizes differ, %v vs %v: %w",
			fs, ms, geometry.ErrDimensionMismatch)
	}
	fsp, msp := fixed.Grid().Spacing(), moving.Grid().Spacing()
	if fsp[0] != msp[0] || fsp[1] != msp[1] {
		return nil, fmt.Errorf("alignment: image spacings differ, %v vs %v", fsp, msp)
	}

	w, h := fs[0], fs[1]
	pw, ph := nextPow2(w), nextPow2(h)

	fa := forwardFFT2(padCentered(fixed, w, h, pw, ph), pw, ph)
	fb := forwardFFT2(padCentered(moving, w, h, pw, ph), pw, ph)

	// Normalized cross-power spectrum: only the phase difference between
	// the two spectra survives.
	cross := make([]complex128, len(fa))
	for i := range cross {
		c := fa[i] * cmplx.Conj(fb[i])
		if m := cmplx.Abs(c); m > 1e-12 {
			cross[i] = c / complex(m, 0)
		}
	}

	corr := inverseFFT2(cross, pw, ph)

	peak := 0
	best := real(corr[0])
	for i, c := range corr {
		if r := real(c); r > best {
			best = r
			peak = i
		}
	}
	px, py := peak%pw, peak/pw

	// The correlation peak sits at minus the shift, modulo the padded
	// size.
	if px > pw/2 {
		px -= pw
	}
	if py > ph/2 {
		py -= ph
	}
	return geometry.Vec(-float64(px)*fsp[0], -float64(py)*fsp[1]), nil
}

// padCentered copies the image into a zero-padded power-of-two buffer with
// the mean removed, so the correlation is not dominated by the DC
// component or the padding edge.
func padCentered(img *image.DiscreteImage, w, h, pw, ph int) []float64 {
	mean := stat.Mean(img.Samples(), nil)
	out := make([]float64, pw*ph)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*pw+x] = img.At(y*w+x) - mean
		}
	}
	return out
}
