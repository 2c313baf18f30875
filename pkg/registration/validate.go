package registration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"mrireg/internal/models"
	"mrireg/pkg/image"
)

// Validate compares the fixed image against the warped moving image
// sampled on the same grid and reports standard similarity statistics.
// Intensities are assumed to lie in [0, 1]; callers registering raw data
// should normalize both images first.
func Validate(fixed, warped *image.DiscreteImage) (*models.QualityReport, error) {
	fs, ws := fixed.Grid().Size(), warped.Grid().Size()
	if fixed.Dim() != warped.Dim() {
		return nil, fmt.Errorf("registration: cannot compare a %dD image with a %dD image",
			fixed.Dim(), warped.Dim())
	}
	for d := range fs {
		if fs[d] != ws[d] {
			return nil, fmt.Errorf("registration: image sizes differ, %v vs %v", fs, ws)
		}
	}
	a, b := fixed.Samples(), warped.Samples()

	rep := &models.QualityReport{
		RMSE:              rmse(a, b),
		SSIM:              ssim(a, b),
		MutualInformation: mutualInformation(a, b),
		EntropyDiff:       math.Abs(entropy(a) - entropy(b)),
		EdgeCorrelation:   stat.Correlation(gradientMagnitude(fixed), gradientMagnitude(warped), nil),
	}
	if math.IsNaN(rep.EdgeCorrelation) {
		// Constant images have no edges to correlate.
		rep.EdgeCorrelation = 0
	}

	score := (1 - rep.EntropyDiff) * rep.MutualInformation * (1 - rep.RMSE) * rep.SSIM * rep.EdgeCorrelation * 100
	rep.Accuracy = math.Max(0, math.Min(100, score))
	return rep, nil
}

// rmse is the root mean square intensity difference.
func rmse(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(a)))
}

// ssim is the structural similarity index computed globally over the
// whole sample set, with the usual stabilization constants for a dynamic
// range of 1.
func ssim(a, b []float64) float64 {
	const (
		c1 = 0.01 * 0.01
		c2 = 0.03 * 0.03
	)
	muA := stat.Mean(a, nil)
	muB := stat.Mean(b, nil)
	varA := stat.Variance(a, nil)
	varB := stat.Variance(b, nil)
	cov := stat.Covariance(a, b, nil)

	num := (2*muA*muB + c1) * (2*cov + c2)
	den := (muA*muA + muB*muB + c1) * (varA + varB + c2)
	if den <= 0 {
		return 0
	}
	return num / den
}

// mutualInformation approximates the mutual information under a joint
// Gaussian model, 0.5·log(σa²σb²/det Σ). Degenerate covariances yield
// zero.
func mutualInformation(a, b []float64) float64 {
	varA := stat.Variance(a, nil)
	varB := stat.Variance(b, nil)
	cov := stat.Covariance(a, b, nil)
	if varA <= 0 || varB <= 0 {
		return 0
	}
	det := varA*varB - cov*cov
	if det <= 0 {
		return 0
	}
	return 0.5 * math.Log(varA*varB/det)
}

// entropy is the Shannon entropy of the intensity histogram over 256
// equal-width bins, in bits.
func entropy(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max <= min {
		return 0
	}

	const numBins = 256
	hist := make([]float64, numBins)
	binWidth := (max - min) / numBins
	for _, v := range data {
		bin := int((v - min) / binWidth)
		if bin >= numBins {
			bin = numBins - 1
		}
		hist[bin]++
	}

	e := 0.0
	for _, count := range hist {
		if count > 0 {
			p := count / float64(n)
			e -= p * math.Log2(p)
		}
	}
	return e
}

// gradientMagnitude returns the Euclidean norm of the central-difference
// intensity gradient at every grid point, one-sided at the boundaries.
// Axes with a single sample contribute nothing.
func gradientMagnitude(img *image.DiscreteImage) []float64 {
	grid := img.Grid()
	size := grid.Size()
	spacing := grid.Spacing()
	dim := grid.Dim()

	out := make([]float64, grid.PointCount())
	idx := make([]int, dim)
	for lin := range out {
		sum := 0.0
		for d := 0; d < dim; d++ {
			lo, hi := idx[d]-1, idx[d]+1
			if lo < 0 {
				lo = 0
			}
			if hi > size[d]-1 {
				hi = size[d] - 1
			}
			if hi == lo {
				continue
			}
			i := idx[d]
			idx[d] = hi
			vHi := img.AtIndex(idx)
			idx[d] = lo
			vLo := img.AtIndex(idx)
			idx[d] = i
			g := (vHi - vLo) / (float64(hi-lo) * spacing[d])
			sum += g * g
		}
		out[lin] = math.Sqrt(sum)

		for d := 0; d < dim; d++ {
			idx[d]++
			if idx[d] < size[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out
}
