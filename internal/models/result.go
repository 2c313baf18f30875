package models

// Result holds the outcome of a single registration run.
type Result struct {
	// Parameters is the final parameter vector in the transformation
	// space the run optimized over.
	Parameters []float64

	// MetricValue is the image-to-image metric value at Parameters.
	MetricValue float64

	// Iterations is the number of optimizer iterations performed.
	Iterations int

	// Converged reports whether the run stopped because the gradient
	// norm fell below the configured tolerance, as opposed to hitting
	// the iteration cap.
	Converged bool

	// GeneratedBy names the optimizer that produced this result, e.g.
	// "gradientdescent" or "lbfgs".
	GeneratedBy string
}

// QualityReport collects similarity statistics between a fixed image and
// the warped moving image after registration. All metrics assume both
// images are sampled on the same grid.
type QualityReport struct {
	// RMSE is the root mean square intensity error. Lower is better.
	RMSE float64

	// SSIM is the structural similarity index over the whole image pair,
	// in [-1, 1] with 1 meaning identical structure.
	SSIM float64

	// MutualInformation is a Gaussian approximation of the mutual
	// information between the two intensity distributions. Higher values
	// indicate stronger statistical dependency.
	MutualInformation float64

	// EntropyDiff is the absolute difference of the Shannon entropies of
	// the two intensity histograms. Lower is better.
	EntropyDiff float64

	// EdgeCorrelation is the Pearson correlation between the gradient
	// magnitude maps of the two images, in [-1, 1].
	EdgeCorrelation float64

	// Accuracy combines the other metrics into a single score in percent.
	Accuracy float64
}
