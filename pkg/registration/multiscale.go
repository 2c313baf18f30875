package registration

import (
	"fmt"

	"mrireg/internal/models"
	"mrireg/pkg/domain"
	"mrireg/pkg/filter"
	"mrireg/pkg/geometry"
	"mrireg/pkg/image"
	"mrireg/pkg/metric"
	"mrireg/pkg/sampler"
	"mrireg/pkg/transform"
)

// MultiScaleParams configures a coarse-to-fine registration over Gaussian
// pyramids of the fixed and moving images.
type MultiScaleParams struct {
	// Fixed and Moving are the full-resolution images.
	Fixed  *image.DiscreteImage
	Moving *image.DiscreteImage

	// Space is the transformation space to optimize over. Parameters are
	// in physical units, so they carry over between pyramid levels
	// unchanged.
	Space transform.Space

	// Levels is the number of pyramid levels. One disables the pyramid.
	// Zero means three.
	Levels int

	// Sigma is the pyramid smoothing width in grid-spacing units applied
	// before each downsampling step. Zero means 0.5.
	Sigma float64

	// Kernel selects the interpolation scheme for both images.
	Kernel image.Kernel

	// Workers bounds the metric evaluation parallelism per level. Zero
	// means one worker per CPU.
	Workers int

	// NewSampler, when non-nil, builds the sample-point source for a
	// level from the level's fixed grid. The default samples every grid
	// point.
	NewSampler func(grid *domain.Grid) (sampler.Sampler, error)

	// Optimizer carries the per-level optimizer settings. Its Metric
	// field is ignored; a mean-squares metric is built for each level.
	Optimizer Params
}

// MultiScale registers the moving image to the fixed one coarse to fine.
// Each level minimizes the mean-squared error over all grid points of the
// level's fixed image, seeded with the coarser level's solution; the
// first level is seeded with initial. The finest level's result is
// returned.
func MultiScale(params *MultiScaleParams, initial []float64) (*models.Result, error) {
	if params.Fixed == nil || params.Moving == nil {
		return nil, fmt.Errorf("registration: fixed and moving images must be set")
	}
	if params.Space == nil {
		return nil, fmt.Errorf("registration: transformation space must be set")
	}
	if params.Fixed.Dim() != params.Moving.Dim() || params.Fixed.Dim() != params.Space.Dim() {
		return nil, fmt.Errorf("registration: fixed %dD, moving %dD, transform space %dD: %w",
			params.Fixed.Dim(), params.Moving.Dim(), params.Space.Dim(), geometry.ErrDimensionMismatch)
	}
	levels := params.Levels
	if levels <= 0 {
		levels = 3
	}
	sigma := params.Sigma
	if sigma <= 0 {
		sigma = 0.5
	}

	fixedPyramid, err := filter.Pyramid(params.Fixed, levels, sigma)
	if err != nil {
		return nil, fmt.Errorf("registration: fixed pyramid: %w", err)
	}
	movingPyramid, err := filter.Pyramid(params.Moving, levels, sigma)
	if err != nil {
		return nil, fmt.Errorf("registration: moving pyramid: %w", err)
	}

	x := append([]float64(nil), initial...)
	var result *models.Result
	for level := 0; level < levels; level++ {
		fixed, err := image.Interpolate(fixedPyramid[level], params.Kernel)
		if err != nil {
			return nil, fmt.Errorf("registration: level %d fixed image: %w", level, err)
		}
		moving, err := image.Interpolate(movingPyramid[level], params.Kernel)
		if err != nil {
			return nil, fmt.Errorf("registration: level %d moving image: %w", level, err)
		}

		var smp sampler.Sampler
		if params.NewSampler != nil {
			smp, err = params.NewSampler(fixedPyramid[level].Grid())
			if err != nil {
				return nil, fmt.Errorf("registration: level %d sampler: %w", level, err)
			}
		} else {
			smp = sampler.NewGridPoints(fixedPyramid[level].Grid())
		}
		m, err := metric.MeanSquares(fixed, moving, params.Space, smp)
		if err != nil {
			return nil, fmt.Errorf("registration: level %d metric: %w", level, err)
		}
		m.Workers = params.Workers

		levelParams := params.Optimizer
		levelParams.Metric = m
		reg, err := New(&levelParams)
		if err != nil {
			return nil, err
		}
		result, err = reg.Run(x)
		if err != nil {
			return nil, fmt.Errorf("registration: level %d: %w", level, err)
		}
		x = result.Parameters
	}
	return result, nil
}
