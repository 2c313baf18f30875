package mcmc

import (
	"fmt"
	"math"
	randv2 "math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// CorrelatedWalk perturbs the parameter vector with one draw from a full
// multivariate Gaussian, capturing correlations between parameters that an
// isotropic walk cannot express.
type CorrelatedWalk struct {
	name  string
	noise *distmv.Normal
}

// NewCorrelatedWalk builds a Gaussian proposal with the given covariance.
// The covariance must be symmetric positive definite.
func NewCorrelatedWalk(sigma *mat.SymDense, src randv2.Source) (*CorrelatedWalk, error) {
	dim := sigma.SymmetricDim()
	noise, ok := distmv.NewNormal(make([]float64, dim), sigma, src)
	if !ok {
		return nil, fmt.Errorf("mcmc: covariance is not positive definite")
	}
	return &CorrelatedWalk{
		name:  fmt.Sprintf("correlated-walk-%dd", dim),
		noise: noise,
	}, nil
}

// Name returns the provenance tag stamped on proposed samples.
func (cw *CorrelatedWalk) Name() string { return cw.name }

// Dim returns the parameter count the proposal expects.
func (cw *CorrelatedWalk) Dim() int { return cw.noise.Dim() }

func (cw *CorrelatedWalk) Propose(from Sample) Sample {
	if len(from.Parameters) != cw.noise.Dim() {
		panic(fmt.Sprintf("mcmc: correlated walk over %d parameters got %d", cw.noise.Dim(), len(from.Parameters)))
	}
	delta := cw.noise.Rand(nil)
	params := make([]float64, len(from.Parameters))
	for i, v := range from.Parameters {
		params[i] = v + delta[i]
	}
	return Sample{Parameters: params, GeneratedBy: cw.name}
}

func (cw *CorrelatedWalk) LogTransitionProbability(from, to Sample) float64 {
	if len(from.Parameters) != len(to.Parameters) || len(from.Parameters) != cw.noise.Dim() {
		return math.Inf(-1)
	}
	delta := make([]float64, len(from.Parameters))
	for i := range delta {
		delta[i] = to.Parameters[i] - from.Parameters[i]
	}
	return cw.noise.LogProb(delta)
}
