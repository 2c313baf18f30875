package mcmc

import (
	"fmt"
	"math"
	randv2 "math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// RandomWalk perturbs every parameter with independent Gaussian noise of a
// fixed standard deviation. Its transition kernel is symmetric.
type RandomWalk struct {
	name  string
	noise distuv.Normal
}

// NewRandomWalk builds an isotropic Gaussian random-walk proposal. A nil
// src falls back to the global random stream.
func NewRandomWalk(stddev float64, src randv2.Source) (*RandomWalk, error) {
	if stddev <= 0 {
		return nil, fmt.Errorf("mcmc: random walk stddev %v, must be positive", stddev)
	}
	return &RandomWalk{
		name:  fmt.Sprintf("random-walk-%.3g", stddev),
		noise: distuv.Normal{Mu: 0, Sigma: stddev, Src: src},
	}, nil
}

// Name returns the provenance tag stamped on proposed samples.
func (rw *RandomWalk) Name() string { return rw.name }

func (rw *RandomWalk) Propose(from Sample) Sample {
	params := make([]float64, len(from.Parameters))
	for i, v := range from.Parameters {
		params[i] = v + rw.noise.Rand()
	}
	return Sample{Parameters: params, GeneratedBy: rw.name}
}

func (rw *RandomWalk) LogTransitionProbability(from, to Sample) float64 {
	if len(from.Parameters) != len(to.Parameters) {
		return math.Inf(-1)
	}
	logp := 0.0
	for i := range from.Parameters {
		logp += rw.noise.LogProb(to.Parameters[i] - from.Parameters[i])
	}
	return logp
}
