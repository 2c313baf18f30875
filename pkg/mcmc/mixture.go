package mcmc

import (
	"fmt"
	"math"
	randv2 "math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Mixture draws each proposal from one of several components chosen at
// random with fixed weights. Its transition density is the weighted sum of
// the component densities, accumulated in log space.
type Mixture struct {
	components []ProposalGenerator
	weights    []float64
	logWeights []float64
	rng        *randv2.Rand
}

// NewMixture builds a mixture proposal. Weights must be positive and are
// normalized internally; components and weights must have equal length.
// A nil src falls back to a fixed-seed stream.
func NewMixture(components []ProposalGenerator, weights []float64, src randv2.Source) (*Mixture, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("mcmc: mixture needs at least one component")
	}
	if len(components) != len(weights) {
		return nil, fmt.Errorf("mcmc: %d components with %d weights", len(components), len(weights))
	}
	for i, w := range weights {
		if w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
			return nil, fmt.Errorf("mcmc: mixture weight[%d] = %v, must be positive and finite", i, w)
		}
	}
	norm := append([]float64(nil), weights...)
	floats.Scale(1/floats.Sum(norm), norm)

	logw := make([]float64, len(norm))
	for i, w := range norm {
		logw[i] = math.Log(w)
	}
	if src == nil {
		src = randv2.NewPCG(1, 2)
	}
	return &Mixture{
		components: append([]ProposalGenerator(nil), components...),
		weights:    norm,
		logWeights: logw,
		rng:        randv2.New(src),
	}, nil
}

func (m *Mixture) Propose(from Sample) Sample {
	u := m.rng.Float64()
	acc := 0.0
	for i, w := range m.weights {
		acc += w
		if u < acc || i == len(m.weights)-1 {
			return m.components[i].Propose(from)
		}
	}
	panic("unreachable")
}

// LogTransitionProbability is the log of the weighted component densities,
// combined with log-sum-exp for stability. Components that return negative
// infinity simply drop out of the sum; if all do, the result is negative
// infinity.
func (m *Mixture) LogTransitionProbability(from, to Sample) float64 {
	terms := make([]float64, len(m.components))
	max := math.Inf(-1)
	for i, c := range m.components {
		terms[i] = m.logWeights[i] + c.LogTransitionProbability(from, to)
		if terms[i] > max {
			max = terms[i]
		}
	}
	if math.IsInf(max, -1) {
		return math.Inf(-1)
	}
	sum := 0.0
	for _, t := range terms {
		sum += math.Exp(t - max)
	}
	return max + math.Log(sum)
}
