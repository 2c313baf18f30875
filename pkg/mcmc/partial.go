package mcmc

import (
	"fmt"
	"math"
)

// Partial restricts a base proposal to the half-open index range [lo, hi)
// of the parameter vector. Entries outside the range pass through
// bit-identical, and any transition that changes them has probability
// zero. It is a decorator: the base proposal only ever sees the sliced
// sub-vector.
type Partial struct {
	base   ProposalGenerator
	lo, hi int
}

// NewPartial wraps base so it acts only on parameters [lo, hi).
func NewPartial(base ProposalGenerator, lo, hi int) (*Partial, error) {
	if lo < 0 || hi <= lo {
		return nil, fmt.Errorf("mcmc: partial range [%d, %d) is invalid", lo, hi)
	}
	return &Partial{base: base, lo: lo, hi: hi}, nil
}

func (p *Partial) Propose(from Sample) Sample {
	if p.hi > len(from.Parameters) {
		panic(fmt.Sprintf("mcmc: partial range [%d, %d) exceeds %d parameters", p.lo, p.hi, len(from.Parameters)))
	}
	sub := p.base.Propose(Sample{
		Parameters:  append([]float64(nil), from.Parameters[p.lo:p.hi]...),
		GeneratedBy: from.GeneratedBy,
	})

	params := append([]float64(nil), from.Parameters...)
	copy(params[p.lo:p.hi], sub.Parameters)
	return Sample{
		Parameters:  params,
		GeneratedBy: fmt.Sprintf("partial[%d:%d](%s)", p.lo, p.hi, sub.GeneratedBy),
	}
}

func (p *Partial) LogTransitionProbability(from, to Sample) float64 {
	if len(from.Parameters) != len(to.Parameters) || p.hi > len(from.Parameters) {
		return math.Inf(-1)
	}
	// Patch the in-range entries of "from" into "to"; if the result is not
	// exactly "to", something outside the range moved.
	for i, v := range to.Parameters {
		if i >= p.lo && i < p.hi {
			continue
		}
		if v != from.Parameters[i] {
			return math.Inf(-1)
		}
	}
	return p.base.LogTransitionProbability(
		Sample{Parameters: from.Parameters[p.lo:p.hi], GeneratedBy: from.GeneratedBy},
		Sample{Parameters: to.Parameters[p.lo:p.hi], GeneratedBy: to.GeneratedBy},
	)
}
