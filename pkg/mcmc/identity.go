package mcmc

// Identity returns its input unchanged. It is a control proposal used in
// tests and as a mixture component; its log transition probability is
// always zero.
type Identity struct{}

// NewIdentity returns the identity proposal.
func NewIdentity() Identity { return Identity{} }

func (Identity) Propose(from Sample) Sample {
	out := from.Clone()
	out.GeneratedBy = "identity"
	return out
}

func (Identity) LogTransitionProbability(from, to Sample) float64 {
	return 0
}
