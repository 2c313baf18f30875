package mcmc

// ProposalGenerator produces candidate samples for a Metropolis-Hastings
// chain and evaluates its own transition kernel.
//
// LogTransitionProbability returns the log-density of moving from one
// sample to another under this proposal. Vectors of mismatched length are
// not an error: the transition is impossible, so the result is negative
// infinity. That convention keeps the acceptance ratio well defined while
// still surfacing usage bugs (the chain simply never accepts such a move).
type ProposalGenerator interface {
	Propose(from Sample) Sample
	LogTransitionProbability(from, to Sample) float64
}
