// Package mcmc provides proposal generators for Metropolis-Hastings
// sampling over transformation parameters. Proposals perturb parameter
// vectors and report the log-density of their transition kernel, leaving
// acceptance logic to an external chain driver.
package mcmc

// Sample is a parameter vector tagged with the name of the proposal that
// generated it. Samples are value-like: constructors copy the parameter
// slice and proposals never modify their inputs.
type Sample struct {
	Parameters  []float64
	GeneratedBy string
}

// NewSample builds a sample, copying params.
func NewSample(params []float64, generatedBy string) Sample {
	return Sample{
		Parameters:  append([]float64(nil), params...),
		GeneratedBy: generatedBy,
	}
}

// Clone returns a deep copy of s.
func (s Sample) Clone() Sample {
	return NewSample(s.Parameters, s.GeneratedBy)
}

// Dim returns the parameter count.
func (s Sample) Dim() int { return len(s.Parameters) }
