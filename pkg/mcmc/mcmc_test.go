package mcmc

import (
	"math"
	randv2 "math/rand/v2"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestRandomWalkProposeChangesParameters(t *testing.T) {
	rw, err := NewRandomWalk(0.5, randv2.NewPCG(1, 2))
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}
	from := NewSample([]float64{1, 2, 3}, "init")

	prop := rw.Propose(from)
	if len(prop.Parameters) != 3 {
		t.Fatalf("Propose: got %d parameters, want 3", len(prop.Parameters))
	}
	if prop.GeneratedBy != rw.Name() {
		t.Errorf("GeneratedBy: got %q, want %q", prop.GeneratedBy, rw.Name())
	}
	same := true
	for i := range from.Parameters {
		if prop.Parameters[i] != from.Parameters[i] {
			same = false
		}
	}
	if same {
		t.Error("Propose returned the input unchanged")
	}
	// The input must not have been touched.
	for i, want := range []float64{1, 2, 3} {
		if from.Parameters[i] != want {
			t.Errorf("Propose mutated its input at %d: %v", i, from.Parameters[i])
		}
	}
}

func TestRandomWalkTransitionIsGaussianDensity(t *testing.T) {
	const stddev = 0.25
	rw, err := NewRandomWalk(stddev, nil)
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}

	from := NewSample([]float64{0.5, -1, 2}, "")
	delta := []float64{0.1, -0.3, 0.05}
	to := NewSample([]float64{0.6, -1.3, 2.05}, "")

	want := 0.0
	norm := distuv.Normal{Mu: 0, Sigma: stddev}
	for _, d := range delta {
		want += norm.LogProb(d)
	}
	got := rw.LogTransitionProbability(from, to)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("LogTransitionProbability: got %v, want %v", got, want)
	}

	// The kernel is symmetric.
	back := rw.LogTransitionProbability(to, from)
	if math.Abs(got-back) > 1e-12 {
		t.Errorf("kernel asymmetric: %v vs %v", got, back)
	}
}

func TestRandomWalkMismatchedLengthsAreImpossible(t *testing.T) {
	rw, err := NewRandomWalk(1, nil)
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}
	a := NewSample([]float64{1, 2}, "")
	b := NewSample([]float64{1, 2, 3}, "")
	if got := rw.LogTransitionProbability(a, b); !math.IsInf(got, -1) {
		t.Errorf("mismatched lengths: got %v, want -Inf", got)
	}
}

func TestRandomWalkRejectsBadStddev(t *testing.T) {
	if _, err := NewRandomWalk(0, nil); err == nil {
		t.Error("zero stddev: want error")
	}
	if _, err := NewRandomWalk(-1, nil); err == nil {
		t.Error("negative stddev: want error")
	}
}

func TestCorrelatedWalkMatchesDiagonalGaussian(t *testing.T) {
	// With a diagonal covariance the correlated walk reduces to the
	// isotropic one.
	const stddev = 0.4
	sigma := mat.NewSymDense(2, []float64{stddev * stddev, 0, 0, stddev * stddev})
	cw, err := NewCorrelatedWalk(sigma, randv2.NewPCG(3, 4))
	if err != nil {
		t.Fatalf("NewCorrelatedWalk: %v", err)
	}
	rw, err := NewRandomWalk(stddev, nil)
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}

	from := NewSample([]float64{1, -1}, "")
	to := NewSample([]float64{1.2, -0.7}, "")
	got := cw.LogTransitionProbability(from, to)
	want := rw.LogTransitionProbability(from, to)
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("diagonal correlated walk: got %v, want %v", got, want)
	}

	if g := cw.LogTransitionProbability(from, NewSample([]float64{1}, "")); !math.IsInf(g, -1) {
		t.Errorf("mismatched lengths: got %v, want -Inf", g)
	}

	prop := cw.Propose(from)
	if len(prop.Parameters) != 2 {
		t.Errorf("Propose: got %d parameters, want 2", len(prop.Parameters))
	}
}

func TestCorrelatedWalkRejectsIndefiniteCovariance(t *testing.T) {
	sigma := mat.NewSymDense(2, []float64{1, 2, 2, 1}) // eigenvalues 3, -1
	if _, err := NewCorrelatedWalk(sigma, nil); err == nil {
		t.Error("indefinite covariance: want error")
	}
}

func TestPartialPerturbsOnlyRange(t *testing.T) {
	rw, err := NewRandomWalk(0.5, randv2.NewPCG(5, 6))
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}
	p, err := NewPartial(rw, 1, 3)
	if err != nil {
		t.Fatalf("NewPartial: %v", err)
	}

	from := NewSample([]float64{10, 20, 30, 40, 50}, "init")
	prop := p.Propose(from)

	// Outside [1,3) every entry is bit-identical.
	for _, i := range []int{0, 3, 4} {
		if prop.Parameters[i] != from.Parameters[i] {
			t.Errorf("entry %d outside the range changed: %v -> %v", i, from.Parameters[i], prop.Parameters[i])
		}
	}
	if prop.Parameters[1] == 20 && prop.Parameters[2] == 30 {
		t.Error("entries inside the range were not perturbed")
	}
	if !strings.HasPrefix(prop.GeneratedBy, "partial[1:3](") {
		t.Errorf("GeneratedBy: got %q", prop.GeneratedBy)
	}
}

func TestPartialRejectsOutOfRangeChanges(t *testing.T) {
	rw, err := NewRandomWalk(0.5, nil)
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}
	p, err := NewPartial(rw, 1, 3)
	if err != nil {
		t.Fatalf("NewPartial: %v", err)
	}

	from := NewSample([]float64{10, 20, 30, 40}, "")
	inRange := NewSample([]float64{10, 21, 29, 40}, "")
	outRange := NewSample([]float64{10.0001, 21, 29, 40}, "")

	got := p.LogTransitionProbability(from, inRange)
	if math.IsInf(got, -1) {
		t.Error("in-range transition reported impossible")
	}
	// Must equal the base kernel on the sub-vector.
	want := rw.LogTransitionProbability(
		NewSample([]float64{20, 30}, ""), NewSample([]float64{21, 29}, ""))
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("partial transition: got %v, want %v", got, want)
	}

	if g := p.LogTransitionProbability(from, outRange); !math.IsInf(g, -1) {
		t.Errorf("out-of-range change: got %v, want -Inf", g)
	}
	if g := p.LogTransitionProbability(from, NewSample([]float64{10, 20, 30}, "")); !math.IsInf(g, -1) {
		t.Errorf("mismatched lengths: got %v, want -Inf", g)
	}
}

func TestPartialValidation(t *testing.T) {
	rw, err := NewRandomWalk(1, nil)
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}
	if _, err := NewPartial(rw, -1, 2); err == nil {
		t.Error("negative lo: want error")
	}
	if _, err := NewPartial(rw, 2, 2); err == nil {
		t.Error("empty range: want error")
	}
}

func TestIdentityProposal(t *testing.T) {
	id := NewIdentity()
	from := NewSample([]float64{1, 2}, "init")

	prop := id.Propose(from)
	if prop.Parameters[0] != 1 || prop.Parameters[1] != 2 {
		t.Errorf("identity changed the parameters: %v", prop.Parameters)
	}
	if prop.GeneratedBy != "identity" {
		t.Errorf("GeneratedBy: got %q, want identity", prop.GeneratedBy)
	}
	// Fresh backing storage.
	prop.Parameters[0] = 99
	if from.Parameters[0] != 1 {
		t.Error("identity shares storage with its input")
	}

	if g := id.LogTransitionProbability(from, NewSample([]float64{7}, "")); g != 0 {
		t.Errorf("identity log transition: got %v, want 0", g)
	}
}

func TestMixtureTransitionIsLogSumExp(t *testing.T) {
	rw, err := NewRandomWalk(0.5, nil)
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}
	id := NewIdentity()
	mix, err := NewMixture([]ProposalGenerator{rw, id}, []float64{3, 1}, randv2.NewPCG(7, 8))
	if err != nil {
		t.Fatalf("NewMixture: %v", err)
	}

	from := NewSample([]float64{0, 0}, "")
	to := NewSample([]float64{0.2, -0.1}, "")

	got := mix.LogTransitionProbability(from, to)
	want := math.Log(0.75*math.Exp(rw.LogTransitionProbability(from, to)) + 0.25*math.Exp(0))
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("mixture transition: got %v, want %v", got, want)
	}
}

func TestMixtureProposeUsesComponents(t *testing.T) {
	rw, err := NewRandomWalk(0.5, randv2.NewPCG(9, 10))
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}
	id := NewIdentity()
	mix, err := NewMixture([]ProposalGenerator{rw, id}, []float64{1, 1}, randv2.NewPCG(11, 12))
	if err != nil {
		t.Fatalf("NewMixture: %v", err)
	}

	from := NewSample([]float64{1, 2}, "")
	sawWalk, sawIdentity := false, false
	for i := 0; i < 200; i++ {
		prop := mix.Propose(from)
		switch prop.GeneratedBy {
		case rw.Name():
			sawWalk = true
		case "identity":
			sawIdentity = true
		default:
			t.Fatalf("unexpected GeneratedBy %q", prop.GeneratedBy)
		}
	}
	if !sawWalk || !sawIdentity {
		t.Errorf("both components should fire over 200 draws: walk=%v identity=%v", sawWalk, sawIdentity)
	}
}

func TestMixtureAllImpossibleIsImpossible(t *testing.T) {
	rw, err := NewRandomWalk(0.5, nil)
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}
	mix, err := NewMixture([]ProposalGenerator{rw}, []float64{1}, nil)
	if err != nil {
		t.Fatalf("NewMixture: %v", err)
	}
	a := NewSample([]float64{1}, "")
	b := NewSample([]float64{1, 2}, "")
	if g := mix.LogTransitionProbability(a, b); !math.IsInf(g, -1) {
		t.Errorf("all components impossible: got %v, want -Inf", g)
	}
}

func TestMixtureValidation(t *testing.T) {
	rw, err := NewRandomWalk(1, nil)
	if err != nil {
		t.Fatalf("NewRandomWalk: %v", err)
	}
	if _, err := NewMixture(nil, nil, nil); err == nil {
		t.Error("empty mixture: want error")
	}
	if _, err := NewMixture([]ProposalGenerator{rw}, []float64{1, 2}, nil); err == nil {
		t.Error("weight count mismatch: want error")
	}
	if _, err := NewMixture([]ProposalGenerator{rw}, []float64{-1}, nil); err == nil {
		t.Error("negative weight: want error")
	}
}

func TestSampleCloneIsDeep(t *testing.T) {
	s := NewSample([]float64{1, 2}, "a")
	c := s.Clone()
	c.Parameters[0] = 42
	if s.Parameters[0] != 1 {
		t.Error("Clone shares parameter storage")
	}
	if c.GeneratedBy != "a" || c.Dim() != 2 {
		t.Errorf("Clone lost fields: %+v", c)
	}
}
