// Package metric implements image-similarity objectives with analytic
// gradients in transformation-parameter space. A metric compares a fixed
// field against a moving field warped by a parametric transformation,
// estimating the pointwise loss over a sampled point set.
package metric

import (
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"mrireg/pkg/field"
	"mrireg/pkg/geometry"
	"mrireg/pkg/sampler"
	"mrireg/pkg/transform"
)

// PointwiseLoss is a scalar loss applied to the image residual at each
// sample point, together with its derivative. Both functions must be pure.
type PointwiseLoss struct {
	F  func(float64) float64
	DF func(float64) float64
}

// SquaredLoss is the squared-error loss r^2 with derivative 2r.
var SquaredLoss = PointwiseLoss{
	F:  func(r float64) float64 { return r * r },
	DF: func(r float64) float64 { return 2 * r },
}

// Metric estimates a pointwise loss between a fixed image and a warped
// moving image. All collaborators are supplied at construction and read
// concurrently during evaluation; the moving image must expose a spatial
// gradient for the derivative computation.
//
// Sample points where the fixed and warped images do not overlap score
// zero but stay in the denominator, deliberately biasing the estimate
// toward zero outside the overlap region.
type Metric struct {
	fixed  field.Field
	moving field.Differentiable
	space  transform.Space
	smp    sampler.Sampler
	loss   PointwiseLoss

	// Workers bounds the evaluation parallelism. Zero means one worker
	// per CPU. Set it before the first evaluation.
	Workers int
}

// New builds a metric from its collaborators. The fixed image, moving
// image and transformation space must agree on dimensionality.
func New(fixed field.Field, moving field.Differentiable, space transform.Space, smp sampler.Sampler, loss PointwiseLoss) (*Metric, error) {
	if fixed.Domain().Dim() != moving.Domain().Dim() || fixed.Domain().Dim() != space.Dim() {
		return nil, fmt.Errorf("metric: fixed %dD, moving %dD, transform space %dD: %w",
			fixed.Domain().Dim(), moving.Domain().Dim(), space.Dim(), geometry.ErrDimensionMismatch)
	}
	if loss.F == nil || loss.DF == nil {
		return nil, fmt.Errorf("metric: loss and its derivative must both be set")
	}
	return &Metric{fixed: fixed, moving: moving, space: space, smp: smp, loss: loss}, nil
}

// MeanSquares builds the mean-squared-error metric, the default objective
// for intensity-based registration.
func MeanSquares(fixed field.Field, moving field.Differentiable, space transform.Space, smp sampler.Sampler) (*Metric, error) {
	return New(fixed, moving, space, smp, SquaredLoss)
}

// Space returns the transformation space the metric differentiates over.
func (m *Metric) Space() transform.Space { return m.space }

// Value estimates the loss at the given transformation parameters: the
// mean of loss(fixed - warped) over one sampler draw, counting
// out-of-overlap points as zero.
func (m *Metric) Value(params []float64) (float64, error) {
	tr, err := m.space.For(params)
	if err != nil {
		return 0, fmt.Errorf("metric value: %w", err)
	}
	warped := field.Compose(m.moving, tr)
	obj := field.Lift(field.Subtract(m.fixed, warped), m.loss.F)
	dom := obj.Domain()

	pts := m.smp.Sample()
	if len(pts) == 0 {
		return 0, fmt.Errorf("metric value: sampler produced no points")
	}
	sum := m.reduceScalar(pts, func(p geometry.Point) float64 {
		if !dom.IsDefinedAt(p) {
			return 0
		}
		v, err := obj.Value(p)
		if err != nil {
			return 0
		}
		return v
	})
	return sum / float64(len(pts)), nil
}

// Derivative estimates the gradient of Value with respect to the
// parameters. Per sample point x inside the overlap the contribution is
//
//	Jᵗ(x) · ∇moving(t(x)) · l'(warped(x) - fixed(x))
//
// with J the transformation's parameter Jacobian at x. The residual sign
// is reversed relative to Value; together with the chain rule this yields
// the gradient of the value estimator. Points outside the overlap
// contribute the zero vector.
func (m *Metric) Derivative(params []float64) ([]float64, error) {
	tr, err := m.space.For(params)
	if err != nil {
		return nil, fmt.Errorf("metric derivative: %w", err)
	}
	warped := field.Compose(m.moving, tr)
	dObj := field.Lift(field.Subtract(warped, m.fixed), m.loss.DF)
	dom := dObj.Domain()

	pts := m.smp.Sample()
	if len(pts) == 0 {
		return nil, fmt.Errorf("metric derivative: sampler produced no points")
	}
	dim := m.space.Dim()
	nParams := m.space.NumParameters()

	grad := m.reduceVector(pts, nParams, func(p geometry.Point, acc []float64) {
		if !dom.IsDefinedAt(p) {
			return
		}
		dv, err := dObj.Value(p)
		if err != nil {
			return
		}
		g, err := m.moving.Gradient(tr.Apply(p))
		if err != nil {
			return
		}
		jac := tr.ParameterJacobian(p)
		for c := 0; c < nParams; c++ {
			s := 0.0
			for r := 0; r < dim; r++ {
				s += jac.At(r, c) * g[r]
			}
			acc[c] += dv * s
		}
	})
	floats.Scale(1/float64(len(pts)), grad)
	return grad, nil
}

// ValueAndDerivative evaluates both quantities against one frozen sampler
// draw, so the value and its gradient describe the same estimate. This is
// what gradient-based optimizers should call.
func (m *Metric) ValueAndDerivative(params []float64) (float64, []float64, error) {
	frozen := *m
	frozen.smp = sampler.Once(m.smp)

	v, err := frozen.Value(params)
	if err != nil {
		return 0, nil, err
	}
	g, err := frozen.Derivative(params)
	if err != nil {
		return 0, nil, err
	}
	return v, g, nil
}

// workersFor bounds the worker count by the job size.
func (m *Metric) workersFor(n int) int {
	workers := m.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	return workers
}

// reduceScalar sums eval over all sample points using a chunked worker
// pool. The sum is commutative, so chunk completion order does not matter.
func (m *Metric) reduceScalar(pts []sampler.PointWithWeight, eval func(geometry.Point) float64) float64 {
	workers := m.workersFor(len(pts))
	if workers <= 1 {
		sum := 0.0
		for _, pw := range pts {
			sum += eval(pw.Point)
		}
		return sum
	}

	chunk := (len(pts) + workers - 1) / workers
	partials := make(chan float64, workers)
	var wg sync.WaitGroup
	for start := 0; start < len(pts); start += chunk {
		end := start + chunk
		if end > len(pts) {
			end = len(pts)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			sum := 0.0
			for i := lo; i < hi; i++ {
				sum += eval(pts[i].Point)
			}
			partials <- sum
		}(start, end)
	}
	go func() {
		wg.Wait()
		close(partials)
	}()

	total := 0.0
	for s := range partials {
		total += s
	}
	return total
}

// reduceVector accumulates n-component contributions over all sample
// points, one local accumulator per worker, merged at the end.
func (m *Metric) reduceVector(pts []sampler.PointWithWeight, n int, eval func(geometry.Point, []float64)) []float64 {
	workers := m.workersFor(len(pts))
	if workers <= 1 {
		acc := make([]float64, n)
		for _, pw := range pts {
			eval(pw.Point, acc)
		}
		return acc
	}

	chunk := (len(pts) + workers - 1) / workers
	partials := make(chan []float64, workers)
	var wg sync.WaitGroup
	for start := 0; start < len(pts); start += chunk {
		end := start + chunk
		if end > len(pts) {
			end = len(pts)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			acc := make([]float64, n)
			for i := lo; i < hi; i++ {
				eval(pts[i].Point, acc)
			}
			partials <- acc
		}(start, end)
	}
	go func() {
		wg.Wait()
		close(partials)
	}()

	total := make([]float64, n)
	for acc := range partials {
		floats.Add(total, acc)
	}
	return total
}
