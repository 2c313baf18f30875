// Package registration drives an image-similarity metric to its minimum
// over a transformation space. It offers a fixed-step gradient descent
// with step halving and an L-BFGS option, plus a coarse-to-fine
// multi-resolution loop.
package registration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"mrireg/internal/models"
	"mrireg/pkg/geometry"
	"mrireg/pkg/metric"
)

// Optimizer names accepted by Params.Method.
const (
	MethodGradientDescent = "gradientdescent"
	MethodLBFGS           = "lbfgs"
)

// ProgressCallback receives one call per optimizer iteration when set on
// Params. The params slice is owned by the optimizer and must not be
// retained.
type ProgressCallback func(iteration int, value float64, params []float64)

// Params holds the registration configuration.
type Params struct {
	// Metric is the objective to minimize.
	Metric *metric.Metric

	// Method selects the optimizer: MethodGradientDescent (the default)
	// or MethodLBFGS.
	Method string

	// MaxIterations caps the optimizer iterations. Zero means 100.
	MaxIterations int

	// StepSize is the initial step length for gradient descent, halved
	// whenever a step fails to improve the metric. Zero means 0.1.
	StepSize float64

	// GradientTolerance stops the run once the gradient's Euclidean norm
	// falls below it. Zero means 1e-6.
	GradientTolerance float64

	// Progress, when non-nil, is invoked once per iteration.
	Progress ProgressCallback
}

// Registration runs a configured optimization over a metric.
type Registration struct {
	params *Params
}

// New validates the parameters, fills in defaults and returns a runnable
// registration.
func New(params *Params) (*Registration, error) {
	if params == nil || params.Metric == nil {
		return nil, fmt.Errorf("registration: metric must be set")
	}
	p := *params
	switch p.Method {
	case "":
		p.Method = MethodGradientDescent
	case MethodGradientDescent, MethodLBFGS:
	default:
		return nil, fmt.Errorf("registration: unknown method %q", p.Method)
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = 100
	}
	if p.StepSize <= 0 {
		p.StepSize = 0.1
	}
	if p.GradientTolerance <= 0 {
		p.GradientTolerance = 1e-6
	}
	return &Registration{params: &p}, nil
}

// Run minimizes the metric starting from the given parameter vector and
// reports the best parameters found.
func (r *Registration) Run(initial []float64) (*models.Result, error) {
	if want := r.params.Metric.Space().NumParameters(); len(initial) != want {
		return nil, fmt.Errorf("registration: %d initial parameters for a %d-parameter space: %w",
			len(initial), want, geometry.ErrDimensionMismatch)
	}
	if r.params.Method == MethodLBFGS {
		return r.runLBFGS(initial)
	}
	return r.runGradientDescent(initial)
}

// runGradientDescent walks downhill along the metric gradient with a
// fixed step, halving it whenever a step fails to improve the value.
// Every evaluation pairs the value with the gradient of the same sample
// draw, so accept/reject decisions compare like with like.
func (r *Registration) runGradientDescent(initial []float64) (*models.Result, error) {
	x := append([]float64(nil), initial...)
	value, grad, err := r.params.Metric.ValueAndDerivative(x)
	if err != nil {
		return nil, fmt.Errorf("registration: %w", err)
	}

	step := r.params.StepSize
	iter := 0
	converged := false
	for ; iter < r.params.MaxIterations; iter++ {
		if floats.Norm(grad, 2) < r.params.GradientTolerance {
			converged = true
			break
		}
		if step < 1e-12 {
			break
		}

		trial := append([]float64(nil), x...)
		floats.AddScaled(trial, -step, grad)
		trialValue, trialGrad, err := r.params.Metric.ValueAndDerivative(trial)
		if err != nil {
			return nil, fmt.Errorf("registration: %w", err)
		}
		if trialValue < value {
			x, value, grad = trial, trialValue, trialGrad
		} else {
			step /= 2
		}

		if r.params.Progress != nil {
			r.params.Progress(iter+1, value, x)
		}
	}

	return &models.Result{
		Parameters:  x,
		MetricValue: value,
		Iterations:  iter,
		Converged:   converged,
		GeneratedBy: MethodGradientDescent,
	}, nil
}

// runLBFGS hands the metric to gonum's L-BFGS implementation. The value
// and gradient at each location come from one ValueAndDerivative call so
// the line search sees a consistent pair even with stochastic samplers.
func (r *Registration) runLBFGS(initial []float64) (*models.Result, error) {
	cache := &evalCache{m: r.params.Metric}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			v, _, err := cache.at(x)
			if err != nil {
				return math.Inf(1)
			}
			return v
		},
		Grad: func(grad, x []float64) {
			_, g, err := cache.at(x)
			if err != nil {
				for i := range grad {
					grad[i] = 0
				}
				return
			}
			copy(grad, g)
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   r.params.MaxIterations,
		GradientThreshold: r.params.GradientTolerance,
	}
	if r.params.Progress != nil {
		settings.Recorder = &progressRecorder{cb: r.params.Progress}
	}

	result, err := optimize.Minimize(problem, initial, settings, &optimize.LBFGS{})
	if err != nil {
		return nil, fmt.Errorf("registration: %w", err)
	}

	return &models.Result{
		Parameters:  result.X,
		MetricValue: result.F,
		Iterations:  result.Stats.MajorIterations,
		Converged:   result.Status == optimize.GradientThreshold,
		GeneratedBy: MethodLBFGS,
	}, nil
}

// evalCache memoizes the most recent metric evaluation, keyed by the
// parameter vector. gonum's optimizers request the value and the gradient
// of one location through separate calls; the cache makes both come from
// the same frozen sample draw.
type evalCache struct {
	m   *metric.Metric
	x   []float64
	v   float64
	g   []float64
	err error
}

func (c *evalCache) at(x []float64) (float64, []float64, error) {
	if c.x != nil && floats.Equal(c.x, x) {
		return c.v, c.g, c.err
	}
	c.x = append(c.x[:0], x...)
	c.v, c.g, c.err = c.m.ValueAndDerivative(x)
	return c.v, c.g, c.err
}

// progressRecorder adapts a ProgressCallback to gonum's Recorder
// interface, forwarding one call per major iteration.
type progressRecorder struct {
	cb ProgressCallback
}

func (r *progressRecorder) Init() error { return nil }

func (r *progressRecorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op == optimize.MajorIteration {
		r.cb(stats.MajorIterations, loc.F, loc.X)
	}
	return nil
}
