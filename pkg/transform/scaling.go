package transform

import (
	"gonum.org/v1/gonum/mat"

	"mrireg/pkg/geometry"
)

// ScalingSpace is the one-parameter family of isotropic scalings about a
// fixed centre. The identity has parameter 1.
type ScalingSpace struct {
	center geometry.Point
}

// NewScalingSpace returns the family of isotropic scalings about center.
func NewScalingSpace(center geometry.Point) *ScalingSpace {
	return &ScalingSpace{center: center.Clone()}
}

func (s *ScalingSpace) Dim() int            { return s.center.Dim() }
func (s *ScalingSpace) NumParameters() int  { return 1 }
func (s *ScalingSpace) Identity() []float64 { return []float64{1} }

func (s *ScalingSpace) For(params []float64) (Transformation, error) {
	if err := checkParams(s, params); err != nil {
		return nil, err
	}
	return &scaling{center: s.center, factor: params[0]}, nil
}

type scaling struct {
	center geometry.Point
	factor float64
}

func (s *scaling) Dim() int { return s.center.Dim() }

func (s *scaling) Apply(p geometry.Point) geometry.Point {
	out := make(geometry.Point, len(p))
	for d := range p {
		out[d] = s.center[d] + s.factor*(p[d]-s.center[d])
	}
	return out
}

// d/ds of c + s*(p-c) is p-c, a single D x 1 column.
func (s *scaling) ParameterJacobian(p geometry.Point) *mat.Dense {
	col := make([]float64, len(p))
	for d := range p {
		col[d] = p[d] - s.center[d]
	}
	return mat.NewDense(len(p), 1, col)
}

func (s *scaling) PointJacobian(p geometry.Point) *mat.Dense {
	n := len(s.center)
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, s.factor)
	}
	return m
}
