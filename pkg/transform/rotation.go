package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"mrireg/pkg/geometry"
)

// RotationSpace2D is the one-parameter family of planar rotations about a
// fixed centre. The parameter is the rotation angle in radians, positive
// counter-clockwise.
type RotationSpace2D struct {
	center geometry.Point
}

// NewRotationSpace2D returns the family of rotations about center, which
// must be a 2D point.
func NewRotationSpace2D(center geometry.Point) *RotationSpace2D {
	if center.Dim() != 2 {
		panic(geometry.ErrDimensionMismatch)
	}
	return &RotationSpace2D{center: center.Clone()}
}

func (s *RotationSpace2D) Dim() int            { return 2 }
func (s *RotationSpace2D) NumParameters() int  { return 1 }
func (s *RotationSpace2D) Identity() []float64 { return []float64{0} }

func (s *RotationSpace2D) For(params []float64) (Transformation, error) {
	if err := checkParams(s, params); err != nil {
		return nil, err
	}
	phi := params[0]
	return &rotation2D{
		center: s.center,
		sin:    math.Sin(phi),
		cos:    math.Cos(phi),
	}, nil
}

type rotation2D struct {
	center   geometry.Point
	sin, cos float64
}

func (r *rotation2D) Dim() int { return 2 }

func (r *rotation2D) Apply(p geometry.Point) geometry.Point {
	x := p[0] - r.center[0]
	y := p[1] - r.center[1]
	return geometry.Pt(
		r.center[0]+r.cos*x-r.sin*y,
		r.center[1]+r.sin*x+r.cos*y,
	)
}

// d/dphi of R(phi)(p-c) is R'(phi)(p-c), a single 2x1 column.
func (r *rotation2D) ParameterJacobian(p geometry.Point) *mat.Dense {
	x := p[0] - r.center[0]
	y := p[1] - r.center[1]
	return mat.NewDense(2, 1, []float64{
		-r.sin*x - r.cos*y,
		r.cos*x - r.sin*y,
	})
}

func (r *rotation2D) PointJacobian(p geometry.Point) *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		r.cos, -r.sin,
		r.sin, r.cos,
	})
}
