package transform

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"mrireg/pkg/geometry"
)

// ProductSpace composes two families: the resulting transformation applies
// the inner family first, then the outer, t(x) = outer(inner(x)). Its
// parameter vector is the outer parameters followed by the inner ones.
type ProductSpace struct {
	outer, inner Space
}

// NewProductSpace builds the composition outer after inner. Both families
// must act on the same dimension.
func NewProductSpace(outer, inner Space) *ProductSpace {
	if outer.Dim() != inner.Dim() {
		panic(geometry.ErrDimensionMismatch)
	}
	return &ProductSpace{outer: outer, inner: inner}
}

func (s *ProductSpace) Dim() int { return s.outer.Dim() }

func (s *ProductSpace) NumParameters() int {
	return s.outer.NumParameters() + s.inner.NumParameters()
}

func (s *ProductSpace) Identity() []float64 {
	id := s.outer.Identity()
	return append(id, s.inner.Identity()...)
}

func (s *ProductSpace) For(params []float64) (Transformation, error) {
	if err := checkParams(s, params); err != nil {
		return nil, err
	}
	no := s.outer.NumParameters()
	outer, err := s.outer.For(params[:no])
	if err != nil {
		return nil, fmt.Errorf("product space, outer factor: %w", err)
	}
	inner, err := s.inner.For(params[no:])
	if err != nil {
		return nil, fmt.Errorf("product space, inner factor: %w", err)
	}
	return &productTransformation{
		outer:     outer,
		inner:     inner,
		numOuter:  no,
		numParams: s.NumParameters(),
	}, nil
}

type productTransformation struct {
	outer, inner Transformation
	numOuter     int
	numParams    int
}

func (t *productTransformation) Dim() int { return t.outer.Dim() }

func (t *productTransformation) Apply(p geometry.Point) geometry.Point {
	return t.outer.Apply(t.inner.Apply(p))
}

// The derivative with respect to the outer parameters is the outer Jacobian
// at inner(p); the inner block follows from the chain rule through the
// outer transformation's spatial derivative.
func (t *productTransformation) ParameterJacobian(p geometry.Point) *mat.Dense {
	q := t.inner.Apply(p)
	jOuter := t.outer.ParameterJacobian(q)

	var jInner mat.Dense
	jInner.Mul(t.outer.PointJacobian(q), t.inner.ParameterJacobian(p))

	dim := t.Dim()
	j := mat.NewDense(dim, t.numParams, nil)
	for i := 0; i < dim; i++ {
		for c := 0; c < t.numOuter; c++ {
			j.Set(i, c, jOuter.At(i, c))
		}
		for c := t.numOuter; c < t.numParams; c++ {
			j.Set(i, c, jInner.At(i, c-t.numOuter))
		}
	}
	return j
}

func (t *productTransformation) PointJacobian(p geometry.Point) *mat.Dense {
	q := t.inner.Apply(p)
	var j mat.Dense
	j.Mul(t.outer.PointJacobian(q), t.inner.PointJacobian(p))
	return &j
}
