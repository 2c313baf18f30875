package transform

import (
	"gonum.org/v1/gonum/mat"

	"mrireg/pkg/geometry"
)

// TranslationSpace is the family of translations of a given dimension. Its
// parameter vector is the offset itself.
type TranslationSpace struct {
	dim int
}

// NewTranslationSpace returns the translation family acting on dim-dimensional
// points.
func NewTranslationSpace(dim int) *TranslationSpace {
	return &TranslationSpace{dim: dim}
}

func (s *TranslationSpace) Dim() int           { return s.dim }
func (s *TranslationSpace) NumParameters() int { return s.dim }

func (s *TranslationSpace) Identity() []float64 {
	return make([]float64, s.dim)
}

func (s *TranslationSpace) For(params []float64) (Transformation, error) {
	if err := checkParams(s, params); err != nil {
		return nil, err
	}
	return &translation{offset: geometry.Vec(params...)}, nil
}

type translation struct {
	offset geometry.Vector
}

func (t *translation) Dim() int { return t.offset.Dim() }

func (t *translation) Apply(p geometry.Point) geometry.Point {
	return p.Add(t.offset)
}

// The translated coordinates depend linearly on the parameters, so the
// Jacobian is the identity at every point.
func (t *translation) ParameterJacobian(p geometry.Point) *mat.Dense {
	return identityMatrix(t.offset.Dim())
}

func (t *translation) PointJacobian(p geometry.Point) *mat.Dense {
	return identityMatrix(t.offset.Dim())
}
