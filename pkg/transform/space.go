// Package transform provides parametric families of spatial transformations.
// A Space turns a parameter vector into a concrete Transformation; the
// transformation exposes the Jacobians needed to push image gradients back
// into parameter space.
package transform

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"mrireg/pkg/geometry"
)

// Transformation maps points to points. Implementations are immutable value
// objects created by a Space and safe for concurrent use.
type Transformation interface {
	// Dim returns the dimension of the space the transformation acts on.
	Dim() int

	// Apply maps the point p. The input is not modified.
	Apply(p geometry.Point) geometry.Point

	// ParameterJacobian returns the D-by-P matrix of partial derivatives of
	// the transformed coordinates with respect to the parameters that
	// produced this transformation, evaluated at the untransformed point p.
	ParameterJacobian(p geometry.Point) *mat.Dense

	// PointJacobian returns the D-by-D matrix of partial derivatives of the
	// transformed coordinates with respect to the input coordinates,
	// evaluated at p.
	PointJacobian(p geometry.Point) *mat.Dense
}

// Space is a parametric family of transformations over a fixed-dimension
// space.
type Space interface {
	// Dim returns the dimension of the points the family acts on.
	Dim() int

	// NumParameters returns the expected parameter vector length.
	NumParameters() int

	// Identity returns the parameter vector that maps every point to
	// itself.
	Identity() []float64

	// For builds the transformation for the given parameters. The vector is
	// copied, so the caller may reuse it. An error wrapping
	// geometry.ErrDimensionMismatch is returned when the length does not
	// equal NumParameters.
	For(params []float64) (Transformation, error)
}

// checkParams validates a parameter vector length against a space.
func checkParams(s Space, params []float64) error {
	if len(params) != s.NumParameters() {
		return fmt.Errorf("transform: got %d parameters, space expects %d: %w",
			len(params), s.NumParameters(), geometry.ErrDimensionMismatch)
	}
	return nil
}

// identityMatrix returns the n-by-n identity.
func identityMatrix(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
