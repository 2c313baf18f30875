// Package field defines continuous scalar fields over spatial domains and
// the combinators used to build image-matching objectives: pointwise
// arithmetic, scalar lifting and warping by a transformation.
//
// Fields are immutable views: evaluating one never changes it, so any field
// may be shared freely between goroutines.
package field

import (
	"fmt"

	"mrireg/pkg/domain"
	"mrireg/pkg/geometry"
)

// Field is a scalar function defined on a domain. Value returns an error
// wrapping domain.ErrUndefinedAt when evaluated outside the domain; the
// accompanying value is zero and carries no meaning.
type Field interface {
	Domain() domain.Domain
	Value(p geometry.Point) (float64, error)
}

// Differentiable is a field with a spatial gradient, defined on the same
// domain as the values.
type Differentiable interface {
	Field
	Gradient(p geometry.Point) (geometry.Vector, error)
}

// errUndefined builds the error returned for an evaluation outside a
// field's domain.
func errUndefined(p geometry.Point) error {
	return fmt.Errorf("field: value at %v: %w", p, domain.ErrUndefinedAt)
}

// funcField adapts a plain function to the Field interface.
type funcField struct {
	dom domain.Domain
	f   func(geometry.Point) float64
}

// FromFunc wraps f as a field on dom. The function is only consulted inside
// the domain.
func FromFunc(dom domain.Domain, f func(geometry.Point) float64) Field {
	return &funcField{dom: dom, f: f}
}

func (ff *funcField) Domain() domain.Domain { return ff.dom }

func (ff *funcField) Value(p geometry.Point) (float64, error) {
	if !ff.dom.IsDefinedAt(p) {
		return 0, errUndefined(p)
	}
	return ff.f(p), nil
}

// funcGradField adds an explicit gradient function.
type funcGradField struct {
	funcField
	grad func(geometry.Point) geometry.Vector
}

// FromFuncWithGradient wraps a function and its analytic gradient as a
// differentiable field on dom.
func FromFuncWithGradient(dom domain.Domain, f func(geometry.Point) float64, grad func(geometry.Point) geometry.Vector) Differentiable {
	return &funcGradField{
		funcField: funcField{dom: dom, f: f},
		grad:      grad,
	}
}

func (fg *funcGradField) Gradient(p geometry.Point) (geometry.Vector, error) {
	if !fg.dom.IsDefinedAt(p) {
		return nil, errUndefined(p)
	}
	return fg.grad(p), nil
}

// Constant returns the field with the given value everywhere on dom.
func Constant(dom domain.Domain, value float64) Differentiable {
	return FromFuncWithGradient(dom,
		func(geometry.Point) float64 { return value },
		func(geometry.Point) geometry.Vector { return geometry.ZeroVector(dom.Dim()) },
	)
}
