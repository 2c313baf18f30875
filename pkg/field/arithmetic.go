package field

import (
	"mrireg/pkg/domain"
	"mrireg/pkg/geometry"
)

// Sum is the pointwise sum of two fields, defined on the intersection of
// their domains.
type Sum struct {
	a, b Field
	dom  domain.Domain
}

// Add returns the pointwise sum a + b.
func Add(a, b Field) *Sum {
	return &Sum{a: a, b: b, dom: domain.Intersect(a.Domain(), b.Domain())}
}

func (s *Sum) Domain() domain.Domain { return s.dom }

func (s *Sum) Value(p geometry.Point) (float64, error) {
	if !s.dom.IsDefinedAt(p) {
		return 0, errUndefined(p)
	}
	va, err := s.a.Value(p)
	if err != nil {
		return 0, err
	}
	vb, err := s.b.Value(p)
	if err != nil {
		return 0, err
	}
	return va + vb, nil
}

// Difference is the pointwise difference of two fields, defined on the
// intersection of their domains.
type Difference struct {
	a, b Field
	dom  domain.Domain
}

// Subtract returns the pointwise difference a - b.
func Subtract(a, b Field) *Difference {
	return &Difference{a: a, b: b, dom: domain.Intersect(a.Domain(), b.Domain())}
}

func (d *Difference) Domain() domain.Domain { return d.dom }

func (d *Difference) Value(p geometry.Point) (float64, error) {
	if !d.dom.IsDefinedAt(p) {
		return 0, errUndefined(p)
	}
	va, err := d.a.Value(p)
	if err != nil {
		return 0, err
	}
	vb, err := d.b.Value(p)
	if err != nil {
		return 0, err
	}
	return va - vb, nil
}

// Product is the pointwise product of two fields, defined on the
// intersection of their domains.
type Product struct {
	a, b Field
	dom  domain.Domain
}

// Multiply returns the pointwise product a * b.
func Multiply(a, b Field) *Product {
	return &Product{a: a, b: b, dom: domain.Intersect(a.Domain(), b.Domain())}
}

func (m *Product) Domain() domain.Domain { return m.dom }

func (m *Product) Value(p geometry.Point) (float64, error) {
	if !m.dom.IsDefinedAt(p) {
		return 0, errUndefined(p)
	}
	va, err := m.a.Value(p)
	if err != nil {
		return 0, err
	}
	vb, err := m.b.Value(p)
	if err != nil {
		return 0, err
	}
	return va * vb, nil
}

// Lifted applies a scalar function to the values of an inner field. Its
// domain is the inner field's domain.
type Lifted struct {
	inner Field
	fn    func(float64) float64
}

// Lift returns the field fn(inner(p)).
func Lift(inner Field, fn func(float64) float64) *Lifted {
	return &Lifted{inner: inner, fn: fn}
}

func (l *Lifted) Domain() domain.Domain { return l.inner.Domain() }

func (l *Lifted) Value(p geometry.Point) (float64, error) {
	v, err := l.inner.Value(p)
	if err != nil {
		return 0, err
	}
	return l.fn(v), nil
}

// Scaled multiplies a field by a constant. Its domain is the inner field's
// domain.
type Scaled struct {
	inner Field
	c     float64
}

// Scale returns the field c * inner(p).
func Scale(inner Field, c float64) *Scaled {
	return &Scaled{inner: inner, c: c}
}

func (s *Scaled) Domain() domain.Domain { return s.inner.Domain() }

func (s *Scaled) Value(p geometry.Point) (float64, error) {
	v, err := s.inner.Value(p)
	if err != nil {
		return 0, err
	}
	return s.c * v, nil
}
