package field

import (
	"mrireg/pkg/domain"
	"mrireg/pkg/geometry"
	"mrireg/pkg/transform"
)

// warpedDomain is the preimage of a domain under a transformation: the
// warped field f(t(x)) is defined at x exactly when f is defined at t(x).
type warpedDomain struct {
	inner domain.Domain
	t     transform.Transformation
}

func (d *warpedDomain) Dim() int { return d.inner.Dim() }

func (d *warpedDomain) IsDefinedAt(p geometry.Point) bool {
	if p.Dim() != d.inner.Dim() {
		return false
	}
	return d.inner.IsDefinedAt(d.t.Apply(p))
}

// Composed is a field warped by a spatial transformation:
// Value(x) = inner(t(x)).
type Composed struct {
	inner Field
	t     transform.Transformation
	dom   *warpedDomain
}

// Compose returns the warped field inner ∘ t.
func Compose(inner Field, t transform.Transformation) *Composed {
	return &Composed{
		inner: inner,
		t:     t,
		dom:   &warpedDomain{inner: inner.Domain(), t: t},
	}
}

func (c *Composed) Domain() domain.Domain { return c.dom }

func (c *Composed) Value(p geometry.Point) (float64, error) {
	if !c.dom.IsDefinedAt(p) {
		return 0, errUndefined(p)
	}
	return c.inner.Value(c.t.Apply(p))
}

// Transformation returns the warp applied to the inner field.
func (c *Composed) Transformation() transform.Transformation { return c.t }

// Inner returns the unwarped field.
func (c *Composed) Inner() Field { return c.inner }
