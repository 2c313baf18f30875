package transform

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"mrireg/pkg/geometry"
)

func TestTranslationApply(t *testing.T) {
	s := NewTranslationSpace(2)
	tr, err := s.For([]float64{3, -1})
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	got := tr.Apply(geometry.Pt(1, 1))
	if !got.EqualWithin(geometry.Pt(4, 0), 1e-12) {
		t.Errorf("Apply: got %v, want (4, 0)", got)
	}
}

func TestForRejectsWrongParameterCount(t *testing.T) {
	spaces := []Space{
		NewTranslationSpace(2),
		NewRotationSpace2D(geometry.Pt(0, 0)),
		NewScalingSpace(geometry.Pt(0, 0)),
		NewRigidSpace2D(geometry.Pt(0, 0)),
	}
	for _, s := range spaces {
		bad := make([]float64, s.NumParameters()+1)
		if _, err := s.For(bad); err == nil {
			t.Errorf("%T.For: wrong length accepted", s)
		} else if !errors.Is(err, geometry.ErrDimensionMismatch) {
			t.Errorf("%T.For: got %v, want ErrDimensionMismatch", s, err)
		}
	}
}

func TestIdentityParameters(t *testing.T) {
	p := geometry.Pt(1.3, -0.7)
	spaces := []Space{
		NewTranslationSpace(2),
		NewRotationSpace2D(geometry.Pt(0.5, 0.5)),
		NewScalingSpace(geometry.Pt(2, 2)),
		NewRigidSpace2D(geometry.Pt(0, 0)),
		NewSimilaritySpace2D(geometry.Pt(1, 0)),
	}
	for _, s := range spaces {
		tr, err := s.For(s.Identity())
		if err != nil {
			t.Fatalf("%T.For(identity): %v", s, err)
		}
		if got := tr.Apply(p); !got.EqualWithin(p, 1e-12) {
			t.Errorf("%T identity moved %v to %v", s, p, got)
		}
	}
}

func TestRotationApply(t *testing.T) {
	s := NewRotationSpace2D(geometry.Pt(1, 1))
	tr, err := s.For([]float64{math.Pi / 2})
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	// A quarter turn about (1,1) takes (2,1) to (1,2).
	got := tr.Apply(geometry.Pt(2, 1))
	if !got.EqualWithin(geometry.Pt(1, 2), 1e-12) {
		t.Errorf("Apply: got %v, want (1, 2)", got)
	}
}

func TestScalingApply(t *testing.T) {
	s := NewScalingSpace(geometry.Pt(1, 1))
	tr, err := s.For([]float64{2})
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	got := tr.Apply(geometry.Pt(2, 0))
	if !got.EqualWithin(geometry.Pt(3, -1), 1e-12) {
		t.Errorf("Apply: got %v, want (3, -1)", got)
	}
}

func TestProductApplyOrder(t *testing.T) {
	// Translate-then-rotate differs from rotate-then-translate; the product
	// applies the inner factor first.
	rot := NewRotationSpace2D(geometry.Pt(0, 0))
	tra := NewTranslationSpace(2)

	s := NewProductSpace(tra, rot) // rotate, then translate
	tr, err := s.For([]float64{1, 0, math.Pi / 2})
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	got := tr.Apply(geometry.Pt(1, 0))
	if !got.EqualWithin(geometry.Pt(1, 1), 1e-12) {
		t.Errorf("Apply: got %v, want (1, 1)", got)
	}
}

// numericalParameterJacobian approximates the parameter Jacobian of s at
// (params, p) with central differences.
func numericalParameterJacobian(t *testing.T, s Space, params []float64, p geometry.Point) *mat.Dense {
	t.Helper()
	const h = 1e-6
	dim := s.Dim()
	j := mat.NewDense(dim, len(params), nil)
	for c := range params {
		plus := append([]float64(nil), params...)
		minus := append([]float64(nil), params...)
		plus[c] += h
		minus[c] -= h
		tp, err := s.For(plus)
		if err != nil {
			t.Fatalf("For: %v", err)
		}
		tm, err := s.For(minus)
		if err != nil {
			t.Fatalf("For: %v", err)
		}
		qp := tp.Apply(p)
		qm := tm.Apply(p)
		for r := 0; r < dim; r++ {
			j.Set(r, c, (qp[r]-qm[r])/(2*h))
		}
	}
	return j
}

func TestParameterJacobians(t *testing.T) {
	p := geometry.Pt(1.7, -0.4)
	cases := []struct {
		name   string
		space  Space
		params []float64
	}{
		{"translation", NewTranslationSpace(2), []float64{0.3, -1.2}},
		{"rotation", NewRotationSpace2D(geometry.Pt(0.2, 0.1)), []float64{0.7}},
		{"scaling", NewScalingSpace(geometry.Pt(0.5, 0.5)), []float64{1.3}},
		{"rigid", NewRigidSpace2D(geometry.Pt(0, 0)), []float64{0.2, -0.1, 0.4}},
		{"similarity", NewSimilaritySpace2D(geometry.Pt(0, 0)), []float64{0.2, -0.1, 0.4, 1.1}},
	}
	for _, c := range cases {
		tr, err := c.space.For(c.params)
		if err != nil {
			t.Fatalf("%s: For: %v", c.name, err)
		}
		got := tr.ParameterJacobian(p)
		want := numericalParameterJacobian(t, c.space, c.params, p)

		r, cols := got.Dims()
		wr, wc := want.Dims()
		if r != wr || cols != wc {
			t.Fatalf("%s: Jacobian is %dx%d, want %dx%d", c.name, r, cols, wr, wc)
		}
		for i := 0; i < r; i++ {
			for j := 0; j < cols; j++ {
				if math.Abs(got.At(i, j)-want.At(i, j)) > 1e-5 {
					t.Errorf("%s: Jacobian[%d,%d] = %v, want %v",
						c.name, i, j, got.At(i, j), want.At(i, j))
				}
			}
		}
	}
}

func TestPointJacobians(t *testing.T) {
	const h = 1e-6
	p := geometry.Pt(0.9, 1.4)
	cases := []struct {
		name   string
		space  Space
		params []float64
	}{
		{"rotation", NewRotationSpace2D(geometry.Pt(0, 0)), []float64{0.6}},
		{"scaling", NewScalingSpace(geometry.Pt(1, 1)), []float64{0.8}},
		{"rigid", NewRigidSpace2D(geometry.Pt(0.3, 0)), []float64{1, 2, -0.5}},
	}
	for _, c := range cases {
		tr, err := c.space.For(c.params)
		if err != nil {
			t.Fatalf("%s: For: %v", c.name, err)
		}
		got := tr.PointJacobian(p)
		for col := 0; col < 2; col++ {
			plus := p.Clone()
			minus := p.Clone()
			plus[col] += h
			minus[col] -= h
			qp := tr.Apply(plus)
			qm := tr.Apply(minus)
			for row := 0; row < 2; row++ {
				want := (qp[row] - qm[row]) / (2 * h)
				if math.Abs(got.At(row, col)-want) > 1e-5 {
					t.Errorf("%s: PointJacobian[%d,%d] = %v, want %v",
						c.name, row, col, got.At(row, col), want)
				}
			}
		}
	}
}

func TestProductIdentityAndParameterLayout(t *testing.T) {
	s := NewRigidSpace2D(geometry.Pt(0, 0))
	if s.NumParameters() != 3 {
		t.Fatalf("NumParameters: got %d, want 3", s.NumParameters())
	}
	id := s.Identity()
	want := []float64{0, 0, 0}
	for i := range want {
		if id[i] != want[i] {
			t.Errorf("Identity[%d] = %v, want %v", i, id[i], want[i])
		}
	}

	// Pure translation through the rigid family.
	tr, err := s.For([]float64{2, 3, 0})
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	got := tr.Apply(geometry.Pt(1, 1))
	if !got.EqualWithin(geometry.Pt(3, 4), 1e-12) {
		t.Errorf("rigid [2,3,0]: got %v, want (3, 4)", got)
	}
}
