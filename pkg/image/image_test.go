package image

import (
	"errors"
	stdimage "image"
	"image/color"
	"math"
	"testing"

	"mrireg/pkg/domain"
	"mrireg/pkg/geometry"
)

// createTestImage builds a small deterministic image with distinct sample
// values on the given grid.
func createTestImage(t *testing.T, grid *domain.Grid) *DiscreteImage {
	t.Helper()
	samples := make([]float64, grid.PointCount())
	for i := range samples {
		samples[i] = math.Sin(float64(i)*0.7) + 0.05*float64(i)
	}
	img, err := New(grid, samples)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return img
}

func TestNewRejectsWrongSampleCount(t *testing.T) {
	grid := domain.MustGrid(geometry.Pt(0, 0), geometry.Vec(1, 1), []int{3, 3})
	if _, err := New(grid, make([]float64, 8)); err == nil {
		t.Error("8 samples for 9 grid points: want error")
	}
}

func TestInterpolateExactAtGridPoints(t *testing.T) {
	grids := []*domain.Grid{
		domain.MustGrid(geometry.Pt(0), geometry.Vec(0.5), []int{9}),
		domain.MustGrid(geometry.Pt(-1, 2), geometry.Vec(0.5, 1), []int{5, 6}),
		domain.MustGrid(geometry.Pt(0, 0, 0), geometry.Vec(1, 2, 0.5), []int{4, 3, 5}),
	}
	for _, grid := range grids {
		img := createTestImage(t, grid)
		for _, kernel := range []Kernel{Nearest, Linear, BSpline3} {
			f, err := Interpolate(img, kernel)
			if err != nil {
				t.Fatalf("Interpolate(%v): %v", kernel, err)
			}
			for lin := 0; lin < grid.PointCount(); lin++ {
				p := grid.PointAtLinear(lin)
				got, err := f.Value(p)
				if err != nil {
					t.Fatalf("%dD %v: Value(%v): %v", grid.Dim(), kernel, p, err)
				}
				want := img.At(lin)
				switch kernel {
				case BSpline3:
					if math.Abs(got-want) > 1e-9 {
						t.Errorf("%dD %v at %v: got %v, want %v", grid.Dim(), kernel, p, got, want)
					}
				default:
					if got != want {
						t.Errorf("%dD %v at %v: got %v, want %v (must be exact)", grid.Dim(), kernel, p, got, want)
					}
				}
			}
		}
	}
}

func TestLinearMidpointRamp(t *testing.T) {
	grid := domain.MustGrid(geometry.Pt(0), geometry.Vec(1), []int{5})
	img, err := New(grid, []float64{0, 1, 2, 3, 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f, err := Interpolate(img, Linear)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}

	v, err := f.Value(geometry.Pt(0.5))
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != 0.5 {
		t.Errorf("ramp midpoint: got %v, want exactly 0.5", v)
	}

	v, err = f.Value(geometry.Pt(2.25))
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if math.Abs(v-2.25) > 1e-12 {
		t.Errorf("ramp at 2.25: got %v, want 2.25", v)
	}
}

func TestInterpolationMargin(t *testing.T) {
	// One spacing past the last sample is still defined; beyond it is not.
	grid := domain.MustGrid(geometry.Pt(0), geometry.Vec(1), []int{3})
	img, err := New(grid, []float64{0, 1, 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, kernel := range []Kernel{Nearest, Linear, BSpline3} {
		f, err := Interpolate(img, kernel)
		if err != nil {
			t.Fatalf("Interpolate(%v): %v", kernel, err)
		}

		if !f.Domain().IsDefinedAt(geometry.Pt(3)) {
			t.Errorf("%v: point one spacing past the last sample must be defined", kernel)
		}
		if f.Domain().IsDefinedAt(geometry.Pt(3.0001)) {
			t.Errorf("%v: point beyond the margin must be undefined", kernel)
		}
		if _, err := f.Value(geometry.Pt(-0.5)); !errors.Is(err, domain.ErrUndefinedAt) {
			t.Errorf("%v: Value outside domain: got %v, want ErrUndefinedAt", kernel, err)
		}
		if _, err := f.Gradient(geometry.Pt(3.5)); !errors.Is(err, domain.ErrUndefinedAt) {
			t.Errorf("%v: Gradient outside domain: got %v, want ErrUndefinedAt", kernel, err)
		}
	}

	// The linear kernel extrapolates the last cell into the margin.
	f, err := Interpolate(img, Linear)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	v, err := f.Value(geometry.Pt(2.5))
	if err != nil {
		t.Fatalf("Value in margin: %v", err)
	}
	if math.Abs(v-2.5) > 1e-12 {
		t.Errorf("margin extrapolation: got %v, want 2.5", v)
	}
}

func TestLinearGradientMatchesSlope(t *testing.T) {
	// f(x, y) = x + 2y sampled on a grid is reproduced exactly by
	// multilinear interpolation, including its gradient.
	grid := domain.MustGrid(geometry.Pt(0, 0), geometry.Vec(0.5, 0.5), []int{7, 7})
	img := FromFunc(grid, func(p geometry.Point) float64 { return p[0] + 2*p[1] })

	f, err := Interpolate(img, Linear)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	for _, p := range []geometry.Point{
		geometry.Pt(0.3, 0.4),
		geometry.Pt(1.55, 2.1),
		geometry.Pt(2.9, 0.05),
	} {
		g, err := f.Gradient(p)
		if err != nil {
			t.Fatalf("Gradient(%v): %v", p, err)
		}
		if !g.EqualWithin(geometry.Vec(1, 2), 1e-10) {
			t.Errorf("Gradient(%v): got %v, want (1, 2)", p, g)
		}
	}
}

func TestBSplineReproducesRampAwayFromBoundary(t *testing.T) {
	// Cubic splines reproduce linear functions. The mirror boundary
	// condition perturbs that near the edges, but the perturbation decays
	// geometrically, so samples deep inside a long ramp see none of it.
	grid := domain.MustGrid(geometry.Pt(0), geometry.Vec(1), []int{33})
	img := FromFunc(grid, func(p geometry.Point) float64 { return p[0] })
	f, err := Interpolate(img, BSpline3)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}

	for _, x := range []float64{14.5, 15.25, 16.5, 17.75} {
		v, err := f.Value(geometry.Pt(x))
		if err != nil {
			t.Fatalf("Value(%v): %v", x, err)
		}
		if math.Abs(v-x) > 1e-6 {
			t.Errorf("ramp at %v: got %v, want %v", x, v, x)
		}
		g, err := f.Gradient(geometry.Pt(x))
		if err != nil {
			t.Fatalf("Gradient(%v): %v", x, err)
		}
		if math.Abs(g[0]-1) > 1e-6 {
			t.Errorf("ramp slope at %v: got %v, want 1", x, g[0])
		}
	}
}

func TestBSplineGradientMatchesFiniteDifference(t *testing.T) {
	grid := domain.MustGrid(geometry.Pt(0, 0), geometry.Vec(1, 1), []int{8, 8})
	img := FromFunc(grid, func(p geometry.Point) float64 {
		return math.Sin(0.8*p[0]) * math.Cos(0.5*p[1])
	})
	f, err := Interpolate(img, BSpline3)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}

	const h = 1e-6
	for _, p := range []geometry.Point{
		geometry.Pt(3.3, 4.1),
		geometry.Pt(2.05, 2.95),
	} {
		g, err := f.Gradient(p)
		if err != nil {
			t.Fatalf("Gradient(%v): %v", p, err)
		}
		for d := 0; d < 2; d++ {
			plus := p.Clone()
			minus := p.Clone()
			plus[d] += h
			minus[d] -= h
			vp, err1 := f.Value(plus)
			vm, err2 := f.Value(minus)
			if err1 != nil || err2 != nil {
				t.Fatalf("Value near %v: %v %v", p, err1, err2)
			}
			want := (vp - vm) / (2 * h)
			if math.Abs(g[d]-want) > 1e-5 {
				t.Errorf("Gradient(%v)[%d]: got %v, want %v", p, d, g[d], want)
			}
		}
	}
}

func TestNearestValueAndGradient(t *testing.T) {
	grid := domain.MustGrid(geometry.Pt(0), geometry.Vec(1), []int{4})
	img, err := New(grid, []float64{10, 20, 30, 40})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f, err := Interpolate(img, Nearest)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}

	v, err := f.Value(geometry.Pt(1.4))
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != 20 {
		t.Errorf("nearest at 1.4: got %v, want 20", v)
	}

	g, err := f.Gradient(geometry.Pt(1.4))
	if err != nil {
		t.Fatalf("Gradient: %v", err)
	}
	if g.Norm() != 0 {
		t.Errorf("nearest gradient: got %v, want zero", g)
	}
}

func TestMapNormalizeMinMax(t *testing.T) {
	grid := domain.MustGrid(geometry.Pt(0), geometry.Vec(1), []int{4})
	img, err := New(grid, []float64{2, 4, 6, 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	min, max := img.MinMax()
	if min != 2 || max != 10 {
		t.Errorf("MinMax: got (%v, %v), want (2, 10)", min, max)
	}

	n := img.Normalize()
	nmin, nmax := n.MinMax()
	if nmin != 0 || nmax != 1 {
		t.Errorf("Normalize: got range (%v, %v), want (0, 1)", nmin, nmax)
	}
	// Original untouched.
	if img.At(0) != 2 {
		t.Error("Normalize mutated the source image")
	}

	doubled := img.Map(func(v float64) float64 { return 2 * v })
	if doubled.At(3) != 20 {
		t.Errorf("Map: got %v, want 20", doubled.At(3))
	}
}

func TestParseKernel(t *testing.T) {
	for _, c := range []struct {
		name string
		want Kernel
	}{
		{"nearest", Nearest},
		{"linear", Linear},
		{"bspline", BSpline3},
		{"cubic", BSpline3},
	} {
		got, err := ParseKernel(c.name)
		if err != nil {
			t.Fatalf("ParseKernel(%q): %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("ParseKernel(%q): got %v, want %v", c.name, got, c.want)
		}
	}
	if _, err := ParseKernel("sinc"); err == nil {
		t.Error("ParseKernel(sinc): want error")
	}
}

func TestGrayRoundTrip(t *testing.T) {
	src := stdimage.NewGray16(stdimage.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			src.SetGray16(x, y, color.Gray16{Y: uint16(x*1000 + y*300)})
		}
	}

	img, err := FromGray(src)
	if err != nil {
		t.Fatalf("FromGray: %v", err)
	}
	if got := img.Grid().Size(); got[0] != 4 || got[1] != 3 {
		t.Fatalf("FromGray size: got %v, want [4 3]", got)
	}

	back, err := img.ToGray16()
	if err != nil {
		t.Fatalf("ToGray16: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if back.Gray16At(x, y).Y != src.Gray16At(x, y).Y {
				t.Errorf("pixel (%d,%d): got %d, want %d", x, y, back.Gray16At(x, y).Y, src.Gray16At(x, y).Y)
			}
		}
	}
}

func TestResample(t *testing.T) {
	grid := domain.MustGrid(geometry.Pt(0), geometry.Vec(1), []int{5})
	img, err := New(grid, []float64{0, 1, 2, 3, 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f, err := Interpolate(img, Linear)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}

	// Resampling on the same grid reproduces the samples.
	same := Resample(f, grid, -1)
	for i := 0; i < grid.PointCount(); i++ {
		if same.At(i) != img.At(i) {
			t.Errorf("Resample identity at %d: got %v, want %v", i, same.At(i), img.At(i))
		}
	}

	// A wider grid picks up the fill value outside the field's support.
	wide := domain.MustGrid(geometry.Pt(-2), geometry.Vec(1), []int{9})
	out := Resample(f, wide, -1)
	if out.At(0) != -1 || out.At(1) != -1 {
		t.Errorf("Resample fill: got %v, %v, want -1, -1", out.At(0), out.At(1))
	}
	if out.At(2) != 0 {
		t.Errorf("Resample at field origin: got %v, want 0", out.At(2))
	}
}

var benchValue float64

func benchmarkInterpolate(b *testing.B, kernel Kernel) {
	grid := domain.MustGrid(geometry.Pt(0, 0), geometry.Vec(1, 1), []int{128, 128})
	img := FromFunc(grid, func(p geometry.Point) float64 {
		return math.Sin(0.11*p[0]) * math.Cos(0.07*p[1])
	})
	f, err := Interpolate(img, kernel)
	if err != nil {
		b.Fatalf("Interpolate: %v", err)
	}
	p := geometry.Pt(63.37, 41.81)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v, err := f.Value(p)
		if err != nil {
			b.Fatal(err)
		}
		benchValue = v
	}
}

func BenchmarkInterpolateLinear(b *testing.B)  { benchmarkInterpolate(b, Linear) }
func BenchmarkInterpolateBSpline(b *testing.B) { benchmarkInterpolate(b, BSpline3) }
