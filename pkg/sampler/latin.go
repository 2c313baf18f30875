package sampler

import (
	"fmt"
	randv2 "math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"

	"mrireg/pkg/domain"
	"mrireg/pkg/geometry"
)

// LatinHypercube draws stratified points from a box: projected onto any
// axis, each of the n equal slabs contains exactly one point. Like Random
// it advances its stream on every call and is not safe for concurrent use.
type LatinHypercube struct {
	box    *domain.Box
	n      int
	weight float64
	dist   *distmv.Uniform
	src    randv2.Source
}

// NewLatinHypercube builds a stratified sampler over box producing n
// points per draw, seeded deterministically.
func NewLatinHypercube(box *domain.Box, n int, seed uint64) (*LatinHypercube, error) {
	if n < 1 {
		return nil, fmt.Errorf("sampler: %d points per draw, must be at least 1", n)
	}
	if box.IsEmpty() {
		return nil, fmt.Errorf("sampler: cannot sample an empty box")
	}
	min := box.Min()
	max := box.Max()
	bounds := make([]r1.Interval, box.Dim())
	for d := range bounds {
		bounds[d] = r1.Interval{Min: min[d], Max: max[d]}
	}
	src := randv2.NewPCG(seed, seed<<1|1)
	return &LatinHypercube{
		box:    box,
		n:      n,
		weight: densityOver(box, n),
		dist:   distmv.NewUniform(bounds, src),
		src:    src,
	}, nil
}

func (s *LatinHypercube) NumberOfPoints() int           { return s.n }
func (s *LatinHypercube) VolumeOfSampleRegion() float64 { return s.box.Volume() }

func (s *LatinHypercube) Sample() []PointWithWeight {
	batch := mat.NewDense(s.n, s.box.Dim(), nil)
	samplemv.LatinHypercube{Q: s.dist, Src: s.src}.Sample(batch)

	pts := make([]PointWithWeight, s.n)
	for i := range pts {
		p := make(geometry.Point, s.box.Dim())
		copy(p, batch.RawRowView(i))
		pts[i] = PointWithWeight{Point: p, Weight: s.weight}
	}
	return pts
}
