package sampler

import (
	"fmt"
	"math/rand"

	"mrireg/pkg/domain"
	"mrireg/pkg/geometry"
)

// Random draws points uniformly from a box. Each call to Sample advances
// the underlying stream and returns a fresh draw; a Random sampler is not
// safe for concurrent use. Wrap it in Once to share a single draw.
type Random struct {
	box    *domain.Box
	n      int
	weight float64
	rng    *rand.Rand
}

// NewRandom builds a uniform sampler over box producing n points per draw,
// seeded deterministically.
func NewRandom(box *domain.Box, n int, seed int64) (*Random, error) {
	if n < 1 {
		return nil, fmt.Errorf("sampler: %d points per draw, must be at least 1", n)
	}
	if box.IsEmpty() {
		return nil, fmt.Errorf("sampler: cannot sample an empty box")
	}
	return &Random{
		box:    box,
		n:      n,
		weight: densityOver(box, n),
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

func (s *Random) NumberOfPoints() int           { return s.n }
func (s *Random) VolumeOfSampleRegion() float64 { return s.box.Volume() }

func (s *Random) Sample() []PointWithWeight {
	dim := s.box.Dim()
	min := s.box.Min()
	max := s.box.Max()

	pts := make([]PointWithWeight, s.n)
	for i := range pts {
		p := make(geometry.Point, dim)
		for d := 0; d < dim; d++ {
			p[d] = min[d] + s.rng.Float64()*(max[d]-min[d])
		}
		pts[i] = PointWithWeight{Point: p, Weight: s.weight}
	}
	return pts
}
