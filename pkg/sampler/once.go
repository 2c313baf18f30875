package sampler

import "sync"

// OnceSampler freezes the first draw of a base sampler and returns it on
// every subsequent call. It makes a pseudo-random sampler shareable: a
// metric evaluating a value and a derivative against the same draw wraps
// its sampler in Once, and concurrent callers all observe the one frozen
// set.
type OnceSampler struct {
	base Sampler
	once sync.Once
	pts  []PointWithWeight
}

// Once wraps base so that only its first draw is ever used.
func Once(base Sampler) *OnceSampler {
	return &OnceSampler{base: base}
}

func (o *OnceSampler) Sample() []PointWithWeight {
	o.once.Do(func() {
		o.pts = o.base.Sample()
	})
	return o.pts
}

func (o *OnceSampler) NumberOfPoints() int           { return o.base.NumberOfPoints() }
func (o *OnceSampler) VolumeOfSampleRegion() float64 { return o.base.VolumeOfSampleRegion() }
