// Package sampler draws point sets from spatial regions for Monte Carlo
// estimation of image metrics.
package sampler

import "mrireg/pkg/geometry"

// PointWithWeight pairs a sample location with the sampling density it was
// drawn under. Estimators that need importance weighting divide by the
// weight; plain averaging estimators may ignore it.
type PointWithWeight struct {
	Point  geometry.Point
	Weight float64
}

// Sampler produces point sets over a fixed region. Deterministic samplers
// return the same set on every call; pseudo-random samplers advance their
// stream, so two calls yield different draws and a draw cannot be
// replayed. Wrap a sampler in Once when one draw must be shared.
type Sampler interface {
	// Sample returns one draw. Callers must not modify the returned
	// slice.
	Sample() []PointWithWeight

	// NumberOfPoints returns the size of each draw.
	NumberOfPoints() int

	// VolumeOfSampleRegion returns the measure of the region points are
	// drawn from.
	VolumeOfSampleRegion() float64
}
