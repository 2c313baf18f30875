package transform

import "mrireg/pkg/geometry"

// NewRigidSpace2D returns the family of planar rigid motions about center:
// a rotation followed by a translation. The parameter vector is
// [tx, ty, angle].
func NewRigidSpace2D(center geometry.Point) Space {
	return NewProductSpace(NewTranslationSpace(2), NewRotationSpace2D(center))
}

// NewSimilaritySpace2D returns the family of planar similarity transforms
// about center: isotropic scaling, then rotation, then translation. The
// parameter vector is [tx, ty, angle, scale].
func NewSimilaritySpace2D(center geometry.Point) Space {
	return NewProductSpace(NewRigidSpace2D(center), NewScalingSpace(center))
}
