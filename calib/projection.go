package calib

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/semkitti/spatialmath"
)

// ProjectionMatrix returns the 3x4 matrix P = K*[R|t] for a camera whose
// extrinsic transform is already expressed in the shared reference camera
// frame. All projection matrices of one sequence must be derived against the
// same reference frame to stay mutually consistent.
func ProjectionMatrix(k *mat.Dense, extrinsic spatialmath.Transform) *mat.Dense {
	rotation := extrinsic.Rotation()
	translation := extrinsic.Translation()

	rt := mat.NewDense(3, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rt.Set(i, j, rotation.At(i, j))
		}
	}
	rt.Set(0, 3, translation.X)
	rt.Set(1, 3, translation.Y)
	rt.Set(2, 3, translation.Z)

	p := mat.NewDense(3, 4, nil)
	p.Mul(k, rt)
	return p
}
