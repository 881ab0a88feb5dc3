package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// OrientationMap is a fixed permutation/sign change of basis between two axis
// conventions, held as a homogeneous matrix so it can right-multiply a
// Transform. Column c of the rotation block is target axis c expressed in the
// source convention's axes.
type OrientationMap struct {
	m *mat.Dense
}

func newOrientationMap(rotation [9]float64) OrientationMap {
	om := OrientationMap{mat.NewDense(4, 4, nil)}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			om.m.Set(i, j, rotation[i*3+j])
		}
	}
	om.m.Set(3, 3, 1)
	return om
}

var (
	// CarlaCamToKittiCam maps the simulator's camera axes (x forward,
	// y right, z up, left-handed) onto the dataset's camera axes (x right,
	// y down, z forward, right-handed).
	CarlaCamToKittiCam = newOrientationMap([9]float64{
		0, 0, 1,
		1, 0, 0,
		0, -1, 0,
	})

	// LeftToRightHanded flips the lateral axis only. The lidar's native axes
	// already match the dataset's apart from handedness, so no permutation
	// applies.
	LeftToRightHanded = newOrientationMap([9]float64{
		1, 0, 0,
		0, -1, 0,
		0, 0, 1,
	})
)

// TransformPoint expresses a bare point under the map's target convention.
func (om OrientationMap) TransformPoint(p r3.Vector) r3.Vector {
	return r3.Vector{
		X: om.m.At(0, 0)*p.X + om.m.At(1, 0)*p.Y + om.m.At(2, 0)*p.Z,
		Y: om.m.At(0, 1)*p.X + om.m.At(1, 1)*p.Y + om.m.At(2, 1)*p.Z,
		Z: om.m.At(0, 2)*p.X + om.m.At(1, 2)*p.Y + om.m.At(2, 2)*p.Z,
	}
}
