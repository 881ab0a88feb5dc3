// Package spatialmath defines the rigid transform math used to normalize
// sensor poses across coordinate conventions.
package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Transform is a 4x4 homogeneous rigid transform (rotation + translation)
// expressed in some orientation convention. Two transforms only compose
// once both are expressed in the same convention; ChangeOrientation must
// therefore run before RelativeTo, every time.
type Transform struct {
	m *mat.Dense
}

// NewTransform returns a transform from 16 row-major elements. Anything
// other than a well-formed homogeneous matrix is a programmer error.
func NewTransform(elements []float64) Transform {
	if len(elements) != 16 {
		panic("spatialmath: a transform requires 16 row-major elements")
	}
	data := make([]float64, 16)
	copy(data, elements)
	return Transform{mat.NewDense(4, 4, data)}
}

// NewZeroTransform returns the identity transform.
func NewZeroTransform() Transform {
	t := Transform{mat.NewDense(4, 4, nil)}
	for i := 0; i < 4; i++ {
		t.m.Set(i, i, 1)
	}
	return t
}

// NewTransformFromParts builds a transform from a 3x3 rotation and a translation.
func NewTransformFromParts(rotation *mat.Dense, translation r3.Vector) Transform {
	t := NewZeroTransform()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t.m.Set(i, j, rotation.At(i, j))
		}
	}
	t.m.Set(0, 3, translation.X)
	t.m.Set(1, 3, translation.Y)
	t.m.Set(2, 3, translation.Z)
	return t
}

// Mat returns a copy of the underlying 4x4 matrix.
func (t Transform) Mat() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	m.Copy(t.m)
	return m
}

// Rotation returns a copy of the top-left 3x3 rotation block.
func (t Transform) Rotation() *mat.Dense {
	r := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, t.m.At(i, j))
		}
	}
	return r
}

// Translation returns the rightmost column as a vector.
func (t Transform) Translation() r3.Vector {
	return r3.Vector{X: t.m.At(0, 3), Y: t.m.At(1, 3), Z: t.m.At(2, 3)}
}

// Invert returns the rigid inverse, using the transpose of the orthonormal
// rotation block rather than a general matrix inversion.
func (t Transform) Invert() Transform {
	inv := NewZeroTransform()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			inv.m.Set(i, j, t.m.At(j, i))
		}
	}
	trans := t.Translation()
	for i := 0; i < 3; i++ {
		inv.m.Set(i, 3, -(inv.m.At(i, 0)*trans.X + inv.m.At(i, 1)*trans.Y + inv.m.At(i, 2)*trans.Z))
	}
	return inv
}

// ChangeOrientation re-expresses the transform's body axes under the given
// orientation map. The world frame and the translation are untouched.
func (t Transform) ChangeOrientation(om OrientationMap) Transform {
	out := mat.NewDense(4, 4, nil)
	out.Mul(t.m, om.m)
	return Transform{out}
}

// RelativeTo expresses t in reference's frame instead of the world's. When t
// and reference are the same pose the result is the identity.
func (t Transform) RelativeTo(reference Transform) Transform {
	out := mat.NewDense(4, 4, nil)
	out.Mul(reference.Invert().m, t.m)
	return Transform{out}
}

// Row3x4 flattens the top three rows row-major into 12 values.
func (t Transform) Row3x4() []float64 {
	out := make([]float64, 0, 12)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			out = append(out, t.m.At(i, j))
		}
	}
	return out
}
