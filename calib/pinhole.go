// Package calib derives the camera calibration artifacts of a capture
// sequence: pinhole intrinsics and 3x4 projection matrices that share one
// reference camera frame.
package calib

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PinholeCameraIntrinsics holds the parameters necessary to do a perspective
// projection of a 3D scene to the 2D image plane.
type PinholeCameraIntrinsics struct {
	Width  int
	Height int
	Fx     float64
	Fy     float64
	Ppx    float64
	Ppy    float64
}

// NewPinholeCameraIntrinsicsFromFOV derives intrinsics from an image size and
// a horizontal field of view in degrees. The focal length lands on both
// diagonal terms and the principal point at the image center.
func NewPinholeCameraIntrinsicsFromFOV(width, height int, fovDegrees float64) PinholeCameraIntrinsics {
	focal := float64(width) / (2.0 * math.Tan(fovDegrees*math.Pi/360.0))
	return PinholeCameraIntrinsics{
		Width:  width,
		Height: height,
		Fx:     focal,
		Fy:     focal,
		Ppx:    float64(width) / 2.0,
		Ppy:    float64(height) / 2.0,
	}
}

// CameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *PinholeCameraIntrinsics) CameraMatrix() *mat.Dense {
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}
