// Package sensor describes the simulator-facing capture interface: a device
// that signals per-cycle readiness and exposes a borrowed snapshot of its
// latest reading. The simulator's actor subsystem implements it; this module
// only consumes it.
package sensor

import (
	"context"
	"image"

	"github.com/golang/geo/r3"

	"go.viam.com/semkitti/spatialmath"
)

// A Sample is a sensor's most recent reading. Only the fields matching the
// sensor's modality are populated. The sensor owns the sample; callers read
// it as a snapshot once notified it is ready and must not hold it across
// cycles.
type Sample struct {
	// Timestamp in seconds, monotonic within a sequence.
	Timestamp float64
	// Frame is the simulator's own frame index for the reading.
	Frame int64
	// Image holds a camera's frame buffer.
	Image image.Image
	// Points holds a semantic lidar's returns.
	Points []Point
	// Transform is the sensor's rigid pose in the simulator world, in the
	// sensor's native convention.
	Transform spatialmath.Transform
}

// Point is one semantic lidar return.
type Point struct {
	Position   r3.Vector
	SemanticID uint32
	InstanceID uint32
}

// CameraAttributes are fixed for the lifetime of a sequence.
type CameraAttributes struct {
	ImageSizeX int
	ImageSizeY int
	// FOV is the horizontal field of view in degrees.
	FOV float64
}

// Sensor is one simulated device.
type Sensor interface {
	// Name identifies the sensor for logs.
	Name() string

	// WaitReady blocks until the sensor has produced its sample for the
	// current capture cycle, or the context expires.
	WaitReady(ctx context.Context) error

	// Sample returns a borrowed snapshot of the latest reading. Only valid
	// after WaitReady has returned for the cycle.
	Sample() *Sample
}

// Camera is a sensor that also carries image attributes.
type Camera interface {
	Sensor
	Attributes() CameraAttributes
}
