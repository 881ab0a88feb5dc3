// Package fake provides deterministic in-memory sensors for tests and demos.
package fake

import (
	"context"
	"sync"

	"go.viam.com/semkitti/sensor"
)

// device carries the readiness/snapshot machinery shared by all fake sensors.
// Publishing a sample arms the device; WaitReady then returns immediately
// until the test driver publishes again for the next cycle.
type device struct {
	name string

	mu     sync.Mutex
	ready  chan struct{}
	armed  bool
	sample *sensor.Sample
}

// Name identifies the sensor for logs.
func (d *device) Name() string {
	return d.name
}

// Publish installs the sample for the current capture cycle and signals
// readiness.
func (d *device) Publish(s *sensor.Sample) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sample = s
	if !d.armed {
		d.armed = true
		close(d.ready)
	}
}

// WaitReady blocks until a sample has been published or the context expires.
func (d *device) WaitReady(ctx context.Context) error {
	d.mu.Lock()
	ready := d.ready
	d.mu.Unlock()
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sample returns the latest published sample.
func (d *device) Sample() *sensor.Sample {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sample
}

// Camera is a fake camera whose samples are supplied by the test driver.
type Camera struct {
	device
	attrs sensor.CameraAttributes
}

// NewCamera returns a fake camera with the given attributes.
func NewCamera(name string, attrs sensor.CameraAttributes) *Camera {
	return &Camera{
		device: device{name: name, ready: make(chan struct{})},
		attrs:  attrs,
	}
}

// Attributes returns the camera's fixed image attributes.
func (c *Camera) Attributes() sensor.CameraAttributes {
	return c.attrs
}

// SemanticLidar is a fake semantic lidar whose samples are supplied by the
// test driver.
type SemanticLidar struct {
	device
}

// NewSemanticLidar returns a fake semantic lidar.
func NewSemanticLidar(name string) *SemanticLidar {
	return &SemanticLidar{device: device{name: name, ready: make(chan struct{})}}
}
