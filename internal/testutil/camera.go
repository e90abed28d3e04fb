package testutil

import (
	"sync"

	"github.com/roach88/campusnav/internal/viewport"
)

// Flight records one FakeCamera.FlyTo call.
type Flight struct {
	Target   viewport.LatLng `json:"target" yaml:"target"`
	Zoom     float64         `json:"zoom" yaml:"zoom"`
	Duration string          `json:"duration" yaml:"duration"`
}

// FakeCamera is a viewport.Camera that jumps straight to every target and
// records each flight.
type FakeCamera struct {
	mu      sync.Mutex
	center  viewport.LatLng
	zoom    float64
	flights []Flight
}

var _ viewport.Camera = (*FakeCamera)(nil)

// NewFakeCamera creates a camera at center and zoom.
func NewFakeCamera(center viewport.LatLng, zoom float64) *FakeCamera {
	return &FakeCamera{center: center, zoom: zoom}
}

// Zoom returns the current zoom.
func (c *FakeCamera) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// Center returns the current center.
func (c *FakeCamera) Center() viewport.LatLng {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

// FlyTo records the flight and moves the camera.
func (c *FakeCamera) FlyTo(target viewport.LatLng, zoom float64, opts viewport.FlyOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flights = append(c.flights, Flight{Target: target, Zoom: zoom, Duration: opts.Duration.String()})
	c.center = target
	c.zoom = zoom
}

// SetView moves the camera without recording a flight (user pan/zoom).
func (c *FakeCamera) SetView(center viewport.LatLng, zoom float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.center = center
	c.zoom = zoom
}

// Flights returns all recorded flights.
func (c *FakeCamera) Flights() []Flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Flight(nil), c.flights...)
}
