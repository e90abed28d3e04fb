// Package viewport moves the map camera in response to selection changes.
//
// The controller only talks to the map through the narrow Camera contract,
// so any map renderer (or a test fake) can sit behind it.
package viewport

import (
	"log/slog"
	"time"

	"github.com/roach88/campusnav/internal/facility"
)

// Defaults tuned for a single campus at street level.
const (
	DefaultMinSelectZoom = 17
	DefaultZoom          = 16
	DefaultFlyDuration   = 500 * time.Millisecond
)

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// FlyOptions controls a camera animation.
type FlyOptions struct {
	Duration time.Duration
}

// Camera is the camera-control surface of a map.
type Camera interface {
	Zoom() float64
	Center() LatLng
	FlyTo(target LatLng, zoom float64, opts FlyOptions)
}

// Options configures a Controller.
type Options struct {
	// MinSelectZoom is the zoom a selection flies to when the map is
	// zoomed out further than that.
	MinSelectZoom float64
	// DefaultZoom is the zoom used when a selection clears.
	DefaultZoom float64
	// FlyDuration is the length of every animation.
	FlyDuration time.Duration
}

// DefaultOptions returns the default Options.
func DefaultOptions() Options {
	return Options{
		MinSelectZoom: DefaultMinSelectZoom,
		DefaultZoom:   DefaultZoom,
		FlyDuration:   DefaultFlyDuration,
	}
}

// Controller flies the camera to the selected facility and back out when
// the selection clears. It acts on selection changes only: confirming the
// same selection again does not re-animate.
//
// Not safe for concurrent use; driven by the session loop.
type Controller struct {
	camera Camera
	opts   Options
	logger *slog.Logger

	prevID         string
	clearSelection func()
}

// NewController creates a controller for camera. Zero-valued option fields
// take their defaults.
func NewController(camera Camera, opts Options) *Controller {
	def := DefaultOptions()
	if opts.MinSelectZoom <= 0 {
		opts.MinSelectZoom = def.MinSelectZoom
	}
	if opts.DefaultZoom <= 0 {
		opts.DefaultZoom = def.DefaultZoom
	}
	if opts.FlyDuration <= 0 {
		opts.FlyDuration = def.FlyDuration
	}
	return &Controller{
		camera: camera,
		opts:   opts,
		logger: slog.Default(),
	}
}

// SetLogger replaces the logger. nil restores slog.Default().
func (c *Controller) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	c.logger = l
}

// SetClearSelection registers the click-to-deselect action. nil unregisters.
func (c *Controller) SetClearSelection(fn func()) {
	c.clearSelection = fn
}

// SelectedID returns the id of the last observed selection.
func (c *Controller) SelectedID() string {
	return c.prevID
}

// Observe reports the current resolved selection (nil when none).
// Returns true if the camera was animated.
func (c *Controller) Observe(selected *facility.Facility) bool {
	id := ""
	if selected != nil {
		id = selected.ID
	}
	if id == c.prevID {
		return false
	}
	hadSelection := c.prevID != ""
	c.prevID = id

	if selected != nil {
		if !selected.HasLocation() {
			c.logger.Debug("selected facility has no location", "facility_id", id)
			return false
		}
		zoom := c.camera.Zoom()
		if zoom < c.opts.MinSelectZoom {
			zoom = c.opts.MinSelectZoom
		}
		target := LatLng{Lat: selected.Lat, Lng: selected.Lng}
		c.camera.FlyTo(target, zoom, FlyOptions{Duration: c.opts.FlyDuration})
		c.logger.Debug("camera flying to selection", "facility_id", id, "zoom", zoom)
		return true
	}

	if !hadSelection {
		return false
	}
	center := c.camera.Center()
	c.camera.FlyTo(center, c.opts.DefaultZoom, FlyOptions{Duration: c.opts.FlyDuration})
	c.logger.Debug("camera zooming out after deselect", "zoom", c.opts.DefaultZoom)
	return true
}

// HandleMapClick processes a raw click on the map surface. Clicks that
// originated from a marker are ignored; the marker's own handler selects.
// Returns true if the clear-selection action ran.
func (c *Controller) HandleMapClick(fromMarker bool) bool {
	if fromMarker || c.clearSelection == nil {
		return false
	}
	c.clearSelection()
	return true
}
