package mapview

import (
	"math"

	"github.com/sirupsen/logrus"
)

const (
	// MaxGridZoom is the highest integer zoom of the tile grid. Zoom levels above
	// it are displayed by scaling the grid at this level.
	MaxGridZoom = 20

	// MaxZoomLevel is the highest zoom level a viewport lock may allow.
	MaxZoomLevel = 32

	// DefaultTileSize is the pixel size of one grid tile.
	DefaultTileSize = 256

	// DefaultMaxPitch is the default tilt limit in degrees.
	DefaultMaxPitch = 50

	// BaseSearchRadius is the point query radius in pixels at low zoom.
	BaseSearchRadius = 32
)

// ZoomBehavior selects how relative zoom steps (ZoomBy) are quantized.
type ZoomBehavior int

const (
	// ZoomBehaviorFixed snaps relative zoom steps to whole zoom levels.
	ZoomBehaviorFixed ZoomBehavior = iota

	// ZoomBehaviorFloat keeps fractional zoom levels.
	ZoomBehaviorFloat
)

// String returns the configuration name of the behavior.
func (z ZoomBehavior) String() string {
	switch z {
	case ZoomBehaviorFixed:
		return "fixed"
	case ZoomBehaviorFloat:
		return "float"
	default:
		return "unknown"
	}
}

// ParseZoomBehavior maps a configuration name to a ZoomBehavior.
func ParseZoomBehavior(s string) (ZoomBehavior, bool) {
	switch s {
	case "fixed", "":
		return ZoomBehaviorFixed, true
	case "float":
		return ZoomBehaviorFloat, true
	default:
		return ZoomBehaviorFixed, false
	}
}

// Options configures a viewport controller.
type Options struct {
	// Center is the initial geographic center.
	Center GeoPoint

	// Zoom is the initial (floating) zoom level.
	Zoom float64

	// Rotation and Pitch are the initial camera angles in degrees.
	Rotation float64
	Pitch    float64

	// Width and Height are the initial screen size in pixels.
	Width  float64
	Height float64

	// TileSize is the pixel size of one grid tile. Default: 256
	TileSize float64

	// MinZoom and MaxZoom form the initial viewport lock range.
	MinZoom float64
	MaxZoom float64

	// MaxPitch limits SetPitch in degrees. Default: 50
	MaxPitch float64

	// ZoomBehavior quantizes ZoomBy steps. Default: ZoomBehaviorFixed
	ZoomBehavior ZoomBehavior

	// Display receives transform and grid updates. If nil, a SoftwareDisplay is used.
	Display Display

	// Container reports the host element size for ResizeToContainer. Optional.
	Container Container

	// Animator runs animated zoom requests. If nil, animations apply immediately.
	Animator Animator

	// HitTester evaluates feature geometry for Map queries. If nil, a
	// GeometryHitTester is used.
	HitTester HitTester

	// Logger receives debug output. If nil, logrus.StandardLogger() is used.
	Logger logrus.FieldLogger
}

// DefaultOptions returns options for an 800x600 view of the whole world.
func DefaultOptions() Options {
	return Options{
		Center:       GeoPoint{Lon: 0, Lat: 0},
		Zoom:         2,
		Width:        800,
		Height:       600,
		TileSize:     DefaultTileSize,
		MinZoom:      0,
		MaxZoom:      MaxGridZoom,
		MaxPitch:     DefaultMaxPitch,
		ZoomBehavior: ZoomBehaviorFixed,
	}
}

func (o Options) validate() error {
	if !isFinite(o.Center.Lon) || !isFinite(o.Center.Lat) {
		return &ConfigError{Field: "Center", Reason: "must be finite"}
	}
	if !isFinite(o.Zoom) {
		return &ConfigError{Field: "Zoom", Reason: "must be finite"}
	}
	if !isFinite(o.Width) || !isFinite(o.Height) || o.Width < 0 || o.Height < 0 {
		return &ConfigError{Field: "Width/Height", Reason: "must be finite and non-negative"}
	}
	if !(o.TileSize > 0) || !isFinite(o.TileSize) {
		return &ConfigError{Field: "TileSize", Reason: "must be positive"}
	}
	if o.MinZoom < 0 || o.MaxZoom > MaxZoomLevel || o.MinZoom > o.MaxZoom {
		return &ConfigError{Field: "MinZoom/MaxZoom", Reason: "must satisfy 0 <= MinZoom <= MaxZoom <= 32"}
	}
	if o.MaxPitch < 0 || o.MaxPitch >= 90 {
		return &ConfigError{Field: "MaxPitch", Reason: "must be in [0, 90)"}
	}
	if !isFinite(o.Rotation) || !isFinite(o.Pitch) {
		return &ConfigError{Field: "Rotation/Pitch", Reason: "must be finite"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
