package mapview

import (
	"math"

	"github.com/paulmach/orb"
)

// Display is the rendering surface a controller drives.
//
// Internal coordinates are world pixels at the current grid zoom, translated
// so that the screen center is a fixed point. Project maps them to screen
// pixels, scaling, rotating and tilting about the screen center; Unproject is
// its exact inverse.
type Display interface {
	// Unproject maps a screen pixel to an unrotated internal pixel.
	Unproject(screenX, screenY float64) (float64, float64)

	// Project maps an internal pixel to a screen pixel.
	Project(internalX, internalY float64) (float64, float64)

	// SetTransform sets the floating scale, the rotation about the screen
	// center (radians) and the tilt (radians, <= 0).
	SetTransform(scale, rotationZ, pitchX float64)

	// SetSize sets the screen size in pixels.
	SetSize(width, height float64)

	// UpdateGrid announces a new tile grid: the view center as a fraction of
	// the world, the grid zoom and the offset from the top-left world pixel of
	// the view to the internal origin.
	UpdateGrid(center orb.Point, gridZoom int, offsetX, offsetY float64)
}

// Container reports the size of the element hosting the map.
type Container interface {
	Size() (width, height float64)
}

// SoftwareDisplay is a headless Display that evaluates the view transform on
// the CPU. It is the default display and is exactly invertible for pitch below
// the horizon.
//
// The transform is screen = C + P(R(s*(i - C))) where C is the screen center,
// s the scale, R the rotation and P a perspective tilt about the horizontal
// axis through C.
type SoftwareDisplay struct {
	width, height float64
	cx, cy        float64
	focal         float64

	scale     float64
	rotationZ float64
	pitchX    float64

	gridCenter orb.Point
	gridZoom   int
	offsetX    float64
	offsetY    float64
}

// NewSoftwareDisplay creates a display of the given size with an identity transform.
func NewSoftwareDisplay(width, height float64) *SoftwareDisplay {
	d := &SoftwareDisplay{scale: 1}
	d.SetSize(width, height)
	return d
}

// SetSize implements Display.
func (d *SoftwareDisplay) SetSize(width, height float64) {
	d.width, d.height = width, height
	d.cx, d.cy = width/2, height/2
	d.focal = 1.5 * math.Max(math.Max(width, height), 1)
}

// SetTransform implements Display.
func (d *SoftwareDisplay) SetTransform(scale, rotationZ, pitchX float64) {
	d.scale = scale
	d.rotationZ = rotationZ
	d.pitchX = pitchX
}

// UpdateGrid implements Display.
func (d *SoftwareDisplay) UpdateGrid(center orb.Point, gridZoom int, offsetX, offsetY float64) {
	d.gridCenter = center
	d.gridZoom = gridZoom
	d.offsetX, d.offsetY = offsetX, offsetY
}

// Project implements Display.
func (d *SoftwareDisplay) Project(internalX, internalY float64) (float64, float64) {
	dx := d.scale * (internalX - d.cx)
	dy := d.scale * (internalY - d.cy)

	sin, cos := math.Sincos(d.rotationZ)
	rx := dx*cos - dy*sin
	ry := dx*sin + dy*cos

	p := -d.pitchX
	if p == 0 {
		return d.cx + rx, d.cy + ry
	}
	sinP, cosP := math.Sincos(p)
	k := d.focal / (d.focal - ry*sinP)
	return d.cx + rx*k, d.cy + ry*cosP*k
}

// Unproject implements Display.
func (d *SoftwareDisplay) Unproject(screenX, screenY float64) (float64, float64) {
	rx := screenX - d.cx
	ry := screenY - d.cy

	if p := -d.pitchX; p != 0 {
		sinP, cosP := math.Sincos(p)
		denom := d.focal*cosP + ry*sinP
		// Above the horizon; pin to the far plane.
		if denom < 1e-6*d.focal {
			denom = 1e-6 * d.focal
		}
		v := ry
		ry = v * d.focal / denom
		rx = rx * (d.focal - ry*sinP) / d.focal
	}

	sin, cos := math.Sincos(d.rotationZ)
	dx := rx*cos + ry*sin
	dy := -rx*sin + ry*cos

	return d.cx + dx/d.scale, d.cy + dy/d.scale
}

// Transform returns the last transform set on the display.
func (d *SoftwareDisplay) Transform() (scale, rotationZ, pitchX float64) {
	return d.scale, d.rotationZ, d.pitchX
}

// Grid returns the last grid announced to the display.
func (d *SoftwareDisplay) Grid() (center orb.Point, gridZoom int, offsetX, offsetY float64) {
	return d.gridCenter, d.gridZoom, d.offsetX, d.offsetY
}

// Size returns the display size. SoftwareDisplay also satisfies Container.
func (d *SoftwareDisplay) Size() (float64, float64) {
	return d.width, d.height
}
