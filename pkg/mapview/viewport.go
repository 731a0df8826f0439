package mapview

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"github.com/beetlebugorg/mapview/internal/mercator"
)

// MaxLatitude is the Mercator latitude limit applied to every center and
// projected coordinate.
const MaxLatitude = mercator.MaxLatitude

// ViewportLock restricts camera changes.
type ViewportLock struct {
	// Pan disables Pan when true.
	Pan bool

	// MinLevel and MaxLevel bound every zoom request.
	MinLevel float64
	MaxLevel float64
}

// ZoomOptions controls SetZoomlevelWithOptions.
type ZoomOptions struct {
	// Anchor is the screen pixel whose geographic location stays fixed.
	// Defaults to the screen center.
	Anchor *PixelPoint

	// Animate requests an animated zoom of this duration. It is delegated to
	// the configured Animator; without one the zoom applies immediately.
	Animate time.Duration
}

// Controller owns the camera state of a map view and converts between
// geographic coordinates and screen pixels.
//
// The zoom is split into an integer grid zoom, which fixes the world size and
// the tile set, and a floating scale applied on top of it:
//
//	effectiveZoom = gridZoom + log2(scale)
//
// The grid zoom only changes when a zoom request crosses an integer level, so
// continuous zooming only rescales the display.
//
// A Controller is not safe for concurrent use. All operations run to
// completion synchronously, including listener callbacks.
//
// Example:
//
//	opts := mapview.DefaultOptions()
//	opts.Center = mapview.GeoPoint{Lon: 8.534, Lat: 50.162}
//	opts.Zoom = 18
//	view, err := mapview.NewController(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	view.SetZoomlevelWithOptions(19, mapview.ZoomOptions{
//	    Anchor: &mapview.PixelPoint{X: 100, Y: 120},
//	})
type Controller struct {
	display   Display
	container Container
	animator  Animator
	log       logrus.FieldLogger
	events    *listenerRegistry
	disposed  bool

	tileSize     float64
	maxPitch     float64
	zoomBehavior ZoomBehavior

	width, height float64
	screenCenter  PixelPoint

	zoom      float64 // effective zoom, rounded to 3 decimals
	gridZoom  int
	scale     float64
	worldSize float64

	rotationDeg float64
	rotationZ   float64 // radians
	pitchDeg    float64
	pitchX      float64 // radians, <= 0

	center      GeoPoint
	centerWorld PixelPoint

	// topLeft is the world pixel at the unrotated top-left screen corner.
	// topLeft + screenOffset is the world position of the internal origin.
	topLeft      PixelPoint
	screenOffset PixelPoint
	viewBounds   Bounds

	lock       ViewportLock
	lastCenter GeoPoint
}

// NewController creates a controller from options.
//
// Returns a *ConfigError if an option cannot be used.
func NewController(opts Options) (*Controller, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		display:      opts.Display,
		container:    opts.Container,
		animator:     opts.Animator,
		log:          opts.Logger,
		events:       newListenerRegistry(),
		tileSize:     opts.TileSize,
		maxPitch:     opts.MaxPitch,
		zoomBehavior: opts.ZoomBehavior,
		lock: ViewportLock{
			MinLevel: opts.MinZoom,
			MaxLevel: opts.MaxZoom,
		},
	}
	if c.display == nil {
		c.display = NewSoftwareDisplay(opts.Width, opts.Height)
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}

	c.width, c.height = opts.Width, opts.Height
	c.screenCenter = PixelPoint{X: opts.Width / 2, Y: opts.Height / 2}
	c.display.SetSize(c.width, c.height)

	c.zoom = c.clampZoom(roundTo(opts.Zoom, 1000))
	c.gridZoom = gridZoomFor(c.zoom)
	c.worldSize = mercator.WorldSize(c.gridZoom, c.tileSize)
	c.scale = math.Exp2(c.zoom - float64(c.gridZoom))

	c.rotationDeg = normalizeDegrees(roundTo(opts.Rotation, 10))
	c.rotationZ = c.rotationDeg * math.Pi / 180
	c.pitchDeg = roundTo(clamp(opts.Pitch, 0, c.maxPitch), 10)
	c.pitchX = -c.pitchDeg * math.Pi / 180

	c.center = GeoPoint{
		Lon: mercator.WrapLon(opts.Center.Lon),
		Lat: mercator.ClampLat(opts.Center.Lat),
	}
	c.centerWorld = c.project(c.center)
	c.lastCenter = c.center
	c.updateGrid()

	return c, nil
}

// gridZoomFor is the single grid zoom clamp: floor of the zoom, limited to
// [0, MaxGridZoom].
func gridZoomFor(zoom float64) int {
	g := math.Floor(math.Min(MaxGridZoom, zoom))
	if g < 0 {
		g = 0
	}
	return int(g)
}

// Center returns the geographic center of the view.
func (c *Controller) Center() GeoPoint { return c.center }

// Zoomlevel returns the effective (floating) zoom level.
func (c *Controller) Zoomlevel() float64 { return c.zoom }

// GridZoom returns the integer zoom of the tile grid.
func (c *Controller) GridZoom() int { return c.gridZoom }

// Scale returns the floating scale applied on top of the grid zoom.
func (c *Controller) Scale() float64 { return c.scale }

// WorldSize returns the pixel size of the world at the current grid zoom.
func (c *Controller) WorldSize() float64 { return c.worldSize }

// TileSize returns the configured grid tile size in pixels.
func (c *Controller) TileSize() float64 { return c.tileSize }

// Width returns the screen width in pixels.
func (c *Controller) Width() float64 { return c.width }

// Height returns the screen height in pixels.
func (c *Controller) Height() float64 { return c.height }

// Rotation returns the rotation in degrees, [0, 360).
func (c *Controller) Rotation() float64 { return c.rotationDeg }

// Pitch returns the tilt in degrees, [0, MaxPitch].
func (c *Controller) Pitch() float64 { return c.pitchDeg }

// ViewportLock returns the active viewport lock.
func (c *Controller) ViewportLock() ViewportLock { return c.lock }

// ViewBounds returns the geographic bounding box of the view.
//
// Latitudes reaching the Mercator limit are reported as ±90 and longitudes
// reaching the antimeridian as ±180, so a view showing the whole world height
// reports the true poles.
func (c *Controller) ViewBounds() Bounds { return c.viewBounds }

// On registers a listener for an event kind.
func (c *Controller) On(kind EventKind, fn Listener) Subscription {
	if c.disposed || fn == nil {
		return Subscription{Kind: kind}
	}
	return c.events.add(kind, fn)
}

// Off removes a listener. Returns false if it was not registered.
func (c *Controller) Off(sub Subscription) bool {
	return c.events.remove(sub)
}

// SetCenter moves the view center to (lon, lat).
//
// Longitude is wrapped into (-180, 180] and latitude clamped to ±MaxLatitude.
// An EventCenter is emitted only if the geographic center actually changes.
// Returns *ErrInvalidCoordinate, leaving the state untouched, if either value
// is NaN or infinite.
func (c *Controller) SetCenter(lon, lat float64) error {
	if c.disposed {
		return ErrDisposed
	}
	if !isFinite(lon) || !isFinite(lat) {
		return &ErrInvalidCoordinate{Lon: lon, Lat: lat}
	}
	c.setCenter(lon, lat)
	return nil
}

// SetCenterPoint is SetCenter for a GeoPoint.
func (c *Controller) SetCenterPoint(p GeoPoint) error {
	return c.SetCenter(p.Lon, p.Lat)
}

func (c *Controller) setCenter(lon, lat float64) {
	next := GeoPoint{
		Lon: mercator.WrapLon(lon),
		Lat: mercator.ClampLat(lat),
	}
	if next == c.center {
		return
	}
	c.center = next
	c.centerWorld = c.project(next)
	c.updateGrid()
}

// SetZoomlevel zooms toward the screen center. See SetZoomlevelWithOptions.
func (c *Controller) SetZoomlevel(zoom float64) error {
	return c.SetZoomlevelWithOptions(zoom, ZoomOptions{})
}

// SetZoomlevelWithOptions changes the effective zoom level.
//
// The target is rounded to 3 decimals and clamped to the viewport lock range.
// The geographic point under the anchor pixel stays under it. An
// EventZoomlevel carrying the old and new effective zoom is emitted after any
// EventCenter caused by the anchor adjustment.
func (c *Controller) SetZoomlevelWithOptions(zoom float64, opts ZoomOptions) error {
	if c.disposed {
		return ErrDisposed
	}
	if !isFinite(zoom) {
		return &ConfigError{Field: "zoom", Reason: "must be finite"}
	}

	target := c.clampZoom(roundTo(zoom, 1000))
	anchor := c.screenCenter
	if opts.Anchor != nil {
		anchor = *opts.Anchor
	}

	if opts.Animate > 0 && c.animator != nil {
		c.animator.AnimateZoom(c.zoom, target, opts.Animate, func(z float64) {
			if c.disposed {
				return
			}
			c.applyZoom(c.clampZoom(roundTo(z, 1000)), anchor)
		})
		return nil
	}

	c.applyZoom(target, anchor)
	return nil
}

// ZoomBy changes the zoom level relative to the current one, as a mouse wheel
// or pinch does. With ZoomBehaviorFixed the result snaps to whole levels.
func (c *Controller) ZoomBy(delta float64, anchor *PixelPoint) error {
	if c.disposed {
		return ErrDisposed
	}
	if delta == 0 || !isFinite(delta) {
		return nil
	}

	target := c.zoom + delta
	if c.zoomBehavior == ZoomBehaviorFixed {
		step := math.Max(1, math.Round(math.Abs(delta)))
		if delta > 0 {
			target = math.Floor(c.zoom) + step
		} else {
			target = math.Ceil(c.zoom) - step
		}
	}
	return c.SetZoomlevelWithOptions(target, ZoomOptions{Anchor: anchor})
}

// applyZoom is the anchor-preserving zoom.
//
// The anchor is unprojected under the old transform, then under the new scale
// expressed in old grid units; the center moves by the difference so that the
// anchor keeps its geographic location. The center is then rescaled into the
// new grid.
func (c *Controller) applyZoom(target float64, anchor PixelPoint) {
	oldZoom := c.zoom
	if target == oldZoom {
		return
	}

	beforeX, beforeY := c.display.Unproject(anchor.X, anchor.Y)

	oldGrid := c.gridZoom
	newGrid := gridZoomFor(target)
	newScale := math.Exp2(target - float64(newGrid))
	deltaFixedZoom := oldGrid - newGrid

	c.display.SetTransform(newScale*math.Exp2(float64(-deltaFixedZoom)), c.rotationZ, c.pitchX)
	afterX, afterY := c.display.Unproject(anchor.X, anchor.Y)

	dx, dy := beforeX-afterX, beforeY-afterY
	cx := c.centerWorld.X + dx
	cy := c.centerWorld.Y + dy

	if newGrid != oldGrid {
		k := math.Exp2(float64(newGrid - oldGrid))
		cx *= k
		cy *= k
		c.gridZoom = newGrid
		c.worldSize = mercator.WorldSize(newGrid, c.tileSize)
	}
	c.scale = newScale
	c.zoom = target

	// A zero shift keeps the geographic center exact.
	if dx != 0 || dy != 0 {
		c.center = c.unproject(cx, cy)
	}
	c.centerWorld = c.project(c.center)
	c.updateGrid()

	c.log.WithFields(logrus.Fields{
		"from": oldZoom,
		"to":   target,
		"grid": c.gridZoom,
	}).Debug("zoomlevel changed")

	c.events.emit(Event{Kind: EventZoomlevel, OldValue: oldZoom, NewValue: target})
}

// Pan moves the view by a screen delta: afterwards the geographic point that
// was under (center + delta) is the new center. No-op while panning is locked.
func (c *Controller) Pan(dx, dy float64) error {
	if c.disposed {
		return ErrDisposed
	}
	if dx == 0 && dy == 0 {
		return nil
	}
	if !isFinite(dx) || !isFinite(dy) {
		return &ErrInvalidCoordinate{Lon: dx, Lat: dy}
	}
	if c.lock.Pan {
		return nil
	}
	p := c.pixelToGeo(c.screenCenter.X+dx, c.screenCenter.Y+dy)
	c.setCenter(p.Lon, p.Lat)
	return nil
}

// SetRotation rotates the view to deg degrees (0.1° precision) about the
// screen center, keeping the center's geographic location fixed.
func (c *Controller) SetRotation(deg float64) error {
	if c.disposed {
		return ErrDisposed
	}
	if !isFinite(deg) {
		return &ConfigError{Field: "rotation", Reason: "must be finite"}
	}

	next := normalizeDegrees(roundTo(deg, 10))
	if next == c.rotationDeg {
		return nil
	}
	old := c.rotationDeg
	rad := next * math.Pi / 180

	beforeX, beforeY := c.display.Unproject(c.screenCenter.X, c.screenCenter.Y)
	c.display.SetTransform(c.scale, rad, c.pitchX)
	afterX, afterY := c.display.Unproject(c.screenCenter.X, c.screenCenter.Y)

	c.rotationDeg = next
	c.rotationZ = rad
	if dx, dy := beforeX-afterX, beforeY-afterY; dx != 0 || dy != 0 {
		c.center = c.unproject(c.centerWorld.X+dx, c.centerWorld.Y+dy)
		c.centerWorld = c.project(c.center)
	}
	c.updateGrid()

	c.log.WithFields(logrus.Fields{"from": old, "to": next}).Debug("rotation changed")
	c.events.emit(Event{Kind: EventRotation, OldValue: old, NewValue: next})
	return nil
}

// SetPitch tilts the view to deg degrees, clamped to [0, MaxPitch] and rounded
// to 0.1°.
func (c *Controller) SetPitch(deg float64) error {
	if c.disposed {
		return ErrDisposed
	}
	if !isFinite(deg) {
		return &ConfigError{Field: "pitch", Reason: "must be finite"}
	}

	next := roundTo(clamp(deg, 0, c.maxPitch), 10)
	if next == c.pitchDeg {
		return nil
	}
	old := c.pitchDeg
	c.pitchDeg = next
	c.pitchX = -next * math.Pi / 180
	c.updateGrid()

	c.events.emit(Event{Kind: EventPitch, OldValue: old, NewValue: next})
	return nil
}

// Resize sets the screen size. No-op if the size is unchanged.
func (c *Controller) Resize(width, height float64) error {
	if c.disposed {
		return ErrDisposed
	}
	if !isFinite(width) || !isFinite(height) || width < 0 || height < 0 {
		return &ConfigError{Field: "size", Reason: "must be finite and non-negative"}
	}
	if width == c.width && height == c.height {
		return nil
	}

	old := PixelPoint{X: c.width, Y: c.height}
	c.width, c.height = width, height
	c.screenCenter = PixelPoint{X: width / 2, Y: height / 2}
	c.display.SetSize(width, height)
	c.updateGrid()

	c.log.WithFields(logrus.Fields{"width": width, "height": height}).Debug("viewport resized")
	c.events.emit(Event{Kind: EventResize, OldSize: old, NewSize: PixelPoint{X: width, Y: height}})
	return nil
}

// ResizeToContainer reads the size from the configured Container.
func (c *Controller) ResizeToContainer() error {
	if c.disposed {
		return ErrDisposed
	}
	if c.container == nil {
		return ErrNoContainer
	}
	w, h := c.container.Size()
	return c.Resize(w, h)
}

// LockViewport replaces the viewport lock. Levels are clamped to
// [0, MaxZoomLevel]; a current zoom outside the new range is pulled into it.
func (c *Controller) LockViewport(lock ViewportLock) error {
	if c.disposed {
		return ErrDisposed
	}
	lock.MinLevel = clamp(lock.MinLevel, 0, MaxZoomLevel)
	lock.MaxLevel = clamp(lock.MaxLevel, lock.MinLevel, MaxZoomLevel)
	c.lock = lock

	if z := c.clampZoom(c.zoom); z != c.zoom {
		c.applyZoom(z, c.screenCenter)
	}
	return nil
}

// SetViewBounds zooms and centers the view so that b fits the screen,
// taking the current rotation into account. Bounds with MinLon > MaxLon are
// treated as crossing the antimeridian.
func (c *Controller) SetViewBounds(b Bounds) error {
	if c.disposed {
		return ErrDisposed
	}
	if !isFinite(b.MinLon) || !isFinite(b.MaxLon) || !isFinite(b.MinLat) || !isFinite(b.MaxLat) {
		return &ErrInvalidCoordinate{Lon: b.MinLon, Lat: b.MinLat}
	}

	maxLon := b.MaxLon
	if maxLon < b.MinLon {
		maxLon += 360
	}
	ws := c.tileSize // world size at zoom 0
	x1 := mercator.LonToX(b.MinLon, ws)
	x2 := mercator.LonToX(maxLon, ws)
	y1 := mercator.LatToY(mercator.ClampLat(math.Max(b.MinLat, b.MaxLat)), ws)
	y2 := mercator.LatToY(mercator.ClampLat(math.Min(b.MinLat, b.MaxLat)), ws)
	dx, dy := x2-x1, y2-y1

	sin, cos := math.Sincos(c.rotationZ)
	ex := math.Abs(dx*cos) + math.Abs(dy*sin)
	ey := math.Abs(dx*sin) + math.Abs(dy*cos)

	zoom := c.lock.MaxLevel
	if ex > 0 || ey > 0 {
		fit := math.Inf(1)
		if ex > 0 {
			fit = c.width / ex
		}
		if ey > 0 {
			fit = math.Min(fit, c.height/ey)
		}
		zoom = math.Log2(fit)
	}
	// Round down so the bounds stay inside the view.
	c.applyZoom(c.clampZoom(math.Floor(zoom*1000)/1000), c.screenCenter)

	lon := mercator.XToLon((x1+x2)/2, ws)
	lat := mercator.YToLat((y1+y2)/2, ws)
	c.setCenter(lon, lat)
	return nil
}

// PixelToGeo converts a screen pixel to a geographic position.
//
// It is the left inverse of GeoToPixel for every pixel inside the view.
func (c *Controller) PixelToGeo(x, y float64) (GeoPoint, error) {
	if c.disposed {
		return GeoPoint{}, ErrDisposed
	}
	return c.pixelToGeo(x, y), nil
}

// GeoToPixel converts a geographic position to a screen pixel.
//
// Latitude is clamped to the Mercator range. Of the world copies of the
// position, the one closest to the view center is returned.
func (c *Controller) GeoToPixel(lon, lat float64) (PixelPoint, error) {
	if c.disposed {
		return PixelPoint{}, ErrDisposed
	}
	return c.geoToPixel(lon, lat), nil
}

// PixelProjection returns the geographic-to-screen projection as an orb
// projection, for use with github.com/paulmach/orb/project.
func (c *Controller) PixelProjection() orb.Projection {
	return func(p orb.Point) orb.Point {
		px := c.geoToPixel(p[0], p[1])
		return orb.Point{px.X, px.Y}
	}
}

// Dispose releases the collaborators and listeners. Every later operation
// returns ErrDisposed.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.display = nil
	c.container = nil
	c.animator = nil
	c.events.clear()
}

// Disposed reports whether Dispose has been called.
func (c *Controller) Disposed() bool { return c.disposed }

// worldPixel returns the unwrapped world pixel under a screen pixel.
func (c *Controller) worldPixel(x, y float64) PixelPoint {
	ix, iy := c.display.Unproject(x, y)
	return PixelPoint{
		X: ix + c.topLeft.X + c.screenOffset.X,
		Y: iy + c.topLeft.Y + c.screenOffset.Y,
	}
}

func (c *Controller) pixelToGeo(x, y float64) GeoPoint {
	w := c.worldPixel(x, y)
	return GeoPoint{
		Lon: mercator.WrapLon(mercator.XToLon(mercator.WrapX(w.X, c.worldSize), c.worldSize)),
		Lat: mercator.YToLat(w.Y, c.worldSize),
	}
}

func (c *Controller) geoToPixel(lon, lat float64) PixelPoint {
	x := mercator.LonToX(lon, c.worldSize)
	y := mercator.LatToY(mercator.ClampLat(lat), c.worldSize)

	// Pick the world copy nearest to the center.
	x -= c.worldSize * math.Round((x-c.centerWorld.X)/c.worldSize)

	sx, sy := c.display.Project(
		x-c.topLeft.X-c.screenOffset.X,
		y-c.topLeft.Y-c.screenOffset.Y,
	)
	return PixelPoint{X: sx, Y: sy}
}

// project converts a geographic position to a world pixel at the current grid.
func (c *Controller) project(p GeoPoint) PixelPoint {
	return PixelPoint{
		X: mercator.LonToX(p.Lon, c.worldSize),
		Y: mercator.LatToY(p.Lat, c.worldSize),
	}
}

// unproject converts a (possibly unwrapped) world pixel to a valid center.
func (c *Controller) unproject(x, y float64) GeoPoint {
	return GeoPoint{
		Lon: mercator.WrapLon(mercator.XToLon(mercator.WrapX(x, c.worldSize), c.worldSize)),
		Lat: mercator.ClampLat(mercator.YToLat(y, c.worldSize)),
	}
}

// updateGrid recomputes the cached view origin and bounds, pushes the
// transform and grid to the display and reports a center change.
func (c *Controller) updateGrid() {
	c.topLeft = PixelPoint{
		X: c.centerWorld.X - c.screenCenter.X/c.scale,
		Y: c.centerWorld.Y - c.screenCenter.Y/c.scale,
	}
	c.screenOffset = PixelPoint{
		X: c.screenCenter.X/c.scale - c.screenCenter.X,
		Y: c.screenCenter.Y/c.scale - c.screenCenter.Y,
	}

	c.display.SetTransform(c.scale, c.rotationZ, c.pitchX)
	c.viewBounds = c.computeViewBounds()
	c.display.UpdateGrid(
		orb.Point{c.centerWorld.X / c.worldSize, c.centerWorld.Y / c.worldSize},
		c.gridZoom,
		c.screenOffset.X,
		c.screenOffset.Y,
	)

	if c.center != c.lastCenter {
		old := c.lastCenter
		c.lastCenter = c.center
		c.log.WithFields(logrus.Fields{
			"lon": c.center.Lon,
			"lat": c.center.Lat,
		}).Debug("center changed")
		c.events.emit(Event{Kind: EventCenter, OldCenter: old, NewCenter: c.center})
	}
}

// computeViewBounds derives the geographic bounds from the four screen corners.
func (c *Controller) computeViewBounds() Bounds {
	corners := [4]PixelPoint{
		{X: 0, Y: 0},
		{X: c.width, Y: 0},
		{X: c.width, Y: c.height},
		{X: 0, Y: c.height},
	}
	points := make([]GeoPoint, 0, len(corners))
	for _, p := range corners {
		w := c.worldPixel(p.X, p.Y)
		points = append(points, GeoPoint{
			Lon: mercator.XToLon(w.X, c.worldSize),
			Lat: mercator.YToLat(w.Y, c.worldSize),
		})
	}
	b := boundsOf(points)

	if b.MaxLon-b.MinLon >= 360 {
		b.MinLon, b.MaxLon = -180, 180
	}
	if b.MinLon <= -180 {
		b.MinLon = -180
	}
	if b.MaxLon >= 180 {
		b.MaxLon = 180
	}
	if b.MaxLat >= MaxLatitude {
		b.MaxLat = 90
	}
	if b.MinLat <= -MaxLatitude {
		b.MinLat = -90
	}
	return b
}

func (c *Controller) clampZoom(z float64) float64 {
	return clamp(z, c.lock.MinLevel, c.lock.MaxLevel)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundTo rounds v to 1/factor precision.
func roundTo(v, factor float64) float64 {
	return math.Round(v*factor) / factor
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
