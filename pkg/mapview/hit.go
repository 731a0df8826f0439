package mapview

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
)

// HitTester evaluates a feature's drawn geometry against a screen position.
type HitTester interface {
	// Hit reports whether the feature, drawn with styles on the layer at
	// layerIndex, covers the screen pixel (x, y). On a hit it returns the
	// resolved z-index of the topmost matching style.
	Hit(x, y float64, f *Feature, styles StyleGroup, layerIndex int, zoom float64) (zIndex int, ok bool)
}

// GeometryHitTester hit-tests feature geometry in screen space.
//
// The geometry is projected to screen pixels through the view, then tested
// per style: points against the symbol radius, lines against half the stroke
// width, polygons by containment (when filled) or outline distance.
type GeometryHitTester struct {
	projection orb.Projection
}

// NewGeometryHitTester creates a hit tester projecting through view.
func NewGeometryHitTester(view *Controller) *GeometryHitTester {
	return &GeometryHitTester{projection: view.PixelProjection()}
}

// Hit implements HitTester.
func (h *GeometryHitTester) Hit(x, y float64, f *Feature, styles StyleGroup, layerIndex int, zoom float64) (int, bool) {
	g := f.Geometry()
	if g == nil || len(styles) == 0 {
		return 0, false
	}
	if b, ok := g.(orb.Bound); ok {
		g = b.ToPolygon()
	}

	// project modifies geometries in place.
	screen := project.Geometry(orb.Clone(g), h.projection)
	p := orb.Point{x, y}

	var (
		best int
		hit  bool
	)
	for _, s := range styles {
		if !hitGeometry(screen, p, s) {
			continue
		}
		if !hit || s.ZIndex > best {
			best = s.ZIndex
		}
		hit = true
	}
	return best, hit
}

func hitGeometry(g orb.Geometry, p orb.Point, s Style) bool {
	switch g := g.(type) {
	case orb.Point:
		return planar.Distance(g, p) <= s.Radius
	case orb.MultiPoint:
		for _, pt := range g {
			if planar.Distance(pt, p) <= s.Radius {
				return true
			}
		}
	case orb.LineString:
		return lineDistance(g, p) <= s.StrokeWidth/2
	case orb.MultiLineString:
		for _, ls := range g {
			if lineDistance(ls, p) <= s.StrokeWidth/2 {
				return true
			}
		}
	case orb.Ring:
		return hitPolygon(orb.Polygon{g}, p, s)
	case orb.Polygon:
		return hitPolygon(g, p, s)
	case orb.MultiPolygon:
		for _, poly := range g {
			if hitPolygon(poly, p, s) {
				return true
			}
		}
	case orb.Collection:
		for _, child := range g {
			if hitGeometry(child, p, s) {
				return true
			}
		}
	}
	return false
}

func hitPolygon(poly orb.Polygon, p orb.Point, s Style) bool {
	if s.Fill && planar.PolygonContains(poly, p) {
		return true
	}
	for _, ring := range poly {
		if lineDistance(orb.LineString(ring), p) <= s.StrokeWidth/2 {
			return true
		}
	}
	return false
}

// lineDistance returns the distance from p to the closest segment of ls.
func lineDistance(ls orb.LineString, p orb.Point) float64 {
	switch len(ls) {
	case 0:
		return math.Inf(1)
	case 1:
		return planar.Distance(ls[0], p)
	}
	d := math.Inf(1)
	for i := 1; i < len(ls); i++ {
		if sd := planar.DistanceFromSegment(ls[i-1], ls[i], p); sd < d {
			d = sd
		}
	}
	return d
}
