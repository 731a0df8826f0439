package mapview

import "github.com/paulmach/orb"

// GeoPoint is a geographic position in WGS-84 decimal degrees.
type GeoPoint struct {
	Lon float64 // Longitude, (-180, 180]
	Lat float64 // Latitude
}

// Point returns the position as an orb point ([lon, lat]).
func (p GeoPoint) Point() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// PixelPoint is a screen position in pixels, origin at the top-left corner.
type PixelPoint struct {
	X float64
	Y float64
}

// PixelRect is an axis-aligned screen rectangle in pixels.
type PixelRect struct {
	X1, Y1 float64 // Top-left corner
	X2, Y2 float64 // Bottom-right corner
}

// Center returns the midpoint of the rectangle.
func (r PixelRect) Center() PixelPoint {
	return PixelPoint{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

// Bounds represents a geographic bounding box in WGS-84 coordinates.
//
// Coordinates are in decimal degrees.
type Bounds struct {
	MinLon float64 // Western edge
	MaxLon float64 // Eastern edge
	MinLat float64 // Southern edge
	MaxLat float64 // Northern edge
}

// BoundsFromOrb converts an orb bound ([lon, lat] min/max corners).
func BoundsFromOrb(b orb.Bound) Bounds {
	return Bounds{
		MinLon: b.Min[0],
		MaxLon: b.Max[0],
		MinLat: b.Min[1],
		MaxLat: b.Max[1],
	}
}

// Bound returns the bounds as an orb bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// Contains returns true if the point (lon, lat) is within the bounds.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon &&
		lat >= b.MinLat && lat <= b.MaxLat
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	u := b
	if other.MinLon < u.MinLon {
		u.MinLon = other.MinLon
	}
	if other.MaxLon > u.MaxLon {
		u.MaxLon = other.MaxLon
	}
	if other.MinLat < u.MinLat {
		u.MinLat = other.MinLat
	}
	if other.MaxLat > u.MaxLat {
		u.MaxLat = other.MaxLat
	}
	return u
}

// Center returns the midpoint of the bounds in degrees.
func (b Bounds) Center() GeoPoint {
	return GeoPoint{
		Lon: (b.MinLon + b.MaxLon) / 2,
		Lat: (b.MinLat + b.MaxLat) / 2,
	}
}

// boundsOf accumulates the bounding box of a set of positions.
func boundsOf(points []GeoPoint) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinLon: points[0].Lon, MaxLon: points[0].Lon,
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
	}
	for _, p := range points[1:] {
		b = b.Union(Bounds{MinLon: p.Lon, MaxLon: p.Lon, MinLat: p.Lat, MaxLat: p.Lat})
	}
	return b
}
