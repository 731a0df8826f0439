// Package mercator implements the spherical Web-Mercator projection between
// WGS-84 degrees and world pixels.
//
// All functions are parameterized by worldSize, the number of pixels covering
// the full globe at a given grid zoom. Inputs are expected to be clamped by the
// caller; the functions never fail.
package mercator

import "math"

// MaxLatitude is the latitude at which the Mercator world becomes square
// (atan(sinh(π)) in degrees).
const MaxLatitude = 85.05112878

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// WorldSize returns the pixel size of the world at the given grid zoom.
func WorldSize(gridZoom int, tileSize float64) float64 {
	return math.Ldexp(tileSize, gridZoom)
}

// LonToX converts a longitude to a world pixel x coordinate.
func LonToX(lon, worldSize float64) float64 {
	return (lon/360.0 + 0.5) * worldSize
}

// XToLon converts a world pixel x coordinate to a longitude.
func XToLon(x, worldSize float64) float64 {
	return (x/worldSize - 0.5) * 360.0
}

// LatToY converts a latitude to a world pixel y coordinate (0 at the north edge).
func LatToY(lat, worldSize float64) float64 {
	sinLat := math.Sin(lat * degToRad)
	return (0.5 - 0.25*math.Log((1+sinLat)/(1-sinLat))/math.Pi) * worldSize
}

// YToLat converts a world pixel y coordinate to a latitude.
func YToLat(y, worldSize float64) float64 {
	n := math.Pi - 2*math.Pi*y/worldSize
	return radToDeg * math.Atan(math.Sinh(n))
}

// ClampLat limits lat to the Mercator-valid range.
func ClampLat(lat float64) float64 {
	if lat > MaxLatitude {
		return MaxLatitude
	}
	if lat < -MaxLatitude {
		return -MaxLatitude
	}
	return lat
}

// WrapLon brings lon into (-180, 180] by whole turns.
// Values already in range are returned unchanged.
func WrapLon(lon float64) float64 {
	if lon > -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon <= 0 {
		lon += 360
	}
	return lon - 180
}

// WrapX brings a world pixel x coordinate into [0, worldSize).
func WrapX(x, worldSize float64) float64 {
	x = math.Mod(x, worldSize)
	if x < 0 {
		x += worldSize
	}
	return x
}
