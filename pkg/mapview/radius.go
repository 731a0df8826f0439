package mapview

import "math"

// searchRadii holds the point query radius for each whole zoom level.
var searchRadii = func() [MaxZoomLevel + 1]float64 {
	var t [MaxZoomLevel + 1]float64
	const flat = MaxGridZoom - 2
	for z := range t {
		if z <= flat {
			t[z] = BaseSearchRadius
			continue
		}
		t[z] = BaseSearchRadius * math.Exp2(float64(z-flat))
	}
	return t
}()

// SearchRadius returns the pixel radius added around a point query at a zoom
// level: BaseSearchRadius up to two levels below MaxGridZoom, doubling with
// every level beyond.
//
// Fractional zoom levels use the radius of the whole level below.
func SearchRadius(zoom float64) float64 {
	z := int(math.Floor(clamp(zoom, 0, MaxZoomLevel)))
	return searchRadii[z]
}
