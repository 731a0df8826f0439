package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature is a geographic object returned by providers and spatial queries.
//
// Access feature data via methods:
//   - ID() returns the identifier
//   - Geometry() returns the geometry in [lon, lat] coordinates
//   - Properties() returns all properties
//   - Property(name) returns a single property value
type Feature struct {
	id         interface{}
	geometry   orb.Geometry
	properties geojson.Properties
}

// NewFeature creates a feature. props may be nil.
func NewFeature(id interface{}, geometry orb.Geometry, props map[string]interface{}) *Feature {
	if props == nil {
		props = make(map[string]interface{})
	}
	return &Feature{
		id:         id,
		geometry:   geometry,
		properties: geojson.Properties(props),
	}
}

// FeatureFromGeoJSON wraps a GeoJSON feature. The geometry and properties are
// shared, not copied.
func FeatureFromGeoJSON(f *geojson.Feature) *Feature {
	props := f.Properties
	if props == nil {
		props = geojson.Properties{}
	}
	return &Feature{
		id:         f.ID,
		geometry:   f.Geometry,
		properties: props,
	}
}

// ID returns the feature identifier.
func (f *Feature) ID() interface{} {
	return f.id
}

// Geometry returns the feature geometry.
func (f *Feature) Geometry() orb.Geometry {
	return f.geometry
}

// Properties returns all feature properties.
func (f *Feature) Properties() geojson.Properties {
	return f.properties
}

// Property returns a property value by name.
//
// Returns the value and true if the property exists, or nil and false if not found.
func (f *Feature) Property(name string) (interface{}, bool) {
	val, ok := f.properties[name]
	return val, ok
}

// Bounds returns the geographic bounding box of the feature geometry.
func (f *Feature) Bounds() Bounds {
	if f.geometry == nil {
		return Bounds{}
	}
	return BoundsFromOrb(f.geometry.Bound())
}

// GeoJSON converts the feature back to a GeoJSON feature.
func (f *Feature) GeoJSON() *geojson.Feature {
	gf := geojson.NewFeature(f.geometry)
	gf.ID = f.id
	gf.Properties = f.properties
	return gf
}
