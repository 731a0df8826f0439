package mapview

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb/geojson"
)

// IndexProvider is an in-memory feature provider with an R-tree spatial index.
//
// Search is O(log N) in the number of features. Results are returned in
// insertion order so that queries are deterministic.
//
// Example:
//
//	provider, err := mapview.NewIndexProviderFromGeoJSON(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	visible := provider.Search(view.ViewBounds())
type IndexProvider struct {
	rtree *rtreego.Rtree // Spatial index for fast queries
	items map[*Feature]*indexedFeature
	seq   uint64
}

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	feature *Feature
	bounds  Bounds
	seq     uint64
}

// Bounds implements rtreego.Spatial interface.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return toRect(f.bounds)
}

// toRect converts geographic bounds to an R-tree rectangle.
func toRect(b Bounds) rtreego.Rect {
	point := rtreego.Point{b.MinLon, b.MinLat}

	// R-tree requires non-zero dimensions; use a small epsilon
	// (~11 meters at equator) for points.
	const epsilon = 0.0001
	lonLength := b.MaxLon - b.MinLon
	latLength := b.MaxLat - b.MinLat
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{lonLength, latLength})
	return rect
}

// NewIndexProvider creates a provider holding the given features.
func NewIndexProvider(features ...*Feature) *IndexProvider {
	p := &IndexProvider{
		// 2D, min=25 children, max=50 children
		rtree: rtreego.NewTree(2, 25, 50),
		items: make(map[*Feature]*indexedFeature),
	}
	for _, f := range features {
		p.Add(f)
	}
	return p
}

// NewIndexProviderFromGeoJSON creates a provider from a GeoJSON FeatureCollection.
func NewIndexProviderFromGeoJSON(data []byte) (*IndexProvider, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	p := NewIndexProvider()
	for _, gf := range fc.Features {
		p.Add(FeatureFromGeoJSON(gf))
	}
	return p, nil
}

// Add inserts a feature. Features without geometry and features already
// present are ignored.
func (p *IndexProvider) Add(f *Feature) {
	if f == nil || f.Geometry() == nil {
		return
	}
	if _, ok := p.items[f]; ok {
		return
	}

	p.seq++
	item := &indexedFeature{
		feature: f,
		bounds:  f.Bounds(),
		seq:     p.seq,
	}
	p.items[f] = item
	p.rtree.Insert(item)
}

// Remove deletes a feature. Returns false if it was not present.
func (p *IndexProvider) Remove(f *Feature) bool {
	item, ok := p.items[f]
	if !ok {
		return false
	}
	delete(p.items, f)
	return p.rtree.Delete(item)
}

// Len returns the number of indexed features.
func (p *IndexProvider) Len() int {
	return len(p.items)
}

// Bounds returns the union of all feature bounds.
func (p *IndexProvider) Bounds() Bounds {
	var (
		bounds Bounds
		first  = true
	)
	for _, item := range p.items {
		if first {
			bounds = item.bounds
			first = false
			continue
		}
		bounds = bounds.Union(item.bounds)
	}
	return bounds
}

// Search returns the features whose bounding box intersects b.
func (p *IndexProvider) Search(b Bounds) []*Feature {
	spatials := p.rtree.SearchIntersect(toRect(b))

	items := make([]*indexedFeature, 0, len(spatials))
	for _, spatial := range spatials {
		items = append(items, spatial.(*indexedFeature))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].seq < items[j].seq
	})

	result := make([]*Feature, len(items))
	for i, item := range items {
		result[i] = item.feature
	}
	return result
}
