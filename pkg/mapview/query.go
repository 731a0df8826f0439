package mapview

import (
	"math"
	"sort"

	"github.com/beetlebugorg/mapview/internal/mercator"
	"github.com/sirupsen/logrus"
)

// QueryOptions configures a spatial query.
type QueryOptions struct {
	// Layers restricts the query to these layers. Layers not on the map are
	// ignored. If empty, every layer of the map is queried.
	Layers []Layer

	// Width and Height expand a point query into a centered rectangle, in
	// pixels. Ignored by FeaturesIn.
	Width  float64
	Height float64

	// TopOnly returns only the topmost feature.
	TopOnly bool
}

// LayerFeatures is one group of a query result: features of a single layer.
type LayerFeatures struct {
	Layer    Layer
	Features []*Feature
}

// QueryResult is the ordered result of a spatial query.
//
// Groups are ordered bottom to top: by z-index, then by layer draw order.
// Adjacent groups never share a layer; the last feature of the last group is
// the topmost hit.
type QueryResult []LayerFeatures

// Len returns the total number of features in the result.
func (r QueryResult) Len() int {
	n := 0
	for _, g := range r {
		n += len(g.Features)
	}
	return n
}

// Top returns the topmost hit, or nil for an empty result.
func (r QueryResult) Top() *FeatureHit {
	if len(r) == 0 {
		return nil
	}
	g := r[len(r)-1]
	if len(g.Features) == 0 {
		return nil
	}
	return &FeatureHit{Layer: g.Layer, Feature: g.Features[len(g.Features)-1]}
}

// FeatureHit is a single feature together with the layer it was found on.
type FeatureHit struct {
	Layer   Layer
	Feature *Feature
}

// QueryEngine answers "which features are under this screen region" for a
// viewport and a layer stack.
//
// Example:
//
//	engine := mapview.NewQueryEngine(view, layers, nil)
//	hit, err := engine.FeatureAt(400, 300, mapview.QueryOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if hit != nil {
//	    fmt.Println(hit.Feature.ID())
//	}
type QueryEngine struct {
	view   *Controller
	layers *LayerStack
	hit    HitTester
	log    logrus.FieldLogger
}

// NewQueryEngine creates a query engine. If hit is nil, a GeometryHitTester
// projecting through view is used.
func NewQueryEngine(view *Controller, layers *LayerStack, hit HitTester) *QueryEngine {
	if hit == nil {
		hit = NewGeometryHitTester(view)
	}
	return &QueryEngine{
		view:   view,
		layers: layers,
		hit:    hit,
		log:    view.log,
	}
}

// FeaturesIn returns the features hit by the center of a screen rectangle,
// searching the geographic area the rectangle covers.
func (q *QueryEngine) FeaturesIn(rect PixelRect, opts QueryOptions) (QueryResult, error) {
	if q.view.disposed {
		return nil, ErrDisposed
	}
	return q.query(normalizeRect(rect), opts), nil
}

// FeaturesAt returns the features at a screen position.
//
// The position is expanded by opts.Width and opts.Height and by the search
// radius of the current zoom level.
func (q *QueryEngine) FeaturesAt(x, y float64, opts QueryOptions) (QueryResult, error) {
	if q.view.disposed {
		return nil, ErrDisposed
	}
	r := SearchRadius(q.view.zoom)
	dx := math.Abs(opts.Width)/2 + r
	dy := math.Abs(opts.Height)/2 + r
	return q.query(PixelRect{X1: x - dx, Y1: y - dy, X2: x + dx, Y2: y + dy}, opts), nil
}

// FeatureAt returns the topmost feature at a screen position, or nil if
// nothing is hit.
func (q *QueryEngine) FeatureAt(x, y float64, opts QueryOptions) (*FeatureHit, error) {
	opts.TopOnly = true
	result, err := q.FeaturesAt(x, y, opts)
	if err != nil {
		return nil, err
	}
	return result.Top(), nil
}

// stackedLayer is a candidate layer with its draw position.
type stackedLayer struct {
	layer Layer
	index int
}

// hitKey buckets hits by z-index and layer position.
type hitKey struct {
	z     int
	layer int
}

func (q *QueryEngine) query(rect PixelRect, opts QueryOptions) QueryResult {
	v := q.view
	regions := searchRegions(q.geoRect(rect))
	center := rect.Center()

	buckets := make(map[hitKey]*LayerFeatures)
	for _, sl := range q.candidates(opts.Layers) {
		lo, hi := sl.layer.ZoomRange()
		if v.zoom < lo || v.zoom > hi {
			q.log.WithFields(logrus.Fields{
				"layer": sl.index,
				"zoom":  v.zoom,
			}).Debug("query skipped layer outside zoom range")
			continue
		}
		searcher, ok := sl.layer.Provider(v.zoom).(Searcher)
		if !ok {
			q.log.WithField("layer", sl.index).Debug("query skipped layer without searchable provider")
			continue
		}

		for _, f := range search(searcher, regions) {
			styles := sl.layer.StyleGroup(f, v.gridZoom)
			if styles == nil {
				continue
			}
			z, ok := q.hit.Hit(center.X, center.Y, f, styles, sl.index, v.zoom)
			if !ok {
				continue
			}
			key := hitKey{z: z, layer: sl.index}
			g, ok := buckets[key]
			if !ok {
				g = &LayerFeatures{Layer: sl.layer}
				buckets[key] = g
			}
			g.Features = append(g.Features, f)
		}
	}

	result := flatten(buckets)
	if opts.TopOnly && len(result) > 0 {
		top := result.Top()
		return QueryResult{{Layer: top.Layer, Features: []*Feature{top.Feature}}}
	}
	return result
}

// geoRect returns the bounding box of a screen rectangle's corners, with
// longitudes unwrapped relative to the view center.
func (q *QueryEngine) geoRect(rect PixelRect) Bounds {
	v := q.view
	corners := [4]PixelPoint{
		{X: rect.X1, Y: rect.Y1},
		{X: rect.X2, Y: rect.Y1},
		{X: rect.X2, Y: rect.Y2},
		{X: rect.X1, Y: rect.Y2},
	}
	points := make([]GeoPoint, 0, len(corners))
	for _, p := range corners {
		w := v.worldPixel(p.X, p.Y)
		points = append(points, GeoPoint{
			Lon: mercator.XToLon(w.X, v.worldSize),
			Lat: mercator.YToLat(w.Y, v.worldSize),
		})
	}
	return boundsOf(points)
}

// searchRegions splits a bounding box with unwrapped longitudes into boxes
// inside [-180, 180].
func searchRegions(b Bounds) []Bounds {
	if b.MaxLon-b.MinLon >= 360 {
		b.MinLon, b.MaxLon = -180, 180
		return []Bounds{b}
	}
	switch {
	case b.MinLon < -180:
		west, east := b, b
		west.MinLon, west.MaxLon = b.MinLon+360, 180
		east.MinLon = -180
		return []Bounds{west, east}
	case b.MaxLon > 180:
		west, east := b, b
		west.MaxLon = 180
		east.MinLon, east.MaxLon = -180, b.MaxLon-360
		return []Bounds{west, east}
	}
	return []Bounds{b}
}

// search queries each region and drops features returned more than once.
func search(s Searcher, regions []Bounds) []*Feature {
	if len(regions) == 1 {
		return s.Search(regions[0])
	}
	var (
		out  []*Feature
		seen = make(map[*Feature]bool)
	)
	for _, r := range regions {
		for _, f := range s.Search(r) {
			if seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// candidates returns the layers to query in draw order.
func (q *QueryEngine) candidates(layers []Layer) []stackedLayer {
	if len(layers) == 0 {
		all := q.layers.Layers()
		out := make([]stackedLayer, len(all))
		for i, l := range all {
			out[i] = stackedLayer{layer: l, index: i}
		}
		return out
	}

	out := make([]stackedLayer, 0, len(layers))
	seen := make(map[int]bool, len(layers))
	for _, l := range layers {
		i := q.layers.Index(l)
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, stackedLayer{layer: l, index: i})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].index < out[j].index
	})
	return out
}

// flatten orders buckets by z-index then layer position, merging adjacent
// groups of the same layer.
func flatten(buckets map[hitKey]*LayerFeatures) QueryResult {
	keys := make([]hitKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].z != keys[j].z {
			return keys[i].z < keys[j].z
		}
		return keys[i].layer < keys[j].layer
	})

	result := make(QueryResult, 0, len(keys))
	last := -1
	for _, k := range keys {
		g := buckets[k]
		if k.layer == last {
			prev := &result[len(result)-1]
			prev.Features = append(prev.Features, g.Features...)
			continue
		}
		result = append(result, *g)
		last = k.layer
	}
	return result
}

func normalizeRect(r PixelRect) PixelRect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}
