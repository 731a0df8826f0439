package mapview

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// fakeSearcher returns the same features for every search.
type fakeSearcher struct {
	features []*Feature
	searches []Bounds
}

func (s *fakeSearcher) Search(b Bounds) []*Feature {
	s.searches = append(s.searches, b)
	return s.features
}

type fakeLayer struct {
	name     string
	min, max float64
	provider Provider

	// styles overrides the style group per feature; a missing entry means
	// the feature is not drawn.
	styles map[*Feature]StyleGroup
}

func newFakeLayer(name string, features ...*Feature) *fakeLayer {
	return &fakeLayer{
		name:     name,
		max:      MaxZoomLevel,
		provider: &fakeSearcher{features: features},
	}
}

func (l *fakeLayer) ZoomRange() (float64, float64) { return l.min, l.max }

func (l *fakeLayer) Provider(zoom float64) Provider { return l.provider }

func (l *fakeLayer) StyleGroup(f *Feature, gridZoom int) StyleGroup {
	if l.styles == nil {
		return StyleGroup{{}}
	}
	return l.styles[f]
}

func (l *fakeLayer) searcher() *fakeSearcher { return l.provider.(*fakeSearcher) }

// zHitTester hits every feature it has a z-index for.
type zHitTester struct {
	z     map[*Feature]int
	calls []PixelPoint
}

func (h *zHitTester) Hit(x, y float64, f *Feature, styles StyleGroup, layerIndex int, zoom float64) (int, bool) {
	h.calls = append(h.calls, PixelPoint{X: x, Y: y})
	z, ok := h.z[f]
	return z, ok
}

func pointFeature(id string) *Feature {
	return NewFeature(id, orb.Point{0, 0}, nil)
}

func newTestEngine(t *testing.T, hit HitTester, layers ...Layer) (*QueryEngine, *Controller) {
	t.Helper()
	c := newTestController(t, func(o *Options) { o.Zoom = 10 })
	return NewQueryEngine(c, NewLayerStack(layers...), hit), c
}

func resultIDs(r QueryResult) [][]interface{} {
	out := make([][]interface{}, len(r))
	for i, g := range r {
		ids := []interface{}{g.Layer.(*fakeLayer).name}
		for _, f := range g.Features {
			ids = append(ids, f.ID())
		}
		out[i] = ids
	}
	return out
}

func equalIDs(a, b [][]interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestQueryZOrderMerge(t *testing.T) {
	a0, a1, a2 := pointFeature("a0"), pointFeature("a1"), pointFeature("a2")
	b0, b1 := pointFeature("b0"), pointFeature("b1")

	tests := []struct {
		name string
		a, b []*Feature
		z    map[*Feature]int
		want [][]interface{}
	}{
		{
			name: "interleaved layers stay separate",
			a:    []*Feature{a0, a2},
			b:    []*Feature{b1},
			z:    map[*Feature]int{a0: 0, b1: 1, a2: 2},
			want: [][]interface{}{{"A", "a0"}, {"B", "b1"}, {"A", "a2"}},
		},
		{
			name: "consecutive hits of one layer merge",
			a:    []*Feature{a0, a1},
			b:    []*Feature{b0},
			z:    map[*Feature]int{a0: 0, a1: 1, b0: 2},
			want: [][]interface{}{{"A", "a0", "a1"}, {"B", "b0"}},
		},
		{
			name: "same z-index ordered by layer",
			a:    []*Feature{a0},
			b:    []*Feature{b0},
			z:    map[*Feature]int{a0: 3, b0: 3},
			want: [][]interface{}{{"A", "a0"}, {"B", "b0"}},
		},
		{
			name: "lower layer above by z-index",
			a:    []*Feature{a0},
			b:    []*Feature{b0},
			z:    map[*Feature]int{a0: 5, b0: 1},
			want: [][]interface{}{{"B", "b0"}, {"A", "a0"}},
		},
		{
			name: "misses are dropped",
			a:    []*Feature{a0, a1},
			b:    []*Feature{b0},
			z:    map[*Feature]int{a1: 0},
			want: [][]interface{}{{"A", "a1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layerA := newFakeLayer("A", tt.a...)
			layerB := newFakeLayer("B", tt.b...)
			q, _ := newTestEngine(t, &zHitTester{z: tt.z}, layerA, layerB)

			got, err := q.FeaturesIn(PixelRect{X1: 390, Y1: 290, X2: 410, Y2: 310}, QueryOptions{})
			if err != nil {
				t.Fatalf("FeaturesIn() error = %v", err)
			}
			if ids := resultIDs(got); !equalIDs(ids, tt.want) {
				t.Errorf("FeaturesIn() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestQueryTopOnly(t *testing.T) {
	a0, a2, b1 := pointFeature("a0"), pointFeature("a2"), pointFeature("b1")
	layerA := newFakeLayer("A", a0, a2)
	layerB := newFakeLayer("B", b1)
	hit := &zHitTester{z: map[*Feature]int{a0: 0, b1: 1, a2: 2}}
	q, _ := newTestEngine(t, hit, layerA, layerB)

	got, _ := q.FeaturesAt(400, 300, QueryOptions{TopOnly: true})
	if ids := resultIDs(got); !equalIDs(ids, [][]interface{}{{"A", "a2"}}) {
		t.Errorf("FeaturesAt(TopOnly) = %v, want [[A a2]]", ids)
	}

	top, err := q.FeatureAt(400, 300, QueryOptions{})
	if err != nil {
		t.Fatalf("FeatureAt() error = %v", err)
	}
	if top == nil || top.Feature != a2 || top.Layer != Layer(layerA) {
		t.Errorf("FeatureAt() = %+v, want a2 on layer A", top)
	}
}

func TestQueryLayerSelection(t *testing.T) {
	a0, b0 := pointFeature("a0"), pointFeature("b0")
	layerA := newFakeLayer("A", a0)
	layerB := newFakeLayer("B", b0)
	outside := newFakeLayer("C", pointFeature("c0"))
	hit := &zHitTester{z: map[*Feature]int{a0: 0, b0: 0}}
	q, _ := newTestEngine(t, hit, layerA, layerB)

	tests := []struct {
		name   string
		layers []Layer
		want   [][]interface{}
	}{
		{"all layers", nil, [][]interface{}{{"A", "a0"}, {"B", "b0"}}},
		{"reordered to draw order", []Layer{layerB, layerA}, [][]interface{}{{"A", "a0"}, {"B", "b0"}}},
		{"single layer", []Layer{layerB}, [][]interface{}{{"B", "b0"}}},
		{"duplicate layer", []Layer{layerB, layerB}, [][]interface{}{{"B", "b0"}}},
		{"layer not on map", []Layer{outside}, [][]interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := q.FeaturesAt(400, 300, QueryOptions{Layers: tt.layers})
			if err != nil {
				t.Fatalf("FeaturesAt() error = %v", err)
			}
			if ids := resultIDs(got); !equalIDs(ids, tt.want) {
				t.Errorf("FeaturesAt() = %v, want %v", ids, tt.want)
			}
		})
	}
	if n := len(outside.searcher().searches); n != 0 {
		t.Errorf("layer not on map searched %d times, want 0", n)
	}
}

func TestQuerySkipsLayers(t *testing.T) {
	f := pointFeature("f")
	hit := &zHitTester{z: map[*Feature]int{f: 0}}

	zoomedOut := newFakeLayer("zoomed out", f)
	zoomedOut.min = 12

	noSearch := newFakeLayer("no search")
	noSearch.provider = struct{}{}

	noProvider := newFakeLayer("no provider")
	noProvider.provider = nil

	unstyled := newFakeLayer("unstyled", f)
	unstyled.styles = map[*Feature]StyleGroup{}

	q, _ := newTestEngine(t, hit, zoomedOut, noSearch, noProvider, unstyled)
	got, err := q.FeaturesAt(400, 300, QueryOptions{})
	if err != nil {
		t.Fatalf("FeaturesAt() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("FeaturesAt() = %v, want empty", resultIDs(got))
	}
	if n := len(zoomedOut.searcher().searches); n != 0 {
		t.Errorf("layer outside zoom range searched %d times, want 0", n)
	}
	if len(hit.calls) != 0 {
		t.Errorf("hit tester called %d times for unstyled feature, want 0", len(hit.calls))
	}
}

func TestQueryEmptyMap(t *testing.T) {
	q, _ := newTestEngine(t, &zHitTester{})

	got, err := q.FeaturesAt(400, 300, QueryOptions{})
	if err != nil || len(got) != 0 {
		t.Errorf("FeaturesAt() = %v, %v, want empty result and no error", got, err)
	}
	top, err := q.FeatureAt(400, 300, QueryOptions{})
	if err != nil || top != nil {
		t.Errorf("FeatureAt() = %v, %v, want nil, nil", top, err)
	}
}

func TestPointQueryRegion(t *testing.T) {
	f := pointFeature("f")
	layer := newFakeLayer("A", f)
	hit := &zHitTester{z: map[*Feature]int{f: 0}}
	q, c := newTestEngine(t, hit, layer)

	q.FeaturesAt(400, 300, QueryOptions{Width: 10, Height: 20})

	searches := layer.searcher().searches
	if len(searches) != 1 {
		t.Fatalf("got %d searches, want 1", len(searches))
	}
	degPerPixel := 360 / c.WorldSize()
	wantWidth := (10 + 2*SearchRadius(10)) * degPerPixel
	if got := searches[0].MaxLon - searches[0].MinLon; math.Abs(got-wantWidth) > 1e-9 {
		t.Errorf("search width = %v°, want %v°", got, wantWidth)
	}
	if !searches[0].Contains(0, 0) {
		t.Errorf("search region %+v does not contain the center", searches[0])
	}
	if len(hit.calls) != 1 || hit.calls[0] != (PixelPoint{X: 400, Y: 300}) {
		t.Errorf("hit tested at %v, want [{400 300}]", hit.calls)
	}
}

func TestRotatedQueryRegion(t *testing.T) {
	rect := PixelRect{X1: 350, Y1: 250, X2: 450, Y2: 350}
	width := func(rotation float64) float64 {
		layer := newFakeLayer("A")
		c := newTestController(t, func(o *Options) {
			o.Zoom = 10
			o.Rotation = rotation
		})
		q := NewQueryEngine(c, NewLayerStack(layer), &zHitTester{})
		q.FeaturesIn(rect, QueryOptions{})
		b := layer.searcher().searches[0]
		return b.MaxLon - b.MinLon
	}

	straight, rotated := width(0), width(45)
	if ratio := rotated / straight; math.Abs(ratio-math.Sqrt2) > 1e-6 {
		t.Errorf("rotated/straight search width = %v, want √2", ratio)
	}
}

func TestQueryAcrossAntimeridian(t *testing.T) {
	f := pointFeature("f")
	layer := newFakeLayer("A", f)
	hit := &zHitTester{z: map[*Feature]int{f: 0}}
	c := newTestController(t, func(o *Options) {
		o.Center = GeoPoint{Lon: 180, Lat: 0}
		o.Zoom = 4
	})
	q := NewQueryEngine(c, NewLayerStack(layer), hit)

	got, _ := q.FeaturesAt(400, 300, QueryOptions{})

	searches := layer.searcher().searches
	if len(searches) != 2 {
		t.Fatalf("got %d searches, want 2", len(searches))
	}
	for _, b := range searches {
		if b.MinLon < -180 || b.MaxLon > 180 {
			t.Errorf("search region %+v outside [-180, 180]", b)
		}
	}
	if got.Len() != 1 {
		t.Errorf("result has %d features, want 1", got.Len())
	}
}

func TestSearchRegions(t *testing.T) {
	tests := []struct {
		name string
		in   Bounds
		want []Bounds
	}{
		{
			"inside",
			Bounds{MinLon: 10, MaxLon: 20, MinLat: 0, MaxLat: 1},
			[]Bounds{{MinLon: 10, MaxLon: 20, MinLat: 0, MaxLat: 1}},
		},
		{
			"east overflow",
			Bounds{MinLon: 170, MaxLon: 190, MinLat: 0, MaxLat: 1},
			[]Bounds{
				{MinLon: 170, MaxLon: 180, MinLat: 0, MaxLat: 1},
				{MinLon: -180, MaxLon: -170, MinLat: 0, MaxLat: 1},
			},
		},
		{
			"west overflow",
			Bounds{MinLon: -200, MaxLon: -170, MinLat: 0, MaxLat: 1},
			[]Bounds{
				{MinLon: 160, MaxLon: 180, MinLat: 0, MaxLat: 1},
				{MinLon: -180, MaxLon: -170, MinLat: 0, MaxLat: 1},
			},
		},
		{
			"whole world",
			Bounds{MinLon: -300, MaxLon: 300, MinLat: 0, MaxLat: 1},
			[]Bounds{{MinLon: -180, MaxLon: 180, MinLat: 0, MaxLat: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchRegions(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("searchRegions() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("region %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSearchRadius(t *testing.T) {
	tests := []struct {
		zoom float64
		want float64
	}{
		{-1, 32},
		{0, 32},
		{10, 32},
		{10.9, 32},
		{18, 32},
		{19, 64},
		{20, 128},
		{20.5, 128},
		{32, 32 * 16384},
		{40, 32 * 16384},
	}

	for _, tt := range tests {
		if got := SearchRadius(tt.zoom); got != tt.want {
			t.Errorf("SearchRadius(%v) = %v, want %v", tt.zoom, got, tt.want)
		}
	}
}

func TestQueryDisposed(t *testing.T) {
	q, c := newTestEngine(t, &zHitTester{})
	c.Dispose()

	if _, err := q.FeaturesIn(PixelRect{}, QueryOptions{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("FeaturesIn() error = %v, want ErrDisposed", err)
	}
	if _, err := q.FeaturesAt(0, 0, QueryOptions{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("FeaturesAt() error = %v, want ErrDisposed", err)
	}
	if _, err := q.FeatureAt(0, 0, QueryOptions{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("FeatureAt() error = %v, want ErrDisposed", err)
	}
}
