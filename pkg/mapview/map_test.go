package mapview

import (
	"errors"
	"testing"
)

const buoysGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "id": "buoy-1", "geometry": {"type": "Point", "coordinates": [8.534, 50.162]}, "properties": {"color": "red"}},
		{"type": "Feature", "id": "buoy-2", "geometry": {"type": "Point", "coordinates": [8.600, 50.200]}, "properties": {"color": "green"}},
		{"type": "Feature", "id": "area", "geometry": {"type": "Polygon", "coordinates": [[[8.5, 50.1], [8.6, 50.1], [8.6, 50.2], [8.5, 50.2], [8.5, 50.1]]]}}
	]
}`

func newTestMap(t *testing.T) (*Map, *StyledLayer, *StyledLayer) {
	t.Helper()
	opts := DefaultOptions()
	opts.Center = GeoPoint{Lon: 8.534, Lat: 50.162}
	opts.Zoom = 14
	opts.Logger = quietLogger()
	m, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	provider, err := NewIndexProviderFromGeoJSON([]byte(buoysGeoJSON))
	if err != nil {
		t.Fatalf("NewIndexProviderFromGeoJSON() error = %v", err)
	}

	areas := NewStyledLayer("areas", provider)
	areas.Style = func(f *Feature, gridZoom int) StyleGroup {
		if f.ID() != "area" {
			return nil
		}
		return StyleGroup{{ZIndex: 0, StrokeWidth: 2, Fill: true}}
	}
	buoys := NewStyledLayer("buoys", provider)
	buoys.Style = func(f *Feature, gridZoom int) StyleGroup {
		if _, ok := f.Property("color"); !ok {
			return nil
		}
		return StyleGroup{{ZIndex: 10, Radius: 6}}
	}
	m.Layers().Add(areas)
	m.Layers().Add(buoys)
	return m, areas, buoys
}

func TestMapFeatureAt(t *testing.T) {
	m, areas, buoys := newTestMap(t)

	hit, err := m.FeatureAt(400, 300, QueryOptions{})
	if err != nil {
		t.Fatalf("FeatureAt() error = %v", err)
	}
	if hit == nil || hit.Feature.ID() != "buoy-1" || hit.Layer != Layer(buoys) {
		t.Fatalf("FeatureAt(center) = %+v, want buoy-1 on buoys", hit)
	}

	// Away from the buoy only the area is hit.
	hit, _ = m.FeatureAt(360, 300, QueryOptions{})
	if hit == nil || hit.Feature.ID() != "area" || hit.Layer != Layer(areas) {
		t.Errorf("FeatureAt(area) = %+v, want area on areas", hit)
	}

	all, _ := m.FeaturesAt(400, 300, QueryOptions{})
	if len(all) != 2 || all[0].Layer != Layer(areas) || all[1].Layer != Layer(buoys) {
		t.Errorf("FeaturesAt() groups = %d, want [areas buoys]", len(all))
	}

	only, _ := m.FeaturesAt(400, 300, QueryOptions{Layers: []Layer{areas}})
	if only.Len() != 1 || only[0].Features[0].ID() != "area" {
		t.Errorf("FeaturesAt(areas) = %+v", only)
	}
}

func TestMapFeaturesIn(t *testing.T) {
	m, _, _ := newTestMap(t)

	p, _ := m.GeoToPixel(8.6, 50.2)
	result, err := m.FeaturesIn(PixelRect{X1: p.X - 5, Y1: p.Y - 5, X2: p.X + 5, Y2: p.Y + 5}, QueryOptions{})
	if err != nil {
		t.Fatalf("FeaturesIn() error = %v", err)
	}
	top := result.Top()
	if top == nil || top.Feature.ID() != "buoy-2" {
		t.Errorf("FeaturesIn() top = %+v, want buoy-2", top)
	}
}

func TestMapFollowsCamera(t *testing.T) {
	m, _, _ := newTestMap(t)

	m.SetRotation(45)
	m.SetPitch(30)
	p, _ := m.GeoToPixel(8.6, 50.2)
	hit, _ := m.FeatureAt(p.X, p.Y, QueryOptions{})
	if hit == nil || hit.Feature.ID() != "buoy-2" {
		t.Errorf("FeatureAt(%+v) = %+v, want buoy-2", p, hit)
	}
}

func TestMapDispose(t *testing.T) {
	m, _, _ := newTestMap(t)
	m.Dispose()

	if m.Layers().Len() != 0 {
		t.Errorf("Layers().Len() = %d after Dispose, want 0", m.Layers().Len())
	}
	if _, err := m.FeatureAt(400, 300, QueryOptions{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("FeatureAt() error = %v, want ErrDisposed", err)
	}
	if err := m.SetZoomlevel(3); !errors.Is(err, ErrDisposed) {
		t.Errorf("SetZoomlevel() error = %v, want ErrDisposed", err)
	}
}

func TestLayerStack(t *testing.T) {
	a, b, c := NewStyledLayer("a", nil), NewStyledLayer("b", nil), NewStyledLayer("c", nil)
	s := NewLayerStack(a, b, a)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if i := s.Add(c); i != 2 {
		t.Errorf("Add(c) = %d, want 2", i)
	}
	s.Insert(c, 0)
	if s.Index(c) != 0 || s.Index(a) != 1 || s.Index(b) != 2 {
		t.Errorf("order after Insert = %v", s.Layers())
	}
	s.Insert(a, 99)
	if s.Index(a) != 2 {
		t.Errorf("Index(a) = %d after Insert at end, want 2", s.Index(a))
	}
	if !s.Remove(b) || s.Remove(b) {
		t.Error("Remove(b) should succeed once")
	}
	if s.Index(b) != -1 {
		t.Errorf("Index(b) = %d after Remove, want -1", s.Index(b))
	}

	layers := s.Layers()
	layers[0] = nil
	if s.Layers()[0] == nil {
		t.Error("Layers() exposes internal storage")
	}
}

func TestStyledLayerDefaults(t *testing.T) {
	l := NewStyledLayer("poi", nil)
	if lo, hi := l.ZoomRange(); lo != 0 || hi != MaxZoomLevel {
		t.Errorf("ZoomRange() = %v, %v, want 0, %d", lo, hi, MaxZoomLevel)
	}
	if got := l.StyleGroup(NewFeature(1, nil, nil), 10); len(got) != len(DefaultStyleGroup) {
		t.Errorf("StyleGroup() = %v, want DefaultStyleGroup", got)
	}
	if l.String() != "poi" {
		t.Errorf("String() = %q, want poi", l.String())
	}
}
