package mapview

// Map composes a viewport controller, its layer stack and a query engine.
//
// The camera operations of the Controller are promoted, so a Map is used
// directly as the viewport.
//
// Example:
//
//	m, err := mapview.New(mapview.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Dispose()
//
//	m.Layers().Add(mapview.NewStyledLayer("buoys", provider))
//	m.SetCenter(8.534, 50.162)
//	m.SetZoomlevel(14)
//	hit, _ := m.FeatureAt(400, 300, mapview.QueryOptions{})
type Map struct {
	*Controller

	layers *LayerStack
	query  *QueryEngine
}

// New creates a map from options.
func New(opts Options) (*Map, error) {
	c, err := NewController(opts)
	if err != nil {
		return nil, err
	}
	layers := NewLayerStack()
	return &Map{
		Controller: c,
		layers:     layers,
		query:      NewQueryEngine(c, layers, opts.HitTester),
	}, nil
}

// Layers returns the layer stack of the map.
func (m *Map) Layers() *LayerStack {
	return m.layers
}

// FeaturesIn returns the features under the center of a screen rectangle.
func (m *Map) FeaturesIn(rect PixelRect, opts QueryOptions) (QueryResult, error) {
	return m.query.FeaturesIn(rect, opts)
}

// FeaturesAt returns the features at a screen position.
func (m *Map) FeaturesAt(x, y float64, opts QueryOptions) (QueryResult, error) {
	return m.query.FeaturesAt(x, y, opts)
}

// FeatureAt returns the topmost feature at a screen position, or nil.
func (m *Map) FeatureAt(x, y float64, opts QueryOptions) (*FeatureHit, error) {
	return m.query.FeatureAt(x, y, opts)
}

// Dispose releases the viewport and drops all layers.
func (m *Map) Dispose() {
	m.Controller.Dispose()
	m.layers = NewLayerStack()
	m.query.layers = m.layers
}
