package mapview

// Provider supplies features for a layer. Its capabilities are discovered by
// type assertion; a provider that does not implement Searcher takes no part
// in spatial queries.
type Provider interface{}

// Searcher is a provider capable of spatial search.
type Searcher interface {
	// Search returns the features intersecting b. A nil result means none.
	Search(b Bounds) []*Feature
}

// Style is the hit-relevant part of a drawable style.
type Style struct {
	// ZIndex is the resolved draw order of the style.
	ZIndex int

	// Radius is the symbol radius in pixels for point geometries.
	Radius float64

	// StrokeWidth is the line width in pixels for lines and polygon outlines.
	StrokeWidth float64

	// Fill makes polygon interiors hit-testable.
	Fill bool
}

// StyleGroup is the list of styles a feature is drawn with.
type StyleGroup []Style

// DefaultStyleGroup is used by StyledLayer when no style function is set.
var DefaultStyleGroup = StyleGroup{
	{ZIndex: 0, Radius: 8, StrokeWidth: 4, Fill: true},
}

// Layer is a map layer as seen by spatial queries.
//
// Layers are compared by identity, so implementations should be pointer types.
type Layer interface {
	// ZoomRange returns the zoom levels at which the layer is displayed.
	ZoomRange() (min, max float64)

	// Provider returns the active provider for a zoom level, or nil.
	Provider(zoom float64) Provider

	// StyleGroup resolves the styles of a feature at a grid zoom. A nil
	// result means the feature is not drawn and cannot be hit.
	StyleGroup(f *Feature, gridZoom int) StyleGroup
}

// StyledLayer is a basic Layer with a single provider.
type StyledLayer struct {
	Name    string
	MinZoom float64
	MaxZoom float64
	Source  Provider

	// Style resolves feature styles. If nil, DefaultStyleGroup is used.
	Style func(f *Feature, gridZoom int) StyleGroup
}

// NewStyledLayer creates a layer visible at every zoom level.
func NewStyledLayer(name string, source Provider) *StyledLayer {
	return &StyledLayer{
		Name:    name,
		MinZoom: 0,
		MaxZoom: MaxZoomLevel,
		Source:  source,
	}
}

// ZoomRange implements Layer.
func (l *StyledLayer) ZoomRange() (float64, float64) {
	return l.MinZoom, l.MaxZoom
}

// Provider implements Layer.
func (l *StyledLayer) Provider(zoom float64) Provider {
	return l.Source
}

// StyleGroup implements Layer.
func (l *StyledLayer) StyleGroup(f *Feature, gridZoom int) StyleGroup {
	if l.Style == nil {
		return DefaultStyleGroup
	}
	return l.Style(f, gridZoom)
}

// String returns the layer name.
func (l *StyledLayer) String() string {
	return l.Name
}

// LayerStack is the ordered layer collection of a map. Index 0 is drawn first.
type LayerStack struct {
	layers []Layer
}

// NewLayerStack creates a stack from layers in draw order.
func NewLayerStack(layers ...Layer) *LayerStack {
	s := &LayerStack{}
	for _, l := range layers {
		s.Add(l)
	}
	return s
}

// Add appends a layer on top. A layer already in the stack is not added again.
// Returns the layer's index.
func (s *LayerStack) Add(l Layer) int {
	if i := s.Index(l); i >= 0 {
		return i
	}
	s.layers = append(s.layers, l)
	return len(s.layers) - 1
}

// Insert places a layer at index, clamped to the stack size. A layer already
// in the stack is moved.
func (s *LayerStack) Insert(l Layer, index int) {
	s.Remove(l)
	if index < 0 {
		index = 0
	}
	if index > len(s.layers) {
		index = len(s.layers)
	}
	s.layers = append(s.layers, nil)
	copy(s.layers[index+1:], s.layers[index:])
	s.layers[index] = l
}

// Remove deletes a layer. Returns false if it was not in the stack.
func (s *LayerStack) Remove(l Layer) bool {
	i := s.Index(l)
	if i < 0 {
		return false
	}
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	return true
}

// Index returns the draw position of a layer, or -1.
func (s *LayerStack) Index(l Layer) int {
	for i, layer := range s.layers {
		if layer == l {
			return i
		}
	}
	return -1
}

// Layers returns a copy of the layers in draw order.
func (s *LayerStack) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Len returns the number of layers.
func (s *LayerStack) Len() int {
	return len(s.layers)
}
