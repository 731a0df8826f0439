// Package mapview provides the viewport and spatial query core of an
// interactive slippy map.
//
// A Controller holds the camera (geographic center, zoom, rotation, pitch and
// screen size) and converts between geographic positions and screen pixels.
// A QueryEngine answers which features are under a screen region, honoring
// rotation, layer draw order and per-feature hit geometry. Map composes both
// with a LayerStack.
//
// # Basic Usage
//
//	m, err := mapview.New(mapview.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Dispose()
//
//	m.SetCenter(8.534, 50.162)
//	m.SetZoomlevel(14)
//	fmt.Printf("Visible: %+v\n", m.ViewBounds())
//
// # Grid Zoom and Scale
//
// Rendering works on a tile grid of integer zoom (GridZoom, at most
// MaxGridZoom). Fractional zoom levels are displayed by scaling that grid:
//
//	Zoomlevel() == float64(GridZoom()) + math.Log2(Scale())
//
// World pixel coordinates are relative to the current grid; WorldSize() is
// 2^GridZoom() * TileSize().
//
// # Zooming Around a Point
//
// Zooming with an anchor keeps the geographic position under the anchor pixel
// fixed on screen:
//
//	anchor := mapview.PixelPoint{X: 120, Y: 80}
//	m.SetZoomlevelWithOptions(15, mapview.ZoomOptions{Anchor: &anchor})
//
// # Events
//
// Listeners run synchronously, in registration order. A zoom that moves the
// grid center reports EventCenter before EventZoomlevel.
//
//	sub := m.On(mapview.EventZoomlevel, func(e mapview.Event) {
//	    fmt.Printf("zoom %.3f -> %.3f\n", e.OldValue, e.NewValue)
//	})
//	defer m.Off(sub)
//
// # Spatial Queries
//
//	provider, _ := mapview.NewIndexProviderFromGeoJSON(data)
//	m.Layers().Add(mapview.NewStyledLayer("poi", provider))
//
//	hit, _ := m.FeatureAt(400, 300, mapview.QueryOptions{})
//	if hit != nil {
//	    fmt.Println(hit.Feature.ID())
//	}
//
// Results are grouped by layer and ordered bottom to top by style z-index,
// then layer draw order.
//
// # Concurrency
//
// A Controller and everything built on it belong to a single goroutine.
// No method is safe for concurrent use.
package mapview
