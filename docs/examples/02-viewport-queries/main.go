package main

import (
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/mapview/pkg/mapview"
)

func main() {
	// Load features
	data, err := os.ReadFile("harbor.geojson")
	if err != nil {
		log.Fatal(err)
	}
	provider, err := mapview.NewIndexProviderFromGeoJSON(data)
	if err != nil {
		log.Fatal(err)
	}

	m, err := mapview.New(mapview.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Dispose()

	// Draw buoys as 6 px markers above everything else
	layer := mapview.NewStyledLayer("buoys", provider)
	layer.Style = func(f *mapview.Feature, gridZoom int) mapview.StyleGroup {
		return mapview.StyleGroup{{ZIndex: 10, Radius: 6}}
	}
	m.Layers().Add(layer)

	// Fit the data into the view, rotated by 30°
	m.SetRotation(30)
	if err := m.SetViewBounds(provider.Bounds()); err != nil {
		log.Fatal(err)
	}

	// Query R-tree index for visible features (O(log n))
	visible := provider.Search(m.ViewBounds())
	fmt.Printf("Visible features: %d\n", len(visible))

	// What is under the screen center?
	hit, err := m.FeatureAt(400, 300, mapview.QueryOptions{})
	if err != nil {
		log.Fatal(err)
	}
	if hit != nil {
		fmt.Printf("Feature at center: %v\n", hit.Feature.ID())
	}

	// Everything in the top-left quarter, bottom to top
	result, _ := m.FeaturesIn(mapview.PixelRect{X1: 0, Y1: 0, X2: 400, Y2: 300}, mapview.QueryOptions{})
	for _, group := range result {
		for _, f := range group.Features {
			p := f.Geometry().Bound().Center()
			px, _ := m.GeoToPixel(p[0], p[1])
			fmt.Printf("  %v at (%.0f, %.0f)\n", f.ID(), px.X, px.Y)
		}
	}
}
