package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/mapview/pkg/mapview"
)

func main() {
	// Create an 800x600 map over Frankfurt
	opts := mapview.DefaultOptions()
	opts.Center = mapview.GeoPoint{Lon: 8.534, Lat: 50.162}
	opts.Zoom = 12

	m, err := mapview.New(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Dispose()

	// Follow camera changes
	m.On(mapview.EventZoomlevel, func(e mapview.Event) {
		fmt.Printf("Zoom: %.3f -> %.3f\n", e.OldValue, e.NewValue)
	})

	// Zoom in around the top-left quarter of the screen
	anchor := mapview.PixelPoint{X: 200, Y: 150}
	if err := m.SetZoomlevelWithOptions(13.5, mapview.ZoomOptions{Anchor: &anchor}); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Center: %.6f, %.6f\n", m.Center().Lon, m.Center().Lat)
	fmt.Printf("Grid zoom: %d, scale: %.3f\n", m.GridZoom(), m.Scale())

	// Get view bounds
	bounds := m.ViewBounds()
	fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
		bounds.MinLon, bounds.MinLat,
		bounds.MaxLon, bounds.MaxLat)
}
