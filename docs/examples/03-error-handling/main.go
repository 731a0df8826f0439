package main

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/beetlebugorg/mapview/pkg/mapview"
)

func newMap(configPath string) (*mapview.Map, error) {
	cfg, err := mapview.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}

	opts := cfg.Options()
	opts.Logger = logger
	m, err := mapview.New(opts)
	if err != nil {
		// Check which option was rejected
		var cfgErr *mapview.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("option %s: %s", cfgErr.Field, cfgErr.Reason)
		}
		return nil, err
	}
	return m, nil
}

func main() {
	// Defaults plus ./mapview.yaml and MAPVIEW_* variables, if present
	m, err := newMap("")
	if err != nil {
		log.Fatal(err)
	}

	// Out-of-range coordinates are wrapped and clamped, not rejected
	m.SetCenter(185, 89)
	fmt.Printf("Center: %+v\n", m.Center())

	// Non-finite coordinates are rejected and leave the view unchanged
	var coordErr *mapview.ErrInvalidCoordinate
	if err := m.SetCenter(math.NaN(), 0); errors.As(err, &coordErr) {
		log.Printf("Expected error: %v", err)
	}

	// A disposed map refuses every operation
	m.Dispose()
	if err := m.SetZoomlevel(5); errors.Is(err, mapview.ErrDisposed) {
		log.Printf("Expected error: %v", err)
	}

	// Try to load an explicit config file that does not exist
	if _, err := newMap("missing.yaml"); err != nil {
		log.Printf("Expected error: %v", err)
	}
}
