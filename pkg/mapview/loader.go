package mapview

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
)

// LoadOptions controls how GeoJSON files are loaded into a provider.
type LoadOptions struct {
	// Workers is the number of files decoded concurrently.
	// If 0, defaults to runtime.NumCPU(). 1 loads serially.
	Workers int

	// SkipErrors continues past files that cannot be read or decoded.
	// When false, the first error stops loading and is returned alone.
	SkipErrors bool

	// Progress is called after each file with the number of files processed.
	Progress func(loaded, total int)

	// Logger receives one warning per failed file. Optional.
	Logger logrus.FieldLogger
}

// DefaultLoadOptions returns load options using every CPU and skipping bad files.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
	}
}

// LoadGeoJSONFiles decodes GeoJSON FeatureCollection files into one provider.
//
// Files are decoded by a worker pool; features are indexed in path order, so
// the provider's result order does not depend on scheduling.
//
// Example:
//
//	provider, errs := mapview.LoadGeoJSONFiles(paths, mapview.LoadOptions{
//	    Workers:    4,
//	    SkipErrors: true,
//	    Progress: func(loaded, total int) {
//	        fmt.Printf("\rLoading: %d/%d", loaded, total)
//	    },
//	})
//	if len(errs) > 0 {
//	    fmt.Printf("\nSkipped %d files\n", len(errs))
//	}
//	m.Layers().Add(mapview.NewStyledLayer("overlay", provider))
func LoadGeoJSONFiles(paths []string, opts LoadOptions) (*IndexProvider, []error) {
	if len(paths) == 0 {
		return NewIndexProvider(), nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type loadResult struct {
		index int
		fc    *geojson.FeatureCollection
		err   error
	}

	jobs := make(chan int, len(paths))
	results := make(chan loadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				fc, err := readFeatureCollection(paths[index])
				results <- loadResult{index: index, fc: fc, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collections := make(map[int]*geojson.FeatureCollection, len(paths))
	var errs []error
	loaded := 0

	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(paths))
		}

		if result.err != nil {
			err := fmt.Errorf("%s: %w", paths[result.index], result.err)
			if opts.Logger != nil {
				opts.Logger.WithError(err).Warn("skipping feature file")
			}
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		collections[result.index] = result.fc
	}

	provider := NewIndexProvider()
	for i := range paths {
		fc, ok := collections[i]
		if !ok {
			continue
		}
		for _, f := range fc.Features {
			provider.Add(FeatureFromGeoJSON(f))
		}
	}
	return provider, errs
}

func readFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	return fc, nil
}
