package mapview

import (
	"errors"
	"fmt"
)

// ErrDisposed is returned by every operation on a controller, query engine or
// map after Dispose has been called.
var ErrDisposed = errors.New("mapview: use after dispose")

// ErrNoContainer is returned by ResizeToContainer when no Container was configured.
var ErrNoContainer = errors.New("mapview: no container configured")

// ErrInvalidCoordinate indicates a coordinate that is not a finite number.
//
// Out-of-range but finite values are never reported; they are wrapped or clamped.
type ErrInvalidCoordinate struct {
	Lon, Lat float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lon=%f lat=%f (must be finite numbers)",
		e.Lon, e.Lat)
}

// ConfigError indicates an option value that cannot be used to build a viewport.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Reason)
}
