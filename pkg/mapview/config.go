package mapview

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the file and environment form of Options.
//
// Values are read from an optional config file and from environment variables
// prefixed with MAPVIEW_, e.g. MAPVIEW_VIEW_ZOOM overrides view.zoom.
type Config struct {
	View   ViewConfig   `mapstructure:"view"`
	Limits LimitsConfig `mapstructure:"limits"`
	Log    LogConfig    `mapstructure:"log"`
}

// ViewConfig is the initial camera.
type ViewConfig struct {
	CenterLon    float64 `mapstructure:"center_lon"`
	CenterLat    float64 `mapstructure:"center_lat"`
	Zoom         float64 `mapstructure:"zoom"`
	Rotation     float64 `mapstructure:"rotation"`
	Pitch        float64 `mapstructure:"pitch"`
	Width        float64 `mapstructure:"width"`
	Height       float64 `mapstructure:"height"`
	TileSize     float64 `mapstructure:"tile_size"`
	ZoomBehavior string  `mapstructure:"zoom_behavior"`
}

// LimitsConfig bounds camera changes.
type LimitsConfig struct {
	MinZoom  float64 `mapstructure:"min_zoom"`
	MaxZoom  float64 `mapstructure:"max_zoom"`
	MaxPitch float64 `mapstructure:"max_pitch"`
}

// LogConfig configures the logger built by NewLogger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// LoadConfig reads configuration from defaults, a config file and the
// environment.
//
// If path is empty, a file named mapview.{yaml,toml,json} is looked up in the
// working directory and ./configs; a missing file is not an error. An explicit
// path must exist.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	d := DefaultOptions()
	v.SetDefault("view.center_lon", d.Center.Lon)
	v.SetDefault("view.center_lat", d.Center.Lat)
	v.SetDefault("view.zoom", d.Zoom)
	v.SetDefault("view.rotation", d.Rotation)
	v.SetDefault("view.pitch", d.Pitch)
	v.SetDefault("view.width", d.Width)
	v.SetDefault("view.height", d.Height)
	v.SetDefault("view.tile_size", d.TileSize)
	v.SetDefault("view.zoom_behavior", d.ZoomBehavior.String())
	v.SetDefault("limits.min_zoom", d.MinZoom)
	v.SetDefault("limits.max_zoom", d.MaxZoom)
	v.SetDefault("limits.max_pitch", d.MaxPitch)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("mapview")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// MAPVIEW_VIEW_ZOOM → view.zoom
	v.SetEnvPrefix("MAPVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration can build a viewport.
func (c *Config) Validate() error {
	var errs []string

	if c.View.Width < 0 || c.View.Height < 0 {
		errs = append(errs, fmt.Sprintf("view size must be non-negative, got %gx%g", c.View.Width, c.View.Height))
	}
	if c.View.TileSize <= 0 {
		errs = append(errs, fmt.Sprintf("view.tile_size must be positive, got %g", c.View.TileSize))
	}
	if _, ok := ParseZoomBehavior(c.View.ZoomBehavior); !ok {
		errs = append(errs, fmt.Sprintf("view.zoom_behavior must be fixed or float, got %q", c.View.ZoomBehavior))
	}
	if c.Limits.MinZoom < 0 || c.Limits.MaxZoom > MaxZoomLevel || c.Limits.MinZoom > c.Limits.MaxZoom {
		errs = append(errs, fmt.Sprintf("limits must satisfy 0 <= min_zoom <= max_zoom <= %d, got %g..%g",
			MaxZoomLevel, c.Limits.MinZoom, c.Limits.MaxZoom))
	}
	if c.Limits.MaxPitch < 0 || c.Limits.MaxPitch >= 90 {
		errs = append(errs, fmt.Sprintf("limits.max_pitch must be in [0, 90), got %g", c.Limits.MaxPitch))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Options converts the configuration to controller options. Collaborators
// (Display, Container, Animator, Logger, HitTester) are left unset.
func (c *Config) Options() Options {
	behavior, _ := ParseZoomBehavior(c.View.ZoomBehavior)
	return Options{
		Center:       GeoPoint{Lon: c.View.CenterLon, Lat: c.View.CenterLat},
		Zoom:         c.View.Zoom,
		Rotation:     c.View.Rotation,
		Pitch:        c.View.Pitch,
		Width:        c.View.Width,
		Height:       c.View.Height,
		TileSize:     c.View.TileSize,
		MinZoom:      c.Limits.MinZoom,
		MaxZoom:      c.Limits.MaxZoom,
		MaxPitch:     c.Limits.MaxPitch,
		ZoomBehavior: behavior,
	}
}

// NewLogger builds a logger with the nested formatter at the configured level.
// If log.file is set, output is appended to that file.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		ShowFullLevel:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	logger.SetLevel(level)

	if c.Log.File != "" {
		file, err := os.OpenFile(c.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(io.MultiWriter(os.Stderr, file))
	}
	return logger, nil
}
