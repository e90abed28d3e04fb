// Package config loads campusnav settings with viper.
//
// Precedence, highest first: flags bound by the CLI, CAMPUSNAV_* environment
// variables, the .campusnav.yaml config file, then defaults. The config file
// is searched in $CAMPUSNAV_CONFIG_PATH and the working directory; a
// missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/campusnav/internal/debounce"
	"github.com/roach88/campusnav/internal/navstate"
	"github.com/roach88/campusnav/internal/viewport"
)

// Keys.
const (
	KeyDB              = "db"
	KeyPostgresDSN     = "postgres_dsn"
	KeyDebounce        = "debounce"
	KeyClosingGuard    = "closing_guard"
	KeyNavigationGuard = "navigation_guard"
	KeyFlyDuration     = "fly_duration"
	KeyMinSelectZoom   = "min_select_zoom"
	KeyDefaultZoom     = "default_zoom"
	KeyCenterLat       = "default_center.lat"
	KeyCenterLng       = "default_center.lng"
)

// DefaultDB is the default SQLite path.
const DefaultDB = "campusnav.db"

// maxZoom is the deepest zoom level of common web map tile sets.
const maxZoom = 22

// Config is the resolved configuration.
type Config struct {
	DB              string          `json:"db"`
	PostgresDSN     string          `json:"postgres_dsn,omitempty"`
	Debounce        time.Duration   `json:"debounce"`
	ClosingGuard    time.Duration   `json:"closing_guard"`
	NavigationGuard time.Duration   `json:"navigation_guard"`
	FlyDuration     time.Duration   `json:"fly_duration"`
	MinSelectZoom   float64         `json:"min_select_zoom"`
	DefaultZoom     float64         `json:"default_zoom"`
	DefaultCenter   viewport.LatLng `json:"default_center"`
}

// Viewport returns the viewport controller options.
func (c *Config) Viewport() viewport.Options {
	return viewport.Options{
		MinSelectZoom: c.MinSelectZoom,
		DefaultZoom:   c.DefaultZoom,
		FlyDuration:   c.FlyDuration,
	}
}

// StoreOptions returns the navigation store options for the configured
// debounce and guard windows.
func (c *Config) StoreOptions() []navstate.Option {
	return []navstate.Option{
		navstate.WithDebounce(c.Debounce),
		navstate.WithClosingGuard(c.ClosingGuard),
		navstate.WithNavigationGuard(c.NavigationGuard),
	}
}

// Loader resolves a Config from defaults, a file, the environment and
// bound flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment binding set up.
func NewLoader() *Loader {
	v := viper.New()

	v.SetDefault(KeyDB, DefaultDB)
	v.SetDefault(KeyPostgresDSN, "")
	v.SetDefault(KeyDebounce, debounce.DefaultInterval)
	v.SetDefault(KeyClosingGuard, navstate.DefaultClosingGuard)
	v.SetDefault(KeyNavigationGuard, navstate.DefaultNavigationGuard)
	v.SetDefault(KeyFlyDuration, viewport.DefaultFlyDuration)
	v.SetDefault(KeyMinSelectZoom, viewport.DefaultMinSelectZoom)
	v.SetDefault(KeyDefaultZoom, viewport.DefaultZoom)
	v.SetDefault(KeyCenterLat, 0.0)
	v.SetDefault(KeyCenterLng, 0.0)

	v.SetConfigName(".campusnav") // .yaml is implicit
	v.SetEnvPrefix("CAMPUSNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("CAMPUSNAV_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	return &Loader{v: v}
}

// Viper exposes the underlying instance so the CLI can bind flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the config file and resolves every key. A non-empty file is
// used instead of the search path and must exist.
func (l *Loader) Load(file string) (*Config, error) {
	if file != "" {
		l.v.SetConfigFile(file)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DB:              l.v.GetString(KeyDB),
		PostgresDSN:     l.v.GetString(KeyPostgresDSN),
		Debounce:        l.v.GetDuration(KeyDebounce),
		ClosingGuard:    l.v.GetDuration(KeyClosingGuard),
		NavigationGuard: l.v.GetDuration(KeyNavigationGuard),
		FlyDuration:     l.v.GetDuration(KeyFlyDuration),
		MinSelectZoom:   l.v.GetFloat64(KeyMinSelectZoom),
		DefaultZoom:     l.v.GetFloat64(KeyDefaultZoom),
		DefaultCenter: viewport.LatLng{
			Lat: l.v.GetFloat64(KeyCenterLat),
			Lng: l.v.GetFloat64(KeyCenterLng),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load resolves a Config without flag bindings.
func Load(file string) (*Config, error) {
	return NewLoader().Load(file)
}

// Validate rejects values the navigation core cannot run with.
func (c *Config) Validate() error {
	durations := []struct {
		key string
		d   time.Duration
	}{
		{KeyDebounce, c.Debounce},
		{KeyClosingGuard, c.ClosingGuard},
		{KeyNavigationGuard, c.NavigationGuard},
		{KeyFlyDuration, c.FlyDuration},
	}
	for _, d := range durations {
		if d.d < 0 {
			return fmt.Errorf("config %s: must not be negative, got %s", d.key, d.d)
		}
	}
	if c.MinSelectZoom < 0 || c.MinSelectZoom > maxZoom {
		return fmt.Errorf("config %s: must be within 0..%d, got %g", KeyMinSelectZoom, maxZoom, c.MinSelectZoom)
	}
	if c.DefaultZoom < 0 || c.DefaultZoom > maxZoom {
		return fmt.Errorf("config %s: must be within 0..%d, got %g", KeyDefaultZoom, maxZoom, c.DefaultZoom)
	}
	if c.DefaultCenter.Lat < -90 || c.DefaultCenter.Lat > 90 || c.DefaultCenter.Lng < -180 || c.DefaultCenter.Lng > 180 {
		return fmt.Errorf("config default_center: out of range (%g, %g)", c.DefaultCenter.Lat, c.DefaultCenter.Lng)
	}
	return nil
}
