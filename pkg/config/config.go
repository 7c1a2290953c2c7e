// Package config handles pathclear configuration: defaults, an optional YAML
// file and PATHCLEAR_* environment overrides, applied in that order.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/NERVsystems/pathclear/pkg/clearance"
	"github.com/NERVsystems/pathclear/pkg/curvature"
	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/observability"
	"github.com/NERVsystems/pathclear/pkg/profile"
	"github.com/NERVsystems/pathclear/pkg/projection"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PATHCLEAR_"

// Config is the root configuration.
type Config struct {
	Engine  EngineConfig                `yaml:"engine"`
	Server  ServerConfig                `yaml:"server"`
	Log     LogConfig                   `yaml:"log"`
	Tracing observability.TracingConfig `yaml:"tracing"`
}

// EngineConfig drives the clearance engine.
type EngineConfig struct {
	EarthRadiusM     float64 `yaml:"earth_radius_m"`
	KFactor          float64 `yaml:"k_factor"`
	FresnelZone      int     `yaml:"fresnel_zone"`
	ProjectionMethod string  `yaml:"projection_method"`
	PlanarThresholdM float64 `yaml:"planar_threshold_m"`
	ProfileSamples   int     `yaml:"profile_samples"`
	ProfileSpacingM  float64 `yaml:"profile_spacing_m,omitempty"`
	MatchToleranceM  float64 `yaml:"match_tolerance_m"`
	Workers          int     `yaml:"workers"`
}

// ServerConfig drives the MCP server.
type ServerConfig struct {
	RateLimitPerSecond float64       `yaml:"rate_limit_per_second"`
	RateLimitBurst     int           `yaml:"rate_limit_burst"`
	ProfileCacheSize   int           `yaml:"profile_cache_size"`
	ProfileCacheTTL    time.Duration `yaml:"profile_cache_ttl"`
	MaxBatchSize       int           `yaml:"max_batch_size"`
	MetricsAddr        string        `yaml:"metrics_addr"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			EarthRadiusM:     geo.MeanEarthRadiusM,
			KFactor:          curvature.DefaultKFactor,
			FresnelZone:      1,
			ProjectionMethod: string(projection.MethodAuto),
			PlanarThresholdM: projection.DefaultPlanarThresholdM,
			ProfileSamples:   profile.DefaultCount,
			MatchToleranceM:  profile.DefaultMatchToleranceM,
		},
		Server: ServerConfig{
			RateLimitPerSecond: 10,
			RateLimitBurst:     20,
			ProfileCacheSize:   256,
			ProfileCacheTTL:    30 * time.Minute,
			MaxBatchSize:       10000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: observability.DefaultTracingConfig(),
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type override struct {
	name  string
	apply func(c *Config, v string) error
}

func floatVar(dst func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := cast.ToFloat64E(v)
		*dst(c) = f
		return err
	}
}

func intVar(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := cast.ToIntE(v)
		*dst(c) = n
		return err
	}
}

func stringVar(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

var overrides = []override{
	{"EARTH_RADIUS_M", floatVar(func(c *Config) *float64 { return &c.Engine.EarthRadiusM })},
	{"K_FACTOR", floatVar(func(c *Config) *float64 { return &c.Engine.KFactor })},
	{"FRESNEL_ZONE", intVar(func(c *Config) *int { return &c.Engine.FresnelZone })},
	{"PROJECTION_METHOD", stringVar(func(c *Config) *string { return &c.Engine.ProjectionMethod })},
	{"PLANAR_THRESHOLD_M", floatVar(func(c *Config) *float64 { return &c.Engine.PlanarThresholdM })},
	{"PROFILE_SAMPLES", intVar(func(c *Config) *int { return &c.Engine.ProfileSamples })},
	{"WORKERS", intVar(func(c *Config) *int { return &c.Engine.Workers })},
	{"RATE_LIMIT_PER_SECOND", floatVar(func(c *Config) *float64 { return &c.Server.RateLimitPerSecond })},
	{"RATE_LIMIT_BURST", intVar(func(c *Config) *int { return &c.Server.RateLimitBurst })},
	{"PROFILE_CACHE_SIZE", intVar(func(c *Config) *int { return &c.Server.ProfileCacheSize })},
	{"PROFILE_CACHE_TTL", func(c *Config, v string) error {
		d, err := cast.ToDurationE(v)
		c.Server.ProfileCacheTTL = d
		return err
	}},
	{"MAX_BATCH_SIZE", intVar(func(c *Config) *int { return &c.Server.MaxBatchSize })},
	{"METRICS_ADDR", stringVar(func(c *Config) *string { return &c.Server.MetricsAddr })},
	{"LOG_LEVEL", stringVar(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_FORMAT", stringVar(func(c *Config) *string { return &c.Log.Format })},
	{"TRACING_ENABLED", func(c *Config, v string) error {
		b, err := cast.ToBoolE(v)
		c.Tracing.Enabled = b
		return err
	}},
	{"TRACING_EXPORTER", stringVar(func(c *Config) *string { return &c.Tracing.Exporter })},
	{"OTLP_ENDPOINT", stringVar(func(c *Config) *string { return &c.Tracing.Endpoint })},
	{"TRACING_SAMPLE_RATIO", floatVar(func(c *Config) *float64 { return &c.Tracing.SampleRatio })},
}

// ApplyEnv overrides fields from PATHCLEAR_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, o := range overrides {
		v, ok := lookup(EnvPrefix + o.name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := o.apply(c, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, o.name, err)
		}
	}
	return nil
}

// Validate rejects values the engine or server cannot run with.
func (c *Config) Validate() error {
	e := c.Engine
	if !geo.Finite(e.EarthRadiusM) || e.EarthRadiusM <= 0 {
		return fmt.Errorf("engine.earth_radius_m must be positive, got %g", e.EarthRadiusM)
	}
	if !geo.Finite(e.KFactor) || e.KFactor <= 0 {
		return fmt.Errorf("engine.k_factor must be positive, got %g", e.KFactor)
	}
	if e.FresnelZone < 1 {
		return fmt.Errorf("engine.fresnel_zone must be at least 1, got %d", e.FresnelZone)
	}
	switch projection.Method(e.ProjectionMethod) {
	case projection.MethodAuto, projection.MethodSpherical, projection.MethodPlanar:
	default:
		return fmt.Errorf("engine.projection_method %q is not one of auto, spherical, planar", e.ProjectionMethod)
	}
	if e.PlanarThresholdM < 0 {
		return fmt.Errorf("engine.planar_threshold_m must not be negative, got %g", e.PlanarThresholdM)
	}
	if e.ProfileSamples < 0 || e.ProfileSamples > profile.MaxCount {
		return fmt.Errorf("engine.profile_samples must be between 0 and %d, got %d", profile.MaxCount, e.ProfileSamples)
	}
	if e.ProfileSpacingM < 0 || e.MatchToleranceM < 0 {
		return fmt.Errorf("engine.profile_spacing_m and engine.match_tolerance_m must not be negative")
	}
	if e.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative, got %d", e.Workers)
	}

	s := c.Server
	if s.RateLimitPerSecond < 0 || s.RateLimitBurst < 0 {
		return fmt.Errorf("server rate limits must not be negative")
	}
	if s.ProfileCacheSize < 1 {
		return fmt.Errorf("server.profile_cache_size must be at least 1, got %d", s.ProfileCacheSize)
	}
	if s.ProfileCacheTTL < 0 {
		return fmt.Errorf("server.profile_cache_ttl must not be negative, got %s", s.ProfileCacheTTL)
	}
	if s.MaxBatchSize < 1 {
		return fmt.Errorf("server.max_batch_size must be at least 1, got %d", s.MaxBatchSize)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q is not text or json", c.Log.Format)
	}
	if r := c.Tracing.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1], got %g", r)
	}
	return nil
}

// Earth returns the configured earth model.
func (e EngineConfig) Earth() geo.Earth {
	return geo.Earth{RadiusM: e.EarthRadiusM}
}

// Clearance returns the evaluator configuration.
func (e EngineConfig) Clearance() clearance.Config {
	earth := e.Earth()
	return clearance.Config{
		Earth:       earth,
		KFactor:     e.KFactor,
		FresnelZone: e.FresnelZone,
		Projection: projection.Config{
			Earth:            earth,
			Method:           projection.Method(e.ProjectionMethod),
			PlanarThresholdM: e.PlanarThresholdM,
		},
		Workers: e.Workers,
	}
}

// Builder returns the profile builder configuration.
func (e EngineConfig) Builder() profile.Builder {
	return profile.Builder{
		Count:           e.ProfileSamples,
		SpacingM:        e.ProfileSpacingM,
		MatchToleranceM: e.MatchToleranceM,
	}
}

// NewLogger returns a slog logger writing to w at the configured level.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(l.Level)}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
