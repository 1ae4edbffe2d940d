package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Region is a named circular geofence boundary as it appears in
// configuration input.
type Region struct {
	// Name identifies the region in validation results and logs.
	Name string `yaml:"name"`
	// Latitude of the region center in decimal degrees.
	Latitude float64 `yaml:"latitude"`
	// Longitude of the region center in decimal degrees.
	Longitude float64 `yaml:"longitude"`
	// RadiusMeters is the allowed distance from the center, boundary inclusive.
	RadiusMeters float64 `yaml:"radiusMeters"`
}

// RegionList lets the region set be supplied either as a yaml list or as a
// single environment variable holding comma-separated name:lat:lon:radius
// entries, e.g. "Office:26.257544:73.009617:100,Warehouse:26.3:73.1:250".
type RegionList []Region

// SetValue implements cleanenv.Setter for the environment variable form.
func (l *RegionList) SetValue(s string) error {
	if strings.TrimSpace(s) == "" {
		*l = nil

		return nil
	}

	var out RegionList
	for _, entry := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 4 { //nolint: mnd
			return fmt.Errorf("invalid region %q, want name:lat:lon:radius", entry)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude in region %q: %w", entry, err)
		}
		lon, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude in region %q: %w", entry, err)
		}
		radius, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return fmt.Errorf("invalid radius in region %q: %w", entry, err)
		}
		if radius <= 0 {
			return fmt.Errorf("invalid radius in region %q: must be positive", entry)
		}
		out = append(out, Region{Name: parts[0], Latitude: lat, Longitude: lon, RadiusMeters: radius})
	}
	*l = out

	return nil
}

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, upstream attendance
// API, geofence policy, and graceful shutdown behavior. It is loaded once at
// process start and never mutated afterwards.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Upstream contains the attendance API the gateway forwards to
	Upstream struct {
		// BaseURL is the root of the upstream attendance API, without a trailing slash
		BaseURL string `env:"UPSTREAM_BASE_URL" env-default:"http://localhost:3000/api" yaml:"baseUrl"`
		// Timeout bounds a single upstream round trip
		Timeout time.Duration `env:"UPSTREAM_TIMEOUT" env-default:"15s" yaml:"timeout"`
		// MockFallback substitutes a synthetic success body when the upstream
		// rejects a clock action with a client-side status. Off by default;
		// see the upstream package for the exact statuses covered.
		MockFallback bool `env:"UPSTREAM_MOCK_FALLBACK" env-default:"false" yaml:"mockFallback"`
	} `yaml:"upstream"`

	// Geofence contains the clock-in/clock-out admission policy
	Geofence struct {
		// Dynamic disables the geofence entirely: every coordinate is admitted.
		// This is an explicit operating mode, logged at startup.
		Dynamic bool `env:"GEOFENCE_DYNAMIC" env-default:"false" yaml:"dynamic"`
		// Regions is the ordered list of allowed circular regions. Order
		// matters: the first matching region wins on overlap, and the first
		// of exact ties is reported as closest on rejection.
		Regions RegionList `env:"GEOFENCE_REGIONS" yaml:"regions"`
	} `yaml:"geofence"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
