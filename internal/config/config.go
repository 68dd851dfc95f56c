// Package config resolves process settings from flags, falling back to
// DASH_* environment variables and then to per-command defaults.
package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Host        string
	Port        int
	Debug       bool
	DataPath    string
	GeoJSONPath string
	CacheTTL    time.Duration
	// Rate is the per-client request rate limit (requests/second); 0 disables it.
	Rate float64
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Parse reads args (without the program name) over defaults.
func Parse(name string, args []string, defaults Config) (Config, error) {
	cfg := Config{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.Host, "host", getEnvWithDefault("DASH_HOST", defaults.Host), "listen `host`")
	fs.IntVar(&cfg.Port, "port", getEnvAsInt("DASH_PORT", defaults.Port), "listen `port`")
	fs.BoolVar(&cfg.Debug, "debug", getEnvAsBool("DASH_DEBUG", defaults.Debug), "enable debug logging")
	fs.StringVar(&cfg.DataPath, "data", getEnvWithDefault("DASH_DATA", defaults.DataPath), "delimited data `file`")
	fs.StringVar(&cfg.GeoJSONPath, "geojson", getEnvWithDefault("DASH_GEOJSON", defaults.GeoJSONPath), "GeoJSON boundary `file`")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", getEnvAsDuration("DASH_CACHE_TTL", defaults.CacheTTL), "rendered view cache TTL (0 disables)")
	fs.Float64Var(&cfg.Rate, "rate", getEnvAsFloat("DASH_RATE", defaults.Rate), "per-client requests/second (0 disables)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ExitCode is the process status for a Parse error: 0 when usage was
// requested with -h, 2 for anything else.
func ExitCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}

// Helper functions
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
