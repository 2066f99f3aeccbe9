package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level configuration for weatherwise.
type Config struct {
	ListenAddr string          `mapstructure:"listen_addr"`
	LogFormat  string          `mapstructure:"log_format"`
	LogLevel   string          `mapstructure:"log_level"`
	API        APIConfig       `mapstructure:"api"`
	Dashboard  DashboardConfig `mapstructure:"dashboard"`
	Cache      CacheConfig     `mapstructure:"cache"`
	CORS       CORSConfig      `mapstructure:"cors"`
}

// APIConfig describes the OpenWeatherMap endpoints and credentials.
type APIConfig struct {
	Key        string        `mapstructure:"key"`
	BaseURL    string        `mapstructure:"base_url"`
	GeoBaseURL string        `mapstructure:"geo_base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	RateBurst  int           `mapstructure:"rate_burst"`
}

// DashboardConfig holds presentation defaults.
type DashboardConfig struct {
	Unit            string          `mapstructure:"unit"`
	PageSize        int             `mapstructure:"page_size"`
	NearbyCount     int             `mapstructure:"nearby_count"`
	DefaultLocation *LocationConfig `mapstructure:"default_location"`
}

// LocationConfig stands in for device geolocation when no place is given.
type LocationConfig struct {
	Lat float64 `mapstructure:"lat"`
	Lon float64 `mapstructure:"lon"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from the flag path, env vars, then default file paths.
// Precedence: flag → $WEATHERWISE_CONFIG → ~/.config/weatherwise/config.yaml → /etc/weatherwise/config.yaml
// A .env file in the working directory is loaded first; it never overrides
// variables already set in the environment.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")
	v.SetDefault("api.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("api.geo_base_url", "https://api.openweathermap.org/geo/1.0")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.rate_limit", 0)
	v.SetDefault("api.rate_burst", 5)
	v.SetDefault("dashboard.unit", "C")
	v.SetDefault("dashboard.page_size", 10)
	v.SetDefault("dashboard.nearby_count", 25)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cors.allowed_origins", []string{"*"})

	// Env var support: WEATHERWISE_API_KEY, WEATHERWISE_DASHBOARD_PAGE_SIZE, ...
	v.SetEnvPrefix("WEATHERWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	if err := v.BindEnv("api.key"); err != nil {
		return nil, fmt.Errorf("binding api.key env: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else if envPath := os.Getenv("WEATHERWISE_CONFIG"); envPath != "" {
		v.SetConfigFile(envPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "weatherwise"))
		}
		v.AddConfigPath("/etc/weatherwise")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Keep compatibility with the variable name used by the web frontend.
	if cfg.API.Key == "" {
		cfg.API.Key = os.Getenv("OPENWEATHER_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete and correct.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return fmt.Errorf("api.key is required (set WEATHERWISE_API_KEY)")
	}

	for name, raw := range map[string]string{"api.base_url": c.API.BaseURL, "api.geo_base_url": c.API.GeoBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s %q is not an absolute URL", name, raw)
		}
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}

	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative (0 disables the cache), got %s", c.Cache.TTL)
	}

	switch strings.ToUpper(c.Dashboard.Unit) {
	case "C", "F":
	default:
		return fmt.Errorf("dashboard.unit must be 'C' or 'F', got %q", c.Dashboard.Unit)
	}

	if c.Dashboard.PageSize <= 0 {
		return fmt.Errorf("dashboard.page_size must be positive, got %d", c.Dashboard.PageSize)
	}

	if c.Dashboard.NearbyCount < 1 || c.Dashboard.NearbyCount > 50 {
		return fmt.Errorf("dashboard.nearby_count must be between 1 and 50, got %d", c.Dashboard.NearbyCount)
	}

	if loc := c.Dashboard.DefaultLocation; loc != nil {
		if loc.Lat < -90 || loc.Lat > 90 || loc.Lon < -180 || loc.Lon > 180 {
			return fmt.Errorf("dashboard.default_location (%v, %v) is out of range", loc.Lat, loc.Lon)
		}
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be 'text' or 'json', got %q", c.LogFormat)
	}

	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("listen_addr %q is not a valid address: %w", c.ListenAddr, err)
	}

	return nil
}

// Level maps log_level onto a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
