package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/shuv1824/weatherwise/internal/config"
	"github.com/shuv1824/weatherwise/internal/services/dashboard"
	"github.com/shuv1824/weatherwise/internal/services/weather"
	"github.com/shuv1824/weatherwise/internal/types"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "weatherwise",
	Short: "Weather dashboard: current conditions, 5-day forecast and nearby cities",
	Long: `weatherwise serves a weather dashboard backed by OpenWeatherMap. It shows
current conditions and a 5-day forecast for a city or coordinate pair, and a
sortable, paginated table comparing the cities around it.

Run without a subcommand to start the HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text or json, overrides config)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads the configuration and installs the default logger. Logs go to
// stderr so that command output on stdout stays clean.
func setup() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	slog.SetDefault(setupLogger(os.Stderr, cfg.LogFormat, cfg.Level()))
	return cfg, nil
}

func setupLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// newServices wires the OpenWeatherMap client, its cache and the dashboard
// service from cfg.
func newServices(cfg *config.Config) (*dashboard.Service, *weather.CachedClient) {
	client := weather.NewClient(weather.Options{
		APIKey:     cfg.API.Key,
		BaseURL:    cfg.API.BaseURL,
		GeoBaseURL: cfg.API.GeoBaseURL,
		Timeout:    cfg.API.Timeout,
		RateLimit:  cfg.API.RateLimit,
		Burst:      cfg.API.RateBurst,
	})
	cached := weather.NewCachedClient(client, cfg.Cache.TTL)

	var home *types.Coordinates
	if loc := cfg.Dashboard.DefaultLocation; loc != nil {
		home = &types.Coordinates{Lat: loc.Lat, Lon: loc.Lon}
	}

	svc := dashboard.NewService(cached, dashboard.StaticLocation(home), cfg.Dashboard.NearbyCount)
	return svc, cached
}
