package dashboard

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shuv1824/weatherwise/internal/services/forecast"
	"github.com/shuv1824/weatherwise/internal/services/weather"
	"github.com/shuv1824/weatherwise/internal/types"
)

// Query selects a place: a city name wins over coordinates, and with neither
// the LocationProvider is asked.
type Query struct {
	City   string
	Coords *types.Coordinates
}

// Service runs the fetch → aggregate pipeline behind the dashboard.
type Service struct {
	source      weather.Source
	locator     LocationProvider
	nearbyCount int
}

func NewService(source weather.Source, locator LocationProvider, nearbyCount int) *Service {
	if locator == nil {
		locator = StaticLocation(nil)
	}
	return &Service{
		source:      source,
		locator:     locator,
		nearbyCount: weather.NearbyCount(nearbyCount),
	}
}

// Forecast returns current conditions and the 5-day summary for q.
func (s *Service) Forecast(ctx context.Context, q Query) (*types.Forecast, error) {
	var (
		raw *types.RawForecast
		err error
	)

	if city := strings.TrimSpace(q.City); city != "" {
		raw, err = s.source.ForecastByCity(ctx, city)
	} else {
		var coords types.Coordinates
		coords, err = s.resolve(ctx, q)
		if err != nil {
			return nil, err
		}
		raw, err = s.source.ForecastByCoords(ctx, coords)
	}
	if err != nil {
		return nil, err
	}

	f, err := forecast.Aggregate(raw.City, raw.Samples)
	if err != nil {
		return nil, err
	}

	slog.Debug("forecast loaded", "location", f.Current.Location, "days", len(f.Days))
	return f, nil
}

// Nearby lists current conditions for the cities around q. count <= 0 uses
// the service default.
func (s *Service) Nearby(ctx context.Context, q Query, count int) ([]types.WeatherData, error) {
	if count <= 0 {
		count = s.nearbyCount
	}

	if city := strings.TrimSpace(q.City); city != "" {
		return s.source.NearbyByCity(ctx, city, count)
	}

	coords, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.source.NearbyByCoords(ctx, coords, count)
}

func (s *Service) resolve(ctx context.Context, q Query) (types.Coordinates, error) {
	if q.Coords != nil {
		return *q.Coords, nil
	}
	return s.locator.Locate(ctx)
}
