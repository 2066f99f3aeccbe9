package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shuv1824/weatherwise/internal/services/forecast"
	"github.com/shuv1824/weatherwise/internal/types"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://api.openweathermap.org/data/2.5"
	DefaultGeoBaseURL = "https://api.openweathermap.org/geo/1.0"

	DefaultNearbyCount = 25
	MaxNearbyCount     = 50
)

// Source is the set of lookups the dashboard needs from a weather backend.
type Source interface {
	ForecastByCity(ctx context.Context, city string) (*types.RawForecast, error)
	ForecastByCoords(ctx context.Context, coords types.Coordinates) (*types.RawForecast, error)
	Geocode(ctx context.Context, city string) (types.Coordinates, error)
	NearbyByCoords(ctx context.Context, coords types.Coordinates, count int) ([]types.WeatherData, error)
	NearbyByCity(ctx context.Context, city string, count int) ([]types.WeatherData, error)
}

type Options struct {
	APIKey     string
	BaseURL    string
	GeoBaseURL string
	Timeout    time.Duration

	// RateLimit is the number of requests per second; zero disables limiting.
	RateLimit float64
	Burst     int

	HTTPClient *http.Client
}

// Client talks to the OpenWeatherMap forecast, geocoding and find APIs.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	geoBaseURL string
	limiter    *rate.Limiter
}

var _ Source = (*Client)(nil)

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.GeoBaseURL == "" {
		opts.GeoBaseURL = DefaultGeoBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	c := &Client{
		httpClient: httpClient,
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		geoBaseURL: strings.TrimRight(opts.GeoBaseURL, "/"),
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return c
}

// ForecastByCity fetches the 5-day / 3-hour forecast for a city name.
func (c *Client) ForecastByCity(ctx context.Context, city string) (*types.RawForecast, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("units", "metric")

	return c.fetchForecast(ctx, params)
}

// ForecastByCoords fetches the 5-day / 3-hour forecast for a coordinate pair.
// Failures other than an invalid key are wrapped in ErrLocationLookup.
func (c *Client) ForecastByCoords(ctx context.Context, coords types.Coordinates) (*types.RawForecast, error) {
	params := coordParams(coords)
	params.Set("units", "metric")

	f, err := c.fetchForecast(ctx, params)
	if err != nil {
		return nil, lookupError(ErrLocationLookup, err)
	}
	return f, nil
}

func (c *Client) fetchForecast(ctx context.Context, params url.Values) (*types.RawForecast, error) {
	var data types.OWMForecastResponse
	if err := c.get(ctx, c.baseURL+"/forecast", params, &data); err != nil {
		return nil, err
	}

	samples, err := toSamples(data.List)
	if err != nil {
		return nil, err
	}

	return &types.RawForecast{
		City: types.City{
			Name:           data.City.Name,
			Country:        data.City.Country,
			Coord:          data.City.Coord,
			TimezoneOffset: data.City.Timezone,
		},
		Samples: samples,
	}, nil
}

// Geocode resolves a city name to the coordinates of its first match.
func (c *Client) Geocode(ctx context.Context, city string) (types.Coordinates, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return types.Coordinates{}, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("limit", "1")

	var matches []types.OWMGeocodeResult
	if err := c.get(ctx, c.geoBaseURL+"/direct", params, &matches); err != nil {
		return types.Coordinates{}, err
	}
	if len(matches) == 0 {
		return types.Coordinates{}, fmt.Errorf("%w: %q", ErrNotFound, city)
	}

	return types.Coordinates{Lat: matches[0].Lat, Lon: matches[0].Lon}, nil
}

// NearbyByCoords lists current conditions for up to count cities around coords.
// An empty result is ErrNoNearbyCities; other failures except an invalid key
// are wrapped in ErrNearbyLookup.
func (c *Client) NearbyByCoords(ctx context.Context, coords types.Coordinates, count int) ([]types.WeatherData, error) {
	params := coordParams(coords)
	params.Set("cnt", strconv.Itoa(NearbyCount(count)))
	params.Set("units", "metric")

	var data types.OWMFindResponse
	if err := c.get(ctx, c.baseURL+"/find", params, &data); err != nil {
		return nil, lookupError(ErrNearbyLookup, err)
	}
	if len(data.List) == 0 {
		return nil, ErrNoNearbyCities
	}

	cities := make([]types.WeatherData, 0, len(data.List))
	for _, item := range data.List {
		if len(item.Weather) == 0 {
			return nil, lookupError(ErrNearbyLookup, fmt.Errorf("%w: city %q has no weather entry", ErrMalformed, item.Name))
		}
		w := item.Weather[0]
		sample := types.Sample{
			Time:          time.Unix(item.Dt, 0).UTC(),
			Temp:          item.Main.Temp,
			FeelsLike:     item.Main.FeelsLike,
			Humidity:      item.Main.Humidity,
			Pressure:      item.Main.Pressure,
			WindSpeed:     item.Wind.Speed,
			WindDirection: item.Wind.Deg,
			Visibility:    item.Visibility,
			Condition:     w.Main,
			Description:   w.Description,
			Icon:          w.Icon,
		}
		city := types.City{Name: item.Name, Country: item.Sys.Country, Coord: item.Coord}
		cities = append(cities, forecast.Snapshot(city, sample))
	}

	return cities, nil
}

// NearbyByCity geocodes city and then lists the cities around it.
// The two calls are sequential: the second needs the first's coordinates.
func (c *Client) NearbyByCity(ctx context.Context, city string, count int) ([]types.WeatherData, error) {
	coords, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}
	return c.NearbyByCoords(ctx, coords, count)
}

// NearbyCount applies the default and the API maximum to a requested count.
func NearbyCount(count int) int {
	if count <= 0 {
		return DefaultNearbyCount
	}
	return min(count, MaxNearbyCount)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limit wait: %w", ErrNetwork, err)
		}
	}

	slog.Debug("weather api request", "endpoint", endpoint, "query", params.Encode())

	params.Set("appid", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		slog.Debug("weather api error", "endpoint", endpoint, "status", resp.StatusCode)
		return statusError(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return nil
}

// toSamples validates the forecast list and converts it. An absent pop is
// read as zero here so that aggregation never sees a missing value.
func toSamples(items []types.OWMForecastItem) ([]types.Sample, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: forecast has no samples", ErrMalformed)
	}

	samples := make([]types.Sample, 0, len(items))
	for i, item := range items {
		if len(item.Weather) == 0 {
			return nil, fmt.Errorf("%w: sample %d has no weather entry", ErrMalformed, i)
		}

		var pop float64
		if item.Pop != nil {
			pop = *item.Pop
		}

		w := item.Weather[0]
		samples = append(samples, types.Sample{
			Time:          time.Unix(item.Dt, 0).UTC(),
			Temp:          item.Main.Temp,
			FeelsLike:     item.Main.FeelsLike,
			Humidity:      item.Main.Humidity,
			Pressure:      item.Main.Pressure,
			WindSpeed:     item.Wind.Speed,
			WindDirection: item.Wind.Deg,
			Visibility:    item.Visibility,
			Pop:           pop,
			Condition:     w.Main,
			Description:   w.Description,
			Icon:          w.Icon,
		})
	}

	return samples, nil
}

func coordParams(coords types.Coordinates) url.Values {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.4f", coords.Lat))
	params.Set("lon", fmt.Sprintf("%.4f", coords.Lon))
	return params
}
