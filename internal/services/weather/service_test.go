package weather

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shuv1824/weatherwise/internal/types"
)

const forecastBody = `{
  "cod": "200",
  "cnt": 3,
  "list": [
    {"dt": 1718445600, "main": {"temp": 14.6, "feels_like": 13.9, "pressure": 1012, "humidity": 77},
     "weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
     "wind": {"speed": 3.1, "deg": 240}, "visibility": 10000, "pop": 0.12, "dt_txt": "2024-06-15 10:00:00"},
    {"dt": 1718456400, "main": {"temp": 17.2, "feels_like": 16.8, "pressure": 1011, "humidity": 65},
     "weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
     "wind": {"speed": 4.0, "deg": 250}, "visibility": 10000, "dt_txt": "2024-06-15 13:00:00"},
    {"dt": 1718467200, "main": {"temp": 15.0, "feels_like": 14.5, "pressure": 1011, "humidity": 70},
     "weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
     "wind": {"speed": 2.5, "deg": 260}, "visibility": 9000, "pop": 0.4, "dt_txt": "2024-06-15 16:00:00"}
  ],
  "city": {"id": 2643743, "name": "London", "coord": {"lat": 51.5085, "lon": -0.1257}, "country": "GB", "timezone": 3600}
}`

const findBody = `{
  "count": 2,
  "list": [
    {"id": 1, "name": "Reading", "coord": {"lat": 51.45, "lon": -0.97}, "dt": 1718445600,
     "main": {"temp": 16.4, "feels_like": 15.9, "pressure": 1013, "humidity": 60},
     "wind": {"speed": 5, "deg": 180}, "visibility": 10000, "sys": {"country": "GB"},
     "weather": [{"main": "Clouds", "description": "few clouds", "icon": "02d"}]},
    {"id": 2, "name": "Slough", "coord": {"lat": 51.51, "lon": -0.59}, "dt": 1718445600,
     "main": {"temp": 17.5, "feels_like": 17.1, "pressure": 1012, "humidity": 58},
     "wind": {"speed": 2.2, "deg": 90}, "visibility": 7400, "sys": {"country": "GB"},
     "weather": [{"main": "Clear", "description": "clear sky", "icon": "01d"}]}
  ]
}`

// recorder is an httptest handler that serves canned bodies per path and
// remembers the requests it saw.
type recorder struct {
	mu       sync.Mutex
	requests []*http.Request
	status   map[string]int
	bodies   map[string]string
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec.mu.Lock()
	rec.requests = append(rec.requests, r)
	rec.mu.Unlock()

	if status, ok := rec.status[r.URL.Path]; ok {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"cod":"err","message":"error"}`)
		return
	}
	body, ok := rec.bodies[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_, _ = io.WriteString(w, body)
}

func (rec *recorder) paths() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]string, len(rec.requests))
	for i, r := range rec.requests {
		out[i] = r.URL.Path
	}
	return out
}

func newTestClient(t *testing.T, rec *recorder) *Client {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	return NewClient(Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/data/2.5",
		GeoBaseURL: srv.URL + "/geo/1.0",
	})
}

func TestForecastByCity(t *testing.T) {
	rec := &recorder{bodies: map[string]string{"/data/2.5/forecast": forecastBody}}
	client := newTestClient(t, rec)

	got, err := client.ForecastByCity(context.Background(), "  London ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.City.Name != "London" || got.City.Country != "GB" || got.City.TimezoneOffset != 3600 {
		t.Errorf("unexpected city: %+v", got.City)
	}
	if len(got.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(got.Samples))
	}

	first := got.Samples[0]
	if !first.Time.Equal(time.Unix(1718445600, 0)) {
		t.Errorf("unexpected timestamp %s", first.Time)
	}
	if first.Condition != "Clouds" || first.Icon != "04d" || first.Pop != 0.12 {
		t.Errorf("unexpected first sample: %+v", first)
	}
	if got.Samples[1].Pop != 0 {
		t.Errorf("missing pop should read as 0, got %v", got.Samples[1].Pop)
	}

	q := rec.requests[0].URL.Query()
	if q.Get("q") != "London" || q.Get("units") != "metric" || q.Get("appid") != "test-key" {
		t.Errorf("unexpected query: %s", rec.requests[0].URL.RawQuery)
	}
}

func TestForecastByCoords(t *testing.T) {
	rec := &recorder{bodies: map[string]string{"/data/2.5/forecast": forecastBody}}
	client := newTestClient(t, rec)

	if _, err := client.ForecastByCoords(context.Background(), types.Coordinates{Lat: 51.50853, Lon: -0.12574}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := rec.requests[0].URL.Query()
	if q.Get("lat") != "51.5085" || q.Get("lon") != "-0.1257" {
		t.Errorf("unexpected coordinates in query: %s", rec.requests[0].URL.RawQuery)
	}
	if q.Has("q") {
		t.Error("coordinate lookup should not send a city query")
	}
}

func TestForecastErrors(t *testing.T) {
	tests := []struct {
		name    string
		city    string
		status  int
		body    string
		wantErr error
	}{
		{name: "blank city", city: "   ", wantErr: ErrEmptyQuery},
		{name: "not found", city: "Atlantis", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "bad key", city: "London", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "server error", city: "London", status: http.StatusInternalServerError, wantErr: ErrNetwork},
		{name: "rate limited upstream", city: "London", status: http.StatusTooManyRequests, wantErr: ErrNetwork},
		{name: "invalid json", city: "London", body: `{"list": [`, wantErr: ErrMalformed},
		{name: "empty list", city: "London", body: `{"list": [], "city": {"name": "London"}}`, wantErr: ErrMalformed},
		{name: "sample without weather", city: "London", body: `{"list": [{"dt": 1, "weather": []}]}`, wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{bodies: map[string]string{"/data/2.5/forecast": tt.body}}
			if tt.status != 0 {
				rec.status = map[string]int{"/data/2.5/forecast": tt.status}
			}
			client := newTestClient(t, rec)

			_, err := client.ForecastByCity(context.Background(), tt.city)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// mockTransport fails every request, standing in for an unreachable API.
type mockTransport struct {
	err error
}

func (m *mockTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, m.err
}

func TestForecastNetworkFailure(t *testing.T) {
	client := NewClient(Options{
		APIKey:     "k",
		HTTPClient: &http.Client{Transport: &mockTransport{err: errors.New("connection refused")}},
	})

	_, err := client.ForecastByCity(context.Background(), "London")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if Message(err) != "Failed to fetch weather data. Please try again later." {
		t.Errorf("unexpected message %q", Message(err))
	}
}

func TestGeocode(t *testing.T) {
	rec := &recorder{bodies: map[string]string{
		"/geo/1.0/direct": `[{"name": "Paris", "lat": 48.8589, "lon": 2.32, "country": "FR"}]`,
	}}
	client := newTestClient(t, rec)

	got, err := client.Geocode(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (types.Coordinates{Lat: 48.8589, Lon: 2.32}) {
		t.Errorf("unexpected coordinates %+v", got)
	}
	if limit := rec.requests[0].URL.Query().Get("limit"); limit != "1" {
		t.Errorf("expected limit=1, got %q", limit)
	}
}

func TestGeocodeNoMatch(t *testing.T) {
	rec := &recorder{bodies: map[string]string{"/geo/1.0/direct": `[]`}}
	client := newTestClient(t, rec)

	_, err := client.Geocode(context.Background(), "Nowhere")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNearbyByCoords(t *testing.T) {
	rec := &recorder{bodies: map[string]string{"/data/2.5/find": findBody}}
	client := newTestClient(t, rec)

	got, err := client.NearbyByCoords(context.Background(), types.Coordinates{Lat: 51.5, Lon: -0.12}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(got))
	}

	want := types.WeatherData{
		Location:      "Slough",
		Country:       "GB",
		Temperature:   18,
		FeelsLike:     17,
		Condition:     "Clear",
		Description:   "clear sky",
		Humidity:      58,
		WindSpeed:     8, // 2.2 m/s = 7.92 km/h
		WindDirection: 90,
		Pressure:      1012,
		Visibility:    7,
		Icon:          "01d",
		Timestamp:     time.Unix(1718445600, 0).UTC(),
	}
	if got[1] != want {
		t.Errorf("unexpected city:\n got %+v\nwant %+v", got[1], want)
	}

	if cnt := rec.requests[0].URL.Query().Get("cnt"); cnt != "25" {
		t.Errorf("expected default cnt=25, got %q", cnt)
	}
}

func TestNearbyByCoordsEmpty(t *testing.T) {
	rec := &recorder{bodies: map[string]string{"/data/2.5/find": `{"count": 0, "list": []}`}}
	client := newTestClient(t, rec)

	_, err := client.NearbyByCoords(context.Background(), types.Coordinates{}, 10)
	if !errors.Is(err, ErrNoNearbyCities) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNoNearbyCities, got %v", err)
	}
	if Message(err) != "No nearby cities found" {
		t.Errorf("unexpected message %q", Message(err))
	}
}

func TestNearbyByCityGeocodesFirst(t *testing.T) {
	rec := &recorder{bodies: map[string]string{
		"/geo/1.0/direct": `[{"name": "London", "lat": 51.5073, "lon": -0.1276, "country": "GB"}]`,
		"/data/2.5/find":  findBody,
	}}
	client := newTestClient(t, rec)

	got, err := client.NearbyByCity(context.Background(), "London", 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(got))
	}

	paths := rec.paths()
	if len(paths) != 2 || paths[0] != "/geo/1.0/direct" || paths[1] != "/data/2.5/find" {
		t.Fatalf("expected geocode then find, got %v", paths)
	}

	q := rec.requests[1].URL.Query()
	if q.Get("lat") != "51.5073" || q.Get("lon") != "-0.1276" {
		t.Errorf("find did not use geocoded coordinates: %s", rec.requests[1].URL.RawQuery)
	}
	if q.Get("cnt") != "50" {
		t.Errorf("expected count capped at 50, got %q", q.Get("cnt"))
	}
}

func TestNearbyByCityStopsOnGeocodeFailure(t *testing.T) {
	rec := &recorder{
		status: map[string]int{"/geo/1.0/direct": http.StatusUnauthorized},
		bodies: map[string]string{"/data/2.5/find": findBody},
	}
	client := newTestClient(t, rec)

	_, err := client.NearbyByCity(context.Background(), "London", 10)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if paths := rec.paths(); len(paths) != 1 {
		t.Errorf("find should not be called after geocode failure, got %v", paths)
	}
}

func TestRateLimitRespectsContext(t *testing.T) {
	rec := &recorder{bodies: map[string]string{"/data/2.5/forecast": forecastBody}}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	client := NewClient(Options{APIKey: "k", BaseURL: srv.URL + "/data/2.5", RateLimit: 0.001, Burst: 1})

	if _, err := client.ForecastByCity(context.Background(), "London"); err != nil {
		t.Fatalf("first request should use the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ForecastByCity(ctx, "London")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork from limiter, got %v", err)
	}
	if len(rec.paths()) != 1 {
		t.Errorf("limited request should not reach the API")
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: ErrEmptyQuery, want: "Please enter a city name"},
		{err: ErrNotFound, want: "City not found. Please check the spelling and try again."},
		{err: ErrUnauthorized, want: "Invalid API key. Please check your configuration."},
		{err: ErrMalformed, want: "Received an unexpected response from the weather service."},
		{err: statusError(http.StatusBadGateway), want: "Failed to fetch weather data. Please try again later."},
	}

	for _, tt := range tests {
		if got := Message(tt.err); got != tt.want {
			t.Errorf("Message(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}

	if !strings.Contains(statusError(503).Error(), "503") {
		t.Error("status error should mention the status code")
	}
}

func TestLookupMessages(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		status  int
		body    string
		call    func(*Client) error
		wantErr error
		wantMsg string
	}{
		{
			name:   "city lookup server error",
			path:   "/data/2.5/forecast",
			status: http.StatusInternalServerError,
			call: func(c *Client) error {
				_, err := c.ForecastByCity(context.Background(), "London")
				return err
			},
			wantErr: ErrNetwork,
			wantMsg: "Failed to fetch weather data. Please try again later.",
		},
		{
			name:   "coordinate lookup not found",
			path:   "/data/2.5/forecast",
			status: http.StatusNotFound,
			call: func(c *Client) error {
				_, err := c.ForecastByCoords(context.Background(), types.Coordinates{Lat: 1, Lon: 2})
				return err
			},
			wantErr: ErrNotFound,
			wantMsg: "Failed to fetch weather data for your location.",
		},
		{
			name: "coordinate lookup malformed",
			path: "/data/2.5/forecast",
			body: `{"list": [`,
			call: func(c *Client) error {
				_, err := c.ForecastByCoords(context.Background(), types.Coordinates{Lat: 1, Lon: 2})
				return err
			},
			wantErr: ErrMalformed,
			wantMsg: "Failed to fetch weather data for your location.",
		},
		{
			name:   "coordinate lookup bad key",
			path:   "/data/2.5/forecast",
			status: http.StatusUnauthorized,
			call: func(c *Client) error {
				_, err := c.ForecastByCoords(context.Background(), types.Coordinates{Lat: 1, Lon: 2})
				return err
			},
			wantErr: ErrUnauthorized,
			wantMsg: "Invalid API key. Please check your configuration.",
		},
		{
			name:   "find server error",
			path:   "/data/2.5/find",
			status: http.StatusBadGateway,
			call: func(c *Client) error {
				_, err := c.NearbyByCoords(context.Background(), types.Coordinates{}, 10)
				return err
			},
			wantErr: ErrNetwork,
			wantMsg: "Failed to fetch nearby cities",
		},
		{
			name: "find city without weather",
			path: "/data/2.5/find",
			body: `{"count": 1, "list": [{"name": "Slough", "weather": []}]}`,
			call: func(c *Client) error {
				_, err := c.NearbyByCoords(context.Background(), types.Coordinates{}, 10)
				return err
			},
			wantErr: ErrMalformed,
			wantMsg: "Failed to fetch nearby cities",
		},
		{
			name: "find empty",
			path: "/data/2.5/find",
			body: `{"count": 0, "list": []}`,
			call: func(c *Client) error {
				_, err := c.NearbyByCoords(context.Background(), types.Coordinates{}, 10)
				return err
			},
			wantErr: ErrNoNearbyCities,
			wantMsg: "No nearby cities found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{bodies: map[string]string{tt.path: tt.body}}
			if tt.status != 0 {
				rec.status = map[string]int{tt.path: tt.status}
			}

			err := tt.call(newTestClient(t, rec))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got := Message(err); got != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, got)
			}
		})
	}
}
