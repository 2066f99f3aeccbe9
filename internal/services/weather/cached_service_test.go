package weather

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shuv1824/weatherwise/internal/types"
)

// countingSource is a Source that counts calls and serves fixed data.
type countingSource struct {
	calls    map[string]int
	err      error
	forecast *types.RawForecast
	cities   []types.WeatherData
}

func newCountingSource() *countingSource {
	return &countingSource{
		calls: make(map[string]int),
		forecast: &types.RawForecast{
			City:    types.City{Name: "Test", Country: "TT"},
			Samples: []types.Sample{{Time: time.Unix(0, 0), Temp: 25}},
		},
		cities: []types.WeatherData{{Location: "Test", Temperature: 25}},
	}
}

func (s *countingSource) ForecastByCity(_ context.Context, _ string) (*types.RawForecast, error) {
	s.calls["forecast"]++
	if s.err != nil {
		return nil, s.err
	}
	return s.forecast, nil
}

func (s *countingSource) ForecastByCoords(_ context.Context, _ types.Coordinates) (*types.RawForecast, error) {
	s.calls["forecast_coords"]++
	return s.forecast, s.err
}

func (s *countingSource) Geocode(_ context.Context, _ string) (types.Coordinates, error) {
	s.calls["geocode"]++
	return types.Coordinates{Lat: 1, Lon: 2}, s.err
}

func (s *countingSource) NearbyByCoords(_ context.Context, _ types.Coordinates, _ int) ([]types.WeatherData, error) {
	s.calls["nearby"]++
	if s.err != nil {
		return nil, s.err
	}
	return s.cities, nil
}

func (s *countingSource) NearbyByCity(ctx context.Context, city string, count int) ([]types.WeatherData, error) {
	s.calls["nearby_city"]++
	return s.NearbyByCoords(ctx, types.Coordinates{}, count)
}

func TestCachedClient(t *testing.T) {
	t.Run("returns cached data within TTL", func(t *testing.T) {
		src := newCountingSource()
		svc := NewCachedClient(src, time.Hour)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			got, err := svc.ForecastByCity(ctx, "Test")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.City.Name != "Test" {
				t.Errorf("expected city 'Test', got '%s'", got.City.Name)
			}
		}

		if src.calls["forecast"] != 1 {
			t.Errorf("expected 1 upstream call, got %d", src.calls["forecast"])
		}
		hits, misses := svc.Stats()
		if hits != 2 || misses != 1 {
			t.Errorf("expected 2 hits and 1 miss, got %d/%d", hits, misses)
		}
	})

	t.Run("city keys ignore case and spacing", func(t *testing.T) {
		src := newCountingSource()
		svc := NewCachedClient(src, time.Hour)
		ctx := context.Background()

		_, _ = svc.ForecastByCity(ctx, "London")
		_, _ = svc.ForecastByCity(ctx, "  london ")

		if src.calls["forecast"] != 1 {
			t.Errorf("expected 1 upstream call, got %d", src.calls["forecast"])
		}
	})

	t.Run("cache expires after TTL", func(t *testing.T) {
		src := newCountingSource()
		svc := NewCachedClient(src, 10*time.Minute)
		now := time.Now()
		svc.now = func() time.Time { return now }
		ctx := context.Background()

		_, _ = svc.NearbyByCoords(ctx, types.Coordinates{Lat: 1, Lon: 2}, 25)
		now = now.Add(11 * time.Minute)
		_, _ = svc.NearbyByCoords(ctx, types.Coordinates{Lat: 1, Lon: 2}, 25)

		if src.calls["nearby"] != 2 {
			t.Errorf("expected expired entry to be refetched, got %d calls", src.calls["nearby"])
		}
	})

	t.Run("cache returns copy, not reference", func(t *testing.T) {
		src := newCountingSource()
		svc := NewCachedClient(src, time.Hour)
		ctx := context.Background()

		result1, _ := svc.NearbyByCoords(ctx, types.Coordinates{}, 10)
		result1[0].Temperature = 99

		result2, _ := svc.NearbyByCoords(ctx, types.Coordinates{}, 10)
		if result2[0].Temperature == 99 {
			t.Error("cache returned reference instead of copy")
		}

		f1, _ := svc.ForecastByCity(ctx, "Test")
		f1.Samples[0].Temp = 99
		f2, _ := svc.ForecastByCity(ctx, "Test")
		if f2.Samples[0].Temp == 99 {
			t.Error("forecast samples shared between callers")
		}
	})

	t.Run("errors are not cached", func(t *testing.T) {
		src := newCountingSource()
		src.err = ErrNetwork
		svc := NewCachedClient(src, time.Hour)
		ctx := context.Background()

		for i := 0; i < 2; i++ {
			if _, err := svc.ForecastByCity(ctx, "Test"); !errors.Is(err, ErrNetwork) {
				t.Fatalf("expected ErrNetwork, got %v", err)
			}
		}
		if src.calls["forecast"] != 2 {
			t.Errorf("expected failures to reach upstream each time, got %d calls", src.calls["forecast"])
		}
		if svc.Len() != 0 {
			t.Errorf("expected empty cache, got %d entries", svc.Len())
		}
	})

	t.Run("nearby by city reuses geocode", func(t *testing.T) {
		src := newCountingSource()
		svc := NewCachedClient(src, time.Hour)
		ctx := context.Background()

		_, _ = svc.NearbyByCity(ctx, "Test", 25)
		_, _ = svc.NearbyByCity(ctx, "test", 25)

		if src.calls["geocode"] != 1 || src.calls["nearby"] != 1 {
			t.Errorf("expected one geocode and one find, got %v", src.calls)
		}
	})
}

func TestCachedClientSweep(t *testing.T) {
	src := newCountingSource()
	svc := NewCachedClient(src, time.Minute)
	now := time.Now()
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = svc.ForecastByCity(ctx, "a")
	now = now.Add(30 * time.Second)
	_, _ = svc.ForecastByCity(ctx, "b")
	now = now.Add(45 * time.Second)

	if n := svc.Sweep(); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if svc.Len() != 1 {
		t.Errorf("expected 1 remaining entry, got %d", svc.Len())
	}
}

func TestCachedClientRunStopsOnCancel(t *testing.T) {
	svc := NewCachedClient(newCountingSource(), time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCachedClientZeroTTLDisablesCache(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Minute} {
		src := newCountingSource()
		svc := NewCachedClient(src, ttl)
		ctx := context.Background()

		for i := 0; i < 100; i++ {
			if _, err := svc.ForecastByCity(ctx, fmt.Sprintf("city-%d", i)); err != nil {
				t.Fatalf("ttl %s: unexpected error: %v", ttl, err)
			}
			if _, err := svc.NearbyByCoords(ctx, types.Coordinates{Lat: float64(i)}, 10); err != nil {
				t.Fatalf("ttl %s: unexpected error: %v", ttl, err)
			}
		}
		_, _ = svc.ForecastByCity(ctx, "city-0")

		if n := svc.Len(); n != 0 {
			t.Errorf("ttl %s: expected no stored entries, got %d", ttl, n)
		}
		if src.calls["forecast"] != 101 || src.calls["nearby"] != 100 {
			t.Errorf("ttl %s: expected every call upstream, got %v", ttl, src.calls)
		}
		if hits, misses := svc.Stats(); hits != 0 || misses != 0 {
			t.Errorf("ttl %s: expected no cache accounting, got %d/%d", ttl, hits, misses)
		}
	}
}
