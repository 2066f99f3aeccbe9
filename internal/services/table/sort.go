package table

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shuv1824/weatherwise/internal/types"
)

// SortKey names a sortable WeatherData field. SortNone keeps input order.
type SortKey string

const (
	SortNone          SortKey = ""
	SortLocation      SortKey = "location"
	SortCountry       SortKey = "country"
	SortTemperature   SortKey = "temperature"
	SortFeelsLike     SortKey = "feelsLike"
	SortCondition     SortKey = "condition"
	SortHumidity      SortKey = "humidity"
	SortWindSpeed     SortKey = "windSpeed"
	SortWindDirection SortKey = "windDirection"
	SortPressure      SortKey = "pressure"
	SortVisibility    SortKey = "visibility"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var (
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrInvalidDirection = errors.New("invalid sort direction")
)

var sortKeys = []SortKey{
	SortLocation, SortCountry, SortTemperature, SortFeelsLike, SortCondition,
	SortHumidity, SortWindSpeed, SortWindDirection, SortPressure, SortVisibility,
}

// ParseSortKey matches s against the sortable keys, ignoring case and
// accepting snake_case spellings such as "wind_speed".
func ParseSortKey(s string) (SortKey, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	if norm == "" || norm == "none" {
		return SortNone, nil
	}
	for _, k := range sortKeys {
		if strings.ToLower(string(k)) == norm {
			return k, nil
		}
	}
	return SortNone, fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// SortCities returns a sorted copy of cities. Equal values keep their
// relative input order in either direction.
func SortCities(cities []types.WeatherData, key SortKey, dir Direction) []types.WeatherData {
	sorted := slices.Clone(cities)
	if sorted == nil {
		sorted = []types.WeatherData{}
	}

	compare := comparator(key)
	if compare == nil {
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b types.WeatherData) int {
		if dir == Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})

	return sorted
}

func comparator(key SortKey) func(a, b types.WeatherData) int {
	switch key {
	case SortLocation:
		return func(a, b types.WeatherData) int { return cmp.Compare(a.Location, b.Location) }
	case SortCountry:
		return func(a, b types.WeatherData) int { return cmp.Compare(a.Country, b.Country) }
	case SortTemperature:
		return func(a, b types.WeatherData) int { return cmp.Compare(a.Temperature, b.Temperature) }
	case SortFeelsLike:
		return func(a, b types.WeatherData) int { return cmp.Compare(a.FeelsLike, b.FeelsLike) }
	case SortCondition:
		return func(a, b types.WeatherData) int { return cmp.Compare(a.Condition, b.Condition) }
	case SortHumidity:
		return func(a, b types.WeatherData) int { return cmp.Compare(a.Humidity, b.Humidity) }
	case SortWindSpeed:
		return func(a, b types.WeatherData) int { return cmp.Compare(a.WindSpeed, b.WindSpeed) }
	case SortWindDirection:
		return func(a, b types.WeatherData) int { return cmp.Compare(a.WindDirection, b.WindDirection) }
	case SortPressure:
		return func(a, b types.WeatherData) int { return cmp.Compare(a.Pressure, b.Pressure) }
	case SortVisibility:
		return func(a, b types.WeatherData) int { return cmp.Compare(a.Visibility, b.Visibility) }
	default:
		return nil
	}
}
