package dashboard

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shuv1824/weatherwise/internal/services/table"
	"github.com/shuv1824/weatherwise/internal/services/units"
	"github.com/shuv1824/weatherwise/internal/services/weather"
	"github.com/shuv1824/weatherwise/internal/types"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var ErrInvalidTheme = errors.New("invalid theme")

func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
}

// State is one snapshot of a dashboard session. Every method returns a new
// State; the receiver is never modified.
type State struct {
	Current  *types.WeatherData
	Forecast []types.ForecastDay
	Cities   []types.WeatherData
	Sort     table.SortState
	Page     table.PageState
	Unit     units.Unit
	Theme    Theme
	Err      string
}

func NewState(unit units.Unit, pageSize int) State {
	return State{
		Sort:  table.SortState{Direction: table.Asc},
		Page:  table.PageState{Page: 1, PageSize: pageSize},
		Unit:  unit,
		Theme: ThemeLight,
	}
}

// WithForecast replaces the current conditions and daily forecast wholesale.
func (s State) WithForecast(f *types.Forecast) State {
	current := f.Current
	s.Current = &current
	s.Forecast = slices.Clone(f.Days)
	s.Err = ""
	return s
}

// WithCities replaces the comparison table and returns to its first page.
func (s State) WithCities(cities []types.WeatherData) State {
	s.Cities = slices.Clone(cities)
	s.Page.Page = 1
	s.Err = ""
	return s
}

// WithFailure records a failed lookup: stale results are dropped, the table
// returns to its first page and the user-facing message is set.
func (s State) WithFailure(err error) State {
	s.Current = nil
	s.Forecast = nil
	s.Cities = nil
	s.Page.Page = 1
	s.Err = Message(err)
	return s
}

func (s State) ClearError() State {
	s.Err = ""
	return s
}

func (s State) WithUnit(u units.Unit) State {
	s.Unit = u
	return s
}

func (s State) ToggleUnit() State {
	s.Unit = s.Unit.Toggle()
	return s
}

func (s State) ToggleTheme() State {
	if s.Theme == ThemeDark {
		s.Theme = ThemeLight
	} else {
		s.Theme = ThemeDark
	}
	return s
}

// SortBy applies a column-header click to the table sort.
func (s State) SortBy(key table.SortKey) State {
	s.Sort = s.Sort.Toggle(key)
	return s
}

func (s State) GoToPage(page int) State {
	s.Page = s.Page.GoTo(page, len(s.Cities))
	return s
}

// Message returns the user-facing text for a failed lookup.
func Message(err error) string {
	if errors.Is(err, ErrLocationUnavailable) {
		return "Unable to determine your location. Please search for a city."
	}
	return weather.Message(err)
}
