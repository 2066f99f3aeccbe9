package dashboard

import (
	"github.com/shuv1824/weatherwise/internal/services/table"
	"github.com/shuv1824/weatherwise/internal/services/units"
	"github.com/shuv1824/weatherwise/internal/types"
)

// WeatherView is a WeatherData with temperatures in the display unit.
type WeatherView struct {
	types.WeatherData
	WindCompass string `json:"windCompass"`
}

type CityTable struct {
	Rows       []WeatherView   `json:"rows"`
	Sort       table.SortState `json:"sort"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
	TotalItems int             `json:"total_items"`
	HasPrev    bool            `json:"has_prev"`
	HasNext    bool            `json:"has_next"`

	// Pages is the pager window; table.Gap marks elided pages.
	Pages []int `json:"pages,omitempty"`
}

type View struct {
	Unit     units.Unit          `json:"unit"`
	Theme    Theme               `json:"theme"`
	Current  *WeatherView        `json:"current,omitempty"`
	Forecast []types.ForecastDay `json:"forecast,omitempty"`
	Table    *CityTable          `json:"table,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Table sorts and paginates the cities and converts them for display.
func (s State) Table() (CityTable, error) {
	sorted := table.SortCities(s.Cities, s.Sort.Key, s.Sort.Direction)

	page, err := table.Paginate(sorted, s.Page.Page, s.Page.PageSize)
	if err != nil {
		return CityTable{}, err
	}

	rows := make([]WeatherView, len(page.Items))
	for i, c := range page.Items {
		rows[i] = display(c, s.Unit)
	}

	return CityTable{
		Rows:       rows,
		Sort:       s.Sort,
		Page:       page.Number,
		PageSize:   s.Page.PageSize,
		TotalPages: page.TotalPages,
		TotalItems: page.TotalItems,
		HasPrev:    page.HasPrev(),
		HasNext:    page.HasNext(),
		Pages:      page.Links(),
	}, nil
}

// View renders the whole snapshot. The table is included only when the
// session holds cities.
func (s State) View() (View, error) {
	v := View{Unit: s.Unit, Theme: s.Theme, Error: s.Err}

	if s.Current != nil {
		cur := display(*s.Current, s.Unit)
		v.Current = &cur
	}

	if len(s.Forecast) > 0 {
		v.Forecast = make([]types.ForecastDay, len(s.Forecast))
		for i, d := range s.Forecast {
			d.MaxTemp = units.DisplayInt(d.MaxTemp, s.Unit)
			d.MinTemp = units.DisplayInt(d.MinTemp, s.Unit)
			v.Forecast[i] = d
		}
	}

	if len(s.Cities) > 0 {
		t, err := s.Table()
		if err != nil {
			return View{}, err
		}
		v.Table = &t
	}

	return v, nil
}

func display(w types.WeatherData, unit units.Unit) WeatherView {
	w.Temperature = units.DisplayInt(w.Temperature, unit)
	w.FeelsLike = units.DisplayInt(w.FeelsLike, unit)
	return WeatherView{WeatherData: w, WindCompass: units.Compass(w.WindDirection)}
}
