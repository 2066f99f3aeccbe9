package types

import "time"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// City is the location metadata that accompanies a forecast.
// TimezoneOffset is the UTC offset in seconds reported by the API.
type City struct {
	Name           string      `json:"name"`
	Country        string      `json:"country"`
	Coord          Coordinates `json:"coord"`
	TimezoneOffset int         `json:"timezone_offset"`
}

// Sample is one 3-hour forecast data point.
type Sample struct {
	Time          time.Time
	Temp          float64 // °C
	FeelsLike     float64 // °C
	Humidity      float64 // %
	Pressure      float64 // hPa
	WindSpeed     float64 // m/s
	WindDirection int     // degrees
	Visibility    float64 // meters
	Pop           float64 // 0..1
	Condition     string
	Description   string
	Icon          string
}

// RawForecast is a validated forecast payload ready for aggregation.
type RawForecast struct {
	City    City
	Samples []Sample
}

type WeatherData struct {
	Location      string    `json:"location"`
	Country       string    `json:"country"`
	Temperature   int       `json:"temperature"`
	FeelsLike     int       `json:"feelsLike"`
	Condition     string    `json:"condition"`
	Description   string    `json:"description"`
	Humidity      int       `json:"humidity"`
	WindSpeed     int       `json:"windSpeed"` // km/h
	WindDirection int       `json:"windDirection"`
	Pressure      int       `json:"pressure"`
	Visibility    int       `json:"visibility"` // km
	Icon          string    `json:"icon"`
	Timestamp     time.Time `json:"timestamp"`
}

type ForecastDay struct {
	Date          time.Time `json:"date"`
	MaxTemp       int       `json:"maxTemp"`
	MinTemp       int       `json:"minTemp"`
	Condition     string    `json:"condition"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Precipitation int       `json:"precipitation"`
	Humidity      int       `json:"humidity"`
}

type Forecast struct {
	Current WeatherData   `json:"current"`
	Days    []ForecastDay `json:"forecast"`
}

// OWMWeather is an entry of the "weather" array in OpenWeatherMap payloads.
type OWMWeather struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type OWMMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type OWMWind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
	Gust  float64 `json:"gust,omitempty"`
}

// OWMForecastItem is one element of the /forecast "list" array.
// Pop is a pointer so that an absent value can be told apart from zero.
type OWMForecastItem struct {
	Dt         int64        `json:"dt"`
	Main       OWMMain      `json:"main"`
	Weather    []OWMWeather `json:"weather"`
	Wind       OWMWind      `json:"wind"`
	Visibility float64      `json:"visibility"`
	Pop        *float64     `json:"pop"`
	DtTxt      string       `json:"dt_txt"`
}

// OWMForecastResponse represents the /forecast API response
type OWMForecastResponse struct {
	Cod  string            `json:"cod"`
	Cnt  int               `json:"cnt"`
	List []OWMForecastItem `json:"list"`
	City struct {
		ID       int         `json:"id"`
		Name     string      `json:"name"`
		Coord    Coordinates `json:"coord"`
		Country  string      `json:"country"`
		Timezone int         `json:"timezone"`
	} `json:"city"`
}

// OWMGeocodeResult is one match of the geocoding /direct endpoint.
type OWMGeocodeResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

// OWMFindResponse represents the /find API response
type OWMFindResponse struct {
	Count int `json:"count"`
	List  []struct {
		ID         int          `json:"id"`
		Name       string       `json:"name"`
		Coord      Coordinates  `json:"coord"`
		Main       OWMMain      `json:"main"`
		Dt         int64        `json:"dt"`
		Wind       OWMWind      `json:"wind"`
		Visibility float64      `json:"visibility"`
		Weather    []OWMWeather `json:"weather"`
		Sys        struct {
			Country string `json:"country"`
		} `json:"sys"`
	} `json:"list"`
}
