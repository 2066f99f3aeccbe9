package forecast

import (
	"errors"
	"math"
	"time"

	"github.com/shuv1824/weatherwise/internal/types"
)

// MaxDays is the number of calendar days kept in a forecast.
const MaxDays = 5

var ErrEmptyInput = errors.New("no forecast samples to aggregate")

// Aggregate derives the current conditions and the daily summaries from a
// time-ordered list of samples. The first sample is treated as "now".
func Aggregate(city types.City, samples []types.Sample) (*types.Forecast, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	local := time.FixedZone(city.Name, city.TimezoneOffset)

	days := make([]types.ForecastDay, 0, MaxDays)
	for _, bucket := range groupByDay(samples) {
		if len(days) == MaxDays {
			break
		}
		days = append(days, summarize(bucket, local))
	}

	return &types.Forecast{
		Current: Snapshot(city, samples[0]),
		Days:    days,
	}, nil
}

// Snapshot maps a single sample onto the display model: temperatures rounded,
// wind converted from m/s to km/h and visibility from meters to km.
func Snapshot(city types.City, s types.Sample) types.WeatherData {
	return types.WeatherData{
		Location:      city.Name,
		Country:       city.Country,
		Temperature:   round(s.Temp),
		FeelsLike:     round(s.FeelsLike),
		Condition:     s.Condition,
		Description:   s.Description,
		Humidity:      round(s.Humidity),
		WindSpeed:     round(s.WindSpeed * 3.6),
		WindDirection: s.WindDirection,
		Pressure:      round(s.Pressure),
		Visibility:    round(s.Visibility / 1000),
		Icon:          s.Icon,
		Timestamp:     s.Time,
	}
}

type dayBucket struct {
	date    time.Time
	samples []types.Sample
}

// groupByDay buckets samples by UTC calendar date, keeping the order in which
// each date is first seen.
func groupByDay(samples []types.Sample) []*dayBucket {
	var buckets []*dayBucket
	index := make(map[string]*dayBucket)

	for _, s := range samples {
		key := s.Time.UTC().Format(time.DateOnly)
		b, ok := index[key]
		if !ok {
			y, m, d := s.Time.UTC().Date()
			b = &dayBucket{date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
			index[key] = b
			buckets = append(buckets, b)
		}
		b.samples = append(b.samples, s)
	}

	return buckets
}

func summarize(b *dayBucket, local *time.Location) types.ForecastDay {
	maxTemp := math.Inf(-1)
	minTemp := math.Inf(1)
	var sumPop, sumHumidity float64

	for _, s := range b.samples {
		maxTemp = math.Max(maxTemp, s.Temp)
		minTemp = math.Min(minTemp, s.Temp)
		sumPop += s.Pop
		sumHumidity += s.Humidity
	}

	n := float64(len(b.samples))
	rep := representative(b.samples, local)

	return types.ForecastDay{
		Date:          b.date,
		MaxTemp:       round(maxTemp),
		MinTemp:       round(minTemp),
		Condition:     rep.Condition,
		Description:   rep.Description,
		Icon:          rep.Icon,
		Precipitation: round(sumPop / n * 100),
		Humidity:      round(sumHumidity / n),
	}
}

// representative picks the first sample whose local hour is in [11,14],
// falling back to the earliest sample of the day.
func representative(samples []types.Sample, local *time.Location) types.Sample {
	first := samples[0]
	for _, s := range samples {
		if h := s.Time.In(local).Hour(); h >= 11 && h <= 14 {
			return s
		}
		if s.Time.Before(first.Time) {
			first = s
		}
	}
	return first
}

func round(v float64) int {
	return int(math.Round(v))
}
