package units

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

var ErrInvalidUnit = errors.New("invalid temperature unit")

// ParseUnit accepts "C"/"F" in either case as well as the spelled-out names.
// An empty string yields Celsius.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "c", "celsius", "metric":
		return Celsius, nil
	case "f", "fahrenheit", "imperial":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
}

func (u Unit) Toggle() Unit {
	if u == Fahrenheit {
		return Celsius
	}
	return Fahrenheit
}

// ToDisplayTemp converts a Celsius value for display. Fahrenheit values are
// rounded half away from zero; Celsius values are returned unchanged.
func ToDisplayTemp(tempC float64, unit Unit) float64 {
	if unit != Fahrenheit {
		return tempC
	}
	return math.Round(tempC*9/5 + 32)
}

// DisplayInt is ToDisplayTemp for already-rounded Celsius values.
func DisplayInt(tempC int, unit Unit) int {
	return int(ToDisplayTemp(float64(tempC), unit))
}

// Format renders a temperature with its unit, e.g. "21°C".
func Format(temp float64, unit Unit) string {
	return fmt.Sprintf("%d°%s", int(math.Round(temp)), unit)
}

var compassPoints = [...]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Compass maps a wind direction in degrees to a 16-point compass label.
func Compass(degrees int) string {
	idx := int(math.Round(float64(degrees)/22.5)) % len(compassPoints)
	if idx < 0 {
		idx += len(compassPoints)
	}
	return compassPoints[idx]
}
