package dashboard

import (
	"context"
	"errors"

	"github.com/shuv1824/weatherwise/internal/types"
)

var ErrLocationUnavailable = errors.New("location unavailable")

// LocationProvider supplies the user's position when no city or coordinates
// were given.
type LocationProvider interface {
	Locate(ctx context.Context) (types.Coordinates, error)
}

// LocationFunc adapts a function to LocationProvider.
type LocationFunc func(ctx context.Context) (types.Coordinates, error)

func (f LocationFunc) Locate(ctx context.Context) (types.Coordinates, error) {
	return f(ctx)
}

// StaticLocation always reports the same coordinates. A nil value reports
// ErrLocationUnavailable.
func StaticLocation(coords *types.Coordinates) LocationProvider {
	return LocationFunc(func(context.Context) (types.Coordinates, error) {
		if coords == nil {
			return types.Coordinates{}, ErrLocationUnavailable
		}
		return *coords, nil
	})
}
