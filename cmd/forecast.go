package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shuv1824/weatherwise/internal/services/dashboard"
	"github.com/shuv1824/weatherwise/internal/services/units"
	"github.com/shuv1824/weatherwise/internal/types"
	"github.com/spf13/cobra"
)

var lookup struct {
	lat, lon float64
	unit     string
}

var forecastCmd = &cobra.Command{
	Use:   "forecast [city]",
	Short: "Print current conditions and the 5-day forecast",
	Long: `Print current conditions and the 5-day forecast for a city, a coordinate
pair (--lat/--lon) or, with neither, the configured default location.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runForecast,
}

func init() {
	addLookupFlags(forecastCmd)
	rootCmd.AddCommand(forecastCmd)
}

func addLookupFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&lookup.lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lookup.lon, "lon", 0, "longitude")
	cmd.Flags().StringVar(&lookup.unit, "unit", "", "temperature unit, C or F (overrides config)")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
}

func runForecast(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	unit, err := lookupUnit(cfg.Dashboard.Unit)
	if err != nil {
		return err
	}

	svc, _ := newServices(cfg)
	state := dashboard.NewState(unit, cfg.Dashboard.PageSize)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
	defer cancel()

	f, err := svc.Forecast(ctx, lookupQuery(cmd, args))
	if err != nil {
		return userError(err)
	}

	view, err := state.WithForecast(f).View()
	if err != nil {
		return err
	}
	return renderForecast(cmd.OutOrStdout(), view)
}

func lookupUnit(def string) (units.Unit, error) {
	if lookup.unit != "" {
		return units.ParseUnit(lookup.unit)
	}
	return units.ParseUnit(def)
}

// lookupQuery builds the place selection from the positional city and the
// --lat/--lon flags.
func lookupQuery(cmd *cobra.Command, args []string) dashboard.Query {
	var q dashboard.Query
	if len(args) > 0 {
		q.City = args[0]
	}
	if cmd.Flags().Changed("lat") {
		q.Coords = &types.Coordinates{Lat: lookup.lat, Lon: lookup.lon}
	}
	return q
}

func userError(err error) error {
	slog.Debug("lookup failed", "error", err)
	return fmt.Errorf("%s: %w", dashboard.Message(err), err)
}
