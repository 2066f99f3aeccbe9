package cmd

import (
	"context"

	"github.com/shuv1824/weatherwise/internal/services/dashboard"
	"github.com/shuv1824/weatherwise/internal/services/table"
	"github.com/spf13/cobra"
)

var nearbyOpts struct {
	count    int
	sort     string
	dir      string
	page     int
	pageSize int
}

var nearbyCmd = &cobra.Command{
	Use:   "nearby [city]",
	Short: "Print a sorted, paginated table of the cities around a place",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNearby,
}

func init() {
	addLookupFlags(nearbyCmd)
	nearbyCmd.Flags().IntVar(&nearbyOpts.count, "count", 0, "number of cities to fetch, at most 50 (default from config)")
	nearbyCmd.Flags().StringVar(&nearbyOpts.sort, "sort", "", "column to sort by, e.g. temperature or wind_speed")
	nearbyCmd.Flags().StringVar(&nearbyOpts.dir, "dir", "asc", "sort direction (asc or desc)")
	nearbyCmd.Flags().IntVar(&nearbyOpts.page, "page", 1, "page to show")
	nearbyCmd.Flags().IntVar(&nearbyOpts.pageSize, "page-size", 0, "rows per page (default from config)")
	rootCmd.AddCommand(nearbyCmd)
}

func runNearby(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	unit, err := lookupUnit(cfg.Dashboard.Unit)
	if err != nil {
		return err
	}
	key, err := table.ParseSortKey(nearbyOpts.sort)
	if err != nil {
		return err
	}
	dir, err := table.ParseDirection(nearbyOpts.dir)
	if err != nil {
		return err
	}

	pageSize := cfg.Dashboard.PageSize
	if nearbyOpts.pageSize > 0 {
		pageSize = nearbyOpts.pageSize
	}

	svc, _ := newServices(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.API.Timeout)
	defer cancel()

	cities, err := svc.Nearby(ctx, lookupQuery(cmd, args), nearbyOpts.count)
	if err != nil {
		return userError(err)
	}

	state := dashboard.NewState(unit, pageSize).WithCities(cities)
	state.Sort = table.SortState{Key: key, Direction: dir}
	state = state.GoToPage(nearbyOpts.page)

	view, err := state.View()
	if err != nil {
		return err
	}
	return renderTable(cmd.OutOrStdout(), view)
}
