package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shuv1824/weatherwise/internal/services/dashboard"
	"github.com/shuv1824/weatherwise/internal/services/table"
	"github.com/shuv1824/weatherwise/internal/services/units"
)

// renderForecast prints the current conditions followed by the daily table.
func renderForecast(w io.Writer, v dashboard.View) error {
	if c := v.Current; c != nil {
		fmt.Fprintf(w, "%s, %s  %s  %s (%s)\n",
			c.Location, c.Country, units.Format(float64(c.Temperature), v.Unit), c.Condition, c.Description)
		fmt.Fprintf(w, "Feels like %s  Humidity %d%%  Wind %d km/h %s  Pressure %d hPa  Visibility %d km\n\n",
			units.Format(float64(c.FeelsLike), v.Unit), c.Humidity, c.WindSpeed, c.WindCompass, c.Pressure, c.Visibility)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tHIGH\tLOW\tCONDITION\tPRECIP\tHUMIDITY")
	for _, d := range v.Forecast {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%d%%\n",
			d.Date.Format("Mon Jan 2"),
			units.Format(float64(d.MaxTemp), v.Unit),
			units.Format(float64(d.MinTemp), v.Unit),
			d.Condition, d.Precipitation, d.Humidity)
	}
	return tw.Flush()
}

var columns = []struct {
	key   table.SortKey
	title string
}{
	{table.SortLocation, "LOCATION"},
	{table.SortCountry, "COUNTRY"},
	{table.SortTemperature, "TEMP"},
	{table.SortFeelsLike, "FEELS"},
	{table.SortCondition, "CONDITION"},
	{table.SortHumidity, "HUMIDITY"},
	{table.SortWindSpeed, "WIND"},
	{table.SortWindDirection, "DIR"},
	{table.SortPressure, "PRESSURE"},
	{table.SortVisibility, "VISIBILITY"},
}

// renderTable prints one page of the nearby-cities table. The active sort
// column is marked with an arrow.
func renderTable(w io.Writer, v dashboard.View) error {
	if v.Table == nil {
		_, err := fmt.Fprintln(w, "No nearby cities found")
		return err
	}
	t := v.Table

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.title
		if c.key == t.Sort.Key {
			headers[i] += arrow(t.Sort.Direction)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, r := range t.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d%%\t%d km/h\t%s\t%d hPa\t%d km\n",
			r.Location, r.Country,
			units.Format(float64(r.Temperature), v.Unit),
			units.Format(float64(r.FeelsLike), v.Unit),
			r.Condition, r.Humidity, r.WindSpeed, r.WindCompass, r.Pressure, r.Visibility)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nPage %d of %d (%d cities)\n", t.Page, t.TotalPages, t.TotalItems); err != nil {
		return err
	}
	if len(t.Pages) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, pager(t))
	return err
}

// pager renders the page links, e.g. "‹ prev  1 … 4 [5] 6 … 10  next ›".
func pager(t *dashboard.CityTable) string {
	links := make([]string, len(t.Pages))
	for i, p := range t.Pages {
		switch p {
		case table.Gap:
			links[i] = "…"
		case t.Page:
			links[i] = fmt.Sprintf("[%d]", p)
		default:
			links[i] = strconv.Itoa(p)
		}
	}

	parts := []string{strings.Join(links, " ")}
	if t.HasPrev {
		parts = append([]string{"‹ prev"}, parts...)
	}
	if t.HasNext {
		parts = append(parts, "next ›")
	}
	return strings.Join(parts, "  ")
}

func arrow(d table.Direction) string {
	if d == table.Desc {
		return " ↓"
	}
	return " ↑"
}
