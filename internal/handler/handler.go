package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shuv1824/weatherwise/internal/response"
	"github.com/shuv1824/weatherwise/internal/services/dashboard"
	"github.com/shuv1824/weatherwise/internal/services/table"
	"github.com/shuv1824/weatherwise/internal/services/units"
	"github.com/shuv1824/weatherwise/internal/services/weather"
	"github.com/shuv1824/weatherwise/internal/types"
)

// DefaultTimeout bounds one dashboard request, upstream calls included.
const DefaultTimeout = 15 * time.Second

var errBadRequest = errors.New("bad request")

type DashboardHandler struct {
	service  *dashboard.Service
	unit     units.Unit
	pageSize int
	timeout  time.Duration
}

func NewDashboardHandler(service *dashboard.Service, unit units.Unit, pageSize int, timeout time.Duration) *DashboardHandler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DashboardHandler{
		service:  service,
		unit:     unit,
		pageSize: pageSize,
		timeout:  timeout,
	}
}

// Health returns a simple health check response
func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// GetWeather returns current conditions and the 5-day forecast.
func (h *DashboardHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	state, err := h.baseState(params, h.pageSize)
	if err != nil {
		reject(w, err)
		return
	}
	q, err := parseQuery(params)
	if err != nil {
		reject(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()

	f, err := h.service.Forecast(ctx, q)
	if err != nil {
		h.fail(w, r, state.WithFailure(err), err)
		return
	}

	view, err := state.WithForecast(f).View()
	if err != nil {
		h.fail(w, r, state, err)
		return
	}

	w.Header().Set("X-Response-Time", time.Since(start).String())
	response.JSON(w, http.StatusOK, view)
}

// GetNearby returns one page of the nearby-cities comparison table.
func (h *DashboardHandler) GetNearby(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	pageSize, err := intParam(params, "page_size", h.pageSize)
	if err != nil {
		reject(w, err)
		return
	}
	state, err := h.baseState(params, pageSize)
	if err != nil {
		reject(w, err)
		return
	}
	q, err := parseQuery(params)
	if err != nil {
		reject(w, err)
		return
	}
	tv, err := parseTableParams(params)
	if err != nil {
		reject(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()

	cities, err := h.service.Nearby(ctx, q, tv.count)
	if err != nil {
		h.fail(w, r, state.WithFailure(err), err)
		return
	}

	state = state.WithCities(cities)
	state.Sort = table.SortState{Key: tv.key, Direction: tv.dir}
	if tv.toggle {
		state = state.SortBy(tv.toggleKey)
	}
	state = state.GoToPage(tv.page)

	view, err := state.View()
	if err != nil {
		h.fail(w, r, state, err)
		return
	}

	w.Header().Set("X-Response-Time", time.Since(start).String())
	response.JSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) baseState(params url.Values, pageSize int) (dashboard.State, error) {
	if pageSize <= 0 {
		return dashboard.State{}, fmt.Errorf("%w: page_size must be positive", errBadRequest)
	}

	unit := h.unit
	if raw := params.Get("unit"); raw != "" {
		u, err := units.ParseUnit(raw)
		if err != nil {
			return dashboard.State{}, err
		}
		unit = u
	}

	theme, err := dashboard.ParseTheme(params.Get("theme"))
	if err != nil {
		return dashboard.State{}, err
	}

	state := dashboard.NewState(unit, pageSize)
	state.Theme = theme
	return state, nil
}

// reject answers a request whose parameters could not be used.
func reject(w http.ResponseWriter, err error) {
	msg := err.Error()
	if errors.Is(err, weather.ErrEmptyQuery) {
		msg = weather.Message(err)
	}
	response.ErrorJSON(w, http.StatusBadRequest, msg)
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, state dashboard.State, err error) {
	status := Status(err)
	msg := state.Err
	if msg == "" {
		msg = dashboard.Message(err)
	}

	attrs := []any{"path", r.URL.Path, "status", status, "error", err, "request_id", RequestIDFrom(r.Context())}
	if status >= http.StatusInternalServerError {
		slog.Error("dashboard request failed", attrs...)
	} else {
		slog.Warn("dashboard request failed", attrs...)
	}

	response.ErrorJSON(w, status, msg)
}

// Status maps a lookup error onto the HTTP status reported to the client.
func Status(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, weather.ErrEmptyQuery),
		errors.Is(err, dashboard.ErrLocationUnavailable),
		errors.Is(err, table.ErrInvalidPageSize),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, weather.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, weather.ErrUnauthorized),
		errors.Is(err, weather.ErrNetwork),
		errors.Is(err, weather.ErrMalformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseQuery reads city or lat/lon. A city wins when both are present.
func parseQuery(params url.Values) (dashboard.Query, error) {
	q := dashboard.Query{City: strings.TrimSpace(params.Get("city"))}
	if q.City != "" {
		return q, nil
	}

	rawLat, rawLon := params.Get("lat"), params.Get("lon")
	if rawLat == "" && rawLon == "" {
		if params.Has("city") {
			return q, weather.ErrEmptyQuery
		}
		return q, nil
	}
	if rawLat == "" || rawLon == "" {
		return q, fmt.Errorf("%w: lat and lon must be given together", errBadRequest)
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return q, fmt.Errorf("%w: invalid lat %q", errBadRequest, rawLat)
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil || lon < -180 || lon > 180 {
		return q, fmt.Errorf("%w: invalid lon %q", errBadRequest, rawLon)
	}

	q.Coords = &types.Coordinates{Lat: lat, Lon: lon}
	return q, nil
}

type tableParams struct {
	count     int
	key       table.SortKey
	dir       table.Direction
	toggle    bool
	toggleKey table.SortKey
	page      int
}

func parseTableParams(params url.Values) (tableParams, error) {
	var (
		tp  tableParams
		err error
	)

	if tp.count, err = intParam(params, "count", 0); err != nil {
		return tp, err
	}
	if tp.page, err = intParam(params, "page", 1); err != nil {
		return tp, err
	}
	if tp.key, err = table.ParseSortKey(params.Get("sort")); err != nil {
		return tp, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if tp.dir, err = table.ParseDirection(params.Get("dir")); err != nil {
		return tp, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if params.Has("toggle") {
		tp.toggle = true
		if tp.toggleKey, err = table.ParseSortKey(params.Get("toggle")); err != nil {
			return tp, fmt.Errorf("%w: %w", errBadRequest, err)
		}
	}

	return tp, nil
}

func intParam(params url.Values, name string, def int) (int, error) {
	raw := params.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errBadRequest, name, raw)
	}
	return n, nil
}
