package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"weatherscan/internal/engine"
	"weatherscan/internal/models"
)

// QueryParams echoes the parsed query back to the caller.
type QueryParams struct {
	Year    int    `json:"year"`
	Station string `json:"station"`
}

type ExtremesResponse struct {
	Query   QueryParams    `json:"query"`
	Backend string         `json:"backend"`
	Report  *models.Report `json:"report"`
}

type RowsResponse struct {
	Query   QueryParams        `json:"query"`
	Backend string             `json:"backend"`
	Data    []models.ResultRow `json:"data"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends"`
}

// Handler serves queries against the configured backends. A backend is
// configured at construction and becomes queryable once SetExecutor installs
// its executor; until then its requests get 503.
type Handler struct {
	mu        sync.RWMutex
	backends  []string
	executors map[string]*engine.Executor
	logger    *zap.Logger
}

// NewHandler configures the named backends. The first one is the default for
// requests without a backend parameter.
func NewHandler(logger *zap.Logger, backends ...string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		backends:  backends,
		executors: make(map[string]*engine.Executor, len(backends)),
		logger:    logger,
	}
}

// SetExecutor makes a backend live. It is safe to call while serving.
func (h *Handler) SetExecutor(exec *engine.Executor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.executors[exec.Backend()] = exec
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/extremes", h.GetExtremes)
	api.GET("/extremes/rows", h.GetExtremeRows)
	api.GET("/stations", h.GetStations)
}

// --- HELPERS ---

func (h *Handler) configured(backend string) bool {
	for _, b := range h.backends {
		if b == backend {
			return true
		}
	}
	return false
}

// executor resolves the backend parameter to a live executor.
func (h *Handler) executor(c echo.Context) (*engine.Executor, error) {
	backend := strings.ToLower(strings.TrimSpace(c.QueryParam("backend")))
	if backend == "" {
		if len(h.backends) == 0 {
			return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "no backend configured")
		}
		backend = h.backends[0]
	}
	if backend != "memory" && backend != "disk" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "backend must be memory or disk")
	}
	if !h.configured(backend) {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "backend "+backend+" is not configured")
	}

	h.mu.RLock()
	exec := h.executors[backend]
	h.mu.RUnlock()
	if exec == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "backend "+backend+" is loading")
	}
	return exec, nil
}

func queryParams(c echo.Context) (QueryParams, error) {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year <= 0 {
		return QueryParams{}, echo.NewHTTPError(http.StatusBadRequest, "year must be a positive integer")
	}
	station := c.QueryParam("station")
	if station == "" {
		return QueryParams{}, echo.NewHTTPError(http.StatusBadRequest, "station is required")
	}
	return QueryParams{Year: year, Station: station}, nil
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) run(c echo.Context) (QueryParams, *engine.Executor, *models.Report, error) {
	q, err := queryParams(c)
	if err != nil {
		return q, nil, nil, err
	}
	exec, err := h.executor(c)
	if err != nil {
		return q, nil, nil, err
	}
	report, err := exec.Run(q.Year, q.Station)
	if err != nil {
		return q, exec, nil, h.storeError(err)
	}
	return q, exec, report, nil
}

func (h *Handler) storeError(err error) error {
	if errors.Is(err, engine.ErrStoreUnavailable) {
		h.logger.Error("store unavailable", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "store unavailable").SetInternal(err)
	}
	h.logger.Error("query failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "query failed").SetInternal(err)
}

// --- HANDLERS ---

func (h *Handler) GetExtremes(c echo.Context) error {
	q, exec, report, err := h.run(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ExtremesResponse{Query: q, Backend: exec.Backend(), Report: report})
}

// GetExtremeRows returns the flattened result rows, paginated with limit and
// offset.
func (h *Handler) GetExtremeRows(c echo.Context) error {
	q, exec, report, err := h.run(c)
	if err != nil {
		return err
	}

	rows := report.Rows()
	total := len(rows)
	limit, offset := getPaginationParams(c, total)

	resp := RowsResponse{Query: q, Backend: exec.Backend(), Data: []models.ResultRow{}, Total: total, Limit: limit, Offset: offset}
	if offset < total {
		// limit may be close to MaxInt, so compare instead of adding.
		end := total
		if limit < total-offset {
			end = offset + limit
		}
		resp.Data = rows[offset:end]
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetStations(c echo.Context) error {
	exec, err := h.executor(c)
	if err != nil {
		return err
	}
	stations, err := engine.Stations(exec.Store())
	if err != nil {
		return h.storeError(err)
	}
	return c.JSON(http.StatusOK, stations)
}

// Health always answers 200 and reports each backend as ready or loading.
func (h *Handler) Health(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := HealthResponse{Status: "ok", Backends: make(map[string]string, len(h.backends))}
	for _, b := range h.backends {
		if h.executors[b] != nil {
			resp.Backends[b] = "ready"
		} else {
			resp.Backends[b] = "loading"
		}
	}
	return c.JSON(http.StatusOK, resp)
}
