// Package api exposes the search pipeline and saved-sighting store over
// HTTP using Echo.
package api

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wildscout/wildscout-go/internal/conf"
	"github.com/wildscout/wildscout-go/internal/datastore"
	"github.com/wildscout/wildscout-go/internal/errors"
	"github.com/wildscout/wildscout-go/internal/logging"
	"github.com/wildscout/wildscout-go/internal/observability"
	"github.com/wildscout/wildscout-go/internal/search"
)

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings
	Search   *search.Service

	metrics        *observability.Metrics
	apiLogger      *slog.Logger
	apiLevelVar    *slog.LevelVar
	apiLoggerClose func() error
	startTime      time.Time
}

// New creates the API controller and registers all routes on e.
// ds may be nil when no persistence backend is configured; the
// saved-sighting endpoints then answer 503.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, svc *search.Service, metrics *observability.Metrics) *Controller {
	c := &Controller{
		Echo:        e,
		DS:          ds,
		Settings:    settings,
		Search:      svc,
		metrics:     metrics,
		apiLevelVar: new(slog.LevelVar),
		startTime:   time.Now(),
	}

	logFilePath := filepath.Join("logs", "api.log")
	c.apiLevelVar.Set(slog.LevelDebug)
	var err error
	c.apiLogger, c.apiLoggerClose, err = logging.NewFileLogger(logFilePath, "api", c.apiLevelVar)
	if err != nil {
		logging.ForService("api").Warn("Failed to initialize API file logger, file logging disabled",
			"path", logFilePath, "error", err)
		c.apiLogger = logging.NewDiscardLogger("api", c.apiLevelVar)
		c.apiLoggerClose = func() error { return nil }
	}

	c.initRoutes()
	return c
}

// Shutdown releases controller resources.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			logging.ForService("api").Warn("Failed to close API log file", "error", err)
		}
	}
}

func (c *Controller) initRoutes() {
	c.Group = c.Echo.Group("/api/v1")

	c.Group.GET("/health", c.HealthCheck)
	c.Group.POST("/search", c.HandleSearch)
	c.Group.GET("/searches/recent", c.RecentSearches)

	c.Group.POST("/sightings", c.SaveSighting)
	c.Group.GET("/sightings", c.ListSavedSightings)
	c.Group.GET("/sightings/:id", c.GetSavedSighting)
	c.Group.DELETE("/sightings/:id", c.DeleteSavedSighting)

	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
	}
}

// ErrorResponse is the JSON body returned for all handler errors.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// HandleError logs err and writes a JSON error response with the given
// status code.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	resp := &ErrorResponse{
		Error:         err.Error(),
		Message:       message,
		Code:          code,
		CorrelationID: uuid.New().String()[:8],
	}

	c.apiLogger.Error("API error",
		"correlation_id", resp.CorrelationID,
		"message", message,
		"error", err.Error(),
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	)
	return ctx.JSON(code, resp)
}

// errorStatus maps pipeline error categories to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, search.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.HasCategory(err, errors.CategoryValidation):
		return http.StatusBadRequest
	case errors.HasCategory(err, errors.CategoryNotFound):
		return http.StatusNotFound
	case errors.HasCategory(err, errors.CategoryGeocoding):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HealthCheck returns liveness information.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        c.Settings.Version,
		"uptime_seconds": int(time.Since(c.startTime).Seconds()),
	})
}
