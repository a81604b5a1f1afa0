package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wildscout/wildscout-go/internal/datastore"
	"github.com/wildscout/wildscout-go/internal/search"
)

// callerIdentity derives the rate-limit identity and auth state for a
// request. Authentication itself is delegated to the deployment's reverse
// proxy; a request that arrives with an Authorization header is treated as
// an authenticated caller and bypasses the free-tier limit.
func callerIdentity(ctx echo.Context) search.AuthState {
	callerID := ctx.Request().Header.Get("X-Caller-ID")
	if callerID == "" {
		callerID = ctx.RealIP()
	}
	return search.AuthState{
		IsAuthenticated: ctx.Request().Header.Get(echo.HeaderAuthorization) != "",
		CallerID:        callerID,
	}
}

// HandleSearch runs the search pipeline for the posted query.
func (c *Controller) HandleSearch(ctx echo.Context) error {
	var q search.Query
	if err := ctx.Bind(&q); err != nil {
		return c.HandleError(ctx, err, "Invalid search request body", http.StatusBadRequest)
	}

	auth := callerIdentity(ctx)
	result, err := c.Search.Search(ctx.Request().Context(), q, auth)
	if err != nil {
		return c.HandleError(ctx, err, "Search failed", errorStatus(err))
	}

	c.logSearch(ctx, &q, auth, result)
	return ctx.JSON(http.StatusOK, result)
}

// logSearch records the executed search when a datastore is configured.
func (c *Controller) logSearch(ctx echo.Context, q *search.Query, auth search.AuthState, result *search.Result) {
	if c.DS == nil {
		return
	}
	status := "success"
	if result.NoMatch {
		status = "no_match"
	}
	entry := &datastore.SearchLog{
		CallerID:     auth.CallerID,
		LocationText: q.LocationText,
		Latitude:     result.Center.Lat,
		Longitude:    result.Center.Lon,
		RadiusKm:     result.RadiusKm,
		ResultCount:  len(result.Sightings),
		Status:       status,
	}
	if err := c.DS.SaveSearchLog(entry); err != nil {
		c.apiLogger.Warn("Failed to persist search log",
			"caller_id", auth.CallerID, "error", err)
	}
}

// RecentSearches returns the caller's recent search history.
func (c *Controller) RecentSearches(ctx echo.Context) error {
	if c.DS == nil {
		return c.HandleError(ctx, errNoDatastore, "Persistence is not configured", http.StatusServiceUnavailable)
	}

	limit := 20
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.HandleError(ctx, errInvalidLimit, "Invalid limit parameter", http.StatusBadRequest)
		}
		limit = parsed
	}

	auth := callerIdentity(ctx)
	logs, err := c.DS.RecentSearches(auth.CallerID, limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load search history", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, logs)
}
