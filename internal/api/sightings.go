package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wildscout/wildscout-go/internal/datastore"
	"github.com/wildscout/wildscout-go/internal/errors"
)

var (
	errNoDatastore = errors.Newf("no persistence backend is configured").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	errInvalidLimit = errors.Newf("limit must be a positive integer").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
)

// saveSightingRequest is the body accepted by SaveSighting. It mirrors the
// classified sighting shape the search endpoint returns.
type saveSightingRequest struct {
	CommonName     string  `json:"common_name"`
	ScientificName string  `json:"scientific_name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Description    string  `json:"description"`
	ImageURL       string  `json:"image_url"`
	Source         string  `json:"source"`
	IsDangerous    bool    `json:"is_dangerous"`
	Rarity         string  `json:"rarity"`
}

// SaveSighting stores a sighting for the caller.
func (c *Controller) SaveSighting(ctx echo.Context) error {
	if c.DS == nil {
		return c.HandleError(ctx, errNoDatastore, "Persistence is not configured", http.StatusServiceUnavailable)
	}

	var req saveSightingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid sighting body", http.StatusBadRequest)
	}
	if req.CommonName == "" {
		err := errors.Newf("common_name is required").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
		return c.HandleError(ctx, err, "Invalid sighting body", http.StatusBadRequest)
	}

	auth := callerIdentity(ctx)
	saved := &datastore.SavedSighting{
		CallerID:       auth.CallerID,
		CommonName:     req.CommonName,
		ScientificName: req.ScientificName,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		Source:         req.Source,
		IsDangerous:    req.IsDangerous,
		Rarity:         req.Rarity,
	}
	if err := c.DS.SaveSighting(saved); err != nil {
		return c.HandleError(ctx, err, "Failed to save sighting", http.StatusInternalServerError)
	}

	c.apiLogger.Info("sighting saved",
		"id", saved.ID, "caller_id", auth.CallerID, "common_name", saved.CommonName)
	return ctx.JSON(http.StatusCreated, saved)
}

// ListSavedSightings returns the caller's saved sightings, newest first.
func (c *Controller) ListSavedSightings(ctx echo.Context) error {
	if c.DS == nil {
		return c.HandleError(ctx, errNoDatastore, "Persistence is not configured", http.StatusServiceUnavailable)
	}

	auth := callerIdentity(ctx)
	sightings, err := c.DS.GetSavedSightings(auth.CallerID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load saved sightings", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, sightings)
}

// GetSavedSighting returns one of the caller's saved sightings by ID.
func (c *Controller) GetSavedSighting(ctx echo.Context) error {
	if c.DS == nil {
		return c.HandleError(ctx, errNoDatastore, "Persistence is not configured", http.StatusServiceUnavailable)
	}

	id, err := parseSightingID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid sighting ID", http.StatusBadRequest)
	}

	auth := callerIdentity(ctx)
	saved, err := c.DS.GetSighting(id, auth.CallerID)
	if err != nil {
		return c.HandleError(ctx, err, "Sighting not found", errorStatus(err))
	}
	return ctx.JSON(http.StatusOK, saved)
}

// DeleteSavedSighting removes one of the caller's saved sightings by ID.
func (c *Controller) DeleteSavedSighting(ctx echo.Context) error {
	if c.DS == nil {
		return c.HandleError(ctx, errNoDatastore, "Persistence is not configured", http.StatusServiceUnavailable)
	}

	id, err := parseSightingID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid sighting ID", http.StatusBadRequest)
	}

	auth := callerIdentity(ctx)
	if err := c.DS.DeleteSighting(id, auth.CallerID); err != nil {
		return c.HandleError(ctx, err, "Failed to delete sighting", errorStatus(err))
	}
	return ctx.NoContent(http.StatusNoContent)
}

func parseSightingID(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return 0, errors.New(err).
			Component("api").
			Category(errors.CategoryValidation).
			Context("param", "id").
			Build()
	}
	return uint(id), nil
}
