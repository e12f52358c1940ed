package handlers

import (
	"net/http"

	"github.com/atlasroam/atlas/backend/internal/models"
	"github.com/atlasroam/atlas/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LocationHandler handles map-pin CRUD and keeps the owner's locationsCount
// counter in step
type LocationHandler struct {
	locationRepository repositories.LocationRepository
	userRepository     repositories.UserRepository
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locationRepo repositories.LocationRepository, userRepo repositories.UserRepository) *LocationHandler {
	return &LocationHandler{
		locationRepository: locationRepo,
		userRepository:     userRepo,
	}
}

// RegisterLocationRoutes registers location-related routes
func (h *LocationHandler) RegisterLocationRoutes(g *echo.Group) {
	g.GET("/locations", h.ListLocations)
	g.POST("/locations", h.CreateLocation)
	g.PUT("/locations/:id", h.UpdateLocation)
	g.DELETE("/locations/:id", h.DeleteLocation)
}

// ListLocations returns the caller's map pins
func (h *LocationHandler) ListLocations(c echo.Context) error {
	locations, err := h.locationRepository.ListLocationsByUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, locations)
}

// CreateLocation pins a new location for the caller
func (h *LocationHandler) CreateLocation(c echo.Context) error {
	var req models.CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := currentUserID(c)
	location := &models.Location{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Coordinates: *req.Coordinates,
		VisitDate:   req.VisitDate,
		Color:       req.Color,
	}
	if err := h.locationRepository.CreateLocation(c.Request().Context(), location); err != nil {
		return httpError(err)
	}

	if err := h.userRepository.AdjustLocationsCount(c.Request().Context(), userID, 1); err != nil {
		c.Logger().Errorf("failed to bump locationsCount for %s: %v", userID.Hex(), err)
	}

	return c.JSON(http.StatusCreated, location)
}

// UpdateLocation replaces the mutable fields of a pin owned by the caller
func (h *LocationHandler) UpdateLocation(c echo.Context) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	location := &models.Location{
		ID:          id,
		UserID:      currentUserID(c),
		Name:        req.Name,
		Description: req.Description,
		Coordinates: *req.Coordinates,
		VisitDate:   req.VisitDate,
		Color:       req.Color,
	}
	if err := h.locationRepository.UpdateLocation(c.Request().Context(), location); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, location)
}

// DeleteLocation removes a pin owned by the caller
func (h *LocationHandler) DeleteLocation(c echo.Context) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}

	userID := currentUserID(c)
	if err := h.locationRepository.DeleteLocation(c.Request().Context(), id, userID); err != nil {
		return httpError(err)
	}

	if err := h.userRepository.AdjustLocationsCount(c.Request().Context(), userID, -1); err != nil {
		c.Logger().Errorf("failed to drop locationsCount for %s: %v", userID.Hex(), err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
