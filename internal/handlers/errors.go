package handlers

import (
	"errors"
	"net/http"

	"github.com/atlasroam/atlas/backend/internal/apperrors"
	"github.com/atlasroam/atlas/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID returns the authenticated user's id placed in the context by
// the JWT middleware.
func currentUserID(c echo.Context) primitive.ObjectID {
	id, _ := c.Get(middleware.ContextUserIDKey).(primitive.ObjectID)
	return id
}

// objectIDParam parses a hex ObjectID path parameter.
func objectIDParam(c echo.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// httpError maps the service error taxonomy to HTTP responses. A duplicate
// connection reports the existing status alongside the 400, so the client
// can render the standing relationship.
func httpError(err error) error {
	var exists *apperrors.ConnectionExistsError
	switch {
	case errors.As(err, &exists):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"error":  "Connection already exists",
			"status": exists.Status,
		})
	case errors.Is(err, apperrors.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
