package handlers

import (
	"net/http"

	"github.com/atlasroam/atlas/backend/internal/models"
	"github.com/atlasroam/atlas/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConnectionHandler handles HTTP requests for the connection workflow,
// discovery, and the connection-derived visibility check
type ConnectionHandler struct {
	connectionService *services.ConnectionService
	suggestionService *services.SuggestionService
	socialService     *services.SocialService
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(
	connService *services.ConnectionService,
	suggestionService *services.SuggestionService,
	socialService *services.SocialService,
) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connService,
		suggestionService: suggestionService,
		socialService:     socialService,
	}
}

// RegisterConnectionRoutes registers connection-related routes
func (h *ConnectionHandler) RegisterConnectionRoutes(g *echo.Group) {
	g.POST("/connections", h.RequestConnection)
	g.PUT("/connections/respond", h.RespondToRequest)
	g.DELETE("/connections/:id", h.RemoveConnection)
	g.GET("/connections/all", h.ListAll)
	g.GET("/connections/search", h.Search)
	g.GET("/connections/connected", h.ListConnected)
	g.GET("/connections/pending", h.ListPending)
	g.GET("/connections/suggestions", h.Suggestions)
	g.GET("/connections/check-connection/:userId", h.CheckConnection)
	g.POST("/connections/recount", h.RecountCounters)
}

// RequestConnection sends a connection request to another user
func (h *ConnectionHandler) RequestConnection(c echo.Context) error {
	var req models.CreateConnectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid recipient ID")
	}

	if err := h.connectionService.Request(c.Request().Context(), currentUserID(c), recipientID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Connection request sent"})
}

// RespondToRequest accepts or rejects a pending connection request
func (h *ConnectionHandler) RespondToRequest(c echo.Context) error {
	var req models.RespondConnectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	requestID, err := primitive.ObjectIDFromHex(req.RequestID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	if err := h.connectionService.Respond(c.Request().Context(), requestID, req.Action, currentUserID(c)); err != nil {
		return httpError(err)
	}
	if req.Action == string(models.ConnectionAccepted) {
		return c.JSON(http.StatusOK, echo.Map{"message": "Connection accepted"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Connection rejected"})
}

// RemoveConnection removes a connection the caller is a party to
func (h *ConnectionHandler) RemoveConnection(c echo.Context) error {
	connectionID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.connectionService.Remove(c.Request().Context(), connectionID, currentUserID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Connection removed successfully"})
}

// ListAll returns other users annotated with the caller's relationship to each
func (h *ConnectionHandler) ListAll(c echo.Context) error {
	users, err := h.connectionService.ListAll(c.Request().Context(), currentUserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// Search returns users matching the query, annotated with connection status.
// searchType may be "location" or "interest" to narrow the match.
func (h *ConnectionHandler) Search(c echo.Context) error {
	query := c.QueryParam("query")
	searchType := c.QueryParam("searchType")
	users, err := h.connectionService.Search(c.Request().Context(), currentUserID(c), query, searchType)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// ListConnected returns the caller's accepted roammates
func (h *ConnectionHandler) ListConnected(c echo.Context) error {
	users, err := h.connectionService.ListConnected(c.Request().Context(), currentUserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// ListPending returns the pending requests addressed to the caller
func (h *ConnectionHandler) ListPending(c echo.Context) error {
	pending, err := h.connectionService.ListPending(c.Request().Context(), currentUserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pending)
}

// Suggestions returns non-connected users ranked by relevance
func (h *ConnectionHandler) Suggestions(c echo.Context) error {
	suggestions, err := h.suggestionService.Suggestions(c.Request().Context(), currentUserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, suggestions)
}

// CheckConnection reports whether the caller is connected to another user
func (h *ConnectionHandler) CheckConnection(c echo.Context) error {
	otherID, err := objectIDParam(c, "userId")
	if err != nil {
		return err
	}
	isConnected, err := h.socialService.IsConnected(c.Request().Context(), currentUserID(c), otherID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"isConnected": isConnected})
}

// RecountCounters recomputes the caller's follower/following counters from
// the connection store, the reconciliation path for counter drift
func (h *ConnectionHandler) RecountCounters(c echo.Context) error {
	if err := h.connectionService.RecountCounters(c.Request().Context(), currentUserID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Counters reconciled"})
}
