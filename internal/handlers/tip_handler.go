package handlers

import (
	"net/http"

	"github.com/atlasroam/atlas/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// TipHandler serves the daily travel tip
type TipHandler struct {
	tipRepository repositories.TipRepository
}

// NewTipHandler creates a new TipHandler
func NewTipHandler(tipRepo repositories.TipRepository) *TipHandler {
	return &TipHandler{tipRepository: tipRepo}
}

// RegisterTipRoutes registers tip-related routes
func (h *TipHandler) RegisterTipRoutes(g *echo.Group) {
	g.GET("/tips/random", h.GetRandomTip)
}

// GetRandomTip returns one tip sampled at random
func (h *TipHandler) GetRandomTip(c echo.Context) error {
	tip, err := h.tipRepository.GetRandomTip(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tip)
}
