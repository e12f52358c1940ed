package handlers

import (
	"net/http"

	"github.com/atlasroam/atlas/backend/internal/models"
	"github.com/atlasroam/atlas/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// JournalHandler handles journal CRUD and the connection-gated social
// interactions on journals
type JournalHandler struct {
	journalService *services.JournalService
	socialService  *services.SocialService
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journalService *services.JournalService, socialService *services.SocialService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		socialService:  socialService,
	}
}

// RegisterJournalRoutes registers journal-related routes
func (h *JournalHandler) RegisterJournalRoutes(g *echo.Group) {
	g.GET("/journals", h.ListJournals)
	g.POST("/journals", h.CreateJournal)
	g.GET("/journals/:id", h.GetJournal)
	g.POST("/journals/:id/like", h.ToggleLike)
	g.POST("/journals/:id/comment", h.AddComment)
	g.GET("/journals/:id/comments", h.ListComments)
}

// ListJournals returns the journals visible to the caller: their own plus
// those shared with them at creation time
func (h *JournalHandler) ListJournals(c echo.Context) error {
	journals, err := h.journalService.ListVisible(c.Request().Context(), currentUserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, journals)
}

// CreateJournal creates a journal, snapshotting its audience from the
// caller's currently-accepted connections
func (h *JournalHandler) CreateJournal(c echo.Context) error {
	var req models.CreateJournalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	journal, err := h.journalService.Create(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, journal)
}

// GetJournal returns a single journal the caller may see
func (h *JournalHandler) GetJournal(c echo.Context) error {
	journalID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	journal, err := h.journalService.Get(c.Request().Context(), currentUserID(c), journalID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, journal)
}

// ToggleLike flips the caller's like on a journal
func (h *JournalHandler) ToggleLike(c echo.Context) error {
	journalID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	result, err := h.socialService.ToggleLike(c.Request().Context(), currentUserID(c), journalID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// AddComment appends a comment to a journal
func (h *JournalHandler) AddComment(c echo.Context) error {
	journalID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.socialService.AddComment(c.Request().Context(), currentUserID(c), journalID, req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListComments returns a journal's comments, newest first
func (h *JournalHandler) ListComments(c echo.Context) error {
	journalID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.socialService.ListComments(c.Request().Context(), journalID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comments)
}
