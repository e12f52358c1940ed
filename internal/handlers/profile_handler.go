package handlers

import (
	"net/http"

	"github.com/atlasroam/atlas/backend/internal/models"
	"github.com/atlasroam/atlas/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// ProfileHandler handles profile self-service updates
type ProfileHandler struct {
	userRepository repositories.UserRepository
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(userRepo repositories.UserRepository) *ProfileHandler {
	return &ProfileHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.PATCH("/profile/update", h.UpdateProfile)
	g.PATCH("/profile/account/update", h.UpdateAccount)
}

// UpdateProfile updates the caller's profile fields. Counters are not
// touchable here; only the workflow engine and the location handlers mutate
// them.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), currentUserID(c))
	if err != nil {
		return httpError(err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Avatar != "" {
		user.Profile.Avatar = req.Avatar
	}
	if req.Bio != "" {
		user.Profile.Bio = req.Bio
	}
	if req.Location != "" {
		user.Profile.Location = req.Location
	}
	if req.Interests != "" {
		user.Profile.Interests = req.Interests
	}

	if err := h.userRepository.UpdateUser(c.Request().Context(), user); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully"})
}

// UpdateAccount changes the caller's password after verifying the current one
func (h *ProfileHandler) UpdateAccount(c echo.Context) error {
	var req models.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), currentUserID(c))
	if err != nil {
		return httpError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	if err := h.userRepository.UpdatePassword(c.Request().Context(), user.ID, string(hashedPassword)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Account updated successfully"})
}
