package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/focusflow/core/internal/application/services"
	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles account creation
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Registration failed", "error", err, "email", req.Email)
		if strings.Contains(err.Error(), "already exists") {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Login failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(http.StatusOK, response)
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	response, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("Token refresh failed", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	return c.JSON(http.StatusOK, response)
}

// Logout handles user logout
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.authService.Logout(c.Request().Context(), userID); err != nil {
		h.logger.Error("Logout failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// PurgeExpiredTokens removes expired refresh tokens (admin only)
func (h *AuthHandler) PurgeExpiredTokens(c echo.Context) error {
	deleted, err := h.authService.PurgeExpiredTokens(c.Request().Context())
	if err != nil {
		h.logger.Error("Token purge failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to purge tokens")
	}

	return c.JSON(http.StatusOK, map[string]int64{"deleted": deleted})
}

// UserHandler handles profile and accessibility settings requests
type UserHandler struct {
	userService *services.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetCurrentUser returns the caller's profile
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	userID := getUserIDFromContext(c)

	user, err := h.userService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Get current user failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateCurrentUser updates the caller's profile
func (h *UserHandler) UpdateCurrentUser(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Update user failed", "error", err, "user_id", userID)
		if strings.Contains(err.Error(), "already taken") {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// DeactivateCurrentUser soft-deletes the caller's account
func (h *UserHandler) DeactivateCurrentUser(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.userService.Deactivate(c.Request().Context(), userID); err != nil {
		h.logger.Error("Deactivate user failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Account deactivated"})
}

// GetSettings returns the caller's accessibility settings
func (h *UserHandler) GetSettings(c echo.Context) error {
	userID := getUserIDFromContext(c)

	settings, err := h.userService.GetSettings(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Get settings failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies partial accessibility settings updates
func (h *UserHandler) UpdateSettings(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	settings, err := h.userService.UpdateSettings(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Update settings failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, settings)
}

// Utility functions and helper types

func getUserIDFromContext(c echo.Context) uuid.UUID {
	user := c.Get("user")
	if user == nil {
		return uuid.Nil
	}

	if userStr, ok := user.(string); ok {
		userID, _ := uuid.Parse(userStr)
		return userID
	}

	return uuid.Nil
}

func parseIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// serviceError maps domain sentinel errors onto HTTP status codes.
func serviceError(err error) error {
	switch {
	case errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrBoardNotFound),
		errors.Is(err, entities.ErrStepNotFound),
		errors.Is(err, entities.ErrRoutineNotFound),
		errors.Is(err, entities.ErrAnchorNotFound),
		errors.Is(err, entities.ErrExecutionNotFound),
		errors.Is(err, entities.ErrNotificationNotFound),
		errors.Is(err, entities.ErrInvitationNotFound),
		errors.Is(err, entities.ErrCollaboratorNotFound),
		errors.Is(err, entities.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, entities.ErrAlreadyCollaborator),
		errors.Is(err, entities.ErrInvitationResolved),
		errors.Is(err, entities.ErrExecutionFinished),
		errors.Is(err, entities.ErrExecutionPaused):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrInvitationExpired):
		return echo.NewHTTPError(http.StatusGone, err.Error())
	case errors.Is(err, entities.ErrInvalidStatus),
		errors.Is(err, entities.ErrInvalidQuadrant),
		errors.Is(err, entities.ErrInvalidTimeRange),
		errors.Is(err, entities.ErrInvalidRating),
		errors.Is(err, entities.ErrExecutionNotPaused),
		errors.Is(err, entities.ErrNoStepsToRun):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// Request/Response types
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type PaginatedResponse[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
