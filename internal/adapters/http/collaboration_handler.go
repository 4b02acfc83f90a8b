package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/focusflow/core/internal/application/services"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

// CollaborationHandler handles sharing, invitation and audit requests
type CollaborationHandler struct {
	collabService *services.CollaborationService
	logger        *logger.Logger
}

// NewCollaborationHandler creates a new collaboration handler
func NewCollaborationHandler(collabService *services.CollaborationService, logger *logger.Logger) *CollaborationHandler {
	return &CollaborationHandler{
		collabService: collabService,
		logger:        logger,
	}
}

// ShareBoard invites a user to a board by email
func (h *CollaborationHandler) ShareBoard(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.ShareBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	inv, err := h.collabService.Share(c.Request().Context(), boardID, userID, req)
	if err != nil {
		h.logger.Error("Share board failed", "error", err, "board_id", boardID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, inv)
}

// ListMyInvitations returns the caller's pending invitations
func (h *CollaborationHandler) ListMyInvitations(c echo.Context) error {
	userID := getUserIDFromContext(c)

	invitations, err := h.collabService.Invitations(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("List invitations failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, invitations)
}

// ListBoardInvitations lists a board's invitations
func (h *CollaborationHandler) ListBoardInvitations(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	invitations, err := h.collabService.BoardInvitations(c.Request().Context(), boardID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, invitations)
}

// AcceptInvitation joins the caller to the invited board
func (h *CollaborationHandler) AcceptInvitation(c echo.Context) error {
	userID := getUserIDFromContext(c)
	invitationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	collab, err := h.collabService.Accept(c.Request().Context(), invitationID, userID)
	if err != nil {
		h.logger.Error("Accept invitation failed", "error", err, "invitation_id", invitationID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, collab)
}

// DeclineInvitation declines an invitation
func (h *CollaborationHandler) DeclineInvitation(c echo.Context) error {
	userID := getUserIDFromContext(c)
	invitationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.collabService.Decline(c.Request().Context(), invitationID, userID); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Invitation declined"})
}

// ListCollaborators lists a board's members
func (h *CollaborationHandler) ListCollaborators(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	collaborators, err := h.collabService.Collaborators(c.Request().Context(), boardID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, collaborators)
}

// ChangeCollaboratorRole updates a member's role
func (h *CollaborationHandler) ChangeCollaboratorRole(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "userId")
	if err != nil {
		return err
	}

	var req ports.ChangeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.collabService.ChangeRole(c.Request().Context(), boardID, userID, targetID, req); err != nil {
		h.logger.Error("Change role failed", "error", err, "board_id", boardID, "target_id", targetID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Role updated"})
}

// RemoveCollaborator takes a member off a board
func (h *CollaborationHandler) RemoveCollaborator(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "userId")
	if err != nil {
		return err
	}

	if err := h.collabService.Remove(c.Request().Context(), boardID, userID, targetID); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Collaborator removed"})
}

// GetAuditLog returns a board's collaboration history
func (h *CollaborationHandler) GetAuditLog(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	limit := 50
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		limit = parsed
	}

	entries, err := h.collabService.AuditLog(c.Request().Context(), boardID, userID, limit)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, entries)
}
