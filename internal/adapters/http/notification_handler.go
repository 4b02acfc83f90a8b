package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/focusflow/core/internal/application/services"
	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
	"github.com/focusflow/core/internal/realtime"
)

// NotificationHandler handles notification and preference requests plus
// the realtime stream endpoint
type NotificationHandler struct {
	notifService *services.NotificationService
	hub          *realtime.Hub
	upgrader     websocket.Upgrader
	logger       *logger.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifService *services.NotificationService, hub *realtime.Hub, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifService: notifService,
		hub:          hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks happen at the CORS layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// CreateNotification schedules a notification
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	n, err := h.notifService.Schedule(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Schedule notification failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, n)
}

// ListNotifications returns the caller's notifications
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID := getUserIDFromContext(c)

	filter := ports.NotificationFilter{Limit: 50}
	filter.UnreadOnly = c.QueryParam("unread") == "true"

	if typeParam := c.QueryParam("type"); typeParam != "" {
		nt := entities.NotificationType(typeParam)
		if !nt.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid type parameter")
		}
		filter.Type = &nt
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		filter.Limit = limit
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid offset parameter")
		}
		filter.Offset = offset
	}

	notifications, total, err := h.notifService.List(c.Request().Context(), userID, filter)
	if err != nil {
		h.logger.Error("List notifications failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve notifications")
	}

	response := PaginatedResponse[*entities.Notification]{
		Data:   notifications,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	return c.JSON(http.StatusOK, response)
}

// MarkRead marks one notification as read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID := getUserIDFromContext(c)
	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifService.MarkRead(c.Request().Context(), userID, notificationID); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Notification marked read"})
}

// MarkAllRead marks all delivered notifications as read
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID := getUserIDFromContext(c)

	updated, err := h.notifService.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Mark all read failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notifications read")
	}

	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

// Dismiss hides a notification
func (h *NotificationHandler) Dismiss(c echo.Context) error {
	userID := getUserIDFromContext(c)
	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifService.Dismiss(c.Request().Context(), userID, notificationID); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Notification dismissed"})
}

// GetPreferences returns the caller's delivery preferences
func (h *NotificationHandler) GetPreferences(c echo.Context) error {
	userID := getUserIDFromContext(c)

	prefs, err := h.notifService.GetPreferences(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Get preferences failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences applies partial preference updates
func (h *NotificationHandler) UpdatePreferences(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	prefs, err := h.notifService.UpdatePreferences(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Update preferences failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, prefs)
}

// Stream upgrades the connection to a websocket and pushes notification
// events to the caller as they are delivered
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID := getUserIDFromContext(c)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("Websocket upgrade failed", "error", err, "user_id", userID)
		return err
	}

	h.logger.Info("Realtime client connected", "user_id", userID)
	h.hub.Attach(userID, conn)
	return nil
}
