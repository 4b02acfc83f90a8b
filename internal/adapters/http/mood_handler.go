package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/focusflow/core/internal/application/services"
	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

// MoodHandler handles mood log requests
type MoodHandler struct {
	moodService *services.MoodService
	logger      *logger.Logger
}

// NewMoodHandler creates a new mood handler
func NewMoodHandler(moodService *services.MoodService, logger *logger.Logger) *MoodHandler {
	return &MoodHandler{
		moodService: moodService,
		logger:      logger,
	}
}

// RecordEntry appends a mood entry
func (h *MoodHandler) RecordEntry(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.CreateMoodEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.moodService.Record(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Record mood entry failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, entry)
}

// ListEntries returns mood entries, optionally within a date window
func (h *MoodHandler) ListEntries(c echo.Context) error {
	userID := getUserIDFromContext(c)

	filter := ports.MoodFilter{Limit: 50}

	if fromStr := c.QueryParam("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid from parameter")
		}
		filter.From = &from
	}
	if toStr := c.QueryParam("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid to parameter")
		}
		filter.To = &to
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

	entries, total, err := h.moodService.List(c.Request().Context(), userID, filter)
	if err != nil {
		h.logger.Error("List mood entries failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve mood entries")
	}

	response := PaginatedResponse[*entities.MoodEntry]{
		Data:   entries,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	return c.JSON(http.StatusOK, response)
}

// GetSummary aggregates the last N days of entries (default 7)
func (h *MoodHandler) GetSummary(c echo.Context) error {
	userID := getUserIDFromContext(c)

	windowDays := 7
	if daysStr := c.QueryParam("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid days parameter")
		}
		windowDays = days
	}

	summary, err := h.moodService.Summary(c.Request().Context(), userID, windowDays)
	if err != nil {
		h.logger.Error("Mood summary failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build mood summary")
	}

	return c.JSON(http.StatusOK, summary)
}
