package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/focusflow/core/internal/application/services"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

// RoutineHandler handles routine and anchor requests
type RoutineHandler struct {
	routineService *services.RoutineService
	logger         *logger.Logger
}

// NewRoutineHandler creates a new routine handler
func NewRoutineHandler(routineService *services.RoutineService, logger *logger.Logger) *RoutineHandler {
	return &RoutineHandler{
		routineService: routineService,
		logger:         logger,
	}
}

// CreateRoutine handles routine creation
func (h *RoutineHandler) CreateRoutine(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.CreateRoutineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	routine, err := h.routineService.Create(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Create routine failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, routine)
}

// GetRoutine returns a routine with its steps
func (h *RoutineHandler) GetRoutine(c echo.Context) error {
	userID := getUserIDFromContext(c)
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	routine, err := h.routineService.Get(c.Request().Context(), userID, routineID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, routine)
}

// UpdateRoutine applies partial routine updates
func (h *RoutineHandler) UpdateRoutine(c echo.Context) error {
	userID := getUserIDFromContext(c)
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateRoutineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	routine, err := h.routineService.Update(c.Request().Context(), userID, routineID, req)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, routine)
}

// DeleteRoutine soft-deletes a routine
func (h *RoutineHandler) DeleteRoutine(c echo.Context) error {
	userID := getUserIDFromContext(c)
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.routineService.Delete(c.Request().Context(), userID, routineID); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Routine deleted"})
}

// ListRoutines returns the caller's routines
func (h *RoutineHandler) ListRoutines(c echo.Context) error {
	userID := getUserIDFromContext(c)

	routines, err := h.routineService.List(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("List routines failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve routines")
	}

	return c.JSON(http.StatusOK, routines)
}

// AddStep appends a step to a routine
func (h *RoutineHandler) AddStep(c echo.Context) error {
	userID := getUserIDFromContext(c)
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.RoutineStepRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	routine, err := h.routineService.AddStep(c.Request().Context(), userID, routineID, req)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, routine)
}

// UpdateStep updates a routine step
func (h *RoutineHandler) UpdateStep(c echo.Context) error {
	userID := getUserIDFromContext(c)
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	stepID, err := parseIDParam(c, "stepId")
	if err != nil {
		return err
	}

	var req ports.RoutineStepRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	routine, err := h.routineService.UpdateStep(c.Request().Context(), userID, routineID, stepID, req)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, routine)
}

// DeleteStep removes a routine step
func (h *RoutineHandler) DeleteStep(c echo.Context) error {
	userID := getUserIDFromContext(c)
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	stepID, err := parseIDParam(c, "stepId")
	if err != nil {
		return err
	}

	routine, err := h.routineService.DeleteStep(c.Request().Context(), userID, routineID, stepID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, routine)
}

// CreateAnchor saves a reusable step template
func (h *RoutineHandler) CreateAnchor(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.CreateAnchorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	anchor, err := h.routineService.CreateAnchor(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Create anchor failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, anchor)
}

// ListAnchors returns the caller's anchors
func (h *RoutineHandler) ListAnchors(c echo.Context) error {
	userID := getUserIDFromContext(c)

	anchors, err := h.routineService.ListAnchors(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("List anchors failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve anchors")
	}

	return c.JSON(http.StatusOK, anchors)
}

// DeleteAnchor removes an anchor
func (h *RoutineHandler) DeleteAnchor(c echo.Context) error {
	userID := getUserIDFromContext(c)
	anchorID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.routineService.DeleteAnchor(c.Request().Context(), userID, anchorID); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Anchor deleted"})
}

// ApplyAnchor copies an anchor's steps onto a routine
func (h *RoutineHandler) ApplyAnchor(c echo.Context) error {
	userID := getUserIDFromContext(c)
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	anchorID, err := parseIDParam(c, "anchorId")
	if err != nil {
		return err
	}

	routine, err := h.routineService.ApplyAnchor(c.Request().Context(), userID, routineID, anchorID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, routine)
}

// GetStats summarizes a linked board's execution history
func (h *RoutineHandler) GetStats(c echo.Context) error {
	userID := getUserIDFromContext(c)
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	boardID, err := parseIDParam(c, "boardId")
	if err != nil {
		return err
	}

	windowDays := 30
	if daysStr := c.QueryParam("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid days parameter")
		}
		windowDays = days
	}

	stats, err := h.routineService.Stats(c.Request().Context(), userID, routineID, boardID, windowDays)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, stats)
}
