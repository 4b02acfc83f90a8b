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

// TaskHandler handles priority-matrix task requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.Create(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Create task failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c echo.Context) error {
	userID := getUserIDFromContext(c)
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	task, err := h.taskService.Get(c.Request().Context(), userID, taskID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask applies partial updates to a task
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	userID := getUserIDFromContext(c)
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.Update(c.Request().Context(), userID, taskID, req)
	if err != nil {
		h.logger.Error("Update task failed", "error", err, "task_id", taskID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// CompleteTask marks a task done
func (h *TaskHandler) CompleteTask(c echo.Context) error {
	userID := getUserIDFromContext(c)
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	task, err := h.taskService.Complete(c.Request().Context(), userID, taskID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// MoveTask relocates a task across the matrix
func (h *TaskHandler) MoveTask(c echo.Context) error {
	userID := getUserIDFromContext(c)
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.MoveTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.Move(c.Request().Context(), userID, taskID, req)
	if err != nil {
		h.logger.Error("Move task failed", "error", err, "task_id", taskID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask soft-deletes a task
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	userID := getUserIDFromContext(c)
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.taskService.Delete(c.Request().Context(), userID, taskID); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted"})
}

// ListTasks returns tasks matching the query filters
func (h *TaskHandler) ListTasks(c echo.Context) error {
	userID := getUserIDFromContext(c)

	filter := ports.TaskFilter{Limit: 50}

	if status := c.QueryParam("status"); status != "" {
		ts := entities.TaskStatus(status)
		if !ts.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status parameter")
		}
		filter.Status = &ts
	}
	if quadrant := c.QueryParam("quadrant"); quadrant != "" {
		q := entities.Quadrant(quadrant)
		if !q.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid quadrant parameter")
		}
		filter.Quadrant = &q
	}
	if energy := c.QueryParam("energy"); energy != "" {
		e := entities.EffortLevel(energy)
		if !e.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid energy parameter")
		}
		filter.Energy = &e
	}
	if search := c.QueryParam("search"); search != "" {
		filter.Search = search
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

	tasks, total, err := h.taskService.List(c.Request().Context(), userID, filter)
	if err != nil {
		h.logger.Error("List tasks failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve tasks")
	}

	response := PaginatedResponse[*entities.Task]{
		Data:   tasks,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	return c.JSON(http.StatusOK, response)
}

// GetMatrix returns the per-quadrant summary
func (h *TaskHandler) GetMatrix(c echo.Context) error {
	userID := getUserIDFromContext(c)

	summary, err := h.taskService.Matrix(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Matrix summary failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build matrix summary")
	}

	return c.JSON(http.StatusOK, summary)
}

// GetDueSoon returns open tasks due within the window (default 24h)
func (h *TaskHandler) GetDueSoon(c echo.Context) error {
	userID := getUserIDFromContext(c)

	within := 24 * time.Hour
	if hoursStr := c.QueryParam("hours"); hoursStr != "" {
		hours, err := strconv.Atoi(hoursStr)
		if err != nil || hours < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid hours parameter")
		}
		within = time.Duration(hours) * time.Hour
	}

	tasks, err := h.taskService.DueSoon(c.Request().Context(), userID, within)
	if err != nil {
		h.logger.Error("Due-soon lookup failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve due tasks")
	}

	return c.JSON(http.StatusOK, tasks)
}
