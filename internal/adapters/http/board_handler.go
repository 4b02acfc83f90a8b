package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/focusflow/core/internal/application/services"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

// BoardHandler handles board, step and execution requests
type BoardHandler struct {
	boardService *services.BoardService
	logger       *logger.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(boardService *services.BoardService, logger *logger.Logger) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		logger:       logger,
	}
}

// CreateBoard handles board creation
func (h *BoardHandler) CreateBoard(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.CreateBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	board, err := h.boardService.Create(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Create board failed", "error", err, "user_id", userID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, board)
}

// GetBoard returns a board with its steps
func (h *BoardHandler) GetBoard(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	board, err := h.boardService.Get(c.Request().Context(), boardID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, board)
}

// UpdateBoard applies partial board updates
func (h *BoardHandler) UpdateBoard(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	board, err := h.boardService.Update(c.Request().Context(), boardID, userID, req)
	if err != nil {
		h.logger.Error("Update board failed", "error", err, "board_id", boardID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, board)
}

// DeleteBoard soft-deletes a board
func (h *BoardHandler) DeleteBoard(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.boardService.Delete(c.Request().Context(), boardID, userID); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Board deleted"})
}

// ListBoards returns boards owned by the caller
func (h *BoardHandler) ListBoards(c echo.Context) error {
	userID := getUserIDFromContext(c)
	templatesOnly := c.QueryParam("templates") == "true"

	boards, err := h.boardService.List(c.Request().Context(), userID, templatesOnly)
	if err != nil {
		h.logger.Error("List boards failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve boards")
	}

	return c.JSON(http.StatusOK, boards)
}

// ListSharedBoards returns boards shared with the caller
func (h *BoardHandler) ListSharedBoards(c echo.Context) error {
	userID := getUserIDFromContext(c)

	boards, err := h.boardService.ListShared(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("List shared boards failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve shared boards")
	}

	return c.JSON(http.StatusOK, boards)
}

// DuplicateBoard deep-copies a board or template
func (h *BoardHandler) DuplicateBoard(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	board, err := h.boardService.Duplicate(c.Request().Context(), boardID, userID, req.Title)
	if err != nil {
		h.logger.Error("Duplicate board failed", "error", err, "board_id", boardID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, board)
}

// AddStep appends a step to a board
func (h *BoardHandler) AddStep(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.CreateStepRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	step, err := h.boardService.AddStep(c.Request().Context(), boardID, userID, req)
	if err != nil {
		h.logger.Error("Add step failed", "error", err, "board_id", boardID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, step)
}

// UpdateStep applies partial step updates
func (h *BoardHandler) UpdateStep(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	stepID, err := parseIDParam(c, "stepId")
	if err != nil {
		return err
	}

	var req ports.UpdateStepRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	step, err := h.boardService.UpdateStep(c.Request().Context(), boardID, stepID, userID, req)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, step)
}

// ReorderSteps rewrites the board's step ordering
func (h *BoardHandler) ReorderSteps(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.ReorderStepsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	steps, err := h.boardService.ReorderSteps(c.Request().Context(), boardID, userID, req)
	if err != nil {
		h.logger.Error("Reorder steps failed", "error", err, "board_id", boardID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, steps)
}

// DeleteStep removes a step from a board
func (h *BoardHandler) DeleteStep(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	stepID, err := parseIDParam(c, "stepId")
	if err != nil {
		return err
	}

	if err := h.boardService.DeleteStep(c.Request().Context(), boardID, stepID, userID); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Step deleted"})
}

// StartExecution begins a run of a board
func (h *BoardHandler) StartExecution(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	exec, err := h.boardService.StartExecution(c.Request().Context(), boardID, userID)
	if err != nil {
		h.logger.Error("Start execution failed", "error", err, "board_id", boardID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, exec)
}

// GetExecution returns a run with its step results
func (h *BoardHandler) GetExecution(c echo.Context) error {
	userID := getUserIDFromContext(c)
	execID, err := parseIDParam(c, "execId")
	if err != nil {
		return err
	}

	exec, err := h.boardService.GetExecution(c.Request().Context(), execID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, exec)
}

// CompleteStep finishes the current step of a run
func (h *BoardHandler) CompleteStep(c echo.Context) error {
	userID := getUserIDFromContext(c)
	execID, err := parseIDParam(c, "execId")
	if err != nil {
		return err
	}

	exec, err := h.boardService.CompleteCurrentStep(c.Request().Context(), execID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, exec)
}

// SkipStep skips the current step of a run
func (h *BoardHandler) SkipStep(c echo.Context) error {
	userID := getUserIDFromContext(c)
	execID, err := parseIDParam(c, "execId")
	if err != nil {
		return err
	}

	exec, err := h.boardService.SkipCurrentStep(c.Request().Context(), execID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, exec)
}

// PauseExecution suspends a run
func (h *BoardHandler) PauseExecution(c echo.Context) error {
	userID := getUserIDFromContext(c)
	execID, err := parseIDParam(c, "execId")
	if err != nil {
		return err
	}

	exec, err := h.boardService.PauseExecution(c.Request().Context(), execID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, exec)
}

// ResumeExecution returns a paused run to running
func (h *BoardHandler) ResumeExecution(c echo.Context) error {
	userID := getUserIDFromContext(c)
	execID, err := parseIDParam(c, "execId")
	if err != nil {
		return err
	}

	exec, err := h.boardService.ResumeExecution(c.Request().Context(), execID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, exec)
}

// AbandonExecution ends a run without completing it
func (h *BoardHandler) AbandonExecution(c echo.Context) error {
	userID := getUserIDFromContext(c)
	execID, err := parseIDParam(c, "execId")
	if err != nil {
		return err
	}

	exec, err := h.boardService.AbandonExecution(c.Request().Context(), execID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, exec)
}

// ListExecutions returns recent runs of a board by the caller
func (h *BoardHandler) ListExecutions(c echo.Context) error {
	userID := getUserIDFromContext(c)
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	limit := 20
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		limit = parsed
	}

	executions, err := h.boardService.ListExecutions(c.Request().Context(), boardID, userID, limit)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, executions)
}
