package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/database"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"

	"github.com/jmoiron/sqlx"
)

// BoardService handles visual routine boards, their steps and executions
type BoardService struct {
	boardRepo  ports.BoardRepository
	collabRepo ports.CollaborationRepository
	db         *database.DB
	logger     *logger.Logger
}

// NewBoardService creates a new board service
func NewBoardService(boardRepo ports.BoardRepository, collabRepo ports.CollaborationRepository, db *database.DB, logger *logger.Logger) *BoardService {
	return &BoardService{
		boardRepo:  boardRepo,
		collabRepo: collabRepo,
		db:         db,
		logger:     logger,
	}
}

// roleFor resolves the caller's role on a board. The owner always holds
// the owner role; everyone else needs a collaborator row.
func (s *BoardService) roleFor(ctx context.Context, board *entities.Board, userID uuid.UUID) (entities.CollaboratorRole, error) {
	if board.OwnerID == userID {
		return entities.RoleOwner, nil
	}

	collab, err := s.collabRepo.GetCollaborator(ctx, board.ID, userID)
	if err != nil {
		if err == entities.ErrCollaboratorNotFound {
			return "", entities.ErrForbidden
		}
		return "", err
	}

	return collab.Role, nil
}

func (s *BoardService) boardForView(ctx context.Context, boardID, userID uuid.UUID) (*entities.Board, entities.CollaboratorRole, error) {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, "", err
	}

	role, err := s.roleFor(ctx, board, userID)
	if err != nil {
		return nil, "", err
	}

	return board, role, nil
}

func (s *BoardService) boardForEdit(ctx context.Context, boardID, userID uuid.UUID) (*entities.Board, error) {
	board, role, err := s.boardForView(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}
	if !role.CanEdit() {
		return nil, entities.ErrForbidden
	}
	return board, nil
}

// Create adds a new board owned by the caller
func (s *BoardService) Create(ctx context.Context, ownerID uuid.UUID, req ports.CreateBoardRequest) (*entities.Board, error) {
	if !req.BoardType.IsValid() {
		return nil, fmt.Errorf("invalid board type %s", req.BoardType)
	}

	layout := req.Layout
	if layout == "" {
		layout = entities.LayoutList
	}
	if !layout.IsValid() {
		return nil, fmt.Errorf("invalid layout %s", layout)
	}

	board := &entities.Board{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		BoardType:   req.BoardType,
		Layout:      layout,
		IsTemplate:  req.IsTemplate,
	}

	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, err
	}

	s.logger.Info("Board created", "board_id", board.ID, "owner_id", ownerID, "type", board.BoardType)
	return board, nil
}

// Get returns a board with its steps, provided the caller can see it
func (s *BoardService) Get(ctx context.Context, boardID, userID uuid.UUID) (*entities.Board, error) {
	board, err := s.boardRepo.GetWithSteps(ctx, boardID)
	if err != nil {
		return nil, err
	}

	if _, err := s.roleFor(ctx, board, userID); err != nil {
		return nil, err
	}

	return board, nil
}

// Update applies partial board updates; requires edit rights
func (s *BoardService) Update(ctx context.Context, boardID, userID uuid.UUID, req ports.UpdateBoardRequest) (*entities.Board, error) {
	board, err := s.boardForEdit(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		board.Title = *req.Title
	}
	if req.Description != nil {
		board.Description = req.Description
	}
	if req.Layout != nil {
		if !req.Layout.IsValid() {
			return nil, fmt.Errorf("invalid layout %s", *req.Layout)
		}
		board.Layout = *req.Layout
	}
	if req.IsTemplate != nil {
		board.IsTemplate = *req.IsTemplate
	}

	if err := s.boardRepo.Update(ctx, board); err != nil {
		return nil, err
	}

	return board, nil
}

// Delete soft-deletes a board; only someone who can manage it may do so
func (s *BoardService) Delete(ctx context.Context, boardID, userID uuid.UUID) error {
	board, role, err := s.boardForView(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if !role.CanManage() {
		return entities.ErrForbidden
	}

	if err := s.boardRepo.Delete(ctx, boardID); err != nil {
		return err
	}

	audit := &entities.AuditEntry{
		BoardID: board.ID,
		ActorID: userID,
		Action:  entities.AuditBoardDeleted,
	}
	if err := s.collabRepo.AppendAudit(ctx, audit); err != nil {
		s.logger.Warn("Failed to record board deletion", "error", err, "board_id", boardID)
	}

	s.logger.Info("Board deleted", "board_id", boardID, "user_id", userID)
	return nil
}

// List returns boards owned by the user, optionally only templates
func (s *BoardService) List(ctx context.Context, ownerID uuid.UUID, templatesOnly bool) ([]*entities.Board, error) {
	return s.boardRepo.List(ctx, ownerID, templatesOnly)
}

// ListShared returns boards shared with the user by others
func (s *BoardService) ListShared(ctx context.Context, userID uuid.UUID) ([]*entities.Board, error) {
	return s.boardRepo.ListSharedWith(ctx, userID)
}

// Duplicate deep-copies a board and its steps into a new board owned by
// the caller. Step visuals, timers and transitions are copied by value so
// edits to the copy never leak back into the template.
func (s *BoardService) Duplicate(ctx context.Context, boardID, userID uuid.UUID, title string) (*entities.Board, error) {
	source, err := s.boardRepo.GetWithSteps(ctx, boardID)
	if err != nil {
		return nil, err
	}

	// Templates are open to everyone; private boards only to those who
	// can already see them.
	if !source.IsTemplate {
		if _, err := s.roleFor(ctx, source, userID); err != nil {
			return nil, err
		}
	}

	if title == "" {
		title = source.Title + " (copy)"
	}

	copyBoard := &entities.Board{
		ID:          uuid.New(),
		OwnerID:     userID,
		Title:       title,
		Description: source.Description,
		BoardType:   source.BoardType,
		Layout:      source.Layout,
		IsTemplate:  false,
	}

	if err := s.boardRepo.Create(ctx, copyBoard); err != nil {
		return nil, err
	}

	// Steps are copied in one transaction so the copy never ends up with
	// a partial step set.
	err = s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, step := range source.Steps {
			clone := step.CloneInto(copyBoard.ID)
			if err := s.boardRepo.AddStepTx(ctx, tx, &clone); err != nil {
				return err
			}
			copyBoard.Steps = append(copyBoard.Steps, clone)
		}
		return nil
	})
	if err != nil {
		if delErr := s.boardRepo.Delete(ctx, copyBoard.ID); delErr != nil {
			s.logger.Warn("Failed to clean up partial duplicate", "error", delErr, "board_id", copyBoard.ID)
		}
		return nil, fmt.Errorf("failed to duplicate board: %w", err)
	}

	s.logger.Info("Board duplicated", "source_id", boardID, "board_id", copyBoard.ID, "user_id", userID)
	return copyBoard, nil
}

// AddStep appends a step to a board
func (s *BoardService) AddStep(ctx context.Context, boardID, userID uuid.UUID, req ports.CreateStepRequest) (*entities.BoardStep, error) {
	if _, err := s.boardForEdit(ctx, boardID, userID); err != nil {
		return nil, err
	}

	steps, err := s.boardRepo.ListSteps(ctx, boardID)
	if err != nil {
		return nil, err
	}

	step := &entities.BoardStep{
		ID:              uuid.New(),
		BoardID:         boardID,
		Title:           req.Title,
		Position:        len(steps),
		DurationSeconds: req.DurationSeconds,
		IsOptional:      req.IsOptional,
		Visual:          req.Visual,
		Timer:           req.Timer,
		Transition:      req.Transition,
	}

	if err := s.boardRepo.AddStep(ctx, step); err != nil {
		return nil, err
	}

	s.recordStepChange(ctx, boardID, userID)
	return step, nil
}

// UpdateStep applies partial updates to a board step
func (s *BoardService) UpdateStep(ctx context.Context, boardID, stepID, userID uuid.UUID, req ports.UpdateStepRequest) (*entities.BoardStep, error) {
	if _, err := s.boardForEdit(ctx, boardID, userID); err != nil {
		return nil, err
	}

	step, err := s.boardRepo.GetStep(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if step.BoardID != boardID {
		return nil, entities.ErrStepNotFound
	}

	if req.Title != nil {
		step.Title = *req.Title
	}
	if req.DurationSeconds != nil {
		step.DurationSeconds = req.DurationSeconds
	}
	if req.IsOptional != nil {
		step.IsOptional = *req.IsOptional
	}
	if req.Visual != nil {
		step.Visual = req.Visual
	}
	if req.Timer != nil {
		step.Timer = req.Timer
	}
	if req.Transition != nil {
		step.Transition = req.Transition
	}

	if err := s.boardRepo.UpdateStep(ctx, step); err != nil {
		return nil, err
	}

	s.recordStepChange(ctx, boardID, userID)
	return step, nil
}

// ReorderSteps rewrites step positions to match the given ordering. The
// ID list must cover every step of the board exactly once.
func (s *BoardService) ReorderSteps(ctx context.Context, boardID, userID uuid.UUID, req ports.ReorderStepsRequest) ([]entities.BoardStep, error) {
	if _, err := s.boardForEdit(ctx, boardID, userID); err != nil {
		return nil, err
	}

	existing, err := s.boardRepo.ListSteps(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if len(req.StepIDs) != len(existing) {
		return nil, fmt.Errorf("reorder must include all %d steps", len(existing))
	}

	seen := make(map[uuid.UUID]bool, len(existing))
	for _, step := range existing {
		seen[step.ID] = false
	}
	for _, id := range req.StepIDs {
		done, ok := seen[id]
		if !ok {
			return nil, entities.ErrStepNotFound
		}
		if done {
			return nil, fmt.Errorf("duplicate step id %s", id)
		}
		seen[id] = true
	}

	if err := s.boardRepo.ReorderSteps(ctx, boardID, req.StepIDs); err != nil {
		return nil, err
	}

	s.recordStepChange(ctx, boardID, userID)
	return s.boardRepo.ListSteps(ctx, boardID)
}

// DeleteStep removes a step from a board
func (s *BoardService) DeleteStep(ctx context.Context, boardID, stepID, userID uuid.UUID) error {
	if _, err := s.boardForEdit(ctx, boardID, userID); err != nil {
		return err
	}

	step, err := s.boardRepo.GetStep(ctx, stepID)
	if err != nil {
		return err
	}
	if step.BoardID != boardID {
		return entities.ErrStepNotFound
	}

	if err := s.boardRepo.DeleteStep(ctx, stepID); err != nil {
		return err
	}

	s.recordStepChange(ctx, boardID, userID)
	return nil
}

func (s *BoardService) recordStepChange(ctx context.Context, boardID, userID uuid.UUID) {
	audit := &entities.AuditEntry{
		BoardID: boardID,
		ActorID: userID,
		Action:  entities.AuditStepsModified,
	}
	if err := s.collabRepo.AppendAudit(ctx, audit); err != nil {
		s.logger.Warn("Failed to record step change", "error", err, "board_id", boardID)
	}
}

// StartExecution begins a run of a board, snapshotting its current step
// set so mid-run edits do not disturb the run in progress.
func (s *BoardService) StartExecution(ctx context.Context, boardID, userID uuid.UUID) (*entities.Execution, error) {
	board, err := s.boardRepo.GetWithSteps(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.roleFor(ctx, board, userID); err != nil {
		return nil, err
	}
	if len(board.Steps) == 0 {
		return nil, entities.ErrNoStepsToRun
	}

	exec := &entities.Execution{
		ID:        uuid.New(),
		BoardID:   boardID,
		UserID:    userID,
		Status:    entities.ExecutionRunning,
		StartedAt: time.Now(),
	}
	for i, step := range board.Steps {
		exec.Steps = append(exec.Steps, entities.ExecutionStep{
			ID:          uuid.New(),
			ExecutionID: exec.ID,
			StepID:      step.ID,
			Position:    i,
			Result:      entities.StepPending,
		})
	}

	if err := s.boardRepo.CreateExecution(ctx, exec); err != nil {
		return nil, err
	}

	s.logger.Info("Execution started", "execution_id", exec.ID, "board_id", boardID, "user_id", userID)
	return exec, nil
}

// GetExecution returns a run with its step results
func (s *BoardService) GetExecution(ctx context.Context, execID, userID uuid.UUID) (*entities.Execution, error) {
	exec, err := s.boardRepo.GetExecution(ctx, execID)
	if err != nil {
		return nil, err
	}
	if exec.UserID != userID {
		return nil, entities.ErrForbidden
	}
	return exec, nil
}

// CompleteCurrentStep finishes the current step and advances. Finishing
// the final step completes the whole run.
func (s *BoardService) CompleteCurrentStep(ctx context.Context, execID, userID uuid.UUID) (*entities.Execution, error) {
	return s.resolveCurrentStep(ctx, execID, userID, entities.StepCompleted)
}

// SkipCurrentStep skips the current step and advances
func (s *BoardService) SkipCurrentStep(ctx context.Context, execID, userID uuid.UUID) (*entities.Execution, error) {
	return s.resolveCurrentStep(ctx, execID, userID, entities.StepSkipped)
}

func (s *BoardService) resolveCurrentStep(ctx context.Context, execID, userID uuid.UUID, result entities.StepResult) (*entities.Execution, error) {
	exec, err := s.GetExecution(ctx, execID, userID)
	if err != nil {
		return nil, err
	}
	if exec.IsFinished() {
		return nil, entities.ErrExecutionFinished
	}
	// A paused run keeps no active step; resuming first keeps the pause
	// bookkeeping out of step durations.
	if exec.Status == entities.ExecutionPaused {
		return nil, entities.ErrExecutionPaused
	}
	if exec.CurrentStepIndex >= len(exec.Steps) {
		return nil, entities.ErrStepNotFound
	}

	now := time.Now()
	step := &exec.Steps[exec.CurrentStepIndex]
	step.Result = result
	step.FinishedAt = &now
	if step.StartedAt == nil {
		step.StartedAt = &exec.StartedAt
	}
	actual := int(now.Sub(*step.StartedAt).Seconds())
	step.ActualSeconds = &actual

	if err := s.boardRepo.UpdateExecutionStep(ctx, step); err != nil {
		return nil, err
	}

	exec.CurrentStepIndex++
	if exec.CurrentStepIndex >= len(exec.Steps) {
		exec.Status = entities.ExecutionCompleted
		exec.CompletedAt = &now
	} else {
		next := &exec.Steps[exec.CurrentStepIndex]
		next.StartedAt = &now
		if err := s.boardRepo.UpdateExecutionStep(ctx, next); err != nil {
			return nil, err
		}
	}

	if err := s.boardRepo.UpdateExecution(ctx, exec); err != nil {
		return nil, err
	}

	return exec, nil
}

// PauseExecution suspends a running execution
func (s *BoardService) PauseExecution(ctx context.Context, execID, userID uuid.UUID) (*entities.Execution, error) {
	exec, err := s.GetExecution(ctx, execID, userID)
	if err != nil {
		return nil, err
	}

	if err := exec.Pause(time.Now()); err != nil {
		return nil, err
	}

	if err := s.boardRepo.UpdateExecution(ctx, exec); err != nil {
		return nil, err
	}

	return exec, nil
}

// ResumeExecution returns a paused execution to running
func (s *BoardService) ResumeExecution(ctx context.Context, execID, userID uuid.UUID) (*entities.Execution, error) {
	exec, err := s.GetExecution(ctx, execID, userID)
	if err != nil {
		return nil, err
	}

	if err := exec.Resume(time.Now()); err != nil {
		return nil, err
	}

	if err := s.boardRepo.UpdateExecution(ctx, exec); err != nil {
		return nil, err
	}

	return exec, nil
}

// AbandonExecution ends a run without completing it
func (s *BoardService) AbandonExecution(ctx context.Context, execID, userID uuid.UUID) (*entities.Execution, error) {
	exec, err := s.GetExecution(ctx, execID, userID)
	if err != nil {
		return nil, err
	}
	if err := exec.Abandon(time.Now()); err != nil {
		return nil, err
	}

	if err := s.boardRepo.UpdateExecution(ctx, exec); err != nil {
		return nil, err
	}

	s.logger.Info("Execution abandoned", "execution_id", execID, "user_id", userID)
	return exec, nil
}

// ListExecutions returns recent runs of a board by the caller
func (s *BoardService) ListExecutions(ctx context.Context, boardID, userID uuid.UUID, limit int) ([]*entities.Execution, error) {
	if _, _, err := s.boardForView(ctx, boardID, userID); err != nil {
		return nil, err
	}
	return s.boardRepo.ListExecutions(ctx, boardID, userID, limit)
}
