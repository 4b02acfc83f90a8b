package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/cache"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

const matrixCacheTTL = 30 * time.Second

// TaskService handles priority-matrix task operations
type TaskService struct {
	taskRepo ports.TaskRepository
	redis    *cache.Redis
	logger   *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, redis *cache.Redis, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		redis:    redis,
		logger:   logger,
	}
}

func matrixCacheKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("matrix:%s", ownerID)
}

// Create adds a task to the matrix. The quadrant may be given directly or
// derived from the urgent/important flags; an explicit quadrant wins.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, req ports.CreateTaskRequest) (*entities.Task, error) {
	quadrant := entities.QuadrantFor(req.Urgent, req.Important)
	if req.Quadrant != nil {
		if !req.Quadrant.IsValid() {
			return nil, entities.ErrInvalidQuadrant
		}
		quadrant = *req.Quadrant
	}

	priority := req.Priority
	if priority == "" {
		priority = entities.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority %s", priority)
	}

	energy := req.EnergyRequired
	if energy == "" {
		energy = entities.EffortMedium
	}
	focus := req.FocusRequired
	if focus == "" {
		focus = entities.EffortMedium
	}
	if !energy.IsValid() || !focus.IsValid() {
		return nil, fmt.Errorf("invalid effort level")
	}

	position, err := s.taskRepo.NextPosition(ctx, ownerID, quadrant)
	if err != nil {
		return nil, err
	}

	task := &entities.Task{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Title:             req.Title,
		Description:       req.Description,
		Status:            entities.TaskStatusTodo,
		Priority:          priority,
		Quadrant:          quadrant,
		Position:          position,
		DueDate:           req.DueDate,
		EstimatedDuration: req.EstimatedDuration,
		EnergyRequired:    energy,
		FocusRequired:     focus,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateMatrix(ctx, ownerID)
	s.logger.Info("Task created", "task_id", task.ID, "owner_id", ownerID, "quadrant", quadrant)

	return task, nil
}

// Get returns a task owned by the given user
func (s *TaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != ownerID {
		return nil, entities.ErrForbidden
	}
	return task, nil
}

// Update applies partial updates to a task
func (s *TaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.Get(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, entities.ErrInvalidStatus
		}
		switch *req.Status {
		case entities.TaskStatusDone:
			task.Complete()
		case entities.TaskStatusTodo:
			task.Reopen()
		default:
			task.Status = *req.Status
			task.CompletedAt = nil
		}
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return nil, fmt.Errorf("invalid priority %s", *req.Priority)
		}
		task.Priority = *req.Priority
	}
	if req.ClearDueDate {
		task.DueDate = nil
	} else if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.EstimatedDuration != nil {
		task.EstimatedDuration = req.EstimatedDuration
	}
	if req.EnergyRequired != nil {
		if !req.EnergyRequired.IsValid() {
			return nil, fmt.Errorf("invalid energy level %s", *req.EnergyRequired)
		}
		task.EnergyRequired = *req.EnergyRequired
	}
	if req.FocusRequired != nil {
		if !req.FocusRequired.IsValid() {
			return nil, fmt.Errorf("invalid focus level %s", *req.FocusRequired)
		}
		task.FocusRequired = *req.FocusRequired
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateMatrix(ctx, ownerID)
	return task, nil
}

// Complete marks a task done. Completing a done task is a no-op.
func (s *TaskService) Complete(ctx context.Context, ownerID, taskID uuid.UUID) (*entities.Task, error) {
	task, err := s.Get(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == entities.TaskStatusDone {
		return task, nil
	}

	task.Complete()
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateMatrix(ctx, ownerID)
	s.logger.Info("Task completed", "task_id", taskID, "owner_id", ownerID)

	return task, nil
}

// Move relocates a task to a quadrant at a position. Omitting the
// position appends to the end of the target quadrant.
func (s *TaskService) Move(ctx context.Context, ownerID, taskID uuid.UUID, req ports.MoveTaskRequest) (*entities.Task, error) {
	task, err := s.Get(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if !req.Quadrant.IsValid() {
		return nil, entities.ErrInvalidQuadrant
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		position, err = s.taskRepo.NextPosition(ctx, ownerID, req.Quadrant)
		if err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Move(ctx, taskID, req.Quadrant, position); err != nil {
		return nil, err
	}

	task.Quadrant = req.Quadrant
	task.Position = position

	s.invalidateMatrix(ctx, ownerID)
	return task, nil
}

// Delete soft-deletes a task
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}

	s.invalidateMatrix(ctx, ownerID)
	s.logger.Info("Task deleted", "task_id", taskID, "owner_id", ownerID)

	return nil
}

// List returns tasks matching the filter along with the total count
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, filter ports.TaskFilter) ([]*entities.Task, int64, error) {
	return s.taskRepo.List(ctx, ownerID, filter)
}

// Matrix returns the per-quadrant summary, served from cache when fresh
func (s *TaskService) Matrix(ctx context.Context, ownerID uuid.UUID) (*entities.MatrixSummary, error) {
	if s.redis != nil {
		var cached entities.MatrixSummary
		hit, err := s.redis.GetJSON(ctx, matrixCacheKey(ownerID), &cached)
		if err != nil {
			s.logger.Warn("Matrix cache read failed", "error", err, "owner_id", ownerID)
		} else if hit {
			return &cached, nil
		}
	}

	summary, err := s.taskRepo.MatrixSummary(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.SetJSON(ctx, matrixCacheKey(ownerID), summary, matrixCacheTTL); err != nil {
			s.logger.Warn("Matrix cache write failed", "error", err, "owner_id", ownerID)
		}
	}

	return summary, nil
}

// DueSoon returns open tasks whose due date falls within the window
func (s *TaskService) DueSoon(ctx context.Context, ownerID uuid.UUID, within time.Duration) ([]*entities.Task, error) {
	if within <= 0 {
		within = 24 * time.Hour
	}
	return s.taskRepo.DueSoon(ctx, ownerID, within)
}

func (s *TaskService) invalidateMatrix(ctx context.Context, ownerID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, matrixCacheKey(ownerID)); err != nil {
		s.logger.Warn("Matrix cache invalidation failed", "error", err, "owner_id", ownerID)
	}
}
