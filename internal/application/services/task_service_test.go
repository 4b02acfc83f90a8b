package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

func newTestTaskService(repo *fakeTaskRepo) *TaskService {
	return NewTaskService(repo, nil, logger.NewNop())
}

func TestTaskCreateDerivesQuadrant(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)
	ctx := context.Background()
	owner := uuid.New()

	t.Run("from urgent and important flags", func(t *testing.T) {
		task, err := svc.Create(ctx, owner, ports.CreateTaskRequest{
			Title:     "File taxes",
			Urgent:    true,
			Important: true,
		})
		require.NoError(t, err)
		assert.Equal(t, entities.QuadrantUrgentImportant, task.Quadrant)
		assert.Equal(t, entities.PriorityMedium, task.Priority)
		assert.Equal(t, entities.EffortMedium, task.EnergyRequired)
		assert.Equal(t, entities.TaskStatusTodo, task.Status)
	})

	t.Run("explicit quadrant wins over flags", func(t *testing.T) {
		q := entities.QuadrantNotUrgentNotImportant
		task, err := svc.Create(ctx, owner, ports.CreateTaskRequest{
			Title:    "Sort bookshelf",
			Urgent:   true,
			Quadrant: &q,
		})
		require.NoError(t, err)
		assert.Equal(t, q, task.Quadrant)
	})

	t.Run("invalid quadrant rejected", func(t *testing.T) {
		q := entities.Quadrant("q9")
		_, err := svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "x", Quadrant: &q})
		assert.ErrorIs(t, err, entities.ErrInvalidQuadrant)
	})

	t.Run("positions append within a quadrant", func(t *testing.T) {
		first, err := svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "a", Urgent: true, Important: false})
		require.NoError(t, err)
		second, err := svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "b", Urgent: true, Important: false})
		require.NoError(t, err)
		assert.Equal(t, first.Position+1, second.Position)
	})
}

func TestTaskOwnershipEnforced(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)
	ctx := context.Background()

	owner := uuid.New()
	task, err := svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "Private task"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, uuid.New(), task.ID)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	err = svc.Delete(ctx, uuid.New(), task.ID)
	assert.ErrorIs(t, err, entities.ErrForbidden)
}

func TestTaskCompleteIsIdempotent(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "Water plants"})
	require.NoError(t, err)

	done, err := svc.Complete(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusDone, done.Status)
	require.NotNil(t, done.CompletedAt)

	first := *done.CompletedAt
	again, err := svc.Complete(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *again.CompletedAt)
}

func TestTaskUpdateStatusTransitions(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "Write report"})
	require.NoError(t, err)

	done := entities.TaskStatusDone
	updated, err := svc.Update(ctx, owner, task.ID, ports.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)
	assert.NotNil(t, updated.CompletedAt)

	todo := entities.TaskStatusTodo
	updated, err = svc.Update(ctx, owner, task.ID, ports.UpdateTaskRequest{Status: &todo})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt, "reopening clears the completion time")

	bad := entities.TaskStatus("paused")
	_, err = svc.Update(ctx, owner, task.ID, ports.UpdateTaskRequest{Status: &bad})
	assert.ErrorIs(t, err, entities.ErrInvalidStatus)
}

func TestTaskUpdateClearDueDate(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)
	ctx := context.Background()
	owner := uuid.New()

	due := time.Now().Add(48 * time.Hour)
	task, err := svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "Renew passport", DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)

	updated, err := svc.Update(ctx, owner, task.ID, ports.UpdateTaskRequest{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestTaskMove(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "Plan trip", Important: true})
	require.NoError(t, err)

	t.Run("explicit position", func(t *testing.T) {
		pos := 3
		moved, err := svc.Move(ctx, owner, task.ID, ports.MoveTaskRequest{
			Quadrant: entities.QuadrantUrgentImportant,
			Position: &pos,
		})
		require.NoError(t, err)
		assert.Equal(t, entities.QuadrantUrgentImportant, moved.Quadrant)
		assert.Equal(t, 3, moved.Position)
	})

	t.Run("omitted position appends", func(t *testing.T) {
		moved, err := svc.Move(ctx, owner, task.ID, ports.MoveTaskRequest{
			Quadrant: entities.QuadrantNotUrgentImportant,
		})
		require.NoError(t, err)
		assert.Equal(t, entities.QuadrantNotUrgentImportant, moved.Quadrant)
	})

	t.Run("invalid quadrant", func(t *testing.T) {
		_, err := svc.Move(ctx, owner, task.ID, ports.MoveTaskRequest{Quadrant: "nowhere"})
		assert.ErrorIs(t, err, entities.ErrInvalidQuadrant)
	})
}

func TestMatrixSummaryWithoutCache(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)
	ctx := context.Background()
	owner := uuid.New()

	_, err := svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "a", Urgent: true, Important: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "b", Urgent: true, Important: true})
	require.NoError(t, err)
	done, err := svc.Create(ctx, owner, ports.CreateTaskRequest{Title: "c", Important: true})
	require.NoError(t, err)
	_, err = svc.Complete(ctx, owner, done.ID)
	require.NoError(t, err)

	summary, err := svc.Matrix(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Quadrants[entities.QuadrantUrgentImportant])
	assert.Equal(t, 0, summary.Quadrants[entities.QuadrantNotUrgentImportant], "done tasks leave the matrix")
	assert.Equal(t, 2, summary.Total)
}
