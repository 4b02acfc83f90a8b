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
)

func seedExecution(t *testing.T, repo *fakeBoardRepo, boardID uuid.UUID, status entities.ExecutionStatus, startedAt time.Time, completedAt *time.Time, results ...entities.StepResult) {
	t.Helper()

	exec := &entities.Execution{
		ID:          uuid.New(),
		BoardID:     boardID,
		UserID:      uuid.New(),
		Status:      status,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
	}
	for i, result := range results {
		exec.Steps = append(exec.Steps, entities.ExecutionStep{
			ID:          uuid.New(),
			ExecutionID: exec.ID,
			StepID:      uuid.New(),
			Position:    i,
			Result:      result,
		})
	}
	require.NoError(t, repo.CreateExecution(context.Background(), exec))
}

func TestRoutineStatsFromExecutionHistory(t *testing.T) {
	routineRepo := newFakeRoutineRepo()
	boardRepo := newFakeBoardRepo()
	svc := NewRoutineService(routineRepo, boardRepo, logger.NewNop())
	ctx := context.Background()
	owner := uuid.New()

	routine := &entities.Routine{
		ID:        uuid.New(),
		OwnerID:   owner,
		Name:      "Wind down",
		TimeOfDay: entities.TimeOfDayEvening,
	}
	require.NoError(t, routineRepo.Create(ctx, routine))

	boardID := uuid.New()
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)

	seedExecution(t, boardRepo, boardID, entities.ExecutionCompleted, now.Add(-2*time.Hour), &now,
		entities.StepCompleted, entities.StepSkipped, entities.StepSkipped)
	seedExecution(t, boardRepo, boardID, entities.ExecutionCompleted, yesterday, &yesterday,
		entities.StepCompleted, entities.StepCompleted)
	seedExecution(t, boardRepo, boardID, entities.ExecutionAbandoned, now.Add(-3*time.Hour), nil,
		entities.StepSkipped, entities.StepPending)

	stats, err := svc.Stats(ctx, owner, routine.ID, boardID, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Completions)
	assert.Equal(t, 1, stats.Abandoned)
	assert.Equal(t, 3, stats.SkippedStepsTotal, "skipped steps are summed across runs")
	assert.InDelta(t, 2.0/3.0, stats.CompletionRate, 1e-9)
	assert.InDelta(t, 3600.0, stats.AvgDurationSecs, 1.0)
	assert.Equal(t, 2, stats.CurrentStreak)

	t.Run("foreign routine rejected", func(t *testing.T) {
		_, err := svc.Stats(ctx, uuid.New(), routine.ID, boardID, 30)
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})
}

func TestStreaks(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	day := func(offset int) string {
		return now.AddDate(0, 0, -offset).Format("2006-01-02")
	}

	t.Run("no completions", func(t *testing.T) {
		current, best := streaks(map[string]bool{}, now, 30)
		assert.Equal(t, 0, current)
		assert.Equal(t, 0, best)
	})

	t.Run("run ending today", func(t *testing.T) {
		days := map[string]bool{day(0): true, day(1): true, day(2): true}
		current, best := streaks(days, now, 30)
		assert.Equal(t, 3, current)
		assert.Equal(t, 3, best)
	})

	t.Run("streak alive when today is still pending", func(t *testing.T) {
		days := map[string]bool{day(1): true, day(2): true}
		current, best := streaks(days, now, 30)
		assert.Equal(t, 2, current)
		assert.Equal(t, 2, best)
	})

	t.Run("streak broken by a missed day", func(t *testing.T) {
		days := map[string]bool{day(2): true, day(3): true, day(4): true}
		current, best := streaks(days, now, 30)
		assert.Equal(t, 0, current)
		assert.Equal(t, 3, best)
	})

	t.Run("best run in the past", func(t *testing.T) {
		days := map[string]bool{
			day(0): true,
			day(5): true, day(6): true, day(7): true, day(8): true,
		}
		current, best := streaks(days, now, 30)
		assert.Equal(t, 1, current)
		assert.Equal(t, 4, best)
	})

	t.Run("window bounds the scan", func(t *testing.T) {
		days := map[string]bool{day(0): true, day(1): true, day(2): true}
		current, best := streaks(days, now, 2)
		assert.Equal(t, 2, current)
		assert.Equal(t, 2, best)
	})
}
