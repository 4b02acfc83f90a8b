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

func seedBoardWithSteps(t *testing.T, repo *fakeBoardRepo, owner uuid.UUID, stepTitles ...string) *entities.Board {
	t.Helper()
	ctx := context.Background()

	board := &entities.Board{
		ID:        uuid.New(),
		OwnerID:   owner,
		Title:     "Morning routine",
		BoardType: entities.BoardTypeRoutine,
		Layout:    entities.LayoutList,
	}
	require.NoError(t, repo.Create(ctx, board))

	for i, title := range stepTitles {
		require.NoError(t, repo.AddStep(ctx, &entities.BoardStep{
			ID:       uuid.New(),
			BoardID:  board.ID,
			Title:    title,
			Position: i,
		}))
	}
	return board
}

func TestPausedExecutionRejectsStepResolution(t *testing.T) {
	repo := newFakeBoardRepo()
	svc := NewBoardService(repo, nil, nil, logger.NewNop())
	ctx := context.Background()
	owner := uuid.New()

	board := seedBoardWithSteps(t, repo, owner, "Wake up", "Stretch")

	exec, err := svc.StartExecution(ctx, board.ID, owner)
	require.NoError(t, err)

	_, err = svc.PauseExecution(ctx, exec.ID, owner)
	require.NoError(t, err)

	_, err = svc.CompleteCurrentStep(ctx, exec.ID, owner)
	assert.ErrorIs(t, err, entities.ErrExecutionPaused)

	_, err = svc.SkipCurrentStep(ctx, exec.ID, owner)
	assert.ErrorIs(t, err, entities.ErrExecutionPaused)

	_, err = svc.ResumeExecution(ctx, exec.ID, owner)
	require.NoError(t, err)

	advanced, err := svc.CompleteCurrentStep(ctx, exec.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, advanced.CurrentStepIndex)
	assert.Equal(t, entities.StepCompleted, advanced.Steps[0].Result)
}

func TestAbandonWhilePausedSettlesPause(t *testing.T) {
	repo := newFakeBoardRepo()
	svc := NewBoardService(repo, nil, nil, logger.NewNop())
	ctx := context.Background()
	owner := uuid.New()

	board := seedBoardWithSteps(t, repo, owner, "Wake up")

	exec, err := svc.StartExecution(ctx, board.ID, owner)
	require.NoError(t, err)

	_, err = svc.PauseExecution(ctx, exec.ID, owner)
	require.NoError(t, err)

	abandoned, err := svc.AbandonExecution(ctx, exec.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, entities.ExecutionAbandoned, abandoned.Status)
	assert.Nil(t, abandoned.PausedAt, "an open pause is settled when the run ends")
	require.NotNil(t, abandoned.CompletedAt)

	_, err = svc.AbandonExecution(ctx, exec.ID, owner)
	assert.ErrorIs(t, err, entities.ErrExecutionFinished)
}

func TestCompleteFinalStepFinishesExecution(t *testing.T) {
	repo := newFakeBoardRepo()
	svc := NewBoardService(repo, nil, nil, logger.NewNop())
	ctx := context.Background()
	owner := uuid.New()

	board := seedBoardWithSteps(t, repo, owner, "Only step")

	exec, err := svc.StartExecution(ctx, board.ID, owner)
	require.NoError(t, err)

	finished, err := svc.CompleteCurrentStep(ctx, exec.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, entities.ExecutionCompleted, finished.Status)
	require.NotNil(t, finished.CompletedAt)
	assert.False(t, finished.CompletedAt.Before(time.Now().Add(-time.Minute)))
}
