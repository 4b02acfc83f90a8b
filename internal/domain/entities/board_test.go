package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardStepCloneInto(t *testing.T) {
	duration := 90
	original := BoardStep{
		ID:              uuid.New(),
		BoardID:         uuid.New(),
		Title:           "Brush teeth",
		Position:        2,
		DurationSeconds: &duration,
		IsOptional:      true,
		Visual:          json.RawMessage(`{"icon":"tooth"}`),
		Timer:           json.RawMessage(`{"style":"ring"}`),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	target := uuid.New()
	clone := original.CloneInto(target)

	assert.Equal(t, uuid.Nil, clone.ID)
	assert.Equal(t, target, clone.BoardID)
	assert.Equal(t, original.Title, clone.Title)
	assert.Equal(t, original.Position, clone.Position)
	assert.Equal(t, original.IsOptional, clone.IsOptional)
	assert.Equal(t, original.Visual, clone.Visual)

	// The JSON documents must be independent copies.
	clone.Visual[2] = 'X'
	assert.NotEqual(t, original.Visual, clone.Visual)
}

func TestExecutionPauseResume(t *testing.T) {
	start := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	exec := &Execution{
		Status:    ExecutionRunning,
		StartedAt: start,
	}

	require.NoError(t, exec.Pause(start.Add(2*time.Minute)))
	assert.Equal(t, ExecutionPaused, exec.Status)
	require.NotNil(t, exec.PausedAt)

	// Pausing twice is a no-op.
	require.NoError(t, exec.Pause(start.Add(3*time.Minute)))
	assert.Equal(t, start.Add(2*time.Minute), *exec.PausedAt)

	require.NoError(t, exec.Resume(start.Add(5*time.Minute)))
	assert.Equal(t, ExecutionRunning, exec.Status)
	assert.Nil(t, exec.PausedAt)
	assert.Equal(t, 180, exec.PausedSeconds)

	assert.ErrorIs(t, exec.Resume(start.Add(6*time.Minute)), ErrExecutionNotPaused)
}

func TestExecutionAbandonSettlesOpenPause(t *testing.T) {
	start := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	exec := &Execution{
		Status:    ExecutionRunning,
		StartedAt: start,
	}

	require.NoError(t, exec.Pause(start.Add(5*time.Minute)))
	require.NoError(t, exec.Abandon(start.Add(15*time.Minute)))

	assert.Equal(t, ExecutionAbandoned, exec.Status)
	assert.Nil(t, exec.PausedAt)
	assert.Equal(t, 600, exec.PausedSeconds)
	// Only the 5 active minutes count; the 10 paused ones do not.
	assert.Equal(t, 300, exec.ElapsedSeconds(start.Add(15*time.Minute)))
}

func TestExecutionFinishedGuards(t *testing.T) {
	now := time.Now()
	exec := &Execution{Status: ExecutionCompleted, CompletedAt: &now}

	assert.True(t, exec.IsFinished())
	assert.ErrorIs(t, exec.Pause(now), ErrExecutionFinished)
	assert.ErrorIs(t, exec.Resume(now), ErrExecutionFinished)
	assert.ErrorIs(t, exec.Abandon(now), ErrExecutionFinished)
}

func TestExecutionElapsedSeconds(t *testing.T) {
	start := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	t.Run("running excludes accrued pauses", func(t *testing.T) {
		exec := &Execution{
			Status:        ExecutionRunning,
			StartedAt:     start,
			PausedSeconds: 60,
		}
		assert.Equal(t, 240, exec.ElapsedSeconds(start.Add(5*time.Minute)))
	})

	t.Run("paused excludes the ongoing pause", func(t *testing.T) {
		pausedAt := start.Add(3 * time.Minute)
		exec := &Execution{
			Status:    ExecutionPaused,
			StartedAt: start,
			PausedAt:  &pausedAt,
		}
		assert.Equal(t, 180, exec.ElapsedSeconds(start.Add(10*time.Minute)))
	})

	t.Run("completed uses completion time", func(t *testing.T) {
		done := start.Add(4 * time.Minute)
		exec := &Execution{
			Status:      ExecutionCompleted,
			StartedAt:   start,
			CompletedAt: &done,
		}
		assert.Equal(t, 240, exec.ElapsedSeconds(start.Add(time.Hour)))
	})

	t.Run("never negative", func(t *testing.T) {
		exec := &Execution{
			Status:        ExecutionRunning,
			StartedAt:     start,
			PausedSeconds: 600,
		}
		assert.Equal(t, 0, exec.ElapsedSeconds(start.Add(time.Minute)))
	})
}
