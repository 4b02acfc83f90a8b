package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuadrantFor(t *testing.T) {
	tests := []struct {
		name      string
		urgent    bool
		important bool
		want      Quadrant
	}{
		{"urgent and important", true, true, QuadrantUrgentImportant},
		{"important only", false, true, QuadrantNotUrgentImportant},
		{"urgent only", true, false, QuadrantUrgentNotImportant},
		{"neither", false, false, QuadrantNotUrgentNotImportant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuadrantFor(tt.urgent, tt.important))
		})
	}
}

func TestTaskComplete(t *testing.T) {
	task := &Task{Status: TaskStatusTodo}

	task.Complete()
	assert.Equal(t, TaskStatusDone, task.Status)
	assert.NotNil(t, task.CompletedAt)

	first := *task.CompletedAt
	task.Complete()
	assert.Equal(t, first, *task.CompletedAt, "completing a done task must not move the timestamp")

	task.Reopen()
	assert.Equal(t, TaskStatusTodo, task.Status)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskIsOverdue(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	t.Run("no due date", func(t *testing.T) {
		task := &Task{Status: TaskStatusTodo}
		assert.False(t, task.IsOverdue())
	})

	t.Run("past due date", func(t *testing.T) {
		task := &Task{Status: TaskStatusTodo, DueDate: &past}
		assert.True(t, task.IsOverdue())
	})

	t.Run("future due date", func(t *testing.T) {
		task := &Task{Status: TaskStatusTodo, DueDate: &future}
		assert.False(t, task.IsOverdue())
	})

	t.Run("done task is never overdue", func(t *testing.T) {
		task := &Task{Status: TaskStatusDone, DueDate: &past}
		assert.False(t, task.IsOverdue())
	})
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, TaskStatusInProgress.IsValid())
	assert.False(t, TaskStatus("cancelled").IsValid())

	assert.True(t, QuadrantUrgentImportant.IsValid())
	assert.False(t, Quadrant("q5").IsValid())

	assert.True(t, EffortHigh.IsValid())
	assert.False(t, EffortLevel("extreme").IsValid())

	assert.True(t, PriorityCritical.IsValid())
	assert.False(t, Priority("urgent").IsValid())
}
