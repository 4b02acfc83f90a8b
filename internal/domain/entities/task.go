package entities

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusArchived   TaskStatus = "archived"
)

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusArchived:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Quadrant is one of the four priority-matrix buckets.
type Quadrant string

const (
	QuadrantUrgentImportant       Quadrant = "urgent_important"
	QuadrantNotUrgentImportant    Quadrant = "not_urgent_important"
	QuadrantUrgentNotImportant    Quadrant = "urgent_not_important"
	QuadrantNotUrgentNotImportant Quadrant = "not_urgent_not_important"
)

func (q Quadrant) IsValid() bool {
	switch q {
	case QuadrantUrgentImportant, QuadrantNotUrgentImportant,
		QuadrantUrgentNotImportant, QuadrantNotUrgentNotImportant:
		return true
	default:
		return false
	}
}

// QuadrantFor maps the urgent/important flags to a matrix bucket.
func QuadrantFor(urgent, important bool) Quadrant {
	switch {
	case urgent && important:
		return QuadrantUrgentImportant
	case !urgent && important:
		return QuadrantNotUrgentImportant
	case urgent && !important:
		return QuadrantUrgentNotImportant
	default:
		return QuadrantNotUrgentNotImportant
	}
}

// EffortLevel grades how much energy or focus a task demands.
type EffortLevel string

const (
	EffortLow    EffortLevel = "low"
	EffortMedium EffortLevel = "medium"
	EffortHigh   EffortLevel = "high"
)

func (e EffortLevel) IsValid() bool {
	switch e {
	case EffortLow, EffortMedium, EffortHigh:
		return true
	default:
		return false
	}
}

// Task represents a single item on the priority matrix.
type Task struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	OwnerID           uuid.UUID   `json:"owner_id" db:"owner_id"`
	Title             string      `json:"title" db:"title"`
	Description       *string     `json:"description" db:"description"`
	Status            TaskStatus  `json:"status" db:"status"`
	Priority          Priority    `json:"priority" db:"priority"`
	Quadrant          Quadrant    `json:"quadrant" db:"quadrant"`
	Position          int         `json:"position" db:"position"`
	DueDate           *time.Time  `json:"due_date" db:"due_date"`
	EstimatedDuration *int        `json:"estimated_duration" db:"estimated_duration"` // minutes
	EnergyRequired    EffortLevel `json:"energy_required" db:"energy_required"`
	FocusRequired     EffortLevel `json:"focus_required" db:"focus_required"`
	CompletedAt       *time.Time  `json:"completed_at" db:"completed_at"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
	DeletedAt         *time.Time  `json:"deleted_at" db:"deleted_at"`
}

func (t *Task) IsOverdue() bool {
	if t.DueDate == nil || t.Status == TaskStatusDone {
		return false
	}
	return time.Now().After(*t.DueDate)
}

// Complete marks the task done. Completing an already done task is a no-op.
func (t *Task) Complete() {
	if t.Status == TaskStatusDone {
		return
	}
	t.Status = TaskStatusDone
	now := time.Now()
	t.CompletedAt = &now
}

func (t *Task) Reopen() {
	t.Status = TaskStatusTodo
	t.CompletedAt = nil
}

// MatrixSummary aggregates per-quadrant counts for the matrix view.
type MatrixSummary struct {
	Quadrants map[Quadrant]int `json:"quadrants"`
	Overdue   int              `json:"overdue"`
	DueToday  int              `json:"due_today"`
	Total     int              `json:"total"`
}
