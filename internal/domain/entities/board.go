package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BoardType string

const (
	BoardTypeRoutine   BoardType = "routine"
	BoardTypeSchedule  BoardType = "schedule"
	BoardTypeChecklist BoardType = "checklist"
)

func (bt BoardType) IsValid() bool {
	switch bt {
	case BoardTypeRoutine, BoardTypeSchedule, BoardTypeChecklist:
		return true
	default:
		return false
	}
}

type BoardLayout string

const (
	LayoutGrid BoardLayout = "grid"
	LayoutList BoardLayout = "list"
	LayoutFlow BoardLayout = "flow"
)

func (bl BoardLayout) IsValid() bool {
	switch bl {
	case LayoutGrid, LayoutList, LayoutFlow:
		return true
	default:
		return false
	}
}

// Board is a visual routine board: an ordered sequence of steps the user
// walks through, optionally shared with collaborators.
type Board struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	OwnerID     uuid.UUID   `json:"owner_id" db:"owner_id"`
	Title       string      `json:"title" db:"title"`
	Description *string     `json:"description" db:"description"`
	BoardType   BoardType   `json:"board_type" db:"board_type"`
	Layout      BoardLayout `json:"layout" db:"layout"`
	IsTemplate  bool        `json:"is_template" db:"is_template"`
	Steps       []BoardStep `json:"steps,omitempty"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time  `json:"deleted_at" db:"deleted_at"`
}

// BoardStep is one cell on a board. The visual, timer and transition
// documents are free-form client-owned JSON, copied by value when a
// template board is duplicated.
type BoardStep struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	BoardID         uuid.UUID       `json:"board_id" db:"board_id"`
	Title           string          `json:"title" db:"title"`
	Position        int             `json:"position" db:"position"`
	DurationSeconds *int            `json:"duration_seconds" db:"duration_seconds"`
	IsOptional      bool            `json:"is_optional" db:"is_optional"`
	Visual          json.RawMessage `json:"visual,omitempty" db:"visual"`
	Timer           json.RawMessage `json:"timer,omitempty" db:"timer"`
	Transition      json.RawMessage `json:"transition,omitempty" db:"transition"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// CloneInto returns a value copy of the step re-homed to another board,
// with identity and timestamps cleared for insertion.
func (s BoardStep) CloneInto(boardID uuid.UUID) BoardStep {
	clone := s
	clone.ID = uuid.Nil
	clone.BoardID = boardID
	clone.Visual = append(json.RawMessage(nil), s.Visual...)
	clone.Timer = append(json.RawMessage(nil), s.Timer...)
	clone.Transition = append(json.RawMessage(nil), s.Transition...)
	return clone
}

type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionPaused    ExecutionStatus = "paused"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionAbandoned ExecutionStatus = "abandoned"
)

func (es ExecutionStatus) IsValid() bool {
	switch es {
	case ExecutionRunning, ExecutionPaused, ExecutionCompleted, ExecutionAbandoned:
		return true
	default:
		return false
	}
}

// Execution is one run of a board by a user. Step progress lives in
// ExecutionStep rows; the execution tracks overall status and pause
// bookkeeping so elapsed time excludes paused stretches.
type Execution struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	BoardID          uuid.UUID       `json:"board_id" db:"board_id"`
	UserID           uuid.UUID       `json:"user_id" db:"user_id"`
	Status           ExecutionStatus `json:"status" db:"status"`
	CurrentStepIndex int             `json:"current_step_index" db:"current_step_index"`
	StartedAt        time.Time       `json:"started_at" db:"started_at"`
	PausedAt         *time.Time      `json:"paused_at" db:"paused_at"`
	PausedSeconds    int             `json:"paused_seconds" db:"paused_seconds"`
	CompletedAt      *time.Time      `json:"completed_at" db:"completed_at"`
	Steps            []ExecutionStep `json:"steps,omitempty"`
}

type StepResult string

const (
	StepPending   StepResult = "pending"
	StepCompleted StepResult = "completed"
	StepSkipped   StepResult = "skipped"
)

// ExecutionStep records the outcome of one board step within a run.
type ExecutionStep struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ExecutionID   uuid.UUID  `json:"execution_id" db:"execution_id"`
	StepID        uuid.UUID  `json:"step_id" db:"step_id"`
	Position      int        `json:"position" db:"position"`
	Result        StepResult `json:"result" db:"result"`
	StartedAt     *time.Time `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	ActualSeconds *int       `json:"actual_seconds" db:"actual_seconds"`
}

func (e *Execution) IsFinished() bool {
	return e.Status == ExecutionCompleted || e.Status == ExecutionAbandoned
}

// Pause suspends a running execution.
func (e *Execution) Pause(now time.Time) error {
	if e.IsFinished() {
		return ErrExecutionFinished
	}
	if e.Status == ExecutionPaused {
		return nil
	}
	e.Status = ExecutionPaused
	e.PausedAt = &now
	return nil
}

// Resume returns a paused execution to running and accrues the paused
// stretch into PausedSeconds.
func (e *Execution) Resume(now time.Time) error {
	if e.IsFinished() {
		return ErrExecutionFinished
	}
	if e.Status != ExecutionPaused || e.PausedAt == nil {
		return ErrExecutionNotPaused
	}
	e.PausedSeconds += int(now.Sub(*e.PausedAt).Seconds())
	e.PausedAt = nil
	e.Status = ExecutionRunning
	return nil
}

// Abandon ends the run early. An open pause is settled into PausedSeconds
// first so elapsed time stays free of paused stretches.
func (e *Execution) Abandon(now time.Time) error {
	if e.IsFinished() {
		return ErrExecutionFinished
	}
	if e.Status == ExecutionPaused && e.PausedAt != nil {
		e.PausedSeconds += int(now.Sub(*e.PausedAt).Seconds())
		e.PausedAt = nil
	}
	e.Status = ExecutionAbandoned
	e.CompletedAt = &now
	return nil
}

// ElapsedSeconds returns active (non-paused) time since the run started.
func (e *Execution) ElapsedSeconds(now time.Time) int {
	end := now
	if e.CompletedAt != nil {
		end = *e.CompletedAt
	}
	elapsed := int(end.Sub(e.StartedAt).Seconds()) - e.PausedSeconds
	if e.Status == ExecutionPaused && e.PausedAt != nil {
		elapsed -= int(now.Sub(*e.PausedAt).Seconds())
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
