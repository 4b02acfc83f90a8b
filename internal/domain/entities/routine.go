package entities

import (
	"time"

	"github.com/google/uuid"
)

type TimeOfDay string

const (
	TimeOfDayMorning TimeOfDay = "morning"
	TimeOfDayMidday  TimeOfDay = "midday"
	TimeOfDayEvening TimeOfDay = "evening"
	TimeOfDayAny     TimeOfDay = "any"
)

func (t TimeOfDay) IsValid() bool {
	switch t {
	case TimeOfDayMorning, TimeOfDayMidday, TimeOfDayEvening, TimeOfDayAny:
		return true
	default:
		return false
	}
}

// Routine is a named sequence of steps with server-derived aggregates.
// TotalDuration and FlexibilityScore are recomputed on every mutation,
// never accepted from the client.
type Routine struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	OwnerID          uuid.UUID     `json:"owner_id" db:"owner_id"`
	Name             string        `json:"name" db:"name"`
	TimeOfDay        TimeOfDay     `json:"time_of_day" db:"time_of_day"`
	TotalDuration    int           `json:"total_duration" db:"total_duration"` // minutes
	FlexibilityScore float64       `json:"flexibility_score" db:"flexibility_score"`
	Steps            []RoutineStep `json:"steps,omitempty"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
	DeletedAt        *time.Time    `json:"deleted_at" db:"deleted_at"`
}

// RoutineStep is one activity within a routine.
type RoutineStep struct {
	ID              uuid.UUID `json:"id" db:"id"`
	RoutineID       uuid.UUID `json:"routine_id" db:"routine_id"`
	Title           string    `json:"title" db:"title"`
	Position        int       `json:"position" db:"position"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	IsOptional      bool      `json:"is_optional" db:"is_optional"`
	Icon            *string   `json:"icon" db:"icon"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Recompute refreshes the derived aggregates from the current step set.
// FlexibilityScore is the fraction of optional steps, 0 for empty routines.
func (r *Routine) Recompute() {
	total := 0
	optional := 0
	for _, s := range r.Steps {
		total += s.DurationMinutes
		if s.IsOptional {
			optional++
		}
	}
	r.TotalDuration = total
	if len(r.Steps) == 0 {
		r.FlexibilityScore = 0
		return
	}
	r.FlexibilityScore = float64(optional) / float64(len(r.Steps))
}

// Anchor is a reusable named template of routine steps. Applying an
// anchor copies its steps into a routine by value.
type Anchor struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	OwnerID   uuid.UUID    `json:"owner_id" db:"owner_id"`
	Name      string       `json:"name" db:"name"`
	Steps     []AnchorStep `json:"steps,omitempty"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

type AnchorStep struct {
	ID              uuid.UUID `json:"id" db:"id"`
	AnchorID        uuid.UUID `json:"anchor_id" db:"anchor_id"`
	Title           string    `json:"title" db:"title"`
	Position        int       `json:"position" db:"position"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	IsOptional      bool      `json:"is_optional" db:"is_optional"`
	Icon            *string   `json:"icon" db:"icon"`
}

// RoutineStats summarizes execution history over a date window.
type RoutineStats struct {
	RoutineID         uuid.UUID `json:"routine_id"`
	WindowDays        int       `json:"window_days"`
	Completions       int       `json:"completions"`
	Abandoned         int       `json:"abandoned"`
	CompletionRate    float64   `json:"completion_rate"`
	CurrentStreak     int       `json:"current_streak"`
	BestStreak        int       `json:"best_streak"`
	AvgDurationSecs   float64   `json:"avg_duration_seconds"`
	SkippedStepsTotal int       `json:"skipped_steps_total"`
}
