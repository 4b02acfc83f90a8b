package ports

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/core/internal/domain/entities"
)

// Claims carries the authenticated identity extracted from a JWT.
type Claims struct {
	UserID string
	Email  string
	Role   entities.UserRole
}

// Auth DTOs

type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Username    string  `json:"username" validate:"required,min=3,max=50"`
	Password    string  `json:"password" validate:"required,min=8"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Timezone    string  `json:"timezone" validate:"omitempty,max=64"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	User         *entities.User `json:"user"`
}

// User DTOs

type UpdateUserRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Username    *string `json:"username" validate:"omitempty,min=3,max=50"`
	Timezone    *string `json:"timezone" validate:"omitempty,max=64"`
}

type UpdateSettingsRequest struct {
	Theme          *entities.ThemeMode `json:"theme"`
	ReducedMotion  *bool               `json:"reduced_motion"`
	FontScale      *float64            `json:"font_scale" validate:"omitempty,gte=0.5,lte=3"`
	ColorMode      *string             `json:"color_mode" validate:"omitempty,max=32"`
	SoundEnabled   *bool               `json:"sound_enabled"`
	SensoryProfile json.RawMessage     `json:"sensory_profile"`
}

// Task DTOs

type CreateTaskRequest struct {
	Title             string               `json:"title" validate:"required,max=200"`
	Description       *string              `json:"description"`
	Priority          entities.Priority    `json:"priority" validate:"omitempty"`
	Quadrant          *entities.Quadrant   `json:"quadrant"`
	Urgent            bool                 `json:"urgent"`
	Important         bool                 `json:"important"`
	DueDate           *time.Time           `json:"due_date"`
	EstimatedDuration *int                 `json:"estimated_duration" validate:"omitempty,gte=1"`
	EnergyRequired    entities.EffortLevel `json:"energy_required" validate:"omitempty"`
	FocusRequired     entities.EffortLevel `json:"focus_required" validate:"omitempty"`
}

type UpdateTaskRequest struct {
	Title             *string               `json:"title" validate:"omitempty,max=200"`
	Description       *string               `json:"description"`
	Status            *entities.TaskStatus  `json:"status"`
	Priority          *entities.Priority    `json:"priority"`
	DueDate           *time.Time            `json:"due_date"`
	ClearDueDate      bool                  `json:"clear_due_date"`
	EstimatedDuration *int                  `json:"estimated_duration" validate:"omitempty,gte=1"`
	EnergyRequired    *entities.EffortLevel `json:"energy_required"`
	FocusRequired     *entities.EffortLevel `json:"focus_required"`
}

type MoveTaskRequest struct {
	Quadrant entities.Quadrant `json:"quadrant" validate:"required"`
	Position *int              `json:"position" validate:"omitempty,gte=0"`
}

// Board DTOs

type CreateBoardRequest struct {
	Title       string               `json:"title" validate:"required,max=200"`
	Description *string              `json:"description"`
	BoardType   entities.BoardType   `json:"board_type" validate:"required"`
	Layout      entities.BoardLayout `json:"layout" validate:"omitempty"`
	IsTemplate  bool                 `json:"is_template"`
}

type UpdateBoardRequest struct {
	Title       *string               `json:"title" validate:"omitempty,max=200"`
	Description *string               `json:"description"`
	Layout      *entities.BoardLayout `json:"layout"`
	IsTemplate  *bool                 `json:"is_template"`
}

type CreateStepRequest struct {
	Title           string          `json:"title" validate:"required,max=200"`
	DurationSeconds *int            `json:"duration_seconds" validate:"omitempty,gte=1"`
	IsOptional      bool            `json:"is_optional"`
	Visual          json.RawMessage `json:"visual"`
	Timer           json.RawMessage `json:"timer"`
	Transition      json.RawMessage `json:"transition"`
}

type UpdateStepRequest struct {
	Title           *string         `json:"title" validate:"omitempty,max=200"`
	DurationSeconds *int            `json:"duration_seconds" validate:"omitempty,gte=1"`
	IsOptional      *bool           `json:"is_optional"`
	Visual          json.RawMessage `json:"visual"`
	Timer           json.RawMessage `json:"timer"`
	Transition      json.RawMessage `json:"transition"`
}

type ReorderStepsRequest struct {
	StepIDs []uuid.UUID `json:"step_ids" validate:"required,min=1"`
}

// Routine DTOs

type CreateRoutineRequest struct {
	Name      string             `json:"name" validate:"required,max=200"`
	TimeOfDay entities.TimeOfDay `json:"time_of_day" validate:"omitempty"`
}

type UpdateRoutineRequest struct {
	Name      *string             `json:"name" validate:"omitempty,max=200"`
	TimeOfDay *entities.TimeOfDay `json:"time_of_day"`
}

type RoutineStepRequest struct {
	Title           string  `json:"title" validate:"required,max=200"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gte=1"`
	IsOptional      bool    `json:"is_optional"`
	Icon            *string `json:"icon" validate:"omitempty,max=64"`
}

type CreateAnchorRequest struct {
	Name  string               `json:"name" validate:"required,max=200"`
	Steps []RoutineStepRequest `json:"steps" validate:"required,min=1,dive"`
}

// Notification DTOs

type CreateNotificationRequest struct {
	Type         entities.NotificationType `json:"type" validate:"required"`
	Priority     entities.Priority         `json:"priority" validate:"omitempty"`
	Title        string                    `json:"title" validate:"required,max=200"`
	Body         *string                   `json:"body"`
	ScheduledFor *time.Time                `json:"scheduled_for"`
}

type UpdatePreferencesRequest struct {
	Enabled         *bool   `json:"enabled"`
	QuietHours      *bool   `json:"quiet_hours"`
	QuietStart      *string `json:"quiet_start" validate:"omitempty,len=5"`
	QuietEnd        *string `json:"quiet_end" validate:"omitempty,len=5"`
	RemindersOff    *bool   `json:"reminders_off"`
	DueDatesOff     *bool   `json:"due_dates_off"`
	RoutinesOff     *bool   `json:"routines_off"`
	BoardSharingOff *bool   `json:"board_sharing_off"`
}

// Collaboration DTOs

type ShareBoardRequest struct {
	Email string                    `json:"email" validate:"required,email"`
	Role  entities.CollaboratorRole `json:"role" validate:"required"`
}

type ChangeRoleRequest struct {
	Role entities.CollaboratorRole `json:"role" validate:"required"`
}

// Mood DTOs

type CreateMoodEntryRequest struct {
	Mood          int        `json:"mood" validate:"required,gte=1,lte=5"`
	Energy        int        `json:"energy" validate:"required,gte=1,lte=5"`
	Focus         int        `json:"focus" validate:"required,gte=1,lte=5"`
	Tags          []string   `json:"tags" validate:"omitempty,dive,max=50"`
	EnergyFactors []string   `json:"energy_factors" validate:"omitempty,dive,max=50"`
	Note          *string    `json:"note"`
	RecordedAt    *time.Time `json:"recorded_at"`
}
