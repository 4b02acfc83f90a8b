package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

func (ur UserRole) IsValid() bool {
	switch ur {
	case UserRoleAdmin, UserRoleUser:
		return true
	default:
		return false
	}
}

// User represents an account in the system.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	DisplayName  *string    `json:"display_name" db:"display_name"`
	Role         UserRole   `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	Timezone     string     `json:"timezone" db:"timezone"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" db:"deleted_at"`
}

// Location resolves the user's timezone, falling back to UTC.
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

func (tm ThemeMode) IsValid() bool {
	switch tm {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	default:
		return false
	}
}

// UserSettings holds per-user accessibility and sensory preferences.
// The sensory profile is a free-form document owned by the client.
type UserSettings struct {
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	Theme          ThemeMode       `json:"theme" db:"theme"`
	ReducedMotion  bool            `json:"reduced_motion" db:"reduced_motion"`
	FontScale      float64         `json:"font_scale" db:"font_scale"`
	ColorMode      string          `json:"color_mode" db:"color_mode"`
	SoundEnabled   bool            `json:"sound_enabled" db:"sound_enabled"`
	SensoryProfile json.RawMessage `json:"sensory_profile" db:"sensory_profile"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// DefaultSettings returns the settings applied to a user who has never
// customized anything.
func DefaultSettings(userID uuid.UUID) *UserSettings {
	return &UserSettings{
		UserID:       userID,
		Theme:        ThemeSystem,
		FontScale:    1.0,
		ColorMode:    "default",
		SoundEnabled: true,
	}
}
