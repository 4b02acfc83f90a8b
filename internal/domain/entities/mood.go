package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/lib/pq"
)

// MoodEntry is a single append-only mood/energy/focus log record.
// Entries are never updated; corrections are new entries.
type MoodEntry struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	UserID        uuid.UUID      `json:"user_id" db:"user_id"`
	Mood          int            `json:"mood" db:"mood"`     // 1-5
	Energy        int            `json:"energy" db:"energy"` // 1-5
	Focus         int            `json:"focus" db:"focus"`   // 1-5
	Tags          pq.StringArray `json:"tags" db:"tags"`
	EnergyFactors pq.StringArray `json:"energy_factors" db:"energy_factors"`
	Note          *string        `json:"note" db:"note"`
	RecordedAt    time.Time      `json:"recorded_at" db:"recorded_at"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}

// ValidScale reports whether a mood/energy/focus rating is on the 1-5 scale.
func ValidScale(v int) bool {
	return v >= 1 && v <= 5
}

// MoodSummary aggregates entries over a window.
type MoodSummary struct {
	WindowDays     int            `json:"window_days"`
	Entries        int            `json:"entries"`
	AvgMood        float64        `json:"avg_mood"`
	AvgEnergy      float64        `json:"avg_energy"`
	AvgFocus       float64        `json:"avg_focus"`
	TagCounts      map[string]int `json:"tag_counts"`
	TopEnergyDrain string         `json:"top_energy_drain,omitempty"`
}
