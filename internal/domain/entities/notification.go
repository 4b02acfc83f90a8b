package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationReminder    NotificationType = "reminder"
	NotificationDueDate     NotificationType = "due_date"
	NotificationRoutine     NotificationType = "routine"
	NotificationBoardShared NotificationType = "board_shared"
	NotificationSystem      NotificationType = "system"
)

func (nt NotificationType) IsValid() bool {
	switch nt {
	case NotificationReminder, NotificationDueDate, NotificationRoutine,
		NotificationBoardShared, NotificationSystem:
		return true
	default:
		return false
	}
}

// NotificationStatus is derived from the nullable timestamp fields; it is
// never stored directly.
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationRead      NotificationStatus = "read"
	NotificationDismissed NotificationStatus = "dismissed"
)

// Notification is a scheduled message for a user. Delivery state is the
// set of nullable timestamps, interpreted in dismissal > read > sent order.
type Notification struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	UserID       uuid.UUID        `json:"user_id" db:"user_id"`
	Type         NotificationType `json:"type" db:"type"`
	Priority     Priority         `json:"priority" db:"priority"`
	Title        string           `json:"title" db:"title"`
	Body         *string          `json:"body" db:"body"`
	ScheduledFor time.Time        `json:"scheduled_for" db:"scheduled_for"`
	SentAt       *time.Time       `json:"sent_at" db:"sent_at"`
	ReadAt       *time.Time       `json:"read_at" db:"read_at"`
	DismissedAt  *time.Time       `json:"dismissed_at" db:"dismissed_at"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

func (n *Notification) Status() NotificationStatus {
	switch {
	case n.DismissedAt != nil:
		return NotificationDismissed
	case n.ReadAt != nil:
		return NotificationRead
	case n.SentAt != nil:
		return NotificationSent
	default:
		return NotificationPending
	}
}

func (n *Notification) IsDue(now time.Time) bool {
	return n.SentAt == nil && !n.ScheduledFor.After(now)
}

// NotificationPreferences holds per-user delivery settings, including the
// quiet-hours window during which delivery is suppressed.
type NotificationPreferences struct {
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	Enabled         bool      `json:"enabled" db:"enabled"`
	QuietHours      bool      `json:"quiet_hours" db:"quiet_hours"`
	QuietStart      string    `json:"quiet_start" db:"quiet_start"` // "HH:MM"
	QuietEnd        string    `json:"quiet_end" db:"quiet_end"`     // "HH:MM"
	RemindersOff    bool      `json:"reminders_off" db:"reminders_off"`
	DueDatesOff     bool      `json:"due_dates_off" db:"due_dates_off"`
	RoutinesOff     bool      `json:"routines_off" db:"routines_off"`
	BoardSharingOff bool      `json:"board_sharing_off" db:"board_sharing_off"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultPreferences returns delivery settings for a user who never
// customized them: everything on, no quiet hours.
func DefaultPreferences(userID uuid.UUID) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:     userID,
		Enabled:    true,
		QuietStart: "22:00",
		QuietEnd:   "07:00",
	}
}

// Allows reports whether the given notification type may be delivered at
// all under these preferences.
func (p *NotificationPreferences) Allows(t NotificationType) bool {
	if !p.Enabled {
		return false
	}
	switch t {
	case NotificationReminder:
		return !p.RemindersOff
	case NotificationDueDate:
		return !p.DueDatesOff
	case NotificationRoutine:
		return !p.RoutinesOff
	case NotificationBoardShared:
		return !p.BoardSharingOff
	default:
		return true
	}
}

// InQuietHours reports whether t falls inside the configured quiet window.
// The window is [start, end); when start > end it wraps past midnight
// (22:00–06:00 covers late evening and early morning).
func (p *NotificationPreferences) InQuietHours(t time.Time) bool {
	if !p.QuietHours {
		return false
	}
	start, err := parseClock(p.QuietStart)
	if err != nil {
		return false
	}
	end, err := parseClock(p.QuietEnd)
	if err != nil {
		return false
	}
	if start == end {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	if start < end {
		return now >= start && now < end
	}
	// Overnight wraparound.
	return now >= start || now < end
}

// QuietHoursEnd returns the next moment at or after t when the quiet
// window closes. If t is outside the window it is returned unchanged.
func (p *NotificationPreferences) QuietHoursEnd(t time.Time) time.Time {
	if !p.InQuietHours(t) {
		return t
	}
	end, err := parseClock(p.QuietEnd)
	if err != nil {
		return t
	}
	endToday := time.Date(t.Year(), t.Month(), t.Day(), end/60, end%60, 0, 0, t.Location())
	if !endToday.After(t) {
		endToday = endToday.Add(24 * time.Hour)
	}
	return endToday
}

// parseClock converts "HH:MM" to minutes past midnight.
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}
