package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNotificationStatus(t *testing.T) {
	now := time.Now()

	n := &Notification{}
	assert.Equal(t, NotificationPending, n.Status())

	n.SentAt = &now
	assert.Equal(t, NotificationSent, n.Status())

	n.ReadAt = &now
	assert.Equal(t, NotificationRead, n.Status())

	// Dismissal wins over everything else.
	n.DismissedAt = &now
	assert.Equal(t, NotificationDismissed, n.Status())
}

func TestNotificationIsDue(t *testing.T) {
	now := time.Now()

	n := &Notification{ScheduledFor: now.Add(-time.Minute)}
	assert.True(t, n.IsDue(now))

	n.ScheduledFor = now.Add(time.Minute)
	assert.False(t, n.IsDue(now))

	n.ScheduledFor = now.Add(-time.Minute)
	n.SentAt = &now
	assert.False(t, n.IsDue(now), "already sent notifications are never due")
}

func TestPreferencesAllows(t *testing.T) {
	prefs := DefaultPreferences(uuid.New())
	assert.True(t, prefs.Allows(NotificationReminder))
	assert.True(t, prefs.Allows(NotificationSystem))

	prefs.RemindersOff = true
	assert.False(t, prefs.Allows(NotificationReminder))
	assert.True(t, prefs.Allows(NotificationDueDate))

	prefs.BoardSharingOff = true
	assert.False(t, prefs.Allows(NotificationBoardShared))

	prefs.Enabled = false
	assert.False(t, prefs.Allows(NotificationSystem), "master switch off blocks every type")
}

func clock(hour, minute int) time.Time {
	return time.Date(2025, 6, 15, hour, minute, 0, 0, time.UTC)
}

func TestInQuietHours(t *testing.T) {
	prefs := &NotificationPreferences{
		QuietHours: true,
		QuietStart: "22:00",
		QuietEnd:   "07:00",
	}

	t.Run("overnight window", func(t *testing.T) {
		assert.True(t, prefs.InQuietHours(clock(23, 30)))
		assert.True(t, prefs.InQuietHours(clock(2, 0)))
		assert.True(t, prefs.InQuietHours(clock(22, 0)), "start is inclusive")
		assert.False(t, prefs.InQuietHours(clock(7, 0)), "end is exclusive")
		assert.False(t, prefs.InQuietHours(clock(12, 0)))
		assert.False(t, prefs.InQuietHours(clock(21, 59)))
	})

	t.Run("same day window", func(t *testing.T) {
		prefs := &NotificationPreferences{QuietHours: true, QuietStart: "13:00", QuietEnd: "15:00"}
		assert.True(t, prefs.InQuietHours(clock(14, 0)))
		assert.False(t, prefs.InQuietHours(clock(15, 0)))
		assert.False(t, prefs.InQuietHours(clock(12, 59)))
	})

	t.Run("disabled", func(t *testing.T) {
		prefs := &NotificationPreferences{QuietHours: false, QuietStart: "00:00", QuietEnd: "23:59"}
		assert.False(t, prefs.InQuietHours(clock(12, 0)))
	})

	t.Run("degenerate window", func(t *testing.T) {
		prefs := &NotificationPreferences{QuietHours: true, QuietStart: "09:00", QuietEnd: "09:00"}
		assert.False(t, prefs.InQuietHours(clock(9, 0)))
	})

	t.Run("unparseable times fail open", func(t *testing.T) {
		prefs := &NotificationPreferences{QuietHours: true, QuietStart: "bogus", QuietEnd: "07:00"}
		assert.False(t, prefs.InQuietHours(clock(23, 0)))
	})
}

func TestQuietHoursEnd(t *testing.T) {
	prefs := &NotificationPreferences{
		QuietHours: true,
		QuietStart: "22:00",
		QuietEnd:   "07:00",
	}

	t.Run("late evening defers to next morning", func(t *testing.T) {
		at := clock(23, 30)
		end := prefs.QuietHoursEnd(at)
		assert.Equal(t, clock(7, 0).Add(24*time.Hour), end)
	})

	t.Run("early morning defers to same morning", func(t *testing.T) {
		at := clock(3, 0)
		end := prefs.QuietHoursEnd(at)
		assert.Equal(t, clock(7, 0), end)
	})

	t.Run("outside window unchanged", func(t *testing.T) {
		at := clock(12, 0)
		assert.Equal(t, at, prefs.QuietHoursEnd(at))
	})
}
