package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/config"
	"github.com/focusflow/core/internal/infrastructure/logger"
)

func newTestDispatcher(notifRepo *fakeNotificationRepo, userRepo *fakeUserRepo) *Dispatcher {
	cfg := config.NotificationConfig{
		DispatchInterval: time.Minute,
		BatchSize:        100,
		Channel:          "notifications",
	}
	return NewDispatcher(notifRepo, userRepo, nil, cfg, logger.NewNop())
}

func scheduleAt(repo *fakeNotificationRepo, userID uuid.UUID, typ entities.NotificationType, at time.Time) *entities.Notification {
	n := &entities.Notification{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         typ,
		Priority:     entities.PriorityMedium,
		Title:        "test",
		ScheduledFor: at,
	}
	repo.notifications[n.ID] = n
	return n
}

func TestDispatchDueDelivers(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	userRepo := newFakeUserRepo()
	userID := uuid.New()
	userRepo.users[userID] = &entities.User{ID: userID, Timezone: "UTC"}

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	due := scheduleAt(notifRepo, userID, entities.NotificationReminder, now.Add(-time.Minute))
	notYet := scheduleAt(notifRepo, userID, entities.NotificationReminder, now.Add(time.Hour))

	d := newTestDispatcher(notifRepo, userRepo)
	delivered, err := d.DispatchDue(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, delivered)
	assert.NotNil(t, due.SentAt)
	assert.Nil(t, notYet.SentAt)
}

func TestDispatchDueSuppressesDisabledTypes(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	userRepo := newFakeUserRepo()
	userID := uuid.New()
	userRepo.users[userID] = &entities.User{ID: userID, Timezone: "UTC"}

	prefs := entities.DefaultPreferences(userID)
	prefs.RemindersOff = true
	notifRepo.prefs[userID] = prefs

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	reminder := scheduleAt(notifRepo, userID, entities.NotificationReminder, now.Add(-time.Minute))
	dueDate := scheduleAt(notifRepo, userID, entities.NotificationDueDate, now.Add(-time.Minute))

	d := newTestDispatcher(notifRepo, userRepo)
	delivered, err := d.DispatchDue(context.Background(), now)
	require.NoError(t, err)

	// The disabled reminder is marked handled but not counted as delivered.
	assert.Equal(t, 1, delivered)
	assert.NotNil(t, reminder.SentAt)
	assert.NotNil(t, dueDate.SentAt)

	again, err := d.DispatchDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, again, "suppressed notifications must not resurface")
}

func TestDispatchDueDefersDuringQuietHours(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	userRepo := newFakeUserRepo()
	userID := uuid.New()
	userRepo.users[userID] = &entities.User{ID: userID, Timezone: "UTC"}

	prefs := entities.DefaultPreferences(userID)
	prefs.QuietHours = true
	prefs.QuietStart = "22:00"
	prefs.QuietEnd = "07:00"
	notifRepo.prefs[userID] = prefs

	now := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)
	n := scheduleAt(notifRepo, userID, entities.NotificationReminder, now.Add(-time.Minute))

	d := newTestDispatcher(notifRepo, userRepo)
	delivered, err := d.DispatchDue(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 0, delivered)
	assert.Nil(t, n.SentAt)

	deferred, ok := notifRepo.rescheduled[n.ID]
	require.True(t, ok, "quiet-hours notification must be rescheduled")
	assert.Equal(t, time.Date(2025, 6, 16, 7, 0, 0, 0, time.UTC), deferred)
}

func TestDispatchDueHonorsUserTimezone(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	userRepo := newFakeUserRepo()
	userID := uuid.New()
	// 23:00 UTC is 19:00 in New York, outside the quiet window there.
	userRepo.users[userID] = &entities.User{ID: userID, Timezone: "America/New_York"}

	prefs := entities.DefaultPreferences(userID)
	prefs.QuietHours = true
	prefs.QuietStart = "22:00"
	prefs.QuietEnd = "07:00"
	notifRepo.prefs[userID] = prefs

	now := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	n := scheduleAt(notifRepo, userID, entities.NotificationReminder, now.Add(-time.Minute))

	d := newTestDispatcher(notifRepo, userRepo)
	delivered, err := d.DispatchDue(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, delivered)
	assert.NotNil(t, n.SentAt)
}
