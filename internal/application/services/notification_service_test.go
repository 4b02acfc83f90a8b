package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

func newTestNotificationService(repo *fakeNotificationRepo) *NotificationService {
	return NewNotificationService(repo, logger.NewNop())
}

func TestScheduleNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("defaults", func(t *testing.T) {
		before := time.Now()
		n, err := svc.Schedule(ctx, userID, ports.CreateNotificationRequest{
			Type:  entities.NotificationReminder,
			Title: "Stretch break",
		})
		require.NoError(t, err)
		assert.Equal(t, entities.PriorityMedium, n.Priority)
		assert.False(t, n.ScheduledFor.Before(before), "defaults to immediate delivery")
		assert.Equal(t, entities.NotificationPending, n.Status())
	})

	t.Run("explicit schedule time", func(t *testing.T) {
		at := time.Now().Add(2 * time.Hour)
		n, err := svc.Schedule(ctx, userID, ports.CreateNotificationRequest{
			Type:         entities.NotificationDueDate,
			Title:        "Taxes due",
			ScheduledFor: &at,
		})
		require.NoError(t, err)
		assert.Equal(t, at, n.ScheduledFor)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := svc.Schedule(ctx, userID, ports.CreateNotificationRequest{
			Type:  "carrier_pigeon",
			Title: "x",
		})
		assert.Error(t, err)
	})
}

func TestMarkAllRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()

	sent := time.Now().Add(-time.Minute)
	delivered := scheduleAt(repo, userID, entities.NotificationReminder, sent)
	delivered.SentAt = &sent
	scheduleAt(repo, userID, entities.NotificationReminder, time.Now().Add(time.Hour))

	updated, err := svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated, "only delivered notifications become read")
	assert.NotNil(t, delivered.ReadAt)
}

func TestUpdatePreferences(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("partial update", func(t *testing.T) {
		on := true
		start := "21:00"
		prefs, err := svc.UpdatePreferences(ctx, userID, ports.UpdatePreferencesRequest{
			QuietHours: &on,
			QuietStart: &start,
		})
		require.NoError(t, err)
		assert.True(t, prefs.QuietHours)
		assert.Equal(t, "21:00", prefs.QuietStart)
		assert.Equal(t, "07:00", prefs.QuietEnd, "untouched fields keep their values")
	})

	t.Run("degenerate quiet window rejected", func(t *testing.T) {
		on := true
		same := "09:00"
		_, err := svc.UpdatePreferences(ctx, userID, ports.UpdatePreferencesRequest{
			QuietHours: &on,
			QuietStart: &same,
			QuietEnd:   &same,
		})
		assert.ErrorIs(t, err, entities.ErrInvalidTimeRange)
	})

	t.Run("unparseable time rejected", func(t *testing.T) {
		on := true
		bad := "25:00"
		_, err := svc.UpdatePreferences(ctx, userID, ports.UpdatePreferencesRequest{
			QuietHours: &on,
			QuietStart: &bad,
		})
		assert.Error(t, err)
	})
}
