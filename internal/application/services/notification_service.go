package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

// NotificationService handles scheduling and lifecycle of notifications
type NotificationService struct {
	notifRepo ports.NotificationRepository
	logger    *logger.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifRepo ports.NotificationRepository, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		logger:    logger,
	}
}

// Schedule creates a notification. Without an explicit time it is
// scheduled immediately.
func (s *NotificationService) Schedule(ctx context.Context, userID uuid.UUID, req ports.CreateNotificationRequest) (*entities.Notification, error) {
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("invalid notification type %s", req.Type)
	}

	priority := req.Priority
	if priority == "" {
		priority = entities.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority %s", priority)
	}

	scheduledFor := time.Now()
	if req.ScheduledFor != nil {
		scheduledFor = *req.ScheduledFor
	}

	n := &entities.Notification{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         req.Type,
		Priority:     priority,
		Title:        req.Title,
		Body:         req.Body,
		ScheduledFor: scheduledFor,
	}

	if err := s.notifRepo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Info("Notification scheduled", "notification_id", n.ID, "user_id", userID, "type", n.Type, "scheduled_for", scheduledFor)
	return n, nil
}

// List returns the user's notifications, dismissed ones excluded
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter ports.NotificationFilter) ([]*entities.Notification, int64, error) {
	return s.notifRepo.List(ctx, userID, filter)
}

// MarkRead marks one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.notifRepo.MarkRead(ctx, notificationID, userID, time.Now())
}

// MarkAllRead marks every delivered, unread notification as read and
// returns how many were affected
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.MarkAllRead(ctx, userID, time.Now())
}

// Dismiss hides a notification from all listings
func (s *NotificationService) Dismiss(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.notifRepo.Dismiss(ctx, notificationID, userID, time.Now())
}

// GetPreferences returns the user's delivery preferences
func (s *NotificationService) GetPreferences(ctx context.Context, userID uuid.UUID) (*entities.NotificationPreferences, error) {
	return s.notifRepo.GetPreferences(ctx, userID)
}

// UpdatePreferences applies partial preference updates
func (s *NotificationService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req ports.UpdatePreferencesRequest) (*entities.NotificationPreferences, error) {
	prefs, err := s.notifRepo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Enabled != nil {
		prefs.Enabled = *req.Enabled
	}
	if req.QuietHours != nil {
		prefs.QuietHours = *req.QuietHours
	}
	if req.QuietStart != nil {
		prefs.QuietStart = *req.QuietStart
	}
	if req.QuietEnd != nil {
		prefs.QuietEnd = *req.QuietEnd
	}
	if req.RemindersOff != nil {
		prefs.RemindersOff = *req.RemindersOff
	}
	if req.DueDatesOff != nil {
		prefs.DueDatesOff = *req.DueDatesOff
	}
	if req.RoutinesOff != nil {
		prefs.RoutinesOff = *req.RoutinesOff
	}
	if req.BoardSharingOff != nil {
		prefs.BoardSharingOff = *req.BoardSharingOff
	}

	if prefs.QuietHours {
		if err := validateQuietWindow(prefs.QuietStart, prefs.QuietEnd); err != nil {
			return nil, err
		}
	}

	prefs.UserID = userID
	if err := s.notifRepo.UpsertPreferences(ctx, prefs); err != nil {
		return nil, err
	}

	s.logger.Info("Notification preferences updated", "user_id", userID)
	return prefs, nil
}

func validateQuietWindow(start, end string) error {
	for _, v := range []string{start, end} {
		var h, m int
		if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
			return fmt.Errorf("invalid quiet-hours time %q", v)
		}
		if h < 0 || h > 23 || m < 0 || m > 59 {
			return fmt.Errorf("quiet-hours time %q out of range", v)
		}
	}
	if start == end {
		return entities.ErrInvalidTimeRange
	}
	return nil
}
