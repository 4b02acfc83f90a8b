package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/cache"
	"github.com/focusflow/core/internal/infrastructure/config"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

// NotificationEvent is the payload published for each delivered
// notification; realtime consumers fan it out to connected clients.
type NotificationEvent struct {
	UserID       uuid.UUID              `json:"user_id"`
	Notification *entities.Notification `json:"notification"`
}

// Dispatcher periodically scans for due notifications and delivers them,
// honoring per-user preferences and quiet hours.
type Dispatcher struct {
	notifRepo ports.NotificationRepository
	userRepo  ports.UserRepository
	redis     *cache.Redis
	config    config.NotificationConfig
	logger    *logger.Logger
	stop      chan struct{}
	done      chan struct{}
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(notifRepo ports.NotificationRepository, userRepo ports.UserRepository, redis *cache.Redis, cfg config.NotificationConfig, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		redis:     redis,
		config:    cfg,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the dispatch loop until Stop is called or the context ends
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		defer close(d.done)

		ticker := time.NewTicker(d.config.DispatchInterval)
		defer ticker.Stop()

		d.logger.Info("Notification dispatcher started", "interval", d.config.DispatchInterval)

		for {
			select {
			case <-ctx.Done():
				return
			case <-d.stop:
				return
			case <-ticker.C:
				if delivered, err := d.DispatchDue(ctx, time.Now()); err != nil {
					d.logger.Error("Dispatch cycle failed", "error", err)
				} else if delivered > 0 {
					d.logger.Info("Notifications dispatched", "count", delivered)
				}
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it to finish
func (d *Dispatcher) Stop() {
	close(d.stop)
	<-d.done
	d.logger.Info("Notification dispatcher stopped")
}

// DispatchDue processes one batch of due notifications. Notifications
// whose type the user disabled are suppressed; those falling inside the
// user's quiet hours are deferred to the end of the window.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	due, err := d.notifRepo.DueBefore(ctx, now, d.config.BatchSize)
	if err != nil {
		return 0, err
	}

	prefsByUser := make(map[uuid.UUID]*entities.NotificationPreferences)
	locByUser := make(map[uuid.UUID]*time.Location)
	delivered := 0

	for _, n := range due {
		prefs, ok := prefsByUser[n.UserID]
		if !ok {
			prefs, err = d.notifRepo.GetPreferences(ctx, n.UserID)
			if err != nil {
				d.logger.Warn("Failed to load preferences", "error", err, "user_id", n.UserID)
				continue
			}
			prefsByUser[n.UserID] = prefs
		}

		if !prefs.Allows(n.Type) {
			// Suppressed by preference; mark handled so it never resurfaces.
			if err := d.notifRepo.MarkSent(ctx, n.ID, now); err != nil {
				d.logger.Warn("Failed to suppress notification", "error", err, "notification_id", n.ID)
			}
			continue
		}

		loc, ok := locByUser[n.UserID]
		if !ok {
			loc = time.UTC
			if user, err := d.userRepo.GetByID(ctx, n.UserID); err == nil {
				loc = user.Location()
			}
			locByUser[n.UserID] = loc
		}

		localNow := now.In(loc)
		if prefs.InQuietHours(localNow) {
			deferred := prefs.QuietHoursEnd(localNow)
			if err := d.notifRepo.Reschedule(ctx, n.ID, deferred); err != nil {
				d.logger.Warn("Failed to defer notification", "error", err, "notification_id", n.ID)
			}
			continue
		}

		if err := d.notifRepo.MarkSent(ctx, n.ID, now); err != nil {
			d.logger.Warn("Failed to mark notification sent", "error", err, "notification_id", n.ID)
			continue
		}
		sent := now
		n.SentAt = &sent
		delivered++

		if d.redis != nil {
			event := NotificationEvent{UserID: n.UserID, Notification: n}
			if err := d.redis.Publish(ctx, d.config.Channel, event); err != nil {
				d.logger.Warn("Failed to publish notification event", "error", err, "notification_id", n.ID)
			}
		}
	}

	return delivered, nil
}
