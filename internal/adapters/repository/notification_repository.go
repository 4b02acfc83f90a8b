package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/ports"
)

const notificationColumns = `id, user_id, type, priority, title, body, scheduled_for,
	sent_at, read_at, dismissed_at, created_at`

// NotificationRepositoryImpl implements the NotificationRepository interface
type NotificationRepositoryImpl struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlx.DB) ports.NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, n *entities.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, priority, title, body, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Priority, n.Title, n.Body, n.ScheduledFor,
	).Scan(&n.CreatedAt)

	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *NotificationRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	var n entities.Notification
	err := r.db.GetContext(ctx, &n, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}

	return &n, nil
}

func (r *NotificationRepositoryImpl) List(ctx context.Context, userID uuid.UUID, filter ports.NotificationFilter) ([]*entities.Notification, int64, error) {
	conditions := []string{"user_id = $1", "dismissed_at IS NULL"}
	args := []interface{}{userID}

	if filter.UnreadOnly {
		conditions = append(conditions, "read_at IS NULL", "sent_at IS NOT NULL")
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM notifications WHERE ` + where
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE %s
		ORDER BY scheduled_for DESC
		LIMIT $%d OFFSET $%d`, notificationColumns, where, len(args)-1, len(args))

	var notifications []*entities.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, total, nil
}

func (r *NotificationRepositoryImpl) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE notifications SET sent_at = $2 WHERE id = $1 AND sent_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrNotificationNotFound
	}

	return nil
}

func (r *NotificationRepositoryImpl) Reschedule(ctx context.Context, id uuid.UUID, to time.Time) error {
	query := `UPDATE notifications SET scheduled_for = $2 WHERE id = $1 AND sent_at IS NULL`

	_, err := r.db.ExecContext(ctx, query, id, to)
	if err != nil {
		return fmt.Errorf("reschedule notification: %w", err)
	}

	return nil
}

func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	query := `
		UPDATE notifications SET read_at = $3
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, userID, at)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrNotificationNotFound
	}

	return nil
}

func (r *NotificationRepositoryImpl) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	query := `
		UPDATE notifications SET read_at = $2
		WHERE user_id = $1 AND read_at IS NULL AND dismissed_at IS NULL AND sent_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query, userID, at)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return updated, nil
}

func (r *NotificationRepositoryImpl) Dismiss(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	query := `
		UPDATE notifications SET dismissed_at = $3
		WHERE id = $1 AND user_id = $2 AND dismissed_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, userID, at)
	if err != nil {
		return fmt.Errorf("dismiss notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrNotificationNotFound
	}

	return nil
}

func (r *NotificationRepositoryImpl) DueBefore(ctx context.Context, t time.Time, limit int) ([]*entities.Notification, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE sent_at IS NULL AND dismissed_at IS NULL AND scheduled_for <= $1
		ORDER BY scheduled_for
		LIMIT $2`

	var notifications []*entities.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, t, limit); err != nil {
		return nil, fmt.Errorf("due notifications: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepositoryImpl) GetPreferences(ctx context.Context, userID uuid.UUID) (*entities.NotificationPreferences, error) {
	query := `
		SELECT user_id, enabled, quiet_hours, quiet_start, quiet_end,
			reminders_off, due_dates_off, routines_off, board_sharing_off, updated_at
		FROM notification_preferences
		WHERE user_id = $1`

	var prefs entities.NotificationPreferences
	err := r.db.GetContext(ctx, &prefs, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return entities.DefaultPreferences(userID), nil
		}
		return nil, fmt.Errorf("get notification preferences: %w", err)
	}

	return &prefs, nil
}

func (r *NotificationRepositoryImpl) UpsertPreferences(ctx context.Context, prefs *entities.NotificationPreferences) error {
	query := `
		INSERT INTO notification_preferences
			(user_id, enabled, quiet_hours, quiet_start, quiet_end, reminders_off, due_dates_off, routines_off, board_sharing_off)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			quiet_hours = EXCLUDED.quiet_hours,
			quiet_start = EXCLUDED.quiet_start,
			quiet_end = EXCLUDED.quiet_end,
			reminders_off = EXCLUDED.reminders_off,
			due_dates_off = EXCLUDED.due_dates_off,
			routines_off = EXCLUDED.routines_off,
			board_sharing_off = EXCLUDED.board_sharing_off,
			updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		prefs.UserID, prefs.Enabled, prefs.QuietHours, prefs.QuietStart, prefs.QuietEnd,
		prefs.RemindersOff, prefs.DueDatesOff, prefs.RoutinesOff, prefs.BoardSharingOff,
	).Scan(&prefs.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert notification preferences: %w", err)
	}

	return nil
}
