package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/ports"
)

// MoodRepositoryImpl implements the MoodRepository interface
type MoodRepositoryImpl struct {
	db *sqlx.DB
}

// NewMoodRepository creates a new mood repository
func NewMoodRepository(db *sqlx.DB) ports.MoodRepository {
	return &MoodRepositoryImpl{db: db}
}

func (r *MoodRepositoryImpl) Create(ctx context.Context, entry *entities.MoodEntry) error {
	query := `
		INSERT INTO mood_entries (id, user_id, mood, energy, focus, tags, energy_factors, note, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.Mood, entry.Energy, entry.Focus,
		entry.Tags, entry.EnergyFactors, entry.Note, entry.RecordedAt,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("create mood entry: %w", err)
	}

	return nil
}

func (r *MoodRepositoryImpl) List(ctx context.Context, userID uuid.UUID, filter ports.MoodFilter) ([]*entities.MoodEntry, int64, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("recorded_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("recorded_at < $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM mood_entries WHERE ` + where
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count mood entries: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT id, user_id, mood, energy, focus, tags, energy_factors, note, recorded_at, created_at
		FROM mood_entries
		WHERE %s
		ORDER BY recorded_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	var entries []*entities.MoodEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list mood entries: %w", err)
	}

	return entries, total, nil
}

func (r *MoodRepositoryImpl) Summary(ctx context.Context, userID uuid.UUID, from, to time.Time) (*entities.MoodSummary, error) {
	query := `
		SELECT COUNT(*) AS entries,
			COALESCE(AVG(mood), 0) AS avg_mood,
			COALESCE(AVG(energy), 0) AS avg_energy,
			COALESCE(AVG(focus), 0) AS avg_focus
		FROM mood_entries
		WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3`

	summary := &entities.MoodSummary{TagCounts: make(map[string]int)}
	err := r.db.QueryRowContext(ctx, query, userID, from, to).Scan(
		&summary.Entries, &summary.AvgMood, &summary.AvgEnergy, &summary.AvgFocus,
	)
	if err != nil {
		return nil, fmt.Errorf("mood summary: %w", err)
	}

	tagQuery := `
		SELECT tag, COUNT(*) AS count
		FROM mood_entries, unnest(tags) AS tag
		WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		GROUP BY tag
		ORDER BY count DESC`

	rows, err := r.db.QueryContext(ctx, tagQuery, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("mood tag counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag string
		var count int
		if err := rows.Scan(&tag, &count); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		summary.TagCounts[tag] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mood tag rows: %w", err)
	}

	// Dominant energy factor across the window, if any entries carry one.
	factorQuery := `
		SELECT factor
		FROM mood_entries, unnest(energy_factors) AS factor
		WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		GROUP BY factor
		ORDER BY COUNT(*) DESC
		LIMIT 1`

	var top string
	if err := r.db.GetContext(ctx, &top, factorQuery, userID, from, to); err == nil {
		summary.TopEnergyDrain = top
	}

	return summary, nil
}
