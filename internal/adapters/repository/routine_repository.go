package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/ports"
)

const routineColumns = `id, owner_id, name, time_of_day, total_duration, flexibility_score,
	created_at, updated_at, deleted_at`

// RoutineRepositoryImpl implements the RoutineRepository interface
type RoutineRepositoryImpl struct {
	db *sqlx.DB
}

// NewRoutineRepository creates a new routine repository
func NewRoutineRepository(db *sqlx.DB) ports.RoutineRepository {
	return &RoutineRepositoryImpl{db: db}
}

func (r *RoutineRepositoryImpl) Create(ctx context.Context, routine *entities.Routine) error {
	query := `
		INSERT INTO routines (id, owner_id, name, time_of_day, total_duration, flexibility_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	if routine.ID == uuid.Nil {
		routine.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		routine.ID, routine.OwnerID, routine.Name, routine.TimeOfDay,
		routine.TotalDuration, routine.FlexibilityScore,
	).Scan(&routine.CreatedAt, &routine.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create routine: %w", err)
	}

	return nil
}

func (r *RoutineRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Routine, error) {
	query := `SELECT ` + routineColumns + ` FROM routines WHERE id = $1 AND deleted_at IS NULL`

	var routine entities.Routine
	err := r.db.GetContext(ctx, &routine, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrRoutineNotFound
		}
		return nil, fmt.Errorf("get routine by id: %w", err)
	}

	return &routine, nil
}

func (r *RoutineRepositoryImpl) GetWithSteps(ctx context.Context, id uuid.UUID) (*entities.Routine, error) {
	routine, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	steps, err := r.ListSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	routine.Steps = steps

	return routine, nil
}

func (r *RoutineRepositoryImpl) Update(ctx context.Context, routine *entities.Routine) error {
	query := `
		UPDATE routines
		SET name = $2, time_of_day = $3, total_duration = $4, flexibility_score = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		routine.ID, routine.Name, routine.TimeOfDay,
		routine.TotalDuration, routine.FlexibilityScore,
	).Scan(&routine.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrRoutineNotFound
		}
		return fmt.Errorf("update routine: %w", err)
	}

	return nil
}

func (r *RoutineRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE routines SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete routine: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrRoutineNotFound
	}

	return nil
}

func (r *RoutineRepositoryImpl) List(ctx context.Context, ownerID uuid.UUID) ([]*entities.Routine, error) {
	query := `SELECT ` + routineColumns + `
		FROM routines
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	var routines []*entities.Routine
	if err := r.db.SelectContext(ctx, &routines, query, ownerID); err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}

	return routines, nil
}

func (r *RoutineRepositoryImpl) AddStep(ctx context.Context, step *entities.RoutineStep) error {
	query := `
		INSERT INTO routine_steps (id, routine_id, title, position, duration_minutes, is_optional, icon)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		step.ID, step.RoutineID, step.Title, step.Position,
		step.DurationMinutes, step.IsOptional, step.Icon,
	).Scan(&step.CreatedAt)

	if err != nil {
		return fmt.Errorf("add routine step: %w", err)
	}

	return nil
}

func (r *RoutineRepositoryImpl) UpdateStep(ctx context.Context, step *entities.RoutineStep) error {
	query := `
		UPDATE routine_steps
		SET title = $2, position = $3, duration_minutes = $4, is_optional = $5, icon = $6
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		step.ID, step.Title, step.Position, step.DurationMinutes, step.IsOptional, step.Icon,
	)
	if err != nil {
		return fmt.Errorf("update routine step: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrStepNotFound
	}

	return nil
}

func (r *RoutineRepositoryImpl) DeleteStep(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM routine_steps WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete routine step: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrStepNotFound
	}

	return nil
}

func (r *RoutineRepositoryImpl) ListSteps(ctx context.Context, routineID uuid.UUID) ([]entities.RoutineStep, error) {
	query := `
		SELECT id, routine_id, title, position, duration_minutes, is_optional, icon, created_at
		FROM routine_steps
		WHERE routine_id = $1
		ORDER BY position`

	var steps []entities.RoutineStep
	if err := r.db.SelectContext(ctx, &steps, query, routineID); err != nil {
		return nil, fmt.Errorf("list routine steps: %w", err)
	}

	return steps, nil
}

func (r *RoutineRepositoryImpl) CreateAnchor(ctx context.Context, anchor *entities.Anchor) error {
	query := `
		INSERT INTO anchors (id, owner_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	if anchor.ID == uuid.Nil {
		anchor.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query, anchor.ID, anchor.OwnerID, anchor.Name).Scan(&anchor.CreatedAt)
	if err != nil {
		return fmt.Errorf("create anchor: %w", err)
	}

	stepQuery := `
		INSERT INTO anchor_steps (id, anchor_id, title, position, duration_minutes, is_optional, icon)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i := range anchor.Steps {
		s := &anchor.Steps[i]
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.AnchorID = anchor.ID
		if _, err := r.db.ExecContext(ctx, stepQuery,
			s.ID, s.AnchorID, s.Title, s.Position, s.DurationMinutes, s.IsOptional, s.Icon,
		); err != nil {
			return fmt.Errorf("create anchor step: %w", err)
		}
	}

	return nil
}

func (r *RoutineRepositoryImpl) GetAnchor(ctx context.Context, id uuid.UUID) (*entities.Anchor, error) {
	query := `SELECT id, owner_id, name, created_at FROM anchors WHERE id = $1`

	var anchor entities.Anchor
	err := r.db.GetContext(ctx, &anchor, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrAnchorNotFound
		}
		return nil, fmt.Errorf("get anchor: %w", err)
	}

	stepQuery := `
		SELECT id, anchor_id, title, position, duration_minutes, is_optional, icon
		FROM anchor_steps
		WHERE anchor_id = $1
		ORDER BY position`

	if err := r.db.SelectContext(ctx, &anchor.Steps, stepQuery, id); err != nil {
		return nil, fmt.Errorf("get anchor steps: %w", err)
	}

	return &anchor, nil
}

func (r *RoutineRepositoryImpl) ListAnchors(ctx context.Context, ownerID uuid.UUID) ([]*entities.Anchor, error) {
	query := `SELECT id, owner_id, name, created_at FROM anchors WHERE owner_id = $1 ORDER BY name`

	var anchors []*entities.Anchor
	if err := r.db.SelectContext(ctx, &anchors, query, ownerID); err != nil {
		return nil, fmt.Errorf("list anchors: %w", err)
	}

	return anchors, nil
}

func (r *RoutineRepositoryImpl) DeleteAnchor(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM anchors WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete anchor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrAnchorNotFound
	}

	return nil
}
