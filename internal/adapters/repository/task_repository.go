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

const taskColumns = `id, owner_id, title, description, status, priority, quadrant, position,
	due_date, estimated_duration, energy_required, focus_required, completed_at,
	created_at, updated_at, deleted_at`

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (id, owner_id, title, description, status, priority, quadrant, position,
			due_date, estimated_duration, energy_required, focus_required)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.Title, task.Description, task.Status,
		task.Priority, task.Quadrant, task.Position, task.DueDate,
		task.EstimatedDuration, task.EnergyRequired, task.FocusRequired,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND deleted_at IS NULL`

	var task entities.Task
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return &task, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, quadrant = $6,
			position = $7, due_date = $8, estimated_duration = $9, energy_required = $10,
			focus_required = $11, completed_at = $12, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.Quadrant, task.Position, task.DueDate, task.EstimatedDuration,
		task.EnergyRequired, task.FocusRequired, task.CompletedAt,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) Move(ctx context.Context, id uuid.UUID, quadrant entities.Quadrant, position int) error {
	query := `
		UPDATE tasks
		SET quadrant = $2, position = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, quadrant, position)
	if err != nil {
		return fmt.Errorf("move task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tasks SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, ownerID uuid.UUID, filter ports.TaskFilter) ([]*entities.Task, int64, error) {
	conditions := []string{"owner_id = $1", "deleted_at IS NULL"}
	args := []interface{}{ownerID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Quadrant != nil {
		args = append(args, *filter.Quadrant)
		conditions = append(conditions, fmt.Sprintf("quadrant = $%d", len(args)))
	}
	if filter.Energy != nil {
		args = append(args, *filter.Energy)
		conditions = append(conditions, fmt.Sprintf("energy_required = $%d", len(args)))
	}
	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		conditions = append(conditions, fmt.Sprintf("due_date IS NOT NULL AND due_date < $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM tasks WHERE ` + where
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s
		ORDER BY quadrant, position, created_at
		LIMIT $%d OFFSET $%d`, taskColumns, where, len(args)-1, len(args))

	var tasks []*entities.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, total, nil
}

func (r *TaskRepositoryImpl) MatrixSummary(ctx context.Context, ownerID uuid.UUID) (*entities.MatrixSummary, error) {
	query := `
		SELECT quadrant, COUNT(*) AS count
		FROM tasks
		WHERE owner_id = $1 AND deleted_at IS NULL AND status NOT IN ('done', 'archived')
		GROUP BY quadrant`

	rows, err := r.db.QueryxContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("matrix summary: %w", err)
	}
	defer rows.Close()

	summary := &entities.MatrixSummary{Quadrants: make(map[entities.Quadrant]int)}
	for rows.Next() {
		var quadrant entities.Quadrant
		var count int
		if err := rows.Scan(&quadrant, &count); err != nil {
			return nil, fmt.Errorf("scan matrix row: %w", err)
		}
		summary.Quadrants[quadrant] = count
		summary.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("matrix summary rows: %w", err)
	}

	extrasQuery := `
		SELECT
			COUNT(*) FILTER (WHERE due_date < CURRENT_TIMESTAMP) AS overdue,
			COUNT(*) FILTER (WHERE due_date::date = CURRENT_DATE) AS due_today
		FROM tasks
		WHERE owner_id = $1 AND deleted_at IS NULL AND status NOT IN ('done', 'archived')
			AND due_date IS NOT NULL`

	if err := r.db.QueryRowContext(ctx, extrasQuery, ownerID).Scan(&summary.Overdue, &summary.DueToday); err != nil {
		return nil, fmt.Errorf("matrix summary extras: %w", err)
	}

	return summary, nil
}

func (r *TaskRepositoryImpl) DueSoon(ctx context.Context, ownerID uuid.UUID, within time.Duration) ([]*entities.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1 AND deleted_at IS NULL AND status NOT IN ('done', 'archived')
			AND due_date IS NOT NULL AND due_date <= $2
		ORDER BY due_date`

	var tasks []*entities.Task
	err := r.db.SelectContext(ctx, &tasks, query, ownerID, time.Now().Add(within))
	if err != nil {
		return nil, fmt.Errorf("due soon tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) NextPosition(ctx context.Context, ownerID uuid.UUID, quadrant entities.Quadrant) (int, error) {
	query := `
		SELECT COALESCE(MAX(position) + 1, 0)
		FROM tasks
		WHERE owner_id = $1 AND quadrant = $2 AND deleted_at IS NULL`

	var position int
	if err := r.db.GetContext(ctx, &position, query, ownerID, quadrant); err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}

	return position, nil
}
