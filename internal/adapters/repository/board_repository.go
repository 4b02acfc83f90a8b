package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/ports"
)

const boardColumns = `id, owner_id, title, description, board_type, layout, is_template,
	created_at, updated_at, deleted_at`

const stepColumns = `id, board_id, title, position, duration_seconds, is_optional,
	visual, timer, transition, created_at, updated_at`

// BoardRepositoryImpl implements the BoardRepository interface
type BoardRepositoryImpl struct {
	db *sqlx.DB
}

// NewBoardRepository creates a new board repository
func NewBoardRepository(db *sqlx.DB) ports.BoardRepository {
	return &BoardRepositoryImpl{db: db}
}

func (r *BoardRepositoryImpl) Create(ctx context.Context, board *entities.Board) error {
	query := `
		INSERT INTO boards (id, owner_id, title, description, board_type, layout, is_template)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	if board.ID == uuid.Nil {
		board.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		board.ID, board.OwnerID, board.Title, board.Description,
		board.BoardType, board.Layout, board.IsTemplate,
	).Scan(&board.CreatedAt, &board.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}

	return nil
}

func (r *BoardRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE id = $1 AND deleted_at IS NULL`

	var board entities.Board
	err := r.db.GetContext(ctx, &board, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrBoardNotFound
		}
		return nil, fmt.Errorf("get board by id: %w", err)
	}

	return &board, nil
}

func (r *BoardRepositoryImpl) GetWithSteps(ctx context.Context, id uuid.UUID) (*entities.Board, error) {
	board, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	steps, err := r.ListSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	board.Steps = steps

	return board, nil
}

func (r *BoardRepositoryImpl) Update(ctx context.Context, board *entities.Board) error {
	query := `
		UPDATE boards
		SET title = $2, description = $3, layout = $4, is_template = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		board.ID, board.Title, board.Description, board.Layout, board.IsTemplate,
	).Scan(&board.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrBoardNotFound
		}
		return fmt.Errorf("update board: %w", err)
	}

	return nil
}

func (r *BoardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE boards SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrBoardNotFound
	}

	return nil
}

func (r *BoardRepositoryImpl) List(ctx context.Context, ownerID uuid.UUID, templatesOnly bool) ([]*entities.Board, error) {
	query := `SELECT ` + boardColumns + `
		FROM boards
		WHERE owner_id = $1 AND deleted_at IS NULL AND ($2 = false OR is_template)
		ORDER BY created_at DESC`

	var boards []*entities.Board
	if err := r.db.SelectContext(ctx, &boards, query, ownerID, templatesOnly); err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	return boards, nil
}

func (r *BoardRepositoryImpl) ListSharedWith(ctx context.Context, userID uuid.UUID) ([]*entities.Board, error) {
	query := `
		SELECT b.id, b.owner_id, b.title, b.description, b.board_type, b.layout,
			b.is_template, b.created_at, b.updated_at, b.deleted_at
		FROM boards b
		JOIN board_collaborators c ON c.board_id = b.id
		WHERE c.user_id = $1 AND b.owner_id <> $1 AND b.deleted_at IS NULL
		ORDER BY b.created_at DESC`

	var boards []*entities.Board
	if err := r.db.SelectContext(ctx, &boards, query, userID); err != nil {
		return nil, fmt.Errorf("list shared boards: %w", err)
	}

	return boards, nil
}

func (r *BoardRepositoryImpl) AddStep(ctx context.Context, step *entities.BoardStep) error {
	return r.addStep(ctx, r.db, step)
}

func (r *BoardRepositoryImpl) AddStepTx(ctx context.Context, tx *sqlx.Tx, step *entities.BoardStep) error {
	return r.addStep(ctx, tx, step)
}

func (r *BoardRepositoryImpl) addStep(ctx context.Context, q sqlx.QueryerContext, step *entities.BoardStep) error {
	query := `
		INSERT INTO board_steps (id, board_id, title, position, duration_seconds, is_optional, visual, timer, transition)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}

	err := q.QueryRowxContext(ctx, query,
		step.ID, step.BoardID, step.Title, step.Position, step.DurationSeconds,
		step.IsOptional, nullableJSON(step.Visual), nullableJSON(step.Timer), nullableJSON(step.Transition),
	).Scan(&step.CreatedAt, &step.UpdatedAt)

	if err != nil {
		return fmt.Errorf("add board step: %w", err)
	}

	return nil
}

func (r *BoardRepositoryImpl) GetStep(ctx context.Context, id uuid.UUID) (*entities.BoardStep, error) {
	query := `SELECT ` + stepColumns + ` FROM board_steps WHERE id = $1`

	var step entities.BoardStep
	err := r.db.GetContext(ctx, &step, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrStepNotFound
		}
		return nil, fmt.Errorf("get board step: %w", err)
	}

	return &step, nil
}

func (r *BoardRepositoryImpl) UpdateStep(ctx context.Context, step *entities.BoardStep) error {
	query := `
		UPDATE board_steps
		SET title = $2, duration_seconds = $3, is_optional = $4, visual = $5,
			timer = $6, transition = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		step.ID, step.Title, step.DurationSeconds, step.IsOptional,
		nullableJSON(step.Visual), nullableJSON(step.Timer), nullableJSON(step.Transition),
	).Scan(&step.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrStepNotFound
		}
		return fmt.Errorf("update board step: %w", err)
	}

	return nil
}

func (r *BoardRepositoryImpl) ReorderSteps(ctx context.Context, boardID uuid.UUID, orderedIDs []uuid.UUID) error {
	query := `
		UPDATE board_steps
		SET position = new_order.position - 1, updated_at = CURRENT_TIMESTAMP
		FROM unnest($2::uuid[]) WITH ORDINALITY AS new_order(id, position)
		WHERE board_steps.id = new_order.id AND board_steps.board_id = $1`

	ids := make([]string, len(orderedIDs))
	for i, id := range orderedIDs {
		ids[i] = id.String()
	}

	result, err := r.db.ExecContext(ctx, query, boardID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("reorder steps: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected != int64(len(orderedIDs)) {
		return entities.ErrStepNotFound
	}

	return nil
}

func (r *BoardRepositoryImpl) DeleteStep(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM board_steps WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete board step: %w", err)
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

func (r *BoardRepositoryImpl) ListSteps(ctx context.Context, boardID uuid.UUID) ([]entities.BoardStep, error) {
	query := `SELECT ` + stepColumns + ` FROM board_steps WHERE board_id = $1 ORDER BY position`

	var steps []entities.BoardStep
	if err := r.db.SelectContext(ctx, &steps, query, boardID); err != nil {
		return nil, fmt.Errorf("list board steps: %w", err)
	}

	return steps, nil
}

func (r *BoardRepositoryImpl) CreateExecution(ctx context.Context, exec *entities.Execution) error {
	query := `
		INSERT INTO routine_executions (id, board_id, user_id, status, current_step_index, started_at, paused_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if exec.ID == uuid.Nil {
		exec.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx, query,
		exec.ID, exec.BoardID, exec.UserID, exec.Status,
		exec.CurrentStepIndex, exec.StartedAt, exec.PausedSeconds,
	)
	if err != nil {
		return fmt.Errorf("create execution: %w", err)
	}

	stepQuery := `
		INSERT INTO execution_steps (id, execution_id, step_id, position, result, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for i := range exec.Steps {
		s := &exec.Steps[i]
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.ExecutionID = exec.ID
		if _, err := r.db.ExecContext(ctx, stepQuery,
			s.ID, s.ExecutionID, s.StepID, s.Position, s.Result, s.StartedAt,
		); err != nil {
			return fmt.Errorf("create execution step: %w", err)
		}
	}

	return nil
}

func (r *BoardRepositoryImpl) GetExecution(ctx context.Context, id uuid.UUID) (*entities.Execution, error) {
	query := `
		SELECT id, board_id, user_id, status, current_step_index, started_at,
			paused_at, paused_seconds, completed_at
		FROM routine_executions
		WHERE id = $1`

	var exec entities.Execution
	err := r.db.GetContext(ctx, &exec, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrExecutionNotFound
		}
		return nil, fmt.Errorf("get execution: %w", err)
	}

	stepQuery := `
		SELECT id, execution_id, step_id, position, result, started_at, finished_at, actual_seconds
		FROM execution_steps
		WHERE execution_id = $1
		ORDER BY position`

	if err := r.db.SelectContext(ctx, &exec.Steps, stepQuery, id); err != nil {
		return nil, fmt.Errorf("get execution steps: %w", err)
	}

	return &exec, nil
}

func (r *BoardRepositoryImpl) UpdateExecution(ctx context.Context, exec *entities.Execution) error {
	query := `
		UPDATE routine_executions
		SET status = $2, current_step_index = $3, paused_at = $4,
			paused_seconds = $5, completed_at = $6
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		exec.ID, exec.Status, exec.CurrentStepIndex, exec.PausedAt,
		exec.PausedSeconds, exec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update execution: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrExecutionNotFound
	}

	return nil
}

func (r *BoardRepositoryImpl) UpdateExecutionStep(ctx context.Context, step *entities.ExecutionStep) error {
	query := `
		UPDATE execution_steps
		SET result = $2, started_at = $3, finished_at = $4, actual_seconds = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		step.ID, step.Result, step.StartedAt, step.FinishedAt, step.ActualSeconds,
	)
	if err != nil {
		return fmt.Errorf("update execution step: %w", err)
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

func (r *BoardRepositoryImpl) ListExecutions(ctx context.Context, boardID, userID uuid.UUID, limit int) ([]*entities.Execution, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, board_id, user_id, status, current_step_index, started_at,
			paused_at, paused_seconds, completed_at
		FROM routine_executions
		WHERE board_id = $1 AND user_id = $2
		ORDER BY started_at DESC
		LIMIT $3`

	var execs []*entities.Execution
	if err := r.db.SelectContext(ctx, &execs, query, boardID, userID, limit); err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}

	return execs, nil
}

func (r *BoardRepositoryImpl) ExecutionsSince(ctx context.Context, boardID uuid.UUID, since time.Time) ([]*entities.Execution, error) {
	query := `
		SELECT id, board_id, user_id, status, current_step_index, started_at,
			paused_at, paused_seconds, completed_at
		FROM routine_executions
		WHERE board_id = $1 AND started_at >= $2
		ORDER BY started_at`

	var execs []*entities.Execution
	if err := r.db.SelectContext(ctx, &execs, query, boardID, since); err != nil {
		return nil, fmt.Errorf("executions since: %w", err)
	}
	if len(execs) == 0 {
		return execs, nil
	}

	byID := make(map[uuid.UUID]*entities.Execution, len(execs))
	for _, exec := range execs {
		byID[exec.ID] = exec
	}

	stepQuery := `
		SELECT s.id, s.execution_id, s.step_id, s.position, s.result,
			s.started_at, s.finished_at, s.actual_seconds
		FROM execution_steps s
		JOIN routine_executions e ON e.id = s.execution_id
		WHERE e.board_id = $1 AND e.started_at >= $2
		ORDER BY s.execution_id, s.position`

	var steps []entities.ExecutionStep
	if err := r.db.SelectContext(ctx, &steps, stepQuery, boardID, since); err != nil {
		return nil, fmt.Errorf("executions since steps: %w", err)
	}
	for _, step := range steps {
		if exec, ok := byID[step.ExecutionID]; ok {
			exec.Steps = append(exec.Steps, step)
		}
	}

	return execs, nil
}

// nullableJSON maps an empty RawMessage to SQL NULL so jsonb columns do
// not end up with empty strings.
func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
