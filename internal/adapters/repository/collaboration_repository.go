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

const invitationColumns = `id, board_id, inviter_id, invitee_email, role, status,
	expires_at, resolved_at, created_at`

// CollaborationRepositoryImpl implements the CollaborationRepository interface
type CollaborationRepositoryImpl struct {
	db *sqlx.DB
}

// NewCollaborationRepository creates a new collaboration repository
func NewCollaborationRepository(db *sqlx.DB) ports.CollaborationRepository {
	return &CollaborationRepositoryImpl{db: db}
}

func (r *CollaborationRepositoryImpl) GetCollaborator(ctx context.Context, boardID, userID uuid.UUID) (*entities.Collaborator, error) {
	query := `
		SELECT id, board_id, user_id, role, joined_at
		FROM board_collaborators
		WHERE board_id = $1 AND user_id = $2`

	var c entities.Collaborator
	err := r.db.GetContext(ctx, &c, query, boardID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrCollaboratorNotFound
		}
		return nil, fmt.Errorf("get collaborator: %w", err)
	}

	return &c, nil
}

func (r *CollaborationRepositoryImpl) ListCollaborators(ctx context.Context, boardID uuid.UUID) ([]*entities.Collaborator, error) {
	query := `
		SELECT id, board_id, user_id, role, joined_at
		FROM board_collaborators
		WHERE board_id = $1
		ORDER BY joined_at`

	var collaborators []*entities.Collaborator
	if err := r.db.SelectContext(ctx, &collaborators, query, boardID); err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}

	return collaborators, nil
}

func (r *CollaborationRepositoryImpl) AddCollaborator(ctx context.Context, c *entities.Collaborator) error {
	return r.addCollaborator(ctx, r.db, c)
}

func (r *CollaborationRepositoryImpl) AddCollaboratorTx(ctx context.Context, tx *sqlx.Tx, c *entities.Collaborator) error {
	return r.addCollaborator(ctx, tx, c)
}

func (r *CollaborationRepositoryImpl) addCollaborator(ctx context.Context, q sqlx.QueryerContext, c *entities.Collaborator) error {
	query := `
		INSERT INTO board_collaborators (id, board_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (board_id, user_id) DO NOTHING
		RETURNING joined_at`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	err := q.QueryRowxContext(ctx, query, c.ID, c.BoardID, c.UserID, c.Role).Scan(&c.JoinedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrAlreadyCollaborator
		}
		return fmt.Errorf("add collaborator: %w", err)
	}

	return nil
}

func (r *CollaborationRepositoryImpl) UpdateCollaboratorRole(ctx context.Context, boardID, userID uuid.UUID, role entities.CollaboratorRole) error {
	query := `
		UPDATE board_collaborators
		SET role = $3
		WHERE board_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, boardID, userID, role)
	if err != nil {
		return fmt.Errorf("update collaborator role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCollaboratorNotFound
	}

	return nil
}

func (r *CollaborationRepositoryImpl) RemoveCollaborator(ctx context.Context, boardID, userID uuid.UUID) error {
	query := `DELETE FROM board_collaborators WHERE board_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, boardID, userID)
	if err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCollaboratorNotFound
	}

	return nil
}

func (r *CollaborationRepositoryImpl) CreateInvitation(ctx context.Context, inv *entities.Invitation) error {
	query := `
		INSERT INTO board_invitations (id, board_id, inviter_id, invitee_email, role, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		inv.ID, inv.BoardID, inv.InviterID, inv.InviteeEmail,
		inv.Role, inv.Status, inv.ExpiresAt,
	).Scan(&inv.CreatedAt)

	if err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}

	return nil
}

func (r *CollaborationRepositoryImpl) GetInvitation(ctx context.Context, id uuid.UUID) (*entities.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM board_invitations WHERE id = $1`

	var inv entities.Invitation
	err := r.db.GetContext(ctx, &inv, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	return &inv, nil
}

// GetInvitationForUpdateTx reads an invitation with a row lock so a
// concurrent accept of the same invitation waits for this one to commit.
func (r *CollaborationRepositoryImpl) GetInvitationForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*entities.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM board_invitations WHERE id = $1 FOR UPDATE`

	var inv entities.Invitation
	err := tx.GetContext(ctx, &inv, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("get invitation for update: %w", err)
	}

	return &inv, nil
}

func (r *CollaborationRepositoryImpl) UpdateInvitation(ctx context.Context, inv *entities.Invitation) error {
	return r.updateInvitation(ctx, r.db, inv)
}

func (r *CollaborationRepositoryImpl) UpdateInvitationTx(ctx context.Context, tx *sqlx.Tx, inv *entities.Invitation) error {
	return r.updateInvitation(ctx, tx, inv)
}

func (r *CollaborationRepositoryImpl) updateInvitation(ctx context.Context, e sqlx.ExecerContext, inv *entities.Invitation) error {
	query := `
		UPDATE board_invitations
		SET status = $2, resolved_at = $3
		WHERE id = $1`

	result, err := e.ExecContext(ctx, query, inv.ID, inv.Status, inv.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrInvitationNotFound
	}

	return nil
}

func (r *CollaborationRepositoryImpl) ListInvitationsByBoard(ctx context.Context, boardID uuid.UUID) ([]*entities.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM board_invitations
		WHERE board_id = $1
		ORDER BY created_at DESC`

	var invitations []*entities.Invitation
	if err := r.db.SelectContext(ctx, &invitations, query, boardID); err != nil {
		return nil, fmt.Errorf("list invitations by board: %w", err)
	}

	return invitations, nil
}

func (r *CollaborationRepositoryImpl) ListInvitationsForEmail(ctx context.Context, email string) ([]*entities.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM board_invitations
		WHERE invitee_email = $1 AND status = 'pending'
		ORDER BY created_at DESC`

	var invitations []*entities.Invitation
	if err := r.db.SelectContext(ctx, &invitations, query, email); err != nil {
		return nil, fmt.Errorf("list invitations for email: %w", err)
	}

	return invitations, nil
}

func (r *CollaborationRepositoryImpl) AppendAudit(ctx context.Context, entry *entities.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (id, board_id, actor_id, action, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.BoardID, entry.ActorID, entry.Action, nullableJSON(entry.Details),
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

func (r *CollaborationRepositoryImpl) ListAudit(ctx context.Context, boardID uuid.UUID, limit int) ([]*entities.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, board_id, actor_id, action, details, created_at
		FROM audit_logs
		WHERE board_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var entries []*entities.AuditEntry
	if err := r.db.SelectContext(ctx, &entries, query, boardID, limit); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	return entries, nil
}
