package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/database"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

// CollaborationService handles board sharing, invitations, roles and the
// audit log
type CollaborationService struct {
	collabRepo ports.CollaborationRepository
	boardRepo  ports.BoardRepository
	userRepo   ports.UserRepository
	notifRepo  ports.NotificationRepository
	db         *database.DB
	logger     *logger.Logger
}

// NewCollaborationService creates a new collaboration service
func NewCollaborationService(
	collabRepo ports.CollaborationRepository,
	boardRepo ports.BoardRepository,
	userRepo ports.UserRepository,
	notifRepo ports.NotificationRepository,
	db *database.DB,
	logger *logger.Logger,
) *CollaborationService {
	return &CollaborationService{
		collabRepo: collabRepo,
		boardRepo:  boardRepo,
		userRepo:   userRepo,
		notifRepo:  notifRepo,
		db:         db,
		logger:     logger,
	}
}

func (s *CollaborationService) managedBoard(ctx context.Context, boardID, userID uuid.UUID) (*entities.Board, error) {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}

	if board.OwnerID != userID {
		collab, err := s.collabRepo.GetCollaborator(ctx, boardID, userID)
		if err != nil || !collab.Role.CanManage() {
			return nil, entities.ErrForbidden
		}
	}

	return board, nil
}

// Share invites a user by email to a board. The invitee role may be
// editor or viewer; ownership is never granted through an invitation.
func (s *CollaborationService) Share(ctx context.Context, boardID, inviterID uuid.UUID, req ports.ShareBoardRequest) (*entities.Invitation, error) {
	board, err := s.managedBoard(ctx, boardID, inviterID)
	if err != nil {
		return nil, err
	}

	if req.Role != entities.RoleEditor && req.Role != entities.RoleViewer {
		return nil, fmt.Errorf("invitation role must be editor or viewer")
	}

	if invitee, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && invitee != nil {
		if invitee.ID == board.OwnerID {
			return nil, entities.ErrAlreadyCollaborator
		}
		if _, err := s.collabRepo.GetCollaborator(ctx, boardID, invitee.ID); err == nil {
			return nil, entities.ErrAlreadyCollaborator
		}
	}

	inv := &entities.Invitation{
		ID:           uuid.New(),
		BoardID:      boardID,
		InviterID:    inviterID,
		InviteeEmail: req.Email,
		Role:         req.Role,
		Status:       entities.InvitationPending,
		ExpiresAt:    time.Now().Add(entities.DefaultInvitationTTL),
	}

	if err := s.collabRepo.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]string{"invitee": req.Email, "role": string(req.Role)})
	s.audit(ctx, boardID, inviterID, entities.AuditBoardShared, details)

	// Registered invitees get an in-app notification right away.
	if invitee, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && invitee != nil {
		body := fmt.Sprintf("You have been invited to the board %q", board.Title)
		n := &entities.Notification{
			ID:           uuid.New(),
			UserID:       invitee.ID,
			Type:         entities.NotificationBoardShared,
			Priority:     entities.PriorityMedium,
			Title:        "Board shared with you",
			Body:         &body,
			ScheduledFor: time.Now(),
		}
		if err := s.notifRepo.Create(ctx, n); err != nil {
			s.logger.Warn("Failed to notify invitee", "error", err, "invitation_id", inv.ID)
		}
	}

	s.logger.Info("Board shared", "board_id", boardID, "inviter_id", inviterID, "invitee", req.Email, "role", req.Role)
	return inv, nil
}

// Invitations returns the caller's pending invitations
func (s *CollaborationService) Invitations(ctx context.Context, userID uuid.UUID) ([]*entities.Invitation, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.collabRepo.ListInvitationsForEmail(ctx, user.Email)
}

// BoardInvitations lists a board's invitations for whoever manages it
func (s *CollaborationService) BoardInvitations(ctx context.Context, boardID, userID uuid.UUID) ([]*entities.Invitation, error) {
	if _, err := s.managedBoard(ctx, boardID, userID); err != nil {
		return nil, err
	}
	return s.collabRepo.ListInvitationsByBoard(ctx, boardID)
}

// Accept resolves an invitation and adds the caller as a collaborator.
// The invitation is re-read under a row lock inside the transaction, so
// the pending check and both writes are atomic even against a concurrent
// accept of the same invitation.
func (s *CollaborationService) Accept(ctx context.Context, invitationID, userID uuid.UUID) (*entities.Collaborator, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	collab := &entities.Collaborator{ID: uuid.New(), UserID: userID}

	var expiredErr error
	err = s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		inv, err := s.collabRepo.GetInvitationForUpdateTx(ctx, tx, invitationID)
		if err != nil {
			return err
		}
		if user.Email != inv.InviteeEmail {
			return entities.ErrForbidden
		}

		if err := inv.Resolve(entities.InvitationAccepted, now); err != nil {
			if err == entities.ErrInvitationExpired {
				// Commit the expiry so the invitation stops showing as
				// pending; the error surfaces after the transaction.
				expiredErr = err
				return s.collabRepo.UpdateInvitationTx(ctx, tx, inv)
			}
			return err
		}

		collab.BoardID = inv.BoardID
		collab.Role = inv.Role

		if err := s.collabRepo.UpdateInvitationTx(ctx, tx, inv); err != nil {
			return err
		}
		return s.collabRepo.AddCollaboratorTx(ctx, tx, collab)
	})
	if err != nil {
		return nil, err
	}
	if expiredErr != nil {
		return nil, expiredErr
	}

	s.audit(ctx, collab.BoardID, userID, entities.AuditInviteAccepted, nil)
	s.logger.Info("Invitation accepted", "invitation_id", invitationID, "board_id", collab.BoardID, "user_id", userID)

	return collab, nil
}

// Decline resolves an invitation without joining the board
func (s *CollaborationService) Decline(ctx context.Context, invitationID, userID uuid.UUID) error {
	inv, err := s.collabRepo.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email != inv.InviteeEmail {
		return entities.ErrForbidden
	}

	if err := inv.Resolve(entities.InvitationDeclined, time.Now()); err != nil {
		if err == entities.ErrInvitationExpired {
			if updErr := s.collabRepo.UpdateInvitation(ctx, inv); updErr != nil {
				s.logger.Warn("Failed to mark invitation expired", "error", updErr, "invitation_id", invitationID)
			}
		}
		return err
	}

	if err := s.collabRepo.UpdateInvitation(ctx, inv); err != nil {
		return err
	}

	s.audit(ctx, inv.BoardID, userID, entities.AuditInviteDeclined, nil)
	return nil
}

// Collaborators lists a board's members for anyone who can see the board
func (s *CollaborationService) Collaborators(ctx context.Context, boardID, userID uuid.UUID) ([]*entities.Collaborator, error) {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}

	if board.OwnerID != userID {
		if _, err := s.collabRepo.GetCollaborator(ctx, boardID, userID); err != nil {
			return nil, entities.ErrForbidden
		}
	}

	return s.collabRepo.ListCollaborators(ctx, boardID)
}

// ChangeRole updates a collaborator's role. The owner's role is fixed.
func (s *CollaborationService) ChangeRole(ctx context.Context, boardID, actorID, targetID uuid.UUID, req ports.ChangeRoleRequest) error {
	board, err := s.managedBoard(ctx, boardID, actorID)
	if err != nil {
		return err
	}
	if targetID == board.OwnerID {
		return entities.ErrForbidden
	}
	if req.Role != entities.RoleEditor && req.Role != entities.RoleViewer {
		return fmt.Errorf("role must be editor or viewer")
	}

	if err := s.collabRepo.UpdateCollaboratorRole(ctx, boardID, targetID, req.Role); err != nil {
		return err
	}

	details, _ := json.Marshal(map[string]string{"user_id": targetID.String(), "role": string(req.Role)})
	s.audit(ctx, boardID, actorID, entities.AuditRoleChanged, details)

	return nil
}

// Remove takes a collaborator off a board. Managers may remove anyone
// but the owner; members may remove themselves.
func (s *CollaborationService) Remove(ctx context.Context, boardID, actorID, targetID uuid.UUID) error {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if targetID == board.OwnerID {
		return entities.ErrForbidden
	}

	if actorID != targetID {
		if _, err := s.managedBoard(ctx, boardID, actorID); err != nil {
			return err
		}
	}

	if err := s.collabRepo.RemoveCollaborator(ctx, boardID, targetID); err != nil {
		return err
	}

	details, _ := json.Marshal(map[string]string{"user_id": targetID.String()})
	s.audit(ctx, boardID, actorID, entities.AuditCollaboratorLeft, details)

	return nil
}

// AuditLog returns the board's recent collaboration events, newest first
func (s *CollaborationService) AuditLog(ctx context.Context, boardID, userID uuid.UUID, limit int) ([]*entities.AuditEntry, error) {
	if _, err := s.managedBoard(ctx, boardID, userID); err != nil {
		return nil, err
	}
	return s.collabRepo.ListAudit(ctx, boardID, limit)
}

func (s *CollaborationService) audit(ctx context.Context, boardID, actorID uuid.UUID, action string, details json.RawMessage) {
	entry := &entities.AuditEntry{
		BoardID: boardID,
		ActorID: actorID,
		Action:  action,
		Details: details,
	}
	if err := s.collabRepo.AppendAudit(ctx, entry); err != nil {
		s.logger.Warn("Failed to append audit entry", "error", err, "board_id", boardID, "action", action)
	}
}
