package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CollaboratorRole gates what a user may do on a shared board.
type CollaboratorRole string

const (
	RoleOwner  CollaboratorRole = "owner"
	RoleEditor CollaboratorRole = "editor"
	RoleViewer CollaboratorRole = "viewer"
)

func (r CollaboratorRole) IsValid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	default:
		return false
	}
}

// CanEdit reports whether the role may mutate board content.
func (r CollaboratorRole) CanEdit() bool {
	return r == RoleOwner || r == RoleEditor
}

// CanManage reports whether the role may manage sharing, roles and the
// board's lifecycle.
func (r CollaboratorRole) CanManage() bool {
	return r == RoleOwner
}

// Collaborator links a user to a shared board with a role.
type Collaborator struct {
	ID       uuid.UUID        `json:"id" db:"id"`
	BoardID  uuid.UUID        `json:"board_id" db:"board_id"`
	UserID   uuid.UUID        `json:"user_id" db:"user_id"`
	Role     CollaboratorRole `json:"role" db:"role"`
	JoinedAt time.Time        `json:"joined_at" db:"joined_at"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

func (s InvitationStatus) IsValid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationDeclined, InvitationExpired:
		return true
	default:
		return false
	}
}

// DefaultInvitationTTL is how long an invitation stays acceptable.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Invitation is a pending offer to join a board. Accepting one inserts a
// collaborator row and resolves the invitation in the same transaction.
type Invitation struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	BoardID      uuid.UUID        `json:"board_id" db:"board_id"`
	InviterID    uuid.UUID        `json:"inviter_id" db:"inviter_id"`
	InviteeEmail string           `json:"invitee_email" db:"invitee_email"`
	Role         CollaboratorRole `json:"role" db:"role"`
	Status       InvitationStatus `json:"status" db:"status"`
	ExpiresAt    time.Time        `json:"expires_at" db:"expires_at"`
	ResolvedAt   *time.Time       `json:"resolved_at" db:"resolved_at"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Resolve transitions a pending invitation to accepted or declined.
// Expired invitations cannot be resolved.
func (i *Invitation) Resolve(status InvitationStatus, now time.Time) error {
	if i.Status != InvitationPending {
		return ErrInvitationResolved
	}
	if i.IsExpired(now) {
		i.Status = InvitationExpired
		return ErrInvitationExpired
	}
	i.Status = status
	i.ResolvedAt = &now
	return nil
}

// AuditEntry is one append-only record of a collaboration event.
type AuditEntry struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	BoardID   uuid.UUID       `json:"board_id" db:"board_id"`
	ActorID   uuid.UUID       `json:"actor_id" db:"actor_id"`
	Action    string          `json:"action" db:"action"`
	Details   json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Audit actions recorded for shared boards.
const (
	AuditBoardShared      = "board_shared"
	AuditInviteAccepted   = "invite_accepted"
	AuditInviteDeclined   = "invite_declined"
	AuditRoleChanged      = "role_changed"
	AuditCollaboratorLeft = "collaborator_removed"
	AuditBoardDeleted     = "board_deleted"
	AuditStepsModified    = "steps_modified"
)
