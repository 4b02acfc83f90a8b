package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/focusflow/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetSettings(ctx context.Context, userID uuid.UUID) (*entities.UserSettings, error)
	UpsertSettings(ctx context.Context, settings *entities.UserSettings) error
}

// AuthRepository defines the interface for refresh-token storage
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

// RefreshToken is a stored, hashed refresh token
type RefreshToken struct {
	ID        int        `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

func (t *RefreshToken) IsExpired() bool { return time.Now().After(t.ExpiresAt) }
func (t *RefreshToken) IsRevoked() bool { return t.RevokedAt != nil }

// TaskFilter narrows task listings
type TaskFilter struct {
	Status    *entities.TaskStatus
	Quadrant  *entities.Quadrant
	Energy    *entities.EffortLevel
	DueBefore *time.Time
	Search    string
	Limit     int
	Offset    int
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Move(ctx context.Context, id uuid.UUID, quadrant entities.Quadrant, position int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]*entities.Task, int64, error)
	MatrixSummary(ctx context.Context, ownerID uuid.UUID) (*entities.MatrixSummary, error)
	DueSoon(ctx context.Context, ownerID uuid.UUID, within time.Duration) ([]*entities.Task, error)
	NextPosition(ctx context.Context, ownerID uuid.UUID, quadrant entities.Quadrant) (int, error)
}

// BoardRepository defines the interface for board and execution storage
type BoardRepository interface {
	Create(ctx context.Context, board *entities.Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Board, error)
	GetWithSteps(ctx context.Context, id uuid.UUID) (*entities.Board, error)
	Update(ctx context.Context, board *entities.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, templatesOnly bool) ([]*entities.Board, error)
	ListSharedWith(ctx context.Context, userID uuid.UUID) ([]*entities.Board, error)

	AddStep(ctx context.Context, step *entities.BoardStep) error
	AddStepTx(ctx context.Context, tx *sqlx.Tx, step *entities.BoardStep) error
	GetStep(ctx context.Context, id uuid.UUID) (*entities.BoardStep, error)
	UpdateStep(ctx context.Context, step *entities.BoardStep) error
	ReorderSteps(ctx context.Context, boardID uuid.UUID, orderedIDs []uuid.UUID) error
	DeleteStep(ctx context.Context, id uuid.UUID) error
	ListSteps(ctx context.Context, boardID uuid.UUID) ([]entities.BoardStep, error)

	CreateExecution(ctx context.Context, exec *entities.Execution) error
	GetExecution(ctx context.Context, id uuid.UUID) (*entities.Execution, error)
	UpdateExecution(ctx context.Context, exec *entities.Execution) error
	UpdateExecutionStep(ctx context.Context, step *entities.ExecutionStep) error
	ListExecutions(ctx context.Context, boardID, userID uuid.UUID, limit int) ([]*entities.Execution, error)
	ExecutionsSince(ctx context.Context, boardID uuid.UUID, since time.Time) ([]*entities.Execution, error)
}

// RoutineRepository defines the interface for routine and anchor storage
type RoutineRepository interface {
	Create(ctx context.Context, routine *entities.Routine) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Routine, error)
	GetWithSteps(ctx context.Context, id uuid.UUID) (*entities.Routine, error)
	Update(ctx context.Context, routine *entities.Routine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID) ([]*entities.Routine, error)

	AddStep(ctx context.Context, step *entities.RoutineStep) error
	UpdateStep(ctx context.Context, step *entities.RoutineStep) error
	DeleteStep(ctx context.Context, id uuid.UUID) error
	ListSteps(ctx context.Context, routineID uuid.UUID) ([]entities.RoutineStep, error)

	CreateAnchor(ctx context.Context, anchor *entities.Anchor) error
	GetAnchor(ctx context.Context, id uuid.UUID) (*entities.Anchor, error)
	ListAnchors(ctx context.Context, ownerID uuid.UUID) ([]*entities.Anchor, error)
	DeleteAnchor(ctx context.Context, id uuid.UUID) error
}

// NotificationFilter narrows notification listings
type NotificationFilter struct {
	UnreadOnly bool
	Type       *entities.NotificationType
	Limit      int
	Offset     int
}

// NotificationRepository defines the interface for notification storage
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Notification, error)
	List(ctx context.Context, userID uuid.UUID, filter NotificationFilter) ([]*entities.Notification, int64, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	Reschedule(ctx context.Context, id uuid.UUID, to time.Time) error
	MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	Dismiss(ctx context.Context, id, userID uuid.UUID, at time.Time) error
	DueBefore(ctx context.Context, t time.Time, limit int) ([]*entities.Notification, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*entities.NotificationPreferences, error)
	UpsertPreferences(ctx context.Context, prefs *entities.NotificationPreferences) error
}

// CollaborationRepository defines the interface for sharing, invitations
// and the audit log
type CollaborationRepository interface {
	GetCollaborator(ctx context.Context, boardID, userID uuid.UUID) (*entities.Collaborator, error)
	ListCollaborators(ctx context.Context, boardID uuid.UUID) ([]*entities.Collaborator, error)
	AddCollaborator(ctx context.Context, c *entities.Collaborator) error
	AddCollaboratorTx(ctx context.Context, tx *sqlx.Tx, c *entities.Collaborator) error
	UpdateCollaboratorRole(ctx context.Context, boardID, userID uuid.UUID, role entities.CollaboratorRole) error
	RemoveCollaborator(ctx context.Context, boardID, userID uuid.UUID) error

	CreateInvitation(ctx context.Context, inv *entities.Invitation) error
	GetInvitation(ctx context.Context, id uuid.UUID) (*entities.Invitation, error)
	GetInvitationForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*entities.Invitation, error)
	UpdateInvitationTx(ctx context.Context, tx *sqlx.Tx, inv *entities.Invitation) error
	UpdateInvitation(ctx context.Context, inv *entities.Invitation) error
	ListInvitationsByBoard(ctx context.Context, boardID uuid.UUID) ([]*entities.Invitation, error)
	ListInvitationsForEmail(ctx context.Context, email string) ([]*entities.Invitation, error)

	AppendAudit(ctx context.Context, entry *entities.AuditEntry) error
	ListAudit(ctx context.Context, boardID uuid.UUID, limit int) ([]*entities.AuditEntry, error)
}

// MoodFilter narrows mood-entry listings
type MoodFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// MoodRepository defines the interface for append-only mood tracking
type MoodRepository interface {
	Create(ctx context.Context, entry *entities.MoodEntry) error
	List(ctx context.Context, userID uuid.UUID, filter MoodFilter) ([]*entities.MoodEntry, int64, error)
	Summary(ctx context.Context, userID uuid.UUID, from, to time.Time) (*entities.MoodSummary, error)
}
