package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/ports"
)

// In-memory repository fakes shared across the service tests.

type fakeUserRepo struct {
	users map[uuid.UUID]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entities.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entities.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return entities.ErrUserNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return entities.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetSettings(ctx context.Context, userID uuid.UUID) (*entities.UserSettings, error) {
	return entities.DefaultSettings(userID), nil
}

func (r *fakeUserRepo) UpsertSettings(ctx context.Context, settings *entities.UserSettings) error {
	settings.UpdatedAt = time.Now()
	return nil
}

type fakeAuthRepo struct {
	tokens map[string]*ports.RefreshToken
	nextID int
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{tokens: make(map[string]*ports.RefreshToken)}
}

func (r *fakeAuthRepo) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.nextID++
	r.tokens[tokenHash] = &ports.RefreshToken{
		ID:        r.nextID,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *fakeAuthRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
	if t, ok := r.tokens[tokenHash]; ok {
		return t, nil
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeAuthRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	if t, ok := r.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (r *fakeAuthRepo) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeAuthRepo) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	var deleted int64
	for hash, t := range r.tokens {
		if t.ExpiresAt.Before(time.Now()) {
			delete(r.tokens, hash)
			deleted++
		}
	}
	return deleted, nil
}

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*entities.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *entities.Task) error {
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	if t, ok := r.tasks[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, entities.ErrTaskNotFound
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *entities.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return entities.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) Move(ctx context.Context, id uuid.UUID, quadrant entities.Quadrant, position int) error {
	t, ok := r.tasks[id]
	if !ok {
		return entities.ErrTaskNotFound
	}
	t.Quadrant = quadrant
	t.Position = position
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) List(ctx context.Context, ownerID uuid.UUID, filter ports.TaskFilter) ([]*entities.Task, int64, error) {
	var out []*entities.Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) MatrixSummary(ctx context.Context, ownerID uuid.UUID) (*entities.MatrixSummary, error) {
	summary := &entities.MatrixSummary{Quadrants: make(map[entities.Quadrant]int)}
	for _, t := range r.tasks {
		if t.OwnerID == ownerID && t.Status != entities.TaskStatusDone {
			summary.Quadrants[t.Quadrant]++
			summary.Total++
		}
	}
	return summary, nil
}

func (r *fakeTaskRepo) DueSoon(ctx context.Context, ownerID uuid.UUID, within time.Duration) ([]*entities.Task, error) {
	cutoff := time.Now().Add(within)
	var out []*entities.Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID && t.DueDate != nil && t.DueDate.Before(cutoff) {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) NextPosition(ctx context.Context, ownerID uuid.UUID, quadrant entities.Quadrant) (int, error) {
	next := 0
	for _, t := range r.tasks {
		if t.OwnerID == ownerID && t.Quadrant == quadrant && t.Position >= next {
			next = t.Position + 1
		}
	}
	return next, nil
}

type fakeBoardRepo struct {
	boards map[uuid.UUID]*entities.Board
	steps  map[uuid.UUID]*entities.BoardStep
	execs  map[uuid.UUID]*entities.Execution
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{
		boards: make(map[uuid.UUID]*entities.Board),
		steps:  make(map[uuid.UUID]*entities.BoardStep),
		execs:  make(map[uuid.UUID]*entities.Execution),
	}
}

func copyExecution(e *entities.Execution) *entities.Execution {
	copied := *e
	copied.Steps = append([]entities.ExecutionStep(nil), e.Steps...)
	return &copied
}

func (r *fakeBoardRepo) Create(ctx context.Context, board *entities.Board) error {
	board.CreatedAt = time.Now()
	board.UpdatedAt = board.CreatedAt
	copied := *board
	r.boards[board.ID] = &copied
	return nil
}

func (r *fakeBoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Board, error) {
	if b, ok := r.boards[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, entities.ErrBoardNotFound
}

func (r *fakeBoardRepo) GetWithSteps(ctx context.Context, id uuid.UUID) (*entities.Board, error) {
	board, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	board.Steps, _ = r.ListSteps(ctx, id)
	return board, nil
}

func (r *fakeBoardRepo) Update(ctx context.Context, board *entities.Board) error {
	if _, ok := r.boards[board.ID]; !ok {
		return entities.ErrBoardNotFound
	}
	board.UpdatedAt = time.Now()
	copied := *board
	r.boards[board.ID] = &copied
	return nil
}

func (r *fakeBoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.boards[id]; !ok {
		return entities.ErrBoardNotFound
	}
	delete(r.boards, id)
	return nil
}

func (r *fakeBoardRepo) List(ctx context.Context, ownerID uuid.UUID, templatesOnly bool) ([]*entities.Board, error) {
	var out []*entities.Board
	for _, b := range r.boards {
		if b.OwnerID != ownerID || (templatesOnly && !b.IsTemplate) {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBoardRepo) ListSharedWith(ctx context.Context, userID uuid.UUID) ([]*entities.Board, error) {
	return nil, nil
}

func (r *fakeBoardRepo) AddStep(ctx context.Context, step *entities.BoardStep) error {
	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}
	step.CreatedAt = time.Now()
	step.UpdatedAt = step.CreatedAt
	copied := *step
	r.steps[step.ID] = &copied
	return nil
}

func (r *fakeBoardRepo) AddStepTx(ctx context.Context, tx *sqlx.Tx, step *entities.BoardStep) error {
	return r.AddStep(ctx, step)
}

func (r *fakeBoardRepo) GetStep(ctx context.Context, id uuid.UUID) (*entities.BoardStep, error) {
	if s, ok := r.steps[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, entities.ErrStepNotFound
}

func (r *fakeBoardRepo) UpdateStep(ctx context.Context, step *entities.BoardStep) error {
	if _, ok := r.steps[step.ID]; !ok {
		return entities.ErrStepNotFound
	}
	step.UpdatedAt = time.Now()
	copied := *step
	r.steps[step.ID] = &copied
	return nil
}

func (r *fakeBoardRepo) ReorderSteps(ctx context.Context, boardID uuid.UUID, orderedIDs []uuid.UUID) error {
	for i, id := range orderedIDs {
		if s, ok := r.steps[id]; ok && s.BoardID == boardID {
			s.Position = i
		}
	}
	return nil
}

func (r *fakeBoardRepo) DeleteStep(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.steps[id]; !ok {
		return entities.ErrStepNotFound
	}
	delete(r.steps, id)
	return nil
}

func (r *fakeBoardRepo) ListSteps(ctx context.Context, boardID uuid.UUID) ([]entities.BoardStep, error) {
	var out []entities.BoardStep
	for _, s := range r.steps {
		if s.BoardID == boardID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeBoardRepo) CreateExecution(ctx context.Context, exec *entities.Execution) error {
	r.execs[exec.ID] = copyExecution(exec)
	return nil
}

func (r *fakeBoardRepo) GetExecution(ctx context.Context, id uuid.UUID) (*entities.Execution, error) {
	if e, ok := r.execs[id]; ok {
		return copyExecution(e), nil
	}
	return nil, entities.ErrExecutionNotFound
}

func (r *fakeBoardRepo) UpdateExecution(ctx context.Context, exec *entities.Execution) error {
	if _, ok := r.execs[exec.ID]; !ok {
		return entities.ErrExecutionNotFound
	}
	r.execs[exec.ID] = copyExecution(exec)
	return nil
}

func (r *fakeBoardRepo) UpdateExecutionStep(ctx context.Context, step *entities.ExecutionStep) error {
	exec, ok := r.execs[step.ExecutionID]
	if !ok {
		return entities.ErrStepNotFound
	}
	for i := range exec.Steps {
		if exec.Steps[i].ID == step.ID {
			exec.Steps[i] = *step
			return nil
		}
	}
	return entities.ErrStepNotFound
}

func (r *fakeBoardRepo) ListExecutions(ctx context.Context, boardID, userID uuid.UUID, limit int) ([]*entities.Execution, error) {
	var out []*entities.Execution
	for _, e := range r.execs {
		if e.BoardID == boardID && e.UserID == userID {
			out = append(out, copyExecution(e))
		}
	}
	return out, nil
}

func (r *fakeBoardRepo) ExecutionsSince(ctx context.Context, boardID uuid.UUID, since time.Time) ([]*entities.Execution, error) {
	var out []*entities.Execution
	for _, e := range r.execs {
		if e.BoardID == boardID && !e.StartedAt.Before(since) {
			out = append(out, copyExecution(e))
		}
	}
	return out, nil
}

type fakeRoutineRepo struct {
	routines map[uuid.UUID]*entities.Routine
	steps    map[uuid.UUID]*entities.RoutineStep
	anchors  map[uuid.UUID]*entities.Anchor
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{
		routines: make(map[uuid.UUID]*entities.Routine),
		steps:    make(map[uuid.UUID]*entities.RoutineStep),
		anchors:  make(map[uuid.UUID]*entities.Anchor),
	}
}

func (r *fakeRoutineRepo) Create(ctx context.Context, routine *entities.Routine) error {
	routine.CreatedAt = time.Now()
	routine.UpdatedAt = routine.CreatedAt
	copied := *routine
	r.routines[routine.ID] = &copied
	return nil
}

func (r *fakeRoutineRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Routine, error) {
	if rt, ok := r.routines[id]; ok {
		copied := *rt
		return &copied, nil
	}
	return nil, entities.ErrRoutineNotFound
}

func (r *fakeRoutineRepo) GetWithSteps(ctx context.Context, id uuid.UUID) (*entities.Routine, error) {
	routine, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	routine.Steps, _ = r.ListSteps(ctx, id)
	return routine, nil
}

func (r *fakeRoutineRepo) Update(ctx context.Context, routine *entities.Routine) error {
	if _, ok := r.routines[routine.ID]; !ok {
		return entities.ErrRoutineNotFound
	}
	routine.UpdatedAt = time.Now()
	copied := *routine
	r.routines[routine.ID] = &copied
	return nil
}

func (r *fakeRoutineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.routines[id]; !ok {
		return entities.ErrRoutineNotFound
	}
	delete(r.routines, id)
	return nil
}

func (r *fakeRoutineRepo) List(ctx context.Context, ownerID uuid.UUID) ([]*entities.Routine, error) {
	var out []*entities.Routine
	for _, rt := range r.routines {
		if rt.OwnerID == ownerID {
			copied := *rt
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRoutineRepo) AddStep(ctx context.Context, step *entities.RoutineStep) error {
	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}
	step.CreatedAt = time.Now()
	copied := *step
	r.steps[step.ID] = &copied
	return nil
}

func (r *fakeRoutineRepo) UpdateStep(ctx context.Context, step *entities.RoutineStep) error {
	if _, ok := r.steps[step.ID]; !ok {
		return entities.ErrStepNotFound
	}
	copied := *step
	r.steps[step.ID] = &copied
	return nil
}

func (r *fakeRoutineRepo) DeleteStep(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.steps[id]; !ok {
		return entities.ErrStepNotFound
	}
	delete(r.steps, id)
	return nil
}

func (r *fakeRoutineRepo) ListSteps(ctx context.Context, routineID uuid.UUID) ([]entities.RoutineStep, error) {
	var out []entities.RoutineStep
	for _, s := range r.steps {
		if s.RoutineID == routineID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeRoutineRepo) CreateAnchor(ctx context.Context, anchor *entities.Anchor) error {
	anchor.CreatedAt = time.Now()
	copied := *anchor
	r.anchors[anchor.ID] = &copied
	return nil
}

func (r *fakeRoutineRepo) GetAnchor(ctx context.Context, id uuid.UUID) (*entities.Anchor, error) {
	if a, ok := r.anchors[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, entities.ErrAnchorNotFound
}

func (r *fakeRoutineRepo) ListAnchors(ctx context.Context, ownerID uuid.UUID) ([]*entities.Anchor, error) {
	var out []*entities.Anchor
	for _, a := range r.anchors {
		if a.OwnerID == ownerID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRoutineRepo) DeleteAnchor(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.anchors[id]; !ok {
		return entities.ErrAnchorNotFound
	}
	delete(r.anchors, id)
	return nil
}

type fakeNotificationRepo struct {
	notifications map[uuid.UUID]*entities.Notification
	prefs         map[uuid.UUID]*entities.NotificationPreferences
	rescheduled   map[uuid.UUID]time.Time
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		notifications: make(map[uuid.UUID]*entities.Notification),
		prefs:         make(map[uuid.UUID]*entities.NotificationPreferences),
		rescheduled:   make(map[uuid.UUID]time.Time),
	}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *entities.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	r.notifications[n.ID] = n
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Notification, error) {
	if n, ok := r.notifications[id]; ok {
		return n, nil
	}
	return nil, entities.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) List(ctx context.Context, userID uuid.UUID, filter ports.NotificationFilter) ([]*entities.Notification, int64, error) {
	var out []*entities.Notification
	for _, n := range r.notifications {
		if n.UserID != userID || n.DismissedAt != nil {
			continue
		}
		if filter.UnreadOnly && (n.ReadAt != nil || n.SentAt == nil) {
			continue
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	n, ok := r.notifications[id]
	if !ok || n.SentAt != nil {
		return entities.ErrNotificationNotFound
	}
	n.SentAt = &at
	return nil
}

func (r *fakeNotificationRepo) Reschedule(ctx context.Context, id uuid.UUID, to time.Time) error {
	if n, ok := r.notifications[id]; ok && n.SentAt == nil {
		n.ScheduledFor = to
		r.rescheduled[id] = to
	}
	return nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID || n.ReadAt != nil {
		return entities.ErrNotificationNotFound
	}
	n.ReadAt = &at
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	var updated int64
	for _, n := range r.notifications {
		if n.UserID == userID && n.ReadAt == nil && n.DismissedAt == nil && n.SentAt != nil {
			n.ReadAt = &at
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) Dismiss(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID || n.DismissedAt != nil {
		return entities.ErrNotificationNotFound
	}
	n.DismissedAt = &at
	return nil
}

func (r *fakeNotificationRepo) DueBefore(ctx context.Context, t time.Time, limit int) ([]*entities.Notification, error) {
	var out []*entities.Notification
	for _, n := range r.notifications {
		if n.SentAt == nil && n.DismissedAt == nil && !n.ScheduledFor.After(t) {
			out = append(out, n)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) GetPreferences(ctx context.Context, userID uuid.UUID) (*entities.NotificationPreferences, error) {
	if p, ok := r.prefs[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return entities.DefaultPreferences(userID), nil
}

func (r *fakeNotificationRepo) UpsertPreferences(ctx context.Context, prefs *entities.NotificationPreferences) error {
	prefs.UpdatedAt = time.Now()
	copied := *prefs
	r.prefs[prefs.UserID] = &copied
	return nil
}
