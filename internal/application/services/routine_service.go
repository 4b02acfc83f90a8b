package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

// RoutineService handles routines, anchors and execution statistics
type RoutineService struct {
	routineRepo ports.RoutineRepository
	boardRepo   ports.BoardRepository
	logger      *logger.Logger
}

// NewRoutineService creates a new routine service
func NewRoutineService(routineRepo ports.RoutineRepository, boardRepo ports.BoardRepository, logger *logger.Logger) *RoutineService {
	return &RoutineService{
		routineRepo: routineRepo,
		boardRepo:   boardRepo,
		logger:      logger,
	}
}

func (s *RoutineService) owned(ctx context.Context, ownerID, routineID uuid.UUID) (*entities.Routine, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if routine.OwnerID != ownerID {
		return nil, entities.ErrForbidden
	}
	return routine, nil
}

// recompute reloads the steps and persists fresh aggregates. Derived
// fields are never taken from the client.
func (s *RoutineService) recompute(ctx context.Context, routine *entities.Routine) error {
	steps, err := s.routineRepo.ListSteps(ctx, routine.ID)
	if err != nil {
		return err
	}
	routine.Steps = steps
	routine.Recompute()
	return s.routineRepo.Update(ctx, routine)
}

// Create adds a new routine
func (s *RoutineService) Create(ctx context.Context, ownerID uuid.UUID, req ports.CreateRoutineRequest) (*entities.Routine, error) {
	timeOfDay := req.TimeOfDay
	if timeOfDay == "" {
		timeOfDay = entities.TimeOfDayAny
	}
	if !timeOfDay.IsValid() {
		return nil, fmt.Errorf("invalid time of day %s", timeOfDay)
	}

	routine := &entities.Routine{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      req.Name,
		TimeOfDay: timeOfDay,
	}
	routine.Recompute()

	if err := s.routineRepo.Create(ctx, routine); err != nil {
		return nil, err
	}

	s.logger.Info("Routine created", "routine_id", routine.ID, "owner_id", ownerID)
	return routine, nil
}

// Get returns a routine with its steps
func (s *RoutineService) Get(ctx context.Context, ownerID, routineID uuid.UUID) (*entities.Routine, error) {
	routine, err := s.routineRepo.GetWithSteps(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if routine.OwnerID != ownerID {
		return nil, entities.ErrForbidden
	}
	return routine, nil
}

// Update applies partial routine updates
func (s *RoutineService) Update(ctx context.Context, ownerID, routineID uuid.UUID, req ports.UpdateRoutineRequest) (*entities.Routine, error) {
	routine, err := s.owned(ctx, ownerID, routineID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		routine.Name = *req.Name
	}
	if req.TimeOfDay != nil {
		if !req.TimeOfDay.IsValid() {
			return nil, fmt.Errorf("invalid time of day %s", *req.TimeOfDay)
		}
		routine.TimeOfDay = *req.TimeOfDay
	}

	if err := s.recompute(ctx, routine); err != nil {
		return nil, err
	}

	return routine, nil
}

// Delete soft-deletes a routine
func (s *RoutineService) Delete(ctx context.Context, ownerID, routineID uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, routineID); err != nil {
		return err
	}

	if err := s.routineRepo.Delete(ctx, routineID); err != nil {
		return err
	}

	s.logger.Info("Routine deleted", "routine_id", routineID, "owner_id", ownerID)
	return nil
}

// List returns the user's routines
func (s *RoutineService) List(ctx context.Context, ownerID uuid.UUID) ([]*entities.Routine, error) {
	return s.routineRepo.List(ctx, ownerID)
}

// AddStep appends a step and refreshes the routine's derived aggregates
func (s *RoutineService) AddStep(ctx context.Context, ownerID, routineID uuid.UUID, req ports.RoutineStepRequest) (*entities.Routine, error) {
	routine, err := s.owned(ctx, ownerID, routineID)
	if err != nil {
		return nil, err
	}

	existing, err := s.routineRepo.ListSteps(ctx, routineID)
	if err != nil {
		return nil, err
	}

	step := &entities.RoutineStep{
		ID:              uuid.New(),
		RoutineID:       routineID,
		Title:           req.Title,
		Position:        len(existing),
		DurationMinutes: req.DurationMinutes,
		IsOptional:      req.IsOptional,
		Icon:            req.Icon,
	}

	if err := s.routineRepo.AddStep(ctx, step); err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, routine); err != nil {
		return nil, err
	}

	return routine, nil
}

// UpdateStep updates a step and refreshes the routine's derived aggregates
func (s *RoutineService) UpdateStep(ctx context.Context, ownerID, routineID, stepID uuid.UUID, req ports.RoutineStepRequest) (*entities.Routine, error) {
	routine, err := s.owned(ctx, ownerID, routineID)
	if err != nil {
		return nil, err
	}

	steps, err := s.routineRepo.ListSteps(ctx, routineID)
	if err != nil {
		return nil, err
	}

	var step *entities.RoutineStep
	for i := range steps {
		if steps[i].ID == stepID {
			step = &steps[i]
			break
		}
	}
	if step == nil {
		return nil, entities.ErrStepNotFound
	}

	step.Title = req.Title
	step.DurationMinutes = req.DurationMinutes
	step.IsOptional = req.IsOptional
	step.Icon = req.Icon

	if err := s.routineRepo.UpdateStep(ctx, step); err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, routine); err != nil {
		return nil, err
	}

	return routine, nil
}

// DeleteStep removes a step and refreshes the routine's derived aggregates
func (s *RoutineService) DeleteStep(ctx context.Context, ownerID, routineID, stepID uuid.UUID) (*entities.Routine, error) {
	routine, err := s.owned(ctx, ownerID, routineID)
	if err != nil {
		return nil, err
	}

	steps, err := s.routineRepo.ListSteps(ctx, routineID)
	if err != nil {
		return nil, err
	}

	found := false
	for _, step := range steps {
		if step.ID == stepID {
			found = true
			break
		}
	}
	if !found {
		return nil, entities.ErrStepNotFound
	}

	if err := s.routineRepo.DeleteStep(ctx, stepID); err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, routine); err != nil {
		return nil, err
	}

	return routine, nil
}

// CreateAnchor saves a reusable step template
func (s *RoutineService) CreateAnchor(ctx context.Context, ownerID uuid.UUID, req ports.CreateAnchorRequest) (*entities.Anchor, error) {
	anchor := &entities.Anchor{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    req.Name,
	}
	for i, sr := range req.Steps {
		anchor.Steps = append(anchor.Steps, entities.AnchorStep{
			ID:              uuid.New(),
			AnchorID:        anchor.ID,
			Title:           sr.Title,
			Position:        i,
			DurationMinutes: sr.DurationMinutes,
			IsOptional:      sr.IsOptional,
			Icon:            sr.Icon,
		})
	}

	if err := s.routineRepo.CreateAnchor(ctx, anchor); err != nil {
		return nil, err
	}

	s.logger.Info("Anchor created", "anchor_id", anchor.ID, "owner_id", ownerID)
	return anchor, nil
}

// ListAnchors returns the user's anchors
func (s *RoutineService) ListAnchors(ctx context.Context, ownerID uuid.UUID) ([]*entities.Anchor, error) {
	return s.routineRepo.ListAnchors(ctx, ownerID)
}

// DeleteAnchor removes an anchor
func (s *RoutineService) DeleteAnchor(ctx context.Context, ownerID, anchorID uuid.UUID) error {
	anchor, err := s.routineRepo.GetAnchor(ctx, anchorID)
	if err != nil {
		return err
	}
	if anchor.OwnerID != ownerID {
		return entities.ErrForbidden
	}

	return s.routineRepo.DeleteAnchor(ctx, anchorID)
}

// ApplyAnchor copies an anchor's steps onto the end of a routine by value
func (s *RoutineService) ApplyAnchor(ctx context.Context, ownerID, routineID, anchorID uuid.UUID) (*entities.Routine, error) {
	routine, err := s.owned(ctx, ownerID, routineID)
	if err != nil {
		return nil, err
	}

	anchor, err := s.routineRepo.GetAnchor(ctx, anchorID)
	if err != nil {
		return nil, err
	}
	if anchor.OwnerID != ownerID {
		return nil, entities.ErrForbidden
	}

	existing, err := s.routineRepo.ListSteps(ctx, routineID)
	if err != nil {
		return nil, err
	}

	offset := len(existing)
	for i, as := range anchor.Steps {
		step := &entities.RoutineStep{
			ID:              uuid.New(),
			RoutineID:       routineID,
			Title:           as.Title,
			Position:        offset + i,
			DurationMinutes: as.DurationMinutes,
			IsOptional:      as.IsOptional,
			Icon:            as.Icon,
		}
		if err := s.routineRepo.AddStep(ctx, step); err != nil {
			return nil, err
		}
	}

	if err := s.recompute(ctx, routine); err != nil {
		return nil, err
	}

	return routine, nil
}

// Stats summarizes a linked board's execution history over a day window.
// Streaks count consecutive calendar days with at least one completion.
func (s *RoutineService) Stats(ctx context.Context, ownerID, routineID, boardID uuid.UUID, windowDays int) (*entities.RoutineStats, error) {
	if _, err := s.owned(ctx, ownerID, routineID); err != nil {
		return nil, err
	}

	if windowDays <= 0 {
		windowDays = 30
	}

	since := time.Now().AddDate(0, 0, -windowDays)
	executions, err := s.boardRepo.ExecutionsSince(ctx, boardID, since)
	if err != nil {
		return nil, err
	}

	stats := &entities.RoutineStats{
		RoutineID:  routineID,
		WindowDays: windowDays,
	}

	completionDays := make(map[string]bool)
	var durationTotal float64
	for _, exec := range executions {
		switch exec.Status {
		case entities.ExecutionCompleted:
			stats.Completions++
			if exec.CompletedAt != nil {
				completionDays[exec.CompletedAt.Format("2006-01-02")] = true
				durationTotal += float64(exec.ElapsedSeconds(*exec.CompletedAt))
			}
		case entities.ExecutionAbandoned:
			stats.Abandoned++
		}
		for _, step := range exec.Steps {
			if step.Result == entities.StepSkipped {
				stats.SkippedStepsTotal++
			}
		}
	}

	finished := stats.Completions + stats.Abandoned
	if finished > 0 {
		stats.CompletionRate = float64(stats.Completions) / float64(finished)
	}
	if stats.Completions > 0 {
		stats.AvgDurationSecs = durationTotal / float64(stats.Completions)
	}

	stats.CurrentStreak, stats.BestStreak = streaks(completionDays, time.Now(), windowDays)

	return stats, nil
}

// streaks counts runs of consecutive completion days. The current streak
// is still alive when today has no completion yet.
func streaks(days map[string]bool, now time.Time, window int) (current, best int) {
	completed := func(i int) bool {
		return days[now.AddDate(0, 0, -i).Format("2006-01-02")]
	}

	start := 0
	if !completed(0) {
		start = 1
	}
	for i := start; i < window && completed(i); i++ {
		current++
	}

	run := 0
	for i := 0; i < window; i++ {
		if completed(i) {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return current, best
}
