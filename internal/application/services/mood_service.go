package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

// MoodService handles the append-only mood and energy log
type MoodService struct {
	moodRepo ports.MoodRepository
	logger   *logger.Logger
}

// NewMoodService creates a new mood service
func NewMoodService(moodRepo ports.MoodRepository, logger *logger.Logger) *MoodService {
	return &MoodService{
		moodRepo: moodRepo,
		logger:   logger,
	}
}

// Record appends a mood entry. Entries are immutable; a correction is
// simply another entry.
func (s *MoodService) Record(ctx context.Context, userID uuid.UUID, req ports.CreateMoodEntryRequest) (*entities.MoodEntry, error) {
	for _, v := range []int{req.Mood, req.Energy, req.Focus} {
		if !entities.ValidScale(v) {
			return nil, entities.ErrInvalidRating
		}
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	entry := &entities.MoodEntry{
		ID:            uuid.New(),
		UserID:        userID,
		Mood:          req.Mood,
		Energy:        req.Energy,
		Focus:         req.Focus,
		Tags:          req.Tags,
		EnergyFactors: req.EnergyFactors,
		Note:          req.Note,
		RecordedAt:    recordedAt,
	}

	if err := s.moodRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Mood entry recorded", "entry_id", entry.ID, "user_id", userID)
	return entry, nil
}

// List returns mood entries in the window, newest first
func (s *MoodService) List(ctx context.Context, userID uuid.UUID, filter ports.MoodFilter) ([]*entities.MoodEntry, int64, error) {
	return s.moodRepo.List(ctx, userID, filter)
}

// Summary aggregates the last windowDays of entries
func (s *MoodService) Summary(ctx context.Context, userID uuid.UUID, windowDays int) (*entities.MoodSummary, error) {
	if windowDays <= 0 {
		windowDays = 7
	}

	to := time.Now()
	from := to.AddDate(0, 0, -windowDays)

	summary, err := s.moodRepo.Summary(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	summary.WindowDays = windowDays
	return summary, nil
}
