package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

type fakeMoodRepo struct {
	entries []*entities.MoodEntry
}

func (r *fakeMoodRepo) Create(ctx context.Context, entry *entities.MoodEntry) error {
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeMoodRepo) List(ctx context.Context, userID uuid.UUID, filter ports.MoodFilter) ([]*entities.MoodEntry, int64, error) {
	var out []*entities.MoodEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeMoodRepo) Summary(ctx context.Context, userID uuid.UUID, from, to time.Time) (*entities.MoodSummary, error) {
	summary := &entities.MoodSummary{TagCounts: make(map[string]int)}
	for _, e := range r.entries {
		if e.UserID != userID || e.RecordedAt.Before(from) || !e.RecordedAt.Before(to) {
			continue
		}
		summary.Entries++
		summary.AvgMood += float64(e.Mood)
	}
	if summary.Entries > 0 {
		summary.AvgMood /= float64(summary.Entries)
	}
	return summary, nil
}

func TestMoodRecord(t *testing.T) {
	repo := &fakeMoodRepo{}
	svc := NewMoodService(repo, logger.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	t.Run("valid entry", func(t *testing.T) {
		entry, err := svc.Record(ctx, userID, ports.CreateMoodEntryRequest{
			Mood:   4,
			Energy: 2,
			Focus:  3,
			Tags:   []string{"after-lunch"},
		})
		require.NoError(t, err)
		assert.Equal(t, 4, entry.Mood)
		assert.False(t, entry.RecordedAt.IsZero(), "recording time defaults to now")
	})

	t.Run("out of scale rejected", func(t *testing.T) {
		_, err := svc.Record(ctx, userID, ports.CreateMoodEntryRequest{Mood: 6, Energy: 3, Focus: 3})
		assert.ErrorIs(t, err, entities.ErrInvalidRating)

		_, err = svc.Record(ctx, userID, ports.CreateMoodEntryRequest{Mood: 3, Energy: 0, Focus: 3})
		assert.ErrorIs(t, err, entities.ErrInvalidRating)
	})

	t.Run("entries are append only", func(t *testing.T) {
		before := len(repo.entries)
		_, err := svc.Record(ctx, userID, ports.CreateMoodEntryRequest{Mood: 2, Energy: 2, Focus: 2})
		require.NoError(t, err)
		assert.Len(t, repo.entries, before+1)
	})
}

func TestMoodSummaryWindow(t *testing.T) {
	repo := &fakeMoodRepo{}
	svc := NewMoodService(repo, logger.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	recent := time.Now().Add(-24 * time.Hour)
	old := time.Now().AddDate(0, 0, -10)
	_, err := svc.Record(ctx, userID, ports.CreateMoodEntryRequest{Mood: 4, Energy: 3, Focus: 3, RecordedAt: &recent})
	require.NoError(t, err)
	_, err = svc.Record(ctx, userID, ports.CreateMoodEntryRequest{Mood: 1, Energy: 1, Focus: 1, RecordedAt: &old})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, userID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.WindowDays)
	assert.Equal(t, 1, summary.Entries, "entries outside the window are excluded")
}
