package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoutineRecompute(t *testing.T) {
	t.Run("empty routine", func(t *testing.T) {
		r := &Routine{TotalDuration: 45, FlexibilityScore: 0.5}
		r.Recompute()
		assert.Equal(t, 0, r.TotalDuration)
		assert.Equal(t, 0.0, r.FlexibilityScore)
	})

	t.Run("mixed steps", func(t *testing.T) {
		r := &Routine{Steps: []RoutineStep{
			{DurationMinutes: 10},
			{DurationMinutes: 5, IsOptional: true},
			{DurationMinutes: 15},
			{DurationMinutes: 2, IsOptional: true},
		}}
		r.Recompute()
		assert.Equal(t, 32, r.TotalDuration)
		assert.Equal(t, 0.5, r.FlexibilityScore)
	})

	t.Run("all required", func(t *testing.T) {
		r := &Routine{Steps: []RoutineStep{
			{DurationMinutes: 10},
			{DurationMinutes: 20},
		}}
		r.Recompute()
		assert.Equal(t, 30, r.TotalDuration)
		assert.Equal(t, 0.0, r.FlexibilityScore)
	})
}
