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

// UserService handles user profile and accessibility settings
type UserService struct {
	userRepo ports.UserRepository
	logger   *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetProfile returns a user's profile without the password hash
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile applies partial profile updates
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req ports.UpdateUserRequest) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		existing, err := s.userRepo.GetByUsername(ctx, *req.Username)
		if err == nil && existing != nil && existing.ID != userID {
			return nil, fmt.Errorf("username %s is already taken", *req.Username)
		}
		user.Username = *req.Username
	}
	if req.DisplayName != nil {
		user.DisplayName = req.DisplayName
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, fmt.Errorf("invalid timezone %s", *req.Timezone)
		}
		user.Timezone = *req.Timezone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User profile updated", "user_id", userID)

	user.PasswordHash = ""
	return user, nil
}

// Deactivate soft-deletes a user account
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("User deactivated", "user_id", userID)
	return nil
}

// GetSettings returns the user's accessibility settings, defaults when
// nothing has been customized
func (s *UserService) GetSettings(ctx context.Context, userID uuid.UUID) (*entities.UserSettings, error) {
	return s.userRepo.GetSettings(ctx, userID)
}

// UpdateSettings applies partial settings updates and persists the result
func (s *UserService) UpdateSettings(ctx context.Context, userID uuid.UUID, req ports.UpdateSettingsRequest) (*entities.UserSettings, error) {
	settings, err := s.userRepo.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Theme != nil {
		if !req.Theme.IsValid() {
			return nil, fmt.Errorf("invalid theme %s", *req.Theme)
		}
		settings.Theme = *req.Theme
	}
	if req.ReducedMotion != nil {
		settings.ReducedMotion = *req.ReducedMotion
	}
	if req.FontScale != nil {
		settings.FontScale = *req.FontScale
	}
	if req.ColorMode != nil {
		settings.ColorMode = *req.ColorMode
	}
	if req.SoundEnabled != nil {
		settings.SoundEnabled = *req.SoundEnabled
	}
	if req.SensoryProfile != nil {
		settings.SensoryProfile = req.SensoryProfile
	}

	settings.UserID = userID
	if err := s.userRepo.UpsertSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info("User settings updated", "user_id", userID)
	return settings, nil
}
