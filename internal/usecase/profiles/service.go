// Package profiles manages named CSV locale profiles.
package profiles

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// CreateProfileInput represents the input for creating a CSV profile
type CreateProfileInput struct {
	Name   string
	Locale domain.LocaleConfig
}

// ProfileService handles CSV profile operations
type ProfileService struct {
	ProfileRepo domain.CsvProfileRepository
	Logger      logrus.FieldLogger
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(profileRepo domain.CsvProfileRepository, logger logrus.FieldLogger) *ProfileService {
	return &ProfileService{
		ProfileRepo: profileRepo,
		Logger:      logger,
	}
}

// Create stores a new profile. Names are unique.
func (s *ProfileService) Create(ctx context.Context, input CreateProfileInput) (*domain.CsvProfile, error) {
	profile := &domain.CsvProfile{
		ID:     uuid.New(),
		Name:   input.Name,
		Locale: input.Locale,
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.ProfileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.Logger.WithField("profile", profile.Name).Info("csv profile created")
	return profile, nil
}

// Get retrieves a profile by name
func (s *ProfileService) Get(ctx context.Context, name string) (*domain.CsvProfile, error) {
	return s.ProfileRepo.GetByName(ctx, name)
}

// List returns all profiles
func (s *ProfileService) List(ctx context.Context) ([]*domain.CsvProfile, error) {
	return s.ProfileRepo.List(ctx)
}

// Delete removes a profile by name
func (s *ProfileService) Delete(ctx context.Context, name string) error {
	profile, err := s.ProfileRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	return s.ProfileRepo.Delete(ctx, profile.ID)
}
