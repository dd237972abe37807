package seeder

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// Fixed UUIDs for the built-in CSV profiles
var (
	ProfileGenericID    = uuid.MustParse("00000000-0000-0000-0000-000000000101")
	ProfileGermanBankID = uuid.MustParse("00000000-0000-0000-0000-000000000102")
)

// BuiltinProfiles returns the CSV profiles every installation starts with.
func BuiltinProfiles() []*domain.CsvProfile {
	return []*domain.CsvProfile{
		{
			ID:     ProfileGenericID,
			Name:   "generic",
			Locale: domain.DefaultLocale(),
		},
		{
			ID:   ProfileGermanBankID,
			Name: "german-bank",
			Locale: domain.LocaleConfig{
				Delimiter:    ';',
				DateFormat:   domain.DateFormatDMY,
				DecimalComma: true,
			},
		},
	}
}

// ProfileSeeder handles seeding of the built-in CSV profiles
type ProfileSeeder struct {
	repo domain.CsvProfileRepository
}

// NewProfileSeeder creates a new ProfileSeeder instance
func NewProfileSeeder(repo domain.CsvProfileRepository) *ProfileSeeder {
	return &ProfileSeeder{
		repo: repo,
	}
}

// Seed ensures all built-in profiles exist in the database.
// Existing profiles are left untouched, even if the user edited them.
func (s *ProfileSeeder) Seed(ctx context.Context) error {
	for _, profile := range BuiltinProfiles() {
		_, err := s.repo.GetByName(ctx, profile.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if err := profile.Validate(); err != nil {
			return err
		}

		// A concurrent seeder may have won the race
		if err := s.repo.Create(ctx, profile); err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
	}

	return nil
}
