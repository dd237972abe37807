package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// csvProfileRepository implements domain.CsvProfileRepository
type csvProfileRepository struct {
	db *DB
}

// NewCsvProfileRepository creates a new CSV profile repository
func NewCsvProfileRepository(db *DB) domain.CsvProfileRepository {
	return &csvProfileRepository{db: db}
}

const profileColumns = `id, name, delimiter, date_format, decimal_comma, column_map`

func scanProfile(row interface{ Scan(...any) error }) (*domain.CsvProfile, error) {
	var (
		p         domain.CsvProfile
		delimiter string
		columnMap []byte
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&delimiter,
		&p.Locale.DateFormat,
		&p.Locale.DecimalComma,
		&columnMap,
	)
	if err != nil {
		return nil, err
	}

	p.Locale.Delimiter, _ = utf8.DecodeRuneInString(delimiter)

	if len(columnMap) > 0 {
		if err := json.Unmarshal(columnMap, &p.Locale.ColumnMap); err != nil {
			return nil, fmt.Errorf("failed to decode column_map: %w", err)
		}
		if len(p.Locale.ColumnMap) == 0 {
			p.Locale.ColumnMap = nil
		}
	}
	return &p, nil
}

// Create inserts a profile
func (r *csvProfileRepository) Create(ctx context.Context, profile *domain.CsvProfile) error {
	columnMap := profile.Locale.ColumnMap
	if columnMap == nil {
		columnMap = map[string][]string{}
	}
	encoded, err := json.Marshal(columnMap)
	if err != nil {
		return fmt.Errorf("failed to encode column_map: %w", err)
	}

	query := `
		INSERT INTO csv_profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		profile.ID,
		profile.Name,
		string(profile.Locale.Delimiter),
		string(profile.Locale.DateFormat),
		profile.Locale.DecimalComma,
		string(encoded),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("csv profile %q already exists: %w", profile.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to create csv profile: %w", err)
	}

	return nil
}

// GetByName retrieves a profile by its unique name
func (r *csvProfileRepository) GetByName(ctx context.Context, name string) (*domain.CsvProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM csv_profiles WHERE name = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("csv profile", name)
		}
		return nil, fmt.Errorf("failed to get csv profile: %w", err)
	}
	return p, nil
}

// List retrieves all profiles ordered by name
func (r *csvProfileRepository) List(ctx context.Context) ([]*domain.CsvProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM csv_profiles ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query csv profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*domain.CsvProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan csv profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating csv profiles: %w", err)
	}

	return profiles, nil
}

// Delete removes a profile
func (r *csvProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM csv_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete csv profile: %w", err)
	}
	return expectAffected(res, "csv profile", id)
}
