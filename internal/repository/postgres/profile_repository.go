package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
	"github.com/cofoundly/cofoundly-backend/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `
	id, user_id, display_name, bio, city, gender, age, height_inches,
	years_experience, education_level, industries, skills_offered,
	skills_sought, role_types, startup_stage, commitment_level,
	equity_expectation, funding_experience, location_prefs,
	is_verified, is_funded, has_photos,
	location_lat, location_lon, last_active_at, created_at, updated_at
`

func (r *profileRepository) GetByUserID(ctx context.Context, userID int) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) List(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.Bio, &p.City, &p.Gender, &p.Age,
		&p.HeightInches, &p.YearsExperience, &p.EducationLevel,
		pq.Array(&p.Industries), pq.Array(&p.SkillsOffered),
		pq.Array(&p.SkillsSought), pq.Array(&p.RoleTypes),
		&p.StartupStage, &p.CommitmentLevel, &p.EquityExpectation,
		&p.FundingExperience, pq.Array(&p.LocationPrefs),
		&p.IsVerified, &p.IsFunded, &p.HasPhotos,
		&p.LocationLat, &p.LocationLon, &p.LastActiveAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
