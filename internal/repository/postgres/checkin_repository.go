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

type checkInRepository struct {
	db *sqlx.DB
}

func NewCheckInRepository(db *sqlx.DB) repository.CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) Upsert(ctx context.Context, checkIn *domain.CheckIn) error {
	query := `
		INSERT INTO check_ins (
			id, user_id, counterpart_name, location,
			scheduled_at, deadline_at, contact_ids, status,
			activated_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status       = EXCLUDED.status,
			activated_at = EXCLUDED.activated_at,
			completed_at = EXCLUDED.completed_at,
			updated_at   = now()
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		checkIn.ID, checkIn.UserID, checkIn.CounterpartName, checkIn.Location,
		checkIn.ScheduledAt, checkIn.DeadlineAt, pq.Array(checkIn.ContactIDs),
		checkIn.Status, checkIn.ActivatedAt, checkIn.CompletedAt,
	).Scan(&checkIn.CreatedAt, &checkIn.UpdatedAt)
}

func (r *checkInRepository) GetByID(ctx context.Context, id string) (*domain.CheckIn, error) {
	query := `
		SELECT id, user_id, counterpart_name, location,
		       scheduled_at, deadline_at, contact_ids, status,
		       activated_at, completed_at, created_at, updated_at
		FROM check_ins WHERE id = $1
	`
	checkIn, err := scanCheckIn(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCheckInNotFound
		}
		return nil, err
	}
	return checkIn, nil
}

func (r *checkInRepository) GetAll(ctx context.Context) ([]*domain.CheckIn, error) {
	query := `
		SELECT id, user_id, counterpart_name, location,
		       scheduled_at, deadline_at, contact_ids, status,
		       activated_at, completed_at, created_at, updated_at
		FROM check_ins
		ORDER BY created_at
	`
	return r.queryCheckIns(ctx, query)
}

func (r *checkInRepository) GetUserHistory(ctx context.Context, userID int, limit, offset int) ([]*domain.CheckIn, error) {
	query := `
		SELECT id, user_id, counterpart_name, location,
		       scheduled_at, deadline_at, contact_ids, status,
		       activated_at, completed_at, created_at, updated_at
		FROM check_ins
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryCheckIns(ctx, query, userID, limit, offset)
}

func (r *checkInRepository) queryCheckIns(ctx context.Context, query string, args ...interface{}) ([]*domain.CheckIn, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkIns []*domain.CheckIn
	for rows.Next() {
		checkIn, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		checkIns = append(checkIns, checkIn)
	}
	return checkIns, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCheckIn(row rowScanner) (*domain.CheckIn, error) {
	var checkIn domain.CheckIn
	err := row.Scan(
		&checkIn.ID, &checkIn.UserID, &checkIn.CounterpartName, &checkIn.Location,
		&checkIn.ScheduledAt, &checkIn.DeadlineAt, pq.Array(&checkIn.ContactIDs),
		&checkIn.Status, &checkIn.ActivatedAt, &checkIn.CompletedAt,
		&checkIn.CreatedAt, &checkIn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}
