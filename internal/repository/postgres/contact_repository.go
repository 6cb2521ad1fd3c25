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

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.TrustedContact) error {
	query := `
		INSERT INTO trusted_contacts (id, user_id, display_name, phone, email, alerts_opt_in)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		contact.ID, contact.UserID, contact.DisplayName,
		contact.Phone, contact.Email, contact.AlertsOptIn,
	).Scan(&contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.TrustedContact, error) {
	var contact domain.TrustedContact
	query := `SELECT * FROM trusted_contacts WHERE id = $1`
	err := r.db.GetContext(ctx, &contact, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrContactNotFound
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.TrustedContact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var contacts []*domain.TrustedContact
	query := `SELECT * FROM trusted_contacts WHERE id = ANY($1)`
	err := r.db.SelectContext(ctx, &contacts, query, pq.Array(ids))
	return contacts, err
}

func (r *contactRepository) GetUserContacts(ctx context.Context, userID int) ([]*domain.TrustedContact, error) {
	var contacts []*domain.TrustedContact
	query := `
		SELECT * FROM trusted_contacts
		WHERE user_id = $1
		ORDER BY created_at
	`
	err := r.db.SelectContext(ctx, &contacts, query, userID)
	return contacts, err
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.TrustedContact) error {
	query := `
		UPDATE trusted_contacts
		SET display_name = $1, phone = $2, email = $3, alerts_opt_in = $4, updated_at = now()
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		contact.DisplayName, contact.Phone, contact.Email, contact.AlertsOptIn, contact.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM trusted_contacts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}
