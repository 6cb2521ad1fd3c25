package repository

import (
	"context"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *domain.TrustedContact) error
	GetByID(ctx context.Context, id string) (*domain.TrustedContact, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.TrustedContact, error)
	GetUserContacts(ctx context.Context, userID int) ([]*domain.TrustedContact, error)
	Update(ctx context.Context, contact *domain.TrustedContact) error
	Delete(ctx context.Context, id string) error
}
