package repository

import (
	"context"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
)

type CheckInRepository interface {
	Upsert(ctx context.Context, checkIn *domain.CheckIn) error
	GetByID(ctx context.Context, id string) (*domain.CheckIn, error)
	GetAll(ctx context.Context) ([]*domain.CheckIn, error)
	GetUserHistory(ctx context.Context, userID int, limit, offset int) ([]*domain.CheckIn, error)
}
