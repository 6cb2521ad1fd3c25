package repository

import (
	"context"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int) (*domain.Profile, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Profile, error)
}
