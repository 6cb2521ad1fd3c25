package repository

import (
	"context"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
)

// PresetRepository stores named search-filter presets per user.
type PresetRepository interface {
	Save(ctx context.Context, userID int, preset *domain.SearchFilter) error
	GetAll(ctx context.Context, userID int) ([]*domain.SearchFilter, error)
	Get(ctx context.Context, userID int, presetID string) (*domain.SearchFilter, error)
	Touch(ctx context.Context, userID int, presetID string) error
	Delete(ctx context.Context, userID int, presetID string) error
}
