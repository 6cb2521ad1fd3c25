package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
	"github.com/cofoundly/cofoundly-backend/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// pageSize is how many candidate profiles are pulled from the store per
// page while scanning for admitted candidates.
const pageSize = 100

type DiscoveryUseCase struct {
	profileRepo repository.ProfileRepository
	presetRepo  repository.PresetRepository
	log         *zap.Logger
}

func NewDiscoveryUseCase(
	profileRepo repository.ProfileRepository,
	presetRepo repository.PresetRepository,
	log *zap.Logger,
) *DiscoveryUseCase {
	return &DiscoveryUseCase{
		profileRepo: profileRepo,
		presetRepo:  presetRepo,
		log:         log,
	}
}

// SearchResponse is the admitted subset plus the active-filter summary
// figure for the UI.
type SearchResponse struct {
	Profiles          []*domain.Profile `json:"profiles"`
	ActiveFilterCount int               `json:"active_filter_count"`
}

// Search pages candidate profiles through the predicate engine and returns
// up to limit admitted candidates, excluding the requester's own profile.
// The requester's coordinates, when available, anchor the distance gate.
func (uc *DiscoveryUseCase) Search(ctx context.Context, requesterID int, filter *domain.SearchFilter, limit int) (*SearchResponse, error) {
	if limit <= 0 {
		limit = 20
	}

	var requesterLoc *Coordinates
	requester, err := uc.profileRepo.GetByUserID(ctx, requesterID)
	if err == nil && requester.HasCoordinates() {
		requesterLoc = &Coordinates{Lat: *requester.LocationLat, Lon: *requester.LocationLon}
	}

	now := time.Now()
	admitted := make([]*domain.Profile, 0, limit)
	for offset := 0; len(admitted) < limit; offset += pageSize {
		page, err := uc.profileRepo.List(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for _, candidate := range page {
			if candidate.UserID == requesterID {
				continue
			}
			if !Admits(filter, candidate, requesterLoc, now) {
				continue
			}
			admitted = append(admitted, candidate)
			if len(admitted) == limit {
				break
			}
		}
	}

	return &SearchResponse{
		Profiles:          admitted,
		ActiveFilterCount: ActiveFilterCount(filter),
	}, nil
}

// SavePreset stores a named filter preset for the user, assigning an id and
// creation timestamp.
func (uc *DiscoveryUseCase) SavePreset(ctx context.Context, userID int, preset *domain.SearchFilter) (*domain.SearchFilter, error) {
	preset.ID = uuid.NewString()
	preset.CreatedAt = time.Now().UTC()
	if err := uc.presetRepo.Save(ctx, userID, preset); err != nil {
		return nil, fmt.Errorf("failed to save preset: %w", err)
	}
	return preset, nil
}

// ListPresets returns the user's saved filter presets.
func (uc *DiscoveryUseCase) ListPresets(ctx context.Context, userID int) ([]*domain.SearchFilter, error) {
	return uc.presetRepo.GetAll(ctx, userID)
}

// SearchWithPreset runs Search with a stored preset and stamps its
// last-used time.
func (uc *DiscoveryUseCase) SearchWithPreset(ctx context.Context, userID int, presetID string, limit int) (*SearchResponse, error) {
	preset, err := uc.presetRepo.Get(ctx, userID, presetID)
	if err != nil {
		return nil, err
	}
	if err := uc.presetRepo.Touch(ctx, userID, presetID); err != nil {
		uc.log.Warn("failed to touch preset",
			zap.String("preset_id", presetID), zap.Error(err))
	}
	return uc.Search(ctx, userID, preset, limit)
}

// DeletePreset removes a stored preset.
func (uc *DiscoveryUseCase) DeletePreset(ctx context.Context, userID int, presetID string) error {
	return uc.presetRepo.Delete(ctx, userID, presetID)
}
