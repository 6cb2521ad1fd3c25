// Package redisrepo contains redis-backed repository implementations.
package redisrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
	"github.com/cofoundly/cofoundly-backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

type presetRepository struct {
	client *redis.Client
}

// NewPresetRepository stores filter presets as JSON fields in a per-user
// redis hash.
func NewPresetRepository(client *redis.Client) repository.PresetRepository {
	return &presetRepository{client: client}
}

func presetKey(userID int) string {
	return fmt.Sprintf("filter:presets:%d", userID)
}

func (r *presetRepository) Save(ctx context.Context, userID int, preset *domain.SearchFilter) error {
	payload, err := json.Marshal(preset)
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}
	return r.client.HSet(ctx, presetKey(userID), preset.ID, payload).Err()
}

func (r *presetRepository) GetAll(ctx context.Context, userID int) ([]*domain.SearchFilter, error) {
	fields, err := r.client.HGetAll(ctx, presetKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	presets := make([]*domain.SearchFilter, 0, len(fields))
	for _, raw := range fields {
		var preset domain.SearchFilter
		if err := json.Unmarshal([]byte(raw), &preset); err != nil {
			return nil, fmt.Errorf("failed to unmarshal preset: %w", err)
		}
		presets = append(presets, &preset)
	}
	return presets, nil
}

func (r *presetRepository) Get(ctx context.Context, userID int, presetID string) (*domain.SearchFilter, error) {
	raw, err := r.client.HGet(ctx, presetKey(userID), presetID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrPresetNotFound
		}
		return nil, err
	}

	var preset domain.SearchFilter
	if err := json.Unmarshal([]byte(raw), &preset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preset: %w", err)
	}
	return &preset, nil
}

func (r *presetRepository) Touch(ctx context.Context, userID int, presetID string) error {
	preset, err := r.Get(ctx, userID, presetID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	preset.LastUsedAt = &now
	return r.Save(ctx, userID, preset)
}

func (r *presetRepository) Delete(ctx context.Context, userID int, presetID string) error {
	removed, err := r.client.HDel(ctx, presetKey(userID), presetID).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrPresetNotFound
	}
	return nil
}
