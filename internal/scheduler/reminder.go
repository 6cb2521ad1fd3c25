// Package scheduler provides a best-effort reminder scheduler backed by a
// redis sorted set. Reminders survive process restarts; firing is opaque to
// the check-in monitor and has no bearing on state-machine correctness.
package scheduler

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ReminderScheduler registers a future reminder keyed to a check-in id.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, checkInID string, fireAt time.Time) error
	CancelReminder(ctx context.Context, checkInID string) error
}

const (
	remindersKey     = "checkin:reminders"
	remindersChannel = "notifications:reminders"
)

// RedisReminderScheduler keeps pending reminders in a ZSET scored by
// fire-at unix time and publishes due ones from a periodic poll loop.
type RedisReminderScheduler struct {
	client *redis.Client
	log    *zap.Logger
	ticker *time.Ticker
	quit   chan struct{}
}

func NewRedisReminderScheduler(client *redis.Client, pollInterval time.Duration, log *zap.Logger) *RedisReminderScheduler {
	return &RedisReminderScheduler{
		client: client,
		log:    log,
		ticker: time.NewTicker(pollInterval),
		quit:   make(chan struct{}),
	}
}

func (s *RedisReminderScheduler) ScheduleReminder(ctx context.Context, checkInID string, fireAt time.Time) error {
	return s.client.ZAdd(ctx, remindersKey, redis.Z{
		Score:  float64(fireAt.Unix()),
		Member: checkInID,
	}).Err()
}

func (s *RedisReminderScheduler) CancelReminder(ctx context.Context, checkInID string) error {
	return s.client.ZRem(ctx, remindersKey, checkInID).Err()
}

// Start runs the poll loop until Stop is called.
func (s *RedisReminderScheduler) Start() {
	for {
		select {
		case <-s.ticker.C:
			s.fireDue(context.Background())
		case <-s.quit:
			s.ticker.Stop()
			return
		}
	}
}

// Stop signals the poll loop to shut down.
func (s *RedisReminderScheduler) Stop() {
	close(s.quit)
}

func (s *RedisReminderScheduler) fireDue(ctx context.Context) {
	now := time.Now()
	due, err := s.client.ZRangeByScore(ctx, remindersKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		s.log.Warn("failed to query due reminders", zap.Error(err))
		return
	}

	for _, checkInID := range due {
		removed, err := s.client.ZRem(ctx, remindersKey, checkInID).Result()
		if err != nil || removed == 0 {
			// Lost the race to another instance, or cancelled meanwhile.
			continue
		}

		body, err := json.Marshal(map[string]string{
			"check_in_id": checkInID,
			"fired_at":    now.UTC().Format(time.RFC3339),
		})
		if err != nil {
			continue
		}
		if err := s.client.Publish(ctx, remindersChannel, body).Err(); err != nil {
			s.log.Warn("failed to publish reminder",
				zap.String("check_in_id", checkInID),
				zap.Error(err))
			continue
		}
		s.log.Info("reminder fired", zap.String("check_in_id", checkInID))
	}
}
