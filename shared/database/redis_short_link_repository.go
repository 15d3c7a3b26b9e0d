package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"madlib-maker/shared/interfaces"
	"madlib-maker/shared/models"
)

// Compile-time check to ensure redisShortLinkRepository implements ShortLinkRepository
var _ interfaces.ShortLinkRepository = (*redisShortLinkRepository)(nil)

const shortLinkKeyPrefix = "shortlink:"

type redisShortLinkRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisShortLinkRepository creates a Redis-backed ShortLinkRepository.
// Records are stored as JSON under "shortlink:<code>" and expire through the
// Redis key TTL.
func NewRedisShortLinkRepository(client *redis.Client, logger *zap.Logger) interfaces.ShortLinkRepository {
	return &redisShortLinkRepository{
		client: client,
		logger: logger.Named("RedisShortLinkRepo"),
	}
}

func shortLinkKey(code string) string {
	return shortLinkKeyPrefix + code
}

func (r *redisShortLinkRepository) Exists(ctx context.Context, code string) (bool, error) {
	n, err := r.client.Exists(ctx, shortLinkKey(code)).Result()
	if err != nil {
		r.logger.Error("Failed to check short code in redis", zap.String("code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check short code in redis: %w", err)
	}
	return n > 0, nil
}

// Save uses SET NX so two writers racing on the same fresh code cannot both win.
func (r *redisShortLinkRepository) Save(ctx context.Context, code string, rec models.ShortLinkRecord, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal short link record: %w", err)
	}

	r.logger.Debug("Saving short link in redis",
		zap.String("code", code),
		zap.String("mode", rec.Mode.String()),
		zap.Int("bytes", len(payload)),
		zap.Duration("ttl", ttl),
	)

	ok, err := r.client.SetNX(ctx, shortLinkKey(code), payload, ttl).Result()
	if err != nil {
		r.logger.Error("Failed to save short link in redis", zap.String("code", code), zap.Error(err))
		return fmt.Errorf("failed to save short link in redis: %w", err)
	}
	if !ok {
		r.logger.Warn("Short code already taken in redis", zap.String("code", code))
		return models.ErrShortCodeTaken
	}
	return nil
}

func (r *redisShortLinkRepository) Get(ctx context.Context, code string) (models.ShortLinkRecord, error) {
	payload, err := r.client.Get(ctx, shortLinkKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Short code not found in redis", zap.String("code", code))
			return models.ShortLinkRecord{}, models.ErrShortLinkNotFound
		}
		r.logger.Error("Failed to get short link from redis", zap.String("code", code), zap.Error(err))
		return models.ShortLinkRecord{}, fmt.Errorf("failed to get short link from redis: %w", err)
	}

	var rec models.ShortLinkRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		// Данные в Redis повреждены
		r.logger.Error("Failed to parse short link record from redis",
			zap.String("code", code),
			zap.Error(err),
		)
		return models.ShortLinkRecord{}, fmt.Errorf("corrupted short link data in redis for code %s: %w", code, err)
	}
	return rec, nil
}
