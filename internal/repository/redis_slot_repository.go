package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type redisSlotRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisSlotRepository keeps each slot under prefix+key. Slots never expire;
// the backend decides when a credential stops being valid.
func NewRedisSlotRepository(client *redis.Client, prefix string) SlotRepository {
	return &redisSlotRepository{client: client, prefix: prefix}
}

func (r *redisSlotRepository) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSlotEmpty
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *redisSlotRepository) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *redisSlotRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
