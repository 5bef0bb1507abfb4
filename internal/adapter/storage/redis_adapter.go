package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const challengeKeyPrefix = "captcha:"

// RedisAdapter implements the local persistent key-value store: the
// cart ledger lives as one JSON blob under a fixed key, challenge
// answers under a prefix with a TTL.
type RedisAdapter struct {
	client  *redis.Client
	cartKey string
}

func NewRedisAdapter(client *redis.Client, cartKey string) *RedisAdapter {
	return &RedisAdapter{client: client, cartKey: cartKey}
}

func (r *RedisAdapter) SaveCart(ctx context.Context, entries map[string]int) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return r.client.Set(ctx, r.cartKey, data, 0).Err()
}

func (r *RedisAdapter) LoadCart(ctx context.Context) (map[string]int, error) {
	data, err := r.client.Get(ctx, r.cartKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := make(map[string]int)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return entries, nil
}

func (r *RedisAdapter) StoreChallenge(ctx context.Context, id, answer string, ttl time.Duration) error {
	return r.client.Set(ctx, challengeKeyPrefix+id, answer, ttl).Err()
}

func (r *RedisAdapter) RedeemChallenge(ctx context.Context, id string) (string, bool, error) {
	answer, err := r.client.GetDel(ctx, challengeKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return answer, true, nil
}
