package redis

import (
	"context"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
)

func Set(ctx context.Context, key, value string, expiration time.Duration) error {
	err := GetRedisInst().SetNX(ctx, key, value, expiration).Err()
	if err != nil {
		return fmt.Errorf("failed to set %s: %v", key, err)
	}
	return nil
}

func Get(ctx context.Context, key string) (string, error) {
	val, err := GetRedisInst().Get(ctx, key).Result()
	if err == redis.Nil {
		return "", redis.Nil
	} else if err != nil {
		return "", fmt.Errorf("failed to get %s: %v", key, err)
	}

	return val, nil
}
