package redis

import (
	"context"
	"sync"

	redis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/tekrabyte/tekraswap/config"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

const Nil = redis.Nil

// one DB one client
var redisClient *redis.Client
var once sync.Once

// GetRedisInst returns the shared client. A failed ping is logged but the
// client is kept; callers treat connection errors as cache misses.
func GetRedisInst() *redis.Client {
	once.Do(func() {
		redisConfig := config.GetRedisConfig()
		options := &redis.Options{
			Addr:         redisConfig.Host,
			Password:     redisConfig.Password,
			DB:           int(redisConfig.DB),
			MinIdleConns: int(redisConfig.MinIdleConns),
			PoolSize:     100,
		}

		client := redis.NewClient(options)

		// Ping the Redis server
		pong, err := client.Ping(context.Background()).Result()
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("connect redis failed")
		} else {
			logger.Logrus.WithFields(logrus.Fields{"PongMsg": pong}).Info("connect redis success")
		}

		redisClient = client
	})
	return redisClient
}
