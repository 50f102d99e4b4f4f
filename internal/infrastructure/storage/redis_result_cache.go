package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"vision-overlay/internal/domain/port"
)

const detectionsKeyPrefix = "detections:"

// RedisOptions параметры подключения к Redis
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisResultCache хранит ответы детектора в Redis с ограниченным сроком жизни.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisResultCache создаёт кэш; соединение устанавливается лениво
func NewRedisResultCache(opts RedisOptions) *RedisResultCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	return &RedisResultCache{
		client: client,
		ttl:    opts.TTL,
	}
}

func (c *RedisResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get возвращает ответ из кэша; промах не считается ошибкой
func (c *RedisResultCache) Get(ctx context.Context, md5 string) ([]byte, error) {
	data, err := c.client.Get(ctx, detectionsKeyPrefix+md5).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set сохраняет ответ в кэш
func (c *RedisResultCache) Set(ctx context.Context, md5 string, payload []byte) error {
	return c.client.Set(ctx, detectionsKeyPrefix+md5, payload, c.ttl).Err()
}

func (c *RedisResultCache) Close() error {
	return c.client.Close()
}

var _ port.ResultCache = (*RedisResultCache)(nil)
