package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SuggestionCache stores airport suggestions by query. It holds reference
// data shared by every session, never session state.
type SuggestionCache interface {
	Get(ctx context.Context, query string) ([]string, bool)
	Set(ctx context.Context, query string, suggestions []string) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      10 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, query string) ([]string, bool) {
	data, err := c.client.Get(ctx, generateKey(query)).Bytes()
	if err != nil {
		return nil, false
	}

	var suggestions []string
	if err := json.Unmarshal(data, &suggestions); err != nil {
		return nil, false
	}

	return suggestions, true
}

func (c *RedisCache) Set(ctx context.Context, query string, suggestions []string) error {
	if suggestions == nil {
		suggestions = []string{}
	}

	data, err := json.Marshal(suggestions)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, generateKey(query), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, query string) ([]string, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, query string, suggestions []string) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// Queries differing only in case or surrounding space share an entry.
func generateKey(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	hash := sha256.Sum256([]byte(normalized))
	return "suggest:" + hex.EncodeToString(hash[:])
}
