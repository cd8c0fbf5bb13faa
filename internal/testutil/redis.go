package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/launchfee/backend/pkg/xredis"
)

type redisValue struct {
	value    string
	expireAt time.Time
}

// InMemoryRedisClient is a map-backed xredis.Client with TTL support.
type InMemoryRedisClient struct {
	mutex  sync.Mutex
	values map[string]redisValue

	// SetCalls and GetCalls count upstream-visible operations so tests can
	// assert whether a cache was hit or bypassed.
	SetCalls int
	GetCalls int
}

func NewInMemoryRedisClient() *InMemoryRedisClient {
	return &InMemoryRedisClient{values: make(map[string]redisValue)}
}

func (c *InMemoryRedisClient) get(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok {
		return "", false
	}

	if !v.expireAt.IsZero() && time.Now().After(v.expireAt) {
		delete(c.values, key)
		return "", false
	}

	return v.value, true
}

func (c *InMemoryRedisClient) set(key, value string, ttl time.Duration) {
	v := redisValue{value: value}
	if ttl > 0 {
		v.expireAt = time.Now().Add(ttl)
	}
	c.values[key] = v
}

func (c *InMemoryRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, ok := c.get(key)
	return ok, nil
}

func (c *InMemoryRedisClient) Del(ctx context.Context, keys ...string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, key := range keys {
		delete(c.values, key)
	}
	return nil
}

func (c *InMemoryRedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.SetCalls++
	c.set(key, value, ttl)
	return nil
}

func (c *InMemoryRedisClient) Get(ctx context.Context, key string) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.GetCalls++
	value, ok := c.get(key)
	if !ok {
		return "", xredis.ErrNotFound
	}

	return value, nil
}

func (c *InMemoryRedisClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, string(b), ttl)
}

func (c *InMemoryRedisClient) GetObj(ctx context.Context, key string, v any) error {
	value, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(value), v)
}
