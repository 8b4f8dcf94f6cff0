package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// AnswerCache is the Redis layer of the answer cache. It is keyed by
// (username, normalized question) and written only after a successful
// generation, so a hit is always a previously confirmed answer.
type AnswerCache struct {
	client *redisv9.Client
	ttl    time.Duration // 0 keeps entries forever
}

func NewAnswerCache(client *redisv9.Client, ttl time.Duration) *AnswerCache {
	return &AnswerCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *AnswerCache) Get(ctx context.Context, username, normalizedQuestion string) (string, bool, error) {
	raw, err := c.client.Get(ctx, c.answerKey(username, normalizedQuestion)).Result()
	if err == redisv9.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get answer failed: %w", err)
	}
	return raw, true, nil
}

func (c *AnswerCache) Set(ctx context.Context, username, normalizedQuestion, answer string) error {
	key := c.answerKey(username, normalizedQuestion)
	if err := c.client.Set(ctx, key, answer, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set answer failed: %w", err)
	}
	return nil
}

func (c *AnswerCache) answerKey(username, normalizedQuestion string) string {
	return fmt.Sprintf("qa:answer:%s:%s", username, normalizedQuestion)
}
