package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"staffdesk/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	unreadKeyFmt     = "notifications:unread:%d"
	generationKeyFmt = "notifications:unread:%d:gen"
	unreadTTL        = 10 * time.Minute
	generationTTL    = 24 * time.Hour
)

// Redis caches per-account unread notification counts. A nil client means
// redis was unreachable at startup; every call then degrades to a miss.
type Redis struct {
	client *redis.Client
}

// New connects to redis. On ping failure it returns a usable, disabled
// cache together with the error so the caller can log it.
func New(cfg *config.Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return &Redis{}, err
	}
	return &Redis{client: client}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func unreadKey(accountID int) string {
	return fmt.Sprintf(unreadKeyFmt, accountID)
}

func generationKey(accountID int) string {
	return fmt.Sprintf(generationKeyFmt, accountID)
}

func (c *Redis) Enabled() bool {
	return c != nil && c.client != nil
}

// GetUnread reads the cached count and the account's generation in one
// round trip.
func (c *Redis) GetUnread(ctx context.Context, accountID int) (int, int64, bool) {
	if !c.Enabled() {
		return 0, 0, false
	}
	vals, err := c.client.MGet(ctx, unreadKey(accountID), generationKey(accountID)).Result()
	if err != nil || len(vals) != 2 {
		return 0, 0, false
	}
	generation := parseInt64(vals[1])
	if s, ok := vals[0].(string); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return n, generation, true
		}
	}
	return 0, generation, false
}

// SetUnread stores count unless the generation moved since it was read.
// The generation key is watched, so an invalidation landing between the
// check and the write aborts the transaction.
func (c *Redis) SetUnread(ctx context.Context, accountID, count int, generation int64) {
	if !c.Enabled() {
		return
	}
	genKey := generationKey(accountID)
	c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, unreadKey(accountID), count, unreadTTL)
			return nil
		})
		return err
	}, genKey)
}

// InvalidateUnread bumps the generation and drops the cached count.
func (c *Redis) InvalidateUnread(ctx context.Context, accountID int) {
	if !c.Enabled() {
		return
	}
	genKey := generationKey(accountID)
	c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, unreadKey(accountID))
		return nil
	})
}

func parseInt64(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// Ping reports redis health for the readiness probe.
func (c *Redis) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return fmt.Errorf("redis disabled")
	}
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
