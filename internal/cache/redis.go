package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys and channels
const (
	StockListKey        = "stock:list"
	NotificationChannel = "agridash:notifications"
)

// Cache wraps an optional Redis client. A nil client (Redis down or not
// configured) degrades every method to a no-op or a miss; callers never
// branch on availability.
type Cache struct {
	client *redis.Client
}

// New connects to Redis. On connection failure the returned cache is still
// usable, just inert.
func New(addr, password string, db int) *Cache {
	if addr == "" {
		log.Printf("[Cache] Redis not configured, caching disabled")
		return &Cache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[Cache] Redis unavailable, caching disabled: %v", err)
		client.Close()
		return &Cache{}
	}
	return &Cache{client: client}
}

// Get returns cached data for a key
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores data with a TTL
func (c *Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) {
	if c == nil || c.client == nil {
		return
	}
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}

// InvalidateStock clears all stock-related caches
// Called when: CreateEntry, ApplyDelta, SetStatus
func (c *Cache) InvalidateStock(ctx context.Context) {
	c.InvalidatePattern(ctx, "stock:*")
}

// PublishNotificationEvent fans a notification event out to other instances
// so their websocket feeds refresh too. Best-effort.
func (c *Cache) PublishNotificationEvent(ctx context.Context, event string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Publish(ctx, NotificationChannel, event).Err(); err != nil {
		log.Printf("[Cache] publish failed: %v", err)
	}
}

// SubscribeNotificationEvents delivers cross-instance notification events
// until ctx ends. Returns nil when Redis is not available.
func (c *Cache) SubscribeNotificationEvents(ctx context.Context) <-chan string {
	if c == nil || c.client == nil {
		return nil
	}
	sub := c.client.Subscribe(ctx, NotificationChannel)
	out := make(chan string, 8)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				default:
				}
			}
		}
	}()
	return out
}

// IsHealthy returns true if the Redis connection is working
func (c *Cache) IsHealthy() bool {
	if c == nil || c.client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err() == nil
}

// Close releases the underlying connection
func (c *Cache) Close() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Close()
}
